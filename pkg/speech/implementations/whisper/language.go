package whisper

import (
	"github.com/xaionaro-go/wakearbiter/pkg/speech"
)

func LanguageToWhisper(language speech.Language) string {
	if language == speech.LanguageUndefined {
		return "auto"
	}
	return string(language.Family())
}
