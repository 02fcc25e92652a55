package speech

import "strings"

type Language string

const (
	LanguageUndefined = Language("")
	LanguageEnglishUS = Language("en-US")
	LanguageRussian   = Language("ru-RU")
)

type LanguageFamily string

func (l Language) Family() LanguageFamily {
	words := strings.SplitN(string(l), "-", 2)
	return LanguageFamily(strings.ToLower(words[0]))
}

func (l Language) String() string {
	if l == LanguageUndefined {
		return "auto"
	}
	return string(l)
}
