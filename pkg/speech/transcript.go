package speech

import (
	"context"
	"io"
	"strings"
	"unicode"
)

type Text string

func (t Text) ContainsAlphaNum() bool {
	return strings.ContainsFunc(string(t), func(r rune) bool {
		if r == '-' {
			return false
		}
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

type Transcript struct {
	Text                Text
	Language            Language
	Confidence          float32
	NoSpeechProbability float32
}

func (t *Transcript) IsEmpty() bool {
	return t == nil || !t.Text.ContainsAlphaNum()
}

// Transcriber converts a complete utterance of mono 16-bit PCM into text.
// Which engine does it (local or remote) is invisible to the caller.
type Transcriber interface {
	io.Closer
	Transcribe(ctx context.Context, samples []int16, sampleRate int) (*Transcript, error)
}
