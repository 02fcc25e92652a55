package speech

import (
	"strings"
	"unicode"
)

// Normalize lowercases the text and reduces it to words separated by single
// spaces. Apostrophes inside words are kept.
func Normalize(s string) string {
	var b strings.Builder
	pendingSpace := false
	runes := []rune(strings.ToLower(s))
	for idx, r := range runes {
		isWordRune := unicode.IsLetter(r) || unicode.IsDigit(r)
		if r == '\'' && idx > 0 && idx+1 < len(runes) && unicode.IsLetter(runes[idx-1]) && unicode.IsLetter(runes[idx+1]) {
			isWordRune = true
		}
		if !isWordRune {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// PhraseMatchRatio returns the best fraction of the phrase's words found at
// the aligned positions of any window of the text, from 0 to 1.
func PhraseMatchRatio(text, phrase string) float64 {
	phraseWords := strings.Fields(Normalize(phrase))
	if len(phraseWords) == 0 {
		return 0
	}
	textWords := strings.Fields(Normalize(text))

	best := 0
	for start := 0; start < len(textWords); start++ {
		matched := 0
		for idx, w := range phraseWords {
			if start+idx >= len(textWords) {
				break
			}
			if textWords[start+idx] == w {
				matched++
			}
		}
		if matched > best {
			best = matched
		}
	}
	return float64(best) / float64(len(phraseWords))
}

// ContainsPhrase reports whether the text contains all the words of the
// phrase in order and adjacent, ignoring case and punctuation.
func ContainsPhrase(text, phrase string) bool {
	return PhraseMatchRatio(text, phrase) == 1
}
