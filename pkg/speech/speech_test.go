package speech

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	for _, tc := range [][2]string{
		{"Hey, Ditto!", "hey ditto"},
		{"  what's   the TIME?  ", "what's the time"},
		{"'quoted'", "quoted"},
		{"", ""},
		{"...", ""},
		{"Привет, мир", "привет мир"},
	} {
		in, want := tc[0], tc[1]
		assert.Equal(t, want, Normalize(in), in)
	}
}

func TestPhraseMatch(t *testing.T) {
	assert.True(t, ContainsPhrase("Okay, hey Ditto, turn on the lights", "hey ditto"))
	assert.False(t, ContainsPhrase("hey there ditto", "hey ditto"))
	assert.False(t, ContainsPhrase("", "hey ditto"))
	assert.False(t, ContainsPhrase("anything", ""))

	assert.Equal(t, 0.5, PhraseMatchRatio("hey dito", "hey ditto"))
	assert.Equal(t, 1.0, PhraseMatchRatio("HEY DITTO", "hey ditto"))
	assert.Equal(t, 0.0, PhraseMatchRatio("good morning", "hey ditto"))
}

func TestIsLikelyHallucination(t *testing.T) {
	for _, s := range []string{
		"",
		"   ",
		"[BLANK_AUDIO]",
		"(door opens)",
		"*thump*",
		"♪ ♪",
		"Thank you for watching!",
		" you",
		`"Hello"`,
		strings.Repeat("ha", 50),
	} {
		assert.True(t, IsLikelyHallucination(s), "%q", s)
	}
	for _, s := range []string{
		"turn on the lights",
		"what is the weather in Paris tomorrow",
		"thank you very much, that helped",
	} {
		assert.False(t, IsLikelyHallucination(s), "%q", s)
	}
}

func TestTranscriptIsEmpty(t *testing.T) {
	assert.True(t, (*Transcript)(nil).IsEmpty())
	assert.True(t, (&Transcript{Text: " - "}).IsEmpty())
	assert.False(t, (&Transcript{Text: "hi"}).IsEmpty())
}

func TestLanguage(t *testing.T) {
	assert.Equal(t, LanguageFamily("en"), LanguageEnglishUS.Family())
	assert.Equal(t, "auto", LanguageUndefined.String())
}
