package speech

import (
	"strings"

	"github.com/lazybeaver/entropy"
)

const (
	EntropyMin            = 3.63
	EntropyDetectorLenMin = 80
)

// IsLikelyHallucination detects text that speech recognizers tend to
// produce on silence or background noise.
func IsLikelyHallucination(text string) bool {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return true
	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		// e.g.: [silence], [typing], [BLANK_AUDIO]
		return true
	case strings.HasPrefix(trimmed, "(") && strings.HasSuffix(trimmed, ")"):
		// e.g.: (clicking), (door opens)
		return true
	case strings.HasPrefix(trimmed, "*") && strings.HasSuffix(trimmed, "*"):
		return true
	case strings.HasPrefix(trimmed, "♪") && strings.HasSuffix(trimmed, "♪"):
		return true
	case strings.HasPrefix(trimmed, `"`) && strings.HasSuffix(trimmed, `"`) && len(trimmed) > 1:
		return true
	}

	normalized := Normalize(trimmed)
	if normalized == "" {
		return true
	}
	switch normalized {
	case "thank you for watching", "thanks for watching",
		"thank you for watching please subscribe to my channel",
		"please subscribe",
		"thank you",
		"you",
		"bye",
		"the end",
		"subtitles by the amara org community",
		"i'll be right back",
		"i'm going to bed":
		return true
	}

	if len(trimmed) > EntropyDetectorLenMin {
		e, err := entropy.Shannon(trimmed)
		if err == nil && e < EntropyMin {
			return true
		}
	}
	return false
}
