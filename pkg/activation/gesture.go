package activation

import (
	"fmt"
	"strings"
)

type Gesture string

const (
	GestureUndefined = Gesture("")
	GestureLike      = Gesture("like")
	GestureDislike   = Gesture("dislike")
	GesturePalm      = Gesture("palm")
)

// GesturePriority is the order in which simultaneously committed gestures
// are resolved: the first one wins.
var GesturePriority = [...]Gesture{
	GestureLike,
	GestureDislike,
	GesturePalm,
}

func ParseGesture(s string) (Gesture, error) {
	g := Gesture(strings.ToLower(strings.TrimSpace(s)))
	if !g.IsValid() {
		return GestureUndefined, fmt.Errorf("unknown gesture '%s'", s)
	}
	return g, nil
}

func (g Gesture) IsValid() bool {
	switch g {
	case GestureLike, GestureDislike, GesturePalm:
		return true
	}
	return false
}

func (g Gesture) String() string {
	return string(g)
}
