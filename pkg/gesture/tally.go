package gesture

import (
	"fmt"
	"time"

	"github.com/xaionaro-go/wakearbiter/pkg/activation"
)

// Tally counts debounced gesture votes inside the current window.
type Tally struct {
	Like           uint
	Dislike        uint
	Palm           uint
	WindowDeadline time.Time
}

func (t *Tally) counter(g activation.Gesture) *uint {
	switch g {
	case activation.GestureLike:
		return &t.Like
	case activation.GestureDislike:
		return &t.Dislike
	case activation.GesturePalm:
		return &t.Palm
	}
	return nil
}

func (t *Tally) Get(g activation.Gesture) uint {
	c := t.counter(g)
	if c == nil {
		return 0
	}
	return *c
}

func (t *Tally) Increment(g activation.Gesture) bool {
	c := t.counter(g)
	if c == nil {
		return false
	}
	*c++
	return true
}

// Reset zeroes all the counters and starts a new window ending at deadline.
func (t *Tally) Reset(deadline time.Time) {
	*t = Tally{WindowDeadline: deadline}
}

func (t Tally) String() string {
	return fmt.Sprintf("like:%d dislike:%d palm:%d until:%s", t.Like, t.Dislike, t.Palm, t.WindowDeadline.Format(time.TimeOnly))
}
