package capture

import (
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
)

// preRoll keeps the last few frames heard before the speech onset.
type preRoll struct {
	frames []pcm.Frame
	head   int
	size   int
}

func newPreRoll(capacity int) *preRoll {
	return &preRoll{
		frames: make([]pcm.Frame, capacity),
	}
}

func (r *preRoll) Add(frame pcm.Frame) {
	if len(r.frames) == 0 {
		return
	}
	r.frames[r.head] = frame
	r.head = (r.head + 1) % len(r.frames)
	if r.size < len(r.frames) {
		r.size++
	}
}

// Drain returns the kept samples, oldest first, and empties the ring.
func (r *preRoll) Drain() []int16 {
	var samples []int16
	start := (r.head - r.size + len(r.frames)) % max(len(r.frames), 1)
	for i := 0; i < r.size; i++ {
		samples = append(samples, r.frames[(start+i)%len(r.frames)]...)
	}
	r.size = 0
	r.head = 0
	return samples
}
