package wakeword

import (
	"context"
	"fmt"
	"io"

	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
)

type Event struct {
	Keyword string
	Score   float64
}

func (ev *Event) String() string {
	if ev == nil {
		return "<none>"
	}
	return fmt.Sprintf("wake{%q, %.2f}", ev.Keyword, ev.Score)
}

// Signal is an acoustic wake-word detector. ProcessFrame is called exactly
// once per arbitration cycle with one frame and returns a non-nil Event when
// the wake word ended in this frame (or a detection is pending).
type Signal interface {
	io.Closer
	ProcessFrame(ctx context.Context, frame pcm.Frame) (*Event, error)
}

// Resetter is implemented by signals that buffer audio or detections, so
// that stale detections can be dropped after a session.
type Resetter interface {
	Reset(ctx context.Context)
}

type Config struct {
	Keywords []string

	// Sensitivity is in [0, 1]; higher values accept more (and worse)
	// matches.
	Sensitivity float64

	ModelPath   string
	ContextPath string

	// RequireEndpoint accepts a detection only after the speaker paused.
	RequireEndpoint bool
}

func DefaultConfig() Config {
	return Config{
		Keywords:    []string{"hey ditto"},
		Sensitivity: 0.5,
	}
}

func (cfg Config) Validate() error {
	if cfg.Sensitivity < 0 || cfg.Sensitivity > 1 {
		return fmt.Errorf("sensitivity must be in [0, 1], but it is %f", cfg.Sensitivity)
	}
	return nil
}
