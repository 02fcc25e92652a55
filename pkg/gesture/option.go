package gesture

import (
	"time"
)

type config struct {
	Window    time.Duration
	Threshold uint
	Now       func() time.Time
}

func defaultConfig() config {
	return config{
		Window:    4 * time.Second,
		Threshold: 3,
		Now:       time.Now,
	}
}

type Option interface {
	apply(*config)
}

type Options []Option

func (opts Options) apply(cfg *config) {
	for _, opt := range opts {
		opt.apply(cfg)
	}
}

func (opts Options) config() config {
	cfg := defaultConfig()
	opts.apply(&cfg)
	return cfg
}

type OptionWindow time.Duration

func (opt OptionWindow) apply(cfg *config) {
	cfg.Window = time.Duration(opt)
}

// OptionThreshold is the number of polls (each with at least one vote of a
// kind) needed to commit that kind.
type OptionThreshold uint

func (opt OptionThreshold) apply(cfg *config) {
	cfg.Threshold = uint(opt)
}

type OptionClock func() time.Time

func (opt OptionClock) apply(cfg *config) {
	cfg.Now = opt
}
