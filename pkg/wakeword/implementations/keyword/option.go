package keyword

import (
	"time"
)

type config struct {
	EndSilence   time.Duration
	MaxUtterance time.Duration
	MinUtterance time.Duration
}

func defaultConfig() config {
	return config{
		EndSilence:   300 * time.Millisecond,
		MaxUtterance: 3 * time.Second,
		MinUtterance: 200 * time.Millisecond,
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

// OptionEndSilence is how much non-voice ends an utterance.
type OptionEndSilence time.Duration

func (opt OptionEndSilence) apply(cfg *config) {
	cfg.EndSilence = time.Duration(opt)
}

// OptionMaxUtterance limits how much audio is buffered; a wake phrase is
// short.
type OptionMaxUtterance time.Duration

func (opt OptionMaxUtterance) apply(cfg *config) {
	cfg.MaxUtterance = time.Duration(opt)
}

// OptionMinUtterance drops clicks and other too short bursts without
// transcribing them.
type OptionMinUtterance time.Duration

func (opt OptionMinUtterance) apply(cfg *config) {
	cfg.MinUtterance = time.Duration(opt)
}
