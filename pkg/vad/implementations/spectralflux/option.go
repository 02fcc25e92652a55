package spectralflux

import (
	"time"
)

type config struct {
	Ratio     float64
	QuietTime time.Duration
	MinRMS    float64
}

func defaultConfig() config {
	return config{
		Ratio:     1.75,
		QuietTime: 200 * time.Millisecond,
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

// OptionRatio is how many times the flux must jump to start (or drop to
// end) an utterance.
type OptionRatio float64

func (opt OptionRatio) apply(cfg *config) {
	cfg.Ratio = float64(opt)
}

// OptionQuietTime is how long the flux must stay low before the utterance
// is considered finished.
type OptionQuietTime time.Duration

func (opt OptionQuietTime) apply(cfg *config) {
	cfg.QuietTime = time.Duration(opt)
}

// OptionMinRMS ignores onsets in frames quieter than this (in sample units).
type OptionMinRMS float64

func (opt OptionMinRMS) apply(cfg *config) {
	cfg.MinRMS = float64(opt)
}
