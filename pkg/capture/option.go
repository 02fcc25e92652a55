package capture

import (
	"time"
)

type config struct {
	StartTimeout   time.Duration
	SilenceTimeout time.Duration
	MaxDuration    time.Duration
	PreRoll        time.Duration
}

func defaultConfig() config {
	return config{
		StartTimeout:   5 * time.Second,
		SilenceTimeout: time.Second,
		MaxDuration:    15 * time.Second,
		PreRoll:        300 * time.Millisecond,
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

// OptionStartTimeout is how long to wait for the speech to begin.
type OptionStartTimeout time.Duration

func (opt OptionStartTimeout) apply(cfg *config) {
	cfg.StartTimeout = time.Duration(opt)
}

// OptionSilenceTimeout is how much trailing non-voice ends the utterance.
type OptionSilenceTimeout time.Duration

func (opt OptionSilenceTimeout) apply(cfg *config) {
	cfg.SilenceTimeout = time.Duration(opt)
}

type OptionMaxDuration time.Duration

func (opt OptionMaxDuration) apply(cfg *config) {
	cfg.MaxDuration = time.Duration(opt)
}

// OptionPreRoll is how much audio before the detected speech onset is kept.
type OptionPreRoll time.Duration

func (opt OptionPreRoll) apply(cfg *config) {
	cfg.PreRoll = time.Duration(opt)
}
