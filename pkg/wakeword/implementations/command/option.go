package command

import (
	"time"
)

type config struct {
	ReadyTimeout time.Duration
	StopTimeout  time.Duration
	Env          []string
}

func defaultConfig() config {
	return config{
		ReadyTimeout: 10 * time.Second,
		StopTimeout:  3 * time.Second,
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

// OptionReadyTimeout is how long to wait for the detector to report "ready".
type OptionReadyTimeout time.Duration

func (opt OptionReadyTimeout) apply(cfg *config) {
	cfg.ReadyTimeout = time.Duration(opt)
}

type OptionStopTimeout time.Duration

func (opt OptionStopTimeout) apply(cfg *config) {
	cfg.StopTimeout = time.Duration(opt)
}

// OptionEnv adds "KEY=value" entries to the detector's environment (e.g. an
// access key of the wake-word engine).
type OptionEnv []string

func (opt OptionEnv) apply(cfg *config) {
	cfg.Env = append(cfg.Env, opt...)
}
