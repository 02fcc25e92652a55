package sqlite

import (
	"time"
)

type config struct {
	BusyTimeout time.Duration
	JournalMode string
}

func defaultConfig() config {
	return config{
		BusyTimeout: 5 * time.Second,
		JournalMode: "WAL",
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

type OptionBusyTimeout time.Duration

func (opt OptionBusyTimeout) apply(cfg *config) {
	cfg.BusyTimeout = time.Duration(opt)
}

type OptionJournalMode string

func (opt OptionJournalMode) apply(cfg *config) {
	cfg.JournalMode = string(opt)
}
