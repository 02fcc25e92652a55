package session

import (
	"context"
)

const DefaultGestureDirectiveFormat = "GestureNet: %s"

// Chime is played right before the prompt capture of a wake-word session.
type Chime interface {
	Play(ctx context.Context) error
}

type config struct {
	GestureDirectiveFormat string
	Chime                  Chime
}

func defaultConfig() config {
	return config{
		GestureDirectiveFormat: DefaultGestureDirectiveFormat,
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

// OptionGestureDirectiveFormat is the fmt format (with a single %s for the
// gesture name) of the text sent downstream for like/dislike gestures.
type OptionGestureDirectiveFormat string

func (opt OptionGestureDirectiveFormat) apply(cfg *config) {
	cfg.GestureDirectiveFormat = string(opt)
}

type OptionChime struct {
	Chime
}

func (opt OptionChime) apply(cfg *config) {
	cfg.Chime = opt.Chime
}
