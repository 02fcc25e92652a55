package genai

import (
	"github.com/xaionaro-go/wakearbiter/pkg/speech"
)

const (
	DefaultModel = "gemini-2.0-flash"

	DefaultInstruction = "Transcribe the speech in this audio verbatim. " +
		"Reply with the transcript only. If there is no speech, reply with an empty message."
)

type config struct {
	Model       string
	Instruction string
	Language    speech.Language
}

func defaultConfig() config {
	return config{
		Model:       DefaultModel,
		Instruction: DefaultInstruction,
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

type OptionModel string

func (opt OptionModel) apply(cfg *config) {
	cfg.Model = string(opt)
}

type OptionInstruction string

func (opt OptionInstruction) apply(cfg *config) {
	cfg.Instruction = string(opt)
}

// OptionLanguage hints the expected language of the speech.
type OptionLanguage speech.Language

func (opt OptionLanguage) apply(cfg *config) {
	cfg.Language = speech.Language(opt)
}
