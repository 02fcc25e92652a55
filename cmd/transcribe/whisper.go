//go:build !no_whisper
// +build !no_whisper

package main

import (
	"context"
	"os"

	syswhisper "github.com/mutablelogic/go-whisper/sys/whisper"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/wakearbiter/pkg/speech"
	"github.com/xaionaro-go/wakearbiter/pkg/speech/implementations/whisper"
)

type whisperFlags struct {
	AlignmentAheadsPreset whisper.AlignmentAheadsPreset
	SamplingStrategy      string
}

func registerWhisperFlags() *whisperFlags {
	f := &whisperFlags{
		AlignmentAheadsPreset: whisper.AlignmentAheadsPreset(syswhisper.AlignmentAheadsPresetNone),
	}
	pflag.Var(&f.AlignmentAheadsPreset, "alignment-aheads-preset", "")
	pflag.StringVar(&f.SamplingStrategy, "sampling-strategy", "greedy", "allowed values: greedy, beam-search")
	return f
}

func newWhisper(
	ctx context.Context,
	flags *whisperFlags,
	modelPath string,
	lang speech.Language,
	gpu int,
	translate bool,
) (speech.Transcriber, error) {
	whisperModel, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, err
	}

	opts := whisper.Options{
		whisper.OptionTranslate(translate),
	}
	if gpu != -1 {
		opts = append(opts, whisper.OptionGPUDeviceID(gpu))
	}

	samplingStrategy := whisper.SamplingStrategyGreedy
	if flags.SamplingStrategy == "beam-search" {
		samplingStrategy = whisper.SamplingStrategyBreamSearch
	}

	t, err := whisper.New(
		ctx,
		whisperModel,
		lang,
		samplingStrategy,
		syswhisper.AlignmentAheadsPreset(flags.AlignmentAheadsPreset),
		opts...,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}
