//go:build !no_whisper
// +build !no_whisper

package main

import (
	"context"
	"fmt"
	"os"

	syswhisper "github.com/mutablelogic/go-whisper/sys/whisper"
	"github.com/xaionaro-go/wakearbiter/pkg/config"
	"github.com/xaionaro-go/wakearbiter/pkg/speech"
	"github.com/xaionaro-go/wakearbiter/pkg/speech/implementations/whisper"
)

func newWhisperTranscriber(
	ctx context.Context,
	cfg *config.Config,
) (speech.Transcriber, error) {
	whisperCfg := cfg.Transcription.Whisper
	model, err := os.ReadFile(whisperCfg.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read the whisper model: %w", err)
	}

	opts := whisper.Options{
		whisper.OptionUseGPU(whisperCfg.UseGPU),
	}
	if whisperCfg.UseGPU && whisperCfg.GPU >= 0 {
		opts = append(opts, whisper.OptionGPUDeviceID(whisperCfg.GPU))
	}

	t, err := whisper.New(
		ctx,
		model,
		speech.Language(cfg.Transcription.Language),
		whisper.SamplingStrategyGreedy,
		syswhisper.AlignmentAheadsPresetNone,
		opts...,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the offline transcriber: %w", err)
	}
	return t, nil
}
