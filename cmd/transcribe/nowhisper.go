//go:build no_whisper
// +build no_whisper

package main

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/wakearbiter/pkg/speech"
)

type whisperFlags struct{}

func registerWhisperFlags() *whisperFlags {
	return &whisperFlags{}
}

func newWhisper(
	ctx context.Context,
	flags *whisperFlags,
	modelPath string,
	lang speech.Language,
	gpu int,
	translate bool,
) (speech.Transcriber, error) {
	return nil, fmt.Errorf("built without whisper support")
}
