//go:build no_whisper
// +build no_whisper

package main

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/wakearbiter/pkg/config"
	"github.com/xaionaro-go/wakearbiter/pkg/speech"
)

func newWhisperTranscriber(
	ctx context.Context,
	cfg *config.Config,
) (speech.Transcriber, error) {
	return nil, fmt.Errorf("built without whisper; the offline mode is unavailable")
}
