package vad

import (
	"context"
	"io"

	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
)

// VAD classifies frames of a single stream as voice or non-voice. It may keep
// state between frames (smoothing, hangover), so Reset must be called when
// the stream is interrupted.
type VAD interface {
	io.Closer

	IsVoice(ctx context.Context, frame pcm.Frame) (bool, error)
	Reset()
}
