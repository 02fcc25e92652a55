package vad

import (
	"context"

	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
)

// Dummy reports the same verdict for every frame.
type Dummy struct {
	Voice bool
}

var _ VAD = (*Dummy)(nil)

func NewDummy(voice bool) *Dummy {
	return &Dummy{
		Voice: voice,
	}
}

func (vad *Dummy) Close() error {
	return nil
}

func (vad *Dummy) IsVoice(context.Context, pcm.Frame) (bool, error) {
	return vad.Voice, nil
}

func (vad *Dummy) Reset() {}
