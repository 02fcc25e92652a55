//go:build !no_libfvad
// +build !no_libfvad

package main

import (
	"github.com/xaionaro-go/wakearbiter/pkg/vad"
	"github.com/xaionaro-go/wakearbiter/pkg/vad/implementations/libfvad"
)

func newLibfvadVAD(
	sampleRate int,
	mode int,
) (vad.VAD, error) {
	v, err := libfvad.NewVAD(sampleRate, mode)
	if err != nil {
		return nil, err
	}
	return v, nil
}
