//go:build no_libfvad
// +build no_libfvad

package main

import (
	"fmt"

	"github.com/xaionaro-go/wakearbiter/pkg/vad"
)

func newLibfvadVAD(
	sampleRate int,
	mode int,
) (vad.VAD, error) {
	return nil, fmt.Errorf("built without libfvad; use the spectralflux VAD")
}
