//go:build !no_libfvad
// +build !no_libfvad

package libfvad

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/josharian/fvad"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/vad"
)

type VAD struct {
	*fvad.Detector
	SampleRate      int
	SensitivityMode int
}

var _ vad.VAD = (*VAD)(nil)

func NewVAD(
	sampleRate int,
	sensitivityMode int,
) (*VAD, error) {
	detector, err := newDetector(sampleRate, sensitivityMode)
	if err != nil {
		return nil, err
	}
	return &VAD{
		Detector:        detector,
		SampleRate:      sampleRate,
		SensitivityMode: sensitivityMode,
	}, nil
}

func newDetector(
	sampleRate int,
	sensitivityMode int,
) (*fvad.Detector, error) {
	detector := fvad.NewDetector()
	if err := detector.SetSampleRate(sampleRate); err != nil {
		detector.Close()
		return nil, fmt.Errorf("unable to set the sample rate: %w", err)
	}
	if err := detector.SetMode(sensitivityMode); err != nil {
		detector.Close()
		return nil, fmt.Errorf("unable to set the sensitivity mode: %w", err)
	}
	return detector, nil
}

func (v *VAD) Close() error {
	v.Detector.Close()
	return nil
}

func (v *VAD) Reset() {
	detector, err := newDetector(v.SampleRate, v.SensitivityMode)
	if err != nil {
		// the parameters were already accepted once
		panic(err)
	}
	v.Detector.Close()
	v.Detector = detector
}

// IsVoice feeds the frame to the detector in the largest pieces it accepts
// (30, 20 or 10 ms; a tail shorter than 10ms is ignored) and reports voice
// if at least half of the processed audio was voiced.
func (v *VAD) IsVoice(
	ctx context.Context,
	frame pcm.Frame,
) (bool, error) {
	minPortion := v.SampleRate / 100
	midPortion := minPortion * 2
	maxPortion := minPortion * 3

	var total, voiced int
	for len(frame) >= minPortion {
		var piece pcm.Frame
		switch {
		case len(frame) >= maxPortion:
			piece = frame[:maxPortion]
		case len(frame) >= midPortion:
			piece = frame[:midPortion]
		default:
			piece = frame[:minPortion]
		}
		frame = frame[len(piece):]

		isVoice, err := v.Detector.Process(piece)
		if err != nil {
			return false, fmt.Errorf("unable to process a piece of %d samples: %w", len(piece), err)
		}
		total += len(piece)
		if isVoice {
			voiced += len(piece)
		}
	}
	if total == 0 {
		logger.Debugf(ctx, "the frame is shorter than 10ms, cannot classify it")
		return false, nil
	}
	return voiced*2 >= total, nil
}
