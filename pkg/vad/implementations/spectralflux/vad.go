// Package spectralflux detects speech by jumps of the spectral flux between
// consecutive frames. It needs no native libraries, but it is an onset
// detector rather than a classifier: stationary sounds stop being "voice"
// after the quiet time.
package spectralflux

import (
	"context"
	"math"
	"math/cmplx"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mjibson/go-dsp/fft"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/vad"
)

type VAD struct {
	Format pcm.Format

	PrevSpectrum []float64
	LastFlux     float64
	Speaking     bool
	QuietFor     time.Duration

	config config
}

var _ vad.VAD = (*VAD)(nil)

func New(
	format pcm.Format,
	opts ...Option,
) *VAD {
	return &VAD{
		Format: format,
		config: Options(opts).config(),
	}
}

func (v *VAD) Close() error {
	return nil
}

func (v *VAD) Reset() {
	v.PrevSpectrum = nil
	v.LastFlux = 0
	v.Speaking = false
	v.QuietFor = 0
}

func (v *VAD) IsVoice(
	ctx context.Context,
	frame pcm.Frame,
) (bool, error) {
	spectrum := magnitudes(frame)
	prev := v.PrevSpectrum
	v.PrevSpectrum = spectrum
	if prev == nil || len(prev) != len(spectrum) {
		return false, nil
	}
	flux := spectralFlux(prev, spectrum)
	if v.LastFlux == 0 {
		v.LastFlux = flux
		return false, nil
	}

	ratio := v.config.Ratio
	if v.Speaking {
		if flux*ratio <= v.LastFlux {
			v.QuietFor += v.Format.FrameDuration()
			if v.QuietFor > v.config.QuietTime {
				logger.Tracef(ctx, "speech ended: flux %f, last %f", flux, v.LastFlux)
				v.Speaking = false
				v.QuietFor = 0
				v.LastFlux = flux
			}
		} else {
			v.QuietFor = 0
			v.LastFlux = flux
		}
		return v.Speaking, nil
	}

	if flux >= v.LastFlux*ratio && rms(frame) >= v.config.MinRMS {
		logger.Tracef(ctx, "speech started: flux %f, last %f", flux, v.LastFlux)
		v.Speaking = true
		v.QuietFor = 0
	}
	v.LastFlux = flux
	return v.Speaking, nil
}

func magnitudes(frame pcm.Frame) []float64 {
	if len(frame) == 0 {
		return nil
	}
	samples := make([]float64, len(frame))
	for idx, s := range frame {
		samples[idx] = float64(s)
	}
	coeffs := fft.FFTReal(samples)
	result := make([]float64, len(coeffs)/2+1)
	for idx := range result {
		result[idx] = cmplx.Abs(coeffs[idx])
	}
	return result
}

func spectralFlux(prev, cur []float64) float64 {
	var flux float64
	for idx := range cur {
		if d := cur[idx] - prev[idx]; d > 0 {
			flux += d
		}
	}
	return flux
}

func rms(frame pcm.Frame) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(frame)))
}
