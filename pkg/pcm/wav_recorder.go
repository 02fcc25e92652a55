package pcm

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/go-audio/wav"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
)

// WAVRecorder is a Source that passes frames through from another Source
// while appending them to a WAV file.
type WAVRecorder struct {
	Source  Source
	File    afero.File
	Encoder *wav.Encoder
}

var _ Source = (*WAVRecorder)(nil)

func NewWAVRecorder(
	fs afero.Fs,
	path string,
	source Source,
) (*WAVRecorder, error) {
	f, err := fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("unable to create '%s': %w", path, err)
	}
	return &WAVRecorder{
		Source:  source,
		File:    f,
		Encoder: wav.NewEncoder(f, source.Format().SampleRate, wavBitDepth, 1, 1),
	}, nil
}

func (r *WAVRecorder) Format() Format {
	return r.Source.Format()
}

func (r *WAVRecorder) ReadFrame(ctx context.Context) (Frame, error) {
	frame, err := r.Source.ReadFrame(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.Encoder.Write(intBuffer(frame, r.Format().SampleRate)); err != nil {
		logger.Errorf(ctx, "unable to write a frame into '%s': %v", r.File.Name(), err)
	}
	return frame, nil
}

func (r *WAVRecorder) Close() error {
	var result *multierror.Error
	if err := r.Encoder.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to finalize the WAV file: %w", err))
	}
	if err := r.File.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to close the WAV file: %w", err))
	}
	if err := r.Source.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to close the source: %w", err))
	}
	return result.ErrorOrNil()
}
