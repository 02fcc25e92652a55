package autorecorder

import (
	"context"
	"fmt"
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
)

// Source records the default input of whatever audio backend is available
// on the system (PulseAudio, PortAudio, ...).
type Source struct {
	Reader *io.PipeReader
	Writer *io.PipeWriter
	Stream io.Closer
	Buffer []byte
	Config pcm.Format
}

var _ pcm.Source = (*Source)(nil)

func New(
	ctx context.Context,
	format pcm.Format,
) (*Source, error) {
	r, w := io.Pipe()
	recorder := audio.NewRecorderAuto(ctx)
	logger.Infof(ctx, "using %T as the audio input", recorder.RecorderPCM)
	stream, err := recorder.RecordPCM(audio.SampleRate(format.SampleRate), 1, audio.PCMFormatS16LE, w)
	if err != nil {
		r.Close()
		w.Close()
		return nil, activation.ErrDeviceFailure{Err: fmt.Errorf("unable to start recording: %w", err)}
	}
	return &Source{
		Reader: r,
		Writer: w,
		Stream: stream,
		Buffer: make([]byte, format.FrameLength*2),
		Config: format,
	}, nil
}

func (s *Source) Format() pcm.Format {
	return s.Config
}

func (s *Source) ReadFrame(ctx context.Context) (pcm.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(s.Reader, s.Buffer); err != nil {
		return nil, activation.ErrDeviceFailure{Err: err}
	}
	return pcm.FrameFromBytes(s.Buffer), nil
}

func (s *Source) Close() error {
	var result *multierror.Error
	if err := s.Stream.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("unable to close the recording stream: %w", err))
	}
	s.Writer.Close()
	s.Reader.Close()
	return result.ErrorOrNil()
}
