package wavfile

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/afero"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
)

// Source plays back pre-recorded samples frame by frame. It is used when no
// microphone is available and in tests.
type Source struct {
	Samples  []int16
	Position int
	Config   pcm.Format
	Realtime bool
	LastRead time.Time

	// Loop restarts the playback instead of reporting io.EOF.
	Loop   bool
	Closed bool
}

var _ pcm.Source = (*Source)(nil)

func Open(
	fs afero.Fs,
	path string,
	frameLength int,
	realtime bool,
) (*Source, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	samples, sampleRate, err := pcm.DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decode '%s': %w", path, err)
	}
	src := New(samples, pcm.Format{SampleRate: sampleRate, FrameLength: frameLength})
	src.Realtime = realtime
	return src, nil
}

// NewSilence returns an endless realtime source of silence, for running
// without a microphone.
func NewSilence(format pcm.Format) *Source {
	src := New(make([]int16, format.FrameLength), format)
	src.Realtime = true
	src.Loop = true
	return src
}

func New(samples []int16, format pcm.Format) *Source {
	return &Source{
		Samples: samples,
		Config:  format,
	}
}

func (s *Source) Format() pcm.Format {
	return s.Config
}

// ReadFrame returns the next full frame. The trailing partial frame is
// padded with silence. When the samples are exhausted it returns
// activation.ErrDeviceFailure wrapping io.EOF.
func (s *Source) ReadFrame(ctx context.Context) (pcm.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Position >= len(s.Samples) {
		if !s.Loop || s.Closed || len(s.Samples) == 0 {
			return nil, activation.ErrDeviceFailure{Err: io.EOF}
		}
		s.Position = 0
	}
	if s.Realtime {
		s.pace(ctx)
	}

	frame := make(pcm.Frame, s.Config.FrameLength)
	n := copy(frame, s.Samples[s.Position:])
	s.Position += n
	logger.Tracef(ctx, "read %d samples, position %d/%d", n, s.Position, len(s.Samples))
	return frame, nil
}

func (s *Source) pace(ctx context.Context) {
	if !s.LastRead.IsZero() {
		wait := time.Until(s.LastRead.Add(s.Config.FrameDuration()))
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
			case <-t.C:
			}
			t.Stop()
		}
	}
	s.LastRead = time.Now()
}

func (s *Source) Close() error {
	s.Closed = true
	s.Position = len(s.Samples)
	return nil
}
