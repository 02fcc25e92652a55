package chime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/spf13/afero"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/xcontext"
)

const bufferSize = 100 * time.Millisecond

// Output is satisfied by *audio.Player (see audio.NewPlayerAuto).
type Output interface {
	PlayPCM(
		sampleRate audio.SampleRate,
		channels audio.Channel,
		format audio.PCMFormat,
		bufferSize time.Duration,
		reader io.Reader,
	) (audio.PlayStream, error)
}

type Player struct {
	Output     Output
	Samples    []int16
	SampleRate int
}

func New(
	fs afero.Fs,
	path string,
	output Output,
) (*Player, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open '%s': %w", path, err)
	}
	defer f.Close()

	samples, sampleRate, err := pcm.DecodeWAV(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decode '%s': %w", path, err)
	}

	return NewFromSamples(samples, sampleRate, output), nil
}

func NewFromSamples(
	samples []int16,
	sampleRate int,
	output Output,
) *Player {
	return &Player{
		Output:     output,
		Samples:    samples,
		SampleRate: sampleRate,
	}
}

// Play blocks until the chime is drained or ctx is done. In the latter case
// the playback still finishes in the background.
func (p *Player) Play(ctx context.Context) (_err error) {
	logger.Tracef(ctx, "Play")
	defer func() { logger.Tracef(ctx, "/Play: %v", _err) }()

	if len(p.Samples) == 0 {
		return nil
	}

	stream, err := p.Output.PlayPCM(
		audio.SampleRate(p.SampleRate),
		1,
		audio.PCMFormatS16LE,
		bufferSize,
		bytes.NewReader(pcm.Frame(p.Samples).Bytes()),
	)
	if err != nil {
		return fmt.Errorf("unable to start the playback: %w", err)
	}

	done := make(chan error, 1)
	playCtx := xcontext.DetachDone(ctx)
	observability.Go(playCtx, func() {
		defer close(done)
		err := stream.Drain()
		if closeErr := stream.Close(); closeErr != nil {
			logger.Debugf(playCtx, "unable to close the playback stream: %v", closeErr)
		}
		if err != nil {
			done <- fmt.Errorf("unable to drain the playback: %w", err)
		}
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
