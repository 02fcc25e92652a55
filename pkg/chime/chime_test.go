package chime

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
)

type fakeStream struct {
	drain  chan struct{}
	closed bool
}

func (s *fakeStream) Drain() error {
	if s.drain != nil {
		<-s.drain
	}
	return nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type fakeOutput struct {
	locker     sync.Mutex
	sampleRate audio.SampleRate
	played     []byte
	stream     *fakeStream
}

func (o *fakeOutput) PlayPCM(
	sampleRate audio.SampleRate,
	_ audio.Channel,
	_ audio.PCMFormat,
	_ time.Duration,
	reader io.Reader,
) (audio.PlayStream, error) {
	o.locker.Lock()
	defer o.locker.Unlock()
	b, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	o.sampleRate = sampleRate
	o.played = b
	return o.stream, nil
}

func TestPlayFromFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	samples := []int16{0, 100, -100, 32767, -32768}
	wavBytes, err := pcm.EncodeWAV(samples, 22050)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "/chime.wav", wavBytes, 0644))

	out := &fakeOutput{stream: &fakeStream{}}
	p, err := New(fs, "/chime.wav", out)
	require.NoError(t, err)
	require.NoError(t, p.Play(context.Background()))

	assert.Equal(t, audio.SampleRate(22050), out.sampleRate)
	assert.Equal(t, pcm.Frame(samples).Bytes(), out.played)
	assert.True(t, out.stream.closed)
}

func TestPlayReturnsOnCancel(t *testing.T) {
	stream := &fakeStream{drain: make(chan struct{})}
	p := NewFromSamples([]int16{1, 2, 3}, 16000, &fakeOutput{stream: stream})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, p.Play(ctx), context.Canceled)
	close(stream.drain)
}

func TestMissingFile(t *testing.T) {
	_, err := New(afero.NewMemMapFs(), "/nope.wav", &fakeOutput{})
	require.Error(t, err)
}
