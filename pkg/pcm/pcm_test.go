package pcm

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectDevice(t *testing.T) {
	devices := []DeviceDescriptor{
		{Index: 0, Name: "default"},
		{Index: 1, Name: "HDA Intel PCH: ALC257 Analog"},
		{Index: 2, Name: "USB PnP Sound Device: Audio"},
		{Index: 3, Name: "USB Camera: Audio"},
	}
	for _, tc := range []struct {
		name string
		want int
	}{
		{name: "", want: 0},
		{name: "  ", want: 0},
		{name: "alc257", want: 1},
		{name: "USB", want: 3},
		{name: "pnp", want: 2},
		{name: "bluetooth", want: 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SelectDevice(devices, tc.name))
		})
	}
}

func TestFormat(t *testing.T) {
	f := DefaultFormat()
	assert.Equal(t, 32*time.Millisecond, f.FrameDuration())
	assert.Equal(t, 32, f.FramesFor(time.Second))
	assert.Equal(t, 1, f.FramesFor(time.Millisecond))
	assert.Zero(t, f.FramesFor(0))
}

func TestFrameBytes(t *testing.T) {
	frame := Frame{0, 1, -1, 32767, -32768}
	b := frame.Bytes()
	assert.Equal(t, []byte{0, 0, 1, 0, 0xff, 0xff, 0xff, 0x7f, 0x00, 0x80}, b)
	assert.Equal(t, frame, FrameFromBytes(b))
}

func TestEncodeWAV(t *testing.T) {
	samples := []int16{0, 100, -100, 32000, -32000}
	b, err := EncodeWAV(samples, 16000)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(b[:4]))

	decoded, rate, err := DecodeWAV(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 16000, rate)
	assert.Equal(t, samples, decoded)
}

type countingSource struct {
	left   int
	closed bool
}

func (s *countingSource) ReadFrame(context.Context) (Frame, error) {
	if s.left == 0 {
		return nil, io.EOF
	}
	s.left--
	return Frame{int16(s.left), 1, 2, 3}, nil
}

func (s *countingSource) Format() Format {
	return Format{SampleRate: 16000, FrameLength: 4}
}

func (s *countingSource) Close() error {
	s.closed = true
	return nil
}

func TestWAVRecorder(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	src := &countingSource{left: 3}

	rec, err := NewWAVRecorder(fs, "/session.wav", src)
	require.NoError(t, err)

	var frames int
	for {
		_, err := rec.ReadFrame(ctx)
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		frames++
	}
	require.Equal(t, 3, frames)
	require.NoError(t, rec.Close())
	assert.True(t, src.closed)

	f, err := fs.Open("/session.wav")
	require.NoError(t, err)
	defer f.Close()
	samples, rate, err := DecodeWAV(f)
	require.NoError(t, err)
	assert.Equal(t, 16000, rate)
	assert.Equal(t, []int16{2, 1, 2, 3, 1, 1, 2, 3, 0, 1, 2, 3}, samples)
}
