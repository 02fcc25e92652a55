package pcm

import (
	"context"
	"io"
	"time"
)

// Frame is one chunk of mono signed 16-bit PCM.
type Frame []int16

type Format struct {
	SampleRate  int
	FrameLength int
}

func DefaultFormat() Format {
	return Format{
		SampleRate:  16000,
		FrameLength: 512,
	}
}

func (f Format) FrameDuration() time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(f.FrameLength) * time.Second / time.Duration(f.SampleRate)
}

// FramesFor returns how many frames cover the duration (rounded up).
func (f Format) FramesFor(d time.Duration) int {
	frameDuration := f.FrameDuration()
	if frameDuration <= 0 || d <= 0 {
		return 0
	}
	return int((d + frameDuration - 1) / frameDuration)
}

// Source yields frames of a fixed Format. ReadFrame blocks until a full frame
// is available; an error means the source is exhausted.
type Source interface {
	io.Closer
	ReadFrame(ctx context.Context) (Frame, error)
	Format() Format
}

func (f Frame) Clone() Frame {
	if f == nil {
		return nil
	}
	return append(Frame(nil), f...)
}

// Float32 converts the samples into [-1, 1) floats.
func (f Frame) Float32() []float32 {
	out := make([]float32, len(f))
	for idx, s := range f {
		out[idx] = float32(s) / 32768
	}
	return out
}

// Bytes encodes the samples as little-endian PCM.
func (f Frame) Bytes() []byte {
	out := make([]byte, len(f)*2)
	for idx, s := range f {
		out[idx*2] = byte(uint16(s))
		out[idx*2+1] = byte(uint16(s) >> 8)
	}
	return out
}

func FrameFromBytes(b []byte) Frame {
	out := make(Frame, len(b)/2)
	for idx := range out {
		out[idx] = int16(uint16(b[idx*2]) | uint16(b[idx*2+1])<<8)
	}
	return out
}
