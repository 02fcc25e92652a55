package pcm

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

const wavBitDepth = 16

func intBuffer(samples []int16, sampleRate int) *goaudio.IntBuffer {
	data := make([]int, len(samples))
	for idx, s := range samples {
		data[idx] = int(s)
	}
	return &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
}

func WriteWAV(
	w io.WriteSeeker,
	samples []int16,
	sampleRate int,
) error {
	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, 1, 1)
	if err := enc.Write(intBuffer(samples, sampleRate)); err != nil {
		return fmt.Errorf("unable to write the samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("unable to finalize the WAV stream: %w", err)
	}
	return nil
}

// EncodeWAV returns a complete mono 16-bit WAV file with the samples.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	fs := afero.NewMemMapFs()
	const path = "/utterance.wav"
	f, err := fs.Create(path)
	if err != nil {
		return nil, err
	}
	if err := WriteWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return afero.ReadFile(fs, path)
}

// DecodeWAV reads a mono (or first channel of a multichannel) WAV stream.
func DecodeWAV(r io.ReadSeeker) ([]int16, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("unable to decode PCM: %w", err)
	}
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	shift := 0
	if buf.SourceBitDepth > wavBitDepth {
		shift = buf.SourceBitDepth - wavBitDepth
	}
	samples := make([]int16, 0, len(buf.Data)/channels)
	for idx := 0; idx < len(buf.Data); idx += channels {
		v := buf.Data[idx]
		switch {
		case buf.SourceBitDepth == 8:
			v = (v - 128) << 8
		case shift > 0:
			v >>= shift
		}
		samples = append(samples, int16(v))
	}
	return samples, buf.Format.SampleRate, nil
}
