//go:build !no_whisper
// +build !no_whisper

package whisper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mutablelogic/go-whisper/sys/whisper"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/speech"
	"github.com/xaionaro-go/xsync"
)

// #cgo pkg-config: libwhisper
// #cgo linux pkg-config: libwhisper-linux
// #cgo darwin pkg-config: libwhisper-darwin
import "C"

// Transcriber runs whisper.cpp locally on complete utterances. One model
// context serves one utterance at a time.
type Transcriber struct {
	xsync.Mutex
	Context  *whisper.Context
	Params   whisper.FullParams
	Language speech.Language
}

var _ speech.Transcriber = (*Transcriber)(nil)

func New(
	ctx context.Context,
	modelBytes []byte,
	language speech.Language,
	samplingStrategy SamplingStrategy,
	alignmentAheadPreset whisper.AlignmentAheadsPreset,
	opts ...Option,
) (*Transcriber, error) {
	cfg := Options(opts).config()
	params := whisper.DefaultContextParams()
	if cfg.UseGPU != nil {
		params.SetUseGpu(*cfg.UseGPU)
	}
	if cfg.GPUDeviceID != nil {
		params.SetGpuDevice(*cfg.GPUDeviceID)
	}
	if cfg.FlashAttn != nil {
		params.SetFlashAttn(*cfg.FlashAttn)
	}
	params.SetTokenTimestamps(false)
	params.SetDTWAheadsPreset(alignmentAheadPreset)
	whisper.Whisper_log_set(func(level whisper.LogLevel, text string) {
		logger.FromCtx(ctx).Log(logLevelFromWhisper(level), strings.TrimRight(text, "\n"))
	})

	whisperCtx := whisper.Whisper_init_from_buffer_with_params(modelBytes, params)
	if whisperCtx == nil {
		return nil, ErrInitContext{Err: fmt.Errorf("whisper.cpp returned no context for a model of %d bytes", len(modelBytes))}
	}

	t := &Transcriber{
		Context:  whisperCtx,
		Params:   whisper.DefaultFullParams(samplingStrategy.ToWhisper()),
		Language: language,
	}

	if cfg.Translate && !whisper.Whisper_is_multilingual(t.Context) {
		whisper.Whisper_free(t.Context)
		return nil, ErrModelCannotTranslate{}
	}

	lang := LanguageToWhisper(language)
	logger.Infof(ctx, "language: '%v'; shouldTranslate: %v", lang, cfg.Translate)
	t.Params.SetTranslate(cfg.Translate)
	t.Params.SetLanguage(lang)
	return t, nil
}

func (t *Transcriber) Transcribe(
	ctx context.Context,
	samples []int16,
	sampleRate int,
) (_ *speech.Transcript, _err error) {
	logger.Tracef(ctx, "Transcribe(ctx, samples[len:%d], %d)", len(samples), sampleRate)
	defer func() { logger.Tracef(ctx, "/Transcribe(ctx, samples[len:%d], %d): %v", len(samples), sampleRate, _err) }()

	if sampleRate != SampleRate {
		return nil, ErrUnsupportedSampleRate{SampleRate: sampleRate}
	}
	if len(samples) == 0 {
		return &speech.Transcript{Language: t.Language}, nil
	}

	var (
		transcript *speech.Transcript
		err        error
	)
	t.Mutex.Do(xsync.WithNoLogging(ctx, true), func() {
		transcript, err = t.transcribeNoLock(ctx, pcm.Frame(samples).Float32())
	})
	return transcript, err
}

func (t *Transcriber) transcribeNoLock(
	ctx context.Context,
	samples []float32,
) (*speech.Transcript, error) {
	if t.Context == nil {
		return nil, fmt.Errorf("the transcriber is closed")
	}
	t.Params.SetAbortCallback(t.Context, func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	})

	startTS := time.Now()
	err := whisper.Whisper_full(t.Context, t.Params, samples)
	logger.Debugf(ctx, "whisper processed %d samples in %v: %v", len(samples), time.Since(startTS), err)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("whisper failed: %w", err)
	}

	var (
		texts          []string
		noSpeechProb   float32
		confidenceSum  float32
		confidenceSize int
	)
	numSegments := t.Context.NumSegments()
	for i := 0; i < numSegments; i++ {
		segment := t.Context.Segment(i)
		logger.Tracef(ctx, "segment %d: %#+v", i, segment)
		if isHangingSegment(segment) {
			logger.Debugf(ctx, "segment %d is a hang-causing segment, skipping", i)
			continue
		}
		if speech.IsLikelyHallucination(segment.Text) {
			logger.Debugf(ctx, "segment %d is likely a hallucination, skipping: '%s'", i, segment.Text)
			continue
		}
		texts = append(texts, strings.TrimSpace(segment.Text))
		if segment.NoSpeechProb > noSpeechProb {
			noSpeechProb = segment.NoSpeechProb
		}
		for _, token := range segment.Tokens {
			confidenceSum += token.P
			confidenceSize++
		}
	}

	transcript := &speech.Transcript{
		Text:                speech.Text(strings.Join(texts, " ")),
		Language:            speech.Language(whisper.Whisper_lang_str(t.Context.DefaultLangId())),
		NoSpeechProbability: noSpeechProb,
	}
	if confidenceSize > 0 {
		transcript.Confidence = confidenceSum / float32(confidenceSize)
	}
	return transcript, nil
}

// isHangingSegment detects the output whisper produces when it hangs on a
// specific audio: nothing but exclamation marks.
func isHangingSegment(s *whisper.Segment) bool {
	if len(s.Tokens) == 0 {
		return false
	}
	for _, token := range s.Tokens {
		if token.Text != "!" {
			return false
		}
	}
	return true
}

func (t *Transcriber) Close() error {
	t.Mutex.Do(context.Background(), func() {
		if t.Context == nil {
			return
		}
		whisper.Whisper_free(t.Context)
		t.Context = nil
	})
	return nil
}
