// Package genai transcribes utterances with a Gemini model: the audio is
// uploaded inline as a WAV file together with a transcription instruction.
package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/speech"
	"google.golang.org/genai"
)

type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

type Transcriber struct {
	Generator ContentGenerator

	config config
}

var _ speech.Transcriber = (*Transcriber)(nil)

func New(
	ctx context.Context,
	apiKey string,
	opts ...Option,
) (*Transcriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("an API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to initialize a GenAI client: %w", err)
	}
	return NewWithGenerator(client.Models, opts...), nil
}

func NewWithGenerator(
	generator ContentGenerator,
	opts ...Option,
) *Transcriber {
	return &Transcriber{
		Generator: generator,
		config:    Options(opts).config(),
	}
}

func (t *Transcriber) instruction() string {
	if t.config.Language == speech.LanguageUndefined {
		return t.config.Instruction
	}
	return fmt.Sprintf("%s The expected language is %s.", t.config.Instruction, t.config.Language)
}

func (t *Transcriber) Transcribe(
	ctx context.Context,
	samples []int16,
	sampleRate int,
) (_ *speech.Transcript, _err error) {
	logger.Tracef(ctx, "Transcribe(ctx, samples[len:%d], %d)", len(samples), sampleRate)
	defer func() { logger.Tracef(ctx, "/Transcribe(ctx, samples[len:%d], %d): %v", len(samples), sampleRate, _err) }()

	if len(samples) == 0 {
		return &speech.Transcript{Language: t.config.Language}, nil
	}

	wav, err := pcm.EncodeWAV(samples, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("unable to encode the audio: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(t.instruction()),
			genai.NewPartFromBytes(wav, "audio/wav"),
		}, genai.RoleUser),
	}
	resp, err := t.Generator.GenerateContent(ctx, t.config.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to transcribe with model '%s': %w", t.config.Model, err)
	}

	text := strings.TrimSpace(resp.Text())
	logger.Debugf(ctx, "transcript: '%s'", text)
	return &speech.Transcript{
		Text:       speech.Text(text),
		Language:   t.config.Language,
		Confidence: 1,
	}, nil
}

func (t *Transcriber) Close() error {
	return nil
}
