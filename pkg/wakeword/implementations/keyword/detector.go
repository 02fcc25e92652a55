// Package keyword spots wake phrases by transcribing short voiced utterances
// and matching the text against the configured keywords.
package keyword

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/speech"
	"github.com/xaionaro-go/wakearbiter/pkg/vad"
	"github.com/xaionaro-go/wakearbiter/pkg/wakeword"
)

const signalName = "wake_word"

type Detector struct {
	Config      wakeword.Config
	Format      pcm.Format
	VAD         vad.VAD
	Transcriber speech.Transcriber

	Buffer   []int16
	Speaking bool
	Voiced   time.Duration
	Silence  time.Duration

	config config
}

var (
	_ wakeword.Signal   = (*Detector)(nil)
	_ wakeword.Resetter = (*Detector)(nil)
)

func New(
	cfg wakeword.Config,
	format pcm.Format,
	voiceDetector vad.VAD,
	transcriber speech.Transcriber,
	opts ...Option,
) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var keywords []string
	for _, kw := range cfg.Keywords {
		if speech.Normalize(kw) != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keywords configured")
	}
	cfg.Keywords = keywords
	return &Detector{
		Config:      cfg,
		Format:      format,
		VAD:         voiceDetector,
		Transcriber: transcriber,
		config:      Options(opts).config(),
	}, nil
}

// Threshold is the minimal fraction of a keyword's words that must be
// recognized for a detection.
func (d *Detector) Threshold() float64 {
	return 1 - d.Config.Sensitivity/2
}

func (d *Detector) Reset(ctx context.Context) {
	logger.Tracef(ctx, "Reset")
	d.Buffer = d.Buffer[:0]
	d.Speaking = false
	d.Voiced = 0
	d.Silence = 0
	d.VAD.Reset()
}

func (d *Detector) ProcessFrame(
	ctx context.Context,
	frame pcm.Frame,
) (*wakeword.Event, error) {
	isVoice, err := d.VAD.IsVoice(ctx, frame)
	if err != nil {
		return nil, activation.ErrTransientSignal{Source: signalName, Err: err}
	}

	frameDuration := d.Format.FrameDuration()
	if !d.Speaking {
		if !isVoice {
			return nil, nil
		}
		d.Speaking = true
		d.Buffer = append(d.Buffer[:0], frame...)
		d.Voiced = frameDuration
		d.Silence = 0
		return nil, nil
	}

	d.Buffer = append(d.Buffer, frame...)
	if isVoice {
		d.Voiced += frameDuration
		d.Silence = 0
	} else {
		d.Silence += frameDuration
	}

	ended := d.Silence >= d.config.EndSilence
	tooLong := len(d.Buffer) >= d.Format.FramesFor(d.config.MaxUtterance)*d.Format.FrameLength
	if !ended && !tooLong {
		return nil, nil
	}

	utterance := d.Buffer
	voiced := d.Voiced
	d.Buffer = nil
	d.Speaking = false
	d.Voiced = 0
	d.Silence = 0

	if !ended && d.Config.RequireEndpoint {
		logger.Tracef(ctx, "dropping an utterance without an endpoint")
		return nil, nil
	}
	if voiced < d.config.MinUtterance {
		logger.Tracef(ctx, "dropping a too short utterance (%v)", voiced)
		return nil, nil
	}

	transcript, err := d.Transcriber.Transcribe(ctx, utterance, d.Format.SampleRate)
	if err != nil {
		return nil, activation.ErrTransientSignal{Source: signalName, Err: err}
	}
	return d.match(ctx, string(transcript.Text)), nil
}

func (d *Detector) match(ctx context.Context, text string) *wakeword.Event {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	threshold := d.Threshold()
	var best *wakeword.Event
	for _, kw := range d.Config.Keywords {
		score := speech.PhraseMatchRatio(text, kw)
		if score < threshold {
			continue
		}
		if best == nil || score > best.Score {
			best = &wakeword.Event{Keyword: kw, Score: score}
		}
	}
	logger.Debugf(ctx, "heard '%s': %s", text, best)
	return best
}

func (d *Detector) Close() error {
	return nil
}
