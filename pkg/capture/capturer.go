package capture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/speech"
	"github.com/xaionaro-go/wakearbiter/pkg/vad"
)

// Capturer records a single utterance from the microphone and transcribes it.
type Capturer struct {
	Source      pcm.Source
	VAD         vad.VAD
	Transcriber speech.Transcriber

	config config
}

func New(
	source pcm.Source,
	voiceDetector vad.VAD,
	transcriber speech.Transcriber,
	opts ...Option,
) *Capturer {
	return &Capturer{
		Source:      source,
		VAD:         voiceDetector,
		Transcriber: transcriber,
		config:      Options(opts).config(),
	}
}

// Capture waits for speech, records it until the speaker pauses, and returns
// the transcript. It returns an empty string (and no error) if nobody spoke
// or the recognizer heard only noise. Errors of the audio source are
// returned as is.
func (c *Capturer) Capture(ctx context.Context) (_ string, _err error) {
	logger.Tracef(ctx, "Capture")
	defer func() { logger.Tracef(ctx, "/Capture: %v", _err) }()

	samples, err := c.record(ctx)
	if err != nil {
		return "", err
	}
	if samples == nil {
		logger.Debugf(ctx, "no speech within %v", c.config.StartTimeout)
		return "", nil
	}

	format := c.Source.Format()
	transcript, err := c.Transcriber.Transcribe(ctx, samples, format.SampleRate)
	if err != nil {
		return "", fmt.Errorf("unable to transcribe %v of audio: %w", time.Duration(len(samples))*time.Second/time.Duration(format.SampleRate), err)
	}
	text := strings.TrimSpace(string(transcript.Text))
	if transcript.IsEmpty() || speech.IsLikelyHallucination(text) {
		logger.Debugf(ctx, "discarding the transcript '%s'", text)
		return "", nil
	}
	return text, nil
}

func (c *Capturer) record(ctx context.Context) ([]int16, error) {
	format := c.Source.Format()
	frameDuration := format.FrameDuration()
	c.VAD.Reset()

	var (
		ring      = newPreRoll(format.FramesFor(c.config.PreRoll))
		waited    time.Duration
		recorded  time.Duration
		silence   time.Duration
		started   bool
		utterance []int16
	)
	for {
		frame, err := c.Source.ReadFrame(ctx)
		if err != nil {
			return nil, err
		}

		isVoice, err := c.VAD.IsVoice(ctx, frame)
		if err != nil {
			logger.Warnf(ctx, "unable to classify a frame, assuming non-voice: %v", err)
			isVoice = false
		}

		if !started {
			waited += frameDuration
			if !isVoice {
				ring.Add(frame)
				if waited >= c.config.StartTimeout {
					return nil, nil
				}
				continue
			}
			logger.Debugf(ctx, "speech started after %v", waited)
			started = true
			utterance = append(ring.Drain(), frame...)
			recorded = frameDuration
			continue
		}

		utterance = append(utterance, frame...)
		recorded += frameDuration
		if isVoice {
			silence = 0
		} else {
			silence += frameDuration
		}
		switch {
		case silence >= c.config.SilenceTimeout:
			logger.Debugf(ctx, "speech ended after %v", recorded)
			return utterance, nil
		case recorded >= c.config.MaxDuration:
			logger.Debugf(ctx, "the utterance reached the limit of %v", c.config.MaxDuration)
			return utterance, nil
		}
	}
}
