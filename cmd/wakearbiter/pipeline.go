package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"github.com/xaionaro-go/audio/pkg/audio"
	"github.com/xaionaro-go/wakearbiter/pkg/arbiter"
	"github.com/xaionaro-go/wakearbiter/pkg/capture"
	"github.com/xaionaro-go/wakearbiter/pkg/chime"
	"github.com/xaionaro-go/wakearbiter/pkg/config"
	"github.com/xaionaro-go/wakearbiter/pkg/gesture"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm/implementations/autorecorder"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm/implementations/portaudio"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm/implementations/wavfile"
	"github.com/xaionaro-go/wakearbiter/pkg/request"
	"github.com/xaionaro-go/wakearbiter/pkg/session"
	"github.com/xaionaro-go/wakearbiter/pkg/speech"
	"github.com/xaionaro-go/wakearbiter/pkg/speech/implementations/genai"
	"github.com/xaionaro-go/wakearbiter/pkg/vad"
	"github.com/xaionaro-go/wakearbiter/pkg/vad/implementations/spectralflux"
	"github.com/xaionaro-go/wakearbiter/pkg/wakeword"
	"github.com/xaionaro-go/wakearbiter/pkg/wakeword/implementations/command"
	"github.com/xaionaro-go/wakearbiter/pkg/wakeword/implementations/keyword"
)

// pipeline is everything that lives from one (re)start to the next.
type pipeline struct {
	Source      pcm.Source
	CaptureVAD  vad.VAD
	WakeVAD     vad.VAD
	Transcriber speech.Transcriber
	Signal      wakeword.Signal
	Arbiter     *arbiter.Arbiter
	Dispatcher  *session.Dispatcher
}

func newPipeline(
	ctx context.Context,
	fs afero.Fs,
	cfg *config.Config,
	store mailbox.Store,
	noMic bool,
) (_ *pipeline, _err error) {
	p := &pipeline{}
	defer func() {
		if _err != nil {
			p.Close()
		}
	}()

	var err error
	p.Source, err = newSource(ctx, fs, cfg, noMic)
	if err != nil {
		return nil, err
	}
	format := p.Source.Format()

	p.CaptureVAD, err = newVAD(cfg, format)
	if err != nil {
		return nil, err
	}

	p.Transcriber, err = newTranscriber(ctx, cfg)
	if err != nil {
		return nil, err
	}

	p.Signal, err = newSignal(ctx, cfg, format, p)
	if err != nil {
		return nil, err
	}

	p.Arbiter = arbiter.New(
		request.NewPoller(store),
		gesture.NewPoller(
			store,
			gesture.OptionWindow(cfg.Gesture.Window),
			gesture.OptionThreshold(cfg.Gesture.Threshold),
		),
		p.Signal,
	)

	capturer := capture.New(
		p.Source,
		p.CaptureVAD,
		p.Transcriber,
		capture.OptionStartTimeout(cfg.Capture.StartTimeout),
		capture.OptionSilenceTimeout(cfg.Capture.SilenceTimeout),
		capture.OptionMaxDuration(cfg.Capture.MaxDuration),
		capture.OptionPreRoll(cfg.Capture.PreRoll),
	)

	sessionOpts := session.Options{
		session.OptionGestureDirectiveFormat(cfg.Gesture.DirectiveFormat),
	}
	if cfg.Chime.Path != "" && !noMic {
		player, err := chime.New(fs, cfg.Chime.Path, audio.NewPlayerAuto(ctx))
		if err != nil {
			logger.Warnf(ctx, "the activation chime is disabled: %v", err)
		} else {
			sessionOpts = append(sessionOpts, session.OptionChime{Chime: player})
		}
	}
	p.Dispatcher = session.NewDispatcher(capturer, sessionOpts...)

	logger.Infof(ctx, "the pipeline is ready: source %T, VAD %T, transcriber %T, wake word %T", p.Source, p.CaptureVAD, p.Transcriber, p.Signal)
	return p, nil
}

func newSource(
	ctx context.Context,
	fs afero.Fs,
	cfg *config.Config,
	noMic bool,
) (pcm.Source, error) {
	format := cfg.Format()

	var (
		src pcm.Source
		err error
	)
	switch {
	case noMic:
		logger.Infof(ctx, "running without a microphone")
		return wavfile.NewSilence(format), nil
	case cfg.Audio.Backend == "wav":
		src, err = wavfile.Open(fs, cfg.Audio.InputPath, format.FrameLength, cfg.Audio.Realtime)
	case cfg.Audio.Backend == "auto":
		src, err = autorecorder.New(ctx, format)
	default:
		src, err = portaudio.New(ctx, cfg.Audio.Device, format)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Audio.RecordPath == "" {
		return src, nil
	}
	recorder, err := pcm.NewWAVRecorder(fs, cfg.Audio.RecordPath, src)
	if err != nil {
		src.Close()
		return nil, err
	}
	return recorder, nil
}

func newVAD(
	cfg *config.Config,
	format pcm.Format,
) (vad.VAD, error) {
	switch cfg.VAD.Implementation {
	case "spectralflux":
		return spectralflux.New(
			format,
			spectralflux.OptionRatio(cfg.VAD.FluxRatio),
			spectralflux.OptionQuietTime(cfg.VAD.QuietTime),
		), nil
	default:
		return newLibfvadVAD(format.SampleRate, cfg.VAD.Mode)
	}
}

func newTranscriber(
	ctx context.Context,
	cfg *config.Config,
) (speech.Transcriber, error) {
	if cfg.Transcription.Offline {
		return newWhisperTranscriber(ctx, cfg)
	}
	t, err := genai.New(
		ctx,
		cfg.Transcription.GenAI.APIKey(),
		genai.OptionModel(cfg.Transcription.GenAI.Model),
		genai.OptionLanguage(speech.Language(cfg.Transcription.Language)),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the online transcriber: %w", err)
	}
	return t, nil
}

func newSignal(
	ctx context.Context,
	cfg *config.Config,
	format pcm.Format,
	p *pipeline,
) (wakeword.Signal, error) {
	wakeCfg := cfg.WakeWordConfig()
	switch cfg.WakeWord.Implementation {
	case "command":
		d, err := command.New(
			ctx,
			strings.Fields(cfg.WakeWord.Command),
			wakeCfg,
			command.OptionReadyTimeout(cfg.WakeWord.ReadyTimeout),
		)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		var err error
		p.WakeVAD, err = newVAD(cfg, format)
		if err != nil {
			return nil, err
		}
		d, err := keyword.New(wakeCfg, format, p.WakeVAD, p.Transcriber)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// afterSession drops whatever the detectors heard during the session.
func (p *pipeline) afterSession(ctx context.Context) {
	if r, ok := p.Signal.(wakeword.Resetter); ok {
		r.Reset(ctx)
	}
	p.CaptureVAD.Reset()
}

func (p *pipeline) Close() error {
	var result *multierror.Error
	if p.Signal != nil {
		if err := p.Signal.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("unable to close the wake word detector: %w", err))
		}
	}
	for _, c := range []interface{ Close() error }{p.WakeVAD, p.CaptureVAD, p.Transcriber, p.Source} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("unable to close %T: %w", c, err))
		}
	}
	return result.ErrorOrNil()
}
