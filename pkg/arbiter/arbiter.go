package arbiter

import (
	"context"
	"errors"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/request"
	"github.com/xaionaro-go/wakearbiter/pkg/wakeword"
)

type RequestPoller interface {
	Poll(ctx context.Context) *request.Event
}

type GesturePoller interface {
	Poll(ctx context.Context) (activation.Gesture, bool)
}

// Handler is given every committed activation. Returning an error wrapping
// activation.ErrDeviceFailure stops the loop; other errors are only logged.
type Handler interface {
	Handle(ctx context.Context, activationCtx *activation.Context) error
}

type HandlerFunc func(ctx context.Context, activationCtx *activation.Context) error

func (fn HandlerFunc) Handle(ctx context.Context, activationCtx *activation.Context) error {
	return fn(ctx, activationCtx)
}

// Arbiter decides, once per audio frame, which trigger (if any) starts a
// session. The checks are mutually exclusive and go in a fixed order:
// mailbox request, gesture, wake word.
type Arbiter struct {
	Requests RequestPoller
	Gestures GesturePoller
	Signal   wakeword.Signal
	State    State
}

func New(
	requests RequestPoller,
	gestures GesturePoller,
	signal wakeword.Signal,
) *Arbiter {
	return &Arbiter{
		Requests: requests,
		Gestures: gestures,
		Signal:   signal,
	}
}

func (a *Arbiter) SkipNextWake() {
	a.State.SkipNextWake = true
}

// Cycle runs one arbitration step over the frame. It returns nil if nothing
// triggered. The only error it returns is activation.ErrRestartRequested.
func (a *Arbiter) Cycle(
	ctx context.Context,
	frame pcm.Frame,
) (*activation.Context, error) {
	a.State.Cycles++

	if ev := a.Requests.Poll(ctx); ev != nil {
		switch ev.Kind {
		case request.KindReset:
			return a.commit(ctx, activation.NewConversationReset()), nil
		case request.KindPrompt:
			return a.commit(ctx, activation.NewInjectedPrompt(ev.Text)), nil
		case request.KindRestart:
			logger.Infof(ctx, "a restart was requested")
			return nil, activation.ErrRestartRequested{}
		default:
			logger.Errorf(ctx, "unexpected request %s", ev)
		}
	}

	if g, ok := a.Gestures.Poll(ctx); ok {
		return a.commit(ctx, activation.NewGestureShortcut(g)), nil
	}

	if a.State.SkipNextWake {
		a.State.SkipNextWake = false
		a.State.SuppressWakeOnce = false
		logger.Debugf(ctx, "skipping the wake word once")
		return a.commit(ctx, activation.NewWakeWord()), nil
	}

	ev, err := a.Signal.ProcessFrame(ctx, frame)
	a.reportSignalError(ctx, err)
	if err != nil {
		ev = nil
	}

	if a.State.SuppressWakeOnce {
		a.State.SuppressWakeOnce = false
		if ev != nil {
			logger.Debugf(ctx, "discarding %s right after another trigger", ev)
		}
		if r, ok := a.Signal.(wakeword.Resetter); ok {
			r.Reset(ctx)
		}
		return nil, nil
	}

	if ev == nil {
		return nil, nil
	}
	logger.Debugf(ctx, "woken up by %s", ev)
	return a.commit(ctx, activation.NewWakeWord()), nil
}

func (a *Arbiter) commit(
	ctx context.Context,
	activationCtx *activation.Context,
) *activation.Context {
	if !activationCtx.FromWakeWord() {
		a.State.SuppressWakeOnce = true
	}
	logger.Debugf(ctx, "committed %s at cycle %d", activationCtx, a.State.Cycles)
	return activationCtx
}

// reportSignalError warns about a signal error unless it repeats the error of
// the previous cycle.
func (a *Arbiter) reportSignalError(ctx context.Context, err error) {
	if err == nil {
		a.State.LastSignalError = ""
		return
	}
	err = asTransient(err)
	if err.Error() == a.State.LastSignalError {
		logger.Tracef(ctx, "%v", err)
		return
	}
	a.State.LastSignalError = err.Error()
	logger.Warnf(ctx, "%v", err)
}

func asTransient(err error) error {
	var transient activation.ErrTransientSignal
	if errors.As(err, &transient) {
		return err
	}
	return activation.ErrTransientSignal{Source: "wake_word", Err: err}
}

// Run reads frames from the source and runs a Cycle on each of them until the
// source fails, the context is cancelled or a restart is requested. The
// source is owned by the caller; the handler may read from it too (e.g. to
// capture the prompt after a wake word).
func (a *Arbiter) Run(
	ctx context.Context,
	source pcm.Source,
	handler Handler,
) (_err error) {
	logger.Debugf(ctx, "Run")
	defer func() { logger.Debugf(ctx, "/Run: %v (%s)", _err, a.State) }()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := source.ReadFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var devErr activation.ErrDeviceFailure
			if errors.As(err, &devErr) {
				return err
			}
			return activation.ErrDeviceFailure{Err: err}
		}

		activationCtx, err := a.Cycle(ctx, frame)
		if err != nil {
			return err
		}
		if activationCtx == nil {
			continue
		}

		err = handler.Handle(ctx, activationCtx)
		if err == nil {
			continue
		}
		var devErr activation.ErrDeviceFailure
		switch {
		case errors.As(err, &devErr):
			return fmt.Errorf("unable to handle %s: %w", activationCtx, err)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			logger.Errorf(ctx, "unable to handle %s: %v", activationCtx, err)
		}
	}
}
