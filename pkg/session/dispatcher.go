package session

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
)

// ResetSentinel is the text that tells the conversation system to forget
// the conversation.
const ResetSentinel = "resetConversation"

type Capturer interface {
	Capture(ctx context.Context) (string, error)
}

// Result is what a session produces for the downstream conversation system.
type Result struct {
	Kind                    activation.Kind     `json:"-"`
	KindName                string              `json:"kind"`
	Text                    string              `json:"text"`
	Reset                   bool                `json:"reset,omitempty"`
	SuppressActivationChime bool                `json:"suppress_activation_chime"`
	Context                 *activation.Context `json:"-"`
}

type Dispatcher struct {
	Capturer Capturer

	config config
}

func NewDispatcher(
	capturer Capturer,
	opts ...Option,
) *Dispatcher {
	return &Dispatcher{
		Capturer: capturer,
		config:   Options(opts).config(),
	}
}

// Dispatch turns a committed activation into the session's text. Only a
// wake word and a palm gesture listen to the microphone.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	activationCtx *activation.Context,
) (_ *Result, _err error) {
	logger.Tracef(ctx, "Dispatch(ctx, %s)", activationCtx)
	defer func() { logger.Tracef(ctx, "/Dispatch(ctx, %s): %v", activationCtx, _err) }()

	if activationCtx == nil {
		return nil, fmt.Errorf("no activation to dispatch")
	}

	result := &Result{
		Kind:                    activationCtx.Kind,
		KindName:                activationCtx.Kind.String(),
		SuppressActivationChime: !activationCtx.FromWakeWord(),
		Context:                 activationCtx,
	}

	switch activationCtx.Kind {
	case activation.KindWakeWord:
		if d.config.Chime != nil {
			if err := d.config.Chime.Play(ctx); err != nil {
				logger.Warnf(ctx, "unable to play the activation chime: %v", err)
			}
		}
		text, err := d.Capturer.Capture(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to capture the prompt: %w", err)
		}
		result.Text = text

	case activation.KindInjectedPrompt:
		result.Text = activationCtx.Text

	case activation.KindConversationReset:
		result.Text = ResetSentinel
		result.Reset = true

	case activation.KindGestureShortcut:
		if activationCtx.Gesture != activation.GesturePalm {
			result.Text = fmt.Sprintf(d.config.GestureDirectiveFormat, activationCtx.Gesture)
			break
		}
		text, err := d.Capturer.Capture(ctx)
		if err != nil {
			return nil, fmt.Errorf("unable to capture the prompt: %w", err)
		}
		activationCtx.ResolvedText = text
		result.Text = text

	default:
		return nil, fmt.Errorf("unknown activation kind: %s", activationCtx.Kind)
	}

	logger.Debugf(ctx, "session result for %s: '%s'", activationCtx, result.Text)
	return result, nil
}
