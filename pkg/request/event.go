package request

import (
	"fmt"

	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
)

type Kind int

const (
	KindUndefined = Kind(iota)
	KindPrompt
	KindReset
	KindRestart
)

func (k Kind) String() string {
	switch k {
	case KindPrompt:
		return "prompt"
	case KindReset:
		return "reset"
	case KindRestart:
		return "restart"
	}
	return fmt.Sprintf("unknown_kind_%d", int(k))
}

// Event is a single consumed command from the requests table.
type Event struct {
	Kind Kind
	Text string
}

func eventFromMessage(msg mailbox.Message) (*Event, error) {
	switch msg.Kind {
	case mailbox.KindPrompt:
		return &Event{Kind: KindPrompt, Text: msg.Payload}, nil
	case mailbox.KindReset:
		return &Event{Kind: KindReset}, nil
	case mailbox.KindRestart:
		return &Event{Kind: KindRestart}, nil
	}
	return nil, fmt.Errorf("message kind '%s' is not a request", msg.Kind)
}

func (ev *Event) String() string {
	if ev == nil {
		return "<none>"
	}
	if ev.Kind == KindPrompt {
		return fmt.Sprintf("%s{%q}", ev.Kind, ev.Text)
	}
	return ev.Kind.String()
}
