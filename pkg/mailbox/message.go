package mailbox

import (
	"fmt"
	"strings"

	"github.com/xaionaro-go/wakearbiter/pkg/activation"
)

type Kind string

const (
	KindUndefined = Kind("")
	KindPrompt    = Kind("prompt")
	KindReset     = Kind("reset")
	KindGesture   = Kind("gesture")
	KindRestart   = Kind("restart")
)

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k.Table() == TableUndefined {
		return KindUndefined, fmt.Errorf("unknown message kind '%s'", s)
	}
	return k, nil
}

func (k Kind) Table() Table {
	switch k {
	case KindPrompt, KindReset, KindRestart:
		return TableRequests
	case KindGesture:
		return TableGestures
	}
	return TableUndefined
}

type Table string

const (
	TableUndefined = Table("")
	TableRequests  = Table("requests")
	TableGestures  = Table("gestures")
)

func (t Table) IsValid() bool {
	switch t {
	case TableRequests, TableGestures:
		return true
	}
	return false
}

type Message struct {
	ID      string
	Kind    Kind
	Payload string
	Gesture activation.Gesture
}

func (msg Message) Table() Table {
	return msg.Kind.Table()
}

func (msg Message) Validate() error {
	switch msg.Kind {
	case KindPrompt:
		if strings.TrimSpace(msg.Payload) == "" {
			return fmt.Errorf("a prompt message requires a non-empty payload")
		}
	case KindReset, KindRestart:
	case KindGesture:
		if !msg.Gesture.IsValid() {
			return fmt.Errorf("a gesture vote requires a valid gesture, got '%s'", msg.Gesture)
		}
	default:
		return fmt.Errorf("unknown message kind '%s'", msg.Kind)
	}
	return nil
}

func (msg Message) String() string {
	switch msg.Kind {
	case KindPrompt:
		return fmt.Sprintf("%s{%q}", msg.Kind, msg.Payload)
	case KindGesture:
		return fmt.Sprintf("%s{%s}", msg.Kind, msg.Gesture)
	}
	return string(msg.Kind)
}
