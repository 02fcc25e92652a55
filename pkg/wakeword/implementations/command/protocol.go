package command

import (
	"encoding/json"
	"fmt"
)

type EventType string

const (
	EventTypeUndefined = EventType("")
	EventTypeReady     = EventType("ready")
	EventTypeWake      = EventType("wake")
	EventTypeError     = EventType("error")
)

// Message is one line the detector process prints to its stdout.
type Message struct {
	Event   EventType `json:"event"`
	Keyword string    `json:"keyword,omitempty"`
	Index   int       `json:"index,omitempty"`
	Score   float64   `json:"score,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	Message string    `json:"message,omitempty"`
}

func ParseMessage(line []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, fmt.Errorf("unable to parse '%s': %w", line, err)
	}
	switch msg.Event {
	case EventTypeReady, EventTypeWake, EventTypeError:
	default:
		return nil, fmt.Errorf("unknown event '%s'", msg.Event)
	}
	return &msg, nil
}

// IsActivationKeyReason tells whether the engine rejected its access key.
func IsActivationKeyReason(reason string) bool {
	switch reason {
	case "activation", "activation_limit", "activation_refused", "activation_throttled", "invalid_key":
		return true
	}
	return false
}
