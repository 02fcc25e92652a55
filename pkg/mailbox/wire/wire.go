// Package wire defines how mailbox messages travel over gRPC. The service
// has no generated stubs: messages are google.protobuf.Struct values and the
// service descriptor is declared by hand.
package wire

import (
	"fmt"

	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName    = "wakearbiter.mailbox.Mailbox"
	MethodPost     = "Post"
	FullMethodPost = "/" + ServiceName + "/" + MethodPost

	MaxMessageSize = 1 << 20
)

const (
	fieldID      = "id"
	fieldKind    = "kind"
	fieldPayload = "payload"
	fieldGesture = "gesture"
)

func MessageToStruct(msg mailbox.Message) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		fieldID:      msg.ID,
		fieldKind:    string(msg.Kind),
		fieldPayload: msg.Payload,
		fieldGesture: string(msg.Gesture),
	})
}

func MessageFromStruct(s *structpb.Struct) (mailbox.Message, error) {
	if s == nil {
		return mailbox.Message{}, fmt.Errorf("empty message")
	}
	fields := s.GetFields()
	kind, err := mailbox.ParseKind(fields[fieldKind].GetStringValue())
	if err != nil {
		return mailbox.Message{}, err
	}
	msg := mailbox.Message{
		ID:      fields[fieldID].GetStringValue(),
		Kind:    kind,
		Payload: fields[fieldPayload].GetStringValue(),
	}
	if g := fields[fieldGesture].GetStringValue(); g != "" {
		msg.Gesture, err = activation.ParseGesture(g)
		if err != nil {
			return mailbox.Message{}, err
		}
	}
	return msg, msg.Validate()
}
