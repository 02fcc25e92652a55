package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestMessageFromStructRejectsGarbage(t *testing.T) {
	_, err := MessageFromStruct(nil)
	require.Error(t, err)

	s, err := structpb.NewStruct(map[string]any{"kind": "gesture", "gesture": "fist"})
	require.NoError(t, err)
	_, err = MessageFromStruct(s)
	require.Error(t, err)

	s, err = structpb.NewStruct(map[string]any{"kind": "launch"})
	require.NoError(t, err)
	_, err = MessageFromStruct(s)
	require.Error(t, err)
}

func TestMessageStructGesture(t *testing.T) {
	s, err := MessageToStruct(mailbox.Message{ID: "x", Kind: mailbox.KindGesture, Gesture: activation.GesturePalm})
	require.NoError(t, err)
	msg, err := MessageFromStruct(s)
	require.NoError(t, err)
	assert.Equal(t, activation.GesturePalm, msg.Gesture)
	assert.Equal(t, "x", msg.ID)
}
