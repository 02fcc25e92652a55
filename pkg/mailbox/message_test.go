package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
)

func TestKindTable(t *testing.T) {
	assert.Equal(t, TableRequests, KindPrompt.Table())
	assert.Equal(t, TableRequests, KindReset.Table())
	assert.Equal(t, TableRequests, KindRestart.Table())
	assert.Equal(t, TableGestures, KindGesture.Table())
	assert.Equal(t, TableUndefined, Kind("bogus").Table())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Prompt")
	require.NoError(t, err)
	assert.Equal(t, KindPrompt, k)

	_, err = ParseKind("shutdown")
	require.Error(t, err)
}

func TestMessageValidate(t *testing.T) {
	for name, tc := range map[string]struct {
		msg     Message
		wantErr bool
	}{
		"prompt":             {msg: Message{Kind: KindPrompt, Payload: "what time is it"}},
		"prompt_empty":       {msg: Message{Kind: KindPrompt, Payload: "  "}, wantErr: true},
		"reset":              {msg: Message{Kind: KindReset}},
		"restart":            {msg: Message{Kind: KindRestart}},
		"gesture":            {msg: Message{Kind: KindGesture, Gesture: activation.GesturePalm}},
		"gesture_no_gesture": {msg: Message{Kind: KindGesture}, wantErr: true},
		"unknown":            {msg: Message{Kind: "bogus"}, wantErr: true},
	} {
		t.Run(name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
