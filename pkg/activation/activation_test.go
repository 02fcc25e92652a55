package activation

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGesture(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Gesture
		wantErr bool
	}{
		{in: "like", want: GestureLike},
		{in: " Dislike ", want: GestureDislike},
		{in: "PALM", want: GesturePalm},
		{in: "fist", wantErr: true},
		{in: "", wantErr: true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			g, err := ParseGesture(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, g)
		})
	}
}

func TestGesturePriority(t *testing.T) {
	assert.Equal(t, [...]Gesture{GestureLike, GestureDislike, GesturePalm}, GesturePriority)
}

func TestFromWakeWord(t *testing.T) {
	assert.True(t, NewWakeWord().FromWakeWord())
	assert.False(t, NewInjectedPrompt("hi").FromWakeWord())
	assert.False(t, NewConversationReset().FromWakeWord())
	assert.False(t, NewGestureShortcut(GesturePalm).FromWakeWord())
	assert.False(t, (*Context)(nil).FromWakeWord())
}

func TestGestureShortcutHasNoResolvedText(t *testing.T) {
	c := NewGestureShortcut(GestureLike)
	assert.Equal(t, KindGestureShortcut, c.Kind)
	assert.Equal(t, GestureLike, c.Gesture)
	assert.Empty(t, c.ResolvedText)
}

func TestErrorsUnwrap(t *testing.T) {
	err := fmt.Errorf("reading: %w", ErrDeviceFailure{Err: io.EOF})
	var devErr ErrDeviceFailure
	require.True(t, errors.As(err, &devErr))
	assert.ErrorIs(t, err, io.EOF)

	err = ErrTransientSignal{Source: "gestures", Err: io.ErrUnexpectedEOF}
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "gestures")

	assert.Contains(t, ErrActivationKey{Reason: "throttled"}.Error(), "throttled")
}
