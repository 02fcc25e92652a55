package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
)

type fakeCapturer struct {
	text  string
	err   error
	calls int
}

func (c *fakeCapturer) Capture(context.Context) (string, error) {
	c.calls++
	return c.text, c.err
}

type fakeChime struct {
	plays int
	err   error
}

func (c *fakeChime) Play(context.Context) error {
	c.plays++
	return c.err
}

func TestResetDoesNotCapture(t *testing.T) {
	capturer := &fakeCapturer{text: "should not be heard"}
	d := NewDispatcher(capturer)

	r, err := d.Dispatch(context.Background(), activation.NewConversationReset())
	require.NoError(t, err)
	assert.Equal(t, ResetSentinel, r.Text)
	assert.True(t, r.Reset)
	assert.Zero(t, capturer.calls)
}

func TestPalmCapturesLivePrompt(t *testing.T) {
	capturer := &fakeCapturer{text: "play the next song"}
	d := NewDispatcher(capturer)

	c := activation.NewGestureShortcut(activation.GesturePalm)
	r, err := d.Dispatch(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "play the next song", r.Text)
	assert.Equal(t, "play the next song", c.ResolvedText)
	assert.Equal(t, 1, capturer.calls)
	assert.True(t, r.SuppressActivationChime)
}

func TestGestureDirective(t *testing.T) {
	capturer := &fakeCapturer{}
	d := NewDispatcher(capturer)

	r, err := d.Dispatch(context.Background(), activation.NewGestureShortcut(activation.GestureLike))
	require.NoError(t, err)
	assert.Equal(t, "GestureNet: like", r.Text)

	d = NewDispatcher(capturer, OptionGestureDirectiveFormat("gesture %s"))
	r, err = d.Dispatch(context.Background(), activation.NewGestureShortcut(activation.GestureDislike))
	require.NoError(t, err)
	assert.Equal(t, "gesture dislike", r.Text)
	assert.Zero(t, capturer.calls)
}

func TestInjectedPrompt(t *testing.T) {
	capturer := &fakeCapturer{}
	d := NewDispatcher(capturer)

	r, err := d.Dispatch(context.Background(), activation.NewInjectedPrompt("set a timer for 5 minutes"))
	require.NoError(t, err)
	assert.Equal(t, "set a timer for 5 minutes", r.Text)
	assert.Zero(t, capturer.calls)
}

func TestWakeWordCapturesWithChime(t *testing.T) {
	capturer := &fakeCapturer{text: "hello"}
	chime := &fakeChime{err: errors.New("no output device")}
	d := NewDispatcher(capturer, OptionChime{Chime: chime})

	r, err := d.Dispatch(context.Background(), activation.NewWakeWord())
	require.NoError(t, err)
	assert.Equal(t, "hello", r.Text)
	assert.False(t, r.SuppressActivationChime)
	assert.Equal(t, 1, chime.plays)

	_, err = d.Dispatch(context.Background(), activation.NewInjectedPrompt("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, chime.plays)
}

func TestChimeSuppressedForEveryNonWakeActivation(t *testing.T) {
	d := NewDispatcher(&fakeCapturer{text: "t"})
	for _, c := range []*activation.Context{
		activation.NewInjectedPrompt("p"),
		activation.NewConversationReset(),
		activation.NewGestureShortcut(activation.GestureLike),
		activation.NewGestureShortcut(activation.GestureDislike),
		activation.NewGestureShortcut(activation.GesturePalm),
	} {
		r, err := d.Dispatch(context.Background(), c)
		require.NoError(t, err)
		assert.True(t, r.SuppressActivationChime, c.String())
		assert.Equal(t, c.Kind.String(), r.KindName)
	}
}

func TestCaptureErrorIsReturned(t *testing.T) {
	d := NewDispatcher(&fakeCapturer{err: activation.ErrDeviceFailure{Err: errors.New("gone")}})
	_, err := d.Dispatch(context.Background(), activation.NewWakeWord())
	var devErr activation.ErrDeviceFailure
	require.True(t, errors.As(err, &devErr))

	_, err = d.Dispatch(context.Background(), nil)
	require.Error(t, err)
}
