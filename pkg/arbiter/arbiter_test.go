package arbiter

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/gesture"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox/implementations/memory"
	"github.com/xaionaro-go/wakearbiter/pkg/pcm"
	"github.com/xaionaro-go/wakearbiter/pkg/request"
	"github.com/xaionaro-go/wakearbiter/pkg/wakeword"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSignal fires on the frames whose first sample is non-zero.
type fakeSignal struct {
	calls  int
	resets int
	err    error
}

func (s *fakeSignal) ProcessFrame(_ context.Context, frame pcm.Frame) (*wakeword.Event, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if frame[0] == 0 {
		return nil, nil
	}
	return &wakeword.Event{Keyword: "hey ditto", Score: 1}, nil
}

func (s *fakeSignal) Reset(context.Context) { s.resets++ }
func (s *fakeSignal) Close() error          { return nil }

var (
	silence = pcm.Frame{0}
	wake    = pcm.Frame{1}
)

type fixture struct {
	store   *memory.Store
	signal  *fakeSignal
	arbiter *Arbiter
}

func newFixture(t *testing.T, gestureOpts ...gesture.Option) *fixture {
	store := memory.New()
	t.Cleanup(func() { store.Close() })
	signal := &fakeSignal{}
	return &fixture{
		store:   store,
		signal:  signal,
		arbiter: New(request.NewPoller(store), gesture.NewPoller(store, gestureOpts...), signal),
	}
}

func (f *fixture) post(t *testing.T, msg mailbox.Message) {
	require.NoError(t, f.store.Insert(context.Background(), msg))
}

func (f *fixture) cycle(t *testing.T, frame pcm.Frame) *activation.Context {
	c, err := f.arbiter.Cycle(context.Background(), frame)
	require.NoError(t, err)
	return c
}

func TestNothingHappens(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 10; i++ {
		assert.Nil(t, f.cycle(t, silence))
	}
	assert.Equal(t, 10, f.signal.calls)
	assert.Equal(t, uint64(10), f.arbiter.State.Cycles)
}

func TestWakeWord(t *testing.T) {
	f := newFixture(t)
	c := f.cycle(t, wake)
	require.NotNil(t, c)
	assert.Equal(t, activation.KindWakeWord, c.Kind)
	assert.False(t, f.arbiter.State.SuppressWakeOnce)
}

func TestPromptWinsOverWakeWord(t *testing.T) {
	f := newFixture(t)
	f.post(t, mailbox.Message{Kind: mailbox.KindPrompt, Payload: "what's the weather"})

	c := f.cycle(t, wake)
	require.NotNil(t, c)
	assert.Equal(t, activation.KindInjectedPrompt, c.Kind)
	assert.Equal(t, "what's the weather", c.Text)
	assert.Zero(t, f.signal.calls)

	// the wake word still sounding right after the prompt is dropped once
	assert.Nil(t, f.cycle(t, wake))
	assert.Equal(t, 1, f.signal.calls)
	assert.Equal(t, 1, f.signal.resets)

	c = f.cycle(t, wake)
	require.NotNil(t, c)
	assert.Equal(t, activation.KindWakeWord, c.Kind)
}

func TestPriorityOrder(t *testing.T) {
	f := newFixture(t, gesture.OptionThreshold(1))
	f.post(t, mailbox.Message{Kind: mailbox.KindReset})
	f.post(t, mailbox.Message{Kind: mailbox.KindGesture, Gesture: activation.GestureDislike})

	c := f.cycle(t, wake)
	require.NotNil(t, c)
	assert.Equal(t, activation.KindConversationReset, c.Kind)

	// the vote was not drained by the previous cycle
	c = f.cycle(t, wake)
	require.NotNil(t, c)
	assert.Equal(t, activation.KindGestureShortcut, c.Kind)
	assert.Equal(t, activation.GestureDislike, c.Gesture)
	assert.Zero(t, f.signal.calls)
}

func TestGestureShortcutAfterThreeCycles(t *testing.T) {
	f := newFixture(t)
	var committed []*activation.Context
	for i := 0; i < 3; i++ {
		f.post(t, mailbox.Message{Kind: mailbox.KindGesture, Gesture: activation.GestureLike})
		if c := f.cycle(t, silence); c != nil {
			committed = append(committed, c)
		}
	}
	require.Len(t, committed, 1)
	assert.Equal(t, activation.KindGestureShortcut, committed[0].Kind)
	assert.Equal(t, activation.GestureLike, committed[0].Gesture)
	assert.Empty(t, committed[0].ResolvedText)
	assert.True(t, f.arbiter.State.SuppressWakeOnce)
}

func TestAtMostOneActivationPerCycle(t *testing.T) {
	f := newFixture(t, gesture.OptionThreshold(1))
	for i := 0; i < 5; i++ {
		f.post(t, mailbox.Message{Kind: mailbox.KindPrompt, Payload: "p"})
		f.post(t, mailbox.Message{Kind: mailbox.KindGesture, Gesture: activation.GesturePalm})
		c := f.cycle(t, wake)
		require.NotNil(t, c)
	}
}

func TestRestart(t *testing.T) {
	f := newFixture(t)
	f.post(t, mailbox.Message{Kind: mailbox.KindRestart})
	_, err := f.arbiter.Cycle(context.Background(), wake)
	require.ErrorIs(t, err, activation.ErrRestartRequested{})
}

func TestSkipNextWake(t *testing.T) {
	f := newFixture(t)
	f.arbiter.SkipNextWake()

	c := f.cycle(t, silence)
	require.NotNil(t, c)
	assert.Equal(t, activation.KindWakeWord, c.Kind)
	assert.Zero(t, f.signal.calls)

	assert.Nil(t, f.cycle(t, silence))
	assert.Equal(t, 1, f.signal.calls)
}

func TestSignalErrorMeansNoSignal(t *testing.T) {
	f := newFixture(t)
	f.signal.err = errors.New("engine hiccup")
	assert.Nil(t, f.cycle(t, wake))
}

func TestRepeatedSignalErrorIsRemembered(t *testing.T) {
	f := newFixture(t)
	f.signal.err = errors.New("the detector exited")
	for i := 0; i < 3; i++ {
		assert.Nil(t, f.cycle(t, wake))
		assert.Contains(t, f.arbiter.State.LastSignalError, "the detector exited")
	}

	f.signal.err = nil
	assert.Nil(t, f.cycle(t, silence))
	assert.Empty(t, f.arbiter.State.LastSignalError)
}

type sliceSource struct {
	frames []pcm.Frame
	err    error
}

func (s *sliceSource) ReadFrame(context.Context) (pcm.Frame, error) {
	if len(s.frames) == 0 {
		return nil, s.err
	}
	frame := s.frames[0]
	s.frames = s.frames[1:]
	return frame, nil
}

func (s *sliceSource) Format() pcm.Format { return pcm.Format{SampleRate: 16000, FrameLength: 1} }
func (s *sliceSource) Close() error       { return nil }

func TestRunUntilDeviceFailure(t *testing.T) {
	f := newFixture(t)
	src := &sliceSource{
		frames: []pcm.Frame{silence, wake, silence, wake, silence},
		err:    io.EOF,
	}

	var handled []activation.Kind
	err := f.arbiter.Run(context.Background(), src, HandlerFunc(func(_ context.Context, c *activation.Context) error {
		handled = append(handled, c.Kind)
		return errors.New("transcription failed")
	}))
	var devErr activation.ErrDeviceFailure
	require.True(t, errors.As(err, &devErr), "%v", err)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []activation.Kind{activation.KindWakeWord, activation.KindWakeWord}, handled)
}

func TestRunStopsOnHandlerDeviceFailure(t *testing.T) {
	f := newFixture(t)
	src := &sliceSource{frames: []pcm.Frame{wake, wake, wake}, err: io.EOF}

	calls := 0
	err := f.arbiter.Run(context.Background(), src, HandlerFunc(func(context.Context, *activation.Context) error {
		calls++
		return activation.ErrDeviceFailure{Err: errors.New("microphone unplugged")}
	}))
	var devErr activation.ErrDeviceFailure
	require.True(t, errors.As(err, &devErr))
	assert.Equal(t, 1, calls)
}

func TestRunRestart(t *testing.T) {
	f := newFixture(t)
	f.post(t, mailbox.Message{Kind: mailbox.KindRestart})
	src := &sliceSource{frames: []pcm.Frame{silence}, err: io.EOF}
	err := f.arbiter.Run(context.Background(), src, HandlerFunc(func(context.Context, *activation.Context) error {
		return nil
	}))
	require.ErrorIs(t, err, activation.ErrRestartRequested{})
}

func TestRunCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &sliceSource{frames: []pcm.Frame{wake}}
	err := f.arbiter.Run(ctx, src, HandlerFunc(func(context.Context, *activation.Context) error {
		t.Fatal("must not be called")
		return nil
	}))
	require.ErrorIs(t, err, context.Canceled)
}
