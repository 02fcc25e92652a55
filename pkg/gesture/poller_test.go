package gesture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox/implementations/memory"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestPoller(t *testing.T) (*Poller, *memory.Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := memory.New()
	t.Cleanup(func() { store.Close() })
	return NewPoller(store, OptionClock(clock.Now)), store, clock
}

func vote(t *testing.T, store mailbox.Store, gestures ...activation.Gesture) {
	for _, g := range gestures {
		require.NoError(t, store.Insert(context.Background(), mailbox.Message{
			Kind:    mailbox.KindGesture,
			Gesture: g,
		}))
	}
}

func TestCommitOnThirdPoll(t *testing.T) {
	ctx := context.Background()
	p, store, clock := newTestPoller(t)

	for i := 0; i < 2; i++ {
		vote(t, store, activation.GestureLike)
		_, ok := p.Poll(ctx)
		require.False(t, ok)
		clock.Advance(time.Second)
	}
	vote(t, store, activation.GestureLike)
	g, ok := p.Poll(ctx)
	require.True(t, ok)
	assert.Equal(t, activation.GestureLike, g)
	assert.Zero(t, p.Tally.Like)
}

func TestManyVotesInOneDrainCountOnce(t *testing.T) {
	ctx := context.Background()
	p, store, _ := newTestPoller(t)

	vote(t, store, activation.GesturePalm, activation.GesturePalm, activation.GesturePalm, activation.GesturePalm)
	_, ok := p.Poll(ctx)
	require.False(t, ok)
	assert.Equal(t, uint(1), p.Tally.Palm)
}

func TestWindowExpiryResetsTallies(t *testing.T) {
	ctx := context.Background()
	p, store, clock := newTestPoller(t)

	// a like at t=0s, 1s, and then 5s: the window opened at 0s expires at 4s
	vote(t, store, activation.GestureLike)
	_, ok := p.Poll(ctx)
	require.False(t, ok)

	clock.Advance(time.Second)
	vote(t, store, activation.GestureLike)
	_, ok = p.Poll(ctx)
	require.False(t, ok)

	clock.Advance(4 * time.Second)
	vote(t, store, activation.GestureLike)
	_, ok = p.Poll(ctx)
	require.False(t, ok)
	assert.Equal(t, uint(1), p.Tally.Like)
}

func TestPriorityOnSimultaneousCommit(t *testing.T) {
	ctx := context.Background()
	p, store, _ := newTestPoller(t)

	for i := 0; i < 2; i++ {
		vote(t, store, activation.GestureDislike, activation.GestureLike, activation.GesturePalm)
		_, ok := p.Poll(ctx)
		require.False(t, ok)
	}
	vote(t, store, activation.GesturePalm, activation.GestureDislike, activation.GestureLike)
	g, ok := p.Poll(ctx)
	require.True(t, ok)
	assert.Equal(t, activation.GestureLike, g)

	// the commit resets every tally, not only the winning one
	assert.Zero(t, p.Tally.Dislike)
	assert.Zero(t, p.Tally.Palm)
}

func TestCommitRestartsWindow(t *testing.T) {
	ctx := context.Background()
	p, store, clock := newTestPoller(t)

	for i := 0; i < 3; i++ {
		vote(t, store, activation.GestureDislike)
		clock.Advance(time.Second)
		p.Poll(ctx)
	}
	assert.Equal(t, clock.Now().Add(4*time.Second), p.Tally.WindowDeadline)
}

type failingStore struct {
	mailbox.Store
}

func (failingStore) FetchAllAndClear(context.Context, mailbox.Table) ([]mailbox.Message, error) {
	return nil, errors.New("database is locked")
}

func TestStoreErrorIsSwallowed(t *testing.T) {
	p := NewPoller(failingStore{})
	g, ok := p.Poll(context.Background())
	assert.False(t, ok)
	assert.Equal(t, activation.GestureUndefined, g)
}

func TestThreeLikesInsideWindowCommit(t *testing.T) {
	ctx := context.Background()
	p, store, clock := newTestPoller(t)

	var (
		committed activation.Gesture
		polls     int
	)
	for polls < 3 {
		vote(t, store, activation.GestureLike)
		polls++
		g, ok := p.Poll(ctx)
		if ok {
			committed = g
			break
		}
		clock.Advance(500 * time.Millisecond)
	}
	assert.Equal(t, 3, polls)
	assert.Equal(t, activation.GestureLike, committed)
}

func TestExpiredDislikeWindowStartsOver(t *testing.T) {
	ctx := context.Background()
	p, store, clock := newTestPoller(t)

	for i := 0; i < 2; i++ {
		vote(t, store, activation.GestureDislike)
		_, ok := p.Poll(ctx)
		require.False(t, ok)
	}
	require.Equal(t, uint(2), p.Tally.Dislike)

	clock.Advance(4*time.Second + time.Millisecond)
	_, ok := p.Poll(ctx)
	require.False(t, ok)
	assert.Zero(t, p.Tally.Dislike)

	vote(t, store, activation.GestureDislike)
	_, ok = p.Poll(ctx)
	require.False(t, ok)
	assert.Equal(t, uint(1), p.Tally.Dislike)
}
