package request

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox/implementations/memory"
)

func TestPromptIsReadOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := NewPoller(store)

	require.NoError(t, store.Insert(ctx, mailbox.Message{Kind: mailbox.KindPrompt, Payload: "what time is it"}))

	ev := p.Poll(ctx)
	require.NotNil(t, ev)
	assert.Equal(t, KindPrompt, ev.Kind)
	assert.Equal(t, "what time is it", ev.Text)

	assert.Nil(t, p.Poll(ctx))
}

func TestResetAndRestart(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := NewPoller(store)

	require.NoError(t, store.Insert(ctx, mailbox.Message{Kind: mailbox.KindReset}))
	ev := p.Poll(ctx)
	require.NotNil(t, ev)
	assert.Equal(t, KindReset, ev.Kind)

	require.NoError(t, store.Insert(ctx, mailbox.Message{Kind: mailbox.KindRestart}))
	ev = p.Poll(ctx)
	require.NotNil(t, ev)
	assert.Equal(t, KindRestart, ev.Kind)
}

func TestLatestRequestWins(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	p := NewPoller(store)

	require.NoError(t, store.Insert(ctx, mailbox.Message{Kind: mailbox.KindPrompt, Payload: "first"}))
	require.NoError(t, store.Insert(ctx, mailbox.Message{Kind: mailbox.KindPrompt, Payload: "second"}))

	ev := p.Poll(ctx)
	require.NotNil(t, ev)
	assert.Equal(t, "second", ev.Text)
	assert.Nil(t, p.Poll(ctx))
}

type failingStore struct {
	mailbox.Store
	calls int
}

func (s *failingStore) FetchOneAndClear(context.Context, mailbox.Table) (*mailbox.Message, error) {
	s.calls++
	return nil, errors.New("unable to open database file")
}

func TestStoreErrorIsNotRetried(t *testing.T) {
	store := &failingStore{}
	p := NewPoller(store)
	assert.Nil(t, p.Poll(context.Background()))
	assert.Equal(t, 1, store.calls)
}
