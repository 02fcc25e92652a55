// Package storetest contains behavioural checks every mailbox.Store
// implementation must pass.
package storetest

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
)

func Run(
	t *testing.T,
	newStore func(t *testing.T) mailbox.Store,
) {
	run := func(name string, fn func(t *testing.T, ctx context.Context, s mailbox.Store)) {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			defer s.Close()
			fn(t, context.Background(), s)
		})
	}

	run("empty", func(t *testing.T, ctx context.Context, s mailbox.Store) {
		msg, err := s.FetchOneAndClear(ctx, mailbox.TableRequests)
		require.NoError(t, err)
		assert.Nil(t, msg)

		msgs, err := s.FetchAllAndClear(ctx, mailbox.TableGestures)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	run("request_read_once", func(t *testing.T, ctx context.Context, s mailbox.Store) {
		require.NoError(t, s.Insert(ctx, mailbox.Message{Kind: mailbox.KindPrompt, Payload: "turn on the lights"}))

		msg, err := s.FetchOneAndClear(ctx, mailbox.TableRequests)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, mailbox.KindPrompt, msg.Kind)
		assert.Equal(t, "turn on the lights", msg.Payload)

		msg, err = s.FetchOneAndClear(ctx, mailbox.TableRequests)
		require.NoError(t, err)
		assert.Nil(t, msg)
	})

	run("request_overwrite", func(t *testing.T, ctx context.Context, s mailbox.Store) {
		require.NoError(t, s.Insert(ctx, mailbox.Message{Kind: mailbox.KindPrompt, Payload: "first"}))
		require.NoError(t, s.Insert(ctx, mailbox.Message{Kind: mailbox.KindReset}))

		msg, err := s.FetchOneAndClear(ctx, mailbox.TableRequests)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, mailbox.KindReset, msg.Kind)

		msg, err = s.FetchOneAndClear(ctx, mailbox.TableRequests)
		require.NoError(t, err)
		assert.Nil(t, msg)
	})

	run("tables_are_disjoint", func(t *testing.T, ctx context.Context, s mailbox.Store) {
		require.NoError(t, s.Insert(ctx, mailbox.Message{Kind: mailbox.KindGesture, Gesture: activation.GestureLike}))
		require.NoError(t, s.Insert(ctx, mailbox.Message{Kind: mailbox.KindReset}))

		msgs, err := s.FetchAllAndClear(ctx, mailbox.TableGestures)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, activation.GestureLike, msgs[0].Gesture)

		msg, err := s.FetchOneAndClear(ctx, mailbox.TableRequests)
		require.NoError(t, err)
		require.NotNil(t, msg)
		assert.Equal(t, mailbox.KindReset, msg.Kind)
	})

	run("gestures_drain", func(t *testing.T, ctx context.Context, s mailbox.Store) {
		for _, g := range []activation.Gesture{activation.GestureLike, activation.GestureLike, activation.GesturePalm} {
			require.NoError(t, s.Insert(ctx, mailbox.Message{Kind: mailbox.KindGesture, Gesture: g}))
		}

		msgs, err := s.FetchAllAndClear(ctx, mailbox.TableGestures)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, activation.GestureLike, msgs[0].Gesture)
		assert.Equal(t, activation.GesturePalm, msgs[2].Gesture)

		msgs, err = s.FetchAllAndClear(ctx, mailbox.TableGestures)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	run("invalid_message", func(t *testing.T, ctx context.Context, s mailbox.Store) {
		require.Error(t, s.Insert(ctx, mailbox.Message{Kind: mailbox.KindGesture}))
		require.Error(t, s.Insert(ctx, mailbox.Message{Kind: "bogus"}))
	})

	run("invalid_table", func(t *testing.T, ctx context.Context, s mailbox.Store) {
		_, err := s.FetchAllAndClear(ctx, mailbox.Table("bogus"))
		require.Error(t, err)
		_, err = s.FetchOneAndClear(ctx, mailbox.Table("bogus"))
		require.Error(t, err)
	})

	run("concurrent_votes_are_not_lost", func(t *testing.T, ctx context.Context, s mailbox.Store) {
		const writers, votes = 4, 25
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			drained int
		)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				msgs, err := s.FetchAllAndClear(ctx, mailbox.TableGestures)
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				drained += len(msgs)
				total := drained
				mu.Unlock()
				if total == writers*votes {
					return
				}
			}
		}()
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < votes; i++ {
					assert.NoError(t, s.Insert(ctx, mailbox.Message{Kind: mailbox.KindGesture, Gesture: activation.GestureDislike}))
				}
			}()
		}
		wg.Wait()
		<-done
		assert.Equal(t, writers*votes, drained)
	})
}
