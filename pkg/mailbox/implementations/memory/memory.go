package memory

import (
	"context"
	"fmt"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
	"github.com/xaionaro-go/xsync"
)

// Store keeps the mailbox in process memory. It is meant for deployments
// where the GUI talks to the core through the gRPC mailbox server instead of
// a shared file, and for tests.
type Store struct {
	Locker   xsync.Mutex
	Requests []mailbox.Message
	Gestures []mailbox.Message
	IsClosed bool
}

var _ mailbox.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Insert(
	ctx context.Context,
	msg mailbox.Message,
) error {
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	return xsync.DoR1(xsync.WithNoLogging(ctx, true), &s.Locker, func() error {
		if s.IsClosed {
			return fmt.Errorf("the store is closed")
		}
		switch msg.Table() {
		case mailbox.TableRequests:
			if len(s.Requests) > 0 {
				logger.Debugf(ctx, "overwriting the pending request %s with %s", s.Requests[0], msg)
			}
			s.Requests = append(s.Requests[:0], msg)
		case mailbox.TableGestures:
			s.Gestures = append(s.Gestures, msg)
		}
		return nil
	})
}

func (s *Store) table(t mailbox.Table) (*[]mailbox.Message, error) {
	switch t {
	case mailbox.TableRequests:
		return &s.Requests, nil
	case mailbox.TableGestures:
		return &s.Gestures, nil
	}
	return nil, mailbox.ErrInvalidTable{Table: t}
}

func (s *Store) FetchAllAndClear(
	ctx context.Context,
	t mailbox.Table,
) (_ret []mailbox.Message, _err error) {
	s.Locker.Do(xsync.WithNoLogging(ctx, true), func() {
		if s.IsClosed {
			_err = fmt.Errorf("the store is closed")
			return
		}
		rows, err := s.table(t)
		if err != nil {
			_err = err
			return
		}
		_ret = *rows
		*rows = nil
	})
	return
}

func (s *Store) FetchOneAndClear(
	ctx context.Context,
	t mailbox.Table,
) (_ret *mailbox.Message, _err error) {
	s.Locker.Do(xsync.WithNoLogging(ctx, true), func() {
		if s.IsClosed {
			_err = fmt.Errorf("the store is closed")
			return
		}
		rows, err := s.table(t)
		if err != nil {
			_err = err
			return
		}
		if len(*rows) == 0 {
			return
		}
		msg := (*rows)[0]
		*rows = (*rows)[1:]
		_ret = &msg
	})
	return
}

func (s *Store) Close() error {
	s.Locker.Do(context.Background(), func() {
		s.IsClosed = true
		s.Requests = nil
		s.Gestures = nil
	})
	return nil
}
