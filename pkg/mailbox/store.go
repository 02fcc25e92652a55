package mailbox

import (
	"context"
	"io"
)

// Store is a one-shot delivery channel shared between the assistant core
// and its clients. Every read is destructive: a message returned by one of
// the Fetch methods is already removed from the store.
type Store interface {
	io.Closer

	// Insert appends a message to the table of its kind. The requests table
	// holds a single pending row, so inserting into it replaces whatever was
	// pending.
	Insert(ctx context.Context, msg Message) error

	// FetchAllAndClear atomically returns and deletes every row of the table.
	FetchAllAndClear(ctx context.Context, table Table) ([]Message, error)

	// FetchOneAndClear atomically returns and deletes the oldest row of the
	// table. It returns (nil, nil) if the table is empty.
	FetchOneAndClear(ctx context.Context, table Table) (*Message, error)
}
