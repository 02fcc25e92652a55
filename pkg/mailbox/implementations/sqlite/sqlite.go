package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sort"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/wakearbiter/pkg/activation"
	"github.com/xaionaro-go/wakearbiter/pkg/mailbox"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS requests (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id TEXT NOT NULL DEFAULT '',
	kind TEXT NOT NULL,
	payload TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS gestures (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	message_id TEXT NOT NULL DEFAULT '',
	kind TEXT NOT NULL
);
`

// Store is a mailbox kept in a SQLite file, so that the GUI client and the
// assistant core may live in separate processes. Every fetch is a single
// DELETE ... RETURNING statement, which makes read-and-delete atomic even
// with a concurrent writer in another process.
type Store struct {
	DB   *sql.DB
	Path string
}

var _ mailbox.Store = (*Store)(nil)

func New(
	ctx context.Context,
	path string,
	opts ...Option,
) (*Store, error) {
	cfg := Options(opts).config()

	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
	if cfg.JournalMode != "" {
		q.Add("_pragma", fmt.Sprintf("journal_mode(%s)", cfg.JournalMode))
	}
	dsn := "file:" + path + "?" + q.Encode()
	logger.Debugf(ctx, "opening the mailbox database: %s", dsn)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to open the database '%s': %w", path, err)
	}
	// a single connection serializes in-process access; the other process
	// is handled by busy_timeout
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to initialize the schema in '%s': %w", path, err)
	}

	return &Store{
		DB:   db,
		Path: path,
	}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) Insert(
	ctx context.Context,
	msg mailbox.Message,
) (_err error) {
	logger.Tracef(ctx, "Insert(ctx, %s)", msg)
	defer func() { logger.Tracef(ctx, "/Insert(ctx, %s): %v", msg, _err) }()

	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	switch msg.Table() {
	case mailbox.TableRequests:
		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("unable to begin a transaction: %w", err)
		}
		defer tx.Rollback()
		if _, err := tx.ExecContext(ctx, `DELETE FROM requests`); err != nil {
			return fmt.Errorf("unable to clear the pending request: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO requests (message_id, kind, payload) VALUES (?, ?, ?)`,
			msg.ID, string(msg.Kind), msg.Payload,
		)
		if err != nil {
			return fmt.Errorf("unable to insert the request: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("unable to commit: %w", err)
		}
	case mailbox.TableGestures:
		_, err := s.DB.ExecContext(ctx,
			`INSERT INTO gestures (message_id, kind) VALUES (?, ?)`,
			msg.ID, string(msg.Gesture),
		)
		if err != nil {
			return fmt.Errorf("unable to insert the gesture vote: %w", err)
		}
	}
	return nil
}

type row struct {
	ID      int64
	Message mailbox.Message
	Err     error
}

func (s *Store) deleteReturning(
	ctx context.Context,
	table mailbox.Table,
	onlyOldest bool,
) ([]row, error) {
	var query string
	switch table {
	case mailbox.TableRequests:
		query = `DELETE FROM requests%s RETURNING id, message_id, kind, payload`
	case mailbox.TableGestures:
		query = `DELETE FROM gestures%s RETURNING id, message_id, kind, ''`
	default:
		return nil, mailbox.ErrInvalidTable{Table: table}
	}
	where := ""
	if onlyOldest {
		where = fmt.Sprintf(" WHERE id = (SELECT MIN(id) FROM %s)", table)
	}
	query = fmt.Sprintf(query, where)

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to drain table '%s': %w", table, err)
	}
	defer rows.Close()

	var result []row
	for rows.Next() {
		var (
			r                      row
			messageID, kind, extra string
		)
		if err := rows.Scan(&r.ID, &messageID, &kind, &extra); err != nil {
			return result, fmt.Errorf("unable to scan a row of '%s': %w", table, err)
		}
		r.Message, r.Err = parseRow(table, messageID, kind, extra)
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("unable to read the rows of '%s': %w", table, err)
	}

	// the order of RETURNING rows is not defined by SQLite
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func parseRow(
	table mailbox.Table,
	messageID string,
	kind string,
	payload string,
) (mailbox.Message, error) {
	var msg mailbox.Message
	switch table {
	case mailbox.TableRequests:
		k, err := mailbox.ParseKind(kind)
		if err != nil {
			return msg, mailbox.ErrMalformedRow{Table: table, Err: err}
		}
		msg = mailbox.Message{ID: messageID, Kind: k, Payload: payload}
	case mailbox.TableGestures:
		g, err := activation.ParseGesture(kind)
		if err != nil {
			return msg, mailbox.ErrMalformedRow{Table: table, Err: err}
		}
		msg = mailbox.Message{ID: messageID, Kind: mailbox.KindGesture, Gesture: g}
	}
	if msg.Table() != table {
		return msg, mailbox.ErrMalformedRow{Table: table, Err: fmt.Errorf("kind '%s' does not belong here", msg.Kind)}
	}
	if err := msg.Validate(); err != nil {
		return msg, mailbox.ErrMalformedRow{Table: table, Err: err}
	}
	return msg, nil
}

func (s *Store) FetchAllAndClear(
	ctx context.Context,
	table mailbox.Table,
) ([]mailbox.Message, error) {
	rows, err := s.deleteReturning(ctx, table, false)
	if err != nil {
		return nil, err
	}
	result := make([]mailbox.Message, 0, len(rows))
	for _, r := range rows {
		if r.Err != nil {
			logger.Warnf(ctx, "%v", activation.ErrTransientSignal{Source: string(table), Err: r.Err})
			continue
		}
		result = append(result, r.Message)
	}
	return result, nil
}

func (s *Store) FetchOneAndClear(
	ctx context.Context,
	table mailbox.Table,
) (*mailbox.Message, error) {
	rows, err := s.deleteReturning(ctx, table, true)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	if r.Err != nil {
		return nil, r.Err
	}
	return &r.Message, nil
}
