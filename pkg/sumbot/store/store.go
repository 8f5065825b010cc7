// Package store persists the append-only chat log and serves the range
// queries the summarizer is built on.
package store

import "context"

// ChatMessage is one persisted group chat message. Rows are append-only:
// never mutated, never deleted.
type ChatMessage struct {
	// ID is assigned by the store on insert and grows with insertion order.
	// It is not guaranteed to follow Timestamp order, since timestamps are
	// sender-supplied and may arrive out of order.
	ID int64

	SourceNumber string
	SourceName   string

	// Timestamp is a fixed-width sortable token (signal.TimeToken).
	Timestamp string

	GroupID string
	Text    string
}

// Line is one transcript line of a range query result.
type Line struct {
	SourceName string
	Text       string
}

// MessageStore is the append-only message log.
//
// Insert must be safe under concurrent callers even though the poll loop is
// currently the only writer. Reads may run concurrently with writes and
// observe a monotonically growing set of rows.
type MessageStore interface {
	// Insert appends a message and returns its assigned ID.
	Insert(ctx context.Context, msg ChatMessage) (int64, error)

	// RangeAfter returns transcript lines from the given group. With a
	// non-empty afterToken it returns messages with timestamp strictly
	// later than the token, ascending, capped at limit. With an empty
	// token it returns the most recent limit messages instead,
	// oldest-first.
	//
	// Ordering by sender timestamp rather than ID deliberately tolerates
	// skew between arrival order and conversational order. It is wrong
	// when sender clocks disagree; that is an accepted approximation, not
	// something to fix by switching the sort key.
	RangeAfter(ctx context.Context, groupID, afterToken string, limit int) ([]Line, error)

	// Close releases the underlying storage.
	Close() error
}
