package memory

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Storage.Read when nothing has been persisted yet.
var ErrNotFound = errors.New("memory table not found")

// Exchange is one recorded conversational turn.
type Exchange struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

// Table maps a user id to that user's exchanges, oldest first.
type Table map[string][]Exchange

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for user, history := range t {
		cp := make([]Exchange, len(history))
		copy(cp, history)
		out[user] = cp
	}
	return out
}

// Storage persists the encoded memory table as a single blob.
type Storage interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}
