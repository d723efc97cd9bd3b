// Package storage defines the persistence contract for conversation turns.
package storage

import (
	"context"
	"strconv"
	"time"

	"github.com/papercomputeco/chatbot/pkg/llm"
)

// Driver persists conversation turns. Turns are append-only: once stored they
// are never updated, and they are only removed in bulk by session.
//
// Sessions have no record of their own. A session is the set of turns that
// share a session id, so every session-keyed query on an unknown id returns an
// empty result rather than an error.
type Driver interface {
	// Append stores a turn and assigns its ID. The stored turn is returned.
	Append(ctx context.Context, turn *llm.ConversationTurn) (*llm.ConversationTurn, error)

	// Get retrieves a turn by ID. Returns ErrNotFound if it doesn't exist.
	Get(ctx context.Context, id int64) (*llm.ConversationTurn, error)

	// ListBySession returns a session's turns, oldest first.
	ListBySession(ctx context.Context, sessionID string) ([]*llm.ConversationTurn, error)

	// ListBySessionInRange returns a session's turns with start <= timestamp <= end, oldest first.
	ListBySessionInRange(ctx context.Context, sessionID string, start, end time.Time) ([]*llm.ConversationTurn, error)

	// CountBySession returns the number of turns in a session.
	CountBySession(ctx context.Context, sessionID string) (int64, error)

	// ListRecent returns at most limit turns across all sessions, newest first.
	ListRecent(ctx context.Context, limit int) ([]*llm.ConversationTurn, error)

	// ListByClientIP returns the turns recorded from a client IP, newest first.
	ListByClientIP(ctx context.Context, clientIP string) ([]*llm.ConversationTurn, error)

	// DeleteBySession removes every turn in a session. Deleting a session
	// with no turns is a no-op.
	DeleteBySession(ctx context.Context, sessionID string) error

	// Close closes the store and releases any resources.
	Close() error
}

// ErrNotFound is returned when a turn doesn't exist in the store.
type ErrNotFound struct {
	ID int64
}

func (e ErrNotFound) Error() string {
	if e.ID == 0 {
		return "turn not found"
	}

	return "turn not found: " + strconv.FormatInt(e.ID, 10)
}
