// Package inmemory provides a storage.Driver that keeps turns in process memory.
package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/papercomputeco/chatbot/pkg/llm"
	"github.com/papercomputeco/chatbot/pkg/storage"
)

// Driver is an in-memory storage.Driver. Contents are lost on Close.
type Driver struct {
	mu     sync.RWMutex
	turns  []*llm.ConversationTurn
	nextID int64
}

var _ storage.Driver = (*Driver)(nil)

// NewDriver creates an empty in-memory driver.
func NewDriver() *Driver {
	return &Driver{nextID: 1}
}

// Append stores a copy of the turn and assigns it the next sequential ID.
func (d *Driver) Append(_ context.Context, turn *llm.ConversationTurn) (*llm.ConversationTurn, error) {
	if turn == nil {
		return nil, fmt.Errorf("cannot store nil turn")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	stored := *turn
	stored.ID = d.nextID
	d.nextID++
	d.turns = append(d.turns, &stored)

	out := stored
	return &out, nil
}

// Get retrieves a turn by ID.
func (d *Driver) Get(_ context.Context, id int64) (*llm.ConversationTurn, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, t := range d.turns {
		if t.ID == id {
			out := *t
			return &out, nil
		}
	}

	return nil, storage.ErrNotFound{ID: id}
}

// ListBySession returns a session's turns, oldest first.
func (d *Driver) ListBySession(_ context.Context, sessionID string) ([]*llm.ConversationTurn, error) {
	return d.filter(func(t *llm.ConversationTurn) bool {
		return t.SessionID == sessionID
	}, ascending), nil
}

// ListBySessionInRange returns a session's turns within [start, end], oldest first.
func (d *Driver) ListBySessionInRange(_ context.Context, sessionID string, start, end time.Time) ([]*llm.ConversationTurn, error) {
	return d.filter(func(t *llm.ConversationTurn) bool {
		return t.SessionID == sessionID && !t.Timestamp.Before(start) && !t.Timestamp.After(end)
	}, ascending), nil
}

// CountBySession returns the number of turns in a session.
func (d *Driver) CountBySession(_ context.Context, sessionID string) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var count int64
	for _, t := range d.turns {
		if t.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

// ListRecent returns at most limit turns, newest first.
func (d *Driver) ListRecent(_ context.Context, limit int) ([]*llm.ConversationTurn, error) {
	if limit <= 0 {
		return []*llm.ConversationTurn{}, nil
	}

	turns := d.filter(func(*llm.ConversationTurn) bool { return true }, descending)
	if len(turns) > limit {
		turns = turns[:limit]
	}
	return turns, nil
}

// ListByClientIP returns the turns recorded from clientIP, newest first.
func (d *Driver) ListByClientIP(_ context.Context, clientIP string) ([]*llm.ConversationTurn, error) {
	return d.filter(func(t *llm.ConversationTurn) bool {
		return t.ClientIP == clientIP
	}, descending), nil
}

// DeleteBySession removes every turn in a session.
func (d *Driver) DeleteBySession(_ context.Context, sessionID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.turns[:0]
	for _, t := range d.turns {
		if t.SessionID != sessionID {
			kept = append(kept, t)
		}
	}
	// drop references held past the new length
	for i := len(kept); i < len(d.turns); i++ {
		d.turns[i] = nil
	}
	d.turns = kept

	return nil
}

// Close releases the stored turns.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.turns = nil
	return nil
}

type order int

const (
	ascending order = iota
	descending
)

// filter returns copies of the matching turns sorted by timestamp, with the ID
// breaking ties so insertion order is stable.
func (d *Driver) filter(match func(*llm.ConversationTurn) bool, o order) []*llm.ConversationTurn {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*llm.ConversationTurn, 0)
	for _, t := range d.turns {
		if match(t) {
			c := *t
			out = append(out, &c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			if o == descending {
				return a.Timestamp.After(b.Timestamp)
			}
			return a.Timestamp.Before(b.Timestamp)
		}
		if o == descending {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})

	return out
}
