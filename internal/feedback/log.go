// Package feedback records like/skip events for the current session.
package feedback

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/memefeed/internal/vector"
)

// Action is the kind of feedback a user gave an item.
type Action string

const (
	ActionLike Action = "like"
	ActionSkip Action = "skip"
)

// ParseAction converts "like" or "skip" (any case) to an Action.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionLike:
		return ActionLike, nil
	case ActionSkip:
		return ActionSkip, nil
	default:
		return "", fmt.Errorf("unknown feedback action %q (want like or skip)", s)
	}
}

// Event is a single accepted feedback record. Events are never modified after Append.
type Event struct {
	ID         string    `json:"id"`
	Action     Action    `json:"action"`
	Index      int       `json:"index"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Log is an append-only, in-memory feedback log. It is safe for concurrent use;
// every read returns a copy so callers never observe a partial append.
type Log struct {
	mu     sync.RWMutex
	events []Event
	liked  []int
	skips  int
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append validates index against store and records the event.
// An out-of-range index returns *vector.IndexError and leaves the log unchanged.
func (l *Log) Append(action Action, index int, store *vector.Store) (Event, error) {
	if action != ActionLike && action != ActionSkip {
		return Event{}, fmt.Errorf("unknown feedback action %q", action)
	}
	if !store.Contains(index) {
		return Event{}, &vector.IndexError{Index: index, Size: store.Size()}
	}
	ev := Event{
		ID:         uuid.NewString(),
		Action:     action,
		Index:      index,
		RecordedAt: time.Now(),
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	if action == ActionLike {
		l.liked = append(l.liked, index)
	} else {
		l.skips++
	}
	return ev, nil
}

// LikedIndices returns the liked item indices in append order, duplicates included.
func (l *Log) LikedIndices() []int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]int{}, l.liked...)
}

// Events returns a copy of all recorded events in append order.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Event{}, l.events...)
}

// Len returns the total number of accepted events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// LikedCount returns the number of like events.
func (l *Log) LikedCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.liked)
}

// SkippedCount returns the number of skip events.
func (l *Log) SkippedCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.skips
}

// Counts returns total, liked and skipped counts from one consistent snapshot.
func (l *Log) Counts() (total, liked, skipped int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events), len(l.liked), l.skips
}
