package eventstore

import (
	"context"
	"strings"
	"sync"

	"github.com/riposte/riposte/internal/event"
)

// MemoryStore keeps events in a slice behind a mutex. It backs tests and the
// offline CLI dry-run; nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	events []event.Event
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores a copy of the event.
func (s *MemoryStore) Append(_ context.Context, ev *event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, *ev)
	return nil
}

// Query returns matching events in insertion order.
func (s *MemoryStore) Query(_ context.Context, f Filter) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []event.Event
	for _, ev := range s.events {
		if f.TrackingID != "" && strings.TrimSpace(ev.TrackingID) != strings.TrimSpace(f.TrackingID) {
			continue
		}
		if f.Type != "" && ev.Type != f.Type {
			continue
		}
		if !f.Since.IsZero() && ev.Timestamp.Before(f.Since) {
			continue
		}
		out = append(out, ev)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// Len reports how many events are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
