// Package dedup filters the duplicate events that at-least-once webhook
// delivery and multiple tracking beacons produce. The key is tracking id +
// actor + event type inside a short window; a duplicate inside the window is
// dropped before it reaches the event store. Filters fail open: losing a
// reply is worse than recording a duplicate turn.
package dedup

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/riposte/riposte/internal/event"
)

// DefaultWindow is the dedup window applied when none is configured.
const DefaultWindow = 30 * time.Second

// Key builds the dedup key for an event. Actor is lowercased since mail
// addresses compare case-insensitively in practice.
func Key(trackingID, actor string, typ event.Type) string {
	return strings.TrimSpace(trackingID) + ":" + strings.ToLower(strings.TrimSpace(actor)) + ":" + string(typ)
}

// Filter reports whether a key was already seen inside the window, marking
// it as seen in the same call.
type Filter interface {
	Seen(ctx context.Context, key string) (bool, error)
	Close() error
}

// MemoryFilter tracks seen keys in process memory. Good for a single
// instance and for tests; replicas need the Redis filter.
type MemoryFilter struct {
	ttl  time.Duration
	mu   sync.Mutex
	seen map[string]time.Time
	stop chan struct{}
	once sync.Once
}

// NewMemoryFilter creates an in-memory filter with the given window and
// starts its cleanup loop.
func NewMemoryFilter(ttl time.Duration) *MemoryFilter {
	if ttl <= 0 {
		ttl = DefaultWindow
	}
	f := &MemoryFilter{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		stop: make(chan struct{}),
	}
	go f.janitor()
	return f
}

// Seen marks the key and reports whether it was already present and fresh.
func (f *MemoryFilter) Seen(_ context.Context, key string) (bool, error) {
	now := time.Now()
	f.mu.Lock()
	defer f.mu.Unlock()

	if expiry, ok := f.seen[key]; ok && now.Before(expiry) {
		return true, nil
	}
	f.seen[key] = now.Add(f.ttl)
	return false, nil
}

// Close stops the cleanup loop.
func (f *MemoryFilter) Close() error {
	f.once.Do(func() { close(f.stop) })
	return nil
}

func (f *MemoryFilter) janitor() {
	interval := f.ttl
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.cleanup()
		case <-f.stop:
			return
		}
	}
}

func (f *MemoryFilter) cleanup() {
	now := time.Now()
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, expiry := range f.seen {
		if now.After(expiry) {
			delete(f.seen, key)
		}
	}
}
