// Package eventstore persists the append-only conversation journal. Events
// are written once and never updated or deleted; readers tolerate stale or
// partial slices, so no backend needs transactional guarantees.
package eventstore

import (
	"context"
	"time"

	"github.com/riposte/riposte/internal/event"
)

// Filter narrows a Query. Zero values mean "any".
type Filter struct {
	TrackingID string
	Type       event.Type
	Since      time.Time
	Limit      int
}

// Store is the conversation event journal.
type Store interface {
	// Append writes one event. Implementations must not mutate it.
	Append(ctx context.Context, ev *event.Event) error
	// Query returns events matching the filter. Ordering is best-effort
	// ascending by timestamp; callers that need strict order sort again.
	Query(ctx context.Context, f Filter) ([]event.Event, error)
	Close() error
}
