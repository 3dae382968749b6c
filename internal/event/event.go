package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type identifies what happened at a point in a conversation.
type Type string

const (
	// TypeEmailOpen records a tracking pixel fetch by the recipient.
	TypeEmailOpen Type = "email_open"
	// TypeLinkClick records a tracked link click by the recipient.
	TypeLinkClick Type = "link_click"
	// TypeLeadMessage records an inbound message written by the lead.
	TypeLeadMessage Type = "lead_message"
	// TypeAIReply records an outbound reply produced by the agent.
	TypeAIReply Type = "ai_reply"
)

// ParseType maps a wire string to a known event type.
func ParseType(s string) (Type, bool) {
	switch Type(strings.TrimSpace(strings.ToLower(s))) {
	case TypeEmailOpen:
		return TypeEmailOpen, true
	case TypeLinkClick:
		return TypeLinkClick, true
	case TypeLeadMessage:
		return TypeLeadMessage, true
	case TypeAIReply:
		return TypeAIReply, true
	}
	return "", false
}

// IsMessage reports whether events of this type carry conversation text.
func (t Type) IsMessage() bool {
	return t == TypeLeadMessage || t == TypeAIReply
}

// Event is one record in the append-only conversation journal. Events are
// never mutated or deleted; every conversation view is derived by folding
// them back out of the store.
type Event struct {
	ID         string            `json:"id"`
	TrackingID string            `json:"tracking_id"`
	Type       Type              `json:"type"`
	Timestamp  time.Time         `json:"timestamp"`
	Actor      string            `json:"actor,omitempty"`
	Message    string            `json:"message,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// New creates an event stamped with a fresh ID and the current time.
func New(trackingID string, typ Type, actor string) *Event {
	return &Event{
		ID:         uuid.New().String(),
		TrackingID: trackingID,
		Type:       typ,
		Timestamp:  time.Now().UTC(),
		Actor:      actor,
	}
}

// WithMessage attaches conversation text to the event.
func (e *Event) WithMessage(text string) *Event {
	e.Message = text
	return e
}

// WithMetadata attaches a metadata key to the event, allocating the map on
// first use.
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}
