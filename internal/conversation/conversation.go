// Package conversation derives ordered lead/agent turns from the raw event
// journal. Nothing here is stored; every view is recomputed from events on
// demand.
package conversation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riposte/riposte/internal/event"
)

// TurnState describes how much of a turn the journal accounts for.
type TurnState string

const (
	// StateComplete means both the lead message and the agent reply are present.
	StateComplete TurnState = "complete"
	// StatePending means the lead message has no reply yet.
	StatePending TurnState = "pending"
	// StateOrphaned means only a reply survived (log gap or legacy data).
	StateOrphaned TurnState = "orphaned"
)

// Conversation stages, derived from completed turns.
const (
	StageNew     = "new"
	StageActive  = "active"
	StageEngaged = "engaged"
)

// Turn is one lead-message/agent-reply pairing. Derived, never persisted.
type Turn struct {
	TrackingID  string    `json:"tracking_id"`
	Timestamp   time.Time `json:"timestamp"`
	LeadMessage *string   `json:"lead_message,omitempty"`
	AIResponse  *string   `json:"ai_response,omitempty"`
	Sender      string    `json:"sender,omitempty"`
	Recipient   string    `json:"recipient,omitempty"`
	State       TurnState `json:"state"`
}

// Reconstruct folds an event slice into ordered turns for one conversation.
// The slice may be pre-filtered or raw; events are matched by exact tracking
// id after trimming either side. Events are stably sorted by timestamp (ties
// keep input order), then walked with a single open-turn pointer:
//
//   - a lead message flushes any still-pending turn before opening a new one,
//     so a second lead without an intervening reply never overwrites the first;
//   - an agent reply closes the open turn, or stands alone as orphaned when
//     no turn is open;
//   - opens and clicks are telemetry and are skipped.
//
// Duplicate events produce duplicate turns; deduplication happens at
// ingestion, not here. An empty or partial slice yields an empty or partial
// result, never an error.
func Reconstruct(events []event.Event, trackingID string) []Turn {
	target := strings.TrimSpace(trackingID)
	if target == "" {
		return nil
	}

	matched := make([]event.Event, 0, len(events))
	for _, ev := range events {
		if strings.TrimSpace(ev.TrackingID) == target {
			matched = append(matched, ev)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.Before(matched[j].Timestamp)
	})

	turns := make([]Turn, 0, len(matched))
	var open *Turn

	for _, ev := range matched {
		switch ev.Type {
		case event.TypeLeadMessage:
			if open != nil {
				turns = append(turns, *open)
			}
			msg := ev.Message
			open = &Turn{
				TrackingID:  target,
				Timestamp:   ev.Timestamp,
				LeadMessage: &msg,
				Sender:      ev.Actor,
				State:       StatePending,
			}
		case event.TypeAIReply:
			msg := ev.Message
			if open != nil {
				open.AIResponse = &msg
				open.Recipient = ev.Actor
				open.State = StateComplete
				turns = append(turns, *open)
				open = nil
				continue
			}
			turns = append(turns, Turn{
				TrackingID: target,
				Timestamp:  ev.Timestamp,
				AIResponse: &msg,
				Sender:     ev.Actor,
				State:      StateOrphaned,
			})
		}
	}

	if open != nil {
		turns = append(turns, *open)
	}
	return turns
}

// Stage classifies how far along a conversation is from its completed turns:
// none yet is new, one is active, two or more is engaged.
func Stage(turns []Turn) string {
	complete := 0
	for _, t := range turns {
		if t.State == StateComplete {
			complete++
		}
	}
	switch {
	case complete >= 2:
		return StageEngaged
	case complete == 1:
		return StageActive
	default:
		return StageNew
	}
}

// FormatHistory renders the most recent turns as a plain transcript for
// prompt context and CLI display. At most max turns are included; zero or
// negative means all.
func FormatHistory(turns []Turn, max int) string {
	if max > 0 && len(turns) > max {
		turns = turns[len(turns)-max:]
	}

	var b strings.Builder
	for _, t := range turns {
		if t.LeadMessage != nil {
			fmt.Fprintf(&b, "Lead: %s\n", strings.TrimSpace(*t.LeadMessage))
		}
		if t.AIResponse != nil {
			fmt.Fprintf(&b, "Agent: %s\n", strings.TrimSpace(*t.AIResponse))
		}
	}
	return strings.TrimSpace(b.String())
}
