package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riposte/riposte/internal/event"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func ev(typ event.Type, trackingID, msg string, offset time.Duration) event.Event {
	actor := "lead@example.com"
	if typ == event.TypeAIReply {
		actor = "agent@riposte.example.com"
	}
	return event.Event{
		ID:         "ev-" + string(typ) + offset.String(),
		TrackingID: trackingID,
		Type:       typ,
		Timestamp:  base.Add(offset),
		Actor:      actor,
		Message:    msg,
	}
}

func TestReconstruct_PairsLeadWithReply(t *testing.T) {
	events := []event.Event{
		ev(event.TypeLeadMessage, "abc", "Does it support SSO?", 0),
		ev(event.TypeAIReply, "abc", "It does, via SAML.", time.Minute),
	}

	turns := Reconstruct(events, "abc")
	require.Len(t, turns, 1)
	assert.Equal(t, StateComplete, turns[0].State)
	require.NotNil(t, turns[0].LeadMessage)
	require.NotNil(t, turns[0].AIResponse)
	assert.Equal(t, "Does it support SSO?", *turns[0].LeadMessage)
	assert.Equal(t, "It does, via SAML.", *turns[0].AIResponse)
	assert.Equal(t, "lead@example.com", turns[0].Sender)
	assert.Equal(t, "agent@riposte.example.com", turns[0].Recipient)
}

func TestReconstruct_OutOfOrderArrival(t *testing.T) {
	// The store returns events in no particular order; the fold sorts.
	events := []event.Event{
		ev(event.TypeAIReply, "abc", "Happy to help.", time.Minute),
		ev(event.TypeLeadMessage, "abc", "Hi there", 0),
	}

	turns := Reconstruct(events, "abc")
	require.Len(t, turns, 1)
	assert.Equal(t, StateComplete, turns[0].State)
}

func TestReconstruct_SecondLeadDoesNotOverwriteFirst(t *testing.T) {
	events := []event.Event{
		ev(event.TypeLeadMessage, "abc", "first question", 0),
		ev(event.TypeLeadMessage, "abc", "second question", time.Minute),
		ev(event.TypeAIReply, "abc", "answering the second", 2*time.Minute),
	}

	turns := Reconstruct(events, "abc")
	require.Len(t, turns, 2)

	assert.Equal(t, StatePending, turns[0].State)
	assert.Equal(t, "first question", *turns[0].LeadMessage)
	assert.Nil(t, turns[0].AIResponse)

	assert.Equal(t, StateComplete, turns[1].State)
	assert.Equal(t, "second question", *turns[1].LeadMessage)
	assert.Equal(t, "answering the second", *turns[1].AIResponse)
}

func TestReconstruct_OrphanedReply(t *testing.T) {
	events := []event.Event{
		ev(event.TypeAIReply, "abc", "reply with no lead", 0),
	}

	turns := Reconstruct(events, "abc")
	require.Len(t, turns, 1)
	assert.Equal(t, StateOrphaned, turns[0].State)
	assert.Nil(t, turns[0].LeadMessage)
	assert.Equal(t, "reply with no lead", *turns[0].AIResponse)
}

func TestReconstruct_TrailingLeadStaysPending(t *testing.T) {
	events := []event.Event{
		ev(event.TypeLeadMessage, "abc", "anyone there?", 0),
	}

	turns := Reconstruct(events, "abc")
	require.Len(t, turns, 1)
	assert.Equal(t, StatePending, turns[0].State)
}

func TestReconstruct_IgnoresTelemetry(t *testing.T) {
	events := []event.Event{
		ev(event.TypeEmailOpen, "abc", "", 0),
		ev(event.TypeLeadMessage, "abc", "hello", time.Minute),
		ev(event.TypeLinkClick, "abc", "", 2*time.Minute),
		ev(event.TypeAIReply, "abc", "hi", 3*time.Minute),
		ev(event.TypeEmailOpen, "abc", "", 4*time.Minute),
	}

	turns := Reconstruct(events, "abc")
	require.Len(t, turns, 1)
	assert.Equal(t, StateComplete, turns[0].State)
}

func TestReconstruct_FiltersByTrackingID(t *testing.T) {
	events := []event.Event{
		ev(event.TypeLeadMessage, "abc", "mine", 0),
		ev(event.TypeLeadMessage, "xyz", "someone else's", time.Minute),
		ev(event.TypeAIReply, " abc ", "padded id still matches", 2*time.Minute),
	}

	turns := Reconstruct(events, "abc")
	require.Len(t, turns, 1)
	assert.Equal(t, StateComplete, turns[0].State)
	assert.Equal(t, "mine", *turns[0].LeadMessage)
}

func TestReconstruct_EmptyInput(t *testing.T) {
	assert.Empty(t, Reconstruct(nil, "abc"))
	assert.Empty(t, Reconstruct([]event.Event{}, "abc"))
	assert.Empty(t, Reconstruct([]event.Event{ev(event.TypeLeadMessage, "abc", "x", 0)}, ""))
}

func TestReconstruct_TimestampTiesKeepInputOrder(t *testing.T) {
	events := []event.Event{
		ev(event.TypeLeadMessage, "abc", "first in slice", 0),
		ev(event.TypeLeadMessage, "abc", "second in slice", 0),
	}

	turns := Reconstruct(events, "abc")
	require.Len(t, turns, 2)
	assert.Equal(t, "first in slice", *turns[0].LeadMessage)
	assert.Equal(t, "second in slice", *turns[1].LeadMessage)
}

func TestReconstruct_OutputOrderedAndComplete(t *testing.T) {
	events := []event.Event{
		ev(event.TypeAIReply, "abc", "r2", 5*time.Minute),
		ev(event.TypeLeadMessage, "abc", "l3", 6*time.Minute),
		ev(event.TypeLeadMessage, "abc", "l1", 0),
		ev(event.TypeAIReply, "abc", "r1", time.Minute),
		ev(event.TypeLeadMessage, "abc", "l2", 4*time.Minute),
	}

	turns := Reconstruct(events, "abc")

	leads, replies := 0, 0
	for i, turn := range turns {
		if turn.LeadMessage != nil {
			leads++
		}
		if turn.AIResponse != nil {
			replies++
		}
		if i > 0 {
			assert.False(t, turn.Timestamp.Before(turns[i-1].Timestamp))
		}
	}
	assert.Equal(t, 3, leads)
	assert.Equal(t, 2, replies)
}

func TestStage(t *testing.T) {
	complete := Turn{State: StateComplete}
	pending := Turn{State: StatePending}

	assert.Equal(t, StageNew, Stage(nil))
	assert.Equal(t, StageNew, Stage([]Turn{pending}))
	assert.Equal(t, StageActive, Stage([]Turn{complete, pending}))
	assert.Equal(t, StageEngaged, Stage([]Turn{complete, complete, pending}))
}

func TestFormatHistory_LimitsToMostRecent(t *testing.T) {
	events := []event.Event{
		ev(event.TypeLeadMessage, "abc", "oldest", 0),
		ev(event.TypeAIReply, "abc", "old reply", time.Minute),
		ev(event.TypeLeadMessage, "abc", "newest", 2*time.Minute),
	}
	turns := Reconstruct(events, "abc")

	history := FormatHistory(turns, 1)
	assert.Contains(t, history, "Lead: newest")
	assert.NotContains(t, history, "oldest")

	full := FormatHistory(turns, 0)
	assert.Contains(t, full, "Lead: oldest")
	assert.Contains(t, full, "Agent: old reply")
}
