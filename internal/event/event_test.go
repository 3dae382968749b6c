package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType_KnownTypes(t *testing.T) {
	for _, typ := range []Type{TypeEmailOpen, TypeLinkClick, TypeLeadMessage, TypeAIReply} {
		parsed, ok := ParseType(string(typ))
		assert.True(t, ok, string(typ))
		assert.Equal(t, typ, parsed)
	}
}

func TestParseType_NormalizesInput(t *testing.T) {
	parsed, ok := ParseType("  Email_Open ")

	require.True(t, ok)
	assert.Equal(t, TypeEmailOpen, parsed)
}

func TestParseType_RejectsUnknown(t *testing.T) {
	_, ok := ParseType("email_bounce")

	assert.False(t, ok)
}

func TestType_IsMessage(t *testing.T) {
	assert.True(t, TypeLeadMessage.IsMessage())
	assert.True(t, TypeAIReply.IsMessage())
	assert.False(t, TypeEmailOpen.IsMessage())
	assert.False(t, TypeLinkClick.IsMessage())
}

func TestNew_StampsIdentityAndTime(t *testing.T) {
	before := time.Now().UTC()
	ev := New("abc123", TypeLeadMessage, "dana@example.com")

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "abc123", ev.TrackingID)
	assert.Equal(t, TypeLeadMessage, ev.Type)
	assert.Equal(t, "dana@example.com", ev.Actor)
	assert.False(t, ev.Timestamp.Before(before))

	other := New("abc123", TypeLeadMessage, "dana@example.com")
	assert.NotEqual(t, ev.ID, other.ID)
}

func TestEvent_WithMetadata_AllocatesOnFirstUse(t *testing.T) {
	ev := New("abc123", TypeAIReply, "agent").
		WithMessage("hello").
		WithMetadata("intent", "pricing_inquiry").
		WithMetadata("sentiment", "positive")

	assert.Equal(t, "hello", ev.Message)
	assert.Equal(t, "pricing_inquiry", ev.Metadata["intent"])
	assert.Equal(t, "positive", ev.Metadata["sentiment"])
}
