package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riposte/riposte/internal/event"
)

func TestKey_Normalizes(t *testing.T) {
	key := Key(" abc ", " Lead@Example.COM ", event.TypeLeadMessage)
	assert.Equal(t, "abc:lead@example.com:lead_message", key)

	// Different event types never collide.
	assert.NotEqual(t,
		Key("abc", "lead@example.com", event.TypeEmailOpen),
		Key("abc", "lead@example.com", event.TypeLinkClick))
}

func TestMemoryFilter_FirstSightIsNew(t *testing.T) {
	f := NewMemoryFilter(time.Minute)
	defer f.Close()

	seen, err := f.Seen(context.Background(), "k1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMemoryFilter_RepeatInsideWindowIsDuplicate(t *testing.T) {
	f := NewMemoryFilter(time.Minute)
	defer f.Close()

	_, err := f.Seen(context.Background(), "k1")
	require.NoError(t, err)

	seen, err := f.Seen(context.Background(), "k1")
	require.NoError(t, err)
	assert.True(t, seen)

	// A different key is unaffected.
	seen, err = f.Seen(context.Background(), "k2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMemoryFilter_WindowExpires(t *testing.T) {
	f := NewMemoryFilter(10 * time.Millisecond)
	defer f.Close()

	_, err := f.Seen(context.Background(), "k1")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	seen, err := f.Seen(context.Background(), "k1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMemoryFilter_CloseIsIdempotent(t *testing.T) {
	f := NewMemoryFilter(time.Minute)
	require.NoError(t, f.Close())
	require.NoError(t, f.Close())
}
