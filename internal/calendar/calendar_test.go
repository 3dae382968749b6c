package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riposte/riposte/internal/config"
	"github.com/riposte/riposte/internal/respond"
)

func TestClient_PlaceHold(t *testing.T) {
	var got holdRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/holds", r.URL.Path)
		require.Equal(t, "Bearer cal_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(holdResponse{HoldID: "hold-77"})
	}))
	defer srv.Close()

	c := NewClient(config.CalendarConfig{BaseURL: srv.URL, APIKey: "cal_test", TimeoutSeconds: 5}, zerolog.Nop())

	holdID, err := c.PlaceHold(context.Background(), "3f2a", respond.Lead{Name: "Dana", Email: "dana@example.com"}, respond.MeetingPlan{
		ShouldSuggestMeeting: true,
		Urgency:              respond.UrgencyHigh,
		SuggestedDuration:    30,
		MeetingType:          respond.MeetingIntroCall,
	})

	require.NoError(t, err)
	assert.Equal(t, "hold-77", holdID)
	assert.Equal(t, "3f2a", got.TrackingID)
	assert.Equal(t, "dana@example.com", got.LeadEmail)
	assert.Equal(t, "intro_call", got.MeetingType)
	assert.Equal(t, 30, got.DurationMinutes)
	assert.Equal(t, "high", got.Urgency)
}

func TestClient_PlaceHold_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "calendar down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(config.CalendarConfig{BaseURL: srv.URL, TimeoutSeconds: 5}, zerolog.Nop())

	_, err := c.PlaceHold(context.Background(), "3f2a", respond.Lead{}, respond.MeetingPlan{ShouldSuggestMeeting: true})

	assert.Error(t, err)
}

func TestClient_PlaceHold_DisabledClient(t *testing.T) {
	c := NewClient(config.CalendarConfig{}, zerolog.Nop())

	holdID, err := c.PlaceHold(context.Background(), "3f2a", respond.Lead{}, respond.MeetingPlan{ShouldSuggestMeeting: true})

	assert.NoError(t, err)
	assert.Empty(t, holdID)
}

func TestClient_PlaceHold_NoMeetingSuggested(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected when no meeting is suggested")
	}))
	defer srv.Close()

	c := NewClient(config.CalendarConfig{BaseURL: srv.URL, TimeoutSeconds: 5}, zerolog.Nop())

	holdID, err := c.PlaceHold(context.Background(), "3f2a", respond.Lead{}, respond.MeetingPlan{})

	assert.NoError(t, err)
	assert.Empty(t, holdID)
}
