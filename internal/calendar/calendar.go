package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/riposte/riposte/internal/config"
	"github.com/riposte/riposte/internal/respond"
)

// Client places scheduling holds with the calendar service. A client
// built without a base URL is disabled and accepts every hold silently.
type Client struct {
	client  *resty.Client
	enabled bool
	logger  zerolog.Logger
}

// NewClient creates a calendar client from configuration
func NewClient(cfg config.CalendarConfig, logger zerolog.Logger) *Client {
	c := &Client{
		enabled: cfg.BaseURL != "",
		logger:  logger.With().Str("component", "calendar").Logger(),
	}
	if !c.enabled {
		return c
	}

	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout())
	if cfg.APIKey != "" {
		rc.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	c.client = rc

	return c
}

// holdRequest / holdResponse structs for JSON binding

type holdRequest struct {
	TrackingID      string `json:"tracking_id"`
	LeadEmail       string `json:"lead_email"`
	LeadName        string `json:"lead_name"`
	MeetingType     string `json:"meeting_type"`
	DurationMinutes int    `json:"duration_minutes"`
	Urgency         string `json:"urgency"`
}

type holdResponse struct {
	HoldID string `json:"hold_id"`
}

// PlaceHold asks the calendar service to reserve tentative time for a
// suggested meeting. Holds are advisory; failures never block a reply.
func (c *Client) PlaceHold(ctx context.Context, trackingID string, lead respond.Lead, plan respond.MeetingPlan) (string, error) {
	if !c.enabled || !plan.ShouldSuggestMeeting {
		return "", nil
	}

	reqBody := holdRequest{
		TrackingID:      trackingID,
		LeadEmail:       lead.Email,
		LeadName:        lead.Name,
		MeetingType:     string(plan.MeetingType),
		DurationMinutes: plan.SuggestedDuration,
		Urgency:         string(plan.Urgency),
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/holds")
	if err != nil {
		return "", fmt.Errorf("calendar request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return "", fmt.Errorf("calendar status %d: %s", resp.StatusCode(), resp.String())
	}

	var hr holdResponse
	if err := json.Unmarshal(resp.Body(), &hr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug().
		Str("tracking_id", trackingID).
		Str("hold_id", hr.HoldID).
		Str("meeting_type", string(plan.MeetingType)).
		Msg("Calendar hold placed")

	return hr.HoldID, nil
}
