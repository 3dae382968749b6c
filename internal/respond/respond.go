// Package respond turns a classified lead message into a reply skeleton. The
// synthesizer is pure: it selects a template by intent, folds settings, lead
// details, and the meeting plan into one template context, and renders. Any
// free-text polish happens downstream and never changes what is rendered
// here.
package respond

import (
	"fmt"

	"github.com/riposte/riposte/internal/classify"
	"github.com/riposte/riposte/internal/conversation"
	"github.com/riposte/riposte/internal/settings"
)

// Lead is the person being replied to, as far as synthesis needs to know.
type Lead struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Meeting urgency levels.
const (
	UrgencyNone   = "none"
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Meeting types offered to leads.
const (
	MeetingIntroCall         = "intro_call"
	MeetingPricingReview     = "pricing_review"
	MeetingTechnicalDeepDive = "technical_deep_dive"
)

// MeetingPlan is the deterministic meeting suggestion derived from intent,
// conversation stage, and pushiness. It biases template content and drives
// the calendar follow-up.
type MeetingPlan struct {
	ShouldSuggestMeeting bool   `json:"should_suggest_meeting"`
	Urgency              string `json:"urgency"`
	SuggestedDuration    int    `json:"suggested_duration"`
	MeetingType          string `json:"meeting_type"`
	CustomMessage        string `json:"custom_message,omitempty"`
}

// PlanMeeting derives the meeting suggestion by fixed precedence: an
// explicit meeting request outranks pricing, pricing outranks technical,
// and an engaged conversation earns a gentle nudge. Declines and goodbyes
// never get one. Pushiness only bends the stage arm: low disables it, high
// extends it to merely active conversations.
func PlanMeeting(intent classify.Intent, stage string, pushiness string) MeetingPlan {
	switch intent {
	case classify.IntentMeetingRequestPositive:
		return MeetingPlan{
			ShouldSuggestMeeting: true,
			Urgency:              UrgencyHigh,
			SuggestedDuration:    30,
			MeetingType:          MeetingIntroCall,
			CustomMessage:        "Lead asked to meet; confirm a slot right away.",
		}
	case classify.IntentPricingInquiry:
		return MeetingPlan{
			ShouldSuggestMeeting: true,
			Urgency:              UrgencyMedium,
			SuggestedDuration:    30,
			MeetingType:          MeetingPricingReview,
			CustomMessage:        "Offer a live pricing walkthrough.",
		}
	case classify.IntentTechnicalQuestion:
		return MeetingPlan{
			ShouldSuggestMeeting: true,
			Urgency:              UrgencyMedium,
			SuggestedDuration:    45,
			MeetingType:          MeetingTechnicalDeepDive,
			CustomMessage:        "Bring an engineer to cover the technical questions.",
		}
	case classify.IntentMeetingRequestNegative, classify.IntentNotInterested,
		classify.IntentUnsubscribe, classify.IntentOutOfOffice:
		return MeetingPlan{Urgency: UrgencyNone}
	}

	switch {
	case pushiness == settings.PushinessLow:
		return MeetingPlan{Urgency: UrgencyNone}
	case stage == conversation.StageEngaged,
		pushiness == settings.PushinessHigh && stage == conversation.StageActive:
		return MeetingPlan{
			ShouldSuggestMeeting: true,
			Urgency:              UrgencyLow,
			SuggestedDuration:    30,
			MeetingType:          MeetingIntroCall,
			CustomMessage:        "Conversation is warm; suggest a quick call.",
		}
	}
	return MeetingPlan{Urgency: UrgencyNone}
}

// Fallback is the hard-coded reply used when template rendering fails. It
// must never itself fail, so it is plain string assembly.
func Fallback(st settings.AgentSettings, lead Lead) string {
	greeting := "Hi"
	if lead.Name != "" {
		greeting = "Hi " + lead.Name
	}
	return fmt.Sprintf(
		"%s,\n\nThanks for your message. We've received it and will get back to you shortly.\n\nBest,\n%s",
		greeting, st.CompanyName)
}
