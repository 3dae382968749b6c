// Package classify assigns an intent and a sentiment label to inbound lead
// messages. Intents are a closed enumeration; anything a classifier cannot
// place lands on the general-positive fallback so reply synthesis always has
// a template to select.
package classify

import (
	"context"
	"strings"
)

// Intent is the closed set of reply intents the synthesizer knows templates
// for.
type Intent string

const (
	IntentMeetingRequestPositive Intent = "meeting_request_positive"
	IntentMeetingRequestNegative Intent = "meeting_request_negative"
	IntentPricingInquiry         Intent = "pricing_inquiry"
	IntentTechnicalQuestion      Intent = "technical_question"
	IntentNotInterested          Intent = "not_interested"
	IntentUnsubscribe            Intent = "unsubscribe_request"
	IntentOutOfOffice            Intent = "out_of_office"
	IntentGeneralPositive        Intent = "general_positive"
)

// Sentiment is the coarse tone of a lead message.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Intents lists every known intent.
func Intents() []Intent {
	return []Intent{
		IntentMeetingRequestPositive,
		IntentMeetingRequestNegative,
		IntentPricingInquiry,
		IntentTechnicalQuestion,
		IntentNotInterested,
		IntentUnsubscribe,
		IntentOutOfOffice,
		IntentGeneralPositive,
	}
}

// LookupIntent maps a label to a known intent, reporting whether the
// label was recognized.
func LookupIntent(s string) (Intent, bool) {
	label := Intent(strings.TrimSpace(strings.ToLower(s)))
	for _, intent := range Intents() {
		if label == intent {
			return intent, true
		}
	}
	return "", false
}

// ParseIntent maps a label to a known intent, falling back to
// general_positive on anything unrecognized.
func ParseIntent(s string) Intent {
	if intent, ok := LookupIntent(s); ok {
		return intent
	}
	return IntentGeneralPositive
}

// ParseSentiment maps a label to a known sentiment, falling back to neutral.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(strings.TrimSpace(strings.ToLower(s))) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// Classifier labels lead messages. Implementations may fail; callers recover
// by substituting IntentGeneralPositive and SentimentNeutral and moving on.
type Classifier interface {
	ClassifyIntent(ctx context.Context, text string) (Intent, error)
	ClassifySentiment(ctx context.Context, text string) (Sentiment, error)
}
