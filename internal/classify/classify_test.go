package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordClassifier_Intent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Intent
	}{
		{"meeting acceptance", "Yes, let's meet tomorrow at 3pm", IntentMeetingRequestPositive},
		{"booking a call", "Could we set up a call next week?", IntentMeetingRequestPositive},
		{"meeting decline", "Sorry, I can't make it, we'll have to reschedule", IntentMeetingRequestNegative},
		{"pricing", "What does the pricing look like for 50 seats?", IntentPricingInquiry},
		{"technical", "Does it support SSO via SAML?", IntentTechnicalQuestion},
		{"not interested", "Thanks but we're not interested right now", IntentNotInterested},
		{"unsubscribe", "Please remove me from this list", IntentUnsubscribe},
		{"out of office", "I am out of office until Monday", IntentOutOfOffice},
		{"unmatched", "Got it, appreciate the info!", IntentGeneralPositive},
	}

	c := NewKeywordClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ClassifyIntent(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeywordClassifier_IntentOrder(t *testing.T) {
	c := NewKeywordClassifier()

	// Unsubscribe outranks the disinterest phrasing around it.
	got, err := c.ClassifyIntent(context.Background(), "Not interested, unsubscribe me please")
	require.NoError(t, err)
	assert.Equal(t, IntentUnsubscribe, got)

	// A decline outranks the meeting words it contains.
	got, err = c.ClassifyIntent(context.Background(), "I can't make the call we discussed")
	require.NoError(t, err)
	assert.Equal(t, IntentMeetingRequestNegative, got)
}

func TestKeywordClassifier_Sentiment(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		text string
		want Sentiment
	}{
		{"Sounds great, thank you!", SentimentPositive},
		{"Stop emailing me, this is spam", SentimentNegative},
		{"Received. Will review next quarter.", SentimentNeutral},
		// Negative wins a mixed message.
		{"Thanks, but we're not interested", SentimentNegative},
	}

	for _, tt := range tests {
		got, err := c.ClassifySentiment(context.Background(), tt.text)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "text: %s", tt.text)
	}
}

func TestParseIntent_Fallback(t *testing.T) {
	assert.Equal(t, IntentPricingInquiry, ParseIntent("pricing_inquiry"))
	assert.Equal(t, IntentPricingInquiry, ParseIntent("  Pricing_Inquiry\n"))
	assert.Equal(t, IntentGeneralPositive, ParseIntent("buy_now"))
	assert.Equal(t, IntentGeneralPositive, ParseIntent(""))
}

func TestParseSentiment_Fallback(t *testing.T) {
	assert.Equal(t, SentimentNegative, ParseSentiment("negative"))
	assert.Equal(t, SentimentNeutral, ParseSentiment("ambivalent"))
	assert.Equal(t, SentimentNeutral, ParseSentiment(""))
}
