package classify

import (
	"context"
	"strings"
)

// intentRule maps trigger phrases to an intent. Rules are evaluated in
// order and the first phrase hit wins, so compliance signals (unsubscribe)
// outrank enthusiasm and a meeting decline outranks the meeting words it
// contains.
type intentRule struct {
	intent  Intent
	phrases []string
}

var intentRules = []intentRule{
	{IntentUnsubscribe, []string{
		"unsubscribe", "remove me", "take me off", "stop emailing", "opt out", "opt-out",
	}},
	{IntentOutOfOffice, []string{
		"out of office", "out of the office", "on vacation", "annual leave",
		"parental leave", "away until", "auto-reply", "automatic reply",
	}},
	{IntentNotInterested, []string{
		"not interested", "no longer interested", "we're all set", "we are all set",
		"no thanks", "no thank you", "please stop", "not a fit", "not the right time",
	}},
	{IntentMeetingRequestNegative, []string{
		"can't make", "cannot make", "can't meet", "cannot meet", "won't be able to meet",
		"have to cancel", "need to cancel", "have to reschedule", "need to reschedule",
		"not available to meet",
	}},
	{IntentMeetingRequestPositive, []string{
		"let's meet", "lets meet", "let's schedule", "lets schedule", "let's talk", "lets talk",
		"happy to meet", "happy to chat", "book a call", "set up a call", "schedule a call",
		"schedule a meeting", "set up a meeting", "works for me", "that works", "see you then",
		"send me an invite", "send a calendar invite", "free to meet", "available to meet",
	}},
	{IntentPricingInquiry, []string{
		"pricing", "price", "cost", "how much", "quote", "budget", "discount", "per seat", "per user",
	}},
	{IntentTechnicalQuestion, []string{
		"how does", "does it support", "do you support", "integrate", "integration",
		"api", "sso", "saml", "security", "compliance", "gdpr", "soc 2", "on-prem", "self-host",
	}},
}

var negativePhrases = []string{
	"not interested", "no longer interested", "unsubscribe", "stop emailing",
	"disappointed", "waste of", "annoying", "frustrated", "spam", "never contact",
	"no thanks", "no thank you",
}

var positivePhrases = []string{
	"thanks", "thank you", "great", "sounds good", "sounds great", "love",
	"excited", "perfect", "awesome", "happy to", "yes",
	"looking forward", "works for me",
}

// KeywordClassifier labels messages from phrase lists alone. It needs no
// configuration or network and is the fallback when no LLM is wired up.
type KeywordClassifier struct{}

// NewKeywordClassifier creates a keyword classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// ClassifyIntent returns the first intent whose phrase list matches. It
// never fails; an unmatched message is general_positive.
func (c *KeywordClassifier) ClassifyIntent(_ context.Context, text string) (Intent, error) {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(lower, phrase) {
				return rule.intent, nil
			}
		}
	}
	return IntentGeneralPositive, nil
}

// ClassifySentiment scores the message by phrase hits; negative signals
// outweigh positive ones on a tie.
func (c *KeywordClassifier) ClassifySentiment(_ context.Context, text string) (Sentiment, error) {
	lower := strings.ToLower(text)

	negative := 0
	for _, phrase := range negativePhrases {
		if strings.Contains(lower, phrase) {
			negative++
		}
	}
	positive := 0
	for _, phrase := range positivePhrases {
		if strings.Contains(lower, phrase) {
			positive++
		}
	}

	switch {
	case negative >= positive && negative > 0:
		return SentimentNegative, nil
	case positive > 0:
		return SentimentPositive, nil
	default:
		return SentimentNeutral, nil
	}
}
