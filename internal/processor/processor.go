package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/riposte/riposte/internal/calendar"
	"github.com/riposte/riposte/internal/classify"
	"github.com/riposte/riposte/internal/conversation"
	"github.com/riposte/riposte/internal/dedup"
	"github.com/riposte/riposte/internal/email"
	"github.com/riposte/riposte/internal/enhance"
	"github.com/riposte/riposte/internal/event"
	"github.com/riposte/riposte/internal/eventstore"
	"github.com/riposte/riposte/internal/guard"
	"github.com/riposte/riposte/internal/mailer"
	"github.com/riposte/riposte/internal/respond"
	"github.com/riposte/riposte/internal/settings"
	"github.com/riposte/riposte/internal/tracking"
)

// Outcome describes what the pipeline did with an inbound email
type Outcome string

const (
	OutcomeReplied    Outcome = "replied"
	OutcomeSuppressed Outcome = "suppressed"
	OutcomeIgnored    Outcome = "ignored"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeEscalated  Outcome = "escalated"
)

// Result contains the processing decision for an email
type Result struct {
	TrackingID string
	Outcome    Outcome
	Rule       string
	Intent     classify.Intent
	Sentiment  classify.Sentiment
	Stage      string
	ReplyText  string
	Turns      int
}

// Deps holds the processor's collaborators
type Deps struct {
	Store      eventstore.Store
	Guard      *guard.Guard
	Dedup      dedup.Filter
	Settings   settings.Provider
	Classifier classify.Classifier
	Synth      *respond.Synthesizer
	Enhancer   enhance.Enhancer
	Mailer     mailer.Sender
	Calendar   *calendar.Client

	From        email.Address
	ReplyDomain string
	UserID      string
	DedupWindow time.Duration
}

// Processor orchestrates reply generation for inbound email
type Processor struct {
	deps     Deps
	fallback *classify.KeywordClassifier
	logger   zerolog.Logger
}

// NewProcessor creates a new email processor
func NewProcessor(deps Deps, logger zerolog.Logger) *Processor {
	if deps.DedupWindow <= 0 {
		deps.DedupWindow = dedup.DefaultWindow
	}
	return &Processor{
		deps:     deps,
		fallback: classify.NewKeywordClassifier(),
		logger:   logger.With().Str("component", "processor").Logger(),
	}
}

// Process handles an incoming email end to end. The returned Result
// describes the decision even when err is nil; err is reserved for
// failures the caller should surface (store writes, send failures).
func (p *Processor) Process(ctx context.Context, inbound *email.InboundEmail) (*Result, error) {
	start := time.Now()

	// Never answer automated mail
	if v := p.deps.Guard.Check(inbound); v.Suppress {
		return &Result{Outcome: OutcomeSuppressed, Rule: v.Rule}, nil
	}

	// Find the conversation this email belongs to
	trackingID, ok := tracking.Extract(inbound)
	if !ok {
		p.logger.Debug().
			Str("from", inbound.From.Address).
			Str("subject", inbound.Subject).
			Msg("No tracking id found, ignoring email")
		return &Result{Outcome: OutcomeIgnored}, nil
	}

	result := &Result{TrackingID: trackingID}

	// Drop retried deliveries of the same message
	if p.seen(ctx, dedup.Key(trackingID, inbound.From.Address, event.TypeLeadMessage)) {
		result.Outcome = OutcomeDuplicate
		return result, nil
	}

	// Record the lead's message before any reply work so the
	// conversation survives a failure further down
	lead := respond.Lead{
		Name:    inbound.SenderName(),
		Email:   inbound.From.Address,
		Subject: inbound.Subject,
		Message: inbound.Body(),
	}

	ev := event.New(trackingID, event.TypeLeadMessage, lead.Email).
		WithMessage(lead.Message).
		WithMetadata("subject", inbound.Subject).
		WithMetadata("message_id", inbound.MessageID)
	if err := p.deps.Store.Append(ctx, ev); err != nil {
		return result, fmt.Errorf("failed to append lead message: %w", err)
	}

	// Rebuild the conversation including the message just appended
	turns, err := p.conversationTurns(ctx, trackingID)
	if err != nil {
		p.logger.Warn().Err(err).
			Str("tracking_id", trackingID).
			Msg("Failed to load history, treating as new conversation")
		turns = nil
	}
	stage := conversation.Stage(turns)
	result.Stage = stage
	result.Turns = len(turns)

	st, err := p.deps.Settings.GetSettings(ctx, p.deps.UserID)
	if err != nil {
		p.logger.Warn().Err(err).Str("user_id", p.deps.UserID).Msg("Falling back to default settings")
	}

	intent, sentiment := p.classify(ctx, lead.Message)
	result.Intent = intent
	result.Sentiment = sentiment

	// Angry leads get a human, not a template
	if sentiment == classify.SentimentNegative && st.EscalateNegative {
		p.logger.Info().
			Str("tracking_id", trackingID).
			Str("from", lead.Email).
			Msg("Negative sentiment, escalating to a human")
		result.Outcome = OutcomeEscalated
		return result, nil
	}

	// So does a message asking more questions than one template answers
	if n := strings.Count(lead.Message, "?"); st.QuestionThreshold > 0 && n >= st.QuestionThreshold {
		p.logger.Info().
			Str("tracking_id", trackingID).
			Str("from", lead.Email).
			Int("questions", n).
			Msg("Question-heavy message, escalating to a human")
		result.Outcome = OutcomeEscalated
		return result, nil
	}

	replyText := p.compose(ctx, intent, sentiment, st, lead, stage, turns)
	result.ReplyText = replyText

	outbound := inbound.Reply(p.deps.From, replyText)
	if p.deps.ReplyDomain != "" {
		tracking.Stamp(outbound, trackingID, p.deps.ReplyDomain)
	}

	if err := p.deps.Mailer.Send(ctx, outbound); err != nil {
		return result, fmt.Errorf("failed to send reply: %w", err)
	}

	reply := event.New(trackingID, event.TypeAIReply, lead.Email).
		WithMessage(replyText).
		WithMetadata("intent", string(intent)).
		WithMetadata("sentiment", string(sentiment))
	if err := p.deps.Store.Append(ctx, reply); err != nil {
		p.logger.Error().Err(err).
			Str("tracking_id", trackingID).
			Msg("Reply sent but not recorded")
	}

	p.placeHold(ctx, trackingID, lead, intent, stage, st)

	result.Outcome = OutcomeReplied
	p.logger.Info().
		Str("tracking_id", trackingID).
		Str("intent", string(intent)).
		Str("sentiment", string(sentiment)).
		Str("stage", stage).
		Int("turns", result.Turns).
		Dur("duration", time.Since(start)).
		Msg("Reply sent")

	return result, nil
}

// RecordEvent ingests a telemetry or message event, deduplicating
// retried deliveries. Returns false when the event was dropped as a
// duplicate.
func (p *Processor) RecordEvent(ctx context.Context, ev *event.Event) (bool, error) {
	if ev.TrackingID == "" {
		return false, fmt.Errorf("event missing tracking id")
	}

	if p.seen(ctx, dedup.Key(ev.TrackingID, ev.Actor, ev.Type)) {
		return false, nil
	}

	if err := p.deps.Store.Append(ctx, ev); err != nil {
		return false, fmt.Errorf("failed to append event: %w", err)
	}

	return true, nil
}

// Conversation returns the reconstructed turns for a tracking id
func (p *Processor) Conversation(ctx context.Context, trackingID string) ([]conversation.Turn, error) {
	return p.conversationTurns(ctx, trackingID)
}

func (p *Processor) conversationTurns(ctx context.Context, trackingID string) ([]conversation.Turn, error) {
	events, err := p.deps.Store.Query(ctx, eventstore.Filter{TrackingID: trackingID})
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	return conversation.Reconstruct(events, trackingID), nil
}

// seen consults the dedup filter, failing open on errors
func (p *Processor) seen(ctx context.Context, key string) bool {
	if p.deps.Dedup == nil {
		return false
	}
	seen, err := p.deps.Dedup.Seen(ctx, key)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Dedup check failed, processing anyway")
		return false
	}
	return seen
}

// classify runs the configured classifier with a keyword fallback
func (p *Processor) classify(ctx context.Context, message string) (classify.Intent, classify.Sentiment) {
	intent, err := p.deps.Classifier.ClassifyIntent(ctx, message)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Intent classification failed, using keyword fallback")
		intent, _ = p.fallback.ClassifyIntent(ctx, message)
	}

	sentiment, err := p.deps.Classifier.ClassifySentiment(ctx, message)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Sentiment classification failed, using keyword fallback")
		sentiment, _ = p.fallback.ClassifySentiment(ctx, message)
	}

	return intent, sentiment
}

// compose renders the reply skeleton and optionally enhances it
func (p *Processor) compose(ctx context.Context, intent classify.Intent, sentiment classify.Sentiment, st settings.AgentSettings, lead respond.Lead, stage string, turns []conversation.Turn) string {
	skeleton, err := p.deps.Synth.Synthesize(intent, sentiment, st, lead, stage)
	if err != nil {
		p.logger.Error().Err(err).
			Str("intent", string(intent)).
			Msg("Reply synthesis failed, using fallback reply")
		return respond.Fallback(st, lead)
	}

	if p.deps.Enhancer == nil {
		return skeleton
	}

	// The trailing unanswered turn is the message being replied to;
	// the enhancer receives it separately via lead
	prior := turns
	if n := len(prior); n > 0 && prior[n-1].AIResponse == nil {
		prior = prior[:n-1]
	}
	history := conversation.FormatHistory(prior, 6)

	enhanced, err := p.deps.Enhancer.Enhance(ctx, skeleton, history, lead, st)
	if err != nil {
		p.logger.Warn().Err(err).Msg("Enhancement failed, sending skeleton")
	}
	if enhanced == "" {
		return skeleton
	}
	return enhanced
}

// placeHold asks the calendar for tentative time when the meeting plan
// suggests one. Holds never block the reply.
func (p *Processor) placeHold(ctx context.Context, trackingID string, lead respond.Lead, intent classify.Intent, stage string, st settings.AgentSettings) {
	if p.deps.Calendar == nil {
		return
	}

	plan := respond.PlanMeeting(intent, stage, st.MeetingPushiness)
	if !plan.ShouldSuggestMeeting {
		return
	}

	if _, err := p.deps.Calendar.PlaceHold(ctx, trackingID, lead, plan); err != nil {
		p.logger.Warn().Err(err).
			Str("tracking_id", trackingID).
			Msg("Failed to place calendar hold")
	}
}
