package enhance

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/rs/zerolog"

	"github.com/riposte/riposte/internal/respond"
	"github.com/riposte/riposte/internal/settings"
)

const (
	// maxLeadInput caps how much of the lead's message reaches the prompt
	maxLeadInput = 2000

	defaultTimeout = 30 * time.Second
)

// Enhancer polishes a rendered reply skeleton. history is a plain
// transcript of earlier turns and may be empty. Implementations must
// return usable text even when polishing fails: the skeleton comes
// back unchanged, with the error describing what went wrong.
type Enhancer interface {
	Enhance(ctx context.Context, skeleton, history string, lead respond.Lead, st settings.AgentSettings) (string, error)
}

// NoopEnhancer returns the skeleton unchanged
type NoopEnhancer struct{}

// Enhance returns the skeleton as-is
func (NoopEnhancer) Enhance(_ context.Context, skeleton, _ string, _ respond.Lead, _ settings.AgentSettings) (string, error) {
	return skeleton, nil
}

// OpenAIEnhancer rewrites reply skeletons with an LLM while keeping
// their substance intact
type OpenAIEnhancer struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewOpenAIEnhancer creates an OpenAI-backed enhancer
func NewOpenAIEnhancer(apiKey, model string, temperature float32, logger zerolog.Logger) *OpenAIEnhancer {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIEnhancer{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		timeout:     defaultTimeout,
		logger:      logger.With().Str("component", "enhance").Logger(),
	}
}

// Enhance asks the LLM to polish the skeleton. On any failure, or when
// the polished text fails the guardrails, the skeleton is returned.
func (e *OpenAIEnhancer) Enhance(ctx context.Context, skeleton, history string, lead respond.Lead, st settings.AgentSettings) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(st),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt(skeleton, history, lead),
			},
		},
	})
	if err != nil {
		return skeleton, fmt.Errorf("failed to enhance reply: %w", err)
	}

	if len(resp.Choices) == 0 {
		return skeleton, fmt.Errorf("enhance returned no choices")
	}

	enhanced := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reason := reject(skeleton, enhanced, st.CalendarLink); reason != "" {
		e.logger.Warn().
			Str("reason", reason).
			Str("lead", lead.Email).
			Msg("Discarding enhanced reply")
		return skeleton, nil
	}

	return enhanced, nil
}

// userPrompt assembles the rewrite request: thread context when there
// is any, the message being answered, then the draft itself
func userPrompt(skeleton, history string, lead respond.Lead) string {
	message := lead.Message
	if len(message) > maxLeadInput {
		message = message[:maxLeadInput]
	}

	var b strings.Builder
	if history != "" {
		b.WriteString("Earlier in this thread:\n")
		b.WriteString(history)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "The lead (%s) wrote:\n%s\n\nDraft reply to polish:\n%s", lead.Name, message, skeleton)
	return b.String()
}

// systemPrompt frames the rewrite task for the agent's voice
func systemPrompt(st settings.AgentSettings) string {
	var b strings.Builder
	b.WriteString("You polish draft sales replies for ")
	b.WriteString(st.CompanyName)
	b.WriteString(". Rewrite the draft in a ")
	b.WriteString(st.Tone)
	b.WriteString(" tone. Keep every commitment, link and factual claim from the draft. ")
	b.WriteString("Do not add offers the draft does not make. Reply with the email body only, no subject line.")
	return b.String()
}

// reject returns a non-empty reason when the enhanced text must not
// replace the skeleton
func reject(skeleton, enhanced, calendarLink string) string {
	if enhanced == "" {
		return "empty result"
	}
	if calendarLink != "" && strings.Contains(skeleton, calendarLink) && !strings.Contains(enhanced, calendarLink) {
		return "calendar link dropped"
	}
	if len(enhanced) < len(skeleton)/2 {
		return "result too short"
	}
	if len(enhanced) > 3*len(skeleton) {
		return "result too long"
	}
	return ""
}
