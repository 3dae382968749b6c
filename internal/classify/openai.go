package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// maxClassifyInput caps how much of a message is sent for labeling; replies
// carry quoted history that adds tokens without adding signal.
const maxClassifyInput = 2000

// classification is the JSON shape the model is asked to produce.
type classification struct {
	Intent     string  `json:"intent"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// OpenAIClassifier labels messages with a single JSON-constrained chat
// completion per call. Labels outside the known sets are normalized by
// ParseIntent/ParseSentiment; transport failures surface as errors for the
// caller to recover from.
type OpenAIClassifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewOpenAIClassifier creates a classifier backed by the OpenAI chat API.
func NewOpenAIClassifier(apiKey, model string, logger zerolog.Logger) *OpenAIClassifier {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClassifier{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: 30 * time.Second,
		logger:  logger.With().Str("component", "classifier").Logger(),
	}
}

// ClassifyIntent labels the message with one of the known intents.
func (c *OpenAIClassifier) ClassifyIntent(ctx context.Context, text string) (Intent, error) {
	result, err := c.classify(ctx, text)
	if err != nil {
		return IntentGeneralPositive, err
	}
	return ParseIntent(result.Intent), nil
}

// ClassifySentiment labels the message tone.
func (c *OpenAIClassifier) ClassifySentiment(ctx context.Context, text string) (Sentiment, error) {
	result, err := c.classify(ctx, text)
	if err != nil {
		return SentimentNeutral, err
	}
	return ParseSentiment(result.Sentiment), nil
}

func (c *OpenAIClassifier) classify(ctx context.Context, text string) (*classification, error) {
	if len(text) > maxClassifyInput {
		text = text[:maxClassifyInput]
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	labels := make([]string, 0, len(Intents()))
	for _, intent := range Intents() {
		labels = append(labels, string(intent))
	}
	system := fmt.Sprintf(
		`You classify inbound sales email replies. Respond with JSON only: `+
			`{"intent": one of [%s], "sentiment": one of [positive, neutral, negative], `+
			`"confidence": 0.0-1.0}.`,
		strings.Join(labels, ", "))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   150,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to classify message: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("classification returned no choices")
	}

	var result classification
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classification: %w", err)
	}

	c.logger.Debug().
		Str("intent", result.Intent).
		Str("sentiment", result.Sentiment).
		Float64("confidence", result.Confidence).
		Msg("Classified message")

	return &result, nil
}
