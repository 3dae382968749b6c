// Package settings supplies per-user agent configuration to reply synthesis.
// Every provider degrades to hard defaults when its backing store misses or
// fails; synthesis never runs without settings.
package settings

import "context"

// Meeting pushiness levels. Low never volunteers a meeting, high nudges
// early in the conversation.
const (
	PushinessLow    = "low"
	PushinessMedium = "medium"
	PushinessHigh   = "high"
)

// AgentSettings configures the reply agent's voice and behavior.
type AgentSettings struct {
	CompanyName       string   `yaml:"company_name" json:"company_name"`
	ProductName       string   `yaml:"product_name" json:"product_name"`
	ValueProps        []string `yaml:"value_props" json:"value_props"`
	CalendarLink      string   `yaml:"calendar_link" json:"calendar_link"`
	Tone              string   `yaml:"tone" json:"tone"`
	MeetingPushiness  string   `yaml:"meeting_pushiness" json:"meeting_pushiness"`
	EscalateNegative  bool     `yaml:"escalate_negative" json:"escalate_negative"`
	QuestionThreshold int      `yaml:"question_threshold" json:"question_threshold"`
}

// Defaults returns the hard default settings used whenever a provider cannot
// answer.
func Defaults() AgentSettings {
	return AgentSettings{
		CompanyName:       "Our Team",
		ProductName:       "our product",
		ValueProps:        []string{"saves your team hours every week", "set up in minutes, no code"},
		Tone:              "professional",
		MeetingPushiness:  "medium",
		EscalateNegative:  true,
		QuestionThreshold: 3,
	}
}

// Normalize fills any zero-value field from the defaults so partially
// configured settings still render complete replies.
func Normalize(s AgentSettings) AgentSettings {
	def := Defaults()
	if s.CompanyName == "" {
		s.CompanyName = def.CompanyName
	}
	if s.ProductName == "" {
		s.ProductName = def.ProductName
	}
	if len(s.ValueProps) == 0 {
		s.ValueProps = def.ValueProps
	}
	if s.Tone == "" {
		s.Tone = def.Tone
	}
	if s.MeetingPushiness == "" {
		s.MeetingPushiness = def.MeetingPushiness
	}
	if s.QuestionThreshold == 0 {
		s.QuestionThreshold = def.QuestionThreshold
	}
	return s
}

// Provider resolves agent settings for a user. Implementations fall back to
// defaults internally; the returned settings are always usable even when an
// error is reported alongside them.
type Provider interface {
	GetSettings(ctx context.Context, userID string) (AgentSettings, error)
}

// StaticProvider serves one fixed settings block, typically from the config
// file.
type StaticProvider struct {
	settings AgentSettings
}

// NewStaticProvider creates a provider around a fixed settings block.
func NewStaticProvider(s AgentSettings) *StaticProvider {
	return &StaticProvider{settings: Normalize(s)}
}

// GetSettings returns the fixed settings for every user.
func (p *StaticProvider) GetSettings(context.Context, string) (AgentSettings, error) {
	return p.settings, nil
}
