package respond

import (
	"fmt"

	"github.com/riposte/riposte/internal/classify"
	"github.com/riposte/riposte/internal/settings"
	"github.com/riposte/riposte/internal/template"
)

// builtinTemplates are the stock reply skeletons per intent. Sections are
// deliberately flat; the template language forbids nesting.
var builtinTemplates = map[classify.Intent]string{
	classify.IntentMeetingRequestPositive: `Hi {{lead_name}},

Glad to hear it. Let's get something on the calendar.

{{#calendar_link}}Pick any {{meeting_duration}}-minute slot that works for you: {{calendar_link}}{{/calendar_link}}
{{^calendar_link}}Does a {{meeting_duration}}-minute call this week work? Send over a couple of times and I'll confirm one.{{/calendar_link}}

Talk soon,
{{company_name}}`,

	classify.IntentMeetingRequestNegative: `Hi {{lead_name}},

No problem at all. We can pick this up whenever the timing is better on your side.

{{#calendar_link}}If it helps, my calendar stays current here: {{calendar_link}}{{/calendar_link}}

Would it be worth another look in a few weeks?

Best,
{{company_name}}`,

	classify.IntentPricingInquiry: `Hi {{lead_name}},

Thanks for asking about pricing. Plans for {{product_name}} depend on team size and usage, so I'd rather get you exact numbers than quote a range.

A few things the price always includes:
{{#value_props}}- {{.}}
{{/value_props}}

{{#should_suggest_meeting}}A short pricing review is the fastest way to an exact quote.{{/should_suggest_meeting}}
{{#calendar_link}}Grab a time here: {{calendar_link}}{{/calendar_link}}

Best,
{{company_name}}`,

	classify.IntentTechnicalQuestion: `Hi {{lead_name}},

Good question, and exactly the kind of detail worth pinning down for your setup.

I can pull in one of our engineers for a {{meeting_duration}}-minute technical deep dive and get you a precise answer.
{{#calendar_link}}Book it directly here: {{calendar_link}}{{/calendar_link}}
{{^calendar_link}}Reply with a couple of times that suit you and I'll set it up.{{/calendar_link}}

Best,
{{company_name}}`,

	classify.IntentNotInterested: `Hi {{lead_name}},

Understood, and thanks for the straight answer. I won't keep nudging.

If priorities shift, {{product_name}} will still be here. One line from you and I'll pick the thread back up.

All the best,
{{company_name}}`,

	classify.IntentUnsubscribe: `Hi {{lead_name}},

Done. You're off the list and won't hear from me again.

Sorry for the noise, and all the best.

{{company_name}}`,

	classify.IntentOutOfOffice: `Hi {{lead_name}},

Thanks for the heads-up. Enjoy the time away.

I'll circle back once you're back at your desk.

Best,
{{company_name}}`,

	classify.IntentGeneralPositive: `Hi {{lead_name}},

Thanks for getting back to me.

{{product_name}} in short:
{{#value_props}}- {{.}}
{{/value_props}}

{{#calendar_link}}If it's easier to talk it through, grab a time: {{calendar_link}}{{/calendar_link}}

Is there anything specific you'd like me to cover?

Best,
{{company_name}}`,
}

// Synthesizer renders reply skeletons. It holds the intent template table
// and nothing else; all inputs arrive per call and no I/O happens here.
type Synthesizer struct {
	templates map[classify.Intent]string
}

// NewSynthesizer creates a synthesizer with the built-in templates.
func NewSynthesizer() *Synthesizer {
	templates := make(map[classify.Intent]string, len(builtinTemplates))
	for intent, tpl := range builtinTemplates {
		templates[intent] = tpl
	}
	return &Synthesizer{templates: templates}
}

// RegisterTemplate replaces the template for an intent after validating its
// structure.
func (s *Synthesizer) RegisterTemplate(intent classify.Intent, tpl string) error {
	if err := template.Validate(tpl); err != nil {
		return fmt.Errorf("template for %s: %w", intent, err)
	}
	s.templates[intent] = tpl
	return nil
}

// Template returns the template that would be used for an intent, following
// the general-positive fallback.
func (s *Synthesizer) Template(intent classify.Intent) string {
	if tpl, ok := s.templates[intent]; ok {
		return tpl
	}
	return s.templates[classify.IntentGeneralPositive]
}

// Synthesize selects the intent's template (general positive when none is
// registered), merges settings, lead, labels, and the meeting plan into one
// context, and renders. A render failure is returned for the caller to
// replace with Fallback.
func (s *Synthesizer) Synthesize(
	intent classify.Intent,
	sentiment classify.Sentiment,
	st settings.AgentSettings,
	lead Lead,
	stage string,
) (string, error) {
	plan := PlanMeeting(intent, stage, st.MeetingPushiness)

	ctx := template.Context{
		"company_name":  st.CompanyName,
		"product_name":  st.ProductName,
		"value_props":   st.ValueProps,
		"calendar_link": st.CalendarLink,
		"tone":          st.Tone,

		"lead_name":    lead.Name,
		"lead_email":   lead.Email,
		"subject":      lead.Subject,
		"lead_message": lead.Message,

		"intent":    string(intent),
		"sentiment": string(sentiment),
		"stage":     stage,

		"should_suggest_meeting": plan.ShouldSuggestMeeting,
		"meeting_urgency":        plan.Urgency,
		"meeting_duration":       plan.SuggestedDuration,
		"meeting_type":           plan.MeetingType,
		"meeting_message":        plan.CustomMessage,
	}

	out, err := template.Render(s.Template(intent), ctx)
	if err != nil {
		return "", fmt.Errorf("failed to render %s reply: %w", intent, err)
	}
	return out, nil
}
