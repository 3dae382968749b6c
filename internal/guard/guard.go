package guard

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/riposte/riposte/internal/config"
	"github.com/riposte/riposte/internal/email"
)

// Verdict is the suppression decision for an inbound email
type Verdict struct {
	Suppress bool
	Rule     string
	Reason   string
}

// suppressedLocalParts are sender local parts that never get a reply
var suppressedLocalParts = map[string]bool{
	"mailer-daemon": true,
	"postmaster":    true,
	"no-reply":      true,
	"noreply":       true,
	"do-not-reply":  true,
	"donotreply":    true,
}

// suppressedPrecedence values mark bulk or list traffic
var suppressedPrecedence = map[string]bool{
	"bulk": true,
	"junk": true,
	"list": true,
}

// Guard decides whether an inbound email may be answered at all.
// Built-in checks run before config-supplied rules; first match wins.
type Guard struct {
	rules  *RuleSet
	logger zerolog.Logger
}

// New creates a Guard from configured suppression rules
func New(rules []config.SuppressionRule, logger zerolog.Logger) (*Guard, error) {
	rs, err := NewRuleSet(rules)
	if err != nil {
		return nil, fmt.Errorf("failed to compile suppression rules: %w", err)
	}

	return &Guard{
		rules:  rs,
		logger: logger.With().Str("component", "guard").Logger(),
	}, nil
}

// Check evaluates the suppression rules against an email
func (g *Guard) Check(e *email.InboundEmail) Verdict {
	if v := checkHeaders(e); v.Suppress {
		g.logger.Info().
			Str("from", e.From.Address).
			Str("rule", v.Rule).
			Str("reason", v.Reason).
			Msg("Email suppressed")
		return v
	}

	if rule := g.rules.FindMatch(e); rule != nil {
		v := Verdict{
			Suppress: true,
			Rule:     rule.Name,
			Reason:   "matched suppression rule",
		}
		g.logger.Info().
			Str("from", e.From.Address).
			Str("subject", e.Subject).
			Str("rule", rule.Name).
			Msg("Email suppressed")
		return v
	}

	return Verdict{}
}

// checkHeaders applies the built-in auto-responder and bounce checks
func checkHeaders(e *email.InboundEmail) Verdict {
	if v := strings.ToLower(strings.TrimSpace(e.Header("Auto-Submitted"))); v != "" && v != "no" {
		return Verdict{Suppress: true, Rule: "auto-submitted", Reason: "Auto-Submitted: " + v}
	}

	if e.Header("X-Auto-Response-Suppress") != "" {
		return Verdict{Suppress: true, Rule: "auto-response-suppress", Reason: "sender asked for no auto replies"}
	}

	if v := strings.ToLower(strings.TrimSpace(e.Header("Precedence"))); suppressedPrecedence[v] {
		return Verdict{Suppress: true, Rule: "precedence", Reason: "Precedence: " + v}
	}

	if e.Header("List-Id") != "" {
		return Verdict{Suppress: true, Rule: "list-id", Reason: "mailing list traffic"}
	}

	if local := strings.ToLower(e.From.LocalPart()); suppressedLocalParts[local] || strings.HasPrefix(local, "bounce") {
		return Verdict{Suppress: true, Rule: "sender", Reason: "automated sender " + local}
	}

	if strings.TrimSpace(e.Header("Return-Path")) == "<>" {
		return Verdict{Suppress: true, Rule: "null-return-path", Reason: "bounce message"}
	}

	return Verdict{}
}
