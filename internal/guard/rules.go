package guard

import (
	"regexp"

	"github.com/riposte/riposte/internal/config"
	"github.com/riposte/riposte/internal/email"
)

// Rule is a compiled suppression rule
type Rule struct {
	Name  string
	Match *config.CompiledMatch
}

// Matches checks the rule's patterns against sender, recipients, and subject.
// Absent patterns match anything; a recipient pattern matches when any To or
// Cc address does.
func (r *Rule) Matches(e *email.InboundEmail) bool {
	if r.Match.From != nil && !r.Match.From.MatchString(e.From.Address) {
		return false
	}
	if r.Match.To != nil && !matchesAnyRecipient(r.Match.To, e) {
		return false
	}
	if r.Match.Subject != nil && !r.Match.Subject.MatchString(e.Subject) {
		return false
	}
	return true
}

func matchesAnyRecipient(pattern *regexp.Regexp, e *email.InboundEmail) bool {
	for _, addr := range e.To {
		if pattern.MatchString(addr.Address) {
			return true
		}
	}
	for _, addr := range e.Cc {
		if pattern.MatchString(addr.Address) {
			return true
		}
	}
	return false
}

// RuleSet holds compiled suppression rules in config order
type RuleSet struct {
	rules []*Rule
}

// NewRuleSet compiles suppression rules from configuration. Config order is
// priority order; earlier rules win.
func NewRuleSet(rules []config.SuppressionRule) (*RuleSet, error) {
	rs := &RuleSet{
		rules: make([]*Rule, 0, len(rules)),
	}

	for _, sr := range rules {
		compiled, err := sr.Compile()
		if err != nil {
			return nil, err
		}
		rs.rules = append(rs.rules, &Rule{Name: sr.Name, Match: compiled})
	}

	return rs, nil
}

// FindMatch returns the first rule the email matches, or nil
func (rs *RuleSet) FindMatch(e *email.InboundEmail) *Rule {
	for _, rule := range rs.rules {
		if rule.Matches(e) {
			return rule
		}
	}
	return nil
}
