// Package tracking correlates inbound replies to the conversation they
// belong to. A conversation is identified by an opaque token that rides on
// every outbound message in three redundant places (recipient alias, subject
// tag, References header) so that at least one survives whatever the lead's
// mail client does to a reply.
package tracking

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/riposte/riposte/internal/email"
)

// aliasPrefix is the local-part prefix of tracking recipient aliases.
const aliasPrefix = "tracking-"

var (
	subjectTagPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)
	bodyDeclPattern   = regexp.MustCompile(`(?i)tracking[_ ]?id[:\s]*([A-Za-z0-9_-]+)`)
	headerPattern     = regexp.MustCompile(`(?i)tracking-([0-9a-f]{32})\b`)
)

// Extract resolves the tracking id for an inbound message. Sources are tried
// in confidence order and the first hit wins; when a stale token appears in a
// lower-confidence source (a forwarded subject, say) source order is the
// tie-break, never majority vote. Tokens are opaque and case-sensitive; the
// only normalization is whitespace trimming. A miss returns ok=false, never
// an error.
func Extract(msg *email.InboundEmail) (string, bool) {
	if msg == nil {
		return "", false
	}
	if token, ok := fromRecipients(msg.To, msg.Cc); ok {
		return token, true
	}
	if token, ok := fromSubject(msg.Subject); ok {
		return token, true
	}
	if token, ok := fromBody(msg.Body()); ok {
		return token, true
	}
	if token, ok := fromThreadingHeader(msg.InReplyTo); ok {
		return token, true
	}
	if token, ok := fromThreadingHeader(msg.References); ok {
		return token, true
	}
	return "", false
}

// fromRecipients scans recipient addresses for the tracking alias form
// tracking-<token>@domain.
func fromRecipients(lists ...[]email.Address) (string, bool) {
	for _, addrs := range lists {
		for _, addr := range addrs {
			local := addr.LocalPart()
			if len(local) <= len(aliasPrefix) {
				continue
			}
			if !strings.EqualFold(local[:len(aliasPrefix)], aliasPrefix) {
				continue
			}
			if token := strings.TrimSpace(local[len(aliasPrefix):]); token != "" {
				return token, true
			}
		}
	}
	return "", false
}

// fromSubject extracts the first [token] tag in the subject line.
func fromSubject(subject string) (string, bool) {
	m := subjectTagPattern.FindStringSubmatch(subject)
	if m == nil {
		return "", false
	}
	token := strings.TrimSpace(m[1])
	return token, token != ""
}

// fromBody extracts an explicit "tracking id: <token>" declaration. The
// label is matched case-insensitively; the token itself keeps its case.
func fromBody(body string) (string, bool) {
	m := bodyDeclPattern.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// fromThreadingHeader extracts a token embedded in an In-Reply-To or
// References message id of the form <tracking-<hex32>@domain>.
func fromThreadingHeader(header string) (string, bool) {
	m := headerPattern.FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// Generate returns a fresh tracking token: 32 hex characters, so the
// threading-header form stays extractable on the way back in.
func Generate() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Alias returns the tracking recipient alias for a token.
func Alias(token, domain string) string {
	return aliasPrefix + token + "@" + domain
}

// Stamp embeds the token into an outbound message in all three redundant
// places: Reply-To alias, subject tag, and a synthetic References entry.
// Any reply that preserves one of them correlates back to the conversation.
func Stamp(out *email.OutboundEmail, token, domain string) {
	if out == nil || token == "" || domain == "" {
		return
	}

	alias := Alias(token, domain)
	out.ReplyTo = &email.Address{Address: alias}

	tag := "[" + token + "]"
	if !strings.Contains(out.Subject, tag) {
		if out.Subject == "" {
			out.Subject = tag
		} else {
			out.Subject = out.Subject + " " + tag
		}
	}

	ref := "<" + alias + ">"
	for _, existing := range out.References {
		if existing == ref {
			return
		}
	}
	out.References = append(out.References, ref)
}
