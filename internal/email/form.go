package email

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
)

// FromForm builds an InboundEmail from a provider webhook form post
// (Mailgun-style field names). The stripped text body is preferred over the
// full plain body so quoted reply history stays out of classification.
func FromForm(form url.Values) (*InboundEmail, error) {
	fromRaw := formValue(form, "From", "from", "sender")
	if fromRaw == "" {
		return nil, fmt.Errorf("webhook form missing sender")
	}

	email := &InboundEmail{
		ReceivedAt: time.Now(),
		Headers:    make(map[string]string),
	}

	if addr, err := parseAddress(fromRaw); err == nil {
		email.From = addr
	} else {
		return nil, fmt.Errorf("failed to parse sender %q: %w", fromRaw, err)
	}

	if to := formValue(form, "To", "to"); to != "" {
		if addrs, err := parseAddressList(to); err == nil {
			email.To = addrs
		}
	}
	// Mailgun reports the matched route recipient separately; fold it in so
	// alias-based tracking still sees it when the To header is missing.
	if rcpt := formValue(form, "recipient"); rcpt != "" && !containsAddress(email.To, rcpt) {
		email.To = append(email.To, Address{Address: rcpt})
	}
	if cc := formValue(form, "Cc", "cc"); cc != "" {
		if addrs, err := parseAddressList(cc); err == nil {
			email.Cc = addrs
		}
	}

	email.Subject = formValue(form, "Subject", "subject")
	email.MessageID = formValue(form, "Message-Id", "Message-ID", "message-id")
	if email.MessageID == "" {
		email.MessageID = generateMessageID()
	}
	email.InReplyTo = formValue(form, "In-Reply-To", "in-reply-to")
	email.References = formValue(form, "References", "references")

	email.TextBody = formValue(form, "stripped-text", "body-plain")
	email.HTMLBody = formValue(form, "body-html", "stripped-html")
	if email.TextBody == "" && email.HTMLBody == "" {
		return nil, fmt.Errorf("webhook form missing message body")
	}

	if dateStr := formValue(form, "Date", "date"); dateStr != "" {
		if t, err := mail.ParseDate(dateStr); err == nil {
			email.Date = t
		}
	}
	if email.Date.IsZero() {
		email.Date = time.Now()
	}

	for _, h := range storedHeaders {
		if val := formValue(form, h); val != "" {
			email.Headers[h] = val
		}
	}

	return email, nil
}

// formValue returns the first non-empty value among the given field names.
func formValue(form url.Values, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(form.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

func containsAddress(addrs []Address, address string) bool {
	for _, a := range addrs {
		if strings.EqualFold(a.Address, address) {
			return true
		}
	}
	return false
}
