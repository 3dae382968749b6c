package email

import (
	"strings"
	"time"
)

// Address represents an email address with optional name
type Address struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// String returns the formatted address
func (a Address) String() string {
	if a.Name != "" {
		return a.Name + " <" + a.Address + ">"
	}
	return a.Address
}

// LocalPart returns the part of the address before the @
func (a Address) LocalPart() string {
	if i := strings.Index(a.Address, "@"); i >= 0 {
		return a.Address[:i]
	}
	return a.Address
}

// Attachment represents an email attachment
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id,omitempty"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
}

// InboundEmail represents a parsed inbound email
type InboundEmail struct {
	MessageID   string            `json:"message_id"`
	From        Address           `json:"from"`
	To          []Address         `json:"to"`
	Cc          []Address         `json:"cc"`
	Bcc         []Address         `json:"bcc"`
	ReplyTo     *Address          `json:"reply_to,omitempty"`
	Subject     string            `json:"subject"`
	Date        time.Time         `json:"date"`
	TextBody    string            `json:"text_body"`
	HTMLBody    string            `json:"html_body"`
	InReplyTo   string            `json:"in_reply_to,omitempty"`
	References  string            `json:"references,omitempty"`
	Headers     map[string]string `json:"headers"`
	Attachments []Attachment      `json:"attachments"`
	RawMessage  []byte            `json:"-"`
	ReceivedAt  time.Time         `json:"received_at"`
}

// GetToAddresses returns just the email addresses from To
func (e *InboundEmail) GetToAddresses() []string {
	addrs := make([]string, len(e.To))
	for i, a := range e.To {
		addrs[i] = a.Address
	}
	return addrs
}

// GetCcAddresses returns just the email addresses from Cc
func (e *InboundEmail) GetCcAddresses() []string {
	addrs := make([]string, len(e.Cc))
	for i, a := range e.Cc {
		addrs[i] = a.Address
	}
	return addrs
}

// Body returns the best available body (text preferred)
func (e *InboundEmail) Body() string {
	if e.TextBody != "" {
		return e.TextBody
	}
	return e.HTMLBody
}

// SenderName returns a display name for the sender, falling back to the
// local part of the address when no name was given
func (e *InboundEmail) SenderName() string {
	if e.From.Name != "" {
		return e.From.Name
	}
	return e.From.LocalPart()
}

// Header returns a stored header value by case-insensitive name
func (e *InboundEmail) Header(name string) string {
	for k, v := range e.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// HasAttachments returns true if the email has attachments
func (e *InboundEmail) HasAttachments() bool {
	return len(e.Attachments) > 0
}

// OutboundEmail represents an email to be sent
type OutboundEmail struct {
	From        Address      `json:"from"`
	To          []Address    `json:"to"`
	Cc          []Address    `json:"cc"`
	Bcc         []Address    `json:"bcc"`
	ReplyTo     *Address     `json:"reply_to,omitempty"`
	Subject     string       `json:"subject"`
	TextBody    string       `json:"text_body"`
	HTMLBody    string       `json:"html_body"`
	Attachments []Attachment `json:"attachments"`
	InReplyTo   string       `json:"in_reply_to,omitempty"`
	References  []string     `json:"references,omitempty"`
}

// Reply builds an outbound reply to an inbound email with threading headers
// set so mail clients keep the messages in one thread. Reply-To on the
// inbound message wins over From as the destination.
func (e *InboundEmail) Reply(from Address, textBody string) *OutboundEmail {
	to := e.From
	if e.ReplyTo != nil {
		to = *e.ReplyTo
	}

	subject := e.Subject
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	out := &OutboundEmail{
		From:      from,
		To:        []Address{to},
		Subject:   subject,
		TextBody:  textBody,
		InReplyTo: e.MessageID,
	}
	if e.References != "" {
		out.References = strings.Fields(e.References)
	}
	if e.MessageID != "" {
		out.References = append(out.References, e.MessageID)
	}
	return out
}
