package tracking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/riposte/riposte/internal/email"
)

func TestExtract_RecipientAlias(t *testing.T) {
	msg := &email.InboundEmail{
		To: []email.Address{{Address: "tracking-abc123@replies.example.com"}},
	}

	token, ok := Extract(msg)
	assert.True(t, ok)
	assert.Equal(t, "abc123", token)
}

func TestExtract_RecipientBeatsSubject(t *testing.T) {
	// A stale token in a forwarded subject must lose to the alias.
	msg := &email.InboundEmail{
		To:      []email.Address{{Address: "tracking-fresh99@replies.example.com"}},
		Subject: "Fwd: Quick question [stale00]",
	}

	token, ok := Extract(msg)
	assert.True(t, ok)
	assert.Equal(t, "fresh99", token)
}

func TestExtract_SubjectTag(t *testing.T) {
	msg := &email.InboundEmail{
		To:      []email.Address{{Address: "sales@example.com"}},
		Subject: "Re: Following up [tok_42]",
	}

	token, ok := Extract(msg)
	assert.True(t, ok)
	assert.Equal(t, "tok_42", token)
}

func TestExtract_SubjectTagCasePreserved(t *testing.T) {
	msg := &email.InboundEmail{Subject: "[AbC123]"}

	token, ok := Extract(msg)
	assert.True(t, ok)
	assert.Equal(t, "AbC123", token)
}

func TestExtract_BodyDeclaration(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"colon", "Thanks!\ntracking id: tok42\nBest", "tok42"},
		{"underscore label", "tracking_id: abc-def", "abc-def"},
		{"uppercase label", "TRACKING ID tok99", "tok99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &email.InboundEmail{TextBody: tt.body}
			token, ok := Extract(msg)
			assert.True(t, ok)
			assert.Equal(t, tt.want, token)
		})
	}
}

func TestExtract_InReplyTo(t *testing.T) {
	msg := &email.InboundEmail{
		InReplyTo: "<tracking-a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6@replies.example.com>",
	}

	token, ok := Extract(msg)
	assert.True(t, ok)
	assert.Equal(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6", token)
}

func TestExtract_ReferencesFallback(t *testing.T) {
	msg := &email.InboundEmail{
		InReplyTo:  "<CAx12345@mail.gmail.com>",
		References: "<CAx12345@mail.gmail.com> <tracking-a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6@replies.example.com>",
	}

	token, ok := Extract(msg)
	assert.True(t, ok)
	assert.Equal(t, "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6", token)
}

func TestExtract_NoMatch(t *testing.T) {
	msg := &email.InboundEmail{
		From:     email.Address{Address: "lead@example.com"},
		To:       []email.Address{{Address: "sales@example.com"}},
		Subject:  "Quick question",
		TextBody: "Does the product support SSO?",
	}

	token, ok := Extract(msg)
	assert.False(t, ok)
	assert.Empty(t, token)
}

func TestExtract_NilMessage(t *testing.T) {
	token, ok := Extract(nil)
	assert.False(t, ok)
	assert.Empty(t, token)
}

func TestExtract_SkipsEmptyAliasToken(t *testing.T) {
	msg := &email.InboundEmail{
		To: []email.Address{
			{Address: "tracking-@replies.example.com"},
			{Address: "tracking-real1@replies.example.com"},
		},
	}

	token, ok := Extract(msg)
	assert.True(t, ok)
	assert.Equal(t, "real1", token)
}

func TestGenerate_HexToken(t *testing.T) {
	token := Generate()
	assert.Regexp(t, "^[0-9a-f]{32}$", token)
	assert.NotEqual(t, token, Generate())
}

func TestStamp_SetsAllCarriers(t *testing.T) {
	out := &email.OutboundEmail{Subject: "Intro to Riposte"}
	Stamp(out, "abc123", "replies.example.com")

	assert.Equal(t, "tracking-abc123@replies.example.com", out.ReplyTo.Address)
	assert.Equal(t, "Intro to Riposte [abc123]", out.Subject)
	assert.Contains(t, out.References, "<tracking-abc123@replies.example.com>")
}

func TestStamp_Idempotent(t *testing.T) {
	out := &email.OutboundEmail{Subject: "Intro"}
	Stamp(out, "abc123", "replies.example.com")
	Stamp(out, "abc123", "replies.example.com")

	assert.Equal(t, 1, strings.Count(out.Subject, "[abc123]"))
	assert.Len(t, out.References, 1)
}

func TestStamp_RoundTrip(t *testing.T) {
	token := Generate()
	out := &email.OutboundEmail{Subject: "Checking in"}
	Stamp(out, token, "replies.example.com")

	// A reply that keeps only the References chain still correlates.
	viaReferences := &email.InboundEmail{References: strings.Join(out.References, " ")}
	got, ok := Extract(viaReferences)
	assert.True(t, ok)
	assert.Equal(t, token, got)

	// So does one that keeps only the subject tag.
	viaSubject := &email.InboundEmail{Subject: "Re: " + out.Subject}
	got, ok = Extract(viaSubject)
	assert.True(t, ok)
	assert.Equal(t, token, got)

	// And one addressed straight back to the alias.
	viaAlias := &email.InboundEmail{To: []email.Address{{Address: out.ReplyTo.Address}}}
	got, ok = Extract(viaAlias)
	assert.True(t, ok)
	assert.Equal(t, token, got)
}
