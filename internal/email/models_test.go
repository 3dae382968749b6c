package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress_String(t *testing.T) {
	assert.Equal(t, "Dana Lee <dana@example.com>", Address{Name: "Dana Lee", Address: "dana@example.com"}.String())
	assert.Equal(t, "dana@example.com", Address{Address: "dana@example.com"}.String())
}

func TestAddress_LocalPart(t *testing.T) {
	assert.Equal(t, "tracking-abc123", Address{Address: "tracking-abc123@reply.acme.test"}.LocalPart())
	assert.Equal(t, "nodomain", Address{Address: "nodomain"}.LocalPart())
}

func TestInboundEmail_SenderName_FallsBackToLocalPart(t *testing.T) {
	named := &InboundEmail{From: Address{Name: "Dana Lee", Address: "dana@example.com"}}
	assert.Equal(t, "Dana Lee", named.SenderName())

	bare := &InboundEmail{From: Address{Address: "dana.lee@example.com"}}
	assert.Equal(t, "dana.lee", bare.SenderName())
}

func TestInboundEmail_Body_PrefersText(t *testing.T) {
	both := &InboundEmail{TextBody: "plain", HTMLBody: "<p>html</p>"}
	assert.Equal(t, "plain", both.Body())

	htmlOnly := &InboundEmail{HTMLBody: "<p>html</p>"}
	assert.Equal(t, "<p>html</p>", htmlOnly.Body())
}

func TestInboundEmail_Header_CaseInsensitive(t *testing.T) {
	e := &InboundEmail{Headers: map[string]string{"Auto-Submitted": "auto-generated"}}

	assert.Equal(t, "auto-generated", e.Header("auto-submitted"))
	assert.Empty(t, e.Header("Precedence"))
}

func TestInboundEmail_Reply_ThreadsOntoOriginal(t *testing.T) {
	in := &InboundEmail{
		MessageID:  "<m2@example.com>",
		From:       Address{Name: "Dana Lee", Address: "dana@example.com"},
		Subject:    "intro",
		References: "<m0@acme.test> <m1@example.com>",
	}

	out := in.Reply(Address{Name: "Riposte", Address: "agent@acme.test"}, "Thanks Dana.")

	require.Len(t, out.To, 1)
	assert.Equal(t, "dana@example.com", out.To[0].Address)
	assert.Equal(t, "Re: intro", out.Subject)
	assert.Equal(t, "Thanks Dana.", out.TextBody)
	assert.Equal(t, "<m2@example.com>", out.InReplyTo)
	assert.Equal(t, []string{"<m0@acme.test>", "<m1@example.com>", "<m2@example.com>"}, out.References)
}

func TestInboundEmail_Reply_KeepsExistingRePrefix(t *testing.T) {
	in := &InboundEmail{MessageID: "<m1@x>", From: Address{Address: "dana@example.com"}, Subject: "RE: intro"}

	out := in.Reply(Address{Address: "agent@acme.test"}, "body")

	assert.Equal(t, "RE: intro", out.Subject)
}

func TestInboundEmail_Reply_HonorsReplyTo(t *testing.T) {
	in := &InboundEmail{
		MessageID: "<m1@x>",
		From:      Address{Address: "bulk-relay@example.com"},
		ReplyTo:   &Address{Name: "Dana Lee", Address: "dana@example.com"},
		Subject:   "intro",
	}

	out := in.Reply(Address{Address: "agent@acme.test"}, "body")

	require.Len(t, out.To, 1)
	assert.Equal(t, "dana@example.com", out.To[0].Address)
}
