package smtp

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/customeros/warmup/interfaces"
)

func TestClient_Validate(t *testing.T) {
	c := NewClient()

	cases := []struct {
		name string
		from interfaces.MailboxCredentials
		msg  interfaces.OutboundMessage
		want string
	}{
		{"missing from", interfaces.MailboxCredentials{}, interfaces.OutboundMessage{To: "a@b.com", Subject: "s", Body: "b"}, "from address is required"},
		{"missing to", interfaces.MailboxCredentials{Address: "a@b.com"}, interfaces.OutboundMessage{Subject: "s", Body: "b"}, "recipient address is required"},
		{"missing subject", interfaces.MailboxCredentials{Address: "a@b.com"}, interfaces.OutboundMessage{To: "c@d.com", Body: "b"}, "subject is required"},
		{"missing body", interfaces.MailboxCredentials{Address: "a@b.com"}, interfaces.OutboundMessage{To: "c@d.com", Subject: "s"}, "body is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := c.validate(tc.from, tc.msg)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestClient_Send_InvalidFromAddress(t *testing.T) {
	c := NewClient()
	_, err := c.Send(context.Background(), interfaces.MailboxCredentials{Address: "not-an-email"}, interfaces.OutboundMessage{
		To: "bob@example.com", Subject: "hi", Body: "hello",
	})
	assert.Error(t, err)
}

func TestClient_BuildMessage_IncludesReplyHeaders(t *testing.T) {
	c := NewClient()
	buf := c.buildMessage(
		interfaces.MailboxCredentials{Address: "acme@example.com", DisplayName: "Acme"},
		interfaces.OutboundMessage{To: "bob@example.com", Subject: "Re: hi", Body: "thanks", InReplyTo: "<msg-1@example.com>"},
		"<msg-2@example.com>",
	)

	out := buf.String()
	assert.True(t, strings.Contains(out, "In-Reply-To: <msg-1@example.com>"))
	assert.True(t, strings.Contains(out, "References: <msg-1@example.com>"))
	assert.True(t, strings.Contains(out, "Subject: Re: hi"))
	assert.True(t, strings.Contains(out, "thanks"))
}

func TestClient_BuildMessage_NoInReplyToWhenAbsent(t *testing.T) {
	c := NewClient()
	buf := c.buildMessage(
		interfaces.MailboxCredentials{Address: "acme@example.com", DisplayName: "Acme"},
		interfaces.OutboundMessage{To: "bob@example.com", Subject: "hi", Body: "hello"},
		"<msg-1@example.com>",
	)

	assert.False(t, strings.Contains(buf.String(), "In-Reply-To"))
}
