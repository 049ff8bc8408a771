package textgen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticTemplateClient_Outbound(t *testing.T) {
	client := NewStaticTemplateClient()

	for i := 0; i < 20; i++ {
		subject, body, err := client.Outbound(context.Background(), "Acme", "Bob", "acme@example.com")
		assert.NoError(t, err)
		assert.NotEmpty(t, subject)
		assert.NotEmpty(t, body)
		assert.NotContains(t, subject, "%!")
		assert.NotContains(t, body, "%!")
		assert.True(t, strings.Contains(body, "Bob") || strings.Contains(body, "Acme"))
	}
}

func TestStaticTemplateClient_Reply(t *testing.T) {
	client := NewStaticTemplateClient()

	subject, body, err := client.Reply(context.Background(), "Bob", "Acme", "Quick question, Bob", "original body")
	assert.NoError(t, err)
	assert.Equal(t, "Re: Quick question, Bob", subject)
	assert.NotEmpty(t, body)
	assert.NotContains(t, body, "%!")
}

func TestFormatTemplate_PlainTemplateUnchanged(t *testing.T) {
	assert.Equal(t, "Following up", formatTemplate("Following up", "Bob"))
}

func TestFormatTemplate_SubstitutesVerb(t *testing.T) {
	assert.Equal(t, "Hey Bob", formatTemplate("Hey %s", "Bob"))
}
