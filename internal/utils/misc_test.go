package utils

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateMessageID(t *testing.T) {
	id := GenerateMessageID("example.com")
	assert.True(t, strings.HasPrefix(id, "<"))
	assert.True(t, strings.HasSuffix(id, "@example.com>"))
}

func TestGenerateNanoIDWithPrefix(t *testing.T) {
	id := GenerateNanoIDWithPrefix("wses", 16)
	assert.True(t, strings.HasPrefix(id, "wses_"))
	assert.Len(t, strings.TrimPrefix(id, "wses_"), 16)
}

func TestUniqueEmails(t *testing.T) {
	got := UniqueEmails([]string{"a@b.com", "a@b.com", "c@d.com"})
	assert.Equal(t, []string{"a@b.com", "c@d.com"}, got)
}

func TestNormalizeEmailSubject(t *testing.T) {
	cases := map[string]string{
		"Re: hello":        "hello",
		"RE: Re: hello":    "hello",
		"Fwd: hello":       "hello",
		"Fw[2]: hello":     "hello",
		"hello":            "hello",
		"  Re:  hello  ":   "hello",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeEmailSubject(in))
	}
}

func TestNormalizeMessageID(t *testing.T) {
	assert.Equal(t, "msg-1@example.com", NormalizeMessageID("<msg-1@example.com>"))
	assert.Equal(t, "msg-1@example.com", NormalizeMessageID("msg-1@example.com"))
	assert.Equal(t, "", NormalizeMessageID(""))
}

func TestIsStringInSlice(t *testing.T) {
	assert.True(t, IsStringInSlice("b", []string{"a", "b", "c"}))
	assert.False(t, IsStringInSlice("z", []string{"a", "b", "c"}))
}

func TestGetOrDefault(t *testing.T) {
	var nilPtr *int
	assert.Equal(t, 5, GetOrDefault(nilPtr, 5))

	v := 10
	assert.Equal(t, 10, GetOrDefault(&v, 5))
}

func TestCustomContext_SetAndGet(t *testing.T) {
	ctx := context.Background()
	ctx = SetDomainAccountIDInContext(ctx, "dacc_1")
	ctx = SetSessionIDInContext(ctx, "wses_1")
	ctx = SetLeadAccountIDInContext(ctx, "lead_1")
	ctx = SetAppSourceInContext(ctx, "warmupd")

	assert.Equal(t, "dacc_1", GetDomainAccountIDFromContext(ctx))
	assert.Equal(t, "wses_1", GetSessionIDFromContext(ctx))
	assert.Equal(t, "lead_1", GetLeadAccountIDFromContext(ctx))
	assert.Equal(t, "warmupd", GetAppSourceFromContext(ctx))
}

func TestGetContext_DefaultsWhenAbsent(t *testing.T) {
	ctx := context.Background()
	cc := GetContext(ctx)
	assert.NotNil(t, cc)
	assert.Empty(t, cc.AppSource)
}
