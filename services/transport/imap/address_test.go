package imap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"display name and brackets", "Lead One <Lead@Example.com>", "lead@example.com"},
		{"bare address", "Lead@Example.COM", "lead@example.com"},
		{"already lowercase", "lead@example.com", "lead@example.com"},
		{"extra whitespace", "  <lead@example.com>  ", "lead@example.com"},
		{"quoted display name", `"Lead, One" <lead@example.com>`, "lead@example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeAddress(tc.header))
		})
	}
}

func TestMatchesFrom(t *testing.T) {
	assert.True(t, matchesFrom("Lead One <Lead@Example.com>", "lead@example.com"))
	assert.True(t, matchesFrom("lead@example.com", "Lead@Example.COM"))
	assert.False(t, matchesFrom("other@example.com", "lead@example.com"))
}
