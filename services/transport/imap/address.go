package imap

import (
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
)

// normalizeAddress strips a display name and angle brackets from a
// From/To header value and lowercases the remaining bare address, so
// "Lead One <Lead@Example.com>" compares equal to "lead@example.com".
func normalizeAddress(header string) string {
	header = strings.TrimSpace(header)

	if idx := strings.LastIndex(header, "<"); idx != -1 {
		end := strings.LastIndex(header, ">")
		if end > idx {
			header = header[idx+1 : end]
		}
	}

	header = strings.TrimSpace(header)

	validation := mailvalidate.ValidateEmailSyntax(header)
	if validation.IsValid {
		return strings.ToLower(validation.User + "@" + validation.Domain)
	}

	return strings.ToLower(header)
}
