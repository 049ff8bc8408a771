package utils

import (
	"regexp"
	"strings"
)

var subjectPrefixRegex = regexp.MustCompile(`(?i)^(Re|Fwd|Fw)(\[\d+\])?:\s*`)

// NormalizeEmailSubject strips Re:/Fwd: prefixes so reply subjects can be
// compared against the original outbound subject.
func NormalizeEmailSubject(subject string) string {
	subject = strings.TrimSpace(subject)
	for subjectPrefixRegex.MatchString(subject) {
		subject = subjectPrefixRegex.ReplaceAllString(subject, "")
		subject = strings.TrimSpace(subject)
	}
	return subject
}

func NormalizeMessageID(messageID string) string {
	messageID = strings.TrimSpace(messageID)
	messageID = strings.TrimPrefix(messageID, "<")
	messageID = strings.TrimSuffix(messageID, ">")
	return messageID
}
