package imap

import (
	"fmt"

	"github.com/emersion/go-imap"
	"github.com/jhillyerd/enmime"

	"github.com/customeros/warmup/interfaces"
	"github.com/customeros/warmup/internal/utils"
)

// parseMessage converts a fetched IMAP message into the fields the
// orchestrator needs. Parse failures are the caller's to log and drop;
// this function only returns an error, it never panics on malformed mail.
func parseMessage(msg *imap.Message, section *imap.BodySectionName) (*interfaces.ParsedMessage, error) {
	literal := msg.GetBody(section)
	if literal == nil {
		return nil, fmt.Errorf("message %d has no body section", msg.SeqNum)
	}

	envelope, err := enmime.ReadEnvelope(literal)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message %d: %w", msg.SeqNum, err)
	}

	parsed := &interfaces.ParsedMessage{
		MessageID: utils.NormalizeMessageID(envelope.GetHeader("Message-ID")),
		From:      envelope.GetHeader("From"),
		To:        envelope.GetHeader("To"),
		Subject:   envelope.GetHeader("Subject"),
		Body:      envelope.Text,
		InReplyTo: utils.NormalizeMessageID(envelope.GetHeader("In-Reply-To")),
		Date:      envelope.GetHeader("Date"),
	}

	return parsed, nil
}

// matchesFrom applies the spec's normalised from-address equality check:
// case-insensitive, whitespace/angle-bracket-stripped comparison of the
// bare address.
func matchesFrom(fromHeader, wantAddress string) bool {
	return normalizeAddress(fromHeader) == normalizeAddress(wantAddress)
}
