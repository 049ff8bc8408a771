package interfaces

import "context"

// TextGenerator produces the subject/body copy for an outbound warm-up
// message or a reply, varied on every call so a thread never looks
// templated to a spam filter.
type TextGenerator interface {
	Outbound(ctx context.Context, senderName, recipientName, senderAddress string) (subject, body string, err error)
	Reply(ctx context.Context, replierName, originalSenderName, originalSubject, originalBody string) (subject, body string, err error)
}
