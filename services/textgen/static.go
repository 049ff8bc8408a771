package textgen

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/customeros/warmup/interfaces"
)

var outboundSubjects = []string{
	"Quick question, %s",
	"Following up",
	"Hey %s",
	"Checking in",
	"Touching base",
}

var outboundBodies = []string{
	"Hi %s,\n\nHope you're doing well. Wanted to reach out and say hello.\n\nBest,\n%s",
	"Hi %s,\n\nJust checking in, no particular reason. Let me know how things are going.\n\n%s",
	"Hey %s,\n\nIt's been a while, thought I'd drop a quick note.\n\nCheers,\n%s",
}

var replySubjectPrefix = "Re: "

var replyBodies = []string{
	"Hi %s,\n\nThanks for reaching out! Good to hear from you.\n\nBest,\n%s",
	"Hey %s,\n\nAppreciate the note, all well on my end.\n\n%s",
	"Hi %s,\n\nThanks for the message, talk soon.\n\nCheers,\n%s",
}

// StaticTemplateClient generates warm-up copy from a small set of
// templates with no network dependency, so the orchestrator can be
// exercised without a live text generation endpoint. Each call picks a
// template at random; it is stateless.
type StaticTemplateClient struct{}

func NewStaticTemplateClient() interfaces.TextGenerator {
	return &StaticTemplateClient{}
}

func (s *StaticTemplateClient) Outbound(_ context.Context, senderName, recipientName, _ string) (string, string, error) {
	subject := formatTemplate(pick(outboundSubjects), recipientName)
	body := fmt.Sprintf(pick(outboundBodies), recipientName, senderName)
	return subject, body, nil
}

func (s *StaticTemplateClient) Reply(_ context.Context, replierName, originalSenderName, originalSubject, _ string) (string, string, error) {
	subject := replySubjectPrefix + originalSubject
	body := fmt.Sprintf(pick(replyBodies), originalSenderName, replierName)
	return subject, body, nil
}

func pick(templates []string) string {
	return templates[rand.Intn(len(templates))]
}

// formatTemplate substitutes recipientName only into templates that
// actually carry a %s verb; some subject templates are plain strings.
func formatTemplate(template, recipientName string) string {
	if !strings.Contains(template, "%s") {
		return template
	}
	return fmt.Sprintf(template, recipientName)
}
