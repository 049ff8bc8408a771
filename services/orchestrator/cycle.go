package orchestrator

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/warmup/internal/enum"
	"github.com/customeros/warmup/internal/models"
	"github.com/customeros/warmup/internal/tracing"
	"github.com/customeros/warmup/internal/utils"
	"github.com/customeros/warmup/interfaces"
)

type leadOutcomeKind int

const (
	outcomeAdvance leadOutcomeKind = iota
	outcomeSkip
	outcomePaused
	outcomeStopped
	outcomeFatal
)

type leadOutcome struct {
	kind      leadOutcomeKind
	nextIndex int
	err       error
}

type messageOutcomeKind int

const (
	messageMatched messageOutcomeKind = iota
	messageTimedOut
	messagePaused
	messageStopped
)

// runLead drives one full pass of the per-lead cycle (spec.md §4.4.2) for
// the lead at index: compose, send, arm the lead-side subscription, wait
// for the outbound to arrive in the lead's mailbox, human-delay, compose and send the reply, arm the
// domain-side subscription, and wait for the domain to observe it.
func (o *Orchestrator) runLead(ctx context.Context, index int) leadOutcome {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Orchestrator.runLead")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomainAccount(span, o.domainAccount.ID)
	tracing.TagSession(span, o.session.ID)
	span.LogKV("leadIndex", index)

	lead := o.leads[index]

	// Steps 1-3: compose, send, persist.
	subject, body, err := o.textgen.Outbound(ctx, o.domainAccount.DisplayName, lead.DisplayName, o.domainAccount.Address)
	if err != nil {
		tracing.TraceErr(span, err)
		return leadOutcome{kind: outcomeFatal, err: err}
	}

	sendResult, err := o.sender.Send(ctx, domainCredentials(o.domainAccount), interfaces.OutboundMessage{
		To:      lead.Address,
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return leadOutcome{kind: outcomeFatal, err: err}
	}

	if err := o.appendMailLog(ctx, enum.MailSent, index, o.domainAccount.Address, lead.Address, subject, body, sendResult.MessageID, ""); err != nil {
		tracing.TraceErr(span, err)
		return leadOutcome{kind: outcomeFatal, err: err}
	}

	updated, err := o.sessionRepo.UpdateStatus(ctx, o.session.ID, enum.SessionWaitingReply, interfaces.SessionUpdateFields{
		LastMessageID: &sendResult.MessageID,
	})
	if err == nil {
		o.session = updated
	}

	// Step 4-5: arm lead-side IMAP, wait for the outbound to reach the lead.
	incoming, outcome := o.waitForMessage(ctx, leadCredentials(lead), o.domainAccount.Address, o.waitBudget())
	if outcome != messageMatched {
		return o.handleWaitOutcome(ctx, outcome, index)
	}

	if err := o.appendMailLog(ctx, enum.MailReceived, index, incoming.From, o.domainAccount.Address, incoming.Subject, incoming.Body, incoming.MessageID, incoming.InReplyTo); err != nil {
		tracing.TraceErr(span, err)
		return leadOutcome{kind: outcomeFatal, err: err}
	}

	if result := o.sleep(ctx, o.humanDelay()); result != waitCompleted {
		return outcomeFromWait(result, index)
	}

	// Step 6-8: compose reply, send, persist.
	replySubject, replyBody, err := o.textgen.Reply(ctx, lead.DisplayName, o.domainAccount.DisplayName, incoming.Subject, incoming.Body)
	if err != nil {
		tracing.TraceErr(span, err)
		return leadOutcome{kind: outcomeFatal, err: err}
	}

	replyResult, err := o.sender.Send(ctx, leadCredentials(lead), interfaces.OutboundMessage{
		To:        o.domainAccount.Address,
		Subject:   replySubject,
		Body:      replyBody,
		InReplyTo: incoming.MessageID,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return leadOutcome{kind: outcomeFatal, err: err}
	}

	if err := o.appendMailLog(ctx, enum.MailReplied, index, lead.Address, o.domainAccount.Address, replySubject, replyBody, replyResult.MessageID, incoming.MessageID); err != nil {
		tracing.TraceErr(span, err)
		return leadOutcome{kind: outcomeFatal, err: err}
	}

	// Step 9-10: arm domain-side IMAP, wait for the domain to observe the reply.
	final, outcome := o.waitForMessage(ctx, domainCredentials(o.domainAccount), lead.Address, o.waitBudget())
	if outcome != messageMatched {
		return o.handleWaitOutcome(ctx, outcome, index)
	}

	if err := o.appendMailLog(ctx, enum.MailReceived, index, final.From, lead.Address, final.Subject, final.Body, final.MessageID, final.InReplyTo); err != nil {
		tracing.TraceErr(span, err)
		return leadOutcome{kind: outcomeFatal, err: err}
	}

	nextIndex := index + 1
	updated, err = o.sessionRepo.UpdateStatus(ctx, o.session.ID, enum.SessionSending, interfaces.SessionUpdateFields{
		CurrentLeadIndex: &nextIndex,
	})
	if err == nil {
		o.session = updated
	}

	return leadOutcome{kind: outcomeAdvance, nextIndex: nextIndex}
}

// waitForMessage arms a subscription and blocks until it delivers a
// matching message, times out, or a control command / context
// cancellation preempts the wait.
func (o *Orchestrator) waitForMessage(ctx context.Context, mailbox interfaces.MailboxCredentials, fromFilter string, waitBudget time.Duration) (*interfaces.ParsedMessage, messageOutcomeKind) {
	sub, err := o.subscriber.Subscribe(ctx, mailbox, fromFilter, waitBudget)
	if err != nil {
		o.log.Warnf("failed to subscribe on %s: %v", mailbox.Address, err)
		return nil, messageTimedOut
	}
	o.registerSub(sub)

	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				o.clearSub()
				return nil, messageTimedOut
			}
			sub.Unsubscribe()
			o.clearSub()
			if ev.Kind == interfaces.EventNewMessage {
				return ev.Message, messageMatched
			}
			return nil, messageTimedOut

		case cmd := <-o.control:
			sub.Unsubscribe()
			o.clearSub()
			if cmd == cmdPause {
				return nil, messagePaused
			}
			return nil, messageStopped

		case <-ctx.Done():
			sub.Unsubscribe()
			o.clearSub()
			return nil, messageStopped
		}
	}
}

func (o *Orchestrator) handleWaitOutcome(ctx context.Context, outcome messageOutcomeKind, index int) leadOutcome {
	switch outcome {
	case messageTimedOut:
		o.log.Warnf("subscription timeout for domain account %s, lead index %d: skipping", o.domainAccount.ID, index)
		nextIndex := index + 1
		updated, err := o.sessionRepo.UpdateStatus(ctx, o.session.ID, enum.SessionSending, interfaces.SessionUpdateFields{
			CurrentLeadIndex: &nextIndex,
		})
		if err == nil {
			o.session = updated
		}
		return leadOutcome{kind: outcomeSkip, nextIndex: nextIndex}
	case messagePaused:
		return leadOutcome{kind: outcomePaused}
	default:
		return leadOutcome{kind: outcomeStopped}
	}
}

func outcomeFromWait(result waitResult, index int) leadOutcome {
	if result == waitPaused {
		return leadOutcome{kind: outcomePaused}
	}
	return leadOutcome{kind: outcomeStopped}
}

func (o *Orchestrator) waitBudget() time.Duration {
	return time.Duration(o.cfg.ImapWaitTimeoutMs) * time.Millisecond
}

func (o *Orchestrator) humanDelay() time.Duration {
	return randomDuration(o.cfg.ReplyHumanDelayMinMs, o.cfg.ReplyHumanDelayMaxMs)
}

func (o *Orchestrator) appendMailLog(ctx context.Context, direction enum.MailDirection, leadIndex int, from, to, subject, body, messageID, inReplyTo string) error {
	sessionID := o.session.ID
	entry := &models.MailLogEntry{
		SessionID: &sessionID,
		From:      from,
		To:        to,
		Subject:   subject,
		Body:      body,
		MessageID: utils.NormalizeMessageID(messageID),
		InReplyTo: utils.NormalizeMessageID(inReplyTo),
		Direction: direction,
		LeadIndex: leadIndex,
	}
	return o.mailLogRepo.Append(ctx, entry)
}
