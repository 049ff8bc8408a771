package imap

import (
	"context"
	"fmt"
	"log"
	"net/textproto"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"

	"github.com/customeros/warmup/internal/config"
	"github.com/customeros/warmup/internal/tracing"
	"github.com/customeros/warmup/interfaces"
)

const (
	immediateScanDelay = 2 * time.Second
	idleLogoutTimeout  = 24 * time.Hour
)

type subscriber struct {
	pollInterval         time.Duration
	maxReconnectAttempts int
	reconnectBackoffUnit time.Duration
}

func NewSubscriber(cfg *config.WarmupConfig) interfaces.Subscriber {
	return &subscriber{
		pollInterval:         time.Duration(cfg.ImapPollIntervalMs) * time.Millisecond,
		maxReconnectAttempts: cfg.MaxReconnectAttempts,
		reconnectBackoffUnit: time.Duration(cfg.ReconnectBackoffMs) * time.Millisecond,
	}
}

func (s *subscriber) Subscribe(ctx context.Context, mailbox interfaces.MailboxCredentials, fromFilter string, waitBudget time.Duration) (interfaces.Subscription, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "imap.subscriber.Subscribe")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	c, err := connectMailbox(mailbox)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if _, err := c.Select("INBOX", false); err != nil {
		disconnectClient(c)
		tracing.TraceErr(span, err)
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}

	sub := &subscriptionHandle{
		events: make(chan interfaces.SubscriptionEvent, 8),
		done:   make(chan struct{}),
	}

	go sub.run(ctx, s, mailbox, fromFilter, waitBudget, c)

	return sub, nil
}

type subscriptionHandle struct {
	events chan interfaces.SubscriptionEvent
	done   chan struct{}
	closed bool
}

func (h *subscriptionHandle) Events() <-chan interfaces.SubscriptionEvent {
	return h.events
}

func (h *subscriptionHandle) Unsubscribe() {
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
}

func (h *subscriptionHandle) run(ctx context.Context, s *subscriber, mailbox interfaces.MailboxCredentials, fromFilter string, waitBudget time.Duration, c *client.Client) {
	defer func() { disconnectClient(c) }()

	deadline := time.After(waitBudget)
	poll := time.NewTicker(s.pollInterval)
	defer poll.Stop()
	immediate := time.After(immediateScanDelay)

	updates := make(chan client.Update, 32)
	c.Updates = updates

	idleStop := make(chan struct{})
	idleDone := make(chan error, 1)
	go func() {
		idleDone <- c.Idle(idleStop, &client.IdleOptions{LogoutTimeout: idleLogoutTimeout, PollInterval: s.pollInterval})
	}()

	attempt := 0

	for {
		select {
		case <-h.done:
			close(idleStop)
			return

		case <-ctx.Done():
			close(idleStop)
			return

		case <-deadline:
			close(idleStop)
			h.emit(interfaces.SubscriptionEvent{Kind: interfaces.EventTimeout})
			return

		case <-immediate:
			h.scanAndEmit(c, fromFilter)

		case <-poll.C:
			h.scanAndEmit(c, fromFilter)

		case _, ok := <-updates:
			if !ok {
				return
			}
			h.scanAndEmit(c, fromFilter)

		case err := <-idleDone:
			if h.closed {
				return
			}
			attempt++
			if attempt > s.maxReconnectAttempts {
				h.emit(interfaces.SubscriptionEvent{Kind: interfaces.EventTimeout})
				return
			}
			log.Printf("imap subscription for %s: idle ended (%v), reconnecting (attempt %d/%d)",
				mailbox.Address, err, attempt, s.maxReconnectAttempts)

			time.Sleep(time.Duration(attempt) * s.reconnectBackoffUnit)

			disconnectClient(c)
			newClient, connErr := connectMailbox(mailbox)
			if connErr != nil {
				idleDone <- connErr
				continue
			}
			if _, selErr := newClient.Select("INBOX", false); selErr != nil {
				disconnectClient(newClient)
				idleDone <- selErr
				continue
			}
			c = newClient
			updates = make(chan client.Update, 32)
			c.Updates = updates
			idleStop = make(chan struct{})
			go func() {
				idleDone <- c.Idle(idleStop, &client.IdleOptions{LogoutTimeout: idleLogoutTimeout, PollInterval: s.pollInterval})
			}()
		}

		if h.closed {
			return
		}
	}
}

// scanAndEmit runs the UNSEEN+FROM search, fetches and parses any
// matching message, marks it seen, and emits a NewMessage event. Parse
// failures are logged and drop only that message.
func (h *subscriptionHandle) scanAndEmit(c *client.Client, fromFilter string) {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if fromFilter != "" {
		criteria.Header = textproto.MIMEHeader{}
		criteria.Header.Add("From", fromFilter)
	}

	seqNums, err := c.Search(criteria)
	if err != nil || len(seqNums) == 0 {
		return
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNums...)

	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, len(seqNums))
	fetchDone := make(chan error, 1)
	go func() {
		fetchDone <- c.Fetch(seqset, []imap.FetchItem{section.FetchItem()}, messages)
	}()

	for msg := range messages {
		parsed, parseErr := parseMessage(msg, section)
		if parseErr != nil {
			log.Printf("imap subscription: dropping unparseable message %d: %v", msg.SeqNum, parseErr)
			continue
		}
		if fromFilter != "" && !matchesFrom(parsed.From, fromFilter) {
			continue
		}

		markSeen(c, msg.SeqNum)
		h.emit(interfaces.SubscriptionEvent{Kind: interfaces.EventNewMessage, Message: parsed})
	}
	<-fetchDone
}

func markSeen(c *client.Client, seqNum uint32) {
	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNum)
	item := imap.FormatFlagsOp(imap.AddFlags, true)
	_ = c.Store(seqset, item, []interface{}{imap.SeenFlag}, nil)
}

func (h *subscriptionHandle) emit(event interfaces.SubscriptionEvent) {
	if h.closed {
		return
	}
	select {
	case h.events <- event:
	case <-h.done:
	}
}
