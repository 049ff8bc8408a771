// Package orchestrator implements the per-domain-account state machine
// (component D): the send→wait-for-delivery→auto-reply→wait-for-reply→
// advance cycle across a domain account's lead roster.
package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/warmup/internal/config"
	"github.com/customeros/warmup/internal/enum"
	"github.com/customeros/warmup/internal/logger"
	"github.com/customeros/warmup/internal/models"
	"github.com/customeros/warmup/internal/tracing"
	"github.com/customeros/warmup/internal/utils"
	"github.com/customeros/warmup/interfaces"
)

type command int

const (
	cmdPause command = iota
	cmdStop
)

// Orchestrator drives one domain account's warm-up cycle. Exactly one
// instance exists per domain account at any moment; the Control Facade
// owns that invariant via its registry.
type Orchestrator struct {
	domainAccount *models.DomainAccount
	leads         []*models.LeadAccount
	session       *models.WarmupSession

	sessionRepo interfaces.SessionRepository
	mailLogRepo interfaces.MailLogRepository
	accountRepo interfaces.DomainAccountRepository
	sender      interfaces.Sender
	subscriber  interfaces.Subscriber
	textgen     interfaces.TextGenerator
	publisher   interfaces.EventPublisher
	log         logger.Logger
	cfg         *config.WarmupConfig

	paused atomic.Bool

	control chan command
	done    chan struct{}

	subMu     sync.Mutex
	activeSub interfaces.Subscription
}

type Deps struct {
	SessionRepo interfaces.SessionRepository
	MailLogRepo interfaces.MailLogRepository
	AccountRepo interfaces.DomainAccountRepository
	Sender      interfaces.Sender
	Subscriber  interfaces.Subscriber
	TextGen     interfaces.TextGenerator
	Publisher   interfaces.EventPublisher
	Logger      logger.Logger
	Config      *config.WarmupConfig
}

func New(domainAccount *models.DomainAccount, leads []*models.LeadAccount, session *models.WarmupSession, deps Deps) *Orchestrator {
	return &Orchestrator{
		domainAccount: domainAccount,
		leads:         leads,
		session:       session,
		sessionRepo:   deps.SessionRepo,
		mailLogRepo:   deps.MailLogRepo,
		accountRepo:   deps.AccountRepo,
		sender:        deps.Sender,
		subscriber:    deps.Subscriber,
		textgen:       deps.TextGen,
		publisher:     deps.Publisher,
		log:           deps.Logger,
		cfg:           deps.Config,
		control:       make(chan command, 1),
		done:          make(chan struct{}),
	}
}

// DomainAccountID reports the domain account this instance owns, used as
// the registry key.
func (o *Orchestrator) DomainAccountID() string {
	return o.domainAccount.ID
}

// CurrentLeadIndex and TotalLeads back the Control Facade's status
// operation without requiring a store round trip for a live instance.
func (o *Orchestrator) CurrentLeadIndex() int {
	return o.session.CurrentLeadIndex
}

func (o *Orchestrator) TotalLeads() int {
	return len(o.leads)
}

func (o *Orchestrator) IsPaused() bool {
	return o.paused.Load()
}

// Run is the sequential task body: straight-line code awaiting a "next
// subscription event or timeout" primitive and a "sleep" primitive, per
// the cycle in spec.md §4.4.2. It returns once the session reaches a
// terminal state or is paused/stopped.
func (o *Orchestrator) Run(ctx context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Orchestrator.Run")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomainAccount(span, o.domainAccount.ID)
	tracing.TagSession(span, o.session.ID)
	tracing.TagComponentOrchestrator(span)

	defer close(o.done)
	defer o.disconnectAll()
	defer func() {
		if r := recover(); r != nil {
			o.log.Errorf("orchestrator for domain account %s panicked: %v", o.domainAccount.ID, r)
			o.failSession(ctx, "internal error")
		}
	}()

	index := o.session.CurrentLeadIndex

	for index < len(o.leads) {
		outcome := o.runLead(ctx, index)

		switch outcome.kind {
		case outcomeAdvance:
			index = outcome.nextIndex
			if index == len(o.leads) {
				o.completeSession(ctx)
				return
			}
			if result := o.sleep(ctx, randomDuration(o.cfg.MinDelayMs, o.cfg.MaxDelayMs)); result != waitCompleted {
				o.finishOnWait(ctx, result)
				return
			}
		case outcomeSkip:
			index = outcome.nextIndex
			if index == len(o.leads) {
				o.completeSession(ctx)
				return
			}
			if result := o.sleep(ctx, time.Duration(o.cfg.SkipDelaySeconds)*time.Second); result != waitCompleted {
				o.finishOnWait(ctx, result)
				return
			}
		case outcomePaused:
			o.pauseSession(ctx)
			return
		case outcomeStopped:
			o.stopSession(ctx)
			return
		case outcomeFatal:
			o.failSession(ctx, outcome.err.Error())
			return
		}
	}

	// index >= len(leads) on entry (appended-leads resume already complete).
	o.completeSession(ctx)
}

// Pause requests the orchestrator stop after its current suspension
// point, disconnect any live subscription, and persist status=paused.
// It blocks until Run has actually exited.
func (o *Orchestrator) Pause() {
	o.paused.Store(true)
	select {
	case o.control <- cmdPause:
	default:
	}
	<-o.done
}

// Stop requests the orchestrator transition to failed with
// error="Manually stopped by user". It blocks until Run has exited.
func (o *Orchestrator) Stop() {
	select {
	case o.control <- cmdStop:
	default:
	}
	<-o.done
}

func (o *Orchestrator) registerSub(sub interfaces.Subscription) {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	o.activeSub = sub
}

func (o *Orchestrator) clearSub() {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	o.activeSub = nil
}

func (o *Orchestrator) disconnectAll() {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	if o.activeSub != nil {
		o.activeSub.Unsubscribe()
		o.activeSub = nil
	}
}

func (o *Orchestrator) completeSession(ctx context.Context) {
	now := utils.NowPtr()
	index := len(o.leads)
	updated, err := o.sessionRepo.UpdateStatus(ctx, o.session.ID, enum.SessionCompleted, interfaces.SessionUpdateFields{
		CurrentLeadIndex: &index,
		CompletedAt:      now,
	})
	if err == nil {
		o.session = updated
	}
	_ = o.accountRepo.UpdateStatus(ctx, o.domainAccount.ID, enum.AccountIdle)
	o.publishLifecycle(ctx, interfaces.EventWarmupCompleted, "")
}

func (o *Orchestrator) pauseSession(ctx context.Context) {
	updated, err := o.sessionRepo.UpdateStatus(ctx, o.session.ID, enum.SessionPaused, interfaces.SessionUpdateFields{})
	if err == nil {
		o.session = updated
	}
	_ = o.accountRepo.UpdateStatus(ctx, o.domainAccount.ID, enum.AccountPaused)
	o.publishLifecycle(ctx, interfaces.EventWarmupPaused, "")
}

func (o *Orchestrator) stopSession(ctx context.Context) {
	o.failSession(ctx, "Manually stopped by user")
	_ = o.accountRepo.UpdateStatus(ctx, o.domainAccount.ID, enum.AccountIdle)
}

func (o *Orchestrator) failSession(ctx context.Context, message string) {
	updated, err := o.sessionRepo.UpdateStatus(ctx, o.session.ID, enum.SessionFailed, interfaces.SessionUpdateFields{
		ErrorMessage: &message,
	})
	if err == nil {
		o.session = updated
	}
	_ = o.accountRepo.UpdateStatus(ctx, o.domainAccount.ID, enum.AccountIdle)
	o.publishLifecycle(ctx, interfaces.EventWarmupFailed, message)
}

func (o *Orchestrator) publishLifecycle(ctx context.Context, eventType, detail string) {
	if o.publisher == nil {
		return
	}
	err := o.publisher.Publish(ctx, interfaces.LifecycleEvent{
		EventType:       eventType,
		DomainAccountID: o.domainAccount.ID,
		SessionID:       o.session.ID,
		Timestamp:       utils.Now().Format(time.RFC3339),
		Detail:          detail,
	})
	if err != nil {
		o.log.Warnf("failed to publish lifecycle event %s for domain account %s: %v", eventType, o.domainAccount.ID, err)
	}
}
