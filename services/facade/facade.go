// Package facade implements the Control Facade (component E): the
// start/pause/resume/stop/status operations exposed to the outside,
// reconciling in-memory Orchestrator instances with the Session Store.
package facade

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/warmup/internal/config"
	"github.com/customeros/warmup/internal/enum"
	warmuperrors "github.com/customeros/warmup/internal/errors"
	"github.com/customeros/warmup/internal/logger"
	"github.com/customeros/warmup/internal/models"
	"github.com/customeros/warmup/internal/tracing"
	"github.com/customeros/warmup/internal/utils"
	"github.com/customeros/warmup/interfaces"
	"github.com/customeros/warmup/services/orchestrator"
)

type liveEntry struct {
	orch *orchestrator.Orchestrator
}

// Facade is the single entry point external callers use; it owns the
// registry of live orchestrator instances, enforcing the "exactly one
// orchestrator per domain account" invariant.
type Facade struct {
	mu   sync.Mutex
	live map[string]*liveEntry

	sessionRepo interfaces.SessionRepository
	mailLogRepo interfaces.MailLogRepository
	accountRepo interfaces.DomainAccountRepository
	leadRepo    interfaces.LeadAccountRepository
	sender      interfaces.Sender
	subscriber  interfaces.Subscriber
	textgen     interfaces.TextGenerator
	publisher   interfaces.EventPublisher
	log         logger.Logger
	cfg         *config.WarmupConfig
}

type Deps struct {
	SessionRepo interfaces.SessionRepository
	MailLogRepo interfaces.MailLogRepository
	AccountRepo interfaces.DomainAccountRepository
	LeadRepo    interfaces.LeadAccountRepository
	Sender      interfaces.Sender
	Subscriber  interfaces.Subscriber
	TextGen     interfaces.TextGenerator
	Publisher   interfaces.EventPublisher
	Logger      logger.Logger
	Config      *config.WarmupConfig
}

func New(deps Deps) *Facade {
	return &Facade{
		live:        make(map[string]*liveEntry),
		sessionRepo: deps.SessionRepo,
		mailLogRepo: deps.MailLogRepo,
		accountRepo: deps.AccountRepo,
		leadRepo:    deps.LeadRepo,
		sender:      deps.Sender,
		subscriber:  deps.Subscriber,
		textgen:     deps.TextGen,
		publisher:   deps.Publisher,
		log:         deps.Logger,
		cfg:         deps.Config,
	}
}

// ActiveStatus mirrors a live orchestrator's in-memory progress.
type ActiveStatus struct {
	CurrentLeadIndex int
	TotalLeads       int
	IsPaused         bool
}

// Status is the Control Facade's status operation result.
type Status struct {
	Active         *ActiveStatus
	Session        *models.WarmupSession
	CompletedToday bool
}

// Start resolves the initial session state for a domain account per
// spec.md §4.5 and, on success, launches the orchestrator asynchronously.
func (f *Facade) Start(ctx context.Context, domainAccountID string) (*models.WarmupSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Facade.Start")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomainAccount(span, domainAccountID)

	f.mu.Lock()
	if _, exists := f.live[domainAccountID]; exists {
		f.mu.Unlock()
		return nil, warmuperrors.ErrAlreadyRegistered
	}
	// Reserve the slot before releasing the lock so a racing concurrent
	// Start sees it immediately (spec.md §8 scenario 6).
	f.live[domainAccountID] = &liveEntry{}
	f.mu.Unlock()

	session, domainAccount, leads, err := f.resolveStart(ctx, domainAccountID)
	if err != nil {
		f.mu.Lock()
		delete(f.live, domainAccountID)
		f.mu.Unlock()
		tracing.TraceErr(span, err)
		return nil, err
	}

	if err := f.accountRepo.UpdateStatus(ctx, domainAccountID, enum.AccountRunning); err != nil {
		f.mu.Lock()
		delete(f.live, domainAccountID)
		f.mu.Unlock()
		tracing.TraceErr(span, err)
		return nil, err
	}

	orch := orchestrator.New(domainAccount, leads, session, orchestrator.Deps{
		SessionRepo: f.sessionRepo,
		MailLogRepo: f.mailLogRepo,
		AccountRepo: f.accountRepo,
		Sender:      f.sender,
		Subscriber:  f.subscriber,
		TextGen:     f.textgen,
		Publisher:   f.publisher,
		Logger:      f.log,
		Config:      f.cfg,
	})

	f.mu.Lock()
	f.live[domainAccountID] = &liveEntry{orch: orch}
	f.mu.Unlock()

	if f.publisher != nil {
		_ = f.publisher.Publish(ctx, interfaces.LifecycleEvent{
			EventType:       interfaces.EventWarmupStarted,
			DomainAccountID: domainAccountID,
			SessionID:       session.ID,
			Timestamp:       utils.Now().Format(time.RFC3339),
		})
	}

	runCtx := context.Background()
	go func() {
		defer tracing.RecoverAndLogToJaeger(f.log)
		orch.Run(runCtx)
		f.deregisterIfCurrent(domainAccountID, orch)
	}()

	return session, nil
}

// resolveStart implements the branch logic of spec.md §4.5 start: (a)
// completed-today-with-appended-leads resume, (b) completed-today reject,
// (c) paused active-today resume, (d) other non-terminal active-today
// reject, (e) none -> create-or-reset.
func (f *Facade) resolveStart(ctx context.Context, domainAccountID string) (*models.WarmupSession, *models.DomainAccount, []*models.LeadAccount, error) {
	domainAccount, err := f.accountRepo.GetByID(ctx, domainAccountID)
	if err != nil {
		return nil, nil, nil, err
	}
	if domainAccount == nil {
		return nil, nil, nil, warmuperrors.ErrAccountNotFound
	}

	leads, err := f.leadRepo.ListByDomainAccount(ctx, domainAccountID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(leads) == 0 {
		return nil, nil, nil, warmuperrors.ErrNoLeadAccounts
	}

	completedToday, err := f.sessionRepo.FindCompletedToday(ctx, domainAccountID)
	if err != nil {
		return nil, nil, nil, err
	}
	if completedToday != nil {
		if len(leads) > completedToday.CurrentLeadIndex {
			resumed, err := f.sessionRepo.ResumeWithAppendedLeads(ctx, completedToday.ID)
			if err != nil {
				return nil, nil, nil, err
			}
			return resumed, domainAccount, leads, nil
		}
		return nil, nil, nil, warmuperrors.ErrCompletedToday
	}

	activeToday, err := f.sessionRepo.FindActiveToday(ctx, domainAccountID)
	if err != nil {
		return nil, nil, nil, err
	}
	if activeToday != nil {
		if activeToday.Status == enum.SessionPaused {
			resumed, err := f.sessionRepo.UpdateStatus(ctx, activeToday.ID, enum.SessionSending, interfaces.SessionUpdateFields{})
			if err != nil {
				return nil, nil, nil, err
			}
			return resumed, domainAccount, leads, nil
		}
		return nil, nil, nil, fmt.Errorf("%w: already exists with status %s", warmuperrors.ErrWrongState, activeToday.Status)
	}

	created, err := f.sessionRepo.CreateOrReset(ctx, domainAccountID)
	if err != nil {
		return nil, nil, nil, err
	}
	return created, domainAccount, leads, nil
}

// Pause requires a live orchestrator; it blocks until the orchestrator
// has disconnected its subscriptions and persisted status=paused.
func (f *Facade) Pause(ctx context.Context, domainAccountID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Facade.Pause")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomainAccount(span, domainAccountID)

	f.mu.Lock()
	entry, ok := f.live[domainAccountID]
	f.mu.Unlock()
	if !ok || entry.orch == nil {
		return warmuperrors.ErrNotRegistered
	}

	entry.orch.Pause()
	f.deregisterIfCurrent(domainAccountID, entry.orch)

	return nil
}

// deregisterIfCurrent removes the registry entry for domainAccountID only
// if it still points at orch, so a Run goroutine whose orchestrator was
// already superseded by a new Start never evicts the newer instance.
func (f *Facade) deregisterIfCurrent(domainAccountID string, orch *orchestrator.Orchestrator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entry, ok := f.live[domainAccountID]; ok && entry.orch == orch {
		delete(f.live, domainAccountID)
	}
}

// Resume is an alias for Start; resolveStart's branch (c) applies when
// the stored session is paused.
func (f *Facade) Resume(ctx context.Context, domainAccountID string) (*models.WarmupSession, error) {
	return f.Start(ctx, domainAccountID)
}

// Stop transitions a live orchestrator to failed, or marks a non-terminal
// stored session failed if no orchestrator is registered. No-op if
// neither exists.
func (f *Facade) Stop(ctx context.Context, domainAccountID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Facade.Stop")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagDomainAccount(span, domainAccountID)

	f.mu.Lock()
	entry, ok := f.live[domainAccountID]
	f.mu.Unlock()

	if ok && entry.orch != nil {
		entry.orch.Stop()
		f.deregisterIfCurrent(domainAccountID, entry.orch)
		return nil
	}

	activeToday, err := f.sessionRepo.FindActiveToday(ctx, domainAccountID)
	if err != nil {
		return err
	}
	if activeToday == nil {
		return nil
	}

	message := "Manually stopped by user"
	if _, err := f.sessionRepo.UpdateStatus(ctx, activeToday.ID, enum.SessionFailed, interfaces.SessionUpdateFields{
		ErrorMessage: &message,
	}); err != nil {
		return err
	}
	return f.accountRepo.UpdateStatus(ctx, domainAccountID, enum.AccountIdle)
}

// GetStatus returns the live/stored status view spec.md §4.5 describes.
func (f *Facade) GetStatus(ctx context.Context, domainAccountID string) (*Status, error) {
	f.mu.Lock()
	entry, ok := f.live[domainAccountID]
	f.mu.Unlock()

	result := &Status{}

	if ok && entry.orch != nil {
		result.Active = &ActiveStatus{
			CurrentLeadIndex: entry.orch.CurrentLeadIndex(),
			TotalLeads:       entry.orch.TotalLeads(),
			IsPaused:         entry.orch.IsPaused(),
		}
	}

	activeToday, err := f.sessionRepo.FindActiveToday(ctx, domainAccountID)
	if err != nil {
		return nil, err
	}
	completedToday, err := f.sessionRepo.FindCompletedToday(ctx, domainAccountID)
	if err != nil {
		return nil, err
	}

	if activeToday != nil {
		result.Session = activeToday
	} else {
		result.Session = completedToday
	}

	if completedToday != nil {
		leads, err := f.leadRepo.ListByDomainAccount(ctx, domainAccountID)
		if err != nil {
			return nil, err
		}
		result.CompletedToday = completedToday.CurrentLeadIndex >= len(leads)
	}

	return result, nil
}

// Shutdown pauses every live orchestrator so their sessions land in a
// restartable state, then returns; the caller is responsible for closing
// the backing store afterward (spec.md §5 "Graceful shutdown").
func (f *Facade) Shutdown(ctx context.Context) {
	f.mu.Lock()
	ids := make([]string, 0, len(f.live))
	for id := range f.live {
		ids = append(ids, id)
	}
	f.mu.Unlock()

	var wg sync.WaitGroup
	for _, id := range ids {
		id := id
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.Pause(ctx, id)
		}()
	}
	wg.Wait()
}
