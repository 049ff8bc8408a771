package interfaces

import (
	"context"
	"time"

	"github.com/customeros/warmup/internal/enum"
	"github.com/customeros/warmup/internal/models"
)

// SessionRepository is the Session Store (component A): the durable
// record of per-domain-account warm-up progress and outcomes.
type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.WarmupSession, error)
	// FindActiveToday returns the row for (domainAccountID, today) whose
	// status is not in {completed, failed}, or nil if none exists.
	FindActiveToday(ctx context.Context, domainAccountID string) (*models.WarmupSession, error)
	// FindCompletedToday returns the completed row for (domainAccountID,
	// today), or nil if none exists.
	FindCompletedToday(ctx context.Context, domainAccountID string) (*models.WarmupSession, error)
	// CreateOrReset resets the row for (domainAccountID, today) to
	// status=pending, index=0, clearing last_message_id/error/completed_at
	// and bumping started_at, or inserts a new row if none exists. This is
	// a single atomic operation, not a read-then-write.
	CreateOrReset(ctx context.Context, domainAccountID string) (*models.WarmupSession, error)
	// ResumeWithAppendedLeads reopens a completed session whose lead roster
	// has grown since completion: clears completed_at and error_message,
	// sets status=sending, and leaves current_lead_index untouched.
	ResumeWithAppendedLeads(ctx context.Context, id string) (*models.WarmupSession, error)
	// UpdateStatus applies the given fields to the session row by id, with
	// no guard on the current status, and returns the row as re-read after
	// the write.
	UpdateStatus(ctx context.Context, id string, status enum.SessionStatus, fields SessionUpdateFields) (*models.WarmupSession, error)
	ListByDomainAccount(ctx context.Context, domainAccountID string) ([]*models.WarmupSession, error)
	// CountNonTerminal counts sessions whose status is not in
	// {completed, failed}, for the housekeeping census job.
	CountNonTerminal(ctx context.Context) (int64, error)
}

// SessionUpdateFields carries the optional fields UpdateStatus may also
// set alongside the new status; a nil pointer leaves the column alone.
type SessionUpdateFields struct {
	CurrentLeadIndex *int
	LastMessageID    *string
	ErrorMessage     *string
	CompletedAt      *time.Time
	StartedAt        *time.Time
}

// MailLogRepository is the Mail Log (component B): an append-only audit
// of every sent/received/replied message. There is intentionally no
// Update or Delete method.
type MailLogRepository interface {
	Append(ctx context.Context, entry *models.MailLogEntry) error
	ListBySession(ctx context.Context, sessionID string) ([]*models.MailLogEntry, error)
	GetByMessageID(ctx context.Context, messageID string) (*models.MailLogEntry, error)
	Recent(ctx context.Context, limit int) ([]*models.MailLogEntry, error)
}

type DomainAccountRepository interface {
	GetByID(ctx context.Context, id string) (*models.DomainAccount, error)
	UpdateStatus(ctx context.Context, id string, status enum.AccountStatus) error
}

// LeadAccountRepository exposes the lead roster under the stable total
// order (CreatedAt ascending) the lead index addresses into.
type LeadAccountRepository interface {
	ListByDomainAccount(ctx context.Context, domainAccountID string) ([]*models.LeadAccount, error)
}
