package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/customeros/warmup/interfaces"
	"github.com/customeros/warmup/internal/enum"
	"github.com/customeros/warmup/internal/models"
	"github.com/customeros/warmup/internal/tracing"
	"github.com/customeros/warmup/internal/utils"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) interfaces.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*models.WarmupSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sessionRepository.FindByID")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var session models.WarmupSession
	if err := r.db.First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, classifyErr(err)
	}
	return &session, nil
}

func (r *sessionRepository) FindActiveToday(ctx context.Context, domainAccountID string) (*models.WarmupSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sessionRepository.FindActiveToday")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagDomainAccount(span, domainAccountID)

	var session models.WarmupSession
	err := r.db.Where("domain_account_id = ? AND session_date = ? AND status NOT IN ?",
		domainAccountID, utils.ToDate(utils.Now()), []enum.SessionStatus{enum.SessionCompleted, enum.SessionFailed}).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, classifyErr(err)
	}
	return &session, nil
}

func (r *sessionRepository) FindCompletedToday(ctx context.Context, domainAccountID string) (*models.WarmupSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sessionRepository.FindCompletedToday")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagDomainAccount(span, domainAccountID)

	var session models.WarmupSession
	err := r.db.Where("domain_account_id = ? AND session_date = ? AND status = ?",
		domainAccountID, utils.ToDate(utils.Now()), enum.SessionCompleted).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, classifyErr(err)
	}
	return &session, nil
}

// CreateOrReset is a single transaction: look up today's row for this
// domain account, and either reset it in place or insert a fresh one.
// Treated as one atomic operation, not a read-then-write from the
// caller's perspective.
func (r *sessionRepository) CreateOrReset(ctx context.Context, domainAccountID string) (*models.WarmupSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sessionRepository.CreateOrReset")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagDomainAccount(span, domainAccountID)

	today := utils.ToDate(utils.Now())
	var result models.WarmupSession

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.WarmupSession
		err := tx.Where("domain_account_id = ? AND session_date = ?", domainAccountID, today).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			result = models.WarmupSession{
				DomainAccountID:  domainAccountID,
				SessionDate:      today,
				CurrentLeadIndex: 0,
				Status:           enum.SessionPending,
				StartedAt:        utils.NowPtr(),
			}
			return tx.Create(&result).Error
		case err != nil:
			return err
		default:
			existing.Status = enum.SessionPending
			existing.CurrentLeadIndex = 0
			existing.LastMessageID = ""
			existing.ErrorMessage = ""
			existing.CompletedAt = nil
			existing.StartedAt = utils.NowPtr()
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result = existing
			return nil
		}
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, classifyErr(err)
	}
	return &result, nil
}

// ResumeWithAppendedLeads reopens a completed session whose lead roster
// grew after completion: clears completed_at/error_message, sets
// status=sending, and leaves current_lead_index where it was.
func (r *sessionRepository) ResumeWithAppendedLeads(ctx context.Context, id string) (*models.WarmupSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sessionRepository.ResumeWithAppendedLeads")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagSession(span, id)

	updates := map[string]interface{}{
		"status":        enum.SessionSending,
		"completed_at":  nil,
		"error_message": "",
	}
	if err := r.db.Model(&models.WarmupSession{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, classifyErr(err)
	}
	return r.FindByID(ctx, id)
}

func (r *sessionRepository) UpdateStatus(ctx context.Context, id string, status enum.SessionStatus, fields interfaces.SessionUpdateFields) (*models.WarmupSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sessionRepository.UpdateStatus")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagSession(span, id)

	updates := map[string]interface{}{"status": status}
	if fields.CurrentLeadIndex != nil {
		updates["current_lead_index"] = *fields.CurrentLeadIndex
	}
	if fields.LastMessageID != nil {
		updates["last_message_id"] = *fields.LastMessageID
	}
	if fields.ErrorMessage != nil {
		updates["error_message"] = *fields.ErrorMessage
	}
	if fields.CompletedAt != nil {
		updates["completed_at"] = *fields.CompletedAt
	}
	if fields.StartedAt != nil {
		updates["started_at"] = *fields.StartedAt
	}

	if err := r.db.Model(&models.WarmupSession{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, classifyErr(err)
	}
	return r.FindByID(ctx, id)
}

func (r *sessionRepository) ListByDomainAccount(ctx context.Context, domainAccountID string) ([]*models.WarmupSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sessionRepository.ListByDomainAccount")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagDomainAccount(span, domainAccountID)

	var sessions []*models.WarmupSession
	err := r.db.Where("domain_account_id = ?", domainAccountID).
		Order("session_date DESC").
		Find(&sessions).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, classifyErr(err)
	}
	return sessions, nil
}

// CountNonTerminal counts sessions across all domain accounts whose
// status is not in {completed, failed}, for the housekeeping census job.
func (r *sessionRepository) CountNonTerminal(ctx context.Context) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "sessionRepository.CountNonTerminal")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var count int64
	err := r.db.Model(&models.WarmupSession{}).
		Where("status NOT IN ?", []enum.SessionStatus{enum.SessionCompleted, enum.SessionFailed}).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, classifyErr(err)
	}
	return count, nil
}
