package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/customeros/warmup/interfaces"
	"github.com/customeros/warmup/internal/models"
	"github.com/customeros/warmup/internal/tracing"
)

type mailLogRepository struct {
	db *gorm.DB
}

func NewMailLogRepository(db *gorm.DB) interfaces.MailLogRepository {
	return &mailLogRepository{db: db}
}

func (r *mailLogRepository) Append(ctx context.Context, entry *models.MailLogEntry) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailLogRepository.Append")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	if entry.SessionID != nil {
		tracing.TagSession(span, *entry.SessionID)
	}

	if err := r.db.Create(entry).Error; err != nil {
		tracing.TraceErr(span, err)
		return classifyErr(err)
	}
	return nil
}

func (r *mailLogRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.MailLogEntry, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailLogRepository.ListBySession")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagSession(span, sessionID)

	var entries []*models.MailLogEntry
	err := r.db.Where("session_id = ?", sessionID).Order("created_at ASC").Find(&entries).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, classifyErr(err)
	}
	return entries, nil
}

func (r *mailLogRepository) GetByMessageID(ctx context.Context, messageID string) (*models.MailLogEntry, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailLogRepository.GetByMessageID")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	var entry models.MailLogEntry
	err := r.db.Where("message_id = ?", messageID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, classifyErr(err)
	}
	return &entry, nil
}

func (r *mailLogRepository) Recent(ctx context.Context, limit int) ([]*models.MailLogEntry, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "mailLogRepository.Recent")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)

	if limit <= 0 {
		limit = 100
	}

	var entries []*models.MailLogEntry
	err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, classifyErr(err)
	}
	return entries, nil
}
