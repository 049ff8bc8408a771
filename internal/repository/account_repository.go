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
)

type domainAccountRepository struct {
	db *gorm.DB
}

func NewDomainAccountRepository(db *gorm.DB) interfaces.DomainAccountRepository {
	return &domainAccountRepository{db: db}
}

func (r *domainAccountRepository) GetByID(ctx context.Context, id string) (*models.DomainAccount, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "domainAccountRepository.GetByID")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagDomainAccount(span, id)

	var account models.DomainAccount
	if err := r.db.First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, classifyErr(err)
	}
	return &account, nil
}

func (r *domainAccountRepository) UpdateStatus(ctx context.Context, id string, status enum.AccountStatus) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "domainAccountRepository.UpdateStatus")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagDomainAccount(span, id)

	err := r.db.Model(&models.DomainAccount{}).Where("id = ?", id).Update("status", status).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return classifyErr(err)
	}
	return nil
}

type leadAccountRepository struct {
	db *gorm.DB
}

func NewLeadAccountRepository(db *gorm.DB) interfaces.LeadAccountRepository {
	return &leadAccountRepository{db: db}
}

func (r *leadAccountRepository) ListByDomainAccount(ctx context.Context, domainAccountID string) ([]*models.LeadAccount, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "leadAccountRepository.ListByDomainAccount")
	defer span.Finish()
	tracing.SetDefaultPostgresRepositorySpanTags(ctx, span)
	tracing.TagDomainAccount(span, domainAccountID)

	var leads []*models.LeadAccount
	err := r.db.Where("domain_account_id = ?", domainAccountID).
		Order("created_at ASC").
		Find(&leads).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, classifyErr(err)
	}
	return leads, nil
}
