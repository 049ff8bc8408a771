package repository

import (
	"gorm.io/gorm"

	"github.com/customeros/warmup/interfaces"
	"github.com/customeros/warmup/internal/models"
)

type Repositories struct {
	SessionRepository       interfaces.SessionRepository
	MailLogRepository       interfaces.MailLogRepository
	DomainAccountRepository interfaces.DomainAccountRepository
	LeadAccountRepository   interfaces.LeadAccountRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		SessionRepository:       NewSessionRepository(db),
		MailLogRepository:       NewMailLogRepository(db),
		DomainAccountRepository: NewDomainAccountRepository(db),
		LeadAccountRepository:   NewLeadAccountRepository(db),
	}
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.DomainAccount{},
		&models.LeadAccount{},
		&models.WarmupSession{},
		&models.MailLogEntry{},
	)
}
