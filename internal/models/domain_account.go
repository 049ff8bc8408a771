package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/warmup/internal/enum"
	"github.com/customeros/warmup/internal/utils"
)

// DomainAccount is the mailbox under warm-up. Status is a denormalised
// view of whether an Orchestrator instance currently holds the account.
type DomainAccount struct {
	ID          string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	DisplayName string `gorm:"column:display_name;type:varchar(255)" json:"displayName"`
	Address     string `gorm:"column:address;type:varchar(255);uniqueIndex;not null" json:"address"`

	SMTPHost     string             `gorm:"column:smtp_host;type:varchar(255)" json:"smtpHost"`
	SMTPPort     int                `gorm:"column:smtp_port" json:"smtpPort"`
	SMTPUsername string             `gorm:"column:smtp_username;type:varchar(255)" json:"smtpUsername"`
	SMTPPassword string             `gorm:"column:smtp_password;type:varchar(255)" json:"-"`
	SMTPSecurity enum.EmailSecurity `gorm:"column:smtp_security;type:varchar(50)" json:"smtpSecurity"`

	IMAPHost     string             `gorm:"column:imap_host;type:varchar(255)" json:"imapHost"`
	IMAPPort     int                `gorm:"column:imap_port" json:"imapPort"`
	IMAPUsername string             `gorm:"column:imap_username;type:varchar(255)" json:"imapUsername"`
	IMAPPassword string             `gorm:"column:imap_password;type:varchar(255)" json:"-"`
	IMAPSecurity enum.EmailSecurity `gorm:"column:imap_security;type:varchar(50)" json:"imapSecurity"`

	Status enum.AccountStatus `gorm:"column:status;type:varchar(20);index;not null;default:idle" json:"status"`

	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (DomainAccount) TableName() string {
	return "domain_accounts"
}

func (a *DomainAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = utils.GenerateNanoIDWithPrefix("dacc", 16)
	}
	return nil
}

// LeadAccount is a cooperating responder mailbox. Leads form an ordered
// sequence under a stable total order (CreatedAt ascending); a session's
// current_lead_index indexes into this order.
type LeadAccount struct {
	ID              string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	DomainAccountID string `gorm:"column:domain_account_id;type:varchar(50);index;not null" json:"domainAccountId"`
	DisplayName     string `gorm:"column:display_name;type:varchar(255)" json:"displayName"`
	Address         string `gorm:"column:address;type:varchar(255);not null" json:"address"`

	SMTPHost     string             `gorm:"column:smtp_host;type:varchar(255)" json:"smtpHost"`
	SMTPPort     int                `gorm:"column:smtp_port" json:"smtpPort"`
	SMTPUsername string             `gorm:"column:smtp_username;type:varchar(255)" json:"smtpUsername"`
	SMTPPassword string             `gorm:"column:smtp_password;type:varchar(255)" json:"-"`
	SMTPSecurity enum.EmailSecurity `gorm:"column:smtp_security;type:varchar(50)" json:"smtpSecurity"`

	IMAPHost     string             `gorm:"column:imap_host;type:varchar(255)" json:"imapHost"`
	IMAPPort     int                `gorm:"column:imap_port" json:"imapPort"`
	IMAPUsername string             `gorm:"column:imap_username;type:varchar(255)" json:"imapUsername"`
	IMAPPassword string             `gorm:"column:imap_password;type:varchar(255)" json:"-"`
	IMAPSecurity enum.EmailSecurity `gorm:"column:imap_security;type:varchar(50)" json:"imapSecurity"`

	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp;index" json:"createdAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (LeadAccount) TableName() string {
	return "lead_accounts"
}

func (l *LeadAccount) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = utils.GenerateNanoIDWithPrefix("lead", 16)
	}
	return nil
}
