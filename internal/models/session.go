package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/warmup/internal/enum"
	"github.com/customeros/warmup/internal/utils"
)

// WarmupSession is the per-calendar-day unit of progress for one domain
// account. (DomainAccountID, SessionDate) is unique: restarting "today"
// reuses the row instead of inserting a new one.
type WarmupSession struct {
	ID              string    `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	DomainAccountID string    `gorm:"column:domain_account_id;type:varchar(50);uniqueIndex:idx_domain_session_date;not null" json:"domainAccountId"`
	SessionDate     time.Time `gorm:"column:session_date;type:date;uniqueIndex:idx_domain_session_date;not null" json:"sessionDate"`

	CurrentLeadIndex int                `gorm:"column:current_lead_index;not null;default:0" json:"currentLeadIndex"`
	Status           enum.SessionStatus `gorm:"column:status;type:varchar(20);index;not null;default:pending" json:"status"`
	LastMessageID    string             `gorm:"column:last_message_id;type:varchar(255)" json:"lastMessageId"`

	StartedAt   *time.Time `gorm:"column:started_at;type:timestamp" json:"startedAt"`
	CompletedAt *time.Time `gorm:"column:completed_at;type:timestamp" json:"completedAt"`
	ErrorMessage string    `gorm:"column:error_message;type:text" json:"errorMessage"`

	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (WarmupSession) TableName() string {
	return "warmup_sessions"
}

func (s *WarmupSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = utils.GenerateNanoIDWithPrefix("wses", 16)
	}
	return nil
}

// IsActive reports whether the session is in a non-terminal status, i.e.
// find-active-today's predicate (status not in {completed, failed}).
func (s *WarmupSession) IsActive() bool {
	return !s.Status.IsTerminal()
}

// MailLogEntry is an append-only record of one sent/received/replied
// message. direction=sent is an outbound from the domain account;
// direction=received is anything observed on a mailbox of interest;
// direction=replied is an outbound from a lead back to the domain.
type MailLogEntry struct {
	ID        string  `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	SessionID *string `gorm:"column:session_id;type:varchar(50);index" json:"sessionId"`

	From      string              `gorm:"column:from_address;type:varchar(255);not null" json:"from"`
	To        string              `gorm:"column:to_address;type:varchar(255);not null" json:"to"`
	Subject   string              `gorm:"column:subject;type:varchar(998)" json:"subject"`
	Body      string              `gorm:"column:body;type:text" json:"body"`
	MessageID string              `gorm:"column:message_id;type:varchar(255);index" json:"messageId"`
	InReplyTo string              `gorm:"column:in_reply_to;type:varchar(255);index" json:"inReplyTo"`
	Direction enum.MailDirection  `gorm:"column:direction;type:varchar(20);not null" json:"direction"`
	LeadIndex int                 `gorm:"column:lead_index;not null" json:"leadIndex"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp;index" json:"createdAt"`
}

func (MailLogEntry) TableName() string {
	return "mail_log_entries"
}

func (e *MailLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("mlog", 16)
	}
	return nil
}
