package orchestrator

import (
	"github.com/customeros/warmup/internal/models"
	"github.com/customeros/warmup/interfaces"
)

func domainCredentials(a *models.DomainAccount) interfaces.MailboxCredentials {
	return interfaces.MailboxCredentials{
		Address:      a.Address,
		DisplayName:  a.DisplayName,
		SMTPHost:     a.SMTPHost,
		SMTPPort:     a.SMTPPort,
		SMTPUsername: a.SMTPUsername,
		SMTPPassword: a.SMTPPassword,
		SMTPSecurity: a.SMTPSecurity.String(),
		IMAPHost:     a.IMAPHost,
		IMAPPort:     a.IMAPPort,
		IMAPUsername: a.IMAPUsername,
		IMAPPassword: a.IMAPPassword,
		IMAPSecurity: a.IMAPSecurity.String(),
	}
}

func leadCredentials(l *models.LeadAccount) interfaces.MailboxCredentials {
	return interfaces.MailboxCredentials{
		Address:      l.Address,
		DisplayName:  l.DisplayName,
		SMTPHost:     l.SMTPHost,
		SMTPPort:     l.SMTPPort,
		SMTPUsername: l.SMTPUsername,
		SMTPPassword: l.SMTPPassword,
		SMTPSecurity: l.SMTPSecurity.String(),
		IMAPHost:     l.IMAPHost,
		IMAPPort:     l.IMAPPort,
		IMAPUsername: l.IMAPUsername,
		IMAPPassword: l.IMAPPassword,
		IMAPSecurity: l.IMAPSecurity.String(),
	}
}
