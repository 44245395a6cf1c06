package email

import (
	"context"

	"naql_backend/internal/leads/domain"
	"naql_backend/platform/config"
)

// Sender delivers operational email about leads.
type Sender interface {
	SendNewLeadEmail(ctx context.Context, toEmail string, lead domain.ServerLead) error
	SendUndeliveredLeadEmail(ctx context.Context, toEmail string, lead domain.ServerLead, reason string) error
}

type NoopSender struct{}

func (NoopSender) SendNewLeadEmail(context.Context, string, domain.ServerLead) error {
	return nil
}

func (NoopSender) SendUndeliveredLeadEmail(context.Context, string, domain.ServerLead, string) error {
	return nil
}

// NewSender returns an SMTP sender when SMTP is configured and a no-op
// sender otherwise.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.IsSMTPEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetSMTPFrom(),
		cfg.GetSMTPFromName(),
	)
}
