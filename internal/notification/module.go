// Package notification provides event handlers for sending notifications
// (ops email and customer WhatsApp) in response to lead events.
// This module subscribes to events and inverts the dependency: the intake
// pipeline does not know about email providers or the WhatsApp gateway.
package notification

import (
	"context"
	"errors"
	"fmt"

	"naql_backend/internal/email"
	"naql_backend/internal/events"
	"naql_backend/internal/leads/domain"
	"naql_backend/platform/logger"
)

// WhatsAppSender sends WhatsApp messages.
type WhatsAppSender interface {
	SendMessage(ctx context.Context, phoneNumber string, message string) error
}

// Config provides the ops mailbox.
type Config interface {
	GetOpsEmail() string
}

const customerConfirmationFmt = "مرحباً %s، تم استلام طلب النقل رقم %s بنجاح. سيتواصل معك فريقنا قريباً بعروض الأسعار."

// Module reacts to lead events.
type Module struct {
	sender   email.Sender
	whatsapp WhatsAppSender
	opsEmail string
	log      *logger.Logger
}

// New creates the notification module. sender may be email.NoopSender.
func New(sender email.Sender, cfg Config, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Module{sender: sender, opsEmail: cfg.GetOpsEmail(), log: log}
}

// SetWhatsAppSender enables customer confirmations. Leave unset when the
// gateway is not configured.
func (m *Module) SetWhatsAppSender(sender WhatsAppSender) { m.whatsapp = sender }

// RegisterHandlers subscribes to the lead events on the bus.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadSubmitted{}.EventName(), m)
	bus.Subscribe(events.LeadQueued{}.EventName(), m)
	bus.Subscribe(events.LeadDeliveryFailed{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadSubmitted:
		return m.handleLeadAccepted(ctx, e.Lead)
	case events.LeadQueued:
		return m.handleLeadAccepted(ctx, e.Lead)
	case events.LeadDeliveryFailed:
		return m.handleLeadDeliveryFailed(ctx, e)
	default:
		m.log.Debug("notification: unhandled event", "event", event.EventName())
		return nil
	}
}

// handleLeadAccepted runs for leads that were stored or queued. Ops get the
// lead by email and opted-in customers get a WhatsApp confirmation.
func (m *Module) handleLeadAccepted(ctx context.Context, lead domain.ServerLead) error {
	var errs []error

	if m.opsEmail != "" {
		if err := m.sender.SendNewLeadEmail(ctx, m.opsEmail, lead); err != nil {
			errs = append(errs, fmt.Errorf("new lead email: %w", err))
		}
	}

	if m.whatsapp != nil && lead.WhatsAppOptIn && lead.CustomerPhone != "" {
		msg := fmt.Sprintf(customerConfirmationFmt, lead.CustomerName, lead.LeadID)
		if err := m.whatsapp.SendMessage(ctx, lead.CustomerPhone, msg); err != nil {
			errs = append(errs, fmt.Errorf("whatsapp confirmation: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		m.log.Warn("notification: lead notification failed", "leadId", lead.LeadID, "error", err)
		return err
	}
	return nil
}

func (m *Module) handleLeadDeliveryFailed(ctx context.Context, e events.LeadDeliveryFailed) error {
	if m.opsEmail == "" {
		m.log.Error("notification: lead undeliverable and no ops mailbox configured", "leadId", e.Lead.LeadID, "reason", e.Reason)
		return nil
	}
	if err := m.sender.SendUndeliveredLeadEmail(ctx, m.opsEmail, e.Lead, e.Reason); err != nil {
		m.log.Error("notification: undelivered lead email failed", "leadId", e.Lead.LeadID, "error", err)
		return err
	}
	return nil
}
