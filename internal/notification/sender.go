package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/OWDM/dental-ai-agent/pkg/config"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

// EmailSender delivers appointment notifications over SMTP. Sends are
// fire-and-forget: a failure becomes a soft warning on the operation
// result, never a rollback.
type EmailSender struct {
	cfg    *config.SMTPConfig
	logger *logger.Logger
	send   func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailSender creates a new SMTP notification sender
func NewEmailSender(cfg *config.SMTPConfig, log *logger.Logger) *EmailSender {
	return &EmailSender{
		cfg:    cfg,
		logger: log,
		send:   smtp.SendMail,
	}
}

// SendBookingConfirmation emails the patient a booking confirmation
func (s *EmailSender) SendBookingConfirmation(ctx context.Context, apt *types.Appointment, price float64) types.NotificationResult {
	subject := fmt.Sprintf("Appointment Confirmation - %s", apt.ServiceName)
	body := bookingConfirmationBody(apt, price)
	return s.deliver(ctx, apt.PatientEmail, subject, body)
}

// SendCancellation emails the patient a cancellation confirmation
func (s *EmailSender) SendCancellation(ctx context.Context, apt *types.Appointment) types.NotificationResult {
	subject := fmt.Sprintf("Appointment Cancelled - %s", apt.ServiceName)
	body := cancellationBody(apt)
	return s.deliver(ctx, apt.PatientEmail, subject, body)
}

// SendReschedule emails the patient old and new times
func (s *EmailSender) SendReschedule(ctx context.Context, apt *types.Appointment, oldStart time.Time) types.NotificationResult {
	subject := fmt.Sprintf("Appointment Rescheduled - %s", apt.ServiceName)
	body := rescheduleBody(apt, oldStart)
	return s.deliver(ctx, apt.PatientEmail, subject, body)
}

// deliver sends one email, honoring context cancellation before the
// network call starts
func (s *EmailSender) deliver(ctx context.Context, to, subject, htmlBody string) types.NotificationResult {
	if !s.cfg.Enabled {
		s.logger.WithComponent("notification").Debugf("SMTP disabled, skipping email to %s: %s", to, subject)
		return types.NotificationResult{Status: types.NotificationSkipped, Message: "notifications disabled"}
	}

	select {
	case <-ctx.Done():
		return types.NotificationResult{Status: types.NotificationFailed, Message: "send cancelled"}
	default:
	}

	msg := buildMessage(s.cfg.Address, to, subject, htmlBody)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Address, s.cfg.Password, s.cfg.Host)

	if err := s.send(addr, auth, s.cfg.Address, []string{to}, msg); err != nil {
		s.logger.WithComponent("notification").Warnf("Failed to send email to %s: %v", to, err)
		return types.NotificationResult{Status: types.NotificationFailed, Message: err.Error()}
	}

	s.logger.WithComponent("notification").Infof("Email sent: %s", subject)
	return types.NotificationResult{Status: types.NotificationSent}
}

// buildMessage assembles an HTML email with headers
func buildMessage(from, to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n",
		from, to, subject)
	return []byte(headers + htmlBody)
}
