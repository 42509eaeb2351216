package notification

import (
	"context"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OWDM/dental-ai-agent/pkg/config"
	"github.com/OWDM/dental-ai-agent/pkg/logger"
	"github.com/OWDM/dental-ai-agent/pkg/types"
)

func testAppointment() *types.Appointment {
	return &types.Appointment{
		ID:              "apt-1",
		PatientEmail:    "sara@example.com",
		PatientName:     "Sara",
		DoctorName:      "Dr. Saad",
		ServiceName:     "Teeth Cleaning",
		Start:           time.Date(2025, 11, 25, 14, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}
}

type capturedSend struct {
	addr string
	from string
	to   []string
	msg  []byte
	err  error
}

func capturingSender(enabled bool, sendErr error) (*EmailSender, *capturedSend) {
	captured := &capturedSend{err: sendErr}
	sender := NewEmailSender(&config.SMTPConfig{
		Host:    "smtp.gmail.com",
		Port:    587,
		Address: "clinic@example.com",
		Enabled: enabled,
	}, logger.New("debug"))
	sender.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr = addr
		captured.from = from
		captured.to = to
		captured.msg = msg
		return captured.err
	}
	return sender, captured
}

func TestEmailSender_DisabledSkips(t *testing.T) {
	sender, captured := capturingSender(false, nil)

	result := sender.SendBookingConfirmation(context.Background(), testAppointment(), 250)

	assert.Equal(t, types.NotificationSkipped, result.Status)
	assert.Empty(t, captured.to)
}

func TestEmailSender_BookingConfirmation(t *testing.T) {
	sender, captured := capturingSender(true, nil)

	result := sender.SendBookingConfirmation(context.Background(), testAppointment(), 250)

	require.Equal(t, types.NotificationSent, result.Status)
	assert.Equal(t, "smtp.gmail.com:587", captured.addr)
	assert.Equal(t, []string{"sara@example.com"}, captured.to)

	msg := string(captured.msg)
	assert.Contains(t, msg, "Subject: Appointment Confirmation - Teeth Cleaning")
	assert.Contains(t, msg, "Content-Type: text/html")
	assert.Contains(t, msg, "Dr. Saad")
	assert.Contains(t, msg, "250")
}

func TestEmailSender_RescheduleIncludesBothTimes(t *testing.T) {
	sender, captured := capturingSender(true, nil)

	oldStart := time.Date(2025, 11, 24, 10, 0, 0, 0, time.UTC)
	result := sender.SendReschedule(context.Background(), testAppointment(), oldStart)

	require.Equal(t, types.NotificationSent, result.Status)
	msg := string(captured.msg)
	assert.Contains(t, msg, "Monday, November 24, 2025")
	assert.Contains(t, msg, "Tuesday, November 25, 2025")
}

func TestEmailSender_FailureIsSoft(t *testing.T) {
	sender, _ := capturingSender(true, assert.AnError)

	result := sender.SendCancellation(context.Background(), testAppointment())

	assert.Equal(t, types.NotificationFailed, result.Status)
	assert.NotEmpty(t, result.Message)
}

func TestEmailSender_CancelledContext(t *testing.T) {
	sender, captured := capturingSender(true, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := sender.SendCancellation(ctx, testAppointment())

	assert.Equal(t, types.NotificationFailed, result.Status)
	assert.Empty(t, captured.to)
}
