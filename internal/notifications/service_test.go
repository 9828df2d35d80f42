// internal/notifications/service_test.go

package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendTicketConfirmation(t *testing.T) {
	email := NewMockEmailProvider()
	svc := NewService(email, nil)

	err := svc.SendTicketConfirmation(context.Background(),
		"alice@example.com", "alice", "Tech Meetup", "abc-123",
		time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, email.SentEmails, 1)
	sent := email.SentEmails[0]
	assert.Equal(t, "alice@example.com", sent.To)
	assert.Contains(t, sent.Subject, "Tech Meetup")
	assert.Contains(t, sent.Body, "abc-123")
	assert.Contains(t, sent.Body, "Hi alice")
	assert.True(t, sent.HTML)
}

func TestSendEventReminderWithPhone(t *testing.T) {
	email := NewMockEmailProvider()
	sms := NewMockSMSProvider()
	svc := NewService(email, sms)

	err := svc.SendEventReminder(context.Background(),
		"bob@example.com", "+15551234567", "bob", "Jazz Night",
		time.Date(2026, 9, 10, 19, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, email.SentEmails, 1)
	require.Len(t, sms.SentMessages, 1)
	assert.Equal(t, "+15551234567", sms.SentMessages[0].To)
	assert.Contains(t, sms.SentMessages[0].Body, "Jazz Night")
}

func TestSendEventReminderWithoutPhone(t *testing.T) {
	email := NewMockEmailProvider()
	sms := NewMockSMSProvider()
	svc := NewService(email, sms)

	err := svc.SendEventReminder(context.Background(),
		"bob@example.com", "", "bob", "Jazz Night", time.Now().Add(12*time.Hour))
	require.NoError(t, err)

	assert.Len(t, email.SentEmails, 1)
	assert.Empty(t, sms.SentMessages)
}
