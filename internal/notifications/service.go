// internal/notifications/service.go

package notifications

import (
	"context"
	"fmt"
	"time"
)

// Service sends the platform's transactional messages through the
// configured providers.
type Service struct {
	email EmailProvider
	sms   SMSProvider
}

func NewService(email EmailProvider, sms SMSProvider) *Service {
	return &Service{email: email, sms: sms}
}

// SendTicketConfirmation emails a registration confirmation with the
// ticket code the QR code encodes.
func (s *Service) SendTicketConfirmation(ctx context.Context, email, username, eventTitle, ticketCode string, eventDate time.Time) error {
	if s.email == nil {
		return nil
	}

	greeting := "Hi"
	if username != "" {
		greeting = "Hi " + username
	}

	body := fmt.Sprintf(`<h2>You're registered!</h2>
<p>%s,</p>
<p>Your registration for <strong>%s</strong> on %s is confirmed.</p>
<p>Your ticket code is <code>%s</code>. Show the QR code from the app at the door to check in.</p>`,
		greeting, eventTitle, eventDate.Format("Monday, January 2 2006"), ticketCode)

	return s.email.SendEmail(ctx, &Email{
		To:      email,
		Subject: fmt.Sprintf("Ticket confirmed: %s", eventTitle),
		Body:    body,
		HTML:    true,
	})
}

// SendEventReminder notifies an attendee that their event is coming up.
// The SMS leg is skipped when no phone number is on file.
func (s *Service) SendEventReminder(ctx context.Context, email, phone, username, eventTitle string, eventDate time.Time) error {
	when := eventDate.Format("Monday, January 2 at 15:04")

	if s.email != nil {
		greeting := "Hi"
		if username != "" {
			greeting = "Hi " + username
		}
		body := fmt.Sprintf(`<p>%s,</p>
<p>Reminder: <strong>%s</strong> is happening on %s. See you there!</p>`,
			greeting, eventTitle, when)

		err := s.email.SendEmail(ctx, &Email{
			To:      email,
			Subject: fmt.Sprintf("Reminder: %s", eventTitle),
			Body:    body,
			HTML:    true,
		})
		if err != nil {
			return err
		}
	}

	if s.sms != nil && phone != "" {
		return s.sms.SendSMS(ctx, &SMSMessage{
			To:   phone,
			Body: fmt.Sprintf("Reminder: %s on %s", eventTitle, when),
		})
	}

	return nil
}
