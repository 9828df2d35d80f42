// internal/notifications/scheduler.go

package notifications

import (
	"context"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
)

// ReminderScheduler periodically emails attendees whose events start
// within the reminder window. Sent reminders are recorded per
// registration so restarts don't re-send them.
type ReminderScheduler struct {
	db       *sqlx.DB
	service  *Service
	interval time.Duration
	window   time.Duration
	stopCh   chan struct{}
}

func NewReminderScheduler(db *sqlx.DB, service *Service, interval, window time.Duration) *ReminderScheduler {
	if interval == 0 {
		interval = 15 * time.Minute
	}
	if window == 0 {
		window = 24 * time.Hour
	}

	return &ReminderScheduler{
		db:       db,
		service:  service,
		interval: interval,
		window:   window,
		stopCh:   make(chan struct{}),
	}
}

// Start starts the scheduler loop
func (s *ReminderScheduler) Start(ctx context.Context) {
	log.Printf("Starting reminder scheduler with interval: %v", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.processDue(ctx)

	for {
		select {
		case <-ticker.C:
			s.processDue(ctx)
		case <-s.stopCh:
			log.Println("Stopping reminder scheduler")
			return
		case <-ctx.Done():
			log.Println("Context cancelled, stopping reminder scheduler")
			return
		}
	}
}

// Stop stops the scheduler
func (s *ReminderScheduler) Stop() {
	close(s.stopCh)
}

type dueReminder struct {
	RegistrationID int64     `db:"registration_id"`
	Email          string    `db:"email"`
	Username       string    `db:"username"`
	Phone          *string   `db:"phone"`
	EventTitle     string    `db:"event_title"`
	EventDate      time.Time `db:"event_date"`
}

func (s *ReminderScheduler) processDue(ctx context.Context) {
	query := `
		SELECT r.id AS registration_id, u.email, u.username, p.phone,
		       e.title AS event_title, e.date AS event_date
		FROM registrations r
		JOIN events e ON r.event_id = e.id
		JOIN users u ON r.user_id = u.id
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE r.status = 'REGISTERED'
		  AND e.date > NOW()
		  AND e.date <= NOW() + make_interval(secs => $1)
		  AND NOT EXISTS (
			SELECT 1 FROM reminders rem WHERE rem.registration_id = r.id
		  )
		LIMIT 200`

	var due []dueReminder
	if err := s.db.SelectContext(ctx, &due, query, s.window.Seconds()); err != nil {
		log.Printf("Failed to load due reminders: %v", err)
		return
	}

	for _, d := range due {
		phone := ""
		if d.Phone != nil {
			phone = *d.Phone
		}

		if err := s.service.SendEventReminder(ctx, d.Email, phone, d.Username, d.EventTitle, d.EventDate); err != nil {
			log.Printf("Failed to send reminder for registration %d: %v", d.RegistrationID, err)
			continue
		}

		_, err := s.db.ExecContext(ctx,
			`INSERT INTO reminders (registration_id) VALUES ($1) ON CONFLICT DO NOTHING`,
			d.RegistrationID)
		if err != nil {
			log.Printf("Failed to record reminder for registration %d: %v", d.RegistrationID, err)
		}
	}
}
