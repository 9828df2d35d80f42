// internal/registrations/service.go

package registrations

import (
	"context"
	"encoding/base64"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/gatherlyhq/gatherly-backend/internal/activity"
	"github.com/gatherlyhq/gatherly-backend/internal/auth"
	"github.com/gatherlyhq/gatherly-backend/internal/events"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrEventFull            = errors.New("event is at capacity")
	ErrEventInPast          = errors.New("cannot register for a past event")
	ErrNotCancellable       = errors.New("registration cannot be cancelled")
	ErrNotCheckable         = errors.New("registration cannot be checked in")
	ErrUnauthorized         = errors.New("unauthorized to perform this action")
)

// TicketMailer sends a registration confirmation with the ticket attached.
// Implementations must not block the request path for long.
type TicketMailer interface {
	SendTicketConfirmation(ctx context.Context, email, username, eventTitle, ticketCode string, eventDate time.Time) error
}

// CacheInvalidator drops cached recommendations when a user's
// registration history changes.
type CacheInvalidator interface {
	InvalidateUser(ctx context.Context, userID int64)
}

type Service interface {
	Register(ctx context.Context, userID, eventID int64) (*Ticket, error)
	Cancel(ctx context.Context, userID, eventID int64) (*Registration, error)
	CheckIn(ctx context.Context, actorID int64, role string, ticketCode string) (*Registration, error)
	GetTicket(ctx context.Context, userID, eventID int64) (*Ticket, error)
	ListMine(ctx context.Context, params *ListParams) ([]*Registration, error)
	ListForEvent(ctx context.Context, actorID int64, role string, params *ListParams) ([]*Registration, error)
}

type service struct {
	repo      Repository
	events    events.Repository
	mailer    TicketMailer
	cache     CacheInvalidator
	recorder  activity.Recorder
}

func NewService(repo Repository, eventsRepo events.Repository, mailer TicketMailer, cache CacheInvalidator, recorder activity.Recorder) Service {
	if recorder == nil {
		recorder = activity.NopRecorder{}
	}
	return &service{
		repo:     repo,
		events:   eventsRepo,
		mailer:   mailer,
		cache:    cache,
		recorder: recorder,
	}
}

// Register registers a user for an event, issuing a ticket. A cancelled
// registration is revived instead of inserting a second row, so the
// user+event pair stays unique.
func (s *service) Register(ctx context.Context, userID, eventID int64) (*Ticket, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.Date.Before(time.Now()) {
		return nil, ErrEventInPast
	}

	existing, err := s.repo.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil && !errors.Is(err, ErrRegistrationNotFound) {
		return nil, err
	}

	if existing != nil && existing.Status != StatusCancelled {
		return nil, ErrAlreadyRegistered
	}

	taken, err := s.repo.CountActive(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if taken >= event.Capacity {
		return nil, ErrEventFull
	}

	var reg *Registration
	if existing != nil {
		// Revive the cancelled registration, keeping its ticket code
		if err := s.repo.UpdateStatus(ctx, existing.ID, StatusRegistered, false); err != nil {
			return nil, err
		}
		reg, err = s.repo.GetByID(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
	} else {
		reg = &Registration{
			UserID:     userID,
			EventID:    eventID,
			Status:     StatusRegistered,
			TicketCode: uuid.New().String(),
		}
		if err := s.repo.Create(ctx, reg); err != nil {
			return nil, err
		}
		reg, err = s.repo.GetByID(ctx, reg.ID)
		if err != nil {
			return nil, err
		}
	}

	s.recorder.Record(ctx, userID, activity.ActionRegistrationCreated, "registration", &reg.ID,
		activity.Metadata{"event_id": eventID, "event_title": event.Title})

	s.invalidate(ctx, userID)
	s.sendConfirmation(reg, event.Title, event.Date)

	return s.buildTicket(reg)
}

// Cancel cancels an active registration. Attended registrations cannot
// be cancelled.
func (s *service) Cancel(ctx context.Context, userID, eventID int64) (*Registration, error) {
	reg, err := s.repo.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	if reg.Status != StatusRegistered {
		return nil, ErrNotCancellable
	}

	if err := s.repo.UpdateStatus(ctx, reg.ID, StatusCancelled, false); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, userID, activity.ActionRegistrationCancel, "registration", &reg.ID,
		activity.Metadata{"event_id": eventID})

	s.invalidate(ctx, userID)

	return s.repo.GetByID(ctx, reg.ID)
}

// CheckIn marks a registration as attended from a scanned ticket code.
// Only the event's creator or an admin may check attendees in.
func (s *service) CheckIn(ctx context.Context, actorID int64, role string, ticketCode string) (*Registration, error) {
	reg, err := s.repo.GetByTicketCode(ctx, ticketCode)
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}

	if event.CreatedBy != actorID && role != auth.RoleAdmin {
		return nil, ErrUnauthorized
	}

	if reg.Status != StatusRegistered {
		return nil, ErrNotCheckable
	}

	if err := s.repo.UpdateStatus(ctx, reg.ID, StatusAttended, true); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, actorID, activity.ActionCheckIn, "registration", &reg.ID,
		activity.Metadata{"event_id": reg.EventID, "user_id": reg.UserID})

	s.invalidate(ctx, reg.UserID)

	return s.repo.GetByID(ctx, reg.ID)
}

// GetTicket returns the user's ticket for an event with a rendered QR code
func (s *service) GetTicket(ctx context.Context, userID, eventID int64) (*Ticket, error) {
	reg, err := s.repo.GetByUserAndEvent(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	if reg.Status == StatusCancelled {
		return nil, ErrRegistrationNotFound
	}

	return s.buildTicket(reg)
}

func (s *service) ListMine(ctx context.Context, params *ListParams) ([]*Registration, error) {
	return s.repo.ListByUser(ctx, params)
}

// ListForEvent returns an event's attendee list for its creator or an admin
func (s *service) ListForEvent(ctx context.Context, actorID int64, role string, params *ListParams) ([]*Registration, error) {
	event, err := s.events.GetByID(ctx, params.EventID)
	if err != nil {
		return nil, err
	}

	if event.CreatedBy != actorID && role != auth.RoleAdmin {
		return nil, ErrUnauthorized
	}

	return s.repo.ListByEvent(ctx, params)
}

func (s *service) buildTicket(reg *Registration) (*Ticket, error) {
	png, err := qrcode.Encode(reg.TicketCode, qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}

	return &Ticket{
		Registration: reg,
		QRCode:       base64.StdEncoding.EncodeToString(png),
	}, nil
}

func (s *service) invalidate(ctx context.Context, userID int64) {
	if s.cache != nil {
		s.cache.InvalidateUser(ctx, userID)
	}
}

func (s *service) sendConfirmation(reg *Registration, eventTitle string, eventDate time.Time) {
	if s.mailer == nil || reg.Email == nil {
		return
	}

	email := *reg.Email
	username := ""
	if reg.Username != nil {
		username = *reg.Username
	}
	code := reg.TicketCode

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.mailer.SendTicketConfirmation(ctx, email, username, eventTitle, code, eventDate); err != nil {
			log.Printf("Failed to send ticket confirmation to %s: %v", email, err)
		}
	}()
}
