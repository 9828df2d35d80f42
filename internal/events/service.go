// internal/events/service.go

package events

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/gatherlyhq/gatherly-backend/internal/activity"
	"github.com/gatherlyhq/gatherly-backend/internal/auth"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrUnauthorized  = errors.New("unauthorized to perform this action")
	ErrPastDate      = errors.New("event date must be in the future")
)

type Service interface {
	CreateEvent(ctx context.Context, userID int64, req *CreateEventRequest) (*Event, error)
	GetEvent(ctx context.Context, id int64) (*Event, error)
	ListEvents(ctx context.Context, params *ListParams) ([]*Event, int64, error)
	UpdateEvent(ctx context.Context, id, userID int64, role string, req *UpdateEventRequest) (*Event, error)
	DeleteEvent(ctx context.Context, id, userID int64, role string) error
	UploadImage(ctx context.Context, id, userID int64, role string, file multipart.File, header *multipart.FileHeader) (*Event, error)
	Categories(ctx context.Context) ([]string, error)
}

type service struct {
	repo     Repository
	uploads  *UploadService
	recorder activity.Recorder
}

func NewService(repo Repository, uploads *UploadService, recorder activity.Recorder) Service {
	if recorder == nil {
		recorder = activity.NopRecorder{}
	}
	return &service{
		repo:     repo,
		uploads:  uploads,
		recorder: recorder,
	}
}

func (s *service) CreateEvent(ctx context.Context, userID int64, req *CreateEventRequest) (*Event, error) {
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		// Accept a bare date too
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, errors.New("invalid date format, expected RFC 3339 or YYYY-MM-DD")
		}
	}

	if date.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, ErrPastDate
	}

	event := &Event{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Date:        date,
		TimeStr:     req.Time,
		Location:    req.Location,
		Capacity:    req.Capacity,
		CreatedBy:   userID,
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, userID, activity.ActionEventCreated, "event", &event.ID,
		activity.Metadata{"title": event.Title, "category": event.Category})

	return event, nil
}

func (s *service) GetEvent(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListEvents(ctx context.Context, params *ListParams) ([]*Event, int64, error) {
	events, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (s *service) UpdateEvent(ctx context.Context, id, userID int64, role string, req *UpdateEventRequest) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if event.CreatedBy != userID && role != auth.RoleAdmin {
		return nil, ErrUnauthorized
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.Date != nil {
		date, err := time.Parse(time.RFC3339, *req.Date)
		if err != nil {
			date, err = time.Parse("2006-01-02", *req.Date)
			if err != nil {
				return nil, errors.New("invalid date format, expected RFC 3339 or YYYY-MM-DD")
			}
		}
		event.Date = date
	}
	if req.Time != nil {
		event.TimeStr = *req.Time
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, userID, activity.ActionEventUpdated, "event", &event.ID, nil)

	return s.repo.GetByID(ctx, id)
}

func (s *service) DeleteEvent(ctx context.Context, id, userID int64, role string) error {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if event.CreatedBy != userID && role != auth.RoleAdmin {
		return ErrUnauthorized
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.recorder.Record(ctx, userID, activity.ActionEventDeleted, "event", &id,
		activity.Metadata{"title": event.Title})

	return nil
}

func (s *service) UploadImage(ctx context.Context, id, userID int64, role string, file multipart.File, header *multipart.FileHeader) (*Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if event.CreatedBy != userID && role != auth.RoleAdmin {
		return nil, ErrUnauthorized
	}

	url, err := s.uploads.UploadFile(file, header)
	if err != nil {
		return nil, err
	}

	event.ImageURL = &url
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}
