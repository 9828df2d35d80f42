// internal/activity/service.go
// Append-only audit trail. Recording is always best effort: a failed
// insert must never fail the action being recorded.

package activity

import (
	"context"
	"log"
)

// Recorder is the narrow interface other modules depend on
type Recorder interface {
	Record(ctx context.Context, actorID int64, action, entityType string, entityID *int64, metadata Metadata)
}

type Service interface {
	Recorder
	List(ctx context.Context, params *ListParams) ([]*Entry, int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Record writes an audit entry, swallowing failures
func (s *service) Record(ctx context.Context, actorID int64, action, entityType string, entityID *int64, metadata Metadata) {
	entry := &Entry{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   metadata,
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		log.Printf("activity: failed to record %s: %v", action, err)
	}
}

// List returns a page of log entries with the total count
func (s *service) List(ctx context.Context, params *ListParams) ([]*Entry, int64, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 50
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	entries, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// NopRecorder discards all entries. Used in tests and as a default
// when audit logging is not wired.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, int64, string, string, *int64, Metadata) {}
