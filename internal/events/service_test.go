// internal/events/service_test.go

package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherlyhq/gatherly-backend/internal/auth"
)

type fakeRepo struct {
	events map[int64]*Event
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: make(map[int64]*Event), nextID: 1}
}

func (r *fakeRepo) Create(ctx context.Context, event *Event) error {
	event.ID = r.nextID
	r.nextID++
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id int64) (*Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	cp := *event
	return &cp, nil
}

func (r *fakeRepo) List(ctx context.Context, params *ListParams) ([]*Event, error) {
	var out []*Event
	for _, e := range r.events {
		if params.Category != "" && e.Category != params.Category {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeRepo) Count(ctx context.Context, params *ListParams) (int64, error) {
	list, _ := r.List(ctx, params)
	return int64(len(list)), nil
}

func (r *fakeRepo) Update(ctx context.Context, event *Event) error {
	if _, ok := r.events[event.ID]; !ok {
		return ErrEventNotFound
	}
	cp := *event
	r.events[event.ID] = &cp
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.events[id]; !ok {
		return ErrEventNotFound
	}
	delete(r.events, id)
	return nil
}

func (r *fakeRepo) Categories(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.events {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	return out, nil
}

func createRequest(date string) *CreateEventRequest {
	return &CreateEventRequest{
		Title:    "Tech Meetup",
		Category: "Technology",
		Date:     date,
		Time:     "7:00 PM",
		Location: "Downtown Hall",
		Capacity: 50,
	}
}

func TestCreateEvent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil)

	date := time.Now().AddDate(0, 1, 0).Format(time.RFC3339)
	event, err := svc.CreateEvent(context.Background(), 7, createRequest(date))
	require.NoError(t, err)

	assert.Equal(t, int64(1), event.ID)
	assert.Equal(t, int64(7), event.CreatedBy)
	assert.Equal(t, "Tech Meetup", event.Title)
}

func TestCreateEventBareDate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil)

	date := time.Now().AddDate(0, 0, 10).Format("2006-01-02")
	event, err := svc.CreateEvent(context.Background(), 7, createRequest(date))
	require.NoError(t, err)
	assert.Equal(t, date, event.Date.Format("2006-01-02"))
}

func TestCreateEventRejectsPastDate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil)

	date := time.Now().AddDate(0, 0, -2).Format(time.RFC3339)
	_, err := svc.CreateEvent(context.Background(), 7, createRequest(date))
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestCreateEventRejectsBadDate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.CreateEvent(context.Background(), 7, createRequest("next tuesday"))
	assert.Error(t, err)
}

func TestUpdateEventByCreator(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil)

	date := time.Now().AddDate(0, 1, 0).Format(time.RFC3339)
	event, err := svc.CreateEvent(context.Background(), 7, createRequest(date))
	require.NoError(t, err)

	title := "Tech Meetup v2"
	capacity := 80
	updated, err := svc.UpdateEvent(context.Background(), event.ID, 7, auth.RoleUser,
		&UpdateEventRequest{Title: &title, Capacity: &capacity})
	require.NoError(t, err)

	assert.Equal(t, "Tech Meetup v2", updated.Title)
	assert.Equal(t, 80, updated.Capacity)
	assert.Equal(t, "Technology", updated.Category)
}

func TestUpdateEventByStranger(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil)

	date := time.Now().AddDate(0, 1, 0).Format(time.RFC3339)
	event, err := svc.CreateEvent(context.Background(), 7, createRequest(date))
	require.NoError(t, err)

	title := "Hijacked"
	_, err = svc.UpdateEvent(context.Background(), event.ID, 99, auth.RoleUser,
		&UpdateEventRequest{Title: &title})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateEventByAdmin(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil)

	date := time.Now().AddDate(0, 1, 0).Format(time.RFC3339)
	event, err := svc.CreateEvent(context.Background(), 7, createRequest(date))
	require.NoError(t, err)

	title := "Moderated Title"
	updated, err := svc.UpdateEvent(context.Background(), event.ID, 99, auth.RoleAdmin,
		&UpdateEventRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Moderated Title", updated.Title)
}

func TestDeleteEvent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil)

	date := time.Now().AddDate(0, 1, 0).Format(time.RFC3339)
	event, err := svc.CreateEvent(context.Background(), 7, createRequest(date))
	require.NoError(t, err)

	err = svc.DeleteEvent(context.Background(), event.ID, 99, auth.RoleUser)
	assert.ErrorIs(t, err, ErrUnauthorized)

	err = svc.DeleteEvent(context.Background(), event.ID, 7, auth.RoleUser)
	require.NoError(t, err)

	_, err = svc.GetEvent(context.Background(), event.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestDeleteMissingEvent(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil, nil)

	err := svc.DeleteEvent(context.Background(), 404, 7, auth.RoleAdmin)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
