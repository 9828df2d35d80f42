// internal/registrations/service_test.go

package registrations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherlyhq/gatherly-backend/internal/events"
)

type fakeRepo struct {
	regs   map[int64]*Registration
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{regs: map[int64]*Registration{}, nextID: 1}
}

func (f *fakeRepo) Create(ctx context.Context, reg *Registration) error {
	for _, r := range f.regs {
		if r.UserID == reg.UserID && r.EventID == reg.EventID {
			return ErrAlreadyRegistered
		}
	}
	reg.ID = f.nextID
	f.nextID++
	reg.CreatedAt = time.Now()
	reg.UpdatedAt = time.Now()
	cp := *reg
	f.regs[reg.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id int64) (*Registration, error) {
	r, ok := f.regs[id]
	if !ok {
		return nil, ErrRegistrationNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRepo) GetByUserAndEvent(ctx context.Context, userID, eventID int64) (*Registration, error) {
	for _, r := range f.regs {
		if r.UserID == userID && r.EventID == eventID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrRegistrationNotFound
}

func (f *fakeRepo) GetByTicketCode(ctx context.Context, code string) (*Registration, error) {
	for _, r := range f.regs {
		if r.TicketCode == code {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrRegistrationNotFound
}

func (f *fakeRepo) ListByUser(ctx context.Context, params *ListParams) ([]*Registration, error) {
	var out []*Registration
	for _, r := range f.regs {
		if r.UserID == params.UserID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByEvent(ctx context.Context, params *ListParams) ([]*Registration, error) {
	var out []*Registration
	for _, r := range f.regs {
		if r.EventID == params.EventID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountActive(ctx context.Context, eventID int64) (int, error) {
	count := 0
	for _, r := range f.regs {
		if r.EventID == eventID && (r.Status == StatusRegistered || r.Status == StatusAttended) {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id int64, status string, checkedIn bool) error {
	r, ok := f.regs[id]
	if !ok {
		return ErrRegistrationNotFound
	}
	r.Status = status
	if checkedIn {
		now := time.Now()
		r.CheckedInAt = &now
	}
	return nil
}

type fakeEventsRepo struct {
	events map[int64]*events.Event
}

func (f *fakeEventsRepo) Create(ctx context.Context, e *events.Event) error { return nil }
func (f *fakeEventsRepo) GetByID(ctx context.Context, id int64) (*events.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, events.ErrEventNotFound
	}
	return e, nil
}
func (f *fakeEventsRepo) List(ctx context.Context, params *events.ListParams) ([]*events.Event, error) {
	return nil, nil
}
func (f *fakeEventsRepo) Count(ctx context.Context, params *events.ListParams) (int64, error) {
	return 0, nil
}
func (f *fakeEventsRepo) Update(ctx context.Context, e *events.Event) error { return nil }
func (f *fakeEventsRepo) Delete(ctx context.Context, id int64) error        { return nil }
func (f *fakeEventsRepo) Categories(ctx context.Context) ([]string, error)  { return nil, nil }

func newTestService(repo *fakeRepo, eventsRepo *fakeEventsRepo) Service {
	return NewService(repo, eventsRepo, nil, nil, nil)
}

func futureEvent(id int64, capacity int, createdBy int64) *events.Event {
	return &events.Event{
		ID:        id,
		Title:     "Community Meetup",
		Category:  "Tech",
		Date:      time.Now().Add(48 * time.Hour),
		Capacity:  capacity,
		CreatedBy: createdBy,
	}
}

func TestRegisterIssuesTicket(t *testing.T) {
	repo := newFakeRepo()
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{1: futureEvent(1, 10, 99)}}
	svc := newTestService(repo, eventsRepo)

	ticket, err := svc.Register(context.Background(), 5, 1)
	require.NoError(t, err)
	require.NotNil(t, ticket)

	assert.Equal(t, StatusRegistered, ticket.Registration.Status)
	assert.NotEmpty(t, ticket.Registration.TicketCode)
	assert.NotEmpty(t, ticket.QRCode)
}

func TestRegisterTwiceFails(t *testing.T) {
	repo := newFakeRepo()
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{1: futureEvent(1, 10, 99)}}
	svc := newTestService(repo, eventsRepo)

	_, err := svc.Register(context.Background(), 5, 1)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegisterFullEvent(t *testing.T) {
	repo := newFakeRepo()
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{1: futureEvent(1, 1, 99)}}
	svc := newTestService(repo, eventsRepo)

	_, err := svc.Register(context.Background(), 5, 1)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), 6, 1)
	assert.ErrorIs(t, err, ErrEventFull)
}

func TestRegisterPastEvent(t *testing.T) {
	repo := newFakeRepo()
	past := futureEvent(1, 10, 99)
	past.Date = time.Now().Add(-24 * time.Hour)
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{1: past}}
	svc := newTestService(repo, eventsRepo)

	_, err := svc.Register(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrEventInPast)
}

func TestRegisterMissingEvent(t *testing.T) {
	repo := newFakeRepo()
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{}}
	svc := newTestService(repo, eventsRepo)

	_, err := svc.Register(context.Background(), 5, 42)
	assert.ErrorIs(t, err, events.ErrEventNotFound)
}

func TestCancelThenReRegister(t *testing.T) {
	repo := newFakeRepo()
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{1: futureEvent(1, 10, 99)}}
	svc := newTestService(repo, eventsRepo)

	_, err := svc.Register(context.Background(), 5, 1)
	require.NoError(t, err)

	reg, err := svc.Cancel(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, reg.Status)

	ticket, err := svc.Register(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusRegistered, ticket.Registration.Status)
}

func TestCancelledSeatFreesCapacity(t *testing.T) {
	repo := newFakeRepo()
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{1: futureEvent(1, 1, 99)}}
	svc := newTestService(repo, eventsRepo)

	_, err := svc.Register(context.Background(), 5, 1)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 5, 1)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), 6, 1)
	assert.NoError(t, err)
}

func TestCheckInByCreator(t *testing.T) {
	repo := newFakeRepo()
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{1: futureEvent(1, 10, 99)}}
	svc := newTestService(repo, eventsRepo)

	ticket, err := svc.Register(context.Background(), 5, 1)
	require.NoError(t, err)

	reg, err := svc.CheckIn(context.Background(), 99, "user", ticket.Registration.TicketCode)
	require.NoError(t, err)
	assert.Equal(t, StatusAttended, reg.Status)
	assert.NotNil(t, reg.CheckedInAt)
}

func TestCheckInByStrangerForbidden(t *testing.T) {
	repo := newFakeRepo()
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{1: futureEvent(1, 10, 99)}}
	svc := newTestService(repo, eventsRepo)

	ticket, err := svc.Register(context.Background(), 5, 1)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), 7, "user", ticket.Registration.TicketCode)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCheckInByAdmin(t *testing.T) {
	repo := newFakeRepo()
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{1: futureEvent(1, 10, 99)}}
	svc := newTestService(repo, eventsRepo)

	ticket, err := svc.Register(context.Background(), 5, 1)
	require.NoError(t, err)

	reg, err := svc.CheckIn(context.Background(), 7, "admin", ticket.Registration.TicketCode)
	require.NoError(t, err)
	assert.Equal(t, StatusAttended, reg.Status)
}

func TestCheckInTwiceFails(t *testing.T) {
	repo := newFakeRepo()
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{1: futureEvent(1, 10, 99)}}
	svc := newTestService(repo, eventsRepo)

	ticket, err := svc.Register(context.Background(), 5, 1)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), 99, "user", ticket.Registration.TicketCode)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), 99, "user", ticket.Registration.TicketCode)
	assert.ErrorIs(t, err, ErrNotCheckable)
}

func TestCancelAttendedFails(t *testing.T) {
	repo := newFakeRepo()
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{1: futureEvent(1, 10, 99)}}
	svc := newTestService(repo, eventsRepo)

	ticket, err := svc.Register(context.Background(), 5, 1)
	require.NoError(t, err)

	_, err = svc.CheckIn(context.Background(), 99, "user", ticket.Registration.TicketCode)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestGetTicketCancelledNotFound(t *testing.T) {
	repo := newFakeRepo()
	eventsRepo := &fakeEventsRepo{events: map[int64]*events.Event{1: futureEvent(1, 10, 99)}}
	svc := newTestService(repo, eventsRepo)

	_, err := svc.Register(context.Background(), 5, 1)
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), 5, 1)
	require.NoError(t, err)

	_, err = svc.GetTicket(context.Background(), 5, 1)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}
