// internal/recommend/engine_test.go

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherlyhq/gatherly-backend/internal/events"
	"github.com/gatherlyhq/gatherly-backend/internal/users"
)

// fakeRepo is an in-memory store view for engine tests
type fakeRepo struct {
	history       []*HistoryItem
	preferences   users.Preferences
	location      string
	registeredIDs []int64
	coRegistrants []*CoRegistrant
	futurePairs   []*UserEventPair
	networkCounts map[int64]int
	upcoming      []*events.Event
	byID          map[int64]*events.Event
	fallback      []*events.Event
	padding       []*events.Event

	failHistory bool
	failByIDs   bool
}

func (f *fakeRepo) GetUserHistory(ctx context.Context, userID int64) ([]*HistoryItem, error) {
	if f.failHistory {
		return nil, errors.New("store unavailable")
	}
	return f.history, nil
}

func (f *fakeRepo) GetUserPreferences(ctx context.Context, userID int64) (users.Preferences, string, error) {
	return f.preferences, f.location, nil
}

func (f *fakeRepo) GetRegisteredEventIDs(ctx context.Context, userID int64) ([]int64, error) {
	return f.registeredIDs, nil
}

func (f *fakeRepo) GetCoRegistrants(ctx context.Context, userID int64, limit int) ([]*CoRegistrant, error) {
	if len(f.coRegistrants) > limit {
		return f.coRegistrants[:limit], nil
	}
	return f.coRegistrants, nil
}

func (f *fakeRepo) GetFutureRegistrations(ctx context.Context, userIDs []int64) ([]*UserEventPair, error) {
	allowed := make(map[int64]bool, len(userIDs))
	for _, id := range userIDs {
		allowed[id] = true
	}
	var out []*UserEventPair
	for _, p := range f.futurePairs {
		if allowed[p.UserID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetNetworkEventCounts(ctx context.Context, userID int64) (map[int64]int, error) {
	if f.networkCounts == nil {
		return map[int64]int{}, nil
	}
	return f.networkCounts, nil
}

func (f *fakeRepo) GetUpcomingByCategories(ctx context.Context, categories []string, limit int) ([]*events.Event, error) {
	allowed := make(map[string]bool, len(categories))
	for _, c := range categories {
		allowed[c] = true
	}
	var out []*events.Event
	for _, e := range f.upcoming {
		if allowed[e.Category] && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetEventsByIDs(ctx context.Context, ids []int64) ([]*events.Event, error) {
	if f.failByIDs {
		return nil, errors.New("store unavailable")
	}
	var out []*events.Event
	for _, id := range ids {
		if e, ok := f.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetUpcomingExcluding(ctx context.Context, userID int64, limit int) ([]*events.Event, error) {
	if len(f.fallback) > limit {
		return f.fallback[:limit], nil
	}
	return f.fallback, nil
}

func (f *fakeRepo) GetUpcomingSameCategory(ctx context.Context, categories []string, excludeIDs []int64, limit int) ([]*events.Event, error) {
	if len(f.padding) > limit {
		return f.padding[:limit], nil
	}
	return f.padding, nil
}

func upcomingEvent(id int64, category string, daysOut int, attendees int) *events.Event {
	return &events.Event{
		ID:            id,
		Title:         "Event",
		Category:      category,
		Date:          time.Now().Add(time.Duration(daysOut) * 24 * time.Hour),
		TimeStr:       "6:00 PM",
		Location:      "Community Center",
		Capacity:      100,
		AttendeeCount: attendees,
	}
}

func TestRecommendFallbackForNewUser(t *testing.T) {
	repo := &fakeRepo{
		fallback: []*events.Event{
			upcomingEvent(1, "Tech", 2, 5),
			upcomingEvent(2, "Music", 5, 3),
		},
	}
	engine := NewEngine(repo, nil, 0)

	recs, err := engine.Recommend(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Fallback preserves nearest-first date order
	assert.Equal(t, int64(1), recs[0].ID)
	assert.Equal(t, int64(2), recs[1].ID)
}

func TestRecommendCollaborativeCandidates(t *testing.T) {
	e10 := upcomingEvent(10, "Tech", 3, 8)
	e11 := upcomingEvent(11, "Music", 4, 2)

	repo := &fakeRepo{
		history: []*HistoryItem{
			{EventID: 1, Category: "Tech", Date: time.Now().Add(-10 * 24 * time.Hour),
				TimeStr: "6:00 PM", Status: "ATTENDED", CreatedAt: time.Now().Add(-12 * 24 * time.Hour)},
		},
		registeredIDs: []int64{1},
		coRegistrants: []*CoRegistrant{
			{UserID: 7, SharedCount: 3},
			{UserID: 8, SharedCount: 1},
		},
		futurePairs: []*UserEventPair{
			{UserID: 7, EventID: 10},
			{UserID: 8, EventID: 11},
			{UserID: 8, EventID: 10},
			{UserID: 7, EventID: 1}, // already registered, must be excluded
		},
		byID: map[int64]*events.Event{10: e10, 11: e11},
	}
	engine := NewEngine(repo, nil, 0)

	recs, err := engine.Recommend(context.Background(), 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	assert.Contains(t, ids, int64(10))
	assert.Contains(t, ids, int64(11))
	assert.NotContains(t, ids, int64(1))
}

func TestRecommendDeterministic(t *testing.T) {
	e10 := upcomingEvent(10, "Tech", 3, 8)
	e11 := upcomingEvent(11, "Tech", 4, 8)
	e12 := upcomingEvent(12, "Tech", 5, 8)

	repo := &fakeRepo{
		history: []*HistoryItem{
			{EventID: 1, Category: "Tech", Date: time.Now().Add(-10 * 24 * time.Hour),
				TimeStr: "6:00 PM", Status: "ATTENDED", CreatedAt: time.Now().Add(-12 * 24 * time.Hour)},
		},
		registeredIDs: []int64{1},
		upcoming:      []*events.Event{e10, e11, e12},
		byID:          map[int64]*events.Event{10: e10, 11: e11, 12: e12},
	}
	engine := NewEngine(repo, nil, 0)

	first, err := engine.Recommend(context.Background(), 1, 10)
	require.NoError(t, err)
	second, err := engine.Recommend(context.Background(), 1, 10)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestRecommendLimitApplied(t *testing.T) {
	byID := map[int64]*events.Event{}
	var upcoming []*events.Event
	for i := int64(10); i < 20; i++ {
		e := upcomingEvent(i, "Tech", int(i), 5)
		byID[i] = e
		upcoming = append(upcoming, e)
	}

	repo := &fakeRepo{
		history: []*HistoryItem{
			{EventID: 1, Category: "Tech", Date: time.Now().Add(-10 * 24 * time.Hour),
				TimeStr: "6:00 PM", Status: "ATTENDED", CreatedAt: time.Now().Add(-12 * 24 * time.Hour)},
		},
		registeredIDs: []int64{1},
		upcoming:      upcoming,
		byID:          byID,
	}
	engine := NewEngine(repo, nil, 0)

	recs, err := engine.Recommend(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestRecommendErrorPropagates(t *testing.T) {
	repo := &fakeRepo{failHistory: true}
	engine := NewEngine(repo, nil, 0)

	_, err := engine.Recommend(context.Background(), 1, 10)
	assert.Error(t, err)
}

func TestServiceSwallowsEngineErrors(t *testing.T) {
	repo := &fakeRepo{failHistory: true}
	engine := NewEngine(repo, nil, 0)
	svc := NewService(engine, nil, time.Minute, 20)

	recs := svc.GetRecommendations(context.Background(), 1, 10)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestCollaborativeEmptyHistoryYieldsNoCandidates(t *testing.T) {
	repo := &fakeRepo{}

	ids, err := collaborativeCandidates(context.Background(), repo, 1, 20)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCollaborativeScoresBySimilaritySum(t *testing.T) {
	repo := &fakeRepo{
		coRegistrants: []*CoRegistrant{
			{UserID: 7, SharedCount: 3},
			{UserID: 8, SharedCount: 1},
		},
		futurePairs: []*UserEventPair{
			{UserID: 8, EventID: 20}, // score 1
			{UserID: 7, EventID: 21}, // score 3
			{UserID: 8, EventID: 21}, // score 3+1=4
		},
	}

	ids, err := collaborativeCandidates(context.Background(), repo, 1, 20)
	require.NoError(t, err)
	require.Equal(t, []int64{21, 20}, ids)
}

func TestContentCandidatesRankByAffinity(t *testing.T) {
	profile := &UserProfile{
		CategoryWeights: map[string]float64{"Tech": 2.0, "Music": 0.5},
		TopCategories:   []string{"Tech", "Music"},
	}

	repo := &fakeRepo{
		upcoming: []*events.Event{
			upcomingEvent(1, "Music", 3, 0),
			upcomingEvent(2, "Tech", 4, 0),
		},
	}

	ids, err := contentCandidates(context.Background(), repo, CoordinateSuffixGeocoder{}, profile, 10)
	require.NoError(t, err)
	require.Equal(t, []int64{2, 1}, ids)
}

func TestContentCandidatesEmptyWithoutCategories(t *testing.T) {
	profile := &UserProfile{CategoryWeights: map[string]float64{}}

	ids, err := contentCandidates(context.Background(), &fakeRepo{}, CoordinateSuffixGeocoder{}, profile, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
