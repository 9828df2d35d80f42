// internal/recommend/scorer_test.go

package recommend

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherlyhq/gatherly-backend/internal/events"
	"github.com/gatherlyhq/gatherly-backend/internal/users"
)

// neutralProfile produces no category, time, social or engagement
// signal, so a score isolates whichever factor the test drives.
func neutralProfile() *UserProfile {
	return &UserProfile{
		CategoryWeights:  map[string]float64{},
		SocialPopularity: map[int64]int{},
		Engagement:       0.5,
	}
}

func neutralEvent(id int64, category, location string) *events.Event {
	return &events.Event{
		ID:       id,
		Category: category,
		Date:     time.Now().Add(30 * 24 * time.Hour),
		TimeStr:  "",
		Location: location,
	}
}

func TestScoreNeutralBaseline(t *testing.T) {
	s := NewScorer(nil, 0)
	score := s.Score(neutralEvent(1, "Tech", "somewhere"), neutralProfile())
	assert.InDelta(t, 1.0, score, 0.0001)
}

func TestScoreExplicitPreferenceDoubles(t *testing.T) {
	s := NewScorer(nil, 0)
	profile := neutralProfile()
	profile.Preferences = users.Preferences{Categories: []string{"Tech"}}

	score := s.Score(neutralEvent(1, "Tech", "somewhere"), profile)
	assert.InDelta(t, 2.0, score, 0.0001)

	score = s.Score(neutralEvent(2, "Music", "somewhere"), profile)
	assert.InDelta(t, 1.0, score, 0.0001)
}

func TestScoreProximityWithinMax(t *testing.T) {
	s := NewScorer(nil, 50)
	profile := neutralProfile()
	profile.Coordinates = &Coordinates{Lat: 0, Lng: 0}

	// ~11.1km north of the user
	score := s.Score(neutralEvent(1, "Tech", "venue (0.1,0)"), profile)

	d := haversineKm(Coordinates{Lat: 0, Lng: 0}, Coordinates{Lat: 0.1, Lng: 0})
	expected := 1 + (50-d)/50
	assert.InDelta(t, expected, score, 0.001)
	assert.Less(t, score, 2.0)
	assert.Greater(t, score, 1.0)
}

func TestScoreProximityBoundaryInclusive(t *testing.T) {
	profile := neutralProfile()
	profile.Coordinates = &Coordinates{Lat: 0, Lng: 0}

	// Set max distance to exactly the event's distance: the boundary is
	// inclusive, so the multiplier collapses to 1.0, not the 0.5 penalty.
	d := haversineKm(Coordinates{Lat: 0, Lng: 0}, Coordinates{Lat: 0.45, Lng: 0})
	profile.Preferences = users.Preferences{MaxDistanceKm: d}

	s := NewScorer(nil, 50)
	score := s.Score(neutralEvent(1, "Tech", "venue (0.45,0)"), profile)
	assert.InDelta(t, 1.0, score, 0.0001)
}

func TestScoreProximityBeyondMaxPenalized(t *testing.T) {
	s := NewScorer(nil, 50)
	profile := neutralProfile()
	profile.Coordinates = &Coordinates{Lat: 0, Lng: 0}

	// ~111km away, well beyond the 50km default
	score := s.Score(neutralEvent(1, "Tech", "venue (1.0,0)"), profile)
	assert.InDelta(t, 0.5, score, 0.0001)
}

func TestScoreProximityNeutralWithoutCoords(t *testing.T) {
	s := NewScorer(nil, 50)

	// User has no coordinates
	score := s.Score(neutralEvent(1, "Tech", "venue (1.0,0)"), neutralProfile())
	assert.InDelta(t, 1.0, score, 0.0001)

	// Event location is not geocodable
	profile := neutralProfile()
	profile.Coordinates = &Coordinates{Lat: 0, Lng: 0}
	score = s.Score(neutralEvent(2, "Tech", "unknown venue"), profile)
	assert.InDelta(t, 1.0, score, 0.0001)
}

func TestScorePopularity(t *testing.T) {
	s := NewScorer(nil, 0)
	e := neutralEvent(1, "Tech", "somewhere")
	e.AttendeeCount = 100

	score := s.Score(e, neutralProfile())
	assert.InDelta(t, 1+math.Log10(100)*0.2, score, 0.0001)
}

func TestScoreSocialPopularity(t *testing.T) {
	s := NewScorer(nil, 0)
	profile := neutralProfile()
	profile.SocialPopularity[1] = 3

	score := s.Score(neutralEvent(1, "Tech", "somewhere"), profile)
	assert.InDelta(t, 1+0.3*3, score, 0.0001)
}

func TestScoreEngagementBias(t *testing.T) {
	s := NewScorer(nil, 0)

	// Highly engaged users get a boost on niche events
	niche := neutralProfile()
	niche.Engagement = 0.9
	e := neutralEvent(1, "Tech", "somewhere")
	e.AttendeeCount = 5
	expected := (1 + math.Log10(5)*0.2) * 1.2
	assert.InDelta(t, expected, s.Score(e, niche), 0.0001)

	// Barely engaged users get a boost on mainstream events
	casual := neutralProfile()
	casual.Engagement = 0.2
	e = neutralEvent(2, "Tech", "somewhere")
	e.AttendeeCount = 50
	expected = (1 + math.Log10(50)*0.2) * 1.2
	assert.InDelta(t, expected, s.Score(e, casual), 0.0001)

	// Middling engagement gets no bias either way
	e = neutralEvent(3, "Tech", "somewhere")
	e.AttendeeCount = 50
	expected = 1 + math.Log10(50)*0.2
	assert.InDelta(t, expected, s.Score(e, neutralProfile()), 0.0001)
}

func TestScoreNearTermBoost(t *testing.T) {
	s := NewScorer(nil, 0)
	e := neutralEvent(1, "Tech", "somewhere")
	e.Date = time.Now().Add(3 * 24 * time.Hour)

	score := s.Score(e, neutralProfile())
	assert.InDelta(t, 1.3, score, 0.0001)
}

func TestScoreInactivityHorizonBoost(t *testing.T) {
	s := NewScorer(nil, 0)
	profile := neutralProfile()
	lastActive := time.Now().Add(-30 * 24 * time.Hour)
	profile.LastActive = &lastActive

	// Inactive user, far-out event: nudge toward planning ahead
	e := neutralEvent(1, "Tech", "somewhere")
	e.Date = time.Now().Add(30 * 24 * time.Hour)
	assert.InDelta(t, 1.2, s.Score(e, profile), 0.0001)

	// Same user, near-term event: near-term boost applies instead
	e = neutralEvent(2, "Tech", "somewhere")
	e.Date = time.Now().Add(3 * 24 * time.Hour)
	assert.InDelta(t, 1.3, s.Score(e, profile), 0.0001)
}

func TestScoreFullScenario(t *testing.T) {
	now := time.Now()
	repo := &fakeRepo{
		history: []*HistoryItem{
			{EventID: 1, Category: "Tech", Date: now.Add(-30 * 24 * time.Hour),
				TimeStr: "6:00 PM", Status: "ATTENDED", CreatedAt: now.Add(-30 * 24 * time.Hour)},
		},
		preferences: users.Preferences{Categories: []string{"Tech"}},
	}

	builder := NewProfileBuilder(repo, nil)
	profile, err := builder.Build(context.Background(), 1)
	require.NoError(t, err)

	e := neutralEvent(10, "Tech", "somewhere")
	e.Date = now.Add(3 * 24 * time.Hour)
	e.TimeStr = "6:00 PM"

	s := NewScorer(nil, 50)
	score := s.Score(e, profile)

	weight := 1.2 * (1.0 - 30.0/365.0)
	timeFactor := 1 + 0.1*profile.DayPref(e.Date.Weekday()) + 0.1*profile.HourPref(18)
	// explicit pref * history weight * time match * niche bias * near-term boost
	expected := 2.0 * (1 + weight) * timeFactor * 1.2 * 1.3
	assert.InDelta(t, expected, score, 0.01)
}

func TestRankStableOnTies(t *testing.T) {
	s := NewScorer(nil, 0)
	profile := neutralProfile()

	candidates := []*events.Event{
		neutralEvent(3, "Tech", "somewhere"),
		neutralEvent(1, "Tech", "somewhere"),
		neutralEvent(2, "Tech", "somewhere"),
	}

	ranked := s.Rank(candidates, profile)
	require.Len(t, ranked, 3)
	assert.Equal(t, int64(3), ranked[0].ID)
	assert.Equal(t, int64(1), ranked[1].ID)
	assert.Equal(t, int64(2), ranked[2].ID)
}
