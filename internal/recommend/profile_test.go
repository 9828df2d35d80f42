// internal/recommend/profile_test.go

package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherlyhq/gatherly-backend/internal/users"
)

func TestBuildProfileEmptyHistory(t *testing.T) {
	repo := &fakeRepo{}
	builder := NewProfileBuilder(repo, nil)

	profile, err := builder.Build(context.Background(), 1)
	require.NoError(t, err)

	assert.Empty(t, profile.CategoryWeights)
	assert.Empty(t, profile.TopCategories)
	assert.Equal(t, 0.5, profile.Engagement)
	assert.Nil(t, profile.LastActive)
	assert.Zero(t, profile.TotalPast)
}

func TestBuildProfileCategoryWeights(t *testing.T) {
	now := time.Now()
	repo := &fakeRepo{
		history: []*HistoryItem{
			{EventID: 1, Category: "Tech", Date: now.Add(-30 * 24 * time.Hour),
				TimeStr: "6:00 PM", Status: "ATTENDED", CreatedAt: now.Add(-31 * 24 * time.Hour)},
		},
	}
	builder := NewProfileBuilder(repo, nil)

	profile, err := builder.Build(context.Background(), 1)
	require.NoError(t, err)

	// attended event 30 days old: 1.2 * (1 - 30/365)
	assert.InDelta(t, 1.2*(1.0-30.0/365.0), profile.CategoryWeights["Tech"], 0.01)
	assert.Equal(t, []string{"Tech"}, profile.TopCategories)
	assert.Equal(t, 1, profile.TotalPast)
}

func TestBuildProfileRecencyFactor(t *testing.T) {
	now := time.Now()
	repo := &fakeRepo{
		history: []*HistoryItem{
			{EventID: 1, Category: "Future", Date: now.Add(10 * 24 * time.Hour),
				TimeStr: "6:00 PM", Status: "REGISTERED", CreatedAt: now},
			{EventID: 2, Category: "Ancient", Date: now.Add(-10 * 365 * 24 * time.Hour),
				TimeStr: "6:00 PM", Status: "REGISTERED", CreatedAt: now},
		},
	}
	builder := NewProfileBuilder(repo, nil)

	profile, err := builder.Build(context.Background(), 1)
	require.NoError(t, err)

	// Future events score full weight, very old ones hit the 0.1 floor
	assert.InDelta(t, 1.0, profile.CategoryWeights["Future"], 0.001)
	assert.InDelta(t, 0.1, profile.CategoryWeights["Ancient"], 0.001)
}

func TestBuildProfileCancelledExcludedFromWeights(t *testing.T) {
	now := time.Now()
	repo := &fakeRepo{
		history: []*HistoryItem{
			{EventID: 1, Category: "Tech", Date: now.Add(24 * time.Hour),
				TimeStr: "6:00 PM", Status: "CANCELLED", CreatedAt: now},
		},
	}
	builder := NewProfileBuilder(repo, nil)

	profile, err := builder.Build(context.Background(), 1)
	require.NoError(t, err)

	assert.Empty(t, profile.CategoryWeights)
	assert.Zero(t, profile.TotalPast)
	// Cancelled registrations still count as activity
	assert.NotNil(t, profile.LastActive)
}

func TestBuildProfileHistograms(t *testing.T) {
	now := time.Now()
	date := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC) // a Monday
	repo := &fakeRepo{
		history: []*HistoryItem{
			{EventID: 1, Category: "Tech", Date: date, TimeStr: "7:30 PM",
				Status: "REGISTERED", CreatedAt: now},
			{EventID: 2, Category: "Tech", Date: date.Add(7 * 24 * time.Hour), TimeStr: "7:00 PM",
				Status: "REGISTERED", CreatedAt: now},
		},
	}
	builder := NewProfileBuilder(repo, nil)

	profile, err := builder.Build(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 2, profile.DayHistogram[int(time.Monday)])
	assert.Equal(t, 2, profile.HourHistogram[19])
	assert.Equal(t, 1.0, profile.DayPref(time.Monday))
	assert.Equal(t, 1.0, profile.HourPref(19))
	assert.Equal(t, 0.0, profile.DayPref(time.Friday))
}

func TestBuildProfileEngagement(t *testing.T) {
	now := time.Now()
	repo := &fakeRepo{
		history: []*HistoryItem{
			{EventID: 1, Category: "Tech", Date: now.Add(-40 * 24 * time.Hour),
				TimeStr: "6:00 PM", Status: "ATTENDED", CreatedAt: now.Add(-30 * 24 * time.Hour)},
		},
	}
	builder := NewProfileBuilder(repo, nil)

	profile, err := builder.Build(context.Background(), 1)
	require.NoError(t, err)

	// attendance rate 1.0, last active 30 days ago:
	// 0.7*1.0 + 0.3*(1 - 30/90)
	assert.InDelta(t, 0.7+0.3*(1.0-30.0/90.0), profile.Engagement, 0.01)
}

func TestBuildProfileCoordinatesFromLocation(t *testing.T) {
	repo := &fakeRepo{location: "Springfield (40.71,-74.00)"}
	builder := NewProfileBuilder(repo, nil)

	profile, err := builder.Build(context.Background(), 1)
	require.NoError(t, err)

	require.NotNil(t, profile.Coordinates)
	assert.InDelta(t, 40.71, profile.Coordinates.Lat, 0.0001)
}

func TestBuildProfilePreferencesCarried(t *testing.T) {
	repo := &fakeRepo{
		preferences: users.Preferences{Categories: []string{"Tech"}, MaxDistanceKm: 25},
	}
	builder := NewProfileBuilder(repo, nil)

	profile, err := builder.Build(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{"Tech"}, profile.Preferences.Categories)
	assert.Equal(t, 25.0, profile.Preferences.MaxDistanceKm)
}
