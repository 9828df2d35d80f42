// internal/recommend/profile.go

package recommend

import (
	"context"
	"math"
	"sort"
	"time"
)

// ProfileBuilder aggregates a user's registration history into the
// ephemeral UserProfile the generators and scorer compute over.
type ProfileBuilder struct {
	repo     Repository
	geocoder Geocoder
}

func NewProfileBuilder(repo Repository, geocoder Geocoder) *ProfileBuilder {
	if geocoder == nil {
		geocoder = CoordinateSuffixGeocoder{}
	}
	return &ProfileBuilder{repo: repo, geocoder: geocoder}
}

// Build constructs a profile for the user. A user with no history gets a
// usable zeroed profile, never an error.
func (b *ProfileBuilder) Build(ctx context.Context, userID int64) (*UserProfile, error) {
	profile := &UserProfile{
		UserID:           userID,
		CategoryWeights:  make(map[string]float64),
		SocialPopularity: make(map[int64]int),
		Engagement:       0.5,
	}

	prefs, location, err := b.repo.GetUserPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Preferences = prefs

	if coords, ok := b.geocoder.Geocode(location); ok {
		profile.Coordinates = &coords
	}

	history, err := b.repo.GetUserHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return profile, nil
	}

	now := time.Now()
	attended := 0
	var lastActive time.Time

	for _, item := range history {
		if item.CreatedAt.After(lastActive) {
			lastActive = item.CreatedAt
		}
		if item.Status == "ATTENDED" {
			attended++
		}
		if item.Status == "CANCELLED" {
			continue
		}

		recency := 1.0
		if item.Date.Before(now) {
			daysPassed := now.Sub(item.Date).Hours() / 24
			recency = math.Max(0.1, 1-daysPassed/365)
		}

		status := 1.0
		if item.Status == "ATTENDED" {
			status = 1.2
		}

		profile.CategoryWeights[item.Category] += recency * status
		profile.DayHistogram[int(item.Date.Weekday())]++
		profile.HourHistogram[parseHour(item.TimeStr)]++
		profile.TotalPast++
	}

	profile.LastActive = &lastActive
	profile.TopCategories = rankCategories(profile.CategoryWeights)

	attendanceRate := float64(attended) / float64(len(history))
	daysSinceActive := now.Sub(lastActive).Hours() / 24
	activityRecency := math.Max(0.1, 1-daysSinceActive/90)
	profile.Engagement = 0.7*attendanceRate + 0.3*activityRecency

	counts, err := b.repo.GetNetworkEventCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.SocialPopularity = counts

	return profile, nil
}

func rankCategories(weights map[string]float64) []string {
	ranked := make([]string, 0, len(weights))
	for cat := range weights {
		ranked = append(ranked, cat)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if weights[ranked[i]] != weights[ranked[j]] {
			return weights[ranked[i]] > weights[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})
	return ranked
}
