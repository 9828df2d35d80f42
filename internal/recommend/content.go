// internal/recommend/content.go

package recommend

import (
	"context"
	"math"
	"sort"

	"github.com/gatherlyhq/gatherly-backend/internal/events"
)

// contentCandidates surfaces upcoming events in the user's top
// categories, scored by category affinity, time-of-day/day-of-week
// match, geographic proximity and popularity.
func contentCandidates(ctx context.Context, repo Repository, geocoder Geocoder, profile *UserProfile, limit int) ([]int64, error) {
	if len(profile.TopCategories) == 0 {
		return nil, nil
	}

	candidates, err := repo.GetUpcomingByCategories(ctx, profile.TopCategories, 2*limit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	scores := make(map[int64]float64, len(candidates))
	order := make([]int64, 0, len(candidates))
	for _, e := range candidates {
		scores[e.ID] = contentScore(e, profile, geocoder)
		order = append(order, e.ID)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})

	if len(order) > limit {
		order = order[:limit]
	}
	return order, nil
}

func contentScore(e *events.Event, profile *UserProfile, geocoder Geocoder) float64 {
	score := 1 + profile.CategoryWeights[e.Category]

	dayPref := profile.DayPref(e.Date.Weekday())
	hourPref := profile.HourPref(parseHour(e.TimeStr))
	score *= 1 + 0.2*dayPref + 0.2*hourPref

	score *= contentProximityMultiplier(e, profile, geocoder)

	popularity := float64(e.AttendeeCount)
	score *= 1 + math.Log10(1+popularity)*0.1

	return score
}

// contentProximityMultiplier is 1.5 inside 10km, 1.2 inside 30km and
// neutral otherwise. It only applies when both sides resolve to
// coordinates.
func contentProximityMultiplier(e *events.Event, profile *UserProfile, geocoder Geocoder) float64 {
	if profile.Coordinates == nil {
		return 1.0
	}
	eventCoords, ok := geocoder.Geocode(e.Location)
	if !ok {
		return 1.0
	}

	distance := haversineKm(*profile.Coordinates, eventCoords)
	switch {
	case distance < 10:
		return 1.5
	case distance < 30:
		return 1.2
	default:
		return 1.0
	}
}
