// internal/recommend/scorer.go

package recommend

import (
	"math"
	"sort"
	"time"

	"github.com/gatherlyhq/gatherly-backend/internal/events"
)

// DefaultMaxDistanceKm bounds the proximity boost when the user has not
// declared a maximum distance.
const DefaultMaxDistanceKm = 50.0

// Scorer re-scores a merged candidate set against the full user profile
type Scorer struct {
	geocoder      Geocoder
	maxDistanceKm float64
	now           func() time.Time
}

func NewScorer(geocoder Geocoder, maxDistanceKm float64) *Scorer {
	if geocoder == nil {
		geocoder = CoordinateSuffixGeocoder{}
	}
	if maxDistanceKm <= 0 {
		maxDistanceKm = DefaultMaxDistanceKm
	}
	return &Scorer{
		geocoder:      geocoder,
		maxDistanceKm: maxDistanceKm,
		now:           time.Now,
	}
}

// Rank sorts candidates descending by score. The sort is stable so that
// equal scores keep their input order and repeated calls over unchanged
// data return the same list.
func (s *Scorer) Rank(candidates []*events.Event, profile *UserProfile) []*events.Event {
	ranked := make([]*events.Event, len(candidates))
	copy(ranked, candidates)

	scores := make(map[int64]float64, len(ranked))
	for _, e := range ranked {
		scores[e.ID] = s.Score(e, profile)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].ID] > scores[ranked[j].ID]
	})
	return ranked
}

// Score computes the final multiplicative score for one candidate event
func (s *Scorer) Score(e *events.Event, profile *UserProfile) float64 {
	score := 1.0

	for _, cat := range profile.Preferences.Categories {
		if cat == e.Category {
			score *= 2.0
			break
		}
	}

	score *= 1 + profile.CategoryWeights[e.Category]

	score *= s.proximityMultiplier(e, profile)

	dayPref := profile.DayPref(e.Date.Weekday())
	hourPref := profile.HourPref(parseHour(e.TimeStr))
	score *= 1 + 0.1*dayPref + 0.1*hourPref

	attendees := e.AttendeeCount
	if attendees > 0 {
		score *= 1 + math.Log10(float64(attendees))*0.2
	}

	if social := profile.SocialPopularity[e.ID]; social > 0 {
		score *= 1 + 0.3*float64(social)
	}

	if profile.Engagement > 0.7 && attendees < 10 {
		score *= 1.2
	} else if profile.Engagement < 0.3 && attendees > 20 {
		score *= 1.2
	}

	now := s.now()
	daysOut := e.Date.Sub(now).Hours() / 24
	if daysOut >= 0 && daysOut <= 7 {
		score *= 1.3
	}

	if profile.LastActive != nil {
		inactiveDays := now.Sub(*profile.LastActive).Hours() / 24
		if inactiveDays > 14 && daysOut > 14 {
			score *= 1.2
		}
	}

	return score
}

// proximityMultiplier rewards events inside the user's max distance and
// penalizes ones beyond it. Events at exactly the max distance are not
// penalized. Without coordinates on both sides the multiplier is neutral.
func (s *Scorer) proximityMultiplier(e *events.Event, profile *UserProfile) float64 {
	if profile.Coordinates == nil {
		return 1.0
	}
	eventCoords, ok := s.geocoder.Geocode(e.Location)
	if !ok {
		return 1.0
	}

	maxDistance := s.maxDistanceKm
	if profile.Preferences.MaxDistanceKm > 0 {
		maxDistance = profile.Preferences.MaxDistanceKm
	}

	distance := haversineKm(*profile.Coordinates, eventCoords)
	if distance <= maxDistance {
		return 1 + (maxDistance-distance)/maxDistance
	}
	return 0.5
}
