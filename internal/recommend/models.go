// internal/recommend/models.go

package recommend

import (
	"time"

	"github.com/gatherlyhq/gatherly-backend/internal/users"
)

// Coordinates is a geographic point
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HistoryItem is one registration joined with its event summary
type HistoryItem struct {
	EventID   int64     `db:"event_id"`
	Category  string    `db:"category"`
	Date      time.Time `db:"date"`
	TimeStr   string    `db:"time_str"`
	Location  string    `db:"location"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// CoRegistrant is another user sharing registrations with the target user
type CoRegistrant struct {
	UserID      int64 `db:"user_id"`
	SharedCount int   `db:"shared_count"`
}

// UserEventPair maps a user to one of their future registrations
type UserEventPair struct {
	UserID  int64 `db:"user_id"`
	EventID int64 `db:"event_id"`
}

// UserProfile is the per-request aggregate of a user's history and
// declared preferences. It is rebuilt on every recommendation call and
// never persisted.
type UserProfile struct {
	UserID           int64
	CategoryWeights  map[string]float64
	TopCategories    []string
	Coordinates      *Coordinates
	DayHistogram     [7]int
	HourHistogram    [24]int
	TotalPast        int
	SocialPopularity map[int64]int
	Engagement       float64
	LastActive       *time.Time
	Preferences      users.Preferences
}

// DayPref returns the share of past registrations on the given weekday
func (p *UserProfile) DayPref(day time.Weekday) float64 {
	if p.TotalPast == 0 {
		return 0
	}
	return float64(p.DayHistogram[int(day)]) / float64(p.TotalPast)
}

// HourPref returns the share of past registrations at the given hour
func (p *UserProfile) HourPref(hour int) float64 {
	if p.TotalPast == 0 || hour < 0 || hour > 23 {
		return 0
	}
	return float64(p.HourHistogram[hour]) / float64(p.TotalPast)
}
