// internal/admin/stats.go

package admin

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// PlatformStats is the aggregate snapshot the admin dashboard and the
// assistant draw from.
type PlatformStats struct {
	TotalUsers           int64       `json:"total_users"`
	ActiveUsers          int64       `json:"active_users"`
	NewUsersThisWeek     int64       `json:"new_users_this_week"`
	TotalEvents          int64       `json:"total_events"`
	UpcomingEvents       int64       `json:"upcoming_events"`
	TotalRegistrations   int64       `json:"total_registrations"`
	ActiveRegistrations  int64       `json:"active_registrations"`
	CancellationRate     float64     `json:"cancellation_rate"`
	AttendanceRate       float64     `json:"attendance_rate"`
	AverageFillRate      float64     `json:"average_fill_rate"`
	TopCategories        []string    `json:"top_categories"`
	RegistrationsByDay   []DayCount  `json:"registrations_by_day"`
	PeakSignupHours      []HourCount `json:"peak_signup_hours"`
	LastUpdated          time.Time   `json:"last_updated"`
}

// DayCount is one day's registration volume
type DayCount struct {
	Day   time.Time `json:"day" db:"day"`
	Count int64     `json:"count" db:"count"`
}

// HourCount is registration volume for one hour of the day
type HourCount struct {
	Hour  int   `json:"hour" db:"hour"`
	Count int64 `json:"count" db:"count"`
}

type StatsService struct {
	db *sqlx.DB
}

func NewStatsService(db *sqlx.DB) *StatsService {
	return &StatsService{db: db}
}

func (s *StatsService) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	stats := &PlatformStats{
		LastUpdated: time.Now(),
	}

	userQuery := `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN is_active = TRUE THEN 1 END) as active,
			COUNT(CASE WHEN created_at > NOW() - INTERVAL '7 days' THEN 1 END) as new_this_week
		FROM users
	`
	err := s.db.QueryRowContext(ctx, userQuery).Scan(
		&stats.TotalUsers,
		&stats.ActiveUsers,
		&stats.NewUsersThisWeek,
	)
	if err != nil {
		return nil, err
	}

	eventQuery := `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN date >= NOW() THEN 1 END) as upcoming
		FROM events
	`
	err = s.db.QueryRowContext(ctx, eventQuery).Scan(
		&stats.TotalEvents,
		&stats.UpcomingEvents,
	)
	if err != nil {
		return nil, err
	}

	regQuery := `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN status IN ('REGISTERED', 'ATTENDED') THEN 1 END) as active,
			COALESCE(COUNT(CASE WHEN status = 'CANCELLED' THEN 1 END)::FLOAT /
				NULLIF(COUNT(*), 0), 0) as cancellation_rate,
			COALESCE(COUNT(CASE WHEN status = 'ATTENDED' THEN 1 END)::FLOAT /
				NULLIF(COUNT(CASE WHEN status IN ('REGISTERED', 'ATTENDED') THEN 1 END), 0), 0) as attendance_rate
		FROM registrations
	`
	err = s.db.QueryRowContext(ctx, regQuery).Scan(
		&stats.TotalRegistrations,
		&stats.ActiveRegistrations,
		&stats.CancellationRate,
		&stats.AttendanceRate,
	)
	if err != nil {
		return nil, err
	}

	fillQuery := `
		SELECT COALESCE(AVG(cnt::FLOAT / NULLIF(capacity, 0)), 0)
		FROM (
			SELECT e.capacity, COUNT(r.id) as cnt
			FROM events e
			LEFT JOIN registrations r
			  ON r.event_id = e.id AND r.status IN ('REGISTERED', 'ATTENDED')
			GROUP BY e.id, e.capacity
		) filled
	`
	err = s.db.GetContext(ctx, &stats.AverageFillRate, fillQuery)
	if err != nil {
		return nil, err
	}

	categoryQuery := `
		SELECT category FROM events
		GROUP BY category
		ORDER BY COUNT(*) DESC, category ASC
		LIMIT 5
	`
	err = s.db.SelectContext(ctx, &stats.TopCategories, categoryQuery)
	if err != nil {
		return nil, err
	}

	dailyQuery := `
		SELECT date_trunc('day', created_at) as day, COUNT(*) as count
		FROM registrations
		WHERE created_at > NOW() - INTERVAL '30 days'
		GROUP BY day
		ORDER BY day ASC
	`
	err = s.db.SelectContext(ctx, &stats.RegistrationsByDay, dailyQuery)
	if err != nil {
		return nil, err
	}

	hourQuery := `
		SELECT EXTRACT(HOUR FROM created_at)::INT as hour, COUNT(*) as count
		FROM registrations
		GROUP BY hour
		ORDER BY count DESC, hour ASC
		LIMIT 3
	`
	err = s.db.SelectContext(ctx, &stats.PeakSignupHours, hourQuery)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
