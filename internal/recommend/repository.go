// internal/recommend/repository.go

package recommend

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gatherlyhq/gatherly-backend/internal/events"
	"github.com/gatherlyhq/gatherly-backend/internal/users"
)

// Repository is the read-only view of the store the engine computes over
type Repository interface {
	GetUserHistory(ctx context.Context, userID int64) ([]*HistoryItem, error)
	GetUserPreferences(ctx context.Context, userID int64) (users.Preferences, string, error)
	GetRegisteredEventIDs(ctx context.Context, userID int64) ([]int64, error)
	GetCoRegistrants(ctx context.Context, userID int64, limit int) ([]*CoRegistrant, error)
	GetFutureRegistrations(ctx context.Context, userIDs []int64) ([]*UserEventPair, error)
	GetNetworkEventCounts(ctx context.Context, userID int64) (map[int64]int, error)
	GetUpcomingByCategories(ctx context.Context, categories []string, limit int) ([]*events.Event, error)
	GetEventsByIDs(ctx context.Context, ids []int64) ([]*events.Event, error)
	GetUpcomingExcluding(ctx context.Context, userID int64, limit int) ([]*events.Event, error)
	GetUpcomingSameCategory(ctx context.Context, categories []string, excludeIDs []int64, limit int) ([]*events.Event, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const annotatedEventSelect = `
	SELECT e.id, e.title, e.description, e.category, e.date, e.time_str,
	       e.location, e.capacity, e.image_url, e.created_by,
	       e.created_at, e.updated_at,
	       COALESCE(r.cnt, 0) AS attendee_count
	FROM events e
	LEFT JOIN (
		SELECT event_id, COUNT(*) AS cnt
		FROM registrations
		WHERE status IN ('REGISTERED', 'ATTENDED')
		GROUP BY event_id
	) r ON r.event_id = e.id`

func (r *postgresRepository) GetUserHistory(ctx context.Context, userID int64) ([]*HistoryItem, error) {
	query := `
		SELECT reg.event_id, e.category, e.date, e.time_str, e.location,
		       reg.status, reg.created_at
		FROM registrations reg
		JOIN events e ON reg.event_id = e.id
		WHERE reg.user_id = $1
		ORDER BY reg.created_at ASC`

	var items []*HistoryItem
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *postgresRepository) GetUserPreferences(ctx context.Context, userID int64) (users.Preferences, string, error) {
	var row struct {
		Preferences users.Preferences `db:"preferences"`
		Location    *string           `db:"location"`
	}

	query := `SELECT preferences, location FROM profiles WHERE user_id = $1`
	err := r.db.GetContext(ctx, &row, query, userID)
	if err == sql.ErrNoRows {
		return users.Preferences{}, "", nil
	}
	if err != nil {
		return users.Preferences{}, "", err
	}

	location := ""
	if row.Location != nil {
		location = *row.Location
	}
	return row.Preferences, location, nil
}

func (r *postgresRepository) GetRegisteredEventIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT event_id FROM registrations
		WHERE user_id = $1 AND status IN ('REGISTERED', 'ATTENDED')`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, err
	}
	return ids, nil
}

// GetCoRegistrants finds other users who registered for any event the
// target user registered for, ranked by how many events they share.
func (r *postgresRepository) GetCoRegistrants(ctx context.Context, userID int64, limit int) ([]*CoRegistrant, error) {
	query := `
		SELECT other.user_id, COUNT(*) AS shared_count
		FROM registrations mine
		JOIN registrations other
		  ON other.event_id = mine.event_id AND other.user_id != mine.user_id
		WHERE mine.user_id = $1
		  AND mine.status IN ('REGISTERED', 'ATTENDED')
		  AND other.status IN ('REGISTERED', 'ATTENDED')
		GROUP BY other.user_id
		ORDER BY shared_count DESC, other.user_id ASC
		LIMIT $2`

	var out []*CoRegistrant
	if err := r.db.SelectContext(ctx, &out, query, userID, limit); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepository) GetFutureRegistrations(ctx context.Context, userIDs []int64) ([]*UserEventPair, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT reg.user_id, reg.event_id
		FROM registrations reg
		JOIN events e ON reg.event_id = e.id
		WHERE reg.user_id = ANY($1)
		  AND reg.status IN ('REGISTERED', 'ATTENDED')
		  AND e.date >= NOW()
		ORDER BY e.date ASC, reg.event_id ASC`

	var pairs []*UserEventPair
	if err := r.db.SelectContext(ctx, &pairs, query, pq.Array(userIDs)); err != nil {
		return nil, err
	}
	return pairs, nil
}

// GetNetworkEventCounts counts, per future event, how many of the user's
// past co-attendees are registered for it.
func (r *postgresRepository) GetNetworkEventCounts(ctx context.Context, userID int64) (map[int64]int, error) {
	query := `
		WITH network AS (
			SELECT DISTINCT other.user_id
			FROM registrations mine
			JOIN registrations other
			  ON other.event_id = mine.event_id AND other.user_id != mine.user_id
			WHERE mine.user_id = $1
			  AND mine.status = 'ATTENDED'
			  AND other.status IN ('REGISTERED', 'ATTENDED')
		)
		SELECT reg.event_id, COUNT(*) AS cnt
		FROM registrations reg
		JOIN network n ON n.user_id = reg.user_id
		JOIN events e ON reg.event_id = e.id
		WHERE reg.status IN ('REGISTERED', 'ATTENDED')
		  AND e.date >= NOW()
		GROUP BY reg.event_id`

	rows, err := r.db.QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var eventID int64
		var cnt int
		if err := rows.Scan(&eventID, &cnt); err != nil {
			return nil, err
		}
		counts[eventID] = cnt
	}
	return counts, rows.Err()
}

func (r *postgresRepository) GetUpcomingByCategories(ctx context.Context, categories []string, limit int) ([]*events.Event, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	query := annotatedEventSelect + `
		WHERE e.date >= NOW() AND e.category = ANY($1)
		ORDER BY e.date ASC, e.id ASC
		LIMIT $2`

	var out []*events.Event
	if err := r.db.SelectContext(ctx, &out, query, pq.Array(categories), limit); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepository) GetEventsByIDs(ctx context.Context, ids []int64) ([]*events.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := annotatedEventSelect + ` WHERE e.id = ANY($1)`

	var out []*events.Event
	if err := r.db.SelectContext(ctx, &out, query, pq.Array(ids)); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepository) GetUpcomingExcluding(ctx context.Context, userID int64, limit int) ([]*events.Event, error) {
	query := annotatedEventSelect + `
		WHERE e.date >= NOW()
		  AND e.id NOT IN (
			SELECT event_id FROM registrations
			WHERE user_id = $1 AND status IN ('REGISTERED', 'ATTENDED')
		  )
		ORDER BY e.date ASC, e.id ASC
		LIMIT $2`

	var out []*events.Event
	if err := r.db.SelectContext(ctx, &out, query, userID, limit); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRepository) GetUpcomingSameCategory(ctx context.Context, categories []string, excludeIDs []int64, limit int) ([]*events.Event, error) {
	if len(categories) == 0 {
		return nil, nil
	}
	if excludeIDs == nil {
		excludeIDs = []int64{}
	}

	query := annotatedEventSelect + `
		WHERE e.date >= NOW()
		  AND e.category = ANY($1)
		  AND NOT (e.id = ANY($2))
		ORDER BY e.date ASC, e.id ASC
		LIMIT $3`

	var out []*events.Event
	if err := r.db.SelectContext(ctx, &out, query, pq.Array(categories), pq.Array(excludeIDs), limit); err != nil {
		return nil, err
	}
	return out, nil
}
