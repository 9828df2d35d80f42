// internal/events/repository.go

package events

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	List(ctx context.Context, params *ListParams) ([]*Event, error)
	Count(ctx context.Context, params *ListParams) (int64, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]string, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// attendee_count counts claims on a seat: REGISTERED plus ATTENDED
const eventSelect = `
	SELECT e.id, e.title, e.description, e.category, e.date, e.time_str,
	       e.location, e.capacity, e.image_url, e.created_by,
	       e.created_at, e.updated_at,
	       u.username AS creator_username,
	       COALESCE(r.cnt, 0) AS attendee_count
	FROM events e
	JOIN users u ON e.created_by = u.id
	LEFT JOIN (
		SELECT event_id, COUNT(*) AS cnt
		FROM registrations
		WHERE status IN ('REGISTERED', 'ATTENDED')
		GROUP BY event_id
	) r ON r.event_id = e.id`

func (r *postgresRepository) Create(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO events (title, description, category, date, time_str, location, capacity, image_url, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(
		ctx, query,
		event.Title, event.Description, event.Category, event.Date,
		event.TimeStr, event.Location, event.Capacity, event.ImageURL,
		event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Event, error) {
	var event Event
	query := eventSelect + ` WHERE e.id = $1`

	err := r.db.GetContext(ctx, &event, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

func (r *postgresRepository) List(ctx context.Context, params *ListParams) ([]*Event, error) {
	query := eventSelect + ` WHERE 1=1`
	args := []interface{}{}
	query, args = appendFilters(query, args, params)
	query += fmt.Sprintf(" ORDER BY e.date ASC, e.id ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	var events []*Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *postgresRepository) Count(ctx context.Context, params *ListParams) (int64, error) {
	query := `SELECT COUNT(*) FROM events e WHERE 1=1`
	args := []interface{}{}
	query, args = appendFilters(query, args, params)

	var count int64
	err := r.db.GetContext(ctx, &count, query, args...)
	return count, err
}

func appendFilters(query string, args []interface{}, params *ListParams) (string, []interface{}) {
	if params.Category != "" {
		args = append(args, params.Category)
		query += fmt.Sprintf(" AND e.category = $%d", len(args))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		query += fmt.Sprintf(" AND (e.title ILIKE $%d OR e.description ILIKE $%d)", len(args), len(args))
	}
	if params.From != nil {
		args = append(args, *params.From)
		query += fmt.Sprintf(" AND e.date >= $%d", len(args))
	}
	if params.To != nil {
		args = append(args, *params.To)
		query += fmt.Sprintf(" AND e.date <= $%d", len(args))
	}
	if params.UpcomingOnly {
		query += " AND e.date >= NOW()"
	}
	if params.CreatedBy > 0 {
		args = append(args, params.CreatedBy)
		query += fmt.Sprintf(" AND e.created_by = $%d", len(args))
	}
	return query, args
}

func (r *postgresRepository) Update(ctx context.Context, event *Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, category = $4, date = $5,
		    time_str = $6, location = $7, capacity = $8, image_url = $9,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`

	result, err := r.db.ExecContext(
		ctx, query,
		event.ID, event.Title, event.Description, event.Category,
		event.Date, event.TimeStr, event.Location, event.Capacity,
		event.ImageURL,
	)
	if err != nil {
		return err
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *postgresRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	query := `SELECT DISTINCT category FROM events ORDER BY category`
	err := r.db.SelectContext(ctx, &categories, query)
	return categories, err
}
