// internal/registrations/repository.go

package registrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id int64) (*Registration, error)
	GetByUserAndEvent(ctx context.Context, userID, eventID int64) (*Registration, error)
	GetByTicketCode(ctx context.Context, code string) (*Registration, error)
	ListByUser(ctx context.Context, params *ListParams) ([]*Registration, error)
	ListByEvent(ctx context.Context, params *ListParams) ([]*Registration, error)
	CountActive(ctx context.Context, eventID int64) (int, error)
	UpdateStatus(ctx context.Context, id int64, status string, checkedIn bool) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

const registrationSelect = `
	SELECT r.id, r.user_id, r.event_id, r.status, r.ticket_code,
	       r.created_at, r.updated_at, r.checked_in_at,
	       e.title AS event_title, e.date AS event_date, e.location AS event_location,
	       u.username, u.email
	FROM registrations r
	JOIN events e ON r.event_id = e.id
	JOIN users u ON r.user_id = u.id`

func (r *postgresRepository) Create(ctx context.Context, reg *Registration) error {
	query := `
		INSERT INTO registrations (user_id, event_id, status, ticket_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(
		ctx, query,
		reg.UserID, reg.EventID, reg.Status, reg.TicketCode,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrAlreadyRegistered
	}
	return err
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Registration, error) {
	var reg Registration
	query := registrationSelect + ` WHERE r.id = $1`

	err := r.db.GetContext(ctx, &reg, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

func (r *postgresRepository) GetByUserAndEvent(ctx context.Context, userID, eventID int64) (*Registration, error) {
	var reg Registration
	query := registrationSelect + ` WHERE r.user_id = $1 AND r.event_id = $2`

	err := r.db.GetContext(ctx, &reg, query, userID, eventID)
	if err == sql.ErrNoRows {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

func (r *postgresRepository) GetByTicketCode(ctx context.Context, code string) (*Registration, error) {
	var reg Registration
	query := registrationSelect + ` WHERE r.ticket_code = $1`

	err := r.db.GetContext(ctx, &reg, query, code)
	if err == sql.ErrNoRows {
		return nil, ErrRegistrationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return &reg, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, params *ListParams) ([]*Registration, error) {
	query := registrationSelect + ` WHERE r.user_id = $1`
	args := []interface{}{params.UserID}

	if params.Status != "" {
		args = append(args, params.Status)
		query += fmt.Sprintf(" AND r.status = $%d", len(args))
	}

	query += fmt.Sprintf(" ORDER BY e.date DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	var regs []*Registration
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *postgresRepository) ListByEvent(ctx context.Context, params *ListParams) ([]*Registration, error) {
	query := registrationSelect + ` WHERE r.event_id = $1`
	args := []interface{}{params.EventID}

	if params.Status != "" {
		args = append(args, params.Status)
		query += fmt.Sprintf(" AND r.status = $%d", len(args))
	}

	query += fmt.Sprintf(" ORDER BY r.created_at ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	var regs []*Registration
	if err := r.db.SelectContext(ctx, &regs, query, args...); err != nil {
		return nil, err
	}
	return regs, nil
}

// CountActive counts seats held on an event: REGISTERED plus ATTENDED
func (r *postgresRepository) CountActive(ctx context.Context, eventID int64) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM registrations
		WHERE event_id = $1 AND status IN ('REGISTERED', 'ATTENDED')`

	err := r.db.GetContext(ctx, &count, query, eventID)
	return count, err
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, id int64, status string, checkedIn bool) error {
	var query string
	if checkedIn {
		query = `
			UPDATE registrations
			SET status = $2, checked_in_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
			WHERE id = $1`
	} else {
		query = `
			UPDATE registrations
			SET status = $2, updated_at = CURRENT_TIMESTAMP
			WHERE id = $1`
	}

	result, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrRegistrationNotFound
	}
	return nil
}
