// internal/activity/repository.go

package activity

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Insert(ctx context.Context, entry *Entry) error
	List(ctx context.Context, params *ListParams) ([]*Entry, error)
	Count(ctx context.Context, params *ListParams) (int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Insert(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO activity_logs (actor_id, action, entity_type, entity_id, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowxContext(
		ctx, query,
		entry.ActorID, entry.Action, entry.EntityType, entry.EntityID, entry.Metadata,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *postgresRepository) List(ctx context.Context, params *ListParams) ([]*Entry, error) {
	query := `
		SELECT a.id, a.actor_id, a.action, a.entity_type, a.entity_id,
		       a.metadata, a.created_at, u.username AS actor_username
		FROM activity_logs a
		JOIN users u ON a.actor_id = u.id
		WHERE 1=1`

	args := []interface{}{}
	query, args = appendFilters(query, args, params)
	query += fmt.Sprintf(" ORDER BY a.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	var entries []*Entry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *postgresRepository) Count(ctx context.Context, params *ListParams) (int64, error) {
	query := `SELECT COUNT(*) FROM activity_logs a WHERE 1=1`
	args := []interface{}{}
	query, args = appendFilters(query, args, params)

	var count int64
	err := r.db.GetContext(ctx, &count, query, args...)
	return count, err
}

func appendFilters(query string, args []interface{}, params *ListParams) (string, []interface{}) {
	if params.ActorID > 0 {
		args = append(args, params.ActorID)
		query += fmt.Sprintf(" AND a.actor_id = $%d", len(args))
	}
	if params.Action != "" {
		args = append(args, params.Action)
		query += fmt.Sprintf(" AND a.action = $%d", len(args))
	}
	if params.EntityType != "" {
		args = append(args, params.EntityType)
		query += fmt.Sprintf(" AND a.entity_type = $%d", len(args))
	}
	return query, args
}
