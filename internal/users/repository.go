// internal/users/repository.go

package users

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpsertProfile(ctx context.Context, profile *Profile) error
	UpdatePreferences(ctx context.Context, userID int64, prefs Preferences) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	var profile Profile
	query := `
		SELECT p.user_id, p.display_name, p.bio, p.location, p.phone,
		       p.preferences, p.created_at, p.updated_at,
		       u.username, u.email
		FROM profiles p
		JOIN users u ON p.user_id = u.id
		WHERE p.user_id = $1`

	err := r.db.GetContext(ctx, &profile, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

func (r *postgresRepository) UpsertProfile(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO profiles (user_id, display_name, bio, location, phone, preferences)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id)
		DO UPDATE SET
			display_name = COALESCE(EXCLUDED.display_name, profiles.display_name),
			bio          = COALESCE(EXCLUDED.bio, profiles.bio),
			location     = COALESCE(EXCLUDED.location, profiles.location),
			phone        = COALESCE(EXCLUDED.phone, profiles.phone),
			updated_at   = CURRENT_TIMESTAMP
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(
		ctx, query,
		profile.UserID, profile.DisplayName, profile.Bio,
		profile.Location, profile.Phone, profile.Preferences,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *postgresRepository) UpdatePreferences(ctx context.Context, userID int64, prefs Preferences) error {
	query := `
		INSERT INTO profiles (user_id, preferences)
		VALUES ($1, $2)
		ON CONFLICT (user_id)
		DO UPDATE SET preferences = $2, updated_at = CURRENT_TIMESTAMP`

	_, err := r.db.ExecContext(ctx, query, userID, prefs)
	return err
}
