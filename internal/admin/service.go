// internal/admin/service.go

package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gatherlyhq/gatherly-backend/internal/activity"
	"github.com/gatherlyhq/gatherly-backend/internal/auth"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrInvalidRole    = errors.New("invalid role")
	ErrSelfDemotion   = errors.New("admins cannot change their own role or status")
)

// UserSummary is the admin-facing view of a user account
type UserSummary struct {
	ID                int64     `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	Username          string    `json:"username" db:"username"`
	Role              string    `json:"role" db:"role"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	RegistrationCount int64     `json:"registration_count" db:"registration_count"`
	EventsCreated     int64     `json:"events_created" db:"events_created"`
}

// UpdateRoleRequest carries a role change
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// UpdateStatusRequest carries an activate/deactivate change
type UpdateStatusRequest struct {
	IsActive bool `json:"is_active"`
}

// ListUsersParams filters the admin user listing
type ListUsersParams struct {
	Search string
	Role   string
	Limit  int
	Offset int
}

type Service struct {
	db       *sqlx.DB
	stats    *StatsService
	recorder activity.Recorder
}

func NewService(db *sqlx.DB, stats *StatsService, recorder activity.Recorder) *Service {
	if recorder == nil {
		recorder = activity.NopRecorder{}
	}
	return &Service{db: db, stats: stats, recorder: recorder}
}

func (s *Service) GetPlatformStats(ctx context.Context) (*PlatformStats, error) {
	return s.stats.GetPlatformStats(ctx)
}

func (s *Service) ListUsers(ctx context.Context, params *ListUsersParams) ([]*UserSummary, int64, error) {
	query := `
		SELECT u.id, u.email, u.username, u.role, u.is_active, u.created_at,
		       COALESCE(r.cnt, 0) AS registration_count,
		       COALESCE(e.cnt, 0) AS events_created
		FROM users u
		LEFT JOIN (
			SELECT user_id, COUNT(*) AS cnt FROM registrations GROUP BY user_id
		) r ON r.user_id = u.id
		LEFT JOIN (
			SELECT created_by, COUNT(*) AS cnt FROM events GROUP BY created_by
		) e ON e.created_by = u.id
		WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM users u WHERE 1=1`

	args := []interface{}{}
	filters := ""
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		filters += fmt.Sprintf(" AND (u.email ILIKE $%d OR u.username ILIKE $%d)", len(args), len(args))
	}
	if params.Role != "" {
		args = append(args, params.Role)
		filters += fmt.Sprintf(" AND u.role = $%d", len(args))
	}

	var total int64
	if err := s.db.GetContext(ctx, &total, countQuery+filters, args...); err != nil {
		return nil, 0, err
	}

	query += filters
	query += fmt.Sprintf(" ORDER BY u.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	var out []*UserSummary
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// UpdateRole promotes or demotes a user. Admins cannot change their
// own role, so the platform always keeps at least the acting admin.
func (s *Service) UpdateRole(ctx context.Context, actorID, userID int64, role string) error {
	if role != auth.RoleUser && role != auth.RoleAdmin {
		return ErrInvalidRole
	}
	if actorID == userID {
		return ErrSelfDemotion
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
		userID, role)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}

	s.recorder.Record(ctx, actorID, activity.ActionUserRoleChanged, "user", &userID,
		activity.Metadata{"role": role})

	return nil
}

// UpdateStatus activates or deactivates an account. Deactivated users
// fail authentication on their next request.
func (s *Service) UpdateStatus(ctx context.Context, actorID, userID int64, isActive bool) error {
	if actorID == userID {
		return ErrSelfDemotion
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_active = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
		userID, isActive)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}

	if !isActive {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil && err != sql.ErrNoRows {
			return err
		}
		s.recorder.Record(ctx, actorID, activity.ActionUserDeactivated, "user", &userID, nil)
	}

	return nil
}
