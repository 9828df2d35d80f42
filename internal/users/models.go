// internal/users/models.go

package users

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Preferences is the user's declared recommendation preferences.
// Stored as JSONB with an explicit shape so a mistyped key can't
// silently fall back to defaults.
type Preferences struct {
	Categories     []string `json:"categories,omitempty"`
	MaxDistanceKm  float64  `json:"max_distance_km,omitempty"`
	PreferredDays  []int    `json:"preferred_days,omitempty"`  // 0=Sunday .. 6=Saturday
	PreferredHours []int    `json:"preferred_hours,omitempty"` // 0..23
}

// Value implements driver.Valuer for JSONB storage
func (p Preferences) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB storage
func (p *Preferences) Scan(value interface{}) error {
	if value == nil {
		*p = Preferences{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return nil
	}
}

// Profile is the public-facing user profile
type Profile struct {
	UserID      int64       `json:"user_id" db:"user_id"`
	DisplayName *string     `json:"display_name,omitempty" db:"display_name"`
	Bio         *string     `json:"bio,omitempty" db:"bio"`
	Location    *string     `json:"location,omitempty" db:"location"`
	Phone       *string     `json:"phone,omitempty" db:"phone"`
	Preferences Preferences `json:"preferences" db:"preferences"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`

	// Joined fields
	Username string `json:"username" db:"username"`
	Email    string `json:"email" db:"email"`
}

// UpdateProfileRequest carries profile mutations
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=100"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// UpdatePreferencesRequest carries preference mutations
type UpdatePreferencesRequest struct {
	Categories     []string `json:"categories" validate:"omitempty,max=20,dive,min=1,max=100"`
	MaxDistanceKm  float64  `json:"max_distance_km" validate:"omitempty,gt=0,max=20000"`
	PreferredDays  []int    `json:"preferred_days" validate:"omitempty,max=7,dive,min=0,max=6"`
	PreferredHours []int    `json:"preferred_hours" validate:"omitempty,max=24,dive,min=0,max=23"`
}
