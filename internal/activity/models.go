// internal/activity/models.go

package activity

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Well-known actions recorded across the platform
const (
	ActionUserRoleChanged     = "user.role_changed"
	ActionUserDeactivated     = "user.deactivated"
	ActionEventCreated        = "event.created"
	ActionEventUpdated        = "event.updated"
	ActionEventDeleted        = "event.deleted"
	ActionRegistrationCreated = "registration.created"
	ActionRegistrationCancel  = "registration.cancelled"
	ActionCheckIn             = "registration.checked_in"
)

// Metadata is a free-form JSON payload attached to a log entry
type Metadata map[string]interface{}

// Value implements driver.Valuer for JSONB storage
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB storage
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = Metadata{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return nil
	}
}

// Entry is a single audit log record
type Entry struct {
	ID         int64     `json:"id" db:"id"`
	ActorID    int64     `json:"actor_id" db:"actor_id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   *int64    `json:"entity_id,omitempty" db:"entity_id"`
	Metadata   Metadata  `json:"metadata" db:"metadata"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	// Joined fields
	ActorUsername *string `json:"actor_username,omitempty" db:"actor_username"`
}

// ListParams filters the admin log listing
type ListParams struct {
	ActorID    int64
	Action     string
	EntityType string
	Limit      int
	Offset     int
}
