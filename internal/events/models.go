// internal/events/models.go

package events

import "time"

// Event represents a community event
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Category    string    `json:"category" db:"category"`
	Date        time.Time `json:"date" db:"date"`
	TimeStr     string    `json:"time" db:"time_str"` // free text, e.g. "7:30 PM"
	Location    string    `json:"location" db:"location"`
	Capacity    int       `json:"capacity" db:"capacity"`
	ImageURL    *string   `json:"image_url,omitempty" db:"image_url"`
	CreatedBy   int64     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	// Joined fields
	AttendeeCount   int     `json:"attendee_count" db:"attendee_count"`
	CreatorUsername *string `json:"creator_username,omitempty" db:"creator_username"`
}

// CreateEventRequest carries a new event
type CreateEventRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category    string  `json:"category" validate:"required,min=2,max=100"`
	Date        string  `json:"date" validate:"required"` // RFC 3339
	Time        string  `json:"time" validate:"required,max=50"`
	Location    string  `json:"location" validate:"required,max=255"`
	Capacity    int     `json:"capacity" validate:"required,min=1,max=100000"`
}

// UpdateEventRequest carries event mutations; nil fields are left unchanged
type UpdateEventRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category    *string `json:"category,omitempty" validate:"omitempty,min=2,max=100"`
	Date        *string `json:"date,omitempty"`
	Time        *string `json:"time,omitempty" validate:"omitempty,max=50"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Capacity    *int    `json:"capacity,omitempty" validate:"omitempty,min=1,max=100000"`
}

// ListParams filters the event listing
type ListParams struct {
	Category     string
	Search       string
	From         *time.Time
	To           *time.Time
	UpcomingOnly bool
	CreatedBy    int64
	Limit        int
	Offset       int
}
