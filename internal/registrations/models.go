// internal/registrations/models.go

package registrations

import "time"

// Registration statuses
const (
	StatusRegistered = "REGISTERED"
	StatusCancelled  = "CANCELLED"
	StatusAttended   = "ATTENDED"
)

// Registration ties a user to an event
type Registration struct {
	ID         int64      `json:"id" db:"id"`
	UserID     int64      `json:"user_id" db:"user_id"`
	EventID    int64      `json:"event_id" db:"event_id"`
	Status     string     `json:"status" db:"status"`
	TicketCode string     `json:"ticket_code" db:"ticket_code"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty" db:"checked_in_at"`

	// Joined fields
	EventTitle    *string    `json:"event_title,omitempty" db:"event_title"`
	EventDate     *time.Time `json:"event_date,omitempty" db:"event_date"`
	EventLocation *string    `json:"event_location,omitempty" db:"event_location"`
	Username      *string    `json:"username,omitempty" db:"username"`
	Email         *string    `json:"email,omitempty" db:"email"`
}

// Ticket is the registration plus its rendered QR code
type Ticket struct {
	Registration *Registration `json:"registration"`
	QRCode       string        `json:"qr_code"` // base64-encoded PNG
}

// CheckInRequest carries a scanned ticket code
type CheckInRequest struct {
	TicketCode string `json:"ticket_code" validate:"required,uuid4"`
}

// ListParams filters registration listings
type ListParams struct {
	UserID  int64
	EventID int64
	Status  string
	Limit   int
	Offset  int
}
