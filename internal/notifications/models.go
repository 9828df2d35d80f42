// internal/notifications/models.go

package notifications

// Email is one outbound email message
type Email struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// SMSMessage is one outbound SMS
type SMSMessage struct {
	To   string
	Body string
}
