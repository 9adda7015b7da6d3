package entities

import "time"

// Ticket is a help-desk request. It has no status and is never changed.
type Ticket struct {
	ID        string  `json:"id"`
	Subject   string  `json:"subject"`
	Message   string  `json:"message"`
	CreatedAt int64   `json:"createdAt"`
	UserID    *string `json:"userId"`
}

// NewTicket creates a ticket
func NewTicket(id, subject, message string, createdAt time.Time, userID *string) Ticket {
	return Ticket{
		ID:        id,
		Subject:   subject,
		Message:   message,
		CreatedAt: createdAt.UnixMilli(),
		UserID:    userID,
	}
}

// Clone returns a deep copy
func (t Ticket) Clone() Ticket {
	c := t
	c.UserID = cloneRef(t.UserID)
	return c
}
