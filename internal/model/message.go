package model

import "time"

// Guest message statuses.
const (
	MessageNew      = "new"
	MessageRead     = "read"
	MessageArchived = "archived"
)

// GuestMessage is a message sent by a guest to the reception.
type GuestMessage struct {
	ID         uint64    // guest_messages.id
	RoomNumber string    // guest_messages.room_number
	GuestName  string    // guest_messages.guest_name
	Subject    string    // guest_messages.subject
	Body       string    // guest_messages.message
	Status     string    // guest_messages.status
	CreatedAt  time.Time // guest_messages.created_at
}
