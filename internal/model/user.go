package model

import "time"

// User is a registered WhatsApp contact, keyed by canonical phone
// number. Auto-created on first inbound message.
type User struct {
	PhoneNumber  string    `db:"phone_number" json:"phone_number"`
	FirstSeen    time.Time `db:"first_seen" json:"first_seen"`
	LastActivity time.Time `db:"last_activity" json:"last_activity"`
	MessageCount int64     `db:"message_count" json:"message_count"`
	IsActive     bool      `db:"is_active" json:"is_active"`
}
