package models

import "time"

// User is a learner talking to the bot, keyed by the chat platform identity.
type User struct {
	ID           int64     `json:"id" db:"id"`
	ExternalID   string    `json:"external_id" db:"external_id"` // Telegram user ID
	IsSubscribed bool      `json:"is_subscribed" db:"is_subscribed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
