package models

import "time"

// UserProgress tracks how many times a user confirmed knowing a word.
// IDs grow with creation order and drive sequential review.
type UserProgress struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	WordID     int64     `json:"word_id" db:"word_id"`
	CheckTimes int       `json:"check_times" db:"check_times"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
