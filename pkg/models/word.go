package models

import (
	"database/sql"
	"fmt"
	"time"
)

// Word is a dictionary entry cached from the external provider.
// Rows are immutable once created.
type Word struct {
	ID            int64          `json:"id" db:"id"`
	Word          string         `json:"word" db:"word"`
	Pronunciation string         `json:"pronunciation" db:"pronunciation"`
	Definition    string         `json:"definition" db:"definition"`
	Audio         sql.NullString `json:"audio" db:"audio"` // path of the cached pronunciation clip
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}

// String renders the full card: word, pronunciation and definition.
func (w Word) String() string {
	return fmt.Sprintf("%s\n\n[%s]\n%s\n", w.Word, w.Pronunciation, w.Definition)
}

// AudioPath returns the cached audio file path or an empty string.
func (w Word) AudioPath() string {
	if !w.Audio.Valid {
		return ""
	}
	return w.Audio.String
}
