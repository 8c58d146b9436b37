package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/wordbot/pkg/models"
)

// WordRepository handles database operations for words
type WordRepository struct {
	db *sqlx.DB
}

// NewWordRepository creates a new repository instance
func NewWordRepository(db *sqlx.DB) *WordRepository {
	return &WordRepository{db: db}
}

// GetByWord returns a word by its normalized text
func (r *WordRepository) GetByWord(ctx context.Context, word string) (*models.Word, error) {
	var w models.Word
	err := r.db.GetContext(ctx, &w, r.db.Rebind("SELECT * FROM words WHERE word = ?"), word)
	if err != nil {
		return nil, fmt.Errorf("failed to get word %q: %w", word, mapError(err))
	}
	return &w, nil
}

// GetByID returns a word by ID
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var w models.Word
	err := r.db.GetContext(ctx, &w, r.db.Rebind("SELECT * FROM words WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %w", mapError(err))
	}
	return &w, nil
}

// GetOrCreate inserts the word unless a row with the same text exists, and
// returns the persisted row. A concurrent insert of the same text is not an
// error: the loser reads the winner's row. created reports whether this call
// inserted it.
func (r *WordRepository) GetOrCreate(ctx context.Context, word *models.Word) (*models.Word, bool, error) {
	query := r.db.Rebind(`
		INSERT INTO words (word, pronunciation, definition, audio)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (word) DO NOTHING
	`)
	result, err := r.db.ExecContext(ctx, query, word.Word, word.Pronunciation, word.Definition, word.Audio)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create word: %w", err)
	}
	created := checkRowsAffected(result) == nil

	stored, err := r.GetByWord(ctx, word.Word)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// Count returns the number of cached words
func (r *WordRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM words"); err != nil {
		return 0, fmt.Errorf("failed to count words: %w", err)
	}
	return count, nil
}

// GetByOffset returns the word at the given position in id order.
// Together with Count it gives a uniform random pick.
func (r *WordRepository) GetByOffset(ctx context.Context, offset int) (*models.Word, error) {
	var w models.Word
	query := r.db.Rebind("SELECT * FROM words ORDER BY id LIMIT 1 OFFSET ?")
	if err := r.db.GetContext(ctx, &w, query, offset); err != nil {
		return nil, fmt.Errorf("failed to get word at offset %d: %w", offset, mapError(err))
	}
	return &w, nil
}
