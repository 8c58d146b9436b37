package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/wordbot/pkg/models"
)

// UserProgressRepository handles database operations for user progress
type UserProgressRepository struct {
	db *sqlx.DB
}

// NewUserProgressRepository creates a new repository instance
func NewUserProgressRepository(db *sqlx.DB) *UserProgressRepository {
	return &UserProgressRepository{db: db}
}

// GetByID returns a progress record by ID
func (r *UserProgressRepository) GetByID(ctx context.Context, id int64) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := r.db.GetContext(ctx, &progress, r.db.Rebind("SELECT * FROM user_progress WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", mapError(err))
	}
	return &progress, nil
}

// GetOrCreate returns the progress of a user on a word, creating it with a zero
// counter the first time. created reports whether this call inserted the row.
func (r *UserProgressRepository) GetOrCreate(ctx context.Context, userID, wordID int64) (*models.UserProgress, bool, error) {
	query := r.db.Rebind(`
		INSERT INTO user_progress (user_id, word_id) VALUES (?, ?)
		ON CONFLICT (user_id, word_id) DO NOTHING
	`)
	result, err := r.db.ExecContext(ctx, query, userID, wordID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user progress: %w", err)
	}
	created := checkRowsAffected(result) == nil

	var progress models.UserProgress
	err = r.db.GetContext(ctx, &progress,
		r.db.Rebind("SELECT * FROM user_progress WHERE user_id = ? AND word_id = ?"), userID, wordID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get user progress: %w", mapError(err))
	}
	return &progress, created, nil
}

// CountByUser returns how many words the user has in progress
func (r *UserProgressRepository) CountByUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, r.db.Rebind("SELECT COUNT(*) FROM user_progress WHERE user_id = ?"), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count user progress: %w", err)
	}
	return count, nil
}

// Increment adds one confirmation to the user's progress record and returns
// the updated row. The update is relative so concurrent confirmations are
// never lost.
func (r *UserProgressRepository) Increment(ctx context.Context, userID, id int64) (*models.UserProgress, error) {
	var progress models.UserProgress
	query := r.db.Rebind(`
		UPDATE user_progress SET check_times = check_times + 1
		WHERE id = ? AND user_id = ?
		RETURNING *
	`)
	if err := r.db.QueryRowxContext(ctx, query, id, userID).StructScan(&progress); err != nil {
		return nil, fmt.Errorf("failed to increment user progress: %w", mapError(err))
	}
	return &progress, nil
}

// Reset sets the counter of a progress record back to zero
func (r *UserProgressRepository) Reset(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("UPDATE user_progress SET check_times = 0 WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to reset user progress: %w", err)
	}
	return checkRowsAffected(result)
}

// NextAfter returns the user's unmastered record with the smallest ID greater than afterID.
func (r *UserProgressRepository) NextAfter(ctx context.Context, userID, afterID int64, threshold int) (*models.UserProgress, error) {
	var progress models.UserProgress
	query := r.db.Rebind(`
		SELECT * FROM user_progress
		WHERE user_id = ? AND id > ? AND check_times < ?
		ORDER BY id
		LIMIT 1
	`)
	if err := r.db.GetContext(ctx, &progress, query, userID, afterID, threshold); err != nil {
		return nil, fmt.Errorf("failed to get next user progress: %w", mapError(err))
	}
	return &progress, nil
}

// UnmasteredIDs returns the IDs of the user's records below the threshold, in id order.
func (r *UserProgressRepository) UnmasteredIDs(ctx context.Context, userID int64, threshold int) ([]int64, error) {
	var ids []int64
	query := r.db.Rebind("SELECT id FROM user_progress WHERE user_id = ? AND check_times < ? ORDER BY id")
	if err := r.db.SelectContext(ctx, &ids, query, userID, threshold); err != nil {
		return nil, fmt.Errorf("failed to get unmastered user progress: %w", err)
	}
	return ids, nil
}
