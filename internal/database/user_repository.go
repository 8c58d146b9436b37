package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/wordbot/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByExternalID returns a user by the chat platform identity
func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, r.db.Rebind("SELECT * FROM users WHERE external_id = ?"), externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", externalID, mapError(err))
	}
	return &user, nil
}

// GetOrCreate returns the user with the given identity, creating it on first contact.
// created reports whether this call inserted the row.
func (r *UserRepository) GetOrCreate(ctx context.Context, externalID string) (*models.User, bool, error) {
	query := r.db.Rebind("INSERT INTO users (external_id) VALUES (?) ON CONFLICT (external_id) DO NOTHING")
	result, err := r.db.ExecContext(ctx, query, externalID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	created := checkRowsAffected(result) == nil

	user, err := r.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

// GetAll returns all users
func (r *UserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, "SELECT * FROM users ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}
