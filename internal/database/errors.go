package database

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when the requested row does not exist
var ErrNotFound = errors.New("record not found")

// mapError translates driver errors into package errors, keeping the original for context.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// checkRowsAffected returns ErrNotFound when an update touched nothing
func checkRowsAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
