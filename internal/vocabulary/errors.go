package vocabulary

import "errors"

var (
	// ErrInvalidInput is returned for input that is not a single alphabetic word
	ErrInvalidInput = errors.New("input is not a word")
	// ErrNotFound is returned when the word cannot be resolved
	ErrNotFound = errors.New("word not found")
	// ErrLookupFailure is returned when the dictionary could not be consulted.
	// It also matches ErrNotFound.
	ErrLookupFailure = errors.New("dictionary lookup failed")
)

type lookupError struct {
	err error
}

func (e *lookupError) Error() string {
	return ErrLookupFailure.Error() + ": " + e.err.Error()
}

func (e *lookupError) Unwrap() error {
	return e.err
}

func (e *lookupError) Is(target error) bool {
	return target == ErrLookupFailure || target == ErrNotFound
}
