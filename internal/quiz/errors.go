package quiz

import "errors"

var (
	// ErrQuizNotFound indicates the referenced quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates the referenced attempt does not exist,
	// or does not belong to the given user.
	ErrAttemptNotFound = errors.New("attempt not found")
)
