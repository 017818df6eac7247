package quiz

import "context"

type ListOpts struct {
	BusinessID string
	CategoryID string
	Q          string // matched against quiz_title, case-insensitive
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Store persists quizzes and attempts. Both live here because every attempt
// operation reads back the authoritative quiz.
type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	UpdateQuiz(ctx context.Context, q Quiz) error
	DeleteQuiz(ctx context.Context, id, businessID string) error
	GetQuiz(ctx context.Context, id string) (Quiz, error) // full, with answer flags
	ListQuizzes(ctx context.Context, opts ListOpts) ([]Summary, int, error)

	// LatestAttemptIDs maps quizID -> newest attempt ID for the user,
	// restricted to the given quizzes. Used by the public quiz listing.
	LatestAttemptIDs(ctx context.Context, userID string, quizIDs []string) (map[string]string, error)

	// SubmitQuestions creates the (userID, quizID) attempt if absent,
	// otherwise appends qs to its question list. The insert-or-append is
	// atomic: concurrent submits for the same pair never produce two rows.
	// The reported bool is true when a new attempt was created.
	SubmitQuestions(ctx context.Context, a Attempt) (Attempt, bool, error)

	GetAttempt(ctx context.Context, id string) (Attempt, error)
	FindAttempt(ctx context.Context, userID, quizID string) (Attempt, error)
	// DeleteAttempt removes the attempt only when it belongs to userID.
	DeleteAttempt(ctx context.Context, id, userID string) error
	// ListAttempts returns a page of the user's attempts, newest first,
	// plus the total count for pagination.
	ListAttempts(ctx context.Context, userID string, limit, offset int) ([]Attempt, int, error)
}
