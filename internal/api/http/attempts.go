package http

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/scoring"
)

type submitQuestionsReq struct {
	UserID    string          `json:"user_id" validate:"required"`
	QuizID    string          `json:"quiz_id" validate:"required"`
	QuizTitle string          `json:"quiz_title"`
	SortOrder int             `json:"quiz_sort_order"`
	QuizTime  string          `json:"quiz_time"`
	Questions []quiz.Question `json:"question_group" validate:"required,min=1,dive"`
}

// SubmitQuestionsHandler ingests answered questions. The authoritative quiz
// must exist; submitted answers are normalized against it (metadata
// backfilled, canonical correctness captured per option by label) before
// the create-or-append upsert.
func SubmitQuestionsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitQuestionsReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "missing required fields or invalid question data", http.StatusBadRequest)
			return
		}

		q, err := store.GetQuiz(r.Context(), req.QuizID)
		if err != nil {
			storeError(w, err)
			return
		}

		a := quiz.Attempt{
			UserID:    req.UserID,
			QuizID:    req.QuizID,
			QuizTitle: req.QuizTitle,
			SortOrder: req.SortOrder,
			QuizTime:  req.QuizTime,
			Questions: scoring.PrepareSubmission(q, req.Questions),
		}
		if a.QuizTitle == "" {
			a.QuizTitle = q.Title
		}
		out, created, err := store.SubmitQuestions(r.Context(), a)
		if err != nil {
			storeError(w, err)
			return
		}
		code := http.StatusOK
		if created {
			code = http.StatusCreated
		}
		writeJSON(w, code, out)
	}
}

// GetResultHandler scores an attempt question-by-question against the
// quiz's single canonical correct option.
func GetResultHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			storeError(w, err)
			return
		}
		q, err := store.GetQuiz(r.Context(), a.QuizID)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scoring.Score(q, a))
	}
}

// ReviewHandler returns the option-granular annotation of an attempt.
func ReviewHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			storeError(w, err)
			return
		}
		q, err := store.GetQuiz(r.Context(), a.QuizID)
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, scoring.Review(q, a))
	}
}

// RetakeHandler deletes the attempt outright so the next submission starts
// fresh. Ownership is part of the lookup: a wrong user_id reads as 404.
func RetakeHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if userID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}
		if err := store.DeleteAttempt(r.Context(), id, userID); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "attempt deleted"})
	}
}

type solvedRow struct {
	QuizID         string `json:"quiz_id"`
	QuizTitle      string `json:"quiz_title"`
	CategoryName   string `json:"category_name"`
	TotalQuestions int    `json:"total_questions"`
	Correct        int    `json:"correct"`
	Incorrect      int    `json:"incorrect"`
	Skipped        int    `json:"skipped"`
	AttemptedOn    int64  `json:"attempted_on"`
}

// SolvedListHandler lists a user's attempted quizzes with a single-choice
// tally per quiz. Pagination applies to the attempt rows before the search
// filter, so a filtered page can come back short. Legacy behavior the
// dashboards already compensate for.
func SolvedListHandler(store quiz.Store, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if userID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}
		search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
		page, limit, offset := pageParams(r)

		attempts, total, err := store.ListAttempts(r.Context(), userID, limit, offset)
		if err != nil {
			storeError(w, err)
			return
		}

		rows := []solvedRow{}
		for _, a := range attempts {
			q, err := store.GetQuiz(r.Context(), a.QuizID)
			if err != nil {
				continue // quiz deleted since the attempt; skip
			}
			catName := categoryName(r, db, q.CategoryID)
			if search != "" &&
				!strings.Contains(strings.ToLower(q.Title), search) &&
				!strings.Contains(strings.ToLower(catName), search) {
				continue
			}
			s := scoring.Score(q, a)
			rows = append(rows, solvedRow{
				QuizID:         q.ID,
				QuizTitle:      q.Title,
				CategoryName:   catName,
				TotalQuestions: s.TotalQuestions,
				Correct:        s.Correct,
				Incorrect:      s.Incorrect,
				Skipped:        s.Skipped,
				AttemptedOn:    a.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, listPayload{Data: rows, Pagination: paginate(page, limit, len(rows), total)})
	}
}

type attemptDetail struct {
	QuizID         string                   `json:"quiz_id"`
	QuizTitle      string                   `json:"quiz_title"`
	TotalQuestions int                      `json:"total_questions"`
	Summary        scoring.Tally            `json:"summary"`
	Questions      []scoring.QuestionReview `json:"questions"`
}

// UserAttemptsHandler is the admin view of everything a user has attempted,
// with option-level annotations per question. The per-quiz summary here is
// question-granular, derived from those annotations: a question counts
// correct when any of its options is. The user comes from the route's
// {userID} segment, with a user_id query fallback for older admin clients.
func UserAttemptsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := chi.URLParam(r, "userID")
		if userID == "" {
			userID = strings.TrimSpace(r.URL.Query().Get("user_id"))
		}
		if userID == "" {
			http.Error(w, "user_id is required", http.StatusBadRequest)
			return
		}
		page, limit, offset := pageParams(r)
		attempts, total, err := store.ListAttempts(r.Context(), userID, limit, offset)
		if err != nil {
			storeError(w, err)
			return
		}
		if total == 0 {
			http.Error(w, "no attempted quizzes found for this user", http.StatusNotFound)
			return
		}

		out := []attemptDetail{}
		for _, a := range attempts {
			d := attemptDetail{QuizID: a.QuizID, QuizTitle: a.QuizTitle}
			q, err := store.GetQuiz(r.Context(), a.QuizID)
			if err != nil {
				d.Questions = []scoring.QuestionReview{}
				out = append(out, d)
				continue
			}
			rv := scoring.Review(q, a)
			d.Questions = rv.Review
			d.TotalQuestions = len(rv.Review)
			d.Summary.TotalQuestions = len(rv.Review)
			for _, qr := range rv.Review {
				answered, correct := false, false
				for _, o := range qr.Options {
					answered = answered || o.IsUserChoice
					correct = correct || o.IsCorrect
				}
				switch {
				case !answered:
					d.Summary.Skipped++
				case correct:
					d.Summary.Correct++
				default:
					d.Summary.Incorrect++
				}
			}
			out = append(out, d)
		}
		writeJSON(w, http.StatusOK, listPayload{Data: out, Pagination: paginate(page, limit, len(out), total)})
	}
}

func categoryName(r *http.Request, db *sql.DB, categoryID string) string {
	if db == nil {
		return "N/A"
	}
	var name string
	err := db.QueryRowContext(r.Context(), `SELECT category_name FROM categories WHERE id=$1`, categoryID).Scan(&name)
	if err != nil || name == "" {
		return "N/A"
	}
	return name
}
