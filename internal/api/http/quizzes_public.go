package http

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizdesk/quizdesk/internal/quiz"
)

type publicQuizRow struct {
	ID              string `json:"id"`
	QuizTitle       string `json:"quiz_title"`
	QuizTime        string `json:"quiz_time"`
	Image           string `json:"image"`
	BusinessID      string `json:"business_id"`
	CategoryID      string `json:"category_id"`
	Status          bool   `json:"status"`
	TotalQuestions  int    `json:"total_questions"`
	CreatedAt       int64  `json:"created_at"`
	AttemptedQuizID string `json:"attempted_quiz_id,omitempty"`
}

// PublicQuizzesHandler lists the active quizzes of a category, addressed by
// slug. When user_id is supplied, each row carries the user's existing
// attempt ID so the frontend can offer "resume" instead of "start".
func PublicQuizzesHandler(store quiz.Store, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(r.URL.Query().Get("category_slug"))
		if slug == "" {
			http.Error(w, "category_slug is required", http.StatusBadRequest)
			return
		}
		var categoryID, businessID string
		err := db.QueryRowContext(r.Context(), `SELECT id,business_id FROM categories WHERE slug=$1`, slug).
			Scan(&categoryID, &businessID)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "category not found", http.StatusNotFound)
			return
		} else if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		page, limit, offset := pageParams(r)
		list, total, err := store.ListQuizzes(r.Context(), quiz.ListOpts{
			BusinessID: businessID,
			CategoryID: categoryID,
			Q:          strings.TrimSpace(r.URL.Query().Get("search")),
			ActiveOnly: true,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			storeError(w, err)
			return
		}

		attempted := map[string]string{}
		if userID := strings.TrimSpace(r.URL.Query().Get("user_id")); userID != "" && len(list) > 0 {
			ids := make([]string, len(list))
			for i, q := range list {
				ids[i] = q.ID
			}
			attempted, err = store.LatestAttemptIDs(r.Context(), userID, ids)
			if err != nil {
				storeError(w, err)
				return
			}
		}

		rows := make([]publicQuizRow, len(list))
		for i, q := range list {
			rows[i] = publicQuizRow{
				ID:              q.ID,
				QuizTitle:       q.Title,
				QuizTime:        q.Time,
				Image:           q.Image,
				BusinessID:      q.BusinessID,
				CategoryID:      q.CategoryID,
				Status:          q.Status,
				TotalQuestions:  q.TotalQuestions,
				CreatedAt:       q.CreatedAt,
				AttemptedQuizID: attempted[q.ID],
			}
		}
		writeJSON(w, http.StatusOK, listPayload{Data: rows, Pagination: paginate(page, limit, len(rows), total)})
	}
}

// PublicQuizHandler serves one quiz to players with every answer flag
// stripped, so the key never crosses the wire before grading.
func PublicQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q.StripAnswers())
	}
}
