package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizdesk/quizdesk/internal/quiz"
)

type quizBody struct {
	BusinessID string          `json:"business_id" validate:"required"`
	CategoryID string          `json:"category_id" validate:"required"`
	Title      string          `json:"quiz_title" validate:"required"`
	SortOrder  int             `json:"quiz_sort_order"`
	Time       string          `json:"quiz_time"`
	Image      string          `json:"image"`
	Status     bool            `json:"status"`
	Questions  []quiz.Question `json:"question_group" validate:"required,min=1,dive"`
}

func (b quizBody) toQuiz(id string) quiz.Quiz {
	return quiz.Quiz{
		ID:         id,
		BusinessID: b.BusinessID,
		CategoryID: b.CategoryID,
		Title:      b.Title,
		SortOrder:  b.SortOrder,
		Time:       b.Time,
		Image:      b.Image,
		Status:     b.Status,
		Questions:  b.Questions,
	}
}

func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body quizBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(body); err != nil {
			http.Error(w, "validation error: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := store.PutQuiz(r.Context(), body.toQuiz("")); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "quiz created"})
	}
}

func UpdateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body quizBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(body); err != nil {
			http.Error(w, "validation error: "+err.Error(), http.StatusBadRequest)
			return
		}
		if err := store.UpdateQuiz(r.Context(), body.toQuiz(chi.URLParam(r, "quizID"))); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "quiz updated"})
	}
}

func DeleteQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
		if businessID == "" {
			http.Error(w, "business_id is required", http.StatusBadRequest)
			return
		}
		if err := store.DeleteQuiz(r.Context(), chi.URLParam(r, "quizID"), businessID); err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "quiz deleted"})
	}
}

// ListQuizzesHandler is the admin listing: business-scoped with optional
// category and title search, category name joined in.
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
		if businessID == "" {
			http.Error(w, "business_id is required", http.StatusBadRequest)
			return
		}
		page, limit, offset := pageParams(r)
		list, total, err := store.ListQuizzes(r.Context(), quiz.ListOpts{
			BusinessID: businessID,
			CategoryID: strings.TrimSpace(r.URL.Query().Get("category_id")),
			Q:          strings.TrimSpace(r.URL.Query().Get("search")),
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			storeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, listPayload{Data: list, Pagination: paginate(page, limit, len(list), total)})
	}
}
