package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/quizdesk/quizdesk/internal/quiz"
)

// validate holds the request DTO rules; tags live on the DTO structs.
var validate = validator.New()

// Pagination is the listing envelope every paginated endpoint returns.
// firstRecord/lastRecord are 1-based record indices into the full result
// set: skip+1 and min(skip+len, total), with firstRecord 0 when empty.
type Pagination struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
	FirstRecord int `json:"firstRecord"`
	LastRecord  int `json:"lastRecord"`
}

func paginate(page, limit, count, total int) Pagination {
	skip := (page - 1) * limit
	p := Pagination{
		TotalItems:  total,
		TotalPages:  (total + limit - 1) / limit,
		CurrentPage: page,
		Limit:       limit,
	}
	if total > 0 {
		p.FirstRecord = skip + 1
	}
	if last := skip + count; last < total {
		p.LastRecord = last
	} else {
		p.LastRecord = total
	}
	return p
}

// pageParams reads page/limit query params with the legacy defaults.
func pageParams(r *http.Request) (page, limit, offset int) {
	page = parseIntDefault(r.URL.Query().Get("page"), 1)
	if page < 1 {
		page = 1
	}
	limit = parseIntDefault(r.URL.Query().Get("limit"), 10)
	if limit < 1 {
		limit = 10
	}
	return page, limit, (page - 1) * limit
}

func itoa(n int) string { return strconv.Itoa(n) }

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type listPayload struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// storeError maps store failures to status codes: sentinels become 404,
// anything else is an opaque 500 (internals never leak to the caller).
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound), errors.Is(err, quiz.ErrAttemptNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
