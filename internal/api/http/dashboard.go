package http

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/quizdesk/quizdesk/internal/quiz"
)

type dashboardCounts struct {
	Categories int `json:"categories"`
	Quizzes    int `json:"quizzes"`
	Questions  int `json:"questions"`
	Options    int `json:"options"`
	Customers  int `json:"customers"`
	Attempts   int `json:"attempts"`
}

// AdminCountsHandler produces the admin dashboard tiles. The four table
// counts run concurrently; question and option totals come from decoding
// every quiz's question blob, since questions are not rows of their own.
func AdminCountsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := r.URL.Query().Get("business_id")
		if businessID == "" {
			http.Error(w, "business_id required", http.StatusBadRequest)
			return
		}

		var c dashboardCounts
		g, ctx := errgroup.WithContext(r.Context())

		g.Go(func() error {
			return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE business_id=$1`, businessID).Scan(&c.Categories)
		})
		g.Go(func() error {
			return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes WHERE business_id=$1`, businessID).Scan(&c.Quizzes)
		})
		g.Go(func() error {
			return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE type=1`).Scan(&c.Customers)
		})
		g.Go(func() error {
			return db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attempts`).Scan(&c.Attempts)
		})
		g.Go(func() error {
			rows, err := db.QueryContext(ctx, `SELECT questions_json FROM quizzes WHERE business_id=$1`, businessID)
			if err != nil {
				return err
			}
			defer rows.Close()
			for rows.Next() {
				var raw string
				if err := rows.Scan(&raw); err != nil {
					return err
				}
				var qs []quiz.Question
				if err := json.Unmarshal([]byte(raw), &qs); err != nil {
					continue
				}
				c.Questions += len(qs)
				for i := range qs {
					c.Options += len(qs[i].Options)
				}
			}
			return rows.Err()
		})

		if err := g.Wait(); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}
