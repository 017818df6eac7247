package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type categoryBody struct {
	BusinessID   string `json:"business_id" validate:"required"`
	CategoryName string `json:"category_name" validate:"required"`
	Slug         string `json:"slug" validate:"required"`
	SortOrder    int    `json:"sort_order"`
	Image        string `json:"image"`
}

type categoryRow struct {
	ID           string `json:"id"`
	BusinessID   string `json:"business_id"`
	CategoryName string `json:"category_name"`
	Slug         string `json:"slug"`
	SortOrder    int    `json:"sort_order"`
	Image        string `json:"image"`
	CreatedAt    int64  `json:"created_at"`
}

func CreateCategoryHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body categoryBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(body); err != nil {
			http.Error(w, "validation error: "+err.Error(), http.StatusBadRequest)
			return
		}
		// Name and slug are unique per business; 409 on either collision.
		var exists int
		err := db.QueryRowContext(r.Context(),
			`SELECT 1 FROM categories WHERE business_id=$1 AND category_name=$2`,
			body.BusinessID, body.CategoryName).Scan(&exists)
		if err == nil {
			http.Error(w, "category already exists", http.StatusConflict)
			return
		} else if !errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		err = db.QueryRowContext(r.Context(),
			`SELECT 1 FROM categories WHERE business_id=$1 AND slug=$2`,
			body.BusinessID, body.Slug).Scan(&exists)
		if err == nil {
			http.Error(w, "slug already exists", http.StatusConflict)
			return
		} else if !errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		_, err = db.ExecContext(r.Context(), `INSERT INTO categories
			(id,business_id,category_name,slug,sort_order,image,created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.NewString(), body.BusinessID, body.CategoryName, body.Slug,
			body.SortOrder, body.Image, time.Now().Unix())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "category created"})
	}
}

func UpdateCategoryHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "categoryID")
		var body categoryBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(body); err != nil {
			http.Error(w, "validation error: "+err.Error(), http.StatusBadRequest)
			return
		}
		res, err := db.ExecContext(r.Context(), `UPDATE categories
			SET category_name=$1, slug=$2, sort_order=$3, image=$4
			WHERE id=$5 AND business_id=$6`,
			body.CategoryName, body.Slug, body.SortOrder, body.Image, id, body.BusinessID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "category not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "category updated"})
	}
}

func DeleteCategoryHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
		if businessID == "" {
			http.Error(w, "business_id is required", http.StatusBadRequest)
			return
		}
		res, err := db.ExecContext(r.Context(), `DELETE FROM categories WHERE id=$1 AND business_id=$2`,
			chi.URLParam(r, "categoryID"), businessID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "category not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
	}
}

type bulkDeleteReq []struct {
	ID         string `json:"id"`
	BusinessID string `json:"business_id"`
}

func BulkDeleteCategoriesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bulkDeleteReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req) == 0 {
			http.Error(w, "no categories provided for deletion", http.StatusBadRequest)
			return
		}
		for _, item := range req {
			if item.ID == "" || item.BusinessID == "" {
				http.Error(w, "each category must include id and business_id", http.StatusBadRequest)
				return
			}
		}
		deleted := 0
		for _, item := range req {
			res, err := db.ExecContext(r.Context(), `DELETE FROM categories WHERE id=$1 AND business_id=$2`,
				item.ID, item.BusinessID)
			if err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			n, _ := res.RowsAffected()
			deleted += int(n)
		}
		if deleted == 0 {
			http.Error(w, "no matching categories found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "categories deleted", "deletedCount": deleted})
	}
}

// ListCategoriesHandler serves both the admin listing (business_id required)
// and, with requireBusiness=false, the public website listing across all
// businesses.
func ListCategoriesHandler(db *sql.DB, requireBusiness bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := strings.TrimSpace(r.URL.Query().Get("business_id"))
		if requireBusiness && businessID == "" {
			http.Error(w, "business_id is required", http.StatusBadRequest)
			return
		}
		search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
		page, limit, offset := pageParams(r)

		where := "1=1"
		args := []any{}
		if businessID != "" {
			args = append(args, businessID)
			where = "business_id=$1"
		}
		if search != "" {
			args = append(args, search)
			n := len(args)
			where += ` AND (LOWER(category_name) LIKE '%' || $` + itoa(n) + ` || '%'` +
				` OR LOWER(slug) LIKE '%' || $` + itoa(n) + ` || '%')`
		}

		var total int
		if err := db.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM categories WHERE `+where, args...).Scan(&total); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		args = append(args, limit, offset)
		rows, err := db.QueryContext(r.Context(), `SELECT id,business_id,category_name,slug,sort_order,image,created_at
			FROM categories WHERE `+where+`
			ORDER BY sort_order ASC, created_at DESC
			LIMIT $`+itoa(len(args)-1)+` OFFSET $`+itoa(len(args)), args...)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		out := []categoryRow{}
		for rows.Next() {
			var c categoryRow
			if err := rows.Scan(&c.ID, &c.BusinessID, &c.CategoryName, &c.Slug, &c.SortOrder, &c.Image, &c.CreatedAt); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			out = append(out, c)
		}
		writeJSON(w, http.StatusOK, listPayload{Data: out, Pagination: paginate(page, limit, len(out), total)})
	}
}
