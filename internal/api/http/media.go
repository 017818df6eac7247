package http

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizdesk/quizdesk/internal/storage"
)

type mediaRow struct {
	ID         string `json:"id"`
	BusinessID string `json:"business_id"`
	ObjectKey  string `json:"object_key"`
	URL        string `json:"url"`
	CreatedAt  int64  `json:"created_at"`
}

// UploadMediaHandler stores an uploaded file in the blob store and records
// it in the media table. Field name: "file".
func UploadMediaHandler(db *sql.DB, bs storage.BlobStore, publicURL string, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			http.Error(w, "bad multipart form", http.StatusBadRequest)
			return
		}
		businessID := r.FormValue("business_id")
		if businessID == "" {
			http.Error(w, "business_id required", http.StatusBadRequest)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		key := "media/" + businessID + "/" + strconv.FormatInt(time.Now().UnixNano(), 10) + "_" + hdr.Filename
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error", http.StatusInternalServerError)
			return
		}

		m := mediaRow{
			ID:         uuid.NewString(),
			BusinessID: businessID,
			ObjectKey:  key,
			URL:        publicURL + "/assets/" + key,
			CreatedAt:  time.Now().Unix(),
		}
		if _, err := db.ExecContext(r.Context(), `INSERT INTO media (id,business_id,object_key,created_at) VALUES ($1,$2,$3,$4)`,
			m.ID, m.BusinessID, m.ObjectKey, m.CreatedAt); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func ListMediaHandler(db *sql.DB, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := r.URL.Query().Get("business_id")
		if businessID == "" {
			http.Error(w, "business_id required", http.StatusBadRequest)
			return
		}
		page, limit, offset := pageParams(r)

		var total int
		if err := db.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM media WHERE business_id=$1`, businessID).Scan(&total); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		rows, err := db.QueryContext(r.Context(), `SELECT id,business_id,object_key,created_at FROM media
			WHERE business_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, businessID, limit, offset)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		out := []mediaRow{}
		for rows.Next() {
			var m mediaRow
			if err := rows.Scan(&m.ID, &m.BusinessID, &m.ObjectKey, &m.CreatedAt); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			m.URL = publicURL + "/assets/" + m.ObjectKey
			out = append(out, m)
		}
		writeJSON(w, http.StatusOK, listPayload{Data: out, Pagination: paginate(page, limit, len(out), total)})
	}
}

// DeleteMediaHandler removes the blob first, then the row. A missing blob
// does not block row deletion.
func DeleteMediaHandler(db *sql.DB, bs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "mediaID")

		var key string
		err := db.QueryRowContext(r.Context(), `SELECT object_key FROM media WHERE id=$1`, id).Scan(&key)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "media not found", http.StatusNotFound)
			return
		} else if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if err := bs.Delete(key); err != nil {
			http.Error(w, "store error", http.StatusInternalServerError)
			return
		}
		if _, err := db.ExecContext(r.Context(), `DELETE FROM media WHERE id=$1`, id); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "media deleted"})
	}
}
