package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/quizdesk/quizdesk/internal/auth/middleware"
	"github.com/quizdesk/quizdesk/internal/storage"
)

type userRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Type       int    `json:"type"`
	Image      string `json:"image"`
	CoverImage string `json:"cover_image"`
	Phone      string `json:"phone"`
	Country    string `json:"country"`
	CreatedAt  int64  `json:"created_at"`
	UpdatedAt  int64  `json:"updated_at"`
}

type signupReq struct {
	Name            string `json:"name" validate:"required,min=3,max=30"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
	Type            int    `json:"type"`
}

func SignupHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "validation error: "+err.Error(), http.StatusBadRequest)
			return
		}

		var exists int
		err := db.QueryRowContext(r.Context(), `SELECT 1 FROM users WHERE email=$1`, req.Email).Scan(&exists)
		if err == nil {
			http.Error(w, "email already exists", http.StatusConflict)
			return
		} else if !errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 10)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		typ := req.Type
		if typ == 0 {
			typ = 1
		}
		now := time.Now().Unix()
		_, err = db.ExecContext(r.Context(), `INSERT INTO users
			(id,name,email,password_hash,type,created_at,updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			uuid.NewString(), req.Name, req.Email, string(hash), typ, now, now)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "user created"})
	}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,min=3,max=254"`
	Password string `json:"password" validate:"required"`
}

func LoginHandler(db *sql.DB, authSvc *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "validation error: "+err.Error(), http.StatusBadRequest)
			return
		}

		var (
			u    userRow
			hash string
		)
		err := db.QueryRowContext(r.Context(), `SELECT id,name,email,password_hash,type,image,cover_image,phone,country,created_at,updated_at
			FROM users WHERE email=$1`, req.Email).
			Scan(&u.ID, &u.Name, &u.Email, &hash, &u.Type, &u.Image, &u.CoverImage, &u.Phone, &u.Country, &u.CreatedAt, &u.UpdatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		} else if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}

		tok, err := authSvc.IssueJWT(u.ID, authmw.RoleForType(u.Type))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"access_token": tok, "user": u})
	}
}

// ListUsersHandler is the admin user listing: optional type filter plus a
// name/email search, newest first.
func ListUsersHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		typ := parseIntDefault(r.URL.Query().Get("type"), 1)
		search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))
		page, limit, offset := pageParams(r)

		where := "type=$1"
		args := []any{typ}
		if search != "" {
			args = append(args, search)
			n := strconv.Itoa(len(args))
			where += ` AND (LOWER(name) LIKE '%' || $` + n + ` || '%' OR LOWER(email) LIKE '%' || $` + n + ` || '%')`
		}

		var total int
		if err := db.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		args = append(args, limit, offset)
		rows, err := db.QueryContext(r.Context(), `SELECT id,name,email,type,image,cover_image,phone,country,created_at,updated_at
			FROM users WHERE `+where+` ORDER BY created_at DESC
			LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		out := []userRow{}
		for rows.Next() {
			var u userRow
			if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Type, &u.Image, &u.CoverImage, &u.Phone, &u.Country, &u.CreatedAt, &u.UpdatedAt); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			out = append(out, u)
		}
		writeJSON(w, http.StatusOK, listPayload{Data: out, Pagination: paginate(page, limit, len(out), total)})
	}
}

func GetUserHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := fetchUser(r, db, chi.URLParam(r, "userID"))
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		} else if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

type adminUserUpdateReq struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Image string `json:"image"`
}

func UpdateUserAdminHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminUserUpdateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, "validation error: "+err.Error(), http.StatusBadRequest)
			return
		}
		res, err := db.ExecContext(r.Context(), `UPDATE users SET name=$1, email=$2, image=$3, updated_at=$4 WHERE id=$5`,
			req.Name, req.Email, req.Image, time.Now().Unix(), chi.URLParam(r, "userID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "user updated"})
	}
}

// GetProfileHandler returns the caller's own record (password never leaves
// the DB layer; userRow has no hash field).
func GetProfileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		u, err := fetchUser(r, db, sub)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		} else if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// UpdateProfileHandler accepts a multipart form: optional text fields plus
// optional image/cover_image files, stored through the blob store.
func UpdateProfileHandler(db *sql.DB, bs storage.BlobStore, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := authmw.SubjectFromContext(r.Context())
		if sub == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			http.Error(w, "bad multipart form", http.StatusBadRequest)
			return
		}

		set := []string{}
		args := []any{}
		addField := func(col, val string) {
			if val == "" {
				return
			}
			args = append(args, val)
			set = append(set, col+"=$"+strconv.Itoa(len(args)))
		}
		addField("name", r.FormValue("name"))
		addField("email", r.FormValue("email"))
		addField("phone", r.FormValue("phone"))
		addField("country", r.FormValue("country"))

		for field, col := range map[string]string{"image": "image", "cover_image": "cover_image"} {
			f, hdr, err := r.FormFile(field)
			if err != nil {
				continue
			}
			key := "profiles/" + sub + "/" + strconv.FormatInt(time.Now().UnixNano(), 10) + "_" + hdr.Filename
			_, putErr := bs.Put(key, f)
			f.Close()
			if putErr != nil {
				http.Error(w, "store error", http.StatusInternalServerError)
				return
			}
			addField(col, key)
		}

		if len(set) == 0 {
			http.Error(w, "nothing to update", http.StatusBadRequest)
			return
		}
		args = append(args, time.Now().Unix())
		set = append(set, "updated_at=$"+strconv.Itoa(len(args)))
		args = append(args, sub)

		res, err := db.ExecContext(r.Context(), `UPDATE users SET `+strings.Join(set, ", ")+` WHERE id=$`+strconv.Itoa(len(args)), args...)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		u, err := fetchUser(r, db, sub)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

type changePasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func ChangePasswordHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := authmw.SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req changePasswordReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.NewPassword == "" {
			http.Error(w, "new password required", http.StatusBadRequest)
			return
		}

		var storedHash string
		err := db.QueryRowContext(r.Context(), `SELECT password_hash FROM users WHERE id=$1`, userID).Scan(&storedHash)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		} else if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(req.OldPassword)) != nil {
			http.Error(w, "incorrect old password", http.StatusForbidden)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), 10)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if _, err := db.ExecContext(r.Context(), `UPDATE users SET password_hash=$1, updated_at=$2 WHERE id=$3`,
			hash, time.Now().Unix(), userID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func fetchUser(r *http.Request, db *sql.DB, id string) (userRow, error) {
	var u userRow
	err := db.QueryRowContext(r.Context(), `SELECT id,name,email,type,image,cover_image,phone,country,created_at,updated_at
		FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Type, &u.Image, &u.CoverImage, &u.Phone, &u.Country, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
