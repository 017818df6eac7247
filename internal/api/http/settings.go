package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Site settings are stored as JSON columns keyed by business, one row per
// business. Each section (general, social links, services) is replaced
// wholesale on save.

type generalSettings struct {
	SiteTitle       string `json:"site_title"`
	SiteDescription string `json:"site_description"`
	Logo            string `json:"logo"`
	Favicon         string `json:"favicon"`
	FooterText      string `json:"footer_text"`
	ContactEmail    string `json:"contact_email"`
	ContactPhone    string `json:"contact_phone"`
	Address         string `json:"address"`
}

type socialLink struct {
	Platform  string `json:"platform" validate:"required"`
	URL       string `json:"url" validate:"required,url"`
	SortOrder int    `json:"sort_order"`
}

type websiteServices struct {
	Heading  string           `json:"heading"`
	Services []websiteService `json:"services"`
}

type websiteService struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func upsertSettingsColumn(r *http.Request, db *sql.DB, businessID, col string, raw []byte) error {
	// col is one of the three fixed *_json columns, never user input.
	_, err := db.ExecContext(r.Context(), `INSERT INTO site_settings (business_id, `+col+`, updated_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (business_id) DO UPDATE SET `+col+`=$2, updated_at=$3`,
		businessID, string(raw), time.Now().Unix())
	return err
}

func settingsColumn(r *http.Request, db *sql.DB, businessID, col string) ([]byte, error) {
	var raw string
	err := db.QueryRowContext(r.Context(), `SELECT `+col+` FROM site_settings WHERE business_id=$1`, businessID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return []byte(raw), err
}

func SaveGeneralSettingsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := r.URL.Query().Get("business_id")
		if businessID == "" {
			http.Error(w, "business_id required", http.StatusBadRequest)
			return
		}
		var body generalSettings
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		raw, _ := json.Marshal(body)
		if err := upsertSettingsColumn(r, db, businessID, "general_json", raw); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func GetGeneralSettingsHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := r.URL.Query().Get("business_id")
		if businessID == "" {
			http.Error(w, "business_id required", http.StatusBadRequest)
			return
		}
		raw, err := settingsColumn(r, db, businessID, "general_json")
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		var out generalSettings
		if raw != nil {
			_ = json.Unmarshal(raw, &out)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func SaveSocialLinksHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := r.URL.Query().Get("business_id")
		if businessID == "" {
			http.Error(w, "business_id required", http.StatusBadRequest)
			return
		}
		var body []socialLink
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		for i := range body {
			if err := validate.Struct(body[i]); err != nil {
				http.Error(w, "validation error: "+err.Error(), http.StatusBadRequest)
				return
			}
		}
		raw, _ := json.Marshal(body)
		if err := upsertSettingsColumn(r, db, businessID, "social_links_json", raw); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func GetSocialLinksHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := r.URL.Query().Get("business_id")
		if businessID == "" {
			http.Error(w, "business_id required", http.StatusBadRequest)
			return
		}
		raw, err := settingsColumn(r, db, businessID, "social_links_json")
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := []socialLink{}
		if raw != nil {
			_ = json.Unmarshal(raw, &out)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func SaveWebsiteServicesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := r.URL.Query().Get("business_id")
		if businessID == "" {
			http.Error(w, "business_id required", http.StatusBadRequest)
			return
		}
		var body websiteServices
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		raw, _ := json.Marshal(body)
		if err := upsertSettingsColumn(r, db, businessID, "services_json", raw); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func GetWebsiteServicesHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := r.URL.Query().Get("business_id")
		if businessID == "" {
			http.Error(w, "business_id required", http.StatusBadRequest)
			return
		}
		raw, err := settingsColumn(r, db, businessID, "services_json")
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		var out websiteServices
		if raw != nil {
			_ = json.Unmarshal(raw, &out)
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetWebsiteDataHandler is the public composed payload the storefront
// renders from: settings sections plus the business's categories. The
// business is resolved from the query param, falling back to the
// configured default.
func GetWebsiteDataHandler(db *sql.DB, defaultBusinessID string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		businessID := r.URL.Query().Get("business_id")
		if businessID == "" {
			businessID = defaultBusinessID
		}

		var (
			generalRaw  string
			socialRaw   string
			servicesRaw string
		)
		err := db.QueryRowContext(r.Context(), `SELECT general_json, social_links_json, services_json
			FROM site_settings WHERE business_id=$1`, businessID).
			Scan(&generalRaw, &socialRaw, &servicesRaw)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		var general generalSettings
		social := []socialLink{}
		var services websiteServices
		if generalRaw != "" {
			_ = json.Unmarshal([]byte(generalRaw), &general)
		}
		if socialRaw != "" {
			_ = json.Unmarshal([]byte(socialRaw), &social)
		}
		if servicesRaw != "" {
			_ = json.Unmarshal([]byte(servicesRaw), &services)
		}

		rows, err := db.QueryContext(r.Context(), `SELECT id, category_name, slug, sort_order, image
			FROM categories WHERE business_id=$1 ORDER BY sort_order ASC, created_at DESC`, businessID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer rows.Close()

		cats := []categoryRow{}
		for rows.Next() {
			c := categoryRow{BusinessID: businessID}
			if err := rows.Scan(&c.ID, &c.CategoryName, &c.Slug, &c.SortOrder, &c.Image); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			cats = append(cats, c)
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"business_id":  businessID,
			"general":      general,
			"social_links": social,
			"services":     services,
			"categories":   cats,
		})
	}
}
