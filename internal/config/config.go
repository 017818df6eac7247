package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	BlobBasePath string

	JWTSecret string

	// DefaultBusinessID scopes the public website endpoints that carry no
	// business in the request (single-tenant deployments).
	DefaultBusinessID string

	CORSOrigins []string

	MaxUploadBytes int64
}

func FromEnv() Config {
	return Config{
		HTTPAddr:          envOr("HTTP_ADDR", ":8080"),
		PublicURL:         os.Getenv("PUBLIC_URL"),
		DBDriver:          envOr("DB_DRIVER", "sqlite"),
		DBDSN:             envOr("DB_DSN", ""),
		BlobBasePath:      envOr("BLOB_BASE_PATH", "./data"),
		JWTSecret:         envOr("AUTH_HMAC_SECRET", "supersecret-dev-key"),
		DefaultBusinessID: envOr("DEFAULT_BUSINESS_ID", "default"),
		CORSOrigins:       csvOr("CORS_ORIGINS", "http://localhost:3000"),
		MaxUploadBytes:    envInt64("MAX_UPLOAD_BYTES", 3<<20), // multer parity: 3 MiB cap
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt64(k string, def int64) int64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
