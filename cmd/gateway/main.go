package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/quizdesk/quizdesk/internal/api/http"
	auth "github.com/quizdesk/quizdesk/internal/auth/middleware"
	"github.com/quizdesk/quizdesk/internal/config"
	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/quiz"
	rbac "github.com/quizdesk/quizdesk/internal/rbac"
	storage "github.com/quizdesk/quizdesk/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := quiz.NewSQLStore(dbh, cfg.DBDriver)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	authSvc := auth.NewAuthService(cfg.JWTSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Public surface: auth plus the storefront reads.
	r.Post("/auth/signup", api.SignupHandler(dbh))
	r.Post("/auth/login", api.LoginHandler(dbh, authSvc))

	r.Get("/public/website", api.GetWebsiteDataHandler(dbh, cfg.DefaultBusinessID))
	r.Get("/public/categories", api.ListCategoriesHandler(dbh, false))
	r.Get("/public/categories/{slug}/quizzes", api.PublicQuizzesHandler(store, dbh))
	r.Get("/public/quizzes/{quizID}", api.PublicQuizHandler(store))

	r.Route("/assets", func(ar chi.Router) {
		api.MountAssets(ar, bs)
	})

	// Signed-in surface (JWT -> role from DB -> RBAC).
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		// Profile
		pr.With(rbac.Require("user:view-own")).
			Get("/me", api.GetProfileHandler(dbh))
		pr.With(rbac.Require("user:update-own")).
			Put("/me", api.UpdateProfileHandler(dbh, bs, cfg.MaxUploadBytes))
		pr.With(rbac.Require("user:change_password")).
			Post("/me/change-password", api.ChangePasswordHandler(dbh))

		// Quiz play
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts", api.SubmitQuestionsHandler(store))
		pr.With(rbac.Require("attempt:view-own")).
			Get("/attempts/{attemptID}/result", api.GetResultHandler(store))
		pr.With(rbac.Require("attempt:view-own")).
			Get("/attempts/{attemptID}/review", api.ReviewHandler(store))
		pr.With(rbac.Require("attempt:retake")).
			Delete("/attempts/{attemptID}", api.RetakeHandler(store))
		pr.With(rbac.Require("attempt:view-own")).
			Get("/attempts/solved", api.SolvedListHandler(store, dbh))

		// Admin
		pr.Group(func(ar chi.Router) {
			ar.Use(rbac.Require("admin"))

			ar.Get("/admin/dashboard", api.AdminCountsHandler(dbh))

			ar.Post("/admin/categories", api.CreateCategoryHandler(dbh))
			ar.Put("/admin/categories/{categoryID}", api.UpdateCategoryHandler(dbh))
			ar.Delete("/admin/categories/{categoryID}", api.DeleteCategoryHandler(dbh))
			ar.Post("/admin/categories/bulk-delete", api.BulkDeleteCategoriesHandler(dbh))
			ar.Get("/admin/categories", api.ListCategoriesHandler(dbh, true))

			ar.Post("/admin/quizzes", api.CreateQuizHandler(store))
			ar.Put("/admin/quizzes/{quizID}", api.UpdateQuizHandler(store))
			ar.Delete("/admin/quizzes/{quizID}", api.DeleteQuizHandler(store))
			ar.Get("/admin/quizzes", api.ListQuizzesHandler(store))

			ar.Get("/admin/users", api.ListUsersHandler(dbh))
			ar.Get("/admin/users/{userID}", api.GetUserHandler(dbh))
			ar.Put("/admin/users/{userID}", api.UpdateUserAdminHandler(dbh))
			ar.Get("/admin/users/{userID}/attempts", api.UserAttemptsHandler(store))

			ar.Post("/admin/media", api.UploadMediaHandler(dbh, bs, cfg.PublicURL, cfg.MaxUploadBytes))
			ar.Get("/admin/media", api.ListMediaHandler(dbh, cfg.PublicURL))
			ar.Delete("/admin/media/{mediaID}", api.DeleteMediaHandler(dbh, bs))

			ar.Post("/admin/settings/general", api.SaveGeneralSettingsHandler(dbh))
			ar.Get("/admin/settings/general", api.GetGeneralSettingsHandler(dbh))
			ar.Post("/admin/settings/social-links", api.SaveSocialLinksHandler(dbh))
			ar.Get("/admin/settings/social-links", api.GetSocialLinksHandler(dbh))
			ar.Post("/admin/settings/services", api.SaveWebsiteServicesHandler(dbh))
			ar.Get("/admin/settings/services", api.GetWebsiteServicesHandler(dbh))
		})
	})

	log.Printf("quizdesk gateway listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal(err)
	}
}
