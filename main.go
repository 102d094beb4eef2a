package main

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/username/fiscasync/backend/src/audit/controls"
	"github.com/username/fiscasync/backend/src/config"
	"github.com/username/fiscasync/backend/src/database"
	"github.com/username/fiscasync/backend/src/handlers"
	"github.com/username/fiscasync/backend/src/logger"
	"github.com/username/fiscasync/backend/src/referential"
	"github.com/username/fiscasync/backend/src/services"
	"github.com/username/fiscasync/backend/src/storage"
	"golang.org/x/time/rate"
)

func rateLimitMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				logger.L.Warn("Rate limit exceeded", "path", r.URL.Path)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			config.Cfg.FrontendBaseURL: true,
			"http://localhost:3000":    true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PATCH")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("FiscaSync audit backend starting...")

	logger.L.Info("Loading chart of accounts...", "path", config.Cfg.PlanComptablePath)
	plan, err := referential.Load(config.Cfg.PlanComptablePath)
	if err != nil {
		// Chart-dependent controls degrade to NOT_APPLICABLE without it.
		logger.L.Error("Failed to load chart of accounts; conformity controls will be skipped", "error", err)
		plan = nil
	} else {
		logger.L.Info("Chart of accounts loaded", "accounts", plan.Size())
	}

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	database.RunMigrations(config.Cfg.DatabasePath)

	store := storage.NewSQLiteStore(database.DB, config.Cfg.SessionRetention)
	defer store.Close()

	registry := controls.NewRegistry()
	logger.L.Info("Control catalog registered", "active", registry.ActiveCount())

	auditService := services.NewAuditService(store, registry, plan)
	auditHandler := handlers.NewAuditHandler(auditService)

	limiter := rate.NewLimiter(rate.Every(config.Cfg.RateLimitEvery), config.Cfg.RateLimitBurst)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(enableCORS)
	r.Use(rateLimitMiddleware(limiter))
	r.Use(handlers.MaxBodyBytesMiddleware(config.Cfg.MaxBodyBytes))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "FiscaSync audit backend is running"})
	})

	r.Route("/api/audit", func(r chi.Router) {
		r.Post("/intake", auditHandler.HandleIntake)
		r.Post("/statement", auditHandler.HandleStatement)
		r.Post("/reimport", auditHandler.HandleReimport)

		r.Get("/sessions", auditHandler.HandleListSessions)
		r.Get("/sessions/{id}", auditHandler.HandleGetSession)
		r.Post("/sessions/{id}/archive", auditHandler.HandleArchiveSession)

		r.Get("/archives", auditHandler.HandleListArchives)
		r.Get("/archives/{period}/verify", auditHandler.HandleVerifyArchive)

		r.Get("/reports/{id}", auditHandler.HandleGetReport)

		r.Get("/controls", auditHandler.HandleListControls)
		r.Patch("/controls/{ref}", auditHandler.HandleToggleControl)
	})

	addr := ":" + config.Cfg.Port
	logger.L.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.L.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
