package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pms/internal/domain/audit"
	"pms/internal/domain/auth"
	"pms/internal/domain/notifications"
	"pms/internal/domain/reports"
	"pms/internal/domain/review"
	"pms/internal/platform/config"
	"pms/internal/platform/db"
	"pms/internal/platform/metrics"
	"pms/internal/transport/http/api"
	authhandler "pms/internal/transport/http/handlers/auth"
	cyclehandler "pms/internal/transport/http/handlers/cycles"
	notificationhandler "pms/internal/transport/http/handlers/notifications"
	reviewhandler "pms/internal/transport/http/handlers/reviews"
	"pms/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// New assembles the full application: database, permission gate, domain
// services, event subscriptions and the HTTP router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	policy := auth.DefaultPolicy()
	if cfg.PolicyFile != "" {
		loaded, err := auth.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			pool.Close()
			return nil, err
		}
		policy = loaded
	}
	gate, err := auth.NewGate(policy)
	if err != nil {
		pool.Close()
		return nil, err
	}

	authService := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)
	auditService := audit.New(pool)
	notificationService := notifications.New(notifications.NewStore(pool))
	reviewService := review.NewService(review.NewStore(pool), review.NewPGDraftStore(pool), gate)
	reviewService.Events().Subscribe(notificationService.HandleReviewEvent)
	reportsService := reports.NewService(reports.NewStore(pool), cfg.ExportDir)

	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequireAction(auth.ActionViewAll, gate)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authService, auditService).RegisterRoutes(r)
		cyclehandler.NewHandler(reviewService, reportsService, gate, auditService).RegisterRoutes(r)
		reviewhandler.NewHandler(reviewService, reportsService, gate, auditService).RegisterRoutes(r)
		notificationhandler.NewHandler(notificationService).RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: router}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
