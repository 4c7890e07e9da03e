package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perfreview/internal/domain/audit"
	"perfreview/internal/domain/calibration"
	"perfreview/internal/domain/competency"
	"perfreview/internal/domain/cycle"
	"perfreview/internal/domain/goal"
	"perfreview/internal/domain/identity"
	"perfreview/internal/domain/rating"
	"perfreview/internal/domain/review"
	"perfreview/internal/domain/template"
	"perfreview/internal/platform/config"
	"perfreview/internal/platform/db"
	"perfreview/internal/platform/metrics"
	audithandler "perfreview/internal/transport/http/handlers/audit"
	authhandler "perfreview/internal/transport/http/handlers/auth"
	calibrationhandler "perfreview/internal/transport/http/handlers/calibration"
	competencyhandler "perfreview/internal/transport/http/handlers/competency"
	cyclehandler "perfreview/internal/transport/http/handlers/cycle"
	goalhandler "perfreview/internal/transport/http/handlers/goal"
	ratinghandler "perfreview/internal/transport/http/handlers/rating"
	reviewhandler "perfreview/internal/transport/http/handlers/review"
	templatehandler "perfreview/internal/transport/http/handlers/template"
	"perfreview/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New wires stores, services, and the HTTP surface together.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
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

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	identityStore := identity.NewStore(pool)
	auditSvc := audit.New(pool)

	goalSvc := goal.NewService(goal.NewStore(pool), identityStore)
	competencySvc := competency.NewService(competency.NewStore(pool))
	templateSvc := template.NewService(template.NewStore(pool))
	reviewSvc := review.NewService(review.NewStore(pool), templateSvc)
	cycleSvc := cycle.NewService(cycle.NewStore(pool), templateSvc, reviewSvc)
	ratingSvc := rating.NewService(rating.NewStore(pool), competencySvc, cycleSvc, cfg.ApproverRoles)
	calibrationSvc := calibration.NewService(calibration.NewStore(pool), ratingSvc, cfg.ApproverRoles)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	if collector != nil {
		router.Use(middleware.Metrics(collector))
	}

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

	if collector != nil {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(identityStore, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(r)
		goalhandler.NewHandler(goalSvc, auditSvc).RegisterRoutes(r)
		competencyhandler.NewHandler(competencySvc).RegisterRoutes(r)
		templatehandler.NewHandler(templateSvc, auditSvc).RegisterRoutes(r)
		cyclehandler.NewHandler(cycleSvc, auditSvc, collector).RegisterRoutes(r)
		reviewhandler.NewHandler(reviewSvc, auditSvc, collector).RegisterRoutes(r)
		ratinghandler.NewHandler(ratingSvc, auditSvc, collector).RegisterRoutes(r)
		calibrationhandler.NewHandler(calibrationSvc, auditSvc, collector).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc).RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: router, Metrics: collector}, nil
}

func (a *App) Run() error {
	slog.Info("server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
	return http.ListenAndServe(a.Config.Addr, a.Router)
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	app, err := New(context.Background(), cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer app.DB.Close()

	if err := app.Run(); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}
