package main

import (
	"net/http"

	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/diewo77/go-pis/httpx"
	"github.com/diewo77/go-pis/i18n"
	"github.com/diewo77/go-pis/internal/config"
	"github.com/diewo77/go-pis/internal/handlers"
	"github.com/diewo77/go-pis/internal/logger"
	"github.com/diewo77/go-pis/internal/metrics"
	"github.com/diewo77/go-pis/internal/middleware"
	"github.com/diewo77/go-pis/internal/services"
	"github.com/diewo77/go-pis/internal/store"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	handler http.Handler
	db      *gorm.DB
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, cfg *config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	app := &App{
		mux:     http.NewServeMux(),
		db:      db,
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
	}
	app.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions, http.MethodHead},
		AllowedHeaders: []string{"*"},
	})
	// metrics must sit directly on the mux to read the matched pattern
	app.handler = middleware.Chain(app.metrics.Middleware(app.mux),
		c.Handler,
		logger.RequestLog(log),
		middleware.Lang,
		middleware.Recover(log),
	)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// --- Health endpoints ---
	a.mux.HandleFunc("GET /{$}", a.root)
	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.Handle("GET /metrics", a.metrics.Handler())

	// --- PI endpoints ---
	s := store.New(a.db, a.cfg.Query.MaxLimit)
	svc := services.NewPIService(s,
		services.WithDefaultLimit(a.cfg.Query.DefaultLimit),
		services.WithNullClears(a.cfg.App.PatchNullClears),
	)
	handlers.NewPIHandler(svc, a.log).Register(a.mux)
}

func (a *App) root(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": i18n.T(i18n.PT, "service_name"),
	})
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	// Lightweight DB check; error details stay out of the body
	if err := a.db.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
		a.log.Warn("health check failed", zap.Error(err))
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
