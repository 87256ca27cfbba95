// Package server provides the HTTP server and routing for stockintel.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/stockintel/internal/httpapi"
	"github.com/aristath/stockintel/internal/market_regime"
	regimehandlers "github.com/aristath/stockintel/internal/market_regime/handlers"
	"github.com/aristath/stockintel/internal/metrics"
	chartshandlers "github.com/aristath/stockintel/internal/modules/charts/handlers"
	historicalhandlers "github.com/aristath/stockintel/internal/modules/historical/handlers"
	optimizationhandlers "github.com/aristath/stockintel/internal/modules/optimization/handlers"
	"github.com/aristath/stockintel/internal/version"
)

const maxRegimeClusters = 12

// Config holds server configuration
type Config struct {
	Log     zerolog.Logger
	Port    int
	DevMode bool

	History           HistoryStore
	Optimizer         optimizationhandlers.Optimizer
	OptimizerDefaults optimizationhandlers.Defaults
	Regime            regimehandlers.Classifier
	RegimeDefaults    regimehandlers.Defaults
	Charts            chartshandlers.ChartService

	Database DatabaseStats
	Syncer   PriceSyncer
	Backups  BackupManager // nil when remote backups are not configured
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            Config
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
		cfg:    cfg,
		systemHandlers: NewSystemHandlers(
			cfg.Database,
			cfg.History,
			cfg.Syncer,
			cfg.Backups,
			cfg.Log,
		),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		optimizationhandlers.NewHandler(s.cfg.Optimizer, s.cfg.OptimizerDefaults, s.cfg.Log).RegisterRoutes(r)
		regimehandlers.NewHandler(s.cfg.Regime, s.cfg.RegimeDefaults, s.cfg.Log).RegisterRoutes(r)
		chartshandlers.NewHandler(s.cfg.Charts, s.cfg.Log).RegisterRoutes(r)
		historicalhandlers.NewHandler(s.cfg.History, s.cfg.Log).RegisterRoutes(r)

		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Post("/sync", s.systemHandlers.HandleTriggerSync)
			r.Get("/backups", s.systemHandlers.HandleListBackups)
			r.Post("/backup", s.systemHandlers.HandleTriggerBackup)
			r.Get("/regime-labels", s.handleRegimeLabels)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Str("version", version.Version).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httpapi.WriteData(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
		"service": "stockintel",
	})
}

// handleRegimeLabels lists the labels a classification with the configured
// cluster count can produce, ordered from calmest to most volatile.
func (s *Server) handleRegimeLabels(w http.ResponseWriter, r *http.Request) {
	clusters := httpapi.QueryInt(r, "n_clusters", market_regime.DefaultClusters)
	if clusters > maxRegimeClusters {
		httpapi.WriteError(w, r, http.StatusBadRequest, fmt.Sprintf("n_clusters must be at most %d", maxRegimeClusters))
		return
	}
	labels, err := market_regime.LabelsForClusterCount(clusters)
	if err != nil {
		httpapi.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	httpapi.WriteData(w, r, http.StatusOK, labels)
}

// loggingMiddleware logs HTTP requests and attaches a request-scoped logger
// to the context.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLog := s.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(reqLog.WithContext(r.Context())))

		reqLog.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Msg("HTTP request")
	})
}
