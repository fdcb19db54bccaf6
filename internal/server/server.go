// Package server provides the HTTP server and routing for Lens.
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

	"github.com/aristath/lens/internal/config"
	"github.com/aristath/lens/internal/di"
	analysishandlers "github.com/aristath/lens/internal/modules/analysis/handlers"
	historyhandlers "github.com/aristath/lens/internal/modules/history/handlers"
	portfoliohandlers "github.com/aristath/lens/internal/modules/portfolio/handlers"
	referencehandlers "github.com/aristath/lens/internal/modules/reference/handlers"
	snapshothandlers "github.com/aristath/lens/internal/modules/snapshots/handlers"
	"github.com/aristath/lens/internal/scheduler"
	"github.com/aristath/lens/internal/utils"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	statusMonitor  *StatusMonitor
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	systemHandlers := NewSystemHandlers(
		cfg.Log,
		cfg.Config.DataDir,
		cfg.Container.Databases(),
		cfg.Container.AnalysisService,
		cfg.Container.PricefeedClient,
	)

	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Config,
		container:      cfg.Container,
		systemHandlers: systemHandlers,
	}

	s.statusMonitor = NewStatusMonitor(systemHandlers, cfg.Container.PricefeedClient, cfg.Log)

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SetJobs registers job instances for manual triggering via API
func (s *Server) SetJobs(refresh, snapshot, maintenance, backup scheduler.Job) {
	s.systemHandlers.SetJobs(refresh, snapshot, maintenance, backup)
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   utils.ParseCSV(s.cfg.CORSAllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Compress responses
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Analysis module
		analysisHandler := analysishandlers.NewHandler(s.container.AnalysisService, s.log)
		analysisHandler.RegisterRoutes(r)

		// Reference data module
		referenceHandler := referencehandlers.NewHandler(
			s.container.ReferenceRepo,
			s.container.ReferenceService,
			s.container.AnalysisService,
			s.log,
		)
		referenceHandler.RegisterRoutes(r)

		// Portfolio module
		portfolioHandler := portfoliohandlers.NewHandler(s.container.PortfolioService, s.log)
		portfolioHandler.RegisterRoutes(r)

		// Snapshots module
		snapshotHandler := snapshothandlers.NewHandler(s.container.SnapshotService, s.log)
		snapshotHandler.RegisterRoutes(r)

		// History module
		historyHandler := historyhandlers.NewHandler(s.container.HistoryDB, s.container.TrendsService, s.log)
		historyHandler.RegisterRoutes(r)

		// System monitoring and job triggers
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", s.handleHealth)
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
			r.Get("/disk", s.systemHandlers.HandleDiskUsage)
			r.Get("/pricefeed", s.systemHandlers.HandlePricefeedStatus)

			r.Route("/jobs", func(r chi.Router) {
				r.Post("/refresh", s.systemHandlers.HandleTriggerRefresh)
				r.Post("/snapshot", s.systemHandlers.HandleTriggerSnapshot)
				r.Post("/maintenance", s.systemHandlers.HandleTriggerMaintenance)
				r.Post("/backup", s.systemHandlers.HandleTriggerBackup)
			})
		})
	})
}

// handleHealth reports liveness and database reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for name, db := range s.container.Databases() {
		if err := db.QuickCheck(ctx); err != nil {
			s.log.Error().Err(err).Str("database", name).Msg("Health check failed")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"unhealthy","database":%q}`, name)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

// Start starts the HTTP server and background monitors
func (s *Server) Start() error {
	if s.statusMonitor != nil {
		s.statusMonitor.Start(60 * time.Second)
	}

	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	if s.statusMonitor != nil {
		s.statusMonitor.Stop()
	}
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
