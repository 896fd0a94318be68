// Package server provides the HTTP server and routing for the engine.
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

	"github.com/aristath/optionpilot/internal/config"
	"github.com/aristath/optionpilot/internal/database"
	"github.com/aristath/optionpilot/internal/di"
	positionshandlers "github.com/aristath/optionpilot/internal/modules/positions/handlers"
	proposalshandlers "github.com/aristath/optionpilot/internal/modules/proposals/handlers"
	sleeveshandlers "github.com/aristath/optionpilot/internal/modules/sleeves/handlers"
)

// Config holds server configuration
type Config struct {
	Log         zerolog.Logger
	ProposalsDB *database.DB
	CacheDB     *database.DB
	Config      *config.Config
	Port        int
	DevMode     bool
	Container   *di.Container
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	proposalsDB    *database.DB
	cacheDB        *database.DB
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log.With().Str("component", "server").Logger(),
		proposalsDB: cfg.ProposalsDB,
		cacheDB:     cfg.CacheDB,
		cfg:         cfg.Config,
		container:   cfg.Container,
	}

	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.ProposalsDB, cfg.CacheDB)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	// Allocation runs fetch whole option chains; give them room
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.systemHandlers.HandleHealth)
	s.router.Get("/api/system/status", s.systemHandlers.HandleSystemStatus)
	s.router.Get("/api/system/databases", s.systemHandlers.HandleDatabaseStats)

	positionshandlers.NewHandler(
		s.container.PositionsService,
		s.cfg.Budget.StopLossPct,
		s.log,
	).RegisterRoutes(s.router)

	proposalshandlers.NewHandler(
		s.container.ProposalsService,
		s.container.ProposalsRepo,
		s.log,
	).RegisterRoutes(s.router)

	sleeveshandlers.NewHandler(
		s.container.SleeveRegistry,
		s.log,
	).RegisterRoutes(s.router)
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

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
