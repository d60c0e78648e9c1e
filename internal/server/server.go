// Package server wires routers, middleware and dependencies for the two HTTP
// services.
//
// Both services read the same SQLite file the seed command writes:
//
//	pages → GET /, GET /user/{page_num}, GET /healthz        (HTML)
//	api   → GET /Profiles, GET /healthz                       (JSON, rate limited)
//
// New is the composition root for one service: it opens the database and builds
// repository → service → handler before any route is registered. Nothing below
// this package constructs its own dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/github-profiles/internal/config"
	"github.com/sakif/github-profiles/internal/handler"
	"github.com/sakif/github-profiles/internal/middleware"
	sqliteRepo "github.com/sakif/github-profiles/internal/repository/sqlite"
	"github.com/sakif/github-profiles/internal/service"
	"github.com/sakif/github-profiles/web"
)

// Surface selects which service a Server runs.
type Surface string

const (
	Pages Surface = "pages"
	API   Surface = "api"
)

// shutdownTimeout bounds how long in-flight requests get after a stop signal.
const shutdownTimeout = 30 * time.Second

// Server is one HTTP service plus the database connection it owns.
type Server struct {
	surface Surface
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	db      *sqliteRepo.DB // closed when Start returns
}

// New opens the database at cfg.Database.Path and builds the router for surface.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not confused with the
// modernc driver package.
func New(surface Surface, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	logger = logger.With(slog.String("service", string(surface)))

	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		surface: surface,
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		db:      db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes installs middleware and the routes of s.surface.
//
// MIDDLEWARE ORDER:
// 1. RequestID, so the logger can print it
// 2. RealIP, so the rate limiter keys on the client and not a proxy
// 3. Logger
// 4. Recoverer, turning panics into 500s
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	health := handler.NewHealthHandler(s.db, s.logger)
	s.router.Get("/healthz", health.HandleHealth)

	switch s.surface {
	case Pages:
		pageService := service.NewPageService(s.db, s.logger)
		pagesHandler, err := handler.NewPagesHandler(pageService, web.Templates, s.logger)
		if err != nil {
			return fmt.Errorf("creating pages handler: %w", err)
		}
		s.router.Get("/", pagesHandler.HandleIndex)
		s.router.Get("/user/{page_num}", pagesHandler.HandleUsers)

	case API:
		profileService := service.NewProfileService(s.db, s.config.Cache.TTL, s.logger)
		profilesHandler := handler.NewProfilesHandler(profileService, s.logger)

		s.router.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(middleware.RateLimitConfig{
				RequestsPerMinute: s.config.Server.APIRateLimit,
			}))
			r.Get("/Profiles", profilesHandler.HandleProfiles)
		})

	default:
		return fmt.Errorf("unknown surface %q", s.surface)
	}

	return nil
}

// Handler exposes the router, for tests and for embedding in another server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr is the listen address for this surface.
func (s *Server) Addr() string {
	if s.surface == Pages {
		return s.config.PagesAddr()
	}
	return s.config.APIAddr()
}

// Close releases the database. Start calls it itself; use Close only for a
// Server that is never started.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until ctx is cancelled, then shuts down gracefully: stop
// accepting connections, give in-flight requests up to 30 seconds, close the
// database.
func (s *Server) Start(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("database", s.db.Path()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
