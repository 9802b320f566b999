// Package server provides the HTTP server for the admin panel.
//
// It wires the database, repositories, services, and handlers together,
// mounts the routes under the configured path prefix, and manages the
// server lifecycle including graceful shutdown and background maintenance.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/auth"
	"github.com/askelund/adminpanel/internal/config"
	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/database"
	"github.com/askelund/adminpanel/internal/handlers"
	"github.com/askelund/adminpanel/internal/repository"
	"github.com/askelund/adminpanel/internal/service"
	"github.com/askelund/adminpanel/internal/utils/ratelimit"
	"github.com/askelund/adminpanel/internal/view"
	"github.com/askelund/adminpanel/migrations"
	"github.com/askelund/adminpanel/scripts"
)

// Handlers contains all HTTP handlers for the admin panel.
type Handlers struct {
	// Login manages the login, logout, password-reset, and SSO endpoints
	Login *handlers.LoginHandler

	// Users manages the backend-user CRUD endpoints
	Users *handlers.BackendUserHandler

	// Dashboard renders the panel landing page
	Dashboard *handlers.DashboardHandler
}

// repositories bundles the data access layer behind the services.
type repositories struct {
	users    repository.BackendUserRepository
	sessions repository.SessionRepository
	tokens   repository.ResetTokenRepository
}

// services bundles the business logic layer behind the handlers.
type services struct {
	users       *service.UserService
	tokens      *service.TokenService
	maintenance *service.MaintenanceService
}

// Server represents the admin panel server. It encapsulates all components
// and handles lifecycle management from initialization to graceful shutdown.
type Server struct {
	// Config contains application configuration
	Config *config.AppConfig

	// Db provides database access
	Db *database.Pool

	// Handlers contains all HTTP request handlers
	Handlers *Handlers

	router       chi.Router
	repositories repositories
	services     services
	sessions     *auth.SessionManager
	sso          auth.SSOProvider
	rateStore    *ratelimit.Store
	httpServer   *http.Server
}

// NewServer creates a new server instance with all required components.
// Initialization runs in dependency order: database, auth providers,
// repositories, services, handlers, routes.
func NewServer(cfg *config.AppConfig) (*Server, error) {
	s := &Server{
		Config: cfg,
	}

	if err := s.setupDatabase(); err != nil {
		return nil, fmt.Errorf("failed to set up database: %w", err)
	}

	s.setupRepositories()

	if err := s.setupAuth(); err != nil {
		return nil, fmt.Errorf("failed to set up authentication: %w", err)
	}

	s.setupServices()

	if err := s.setupHandlers(); err != nil {
		return nil, fmt.Errorf("failed to set up handlers: %w", err)
	}

	s.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ServerAddress(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  constants.DefaultIdleTimeout,
	}

	return s, nil
}

// setupDatabase connects to the database, runs migrations, and seeds the
// initial super admin account when the panel starts on an empty database.
func (s *Server) setupDatabase() error {
	db, err := database.Connect(s.Config)
	if err != nil {
		return err
	}
	s.Db = db

	migrator := migrations.NewMigrator(db)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	seeder := scripts.NewSeeder(db, auth.ConfigFromAppConfig(s.Config))
	if err := seeder.SeedDatabase(context.Background()); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	return nil
}

func (s *Server) setupRepositories() {
	s.repositories = repositories{
		users:    repository.NewBackendUserRepository(s.Db),
		sessions: repository.NewSessionRepository(s.Db),
		tokens:   repository.NewResetTokenRepository(s.Db),
	}
}

// setupAuth initializes the session manager and, when configured, the
// external identity provider.
func (s *Server) setupAuth() error {
	s.sessions = auth.NewSessionManager(s.Config, s.repositories.sessions, s.repositories.users)

	provider, err := auth.NewOIDCProvider(context.Background(), &s.Config.SSO)
	if err != nil {
		return fmt.Errorf("failed to set up SSO provider: %w", err)
	}
	if provider != nil {
		s.sso = provider
	}

	s.rateStore = ratelimit.NewStore(ratelimit.Rate{
		RequestsPerSecond: constants.LoginRatePerSecond,
		Burst:             constants.LoginRateBurst,
	}, constants.DBMaintenanceInterval)

	return nil
}

func (s *Server) setupServices() {
	passwordCfg := auth.ConfigFromAppConfig(s.Config)
	mailer := service.NewMailer(s.Config)

	s.services = services{
		users:       service.NewUserService(s.repositories.users, s.repositories.sessions, mailer, passwordCfg),
		tokens:      service.NewTokenService(s.repositories.tokens, s.repositories.users, mailer, passwordCfg),
		maintenance: service.NewMaintenanceService(s.repositories.sessions, s.repositories.tokens),
	}
}

func (s *Server) setupHandlers() error {
	renderer, err := view.NewTemplateRenderer(s.Config.AdminPanel.TemplatesDir)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	prefix := s.Config.AdminPanel.PathPrefix
	s.Handlers = &Handlers{
		Login:     handlers.NewLoginHandler(s.services.users, s.services.tokens, s.sessions, s.sso, renderer, s.Config),
		Users:     handlers.NewBackendUserHandler(s.services.users, renderer, prefix),
		Dashboard: handlers.NewDashboardHandler(renderer, prefix),
	}

	return nil
}

// Start starts the HTTP server and blocks until a server error occurs or a
// shutdown signal is received, then shuts down gracefully.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)

	go func() {
		log.Info().
			Str("address", s.Config.Server.ServerAddress()).
			Str("path_prefix", s.Config.AdminPanel.PathPrefix).
			Msg("Starting admin panel server")

		serverErrors <- s.httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	maintenanceCtx, stopMaintenance := context.WithCancel(context.Background())
	defer stopMaintenance()
	s.services.maintenance.Start(maintenanceCtx)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info().
			Str("signal", sig.String()).
			Msg("Shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			if closeErr := s.httpServer.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("Failed to close server")
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to finish before closing the database connection.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	log.Info().Msg("Server stopped gracefully")

	s.Db.Close()
	log.Info().Msg("Database connection closed")

	return nil
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.Config.Server.ShutdownTimeout > 0 {
		return s.Config.Server.ShutdownTimeout
	}
	return constants.DefaultShutdownTimeout
}
