package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/middleware"
	"github.com/askelund/adminpanel/internal/utils"
	"github.com/askelund/adminpanel/internal/utils/ratelimit"
)

// credentialRateCategory selects the stricter rate budget for endpoints that
// accept credentials or issue reset tokens.
const credentialRateCategory = "credentials"

// SetupRoutes configures all routes for the admin panel. The panel is
// mounted under the configured path prefix; only the health endpoint lives
// outside it.
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogging())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Recovery())

	r.Get(constants.HealthPath, s.handleHealth)

	prefix := s.Config.AdminPanel.PathPrefix
	r.Route(prefix, func(r chi.Router) {
		// Credential endpoints are public but rate limited.
		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(s.rateStore, credentialRateCategory))

			r.Get(constants.LoginPath, s.Handlers.Login.ShowLogin)
			r.Post(constants.LoginPath, s.Handlers.Login.Login)

			r.Get(constants.ResetRequestPath, s.Handlers.Login.ShowResetRequest)
			r.Post(constants.ResetRequestPath, s.Handlers.Login.RequestReset)
			r.Get(constants.ResetTokenPath, s.Handlers.Login.ShowResetForm)
			r.Post(constants.ResetTokenPath, s.Handlers.Login.SubmitReset)

			r.Get(constants.SSOPath, s.Handlers.Login.SSO)
			r.Get(constants.SSOCallbackPath, s.Handlers.Login.SSOCallback)
		})

		r.Get(constants.LogoutPath, s.Handlers.Login.Logout)

		// Everything else requires a valid session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Protect(s.sessions, s.repositories.users, s.Config))

			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, prefix+constants.DashboardPath, http.StatusSeeOther)
			})
			r.Get(constants.DashboardPath, s.Handlers.Dashboard.Show)

			r.Get(constants.BackendUsersPath, s.Handlers.Users.Index)
			r.Get(constants.UserCreatePath, s.Handlers.Users.Create)
			r.Post(constants.UserStorePath, s.Handlers.Users.Store)
			r.Get(constants.UserEditPath, s.Handlers.Users.Edit)
			r.Post(constants.UserUpdatePath, s.Handlers.Users.Update)
			r.Post(constants.UserDeletePath, s.Handlers.Users.Destroy)
		})
	})

	s.router = r
}

// GetRouter returns the configured router, used by tests to drive requests
// through the full middleware stack.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

// handleHealth reports server and database health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	statusCode := http.StatusOK

	if s.Db != nil {
		if err := s.Db.HealthCheck(r.Context()); err != nil {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}
	}

	utils.JSON(w, statusCode, map[string]string{
		"status":  status,
		"version": s.Config.App.Version,
	})
}
