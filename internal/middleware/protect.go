// Package middleware provides HTTP middleware components.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/auth"
	"github.com/askelund/adminpanel/internal/config"
	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/models"
	"github.com/askelund/adminpanel/internal/repository"
	"github.com/askelund/adminpanel/internal/utils"
)

type contextKey string

const userContextKey = contextKey(constants.BackendUserContextKey)

// UserFromContext returns the authenticated backend user attached by the
// Protect middleware. The user is sanitized, it carries no credential
// material.
func UserFromContext(ctx context.Context) (*models.BackendUser, bool) {
	user, ok := ctx.Value(userContextKey).(*models.BackendUser)
	return user, ok
}

// WithUser attaches a backend user to the context. Exposed so handler tests
// can simulate an authenticated request.
func WithUser(ctx context.Context, user *models.BackendUser) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// Protect guards the admin routes. Requests with a valid session continue
// with the user attached to the context; users flagged for a password reset
// are redirected to their own edit form until they change it. Sessionless
// requests either auto-login as the first user on record (local and
// development environments only, opt-in) or get redirected to the login page
// with the original path preserved in the next parameter.
func Protect(sessions *auth.SessionManager, users repository.BackendUserRepository, cfg *config.AppConfig) func(http.Handler) http.Handler {
	prefix := cfg.AdminPanel.PathPrefix
	updatePath := prefix + constants.UserUpdatePath

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.CurrentUser(r.Context(), r)
			if err == nil {
				serveAs(next, w, r, user, updatePath, prefix)
				return
			}

			if !utils.IsSessionExpiredError(err) {
				log.Error().Err(err).Str("path", r.URL.Path).Msg("Session resolution failed")
			}

			if cfg.AdminPanel.AutoLoginFirstUser && (cfg.App.IsLocal() || cfg.App.IsDevelopment()) {
				first, ferr := users.First(r.Context())
				if ferr == nil {
					if aerr := sessions.Authenticate(r.Context(), w, first); aerr == nil {
						log.Info().Int64("user_id", first.ID).Msg("Auto-logged in first backend user")
						serveAs(next, w, r, first, updatePath, prefix)
						return
					}
				}
			}

			loginURL := fmt.Sprintf("%s%s?%s=%s", prefix, constants.LoginPath, constants.QueryParamNext, url.QueryEscape(r.URL.Path))
			utils.RedirectWithFlash(w, r, loginURL, utils.Flash{
				Kind:    constants.FlashError,
				Message: constants.MsgSessionExpired,
			})
		})
	}
}

// serveAs enforces the forced password reset before passing the request on
// with the user attached.
func serveAs(next http.Handler, w http.ResponseWriter, r *http.Request, user *models.BackendUser, updatePath, prefix string) {
	editPath := fmt.Sprintf("%s%s%d", prefix, constants.UserEditBasePath, user.ID)

	if user.ShouldResetPassword && r.URL.Path != editPath && r.URL.Path != updatePath {
		utils.RedirectWithFlash(w, r, editPath, utils.Flash{
			Kind:    constants.FlashError,
			Message: constants.MsgChangePassword,
		})
		return
	}

	next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user.Sanitize())))
}
