package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/auth"
	"github.com/askelund/adminpanel/internal/config"
	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/models"
	"github.com/askelund/adminpanel/internal/service"
	"github.com/askelund/adminpanel/internal/utils"
	"github.com/askelund/adminpanel/internal/view"
)

// LoginHandler handles the login, logout, password-reset, and SSO routes.
type LoginHandler struct {
	users    *service.UserService
	tokens   *service.TokenService
	sessions *auth.SessionManager
	sso      auth.SSOProvider
	renderer view.Renderer
	prefix   string
	cfg      *config.AppConfig
}

// NewLoginHandler creates a new LoginHandler. sso may be nil when no
// provider is configured.
func NewLoginHandler(
	users *service.UserService,
	tokens *service.TokenService,
	sessions *auth.SessionManager,
	sso auth.SSOProvider,
	renderer view.Renderer,
	cfg *config.AppConfig,
) *LoginHandler {
	if users == nil || tokens == nil || sessions == nil || renderer == nil {
		panic("login handler dependencies cannot be nil")
	}
	return &LoginHandler{
		users:    users,
		tokens:   tokens,
		sessions: sessions,
		sso:      sso,
		renderer: renderer,
		prefix:   cfg.AdminPanel.PathPrefix,
		cfg:      cfg,
	}
}

// ShowLogin renders the login form.
func (h *LoginHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	ssoURL := ""
	if h.sso != nil {
		ssoURL = h.prefix + constants.SSOPath
	}

	h.render(w, "login.html", view.PageData{
		Title: "Sign in",
		Flash: utils.PopFlash(w, r),
		Data: map[string]any{
			"Action":   h.prefix + constants.LoginPath,
			"Next":     r.URL.Query().Get(constants.QueryParamNext),
			"ResetURL": h.prefix + constants.ResetRequestPath,
			"SSOURL":   ssoURL,
		},
	})
}

// Login authenticates a submitted credential pair and starts a session.
func (h *LoginHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds models.LoginCredentials
	if err := utils.DecodeAndValidate(r, &creds); err != nil {
		utils.RedirectWithFlash(w, r, h.prefix+constants.LoginPath, utils.Flash{
			Kind:    constants.FlashError,
			Message: utils.ParseError(err).Message,
		})
		return
	}

	user, err := h.users.VerifyCredentials(r.Context(), &creds)
	if err != nil {
		utils.RedirectWithFlash(w, r, h.prefix+constants.LoginPath, utils.Flash{
			Kind:    constants.FlashError,
			Message: constants.MsgLoginFailed,
		})
		return
	}

	if err := h.sessions.Authenticate(r.Context(), w, user); err != nil {
		log.Error().Err(err).Msg("Failed to start session")
		utils.RedirectWithFlash(w, r, h.prefix+constants.LoginPath, utils.Flash{
			Kind:    constants.FlashError,
			Message: constants.MsgLoginError,
		})
		return
	}

	utils.RedirectWithFlash(w, r, h.afterLoginTarget(creds.Next), utils.Flash{
		Kind:    constants.FlashSuccess,
		Message: constants.MsgLoggedIn,
	})
}

// Logout ends the session and returns to the login page.
func (h *LoginHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Unauthenticate(r.Context(), w, r); err != nil {
		log.Error().Err(err).Msg("Failed to revoke session on logout")
	}

	utils.RedirectWithFlash(w, r, h.prefix+constants.LoginPath, utils.Flash{
		Kind:    constants.FlashSuccess,
		Message: constants.MsgLoggedOut,
	})
}

// ShowResetRequest renders the form asking for the account email.
func (h *LoginHandler) ShowResetRequest(w http.ResponseWriter, r *http.Request) {
	h.render(w, "reset_request.html", view.PageData{
		Title: "Reset password",
		Flash: utils.PopFlash(w, r),
		Data: map[string]any{
			"Action": h.prefix + constants.ResetRequestPath,
		},
	})
}

// RequestReset issues a reset token for the submitted email. The response is
// identical whether or not the email belongs to an account.
func (h *LoginHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var form models.ResetRequestForm
	if err := utils.DecodeAndValidate(r, &form); err != nil {
		utils.RedirectWithFlash(w, r, h.prefix+constants.ResetRequestPath, utils.Flash{
			Kind:    constants.FlashError,
			Message: utils.ParseError(err).Message,
		})
		return
	}

	if _, err := h.tokens.IssueToken(r.Context(), form.Email); err != nil {
		log.Error().Err(err).Msg("Failed to issue reset token")
	}

	utils.RedirectWithFlash(w, r, h.prefix+constants.LoginPath, utils.Flash{
		Kind:    constants.FlashSuccess,
		Message: constants.MsgResetMailSent,
	})
}

// ShowResetForm renders the new-password form for a token from a reset link.
// A missing or unusable token is a 400, the form never renders for it.
func (h *LoginHandler) ShowResetForm(w http.ResponseWriter, r *http.Request) {
	tokenString := chi.URLParam(r, constants.ParamToken)

	token, err := h.tokens.ValidateToken(r.Context(), tokenString)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_token", "This reset link is invalid or has expired", nil)
		return
	}

	h.render(w, "reset_password.html", view.PageData{
		Title: "Choose a new password",
		Flash: utils.PopFlash(w, r),
		Data: map[string]any{
			"Action": h.prefix + "/login/reset/" + url.PathEscape(token.Token),
			"Token":  token.Token,
			"Email":  token.Email,
		},
	})
}

// SubmitReset consumes the token and stores the new password.
func (h *LoginHandler) SubmitReset(w http.ResponseWriter, r *http.Request) {
	tokenString := chi.URLParam(r, constants.ParamToken)
	backURL := h.prefix + "/login/reset/" + url.PathEscape(tokenString)

	var form models.ResetPasswordForm
	if err := utils.DecodeForm(r, &form); err != nil {
		utils.RedirectWithFlash(w, r, backURL, utils.Flash{
			Kind:    constants.FlashError,
			Message: utils.ParseError(err).Message,
		})
		return
	}
	form.Token = tokenString

	if err := h.tokens.ConsumeToken(r.Context(), &form); err != nil {
		appErr := utils.ParseError(err)
		if appErr.StatusCode >= http.StatusInternalServerError {
			log.Error().Err(err).Msg("Failed to consume reset token")
		}
		utils.RedirectWithFlash(w, r, backURL, utils.Flash{
			Kind:    constants.FlashError,
			Message: appErr.Message,
		})
		return
	}

	utils.RedirectWithFlash(w, r, h.prefix+constants.LoginPath, utils.Flash{
		Kind:    constants.FlashSuccess,
		Message: constants.MsgPasswordReset,
	})
}

// SSO redirects the browser to the external identity provider.
func (h *LoginHandler) SSO(w http.ResponseWriter, r *http.Request) {
	if h.sso == nil {
		utils.ErrorFromAppError(w, utils.NewConfigurationError(""))
		return
	}

	state, err := auth.RandomAlphanumeric(32)
	if err != nil {
		utils.InternalServerError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.SSOStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(constants.SSOStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.sso.AuthURL(state), http.StatusFound)
}

// SSOCallback binds the provider identity to an existing backend user and
// starts a session. SSO never creates accounts.
func (h *LoginHandler) SSOCallback(w http.ResponseWriter, r *http.Request) {
	if h.sso == nil {
		utils.ErrorFromAppError(w, utils.NewConfigurationError(""))
		return
	}

	stateCookie, err := r.Cookie(constants.SSOStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		utils.RedirectWithFlash(w, r, h.prefix+constants.LoginPath, utils.Flash{
			Kind:    constants.FlashError,
			Message: constants.MsgSSOStateMismatch,
		})
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SSOStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	identity, err := h.sso.Callback(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("SSO callback failed")
		utils.RedirectWithFlash(w, r, h.prefix+constants.LoginPath, utils.Flash{
			Kind:    constants.FlashError,
			Message: constants.MsgSSOFailed,
		})
		return
	}

	user, err := h.users.FindByEmail(r.Context(), identity.Email)
	if err != nil {
		utils.LogAuth("sso_login_failed", 0, identity.Email, false, "no backend user")
		utils.RedirectWithFlash(w, r, h.prefix+constants.LoginPath, utils.Flash{
			Kind:    constants.FlashError,
			Message: constants.MsgSSOUnknownIdentity,
		})
		return
	}

	if err := h.sessions.Authenticate(r.Context(), w, user); err != nil {
		log.Error().Err(err).Msg("Failed to start session after SSO")
		utils.RedirectWithFlash(w, r, h.prefix+constants.LoginPath, utils.Flash{
			Kind:    constants.FlashError,
			Message: constants.MsgLoginError,
		})
		return
	}

	utils.RedirectWithFlash(w, r, h.prefix+constants.DashboardPath, utils.Flash{
		Kind:    constants.FlashSuccess,
		Message: constants.MsgLoggedIn,
	})
}

// afterLoginTarget picks the post-login destination. Only local paths are
// honored so the next parameter cannot redirect off-site.
func (h *LoginHandler) afterLoginTarget(next string) string {
	if next != "" && strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return h.prefix + constants.DashboardPath
}

func (h *LoginHandler) render(w http.ResponseWriter, name string, data view.PageData) {
	if err := h.renderer.Render(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Render failed")
		utils.InternalServerError(w, err)
	}
}
