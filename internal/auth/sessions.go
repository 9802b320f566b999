package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/askelund/adminpanel/internal/config"
	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/models"
	"github.com/askelund/adminpanel/internal/repository"
	"github.com/askelund/adminpanel/internal/utils"
)

// Session token errors
var (
	ErrInvalidSigningMethod = errors.New("invalid signing method")
	ErrInvalidTokenClaims   = errors.New("invalid token claims")
)

// SessionClaims represents the claims in a session token
type SessionClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// SessionManager issues and resolves the signed session cookie. Every issued
// token carries a jti that is persisted through the session repository, so a
// session can be revoked server-side even while its token is still unexpired.
type SessionManager struct {
	config   *config.SessionSettings
	secure   bool
	sessions repository.SessionRepository
	users    repository.BackendUserRepository
}

// NewSessionManager creates a new SessionManager instance
func NewSessionManager(cfg *config.AppConfig, sessions repository.SessionRepository, users repository.BackendUserRepository) *SessionManager {
	return &SessionManager{
		config:   &cfg.Session,
		secure:   cfg.Session.Secure,
		sessions: sessions,
		users:    users,
	}
}

// Authenticate logs a backend user in: it signs a new session token, records
// its jti in the sessions table, and sets the session cookie on the response.
func (s *SessionManager) Authenticate(ctx context.Context, w http.ResponseWriter, user *models.BackendUser) error {
	token, jwtID, err := s.generateToken(user)
	if err != nil {
		return err
	}

	session := models.NewSession(user.ID, jwtID, s.expiry())
	if err := s.sessions.Create(ctx, session); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.expiry().Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	utils.LogAuth("login", user.ID, user.Email, true, "")
	return nil
}

// Unauthenticate logs the current user out: it revokes the session row for
// the cookie's jti and expires the cookie. A missing or mangled cookie is
// not an error, logout must always succeed.
func (s *SessionManager) Unauthenticate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(constants.SessionCookie)
	if err == nil && cookie.Value != "" {
		if jwtID, perr := s.parseJWTID(cookie.Value); perr == nil && jwtID != "" {
			if derr := s.sessions.DeleteByJWTID(ctx, jwtID); derr != nil && !utils.IsNotFoundError(derr) {
				return fmt.Errorf("failed to revoke session: %w", derr)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// CurrentUser resolves the request's session cookie to a backend user. The
// token signature, the session row behind its jti, and the user row must all
// check out; any failure along the way reports an expired session so callers
// can redirect to the login page without leaking which step failed.
func (s *SessionManager) CurrentUser(ctx context.Context, r *http.Request) (*models.BackendUser, error) {
	cookie, err := r.Cookie(constants.SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, utils.NewSessionExpiredError()
	}

	claims, err := s.validateToken(cookie.Value)
	if err != nil {
		return nil, utils.NewSessionExpiredError()
	}

	valid, err := s.sessions.IsValidSession(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !valid {
		return nil, utils.NewSessionExpiredError()
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return nil, utils.NewSessionExpiredError()
		}
		return nil, err
	}

	return user, nil
}

// RevokeUserSessions removes every session belonging to a backend user. Used
// when a user is deleted or their password is changed by an admin.
func (s *SessionManager) RevokeUserSessions(ctx context.Context, userID int64) error {
	return s.sessions.DeleteByUserID(ctx, userID)
}

func (s *SessionManager) expiry() time.Duration {
	if s.config.Expiry > 0 {
		return s.config.Expiry
	}
	return constants.DefaultSessionExpiry
}

// generateToken creates a new signed session token for a user
func (s *SessionManager) generateToken(user *models.BackendUser) (string, string, error) {
	jwtID := uuid.New().String()

	now := time.Now()
	claims := SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry())),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jwtID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, jwtID, nil
}

// validateToken validates a session token and returns its claims if valid
func (s *SessionManager) validateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return []byte(s.config.Secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, utils.NewExpiredTokenError()
		}
		return nil, utils.NewInvalidTokenError()
	}

	if !token.Valid {
		return nil, utils.NewInvalidTokenError()
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, utils.NewInvalidTokenError()
	}

	return claims, nil
}

// parseJWTID extracts the jti from a token without validating it. Logout
// needs the jti even when the token has already expired.
func (s *SessionManager) parseJWTID(tokenString string) (string, error) {
	token, _ := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(""), nil // the signature is not checked here
	})
	if token == nil {
		return "", ErrInvalidTokenClaims
	}

	if claims, ok := token.Claims.(*SessionClaims); ok {
		return claims.ID, nil
	}

	return "", ErrInvalidTokenClaims
}
