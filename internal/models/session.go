// Package models provides the data structures of the admin panel: backend
// users, password-reset tokens, login sessions, and the form payloads the
// handlers decode into.
package models

import (
	"time"

	"github.com/askelund/adminpanel/internal/constants"
)

// Session tracks an issued session token so that logout can revoke it before
// the token itself expires. The JWTID matches the jti claim of the signed
// cookie token.
type Session struct {
	// ID is the unique identifier for this session
	ID string `json:"id" db:"session_id"`

	// UserID references the backend user who owns this session
	UserID int64 `json:"user_id" db:"user_id"`

	// JWTID stores the unique identifier of the token associated with this
	// session, enabling revocation of specific tokens
	JWTID string `json:"jwt_id" db:"jwt_id"`

	// ExpiresAt defines when this session will automatically expire
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	// CreatedAt records when this session was initiated
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the database table name for the Session model.
func (s *Session) TableName() string {
	return constants.TableSessions
}

// NewSession creates a new Session for the given user and token identifier.
func NewSession(userID int64, jwtID string, expiryDuration time.Duration) *Session {
	now := time.Now()
	return &Session{
		UserID:    userID,
		JWTID:     jwtID,
		ExpiresAt: now.Add(expiryDuration),
		CreatedAt: now,
	}
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
