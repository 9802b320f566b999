// Package repository provides data access interfaces and implementations for
// the admin panel. It follows the repository pattern to abstract database
// operations behind clean interfaces.
//
// This file implements the session repository. The session table tracks the
// jti of every issued session token so logout and account deletion can revoke
// tokens before they expire on their own.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/database"
	"github.com/askelund/adminpanel/internal/models"
	"github.com/askelund/adminpanel/internal/utils"
)

// SessionRepository defines methods for interacting with login sessions.
type SessionRepository interface {
	// Create adds a new session to the database. If the session ID is empty,
	// a new UUID is generated automatically.
	Create(ctx context.Context, session *models.Session) error

	// GetByJWTID retrieves a session by the jti of its token. Returns
	// NotFoundError if no session exists for the jti.
	GetByJWTID(ctx context.Context, jwtID string) (*models.Session, error)

	// DeleteByJWTID removes a session by the jti of its token. Returns
	// NotFoundError if no session exists for the jti.
	DeleteByJWTID(ctx context.Context, jwtID string) error

	// DeleteByUserID removes all sessions for a backend user.
	DeleteByUserID(ctx context.Context, userID int64) error

	// DeleteExpired removes all expired sessions, returning how many were
	// deleted. The server's maintenance task calls this periodically.
	DeleteExpired(ctx context.Context) (int64, error)

	// IsValidSession checks if a session with the given jti exists and has
	// not expired.
	IsValidSession(ctx context.Context, jwtID string) (bool, error)
}

// PostgresSessionRepository is a PostgreSQL implementation of SessionRepository
type PostgresSessionRepository struct {
	db *database.Pool
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *database.Pool) SessionRepository {
	return &PostgresSessionRepository{
		db: db,
	}
}

// Create adds a new session to the database.
func (r *PostgresSessionRepository) Create(ctx context.Context, session *models.Session) error {
	// Start query timer
	startTime := time.Now()

	// Generate a unique ID if not already set
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	query := `
		INSERT INTO sessions (session_id, user_id, jwt_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.JWTID,
		session.ExpiresAt,
		session.CreatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{session.ID, session.UserID, session.JWTID, session.ExpiresAt, session.CreatedAt},
		time.Since(startTime),
		err,
	)

	if err != nil {
		// Check for unique constraint violations
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				if pqErr.Constraint == "sessions_pkey" {
					return utils.NewDuplicateError("Session", "id", session.ID)
				}
				return utils.NewDuplicateError("Session", constants.ColumnJWTID, session.JWTID)
			}
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().
		Str("session_id", session.ID).
		Int64(constants.ColumnUserID, session.UserID).
		Time(constants.ColumnExpiresAt, session.ExpiresAt).
		Msg("Session created")

	return nil
}

// GetByJWTID retrieves a session by the jti of its token.
func (r *PostgresSessionRepository) GetByJWTID(ctx context.Context, jwtID string) (*models.Session, error) {
	// Start query timer
	startTime := time.Now()

	query := `
		SELECT session_id, user_id, jwt_id, expires_at, created_at
		FROM sessions
		WHERE jwt_id = $1
	`

	session := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, jwtID).Scan(
		&session.ID,
		&session.UserID,
		&session.JWTID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{jwtID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Session", fmt.Sprintf("jwt_id=%s", jwtID))
		}
		return nil, fmt.Errorf("failed to get session by JWT ID: %w", err)
	}

	return session, nil
}

// DeleteByJWTID removes a session by the jti of its token.
func (r *PostgresSessionRepository) DeleteByJWTID(ctx context.Context, jwtID string) error {
	// Start query timer
	startTime := time.Now()

	query := `DELETE FROM sessions WHERE jwt_id = $1`

	result, err := r.db.ExecContext(ctx, query, jwtID)

	utils.LogDBQuery(
		query,
		[]interface{}{jwtID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to delete session by JWT ID: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Session", fmt.Sprintf("jwt_id=%s", jwtID))
	}

	log.Info().
		Str(constants.ColumnJWTID, jwtID).
		Msg("Session deleted by JWT ID")

	return nil
}

// DeleteByUserID removes all sessions for a backend user.
func (r *PostgresSessionRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	// Start query timer
	startTime := time.Now()

	query := `DELETE FROM sessions WHERE user_id = $1`

	result, err := r.db.ExecContext(ctx, query, userID)

	utils.LogDBQuery(
		query,
		[]interface{}{userID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to delete sessions by user ID: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	log.Info().
		Int64(constants.ColumnUserID, userID).
		Int64("count", rowsAffected).
		Msg("Sessions deleted for user")

	return nil
}

// DeleteExpired removes all expired sessions from the database.
func (r *PostgresSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	// Start query timer
	startTime := time.Now()

	query := `DELETE FROM sessions WHERE expires_at < $1`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, now)

	utils.LogDBQuery(
		query,
		[]interface{}{now},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if count > 0 {
		log.Info().
			Int64("count", count).
			Msg("Expired sessions deleted")
	}

	return count, nil
}

// IsValidSession checks if a session with the given jti exists and is not expired.
func (r *PostgresSessionRepository) IsValidSession(ctx context.Context, jwtID string) (bool, error) {
	// Start query timer
	startTime := time.Now()

	query := `
		SELECT EXISTS(
			SELECT 1 FROM sessions
			WHERE jwt_id = $1 AND expires_at > $2
		)
	`

	now := time.Now()
	var valid bool
	err := r.db.QueryRowContext(ctx, query, jwtID, now).Scan(&valid)

	utils.LogDBQuery(
		query,
		[]interface{}{jwtID, now},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return false, fmt.Errorf("failed to check session validity: %w", err)
	}

	return valid, nil
}
