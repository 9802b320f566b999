package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/database"
	"github.com/askelund/adminpanel/internal/models"
	"github.com/askelund/adminpanel/internal/utils"
)

// ResetTokenRepository defines methods for interacting with password-reset tokens
type ResetTokenRepository interface {
	Replace(ctx context.Context, token *models.ResetToken) error
	GetByToken(ctx context.Context, token string) (*models.ResetToken, error)
	MarkUsed(ctx context.Context, token string, usedAt time.Time) error
	DeleteByEmail(ctx context.Context, email string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// PostgresResetTokenRepository is a PostgreSQL implementation of ResetTokenRepository
type PostgresResetTokenRepository struct {
	db *database.Pool
}

// NewResetTokenRepository creates a new ResetTokenRepository
func NewResetTokenRepository(db *database.Pool) ResetTokenRepository {
	return &PostgresResetTokenRepository{
		db: db,
	}
}

// Replace stores the token after removing any existing token for the same
// email. Delete and insert run in one transaction, keeping at most one
// active token per email even under concurrent requests.
func (r *PostgresResetTokenRepository) Replace(ctx context.Context, token *models.ResetToken) error {
	// Start query timer
	startTime := time.Now()

	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		deleteQuery := "DELETE FROM backend_user_reset_tokens WHERE email = $1"
		if _, err := tx.ExecContext(ctx, deleteQuery, token.Email); err != nil {
			return fmt.Errorf("failed to delete previous reset tokens: %w", err)
		}

		insertQuery := `
            INSERT INTO backend_user_reset_tokens (email, token, expire_at, used_at, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id
        `

		err := tx.QueryRowContext(
			ctx,
			insertQuery,
			token.Email,
			token.Token,
			token.ExpireAt,
			token.UsedAt,
			token.CreatedAt,
			token.UpdatedAt,
		).Scan(&token.ID)

		utils.LogDBQuery(
			insertQuery,
			[]interface{}{token.Email, "[REDACTED]", token.ExpireAt, token.UsedAt, token.CreatedAt, token.UpdatedAt},
			time.Since(startTime),
			err,
		)

		if err != nil {
			return fmt.Errorf("failed to store reset token: %w", err)
		}

		log.Info().
			Str("email", token.Email).
			Time("expire_at", token.ExpireAt).
			Msg("Reset token replaced")

		return nil
	})
}

// GetByToken retrieves a reset token by its exact token string
func (r *PostgresResetTokenRepository) GetByToken(ctx context.Context, tokenString string) (*models.ResetToken, error) {
	// Start query timer
	startTime := time.Now()

	query := `
        SELECT id, email, token, expire_at, used_at, created_at, updated_at
        FROM backend_user_reset_tokens
        WHERE token = $1
    `

	token := &models.ResetToken{}
	err := r.db.QueryRowContext(ctx, query, tokenString).Scan(
		&token.ID,
		&token.Email,
		&token.Token,
		&token.ExpireAt,
		&token.UsedAt,
		&token.CreatedAt,
		&token.UpdatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{"[REDACTED]"},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("ResetToken", "token")
		}
		return nil, fmt.Errorf("failed to get reset token: %w", err)
	}

	return token, nil
}

// MarkUsed records the consumption time for a token. Only tokens that have
// not been used yet are affected, so the nil to non-nil transition happens
// exactly once.
func (r *PostgresResetTokenRepository) MarkUsed(ctx context.Context, tokenString string, usedAt time.Time) error {
	// Start query timer
	startTime := time.Now()

	query := `
        UPDATE backend_user_reset_tokens
        SET used_at = $1, updated_at = $2
        WHERE token = $3 AND used_at IS NULL
    `

	result, err := r.db.ExecContext(ctx, query, usedAt, usedAt, tokenString)

	utils.LogDBQuery(
		query,
		[]interface{}{usedAt, usedAt, "[REDACTED]"},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to mark reset token used: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("ResetToken", "token")
	}

	return nil
}

// DeleteByEmail removes all reset tokens for an email address
func (r *PostgresResetTokenRepository) DeleteByEmail(ctx context.Context, email string) error {
	// Start query timer
	startTime := time.Now()

	query := "DELETE FROM backend_user_reset_tokens WHERE email = $1"

	_, err := r.db.ExecContext(ctx, query, email)

	utils.LogDBQuery(
		query,
		[]interface{}{email},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to delete reset tokens for email: %w", err)
	}

	return nil
}

// DeleteExpired removes tokens whose expiry has passed. The server's
// maintenance task calls this periodically.
func (r *PostgresResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	// Start query timer
	startTime := time.Now()

	query := "DELETE FROM backend_user_reset_tokens WHERE expire_at < $1"

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, now)

	utils.LogDBQuery(
		query,
		[]interface{}{now},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected > 0 {
		log.Info().
			Int64("count", rowsAffected).
			Msg("Expired reset tokens deleted")
	}

	return rowsAffected, nil
}
