package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/database"
	"github.com/askelund/adminpanel/internal/models"
	"github.com/askelund/adminpanel/internal/utils"
)

// BackendUserRepository defines methods for interacting with backend-user data
type BackendUserRepository interface {
	Create(ctx context.Context, user *models.BackendUser) error
	GetByID(ctx context.Context, id int64) (*models.BackendUser, error)
	GetByEmail(ctx context.Context, email string) (*models.BackendUser, error)
	First(ctx context.Context) (*models.BackendUser, error)
	Update(ctx context.Context, user *models.BackendUser) error
	Delete(ctx context.Context, id int64) error
	ChangePassword(ctx context.Context, id int64, passwordHash, salt string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*models.BackendUser, error)
}

// PostgresBackendUserRepository is a PostgreSQL implementation of BackendUserRepository
type PostgresBackendUserRepository struct {
	db *database.Pool
}

// NewBackendUserRepository creates a new BackendUserRepository
func NewBackendUserRepository(db *database.Pool) BackendUserRepository {
	return &PostgresBackendUserRepository{
		db: db,
	}
}

// Create adds a new backend user to the database
func (r *PostgresBackendUserRepository) Create(ctx context.Context, user *models.BackendUser) error {
	// Start query timer
	startTime := time.Now()

	// Set created/updated timestamps
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
        INSERT INTO backend_users (name, email, password_hash, salt, role, should_reset_password, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `

	err := r.db.QueryRowContext(
		ctx,
		query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Salt,
		user.Role,
		user.ShouldResetPassword,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	utils.LogDBQuery(
		query,
		[]interface{}{user.Name, user.Email, "[REDACTED]", "[REDACTED]", user.Role, user.ShouldResetPassword, user.CreatedAt, user.UpdatedAt},
		time.Since(startTime),
		err,
	)

	if err != nil {
		// Check for unique constraint violations using PostgreSQL error handling
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && strings.Contains(pqErr.Constraint, "email") {
				return utils.NewDuplicateError("BackendUser", "email", user.Email)
			}
		}
		return fmt.Errorf("failed to create backend user: %w", err)
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Str("role", user.Role).
		Msg("Backend user created")

	return nil
}

// GetByID retrieves a backend user by ID
func (r *PostgresBackendUserRepository) GetByID(ctx context.Context, id int64) (*models.BackendUser, error) {
	// Start query timer
	startTime := time.Now()

	query := `
        SELECT id, name, email, password_hash, salt, role, should_reset_password, created_at, updated_at
        FROM backend_users
        WHERE id = $1
    `

	user := &models.BackendUser{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.Role,
		&user.ShouldResetPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("BackendUser", id)
		}
		return nil, fmt.Errorf("failed to get backend user by ID: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a backend user by email
func (r *PostgresBackendUserRepository) GetByEmail(ctx context.Context, email string) (*models.BackendUser, error) {
	// Start query timer
	startTime := time.Now()

	// Case-insensitive comparison, emails are stored as entered
	query := `
        SELECT id, name, email, password_hash, salt, role, should_reset_password, created_at, updated_at
        FROM backend_users
        WHERE LOWER(email) = LOWER($1)
    `

	user := &models.BackendUser{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.Role,
		&user.ShouldResetPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{email},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("BackendUser", fmt.Sprintf("email=%s", email))
		}
		return nil, fmt.Errorf("failed to get backend user by email: %w", err)
	}

	return user, nil
}

// First retrieves the earliest-created backend user. The development
// auto-login path uses this to pick the account to sign in as.
func (r *PostgresBackendUserRepository) First(ctx context.Context) (*models.BackendUser, error) {
	// Start query timer
	startTime := time.Now()

	query := `
        SELECT id, name, email, password_hash, salt, role, should_reset_password, created_at, updated_at
        FROM backend_users
        ORDER BY id ASC
        LIMIT 1
    `

	user := &models.BackendUser{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Salt,
		&user.Role,
		&user.ShouldResetPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	utils.LogDBQuery(
		query,
		nil,
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("BackendUser", "first")
		}
		return nil, fmt.Errorf("failed to get first backend user: %w", err)
	}

	return user, nil
}

// Update updates a backend user in the database
func (r *PostgresBackendUserRepository) Update(ctx context.Context, user *models.BackendUser) error {
	// Start query timer
	startTime := time.Now()

	// Update the updated_at timestamp
	user.UpdatedAt = time.Now()

	query := `
        UPDATE backend_users
        SET name = $1, email = $2, role = $3, should_reset_password = $4, updated_at = $5
        WHERE id = $6
    `

	result, err := r.db.ExecContext(
		ctx,
		query,
		user.Name,
		user.Email,
		user.Role,
		user.ShouldResetPassword,
		user.UpdatedAt,
		user.ID,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{user.Name, user.Email, user.Role, user.ShouldResetPassword, user.UpdatedAt, user.ID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && strings.Contains(pqErr.Constraint, "email") {
				return utils.NewDuplicateError("BackendUser", "email", user.Email)
			}
		}
		return fmt.Errorf("failed to update backend user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("BackendUser", user.ID)
	}

	log.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("Backend user updated")

	return nil
}

// Delete removes a backend user from the database
func (r *PostgresBackendUserRepository) Delete(ctx context.Context, id int64) error {
	// Start query timer
	startTime := time.Now()

	// Delete within a transaction so related sessions go with the account
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		sessionQuery := "DELETE FROM sessions WHERE user_id = $1"
		if _, err := tx.ExecContext(ctx, sessionQuery, id); err != nil {
			return fmt.Errorf("failed to delete user sessions: %w", err)
		}

		query := "DELETE FROM backend_users WHERE id = $1"
		result, err := tx.ExecContext(ctx, query, id)

		utils.LogDBQuery(
			query,
			[]interface{}{id},
			time.Since(startTime),
			err,
		)

		if err != nil {
			return fmt.Errorf("failed to delete backend user: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return utils.NewNotFoundError("BackendUser", id)
		}

		log.Info().
			Int64("user_id", id).
			Msg("Backend user deleted")

		return nil
	})
}

// ChangePassword updates a backend user's password and clears the forced
// reset flag, so the guard stops redirecting the account.
func (r *PostgresBackendUserRepository) ChangePassword(ctx context.Context, id int64, passwordHash, salt string) error {
	// Start query timer
	startTime := time.Now()

	query := `
        UPDATE backend_users
        SET password_hash = $1, salt = $2, should_reset_password = FALSE, updated_at = $3
        WHERE id = $4
    `

	now := time.Now()
	result, err := r.db.ExecContext(
		ctx,
		query,
		passwordHash,
		salt,
		now,
		id,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{"[REDACTED]", "[REDACTED]", now, id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("BackendUser", id)
	}

	log.Info().
		Int64("user_id", id).
		Msg("Backend user password changed")

	return nil
}

// ExistsByEmail checks if a backend user with the given email exists
func (r *PostgresBackendUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	// Start query timer
	startTime := time.Now()

	query := `SELECT EXISTS(SELECT 1 FROM backend_users WHERE LOWER(email) = LOWER($1))`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, email).Scan(&exists)

	utils.LogDBQuery(
		query,
		[]interface{}{email},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return false, fmt.Errorf("failed to check if email exists: %w", err)
	}

	return exists, nil
}

// List retrieves all backend users ordered by name
func (r *PostgresBackendUserRepository) List(ctx context.Context) ([]*models.BackendUser, error) {
	// Start query timer
	startTime := time.Now()

	query := `
        SELECT id, name, email, password_hash, salt, role, should_reset_password, created_at, updated_at
        FROM backend_users
        ORDER BY name ASC
    `

	rows, err := r.db.QueryContext(ctx, query)

	utils.LogDBQuery(
		query,
		nil,
		time.Since(startTime),
		err,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to list backend users: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	var users []*models.BackendUser
	for rows.Next() {
		user := &models.BackendUser{}
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Salt,
			&user.Role,
			&user.ShouldResetPassword,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan backend user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating backend users: %w", err)
	}

	return users, nil
}
