package migrations

import (
	"context"
	"database/sql"
)

// createBackendUsersTable creates the backend_users table.
func createBackendUsersTable() Migration {
	return Migration{
		Name:        "create_backend_users_table",
		Description: "Creates the backend_users table",
		TableName:   "backend_users",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS backend_users (
					id BIGSERIAL PRIMARY KEY,
					name VARCHAR(191) NOT NULL,
					email VARCHAR(255) NOT NULL,
					password_hash VARCHAR(255) NOT NULL,
					salt VARCHAR(255) NOT NULL,
					role VARCHAR(20) NOT NULL DEFAULT 'user',
					should_reset_password BOOLEAN NOT NULL DEFAULT FALSE,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT idx_backend_users_email UNIQUE (email)
				)
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createSessionsTable creates the sessions table that tracks issued session
// tokens for server-side revocation.
func createSessionsTable() Migration {
	return Migration{
		Name:        "create_sessions_table",
		Description: "Creates the sessions table",
		TableName:   "sessions",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS sessions (
					session_id VARCHAR(36) PRIMARY KEY,
					user_id BIGINT NOT NULL REFERENCES backend_users(id) ON DELETE CASCADE,
					jwt_id VARCHAR(36) NOT NULL,
					expires_at TIMESTAMP NOT NULL,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT idx_sessions_jwt_id UNIQUE (jwt_id)
				)
			`
			if _, err := tx.ExecContext(ctx, query); err != nil {
				return err
			}

			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
				`CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at)`,
			}
			for _, idx := range indexes {
				if _, err := tx.ExecContext(ctx, idx); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

// createResetTokensTable creates the backend_user_reset_tokens table.
// Tokens reference accounts by email rather than by user id, so a token can
// be issued for an address with no matching account without revealing that
// fact to the requester.
func createResetTokensTable() Migration {
	return Migration{
		Name:        "create_backend_user_reset_tokens_table",
		Description: "Creates the backend_user_reset_tokens table",
		TableName:   "backend_user_reset_tokens",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS backend_user_reset_tokens (
					id BIGSERIAL PRIMARY KEY,
					email VARCHAR(255) NOT NULL,
					token VARCHAR(64) NOT NULL,
					expire_at TIMESTAMP NOT NULL,
					used_at TIMESTAMP,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT idx_reset_tokens_token UNIQUE (token)
				)
			`
			if _, err := tx.ExecContext(ctx, query); err != nil {
				return err
			}

			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_reset_tokens_email ON backend_user_reset_tokens(email)`,
				`CREATE INDEX IF NOT EXISTS idx_reset_tokens_expire_at ON backend_user_reset_tokens(expire_at)`,
			}
			for _, idx := range indexes {
				if _, err := tx.ExecContext(ctx, idx); err != nil {
					return err
				}
			}

			return nil
		},
	}
}
