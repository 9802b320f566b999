// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines constants related to database structures,
// including table names and column names. Using these constants instead of
// string literals reduces the risk of SQL errors and simplifies schema changes.
package constants

// Table Names define the names of database tables used in the application.
const (
	// TableBackendUsers is the name of the table storing backend-user accounts.
	TableBackendUsers = "backend_users"

	// TableResetTokens is the name of the table storing password-reset tokens.
	TableResetTokens = "backend_user_reset_tokens"

	// TableSessions is the name of the table storing login session information.
	TableSessions = "sessions"
)

// Common Column Names define frequently used database column names.
const (
	// ColumnID is the generic primary key column name.
	ColumnID = "id"

	// ColumnUserID is the column name for backend-user identifier foreign keys.
	ColumnUserID = "user_id"

	// ColumnEmail is the column name for account email addresses.
	ColumnEmail = "email"

	// ColumnToken is the column name for reset token strings.
	ColumnToken = "token"

	// ColumnPasswordHash is the column name for hashed passwords.
	ColumnPasswordHash = "password_hash"

	// ColumnSalt is the column name for password salt values.
	ColumnSalt = "salt"

	// ColumnJWTID is the column name for session token identifiers.
	ColumnJWTID = "jwt_id"

	// ColumnExpiresAt is the column name for expiration timestamps.
	ColumnExpiresAt = "expires_at"

	// ColumnCreatedAt is the column name for creation timestamps.
	ColumnCreatedAt = "created_at"
)

// PostgreSQL connection string parameters.
const (
	PostgresSSLDisable = "sslmode=disable connect_timeout=15"
)
