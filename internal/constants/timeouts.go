package constants

import "time"

// Server Timeouts
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

// Database Timeouts
const (
	DBConnectionTimeout   = 10 * time.Second
	DBHealthCheckTimeout  = 5 * time.Second
	DBConnMaxLifetime     = 1 * time.Hour
	DBConnMaxIdleTime     = 30 * time.Minute
	DBMaintenanceInterval = 1 * time.Hour
)

// Authentication Lifetimes
const (
	// ResetTokenTTL is how long a password-reset token stays usable.
	ResetTokenTTL = 1 * time.Hour

	// DefaultSessionExpiry is how long a login session stays valid.
	DefaultSessionExpiry = 24 * time.Hour

	// SSOStateTTL bounds the OIDC state cookie between redirect and callback.
	SSOStateTTL = 10 * time.Minute
)
