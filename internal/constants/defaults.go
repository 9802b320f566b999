// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used throughout the
// application. These constants provide sensible defaults for configuration
// settings and define security parameters. Changes to these values may
// significantly impact application behavior and security.
package constants

// Default Configuration Values define fallback settings when not specified in configuration.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultDBMaxConnections is the default maximum number of database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default minimum number of database connections.
	DefaultDBMinConnections = 5

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"

	// DefaultPathPrefix is the default URL prefix the admin panel is mounted under.
	DefaultPathPrefix = "/admin"

	// DefaultSessionIssuer is the issuer claim value for session tokens.
	DefaultSessionIssuer = "adminpanel"

	// DefaultRole is the role assigned to new backend users when none is chosen.
	DefaultRole = "user"
)

// Environment Types define the recognized application running environments.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvLocal identifies a machine-local environment. The auto-login
	// convenience path is only reachable here or in development.
	EnvLocal = "local"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)

// Request Limits help prevent resource exhaustion from oversized payloads.
const (
	// MaxRequestBodySize is the maximum size in bytes for HTTP request bodies.
	MaxRequestBodySize = 1048576 // 1MB in bytes
)

// Password and Token Parameters define credential generation and policy values.
const (
	// ResetTokenLength is the length of generated password-reset tokens.
	// Tokens are alphanumeric, giving ~380 bits of entropy at this length.
	ResetTokenLength = 64

	// RandomPasswordLength is the length of generated one-time passwords for
	// new backend users.
	RandomPasswordLength = 16

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// MaxNameLength bounds backend-user display names.
	MaxNameLength = 191
)

// Default Password Hash Settings define the parameters for Argon2id hashing.
const (
	// DefaultPasswordHashMemory is the memory cost parameter for Argon2id hashing.
	DefaultPasswordHashMemory = 64 * 1024

	// DefaultPasswordHashIterations is the number of iterations for Argon2id hashing.
	DefaultPasswordHashIterations = 3

	// DefaultPasswordHashParallelism is the parallelism parameter for Argon2id hashing.
	DefaultPasswordHashParallelism = 2

	// DefaultPasswordHashSaltLength is the length in bytes of the random salt.
	DefaultPasswordHashSaltLength = 16

	// DefaultPasswordHashKeyLength is the length in bytes of the generated hash.
	DefaultPasswordHashKeyLength = 32

	// DevPasswordHashMemory is a reduced memory setting for development environments.
	DevPasswordHashMemory = 16 * 1024

	// DevPasswordHashIterations is a reduced iteration count for development environments.
	DevPasswordHashIterations = 1
)

// Rate Limits protect credential endpoints from brute forcing.
const (
	// LoginRatePerSecond is the sustained request rate allowed per client on
	// the login and reset endpoints.
	LoginRatePerSecond = 1.0

	// LoginRateBurst is the burst capacity per client on those endpoints.
	LoginRateBurst = 5
)

// Log values.
const (
	// LogRedactedValue replaces sensitive values in configuration logging.
	LogRedactedValue = "[REDACTED]"
)
