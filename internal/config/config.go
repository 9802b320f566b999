package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/askelund/adminpanel/internal/constants"
)

// AppConfig represents the entire application configuration
type AppConfig struct {
	App          AppSettings      `yaml:"app"`
	Database     DatabaseSettings `yaml:"database"`
	Server       ServerSettings   `yaml:"server"`
	Session      SessionSettings  `yaml:"session"`
	AdminPanel   AdminSettings    `yaml:"admin_panel"`
	SMTP         SMTPSettings     `yaml:"smtp"`
	SSO          SSOSettings      `yaml:"sso"`
	Logging      LoggingSettings  `yaml:"logging"`
	PasswordHash HashSettings     `yaml:"password_hash"`
}

// AppSettings contains general application settings
type AppSettings struct {
	Environment string `yaml:"environment" env:"APP_ENV"`
	Name        string `yaml:"name" env:"APP_NAME"`
	Version     string `yaml:"version" env:"APP_VERSION"`
}

// DatabaseSettings contains database connection settings
type DatabaseSettings struct {
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Name     string `yaml:"name" env:"DB_NAME"`
	User     string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	MaxConns int    `yaml:"max_conns" env:"DB_MAX_CONNS"`
	MinConns int    `yaml:"min_conns" env:"DB_MIN_CONNS"`
}

// ServerSettings contains HTTP server settings
type ServerSettings struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// SessionSettings contains login session settings. Session cookies carry a
// signed token whose identifier is tracked server-side for revocation.
type SessionSettings struct {
	Secret string        `yaml:"secret" env:"SESSION_SECRET"`
	Expiry time.Duration `yaml:"expiry" env:"SESSION_EXPIRY"`
	Issuer string        `yaml:"issuer" env:"SESSION_ISSUER"`
	Secure bool          `yaml:"secure" env:"SESSION_SECURE"`
}

// AdminSettings contains admin-panel behavior settings.
type AdminSettings struct {
	// PathPrefix is the URL prefix the panel is mounted under.
	PathPrefix string `yaml:"path_prefix" env:"ADMIN_PATH_PREFIX"`

	// BaseURL is the externally reachable base URL, used in reset-mail links.
	BaseURL string `yaml:"base_url" env:"ADMIN_BASE_URL"`

	// AutoLoginFirstUser logs sessionless requests in as the first backend
	// user on record. Only honored in local or development environments.
	AutoLoginFirstUser bool `yaml:"auto_login_first_user" env:"ADMIN_AUTO_LOGIN_FIRST_USER"`

	// TemplatesDir is the directory the view renderer loads templates from.
	TemplatesDir string `yaml:"templates_dir" env:"ADMIN_TEMPLATES_DIR"`
}

// SMTPSettings contains mail delivery settings.
type SMTPSettings struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM"`
	FromName string `yaml:"from_name" env:"SMTP_FROM_NAME"`
}

// SSOSettings contains optional OIDC single sign-on settings. SSO is
// considered configured when IssuerURL is non-empty.
type SSOSettings struct {
	IssuerURL    string `yaml:"issuer_url" env:"SSO_ISSUER_URL"`
	ClientID     string `yaml:"client_id" env:"SSO_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"SSO_CLIENT_SECRET"`
	RedirectURL  string `yaml:"redirect_url" env:"SSO_REDIRECT_URL"`
}

// Enabled reports whether an SSO provider has been configured.
func (ss *SSOSettings) Enabled() bool {
	return ss.IssuerURL != ""
}

// LoggingSettings contains logging configuration
type LoggingSettings struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"`
	RequestLog bool   `yaml:"request_log" env:"LOG_REQUESTS"`
}

// HashSettings contains password hashing settings
type HashSettings struct {
	Memory      uint32 `yaml:"memory" env:"HASH_MEMORY"`
	Iterations  uint32 `yaml:"iterations" env:"HASH_ITERATIONS"`
	Parallelism uint8  `yaml:"parallelism" env:"HASH_PARALLELISM"`
	SaltLength  uint32 `yaml:"salt_length" env:"HASH_SALT_LENGTH"`
	KeyLength   uint32 `yaml:"key_length" env:"HASH_KEY_LENGTH"`
}

// ConnectionString returns the PostgreSQL connection string
func (dbs *DatabaseSettings) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s %s",
		dbs.Host, dbs.Port, dbs.User, dbs.Password, dbs.Name,
		constants.PostgresSSLDisable,
	)
}

// ServerAddress returns the complete server address
func (ss *ServerSettings) ServerAddress() string {
	return fmt.Sprintf("%s:%d", ss.Host, ss.Port)
}

// IsDevelopment checks if the application is running in development mode
func (as *AppSettings) IsDevelopment() bool {
	return strings.ToLower(as.Environment) == constants.EnvDevelopment
}

// IsLocal checks if the application is running on a local machine
func (as *AppSettings) IsLocal() bool {
	return strings.ToLower(as.Environment) == constants.EnvLocal
}

// IsProduction checks if the application is running in production mode
func (as *AppSettings) IsProduction() bool {
	return strings.ToLower(as.Environment) == constants.EnvProduction
}

// IsTesting checks if the application is running in testing mode
func (as *AppSettings) IsTesting() bool {
	return strings.ToLower(as.Environment) == constants.EnvTesting
}

// Load loads the configuration from a config file and environment variables.
// The returned config is handed to constructors explicitly; there is no
// package-level accessor for it.
func Load(configPath string) (*AppConfig, error) {
	config := &AppConfig{}

	// Load configuration from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Override with environment variables
	if err := LoadEnv(config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	// Set defaults for missing values
	setDefaults(config)

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Log the configuration (but hide sensitive values)
	logConfig(config)

	return config, nil
}

// setDefaults sets default values for any missing configuration
func setDefaults(config *AppConfig) {
	if config.App.Environment == "" {
		config.App.Environment = constants.EnvDevelopment
	}
	if config.App.Name == "" {
		config.App.Name = "Admin Panel"
	}
	if config.App.Version == "" {
		config.App.Version = "1.0.0"
	}

	if config.Server.Port == 0 {
		config.Server.Port = constants.DefaultServerPort
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = constants.DefaultReadTimeout
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = constants.DefaultWriteTimeout
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = constants.DefaultShutdownTimeout
	}

	if config.Database.MaxConns == 0 {
		config.Database.MaxConns = constants.DefaultDBMaxConnections
	}
	if config.Database.MinConns == 0 {
		config.Database.MinConns = constants.DefaultDBMinConnections
	}

	// Session defaults
	if config.Session.Expiry == 0 {
		config.Session.Expiry = constants.DefaultSessionExpiry
	}
	if config.Session.Issuer == "" {
		config.Session.Issuer = constants.DefaultSessionIssuer
	}

	// Admin panel defaults
	if config.AdminPanel.PathPrefix == "" {
		config.AdminPanel.PathPrefix = constants.DefaultPathPrefix
	}
	if config.AdminPanel.BaseURL == "" {
		config.AdminPanel.BaseURL = fmt.Sprintf("http://%s", config.Server.ServerAddress())
	}
	if config.AdminPanel.TemplatesDir == "" {
		config.AdminPanel.TemplatesDir = "./templates"
	}

	// Logging defaults
	if config.Logging.Level == "" {
		config.Logging.Level = constants.DefaultLogLevel
	}
	if config.Logging.Format == "" {
		config.Logging.Format = constants.DefaultLogFormat
	}

	// Password hash defaults
	if config.PasswordHash.Memory == 0 {
		if config.App.IsProduction() {
			config.PasswordHash.Memory = constants.DefaultPasswordHashMemory
		} else {
			config.PasswordHash.Memory = constants.DevPasswordHashMemory
		}
	}
	if config.PasswordHash.Iterations == 0 {
		if config.App.IsProduction() {
			config.PasswordHash.Iterations = constants.DefaultPasswordHashIterations
		} else {
			config.PasswordHash.Iterations = constants.DevPasswordHashIterations
		}
	}
	if config.PasswordHash.Parallelism == 0 {
		config.PasswordHash.Parallelism = constants.DefaultPasswordHashParallelism
	}
	if config.PasswordHash.SaltLength == 0 {
		config.PasswordHash.SaltLength = constants.DefaultPasswordHashSaltLength
	}
	if config.PasswordHash.KeyLength == 0 {
		config.PasswordHash.KeyLength = constants.DefaultPasswordHashKeyLength
	}
}

// validateConfig validates that the configuration has all required values
func validateConfig(config *AppConfig) error {
	env := strings.ToLower(config.App.Environment)
	switch env {
	case constants.EnvDevelopment, constants.EnvLocal, constants.EnvTesting, constants.EnvProduction:
	default:
		log.Warn().Str("environment", config.App.Environment).Msg("Unknown environment, defaulting to development")
		config.App.Environment = constants.EnvDevelopment
	}

	// In production, ensure we have a proper session secret
	if config.App.IsProduction() && (config.Session.Secret == "" || config.Session.Secret == "changeme") {
		return fmt.Errorf("session secret must be set in production")
	}

	// The auto-login path must be unreachable in production
	if config.App.IsProduction() && config.AdminPanel.AutoLoginFirstUser {
		return fmt.Errorf("auto_login_first_user must not be enabled in production")
	}

	if config.Database.User == "" {
		return fmt.Errorf("database user must be set")
	}

	// Validate log level
	logLevel := strings.ToLower(config.Logging.Level)
	validLevels := []string{"debug", "info", "warn", "error", "fatal", "panic"}
	validLevel := false
	for _, level := range validLevels {
		if logLevel == level {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	// Partial SSO configuration is a deployment fault; catch it at startup
	if config.SSO.Enabled() {
		if config.SSO.ClientID == "" || config.SSO.ClientSecret == "" || config.SSO.RedirectURL == "" {
			return fmt.Errorf("sso issuer_url set but client_id, client_secret or redirect_url missing")
		}
	}

	return nil
}

// logConfig logs the current configuration, masking sensitive values
func logConfig(config *AppConfig) {
	logCfg := *config

	if logCfg.Database.Password != "" {
		logCfg.Database.Password = constants.LogRedactedValue
	}
	if logCfg.Session.Secret != "" {
		logCfg.Session.Secret = constants.LogRedactedValue
	}
	if logCfg.SMTP.Password != "" {
		logCfg.SMTP.Password = constants.LogRedactedValue
	}

	log.Info().
		Str("environment", logCfg.App.Environment).
		Str("version", logCfg.App.Version).
		Str("server", logCfg.Server.ServerAddress()).
		Str("db_host", logCfg.Database.Host).
		Int("db_port", logCfg.Database.Port).
		Str("db_name", logCfg.Database.Name).
		Str("path_prefix", logCfg.AdminPanel.PathPrefix).
		Bool("auto_login_first_user", logCfg.AdminPanel.AutoLoginFirstUser).
		Bool("sso_enabled", logCfg.SSO.Enabled()).
		Str("log_level", logCfg.Logging.Level).
		Msg("Configuration loaded")
}
