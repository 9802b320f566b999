// Package scripts provides database seeding for the admin panel.
//
// Seeding works like migrations: executed seeds are tracked in a dedicated
// table so the process is idempotent and safe to run on every startup.
package scripts

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/auth"
	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/database"
	"github.com/askelund/adminpanel/internal/models"
)

// defaultSeedAdminEmail is used when ADMIN_SEED_EMAIL is not set.
const defaultSeedAdminEmail = "admin@example.com"

// Seeder handles database seeding.
type Seeder struct {
	db          *database.Pool
	passwordCfg *auth.PasswordConfig
}

// NewSeeder creates a new seeder.
func NewSeeder(db *database.Pool, passwordCfg *auth.PasswordConfig) *Seeder {
	return &Seeder{
		db:          db,
		passwordCfg: passwordCfg,
	}
}

// SeedDatabase runs all seed functions that have not been executed yet.
func (s *Seeder) SeedDatabase(ctx context.Context) error {
	log.Info().Msg("Seeding database")
	startTime := time.Now()

	if err := s.createSeedsTable(ctx); err != nil {
		return fmt.Errorf("failed to create seeds table: %w", err)
	}

	executedSeeds, err := s.getExecutedSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed seeds: %w", err)
	}

	seeds := []struct {
		Name     string
		SeedFunc func(ctx context.Context, tx *sql.Tx) error
	}{
		{"initial_super_admin", s.seedInitialSuperAdmin},
	}

	for _, seed := range seeds {
		if executedSeeds[seed.Name] {
			log.Debug().Str("seed", seed.Name).Msg("Seed already executed")
			continue
		}
		log.Info().Str("seed", seed.Name).Msg("Running seed")
		if err := s.runSeed(ctx, seed.Name, seed.SeedFunc); err != nil {
			return err
		}
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Database seeding completed")

	return nil
}

// createSeedsTable creates the table that tracks executed seeds.
func (s *Seeder) createSeedsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS seeds (
			name VARCHAR(255) PRIMARY KEY,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// getExecutedSeeds returns the names of all recorded seeds.
func (s *Seeder) getExecutedSeeds(ctx context.Context) (map[string]bool, error) {
	query := `SELECT name FROM seeds`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close rows")
		}
	}()

	seeds := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		seeds[name] = true
	}

	return seeds, rows.Err()
}

// runSeed runs a seed function within a transaction. A failed seed rolls
// back without being recorded.
func (s *Seeder) runSeed(ctx context.Context, name string, seedFunc func(ctx context.Context, tx *sql.Tx) error) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if err := seedFunc(ctx, tx); err != nil {
			return fmt.Errorf("seed %s failed: %w", name, err)
		}

		query := `INSERT INTO seeds (name) VALUES ($1)`
		if _, err := tx.ExecContext(ctx, query, name); err != nil {
			return fmt.Errorf("failed to record seed: %w", err)
		}

		return nil
	})
}

// seedInitialSuperAdmin creates the first super admin account on an empty
// panel. The credentials come from ADMIN_SEED_EMAIL and ADMIN_SEED_PASSWORD;
// without a configured password a random one is generated and logged once.
// The account is flagged for a password change at first login either way.
func (s *Seeder) seedInitialSuperAdmin(ctx context.Context, tx *sql.Tx) error {
	var userCount int
	countQuery := `SELECT COUNT(*) FROM backend_users`
	if err := tx.QueryRowContext(ctx, countQuery).Scan(&userCount); err != nil {
		return fmt.Errorf("failed to count backend users: %w", err)
	}

	if userCount > 0 {
		log.Info().Msg("Backend users already exist, skipping super admin seed")
		return nil
	}

	email := os.Getenv("ADMIN_SEED_EMAIL")
	if email == "" {
		email = defaultSeedAdminEmail
	}

	password := os.Getenv("ADMIN_SEED_PASSWORD")
	if password == "" {
		generated, err := auth.RandomPassword()
		if err != nil {
			return fmt.Errorf("failed to generate admin password: %w", err)
		}
		password = generated

		// Logged once so the operator can perform the first login.
		log.Warn().
			Str("email", email).
			Str("password", password).
			Msg("Generated initial super admin credentials, change the password after first login")
	}

	passwordHash, salt, err := auth.HashPassword(password, s.passwordCfg)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := models.NewBackendUser("Admin", email, constants.RoleSuperAdmin)
	admin.ShouldResetPassword = true

	insertQuery := `
		INSERT INTO backend_users (name, email, password_hash, salt, role, should_reset_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(
		ctx,
		insertQuery,
		admin.Name,
		admin.Email,
		passwordHash,
		salt,
		admin.Role,
		admin.ShouldResetPassword,
		admin.CreatedAt,
		admin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert super admin: %w", err)
	}

	log.Info().Str("email", email).Msg("Seeded initial super admin account")
	return nil
}
