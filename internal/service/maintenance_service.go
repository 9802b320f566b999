// Package service provides business logic implementations.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/constants"
	"github.com/askelund/adminpanel/internal/repository"
)

// MaintenanceService removes expired sessions and reset tokens in the
// background so the tables do not accumulate dead rows.
type MaintenanceService struct {
	sessions repository.SessionRepository
	tokens   repository.ResetTokenRepository
	interval time.Duration
}

// NewMaintenanceService creates a new MaintenanceService
func NewMaintenanceService(sessions repository.SessionRepository, tokens repository.ResetTokenRepository) *MaintenanceService {
	return &MaintenanceService{
		sessions: sessions,
		tokens:   tokens,
		interval: constants.DBMaintenanceInterval,
	}
}

// RunOnce performs a single cleanup sweep.
func (s *MaintenanceService) RunOnce(ctx context.Context) {
	if n, err := s.sessions.DeleteExpired(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to delete expired sessions")
	} else if n > 0 {
		log.Info().Int64("count", n).Msg("Deleted expired sessions")
	}

	if n, err := s.tokens.DeleteExpired(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to delete expired reset tokens")
	} else if n > 0 {
		log.Info().Int64("count", n).Msg("Deleted expired reset tokens")
	}
}

// Start launches the periodic cleanup loop. It returns immediately; the loop
// stops when ctx is cancelled.
func (s *MaintenanceService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}
