package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/askelund/adminpanel/internal/auth"
	"github.com/askelund/adminpanel/internal/models"
	"github.com/askelund/adminpanel/internal/repository"
	"github.com/askelund/adminpanel/internal/utils"
)

// TokenService manages the password-reset token lifecycle: issuing a token
// for an email, validating one from a reset link, and consuming one to set a
// new password.
type TokenService struct {
	tokens      repository.ResetTokenRepository
	users       repository.BackendUserRepository
	mailer      Mailer
	passwordCfg *auth.PasswordConfig
}

// NewTokenService creates a new TokenService
func NewTokenService(
	tokens repository.ResetTokenRepository,
	users repository.BackendUserRepository,
	mailer Mailer,
	passwordCfg *auth.PasswordConfig,
) *TokenService {
	return &TokenService{
		tokens:      tokens,
		users:       users,
		mailer:      mailer,
		passwordCfg: passwordCfg,
	}
}

// IssueToken generates a fresh reset token for the email, replacing any
// earlier token for the same address, and mails the reset link when the
// email belongs to a backend user. The caller gets the same result whether
// or not the user exists, so the endpoint reveals nothing about which
// addresses have accounts. Only infrastructure failures are returned.
func (s *TokenService) IssueToken(ctx context.Context, email string) (*models.ResetToken, error) {
	if !utils.IsValidEmail(email) {
		// No account can sit behind a malformed address; skip the token
		// without changing the response.
		log.Info().Msg("Reset requested for malformed email")
		return nil, nil
	}

	tokenString, err := auth.RandomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	token := models.NewResetToken(email, tokenString)
	if err := s.tokens.Replace(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store reset token: %w", err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if utils.IsNotFoundError(err) {
			// No user behind this email. The token row still exists but no
			// mail goes out, and the caller sees the same outcome.
			log.Info().Msg("Reset requested for unknown email")
			return token, nil
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.mailer.SendResetPasswordMail(user, token.Token); err != nil {
		// Delivery failures stay internal, the reset response never changes.
		log.Error().Err(err).Msg("Failed to deliver reset mail")
	}

	return token, nil
}

// ValidateToken looks a token up and checks that it is still usable.
// Returns a NotFoundError when no such token exists and an expired-token
// error when the token has been used or its expiry has passed.
func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (*models.ResetToken, error) {
	token, err := s.tokens.GetByToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	if !token.CanBeUsed(time.Now()) {
		return nil, utils.NewExpiredTokenError()
	}

	return token, nil
}

// ConsumeToken performs the full password-reset submission: it checks the
// token, the email binding, and the new password, then marks the token used
// and stores the new password hash. The token is spent the moment it is
// marked used; a later failure while storing the password does not revive
// it, the user simply requests a new link.
func (s *TokenService) ConsumeToken(ctx context.Context, form *models.ResetPasswordForm) error {
	token, err := s.ValidateToken(ctx, form.Token)
	if err != nil {
		return err
	}

	if token.Email != form.Email {
		return utils.NewValidationError("email", "E-mail does not match the reset token")
	}

	if form.Password != form.PasswordRepeat {
		return utils.NewValidationError("password_repeat", "Passwords do not match")
	}

	if err := utils.ValidatePassword(form.Password); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, token.Email)
	if err != nil {
		return err
	}

	if err := s.tokens.MarkUsed(ctx, token.Token, time.Now()); err != nil {
		if utils.IsNotFoundError(err) {
			// Someone spent the token between validation and now.
			return utils.NewExpiredTokenError()
		}
		return fmt.Errorf("failed to mark token used: %w", err)
	}

	passwordHash, salt, err := auth.HashPassword(form.Password, s.passwordCfg)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.ChangePassword(ctx, user.ID, passwordHash, salt); err != nil {
		return fmt.Errorf("failed to store new password: %w", err)
	}

	utils.LogAuth("password_reset", user.ID, user.Email, true, "")
	return nil
}

// PurgeExpired removes reset tokens past their expiry. The maintenance task
// calls this periodically.
func (s *TokenService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.tokens.DeleteExpired(ctx)
}
