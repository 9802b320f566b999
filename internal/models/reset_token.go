package models

import (
	"time"

	"github.com/askelund/adminpanel/internal/constants"
)

// ResetToken represents a single-use password-reset token. A token is bound
// to an email address rather than a user id, so issuing one never reveals
// whether an account exists.
type ResetToken struct {
	ID        int64      `json:"id" db:"id"`
	Email     string     `json:"email" db:"email"`
	Token     string     `json:"-" db:"token"`
	ExpireAt  time.Time  `json:"expire_at" db:"expire_at"`
	UsedAt    *time.Time `json:"used_at" db:"used_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// NewResetToken creates a ResetToken for the given email with the standard
// lifetime.
func NewResetToken(email, token string) *ResetToken {
	now := time.Now()
	return &ResetToken{
		Email:     email,
		Token:     token,
		ExpireAt:  now.Add(constants.ResetTokenTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TableName returns the database table name for the ResetToken model.
func (t *ResetToken) TableName() string {
	return constants.TableResetTokens
}

// CanBeUsed reports whether the token is still usable at the given time.
// A token is usable while it has not been consumed and has not expired.
func (t *ResetToken) CanBeUsed(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpireAt)
}

// MarkUsed records the consumption time. The transition happens once; calling
// MarkUsed on an already-used token is a no-op.
func (t *ResetToken) MarkUsed(usedAt time.Time) {
	if t.UsedAt != nil {
		return
	}
	t.UsedAt = &usedAt
	t.UpdatedAt = usedAt
}

// ResetRequestForm represents the email submitted on the reset-request form.
type ResetRequestForm struct {
	Email string `form:"email" validate:"required,email"`
}

// ResetPasswordForm represents the new-password submission for a reset token.
type ResetPasswordForm struct {
	Token          string `form:"token" validate:"required"`
	Email          string `form:"email" validate:"required,email"`
	Password       string `form:"password" validate:"required,min=8"`
	PasswordRepeat string `form:"password_repeat" validate:"required,eqfield=Password"`
}
