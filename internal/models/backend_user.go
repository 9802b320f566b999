package models

import (
	"time"

	"github.com/askelund/adminpanel/internal/constants"
)

// BackendUser represents an administrator account in the admin panel.
// It contains authentication information and core account attributes.
type BackendUser struct {
	ID                  int64     `json:"id" db:"id"`
	Name                string    `json:"name" db:"name" validate:"required,min=1,max=191"`
	Email               string    `json:"email" db:"email" validate:"required,email"`
	PasswordHash        string    `json:"-" db:"password_hash"`
	Salt                string    `json:"-" db:"salt"`
	Role                string    `json:"role" db:"role" validate:"required,oneof=super_admin admin user"`
	ShouldResetPassword bool      `json:"should_reset_password" db:"should_reset_password"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// NewBackendUser creates a new BackendUser with the given name, email and role.
// Password fields are populated later when the account credentials are set.
func NewBackendUser(name, email, role string) *BackendUser {
	now := time.Now()
	if role == "" {
		role = constants.DefaultRole
	}
	return &BackendUser{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TableName returns the database table name for the BackendUser model.
func (u *BackendUser) TableName() string {
	return constants.TableBackendUsers
}

// Sanitize removes credential material from the BackendUser object before it
// is attached to a request context or rendered.
func (u *BackendUser) Sanitize() *BackendUser {
	sanitized := *u
	sanitized.PasswordHash = ""
	sanitized.Salt = ""
	return &sanitized
}

// LoginCredentials represents the credentials submitted by the login form.
type LoginCredentials struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next"`
}

// BackendUserForm represents the data submitted when creating or updating a
// backend user. Password is optional: on create an empty password means a
// random one is generated, on update it means the password is unchanged.
type BackendUserForm struct {
	Name                string `form:"name" validate:"required,min=1,max=191"`
	Email               string `form:"email" validate:"required,email"`
	Role                string `form:"role" validate:"omitempty,oneof=super_admin admin user"`
	Password            string `form:"password" validate:"omitempty,min=8"`
	PasswordRepeat      string `form:"password_repeat" validate:"eqfield=Password"`
	ShouldResetPassword bool   `form:"should_reset_password"`
	SendWelcomeMail     bool   `form:"send_welcome_mail"`
}
