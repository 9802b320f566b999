package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/askelund/adminpanel/internal/models"
)

func TestBackendUser_TableName(t *testing.T) {
	user := &models.BackendUser{
		ID:           1,
		Name:         "Test Admin",
		Email:        "admin@example.com",
		PasswordHash: "hashed_password",
		Salt:         "salt_value",
	}

	assert.Equal(t, "backend_users", user.TableName(), "TableName should return the correct database table name")
}

func TestNewBackendUser(t *testing.T) {
	now := time.Now()
	user := models.NewBackendUser("Test Admin", "admin@example.com", "admin")

	assert.NotNil(t, user, "NewBackendUser should return a non-nil BackendUser")
	assert.Equal(t, "Test Admin", user.Name, "BackendUser should have the provided name")
	assert.Equal(t, "admin@example.com", user.Email, "BackendUser should have the provided email")
	assert.Equal(t, "admin", user.Role, "BackendUser should have the provided role")
	assert.Equal(t, "", user.PasswordHash, "PasswordHash should be empty initially")
	assert.Equal(t, "", user.Salt, "Salt should be empty initially")
	assert.False(t, user.ShouldResetPassword, "ShouldResetPassword should default to false")
	assert.WithinDuration(t, now, user.CreatedAt, time.Second, "CreatedAt should be set to current time")
	assert.WithinDuration(t, now, user.UpdatedAt, time.Second, "UpdatedAt should be set to current time")
	assert.Equal(t, int64(0), user.ID, "A new BackendUser should have zero ID until saved to database")
}

func TestNewBackendUser_DefaultRole(t *testing.T) {
	user := models.NewBackendUser("Test User", "user@example.com", "")

	assert.Equal(t, "user", user.Role, "An empty role should fall back to the default role")
}

func TestBackendUser_Sanitize(t *testing.T) {
	user := &models.BackendUser{
		ID:           1,
		Name:         "Test Admin",
		Email:        "admin@example.com",
		PasswordHash: "hashed_password",
		Salt:         "salt_value",
		Role:         "admin",
	}

	sanitized := user.Sanitize()

	assert.Equal(t, "", sanitized.PasswordHash, "Sanitize should clear the password hash")
	assert.Equal(t, "", sanitized.Salt, "Sanitize should clear the salt")
	assert.Equal(t, user.ID, sanitized.ID, "Sanitize should keep the ID")
	assert.Equal(t, user.Email, sanitized.Email, "Sanitize should keep the email")
	assert.Equal(t, user.Role, sanitized.Role, "Sanitize should keep the role")

	// The original must be untouched
	assert.Equal(t, "hashed_password", user.PasswordHash, "Sanitize should not modify the original")
	assert.Equal(t, "salt_value", user.Salt, "Sanitize should not modify the original")
}
