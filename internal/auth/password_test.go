package auth_test

import (
	"strings"
	"testing"

	"github.com/askelund/adminpanel/internal/auth"
	"github.com/askelund/adminpanel/internal/constants"
)

func TestHashAndVerifyPassword(t *testing.T) {
	cfg := auth.DefaultPasswordConfig()

	hash, salt, err := auth.HashPassword("correct-horse-battery", cfg)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if hash == "" || salt == "" {
		t.Error("Expected non-empty hash and salt")
	}

	match, err := auth.VerifyPassword("correct-horse-battery", hash, salt, cfg)
	if err != nil {
		t.Fatalf("Failed to verify password: %v", err)
	}
	if !match {
		t.Error("Expected password to match its own hash")
	}

	match, err = auth.VerifyPassword("wrong-password", hash, salt, cfg)
	if err != nil {
		t.Fatalf("Failed to verify password: %v", err)
	}
	if match {
		t.Error("Expected wrong password not to match")
	}
}

func TestHashPasswordProducesUniqueSalts(t *testing.T) {
	cfg := auth.DefaultPasswordConfig()

	hash1, salt1, err := auth.HashPassword("same-password", cfg)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	hash2, salt2, err := auth.HashPassword("same-password", cfg)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	if salt1 == salt2 {
		t.Error("Expected different salts for repeated hashing")
	}
	if hash1 == hash2 {
		t.Error("Expected different hashes for repeated hashing")
	}
}

func TestVerifyPasswordWithInvalidEncoding(t *testing.T) {
	cfg := auth.DefaultPasswordConfig()

	if _, err := auth.VerifyPassword("pw", "not-base64!!", "c2FsdA==", cfg); err == nil {
		t.Error("Expected error for invalid hash encoding")
	}

	if _, err := auth.VerifyPassword("pw", "aGFzaA==", "not-base64!!", cfg); err == nil {
		t.Error("Expected error for invalid salt encoding")
	}
}

func TestRandomAlphanumeric(t *testing.T) {
	s, err := auth.RandomAlphanumeric(32)
	if err != nil {
		t.Fatalf("Failed to generate random string: %v", err)
	}

	if len(s) != 32 {
		t.Errorf("Expected length 32, got %d", len(s))
	}

	for _, c := range s {
		if !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789", c) {
			t.Errorf("Unexpected character %q in random string", c)
		}
	}

	other, err := auth.RandomAlphanumeric(32)
	if err != nil {
		t.Fatalf("Failed to generate random string: %v", err)
	}
	if s == other {
		t.Error("Expected two random strings to differ")
	}
}

func TestRandomPassword(t *testing.T) {
	pw, err := auth.RandomPassword()
	if err != nil {
		t.Fatalf("Failed to generate password: %v", err)
	}
	if len(pw) != constants.RandomPasswordLength {
		t.Errorf("Expected length %d, got %d", constants.RandomPasswordLength, len(pw))
	}
}

func TestRandomToken(t *testing.T) {
	token, err := auth.RandomToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if len(token) != constants.ResetTokenLength {
		t.Errorf("Expected length %d, got %d", constants.ResetTokenLength, len(token))
	}
}
