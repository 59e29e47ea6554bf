// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/recipe-box/models"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			// Verify it's valid hex
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	// Test randomness - two IDs should be different
	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestNewID(t *testing.T) {
	id := NewID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("NewID() = %q is not a UUID: %v", id, err)
	}
	if NewID() == id {
		t.Error("NewID() produced duplicate IDs")
	}
}

func TestGenerateAuthToken(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateAuthToken()
		if err != nil {
			t.Fatalf("GenerateAuthToken() error = %v", err)
		}
		if len(token) != 40 {
			t.Errorf("token length = %d, want 40", len(token))
		}
		if seen[token] {
			t.Fatal("GenerateAuthToken() produced a duplicate")
		}
		seen[token] = true
	}
}

func TestPasswords(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	defer func() { BcryptCost = bcrypt.DefaultCost }()

	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("HashPassword() returned the plaintext")
	}

	if err := CheckPassword(hash, "correct horse"); err != nil {
		t.Errorf("CheckPassword() with right password = %v", err)
	}
	if err := CheckPassword(hash, "battery staple"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckPassword() with wrong password = %v, want ErrInvalidCredentials", err)
	}
	if err := CheckPassword("not-a-hash", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckPassword() with garbage hash = %v, want ErrInvalidCredentials", err)
	}
}

func TestUserContext(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Error("empty context should have no user")
	}

	ctx := WithUser(context.Background(), models.User{ID: "u1", Username: "alice"})
	u, ok := UserFromContext(ctx)
	if !ok || u.ID != "u1" || u.Username != "alice" {
		t.Errorf("UserFromContext() = %+v, %v", u, ok)
	}
}
