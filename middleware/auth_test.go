// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/recipe-box/auth"
	"github.com/danielhkuo/recipe-box/models"
)

type stubResolver map[string]models.User

func (s stubResolver) ResolveToken(_ context.Context, token string) (models.User, error) {
	if token == "broken" {
		return models.User{}, errors.New("connection refused")
	}
	u, ok := s[token]
	if !ok {
		return models.User{}, auth.ErrInvalidToken
	}
	return u, nil
}

func TestTokenFromHeader(t *testing.T) {
	testCases := []struct {
		header  string
		token   string
		present bool
	}{
		{"", "", false},
		{"Token abc123", "abc123", true},
		{"token abc123", "abc123", true},
		{"Bearer abc123", "", true},
		{"Token", "", true},
	}

	for _, tc := range testCases {
		req := httptest.NewRequest("GET", "/", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		token, present := TokenFromHeader(req)
		if token != tc.token || present != tc.present {
			t.Errorf("TokenFromHeader(%q) = (%q, %v), want (%q, %v)", tc.header, token, present, tc.token, tc.present)
		}
	}
}

func TestAuthenticator(t *testing.T) {
	a := NewAuthenticator(stubResolver{"good": {ID: "u1", Username: "ann"}})

	var seen string
	next := func(w http.ResponseWriter, r *http.Request) {
		seen = ""
		if u, ok := auth.UserFromContext(r.Context()); ok {
			seen = u.ID
		}
		w.WriteHeader(http.StatusOK)
	}

	testCases := []struct {
		name       string
		required   bool
		header     string
		wantStatus int
		wantUser   string
	}{
		{"require without header", true, "", http.StatusUnauthorized, ""},
		{"require with valid token", true, "Token good", http.StatusOK, "u1"},
		{"require with unknown token", true, "Token nope", http.StatusUnauthorized, ""},
		{"optional without header", false, "", http.StatusOK, ""},
		{"optional with valid token", false, "Token good", http.StatusOK, "u1"},
		{"optional with unknown token", false, "Token nope", http.StatusUnauthorized, ""},
		{"optional with wrong scheme", false, "Bearer good", http.StatusUnauthorized, ""},
		{"resolver failure", true, "Token broken", http.StatusInternalServerError, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seen = "unset"
			h := a.Optional(next)
			if tc.required {
				h = a.Require(next)
			}

			req := httptest.NewRequest("GET", "/api/recipes", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			h(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("Expected status %d, got %d", tc.wantStatus, w.Code)
			}
			if tc.wantStatus == http.StatusOK && seen != tc.wantUser {
				t.Errorf("Expected user %q in context, got %q", tc.wantUser, seen)
			}
		})
	}
}
