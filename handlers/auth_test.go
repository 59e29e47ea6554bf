// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/recipe-box/auth"
	"github.com/danielhkuo/recipe-box/models"
	"github.com/danielhkuo/recipe-box/testutil"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.db, env.cfg)
	testutil.CreateTestUser(t, env.db, "ann")

	testCases := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{"valid credentials", models.TokenLoginRequest{Email: "ann@example.com", Password: testutil.TestPassword}, http.StatusOK},
		{"wrong password", models.TokenLoginRequest{Email: "ann@example.com", Password: "nope"}, http.StatusBadRequest},
		{"unknown email", models.TokenLoginRequest{Email: "bob@example.com", Password: testutil.TestPassword}, http.StatusBadRequest},
		{"missing password", map[string]string{"email": "ann@example.com"}, http.StatusBadRequest},
		{"bad email", models.TokenLoginRequest{Email: "ann", Password: "x"}, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/api/auth/token/login", tc.body, nil)
			w := httptest.NewRecorder()
			handler.Login(w, req)
			testutil.AssertStatus(t, w, tc.expectedStatus)

			if tc.expectedStatus == http.StatusOK {
				var resp models.TokenLoginResponse
				testutil.AssertJSON(t, w, &resp)
				if len(resp.AuthToken) != 40 {
					t.Errorf("Expected 40-char token, got %q", resp.AuthToken)
				}
			}
		})
	}
}

func TestLogin_ReusesToken(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.db, env.cfg)
	testutil.CreateTestUser(t, env.db, "ann")

	login := func() string {
		req := testutil.MakeRequest("POST", "/api/auth/token/login",
			models.TokenLoginRequest{Email: "ann@example.com", Password: testutil.TestPassword}, nil)
		w := httptest.NewRecorder()
		handler.Login(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.TokenLoginResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.AuthToken
	}

	first, second := login(), login()
	if first != second {
		t.Errorf("Expected the same token on repeated login, got %s and %s", first, second)
	}
	if n := countRows(t, env.db, `SELECT COUNT(*) FROM auth_token`); n != 1 {
		t.Errorf("Expected 1 token row, got %d", n)
	}
}

func TestLogin_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.db, env.cfg)

	req := httptest.NewRequest("POST", "/api/auth/token/login", strings.NewReader("{nope"))
	w := httptest.NewRecorder()
	handler.Login(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestLogoutAndResolveToken(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.db, env.cfg)
	userID := testutil.CreateTestUser(t, env.db, "ann")
	header := testutil.CreateTestToken(t, env.db, userID)
	token := strings.TrimPrefix(header, "Token ")

	u, err := handler.ResolveToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ResolveToken: %v", err)
	}
	if u.ID != userID || u.Username != "ann" || u.Email != "ann@example.com" {
		t.Errorf("Unexpected user %+v", u)
	}

	if _, err := handler.ResolveToken(context.Background(), ""); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for empty token, got %v", err)
	}
	if _, err := handler.ResolveToken(context.Background(), "missing"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for unknown token, got %v", err)
	}

	req := httptest.NewRequest("POST", "/api/auth/token/logout", nil)
	req.Header.Set("Authorization", header)
	w := httptest.NewRecorder()
	handler.Logout(w, asUser(req, userID, "ann"))
	testutil.AssertStatus(t, w, http.StatusNoContent)

	if _, err := handler.ResolveToken(context.Background(), token); !errors.Is(err, auth.ErrInvalidToken) {
		t.Errorf("Token should be invalid after logout, got %v", err)
	}
}
