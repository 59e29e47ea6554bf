// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/recipe-box/auth"
	"github.com/danielhkuo/recipe-box/cliparse"
	"github.com/danielhkuo/recipe-box/db"
	"github.com/danielhkuo/recipe-box/middleware"
	"github.com/danielhkuo/recipe-box/models"
	"github.com/danielhkuo/recipe-box/validation"
)

type AuthHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAuthHandler(db *sql.DB, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// Login handles POST /api/auth/token/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.TokenLoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		middleware.ValidationErrorResponse(w, verr.Fields())
		return
	}

	var userID, hash string
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, password_hash FROM app_user WHERE email = $1
	`, req.Email).Scan(&userID, &hash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if errors.Is(err, sql.ErrNoRows) || auth.CheckPassword(hash, req.Password) != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Unable to log in with provided credentials.")
		return
	}

	token, err := h.tokenFor(r.Context(), userID)
	if err != nil {
		slog.Error("failed to issue auth token", "error", err, "user_id", userID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	slog.Info("user logged in", "user_id", userID)
	middleware.JSONResponse(w, http.StatusOK, models.TokenLoginResponse{AuthToken: token})
}

// tokenFor returns the user's token, creating it on first login.
func (h *AuthHandler) tokenFor(ctx context.Context, userID string) (string, error) {
	var token string
	err := h.db.QueryRowContext(ctx, `
		SELECT token FROM auth_token WHERE user_id = $1
	`, userID).Scan(&token)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	token, err = auth.GenerateAuthToken()
	if err != nil {
		return "", err
	}
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO auth_token (token, user_id, created_at) VALUES ($1, $2, $3)
	`, token, userID, time.Now().UTC())
	if db.IsUniqueViolation(err) {
		// A concurrent login won
		return h.tokenFor(ctx, userID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert auth token: %w", err)
	}
	return token, nil
}

// Logout handles POST /api/auth/token/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.TokenFromHeader(r)

	_, err := h.db.ExecContext(r.Context(), `DELETE FROM auth_token WHERE token = $1`, token)
	if err != nil {
		slog.Error("failed to delete auth token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResolveToken implements middleware.TokenResolver.
func (h *AuthHandler) ResolveToken(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, auth.ErrInvalidToken
	}

	var u models.User
	err := h.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.username, u.first_name, u.last_name
		FROM auth_token t
		JOIN app_user u ON u.id = t.user_id
		WHERE t.token = $1
	`, token).Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, auth.ErrInvalidToken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to resolve token: %w", err)
	}
	return u, nil
}
