// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/recipe-box/auth"
	"github.com/danielhkuo/recipe-box/models"
)

// TokenResolver looks up the user owning an auth token.
// It returns auth.ErrInvalidToken for unknown tokens.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (models.User, error)
}

// Authenticator reads "Authorization: Token <key>" and stores the user in the
// request context.
type Authenticator struct {
	resolver TokenResolver
}

func NewAuthenticator(resolver TokenResolver) *Authenticator {
	return &Authenticator{resolver: resolver}
}

// Require rejects anonymous requests with 401.
func (a *Authenticator) Require(next http.HandlerFunc) http.HandlerFunc {
	return a.wrap(next, true)
}

// Optional lets anonymous requests through. A token that is present but
// unknown is still rejected.
func (a *Authenticator) Optional(next http.HandlerFunc) http.HandlerFunc {
	return a.wrap(next, false)
}

func (a *Authenticator) wrap(next http.HandlerFunc, required bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, present := TokenFromHeader(r)
		if !present {
			if required {
				ErrorResponse(w, http.StatusUnauthorized, "authentication credentials were not provided")
				return
			}
			next(w, r)
			return
		}

		if token == "" {
			ErrorResponse(w, http.StatusUnauthorized, "invalid token")
			return
		}

		user, err := a.resolver.ResolveToken(r.Context(), token)
		if errors.Is(err, auth.ErrInvalidToken) {
			ErrorResponse(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if err != nil {
			slog.Error("failed to resolve auth token", "error", err)
			ErrorResponse(w, http.StatusInternalServerError, "database error")
			return
		}

		next(w, r.WithContext(auth.WithUser(r.Context(), user)))
	}
}

// TokenFromHeader returns the key of an "Authorization: Token <key>" header.
// A malformed header counts as present with an empty key.
func TokenFromHeader(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", false
	}
	scheme, key, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Token") {
		return "", true
	}
	return strings.TrimSpace(key), true
}
