// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /api/recipes", middleware.WithLogging(handler))

Logs completion with method, path, status and duration_ms.

# Authentication

Authenticator resolves "Authorization: Token <key>" through a TokenResolver
and stores the user with auth.WithUser:

	authn := middleware.NewAuthenticator(authHandler)
	mux.HandleFunc("GET /api/users/me", authn.Require(userHandler.Me))
	mux.HandleFunc("GET /api/recipes", authn.Optional(recipeHandler.List))

Require answers 401 without a token. Both answer 401 for an unknown token.

# Rate Limiting

RateLimiter keeps one golang.org/x/time/rate bucket per client IP and answers
429 when it is empty:

	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMinute).TrustProxies(cfg.TrustedProxies)
	mux.HandleFunc("POST /api/auth/token/login", limiter.Limit(authHandler.Login))

# CORS and Trailing Slashes

	server := http.Server{
		Handler: middleware.CORS(middleware.TrimSlash(cfg.MediaURL, mux)),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusNotFound, "recipe not found")
	middleware.ValidationErrorResponse(w, verr.Fields())
	middleware.ConflictResponse(w, "Recipe is already in favorites.")

# Client IP Extraction

	ip := middleware.GetClientIP(r, cfg.TrustedProxies)

X-Forwarded-For and X-Real-IP are honoured only when RemoteAddr falls inside
one of the trusted proxy ranges. Otherwise the peer address is used as is.
*/
package middleware
