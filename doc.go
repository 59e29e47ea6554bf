// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the recipe-box API server.

recipe-box is a recipe sharing backend: users publish recipes with photos,
follow authors, keep favorites, and collect recipes in a shopping cart that
downloads as one summed ingredient list.

# Starting the Server

The server reads CLI flags, then environment variables, then a .env file:

	DATABASE_URL=recipes.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string

Optional settings:

  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - PORT (-p): Server port (default: 3318)
  - PUBLIC_URL (-public-url): Base for pagination and short links
  - MEDIA_BACKEND (-media): local (default) or s3
  - MEDIA_ROOT, MEDIA_URL: Local media directory and URL prefix
  - S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY
  - IMAGE_TOKEN_LENGTH, MAX_IMAGE_BYTES, MAX_IMAGE_SIDE: Upload limits
  - LOGIN_RATE_PER_MINUTE (-login-rate): Per-IP login limit, 0 disables
  - LOG_LEVEL, LOG_FORMAT: slog level and text/json output

# Architecture

  - handlers: HTTP request handlers (auth, users, ingredients, recipes)
  - router: Route definitions using Go 1.22+ routing
  - middleware: Token auth, rate limiting, CORS, logging, JSON helpers
  - imagefield: Base64/upload image decoding and validation
  - shoppinglist: Cart aggregation and attachment naming
  - storage: Local disk and S3 media backends
  - importer, cmd/importer: Ingredient catalogue loading
  - models, validation: Request/response types and struct validation
  - auth, db, cliparse, logging: Passwords and tokens, schema, config, slog setup

See package documentation for each component.
*/
package main
