// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the recipe-box API.

# Handler Types

Each handler is a struct with database, config and, where images are
involved, media storage dependencies:

  - AuthHandler: Token login and logout; also resolves tokens for middleware
  - UserHandler: Sign up, profiles, password, avatar, subscriptions
  - IngredientHandler: Read-only ingredient catalogue with name search
  - RecipeHandler: Recipe CRUD, favorites, shopping cart and list download

Handlers are created via constructor functions:

	recipeHandler := handlers.NewRecipeHandler(db, cfg, media)

# Authentication

Handlers read the caller from the request context (auth.UserFromContext).
The router wraps protected routes with middleware.Authenticator.Require and
the rest with Optional, so a handler never parses headers itself.

# Pagination

List endpoints accept ?page= and ?limit= and answer with models.Page:

	{"count": 12, "next": "http://host/api/recipes?page=3", "previous": "http://host/api/recipes", "results": [...]}

A page past the last one is a 404.

# Images

Recipe images and avatars arrive as base64 data URIs (or, for avatars, a
multipart file). They go through imagefield.Decoder before anything is
written to storage. A failed database write removes the stored file again.

# Shopping List

GET /api/recipes/download_shopping_cart sums the ingredients of every recipe
in the caller's cart (shoppinglist.Builder over db.CartReader) and returns a
plain-text attachment:

	flour (g) — 250.50
	sugar (g) — 150.25

An empty cart is answered with 400 and {"errors": "Shopping cart is empty."}.

# Error Responses

Business-rule conflicts (duplicate favorite, self-subscription) use
middleware.ConflictResponse. Field validation uses
middleware.ValidationErrorResponse:

	{"error": "Bad Request", "message": "validation failed", "fields": {"name": "This field is required."}}
*/
package handlers
