// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the recipe-box API.

# Route Registration

NewRouter builds an http.ServeMux with all endpoints and wraps it in CORS and
trailing-slash handling:

	handler := router.NewRouter(db, cfg, media)

# Endpoints

A = token required, O = token optional.

Auth:

	POST /api/auth/token/login   - Issue token (rate limited per IP)
	POST /api/auth/token/logout  A

Users:

	GET    /api/users                 O  Paginated list
	POST   /api/users                    Register
	GET    /api/users/{id}            O
	GET    /api/users/me              A
	POST   /api/users/set_password    A
	PUT    /api/users/me/avatar       A  JSON data URI or multipart file
	DELETE /api/users/me/avatar       A
	POST   /api/users/{id}/subscribe  A
	DELETE /api/users/{id}/subscribe  A
	GET    /api/users/subscriptions   A  ?recipes_limit=

Ingredients:

	GET /api/ingredients?name=
	GET /api/ingredients/{id}

Recipes:

	GET    /api/recipes                         O  ?author= ?is_favorited= ?is_in_shopping_cart=
	POST   /api/recipes                         A
	GET    /api/recipes/{id}                    O
	PATCH  /api/recipes/{id}                    A  author only
	DELETE /api/recipes/{id}                    A  author only
	GET    /api/recipes/{id}/get-link
	POST   /api/recipes/{id}/favorite           A
	DELETE /api/recipes/{id}/favorite           A
	POST   /api/recipes/{id}/shopping_cart      A
	DELETE /api/recipes/{id}/shopping_cart      A
	GET    /api/recipes/download_shopping_cart  A  text/plain attachment

Misc:

	GET /health   - "OK"
	GET /         - API banner
	GET /media/…  - local media files (local backend only)
*/
package router
