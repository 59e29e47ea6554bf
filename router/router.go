// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/recipe-box/cliparse"
	"github.com/danielhkuo/recipe-box/handlers"
	"github.com/danielhkuo/recipe-box/middleware"
	"github.com/danielhkuo/recipe-box/storage"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, media storage.Storage) http.Handler {
	mux := http.NewServeMux()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db, cfg, media)
	ingredientHandler := handlers.NewIngredientHandler(db, cfg)
	recipeHandler := handlers.NewRecipeHandler(db, cfg, media)

	authn := middleware.NewAuthenticator(authHandler)
	log := middleware.WithLogging

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Token auth
	login := authHandler.Login
	if cfg.LoginRatePerMinute > 0 {
		login = middleware.NewRateLimiter(cfg.LoginRatePerMinute).TrustProxies(cfg.TrustedProxies).Limit(login)
	}
	mux.HandleFunc("POST /api/auth/token/login", log(login))
	mux.HandleFunc("POST /api/auth/token/logout", log(authn.Require(authHandler.Logout)))

	// Users
	mux.HandleFunc("GET /api/users", log(authn.Optional(userHandler.List)))
	mux.HandleFunc("POST /api/users", log(userHandler.Create))
	mux.HandleFunc("GET /api/users/me", log(authn.Require(userHandler.Me)))
	mux.HandleFunc("GET /api/users/subscriptions", log(authn.Require(userHandler.Subscriptions)))
	mux.HandleFunc("POST /api/users/set_password", log(authn.Require(userHandler.SetPassword)))
	mux.HandleFunc("PUT /api/users/me/avatar", log(authn.Require(userHandler.PutAvatar)))
	mux.HandleFunc("DELETE /api/users/me/avatar", log(authn.Require(userHandler.DeleteAvatar)))
	mux.HandleFunc("GET /api/users/{id}", log(authn.Optional(userHandler.Get)))
	mux.HandleFunc("POST /api/users/{id}/subscribe", log(authn.Require(userHandler.Subscribe)))
	mux.HandleFunc("DELETE /api/users/{id}/subscribe", log(authn.Require(userHandler.Unsubscribe)))

	// Ingredients (public)
	mux.HandleFunc("GET /api/ingredients", log(ingredientHandler.List))
	mux.HandleFunc("GET /api/ingredients/{id}", log(ingredientHandler.Get))

	// Recipes
	mux.HandleFunc("GET /api/recipes", log(authn.Optional(recipeHandler.List)))
	mux.HandleFunc("POST /api/recipes", log(authn.Require(recipeHandler.Create)))
	mux.HandleFunc("GET /api/recipes/download_shopping_cart", log(authn.Require(recipeHandler.DownloadShoppingCart)))
	mux.HandleFunc("GET /api/recipes/{id}", log(authn.Optional(recipeHandler.Get)))
	mux.HandleFunc("PATCH /api/recipes/{id}", log(authn.Require(recipeHandler.Update)))
	mux.HandleFunc("DELETE /api/recipes/{id}", log(authn.Require(recipeHandler.Delete)))
	mux.HandleFunc("GET /api/recipes/{id}/get-link", log(authn.Optional(recipeHandler.GetLink)))
	mux.HandleFunc("POST /api/recipes/{id}/favorite", log(authn.Require(recipeHandler.AddFavorite)))
	mux.HandleFunc("DELETE /api/recipes/{id}/favorite", log(authn.Require(recipeHandler.RemoveFavorite)))
	mux.HandleFunc("POST /api/recipes/{id}/shopping_cart", log(authn.Require(recipeHandler.AddToCart)))
	mux.HandleFunc("DELETE /api/recipes/{id}/shopping_cart", log(authn.Require(recipeHandler.RemoveFromCart)))

	// Local media files
	if cfg.MediaBackend != "s3" {
		mux.Handle("GET "+cfg.MediaURL, http.StripPrefix(cfg.MediaURL, http.FileServer(http.Dir(cfg.MediaRoot))))
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("recipe-box API v1"))
	})

	return middleware.CORS(middleware.TrimSlash(cfg.MediaURL, mux))
}
