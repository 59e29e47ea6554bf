// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/recipe-box/auth"
	"github.com/danielhkuo/recipe-box/models"
	"github.com/danielhkuo/recipe-box/testutil"
)

// TestFullRecipeWorkflow tests the complete end-to-end workflow:
// 1. Sign up two users
// 2. Log in
// 3. Author publishes a recipe
// 4. Reader subscribes, favorites and fills the cart
// 5. Reader downloads the shopping list
// 6. Author deletes the recipe
func TestFullRecipeWorkflow(t *testing.T) {
	env := newTestEnv(t)
	authHandler := NewAuthHandler(env.db, env.cfg)
	userHandler := NewUserHandler(env.db, env.cfg, env.media)
	recipeHandler := NewRecipeHandler(env.db, env.cfg, env.media)

	riceID := testutil.CreateTestIngredient(t, env.db, "rice", models.UnitGram)
	waterID := testutil.CreateTestIngredient(t, env.db, "water", models.UnitMilliliter)

	// Step 1: Sign up
	signup := func(username string) models.CreateUserResponse {
		body := models.CreateUserRequest{
			Email:     username + "@example.com",
			Username:  username,
			FirstName: "Test",
			LastName:  "User",
			Password:  "secret-pass",
		}
		w := httptest.NewRecorder()
		userHandler.Create(w, testutil.MakeRequest("POST", "/api/users", body, nil))
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 1 - Sign up %s failed: %d - %s", username, w.Code, w.Body.String())
		}
		var resp models.CreateUserResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}
	chef := signup("chef")
	reader := signup("reader")
	t.Logf("Step 1 - Created users %s and %s", chef.ID, reader.ID)

	// Step 2: Log in and resolve the token the way the middleware does
	login := func(email string) models.User {
		w := httptest.NewRecorder()
		authHandler.Login(w, testutil.MakeRequest("POST", "/api/auth/token/login",
			models.TokenLoginRequest{Email: email, Password: "secret-pass"}, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Step 2 - Login failed: %d - %s", w.Code, w.Body.String())
		}
		var resp models.TokenLoginResponse
		testutil.AssertJSON(t, w, &resp)

		u, err := authHandler.ResolveToken(context.Background(), resp.AuthToken)
		if err != nil {
			t.Fatalf("Step 2 - Token does not resolve: %v", err)
		}
		return u
	}
	chefUser := login("chef@example.com")
	readerUser := login("reader@example.com")
	as := func(req *http.Request, u models.User) *http.Request {
		return req.WithContext(auth.WithUser(req.Context(), u))
	}

	// Step 3: Publish a recipe
	body := map[string]any{
		"name":         "Plain rice",
		"text":         "Boil.",
		"cooking_time": 20,
		"image":        testutil.PNGDataURI(t),
		"ingredients": []map[string]any{
			{"id": riceID, "amount": 150},
			{"id": waterID, "amount": 300},
		},
	}
	w := httptest.NewRecorder()
	recipeHandler.Create(w, as(testutil.MakeRequest("POST", "/api/recipes", body, nil), chefUser))
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 3 - Create recipe failed: %d - %s", w.Code, w.Body.String())
	}
	var recipe models.Recipe
	testutil.AssertJSON(t, w, &recipe)

	// Step 4: Subscribe, favorite, add to cart
	req := httptest.NewRequest("POST", "/api/users/"+chef.ID+"/subscribe", nil)
	req.SetPathValue("id", chef.ID)
	w = httptest.NewRecorder()
	userHandler.Subscribe(w, as(req, readerUser))
	testutil.AssertStatus(t, w, http.StatusCreated)

	for _, add := range []func(http.ResponseWriter, *http.Request){recipeHandler.AddFavorite, recipeHandler.AddToCart} {
		req := httptest.NewRequest("POST", "/api/recipes/"+recipe.ID, nil)
		req.SetPathValue("id", recipe.ID)
		w := httptest.NewRecorder()
		add(w, as(req, readerUser))
		testutil.AssertStatus(t, w, http.StatusCreated)
	}

	req = withID(httptest.NewRequest("GET", "/api/recipes/"+recipe.ID, nil), recipe.ID)
	w = httptest.NewRecorder()
	recipeHandler.Get(w, as(req, readerUser))
	testutil.AssertJSON(t, w, &recipe)
	if !recipe.IsFavorited || !recipe.IsInShoppingCart || !recipe.Author.IsSubscribed {
		t.Errorf("Step 4 - Reader flags not set: %+v", recipe)
	}

	// Step 5: Download the shopping list
	w = httptest.NewRecorder()
	recipeHandler.DownloadShoppingCart(w, as(httptest.NewRequest("GET", "/api/recipes/download_shopping_cart", nil), readerUser))
	testutil.AssertStatus(t, w, http.StatusOK)
	if got := w.Body.String(); got != "rice (g) — 150.00\nwater (ml) — 300.00\n" {
		t.Errorf("Step 5 - Unexpected shopping list %q", got)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "shopping_list_reader.txt") {
		t.Errorf("Step 5 - Unexpected filename %s", w.Header().Get("Content-Disposition"))
	}

	// Step 6: Delete the recipe; the reader's cart empties with it
	req = withID(httptest.NewRequest("DELETE", "/api/recipes/"+recipe.ID, nil), recipe.ID)
	w = httptest.NewRecorder()
	recipeHandler.Delete(w, as(req, chefUser))
	testutil.AssertStatus(t, w, http.StatusNoContent)

	w = httptest.NewRecorder()
	recipeHandler.DownloadShoppingCart(w, as(httptest.NewRequest("GET", "/api/recipes/download_shopping_cart", nil), readerUser))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}
