// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/recipe-box/auth"
	"github.com/danielhkuo/recipe-box/cliparse"
	"github.com/danielhkuo/recipe-box/db"
	"github.com/danielhkuo/recipe-box/imagefield"
	"github.com/danielhkuo/recipe-box/middleware"
	"github.com/danielhkuo/recipe-box/models"
	"github.com/danielhkuo/recipe-box/shoppinglist"
	"github.com/danielhkuo/recipe-box/storage"
	"github.com/danielhkuo/recipe-box/validation"
)

var (
	minAmount = decimal.RequireFromString("0.01")
	maxAmount = decimal.NewFromInt(100000)
)

type RecipeHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	media   storage.Storage
	decoder *imagefield.Decoder
	lists   *shoppinglist.Builder
	views   views
}

func NewRecipeHandler(conn *sql.DB, cfg cliparse.Config, media storage.Storage) *RecipeHandler {
	return &RecipeHandler{
		db:      conn,
		cfg:     cfg,
		media:   media,
		decoder: newImageDecoder(cfg),
		lists:   shoppinglist.NewBuilder(db.NewCartReader(conn)),
		views:   views{db: conn, media: media},
	}
}

// List handles GET /api/recipes
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Invalid page.")
		return
	}
	viewer := viewerID(r)

	var where []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if author := r.URL.Query().Get("author"); author != "" {
		add("r.author_id = $%d", author)
	}
	favorited := queryFlag(r, "is_favorited")
	inCart := queryFlag(r, "is_in_shopping_cart")
	if (favorited || inCart) && viewer == "" {
		page, _ := newPage(r, h.cfg.PublicURL, pageRequest{page: 1, limit: p.limit}, 0, []models.Recipe{})
		middleware.JSONResponse(w, http.StatusOK, page)
		return
	}
	if favorited {
		add("EXISTS (SELECT 1 FROM favorite f WHERE f.recipe_id = r.id AND f.user_id = $%d)", viewer)
	}
	if inCart {
		add("EXISTS (SELECT 1 FROM shopping_cart sc WHERE sc.recipe_id = r.id AND sc.user_id = $%d)", viewer)
	}

	filter := ""
	if len(where) > 0 {
		filter = " WHERE " + strings.Join(where, " AND ")
	}

	var count int
	err = h.db.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM recipe r`+filter, args...).Scan(&count)
	if err != nil {
		slog.Error("failed to count recipes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	n := len(args)
	ids, err := h.views.ids(r.Context(),
		fmt.Sprintf(`SELECT r.id FROM recipe r%s ORDER BY r.created_at DESC, r.id LIMIT $%d OFFSET $%d`, filter, n+1, n+2),
		append(args, p.limit, p.offset())...)
	if err != nil {
		slog.Error("failed to query recipes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	recipes, err := h.views.recipes(r.Context(), ids, viewer)
	if err != nil {
		slog.Error("failed to load recipes", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	page, err := newPage(r, h.cfg.PublicURL, p, count, recipes)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Invalid page.")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, page)
}

// Get handles GET /api/recipes/{id}
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.views.recipe(r.Context(), r.PathValue("id"), viewerID(r))
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Recipe not found")
		return
	}
	if err != nil {
		slog.Error("failed to load recipe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, rec)
}

// Create handles POST /api/recipes
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.RecipeWriteRequest
	if !parseImageJSON(w, r, h.cfg, &req) {
		return
	}

	verr, err := h.validateWrite(r.Context(), &req, true)
	if err != nil {
		slog.Error("failed to validate recipe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if verr.HasErrors() {
		middleware.ValidationErrorResponse(w, verr.Fields())
		return
	}

	asset, err := h.decoder.Decode(imagefield.FromJSON(req.Image))
	if err != nil {
		middleware.ValidationErrorResponse(w, map[string]string{"image": imageErrorMessage(err)})
		return
	}

	me := viewerID(r)
	key := storage.RecipeImageKey(me, asset.Name)
	if err := h.media.Save(r.Context(), key, asset.Data, asset.ContentType()); err != nil {
		slog.Error("failed to store recipe image", "error", err, "key", key)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store image")
		return
	}

	recipeID := auth.NewID()
	err = h.inTx(r.Context(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(r.Context(), `
			INSERT INTO recipe (id, author_id, title, description, cooking_time, image, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, recipeID, me, *req.Name, *req.Text, *req.CookingTime, key, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to insert recipe: %w", err)
		}
		return insertIngredients(r.Context(), tx, recipeID, req.Ingredients)
	})
	if err != nil {
		slog.Error("failed to create recipe", "error", err)
		h.removeMedia(r, key)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create recipe")
		return
	}

	slog.Info("recipe created", "recipe_id", recipeID, "author_id", me)
	h.respondRecipe(w, r, recipeID, http.StatusCreated)
}

// Update handles PATCH /api/recipes/{id}. Ingredients are replaced as a
// whole; other fields are optional.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	recipeID := r.PathValue("id")
	cur, ok := h.ownRecipe(w, r, recipeID)
	if !ok {
		return
	}

	var req models.RecipeWriteRequest
	if !parseImageJSON(w, r, h.cfg, &req) {
		return
	}

	verr, err := h.validateWrite(r.Context(), &req, false)
	if err != nil {
		slog.Error("failed to validate recipe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if verr.HasErrors() {
		middleware.ValidationErrorResponse(w, verr.Fields())
		return
	}

	next := cur
	if req.Name != nil {
		next.title = *req.Name
	}
	if req.Text != nil {
		next.description = *req.Text
	}
	if req.CookingTime != nil {
		next.cookingTime = *req.CookingTime
	}
	if len(req.Image) > 0 {
		asset, err := h.decoder.Decode(imagefield.FromJSON(req.Image))
		if err != nil {
			middleware.ValidationErrorResponse(w, map[string]string{"image": imageErrorMessage(err)})
			return
		}
		next.image = storage.RecipeImageKey(cur.authorID, asset.Name)
		if err := h.media.Save(r.Context(), next.image, asset.Data, asset.ContentType()); err != nil {
			slog.Error("failed to store recipe image", "error", err, "key", next.image)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store image")
			return
		}
	}

	err = h.inTx(r.Context(), func(tx *sql.Tx) error {
		_, err := tx.ExecContext(r.Context(), `
			UPDATE recipe SET title = $1, description = $2, cooking_time = $3, image = $4
			WHERE id = $5
		`, next.title, next.description, next.cookingTime, next.image, recipeID)
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if _, err := tx.ExecContext(r.Context(), `DELETE FROM recipe_ingredient WHERE recipe_id = $1`, recipeID); err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}
		return insertIngredients(r.Context(), tx, recipeID, req.Ingredients)
	})
	if err != nil {
		slog.Error("failed to update recipe", "error", err, "recipe_id", recipeID)
		if next.image != cur.image {
			h.removeMedia(r, next.image)
		}
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update recipe")
		return
	}
	if next.image != cur.image {
		h.removeMedia(r, cur.image)
	}

	h.respondRecipe(w, r, recipeID, http.StatusOK)
}

// Delete handles DELETE /api/recipes/{id}
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recipeID := r.PathValue("id")
	cur, ok := h.ownRecipe(w, r, recipeID)
	if !ok {
		return
	}

	if _, err := h.db.ExecContext(r.Context(), `DELETE FROM recipe WHERE id = $1`, recipeID); err != nil {
		slog.Error("failed to delete recipe", "error", err, "recipe_id", recipeID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	h.removeMedia(r, cur.image)

	slog.Info("recipe deleted", "recipe_id", recipeID)
	w.WriteHeader(http.StatusNoContent)
}

// GetLink handles GET /api/recipes/{id}/get-link
func (h *RecipeHandler) GetLink(w http.ResponseWriter, r *http.Request) {
	recipeID := r.PathValue("id")
	found, err := h.views.exists(r.Context(), `SELECT 1 FROM recipe WHERE id = $1`, recipeID)
	if err != nil {
		slog.Error("failed to query recipe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Recipe not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ShortLinkResponse{
		ShortLink: h.cfg.PublicURL + "/recipes/" + recipeID + "/",
	})
}

// AddFavorite handles POST /api/recipes/{id}/favorite
func (h *RecipeHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.addEntry(w, r, "favorite", "Recipe is already in favorites.")
}

// RemoveFavorite handles DELETE /api/recipes/{id}/favorite
func (h *RecipeHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.removeEntry(w, r, "favorite", "Recipe is not in favorites.")
}

// AddToCart handles POST /api/recipes/{id}/shopping_cart
func (h *RecipeHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	h.addEntry(w, r, "shopping_cart", "Recipe is already in the shopping cart.")
}

// RemoveFromCart handles DELETE /api/recipes/{id}/shopping_cart
func (h *RecipeHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	h.removeEntry(w, r, "shopping_cart", "Recipe is not in the shopping cart.")
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart
func (h *RecipeHandler) DownloadShoppingCart(w http.ResponseWriter, r *http.Request) {
	me, _ := auth.UserFromContext(r.Context())

	list, err := h.lists.Build(r.Context(), me.ID)
	if errors.Is(err, shoppinglist.ErrEmptyCart) {
		middleware.ConflictResponse(w, "Shopping cart is empty.")
		return
	}
	if err != nil {
		slog.Error("failed to build shopping list", "error", err, "user_id", me.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to build shopping list")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": shoppinglist.Filename(me.Username),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(list.String())); err != nil {
		slog.Error("failed to write shopping list", "error", err)
	}
}

// addEntry and removeEntry serve favorites and the cart; table is one of
// those two constant names.
func (h *RecipeHandler) addEntry(w http.ResponseWriter, r *http.Request, table, existsMsg string) {
	recipeID := r.PathValue("id")
	me := viewerID(r)

	minified, err := h.views.minifiedOne(r.Context(), recipeID)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Recipe not found")
		return
	}
	if err != nil {
		slog.Error("failed to query recipe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	_, err = h.db.ExecContext(r.Context(),
		`INSERT INTO `+table+` (user_id, recipe_id, created_at) VALUES ($1, $2, $3)`,
		me, recipeID, time.Now().UTC())
	if db.IsUniqueViolation(err) {
		middleware.ConflictResponse(w, existsMsg)
		return
	}
	if err != nil {
		slog.Error("failed to insert entry", "error", err, "table", table)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, minified)
}

func (h *RecipeHandler) removeEntry(w http.ResponseWriter, r *http.Request, table, missingMsg string) {
	recipeID := r.PathValue("id")

	found, err := h.views.exists(r.Context(), `SELECT 1 FROM recipe WHERE id = $1`, recipeID)
	if err != nil {
		slog.Error("failed to query recipe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Recipe not found")
		return
	}

	res, err := h.db.ExecContext(r.Context(),
		`DELETE FROM `+table+` WHERE user_id = $1 AND recipe_id = $2`,
		viewerID(r), recipeID)
	if err != nil {
		slog.Error("failed to delete entry", "error", err, "table", table)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ConflictResponse(w, missingMsg)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type recipeRow struct {
	authorID    string
	title       string
	description string
	cookingTime int
	image       string
}

// ownRecipe loads the recipe and checks that the caller wrote it.
func (h *RecipeHandler) ownRecipe(w http.ResponseWriter, r *http.Request, recipeID string) (recipeRow, bool) {
	var row recipeRow
	err := h.db.QueryRowContext(r.Context(), `
		SELECT author_id, title, description, cooking_time, image FROM recipe WHERE id = $1
	`, recipeID).Scan(&row.authorID, &row.title, &row.description, &row.cookingTime, &row.image)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Recipe not found")
		return recipeRow{}, false
	}
	if err != nil {
		slog.Error("failed to query recipe", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return recipeRow{}, false
	}
	if row.authorID != viewerID(r) {
		middleware.ErrorResponse(w, http.StatusForbidden, "You do not have permission to perform this action.")
		return recipeRow{}, false
	}
	return row, true
}

// validateWrite checks the request beyond struct tags. On create every field
// is required; on update only ingredients are.
func (h *RecipeHandler) validateWrite(ctx context.Context, req *models.RecipeWriteRequest, create bool) (*validation.RequestValidationError, error) {
	verr := validation.ValidateStruct(req)
	if verr == nil {
		verr = &validation.RequestValidationError{}
	}

	if req.Ingredients == nil {
		verr.Add("ingredients", "This field is required.")
	}
	if create {
		if req.Name == nil {
			verr.Add("name", "This field is required.")
		}
		if req.Text == nil {
			verr.Add("text", "This field is required.")
		}
		if req.CookingTime == nil {
			verr.Add("cooking_time", "This field is required.")
		}
		if len(req.Image) == 0 {
			verr.Add("image", "This field is required.")
		}
	}

	seen := make(map[string]bool, len(req.Ingredients))
	for i, item := range req.Ingredients {
		field := fmt.Sprintf("ingredients[%d]", i)
		if msg := amountError(item.Amount); msg != "" {
			verr.Add(field+".amount", msg)
		}
		if item.ID == "" {
			continue
		}
		if seen[item.ID] {
			verr.Add("ingredients", "Ingredients must not repeat.")
			continue
		}
		seen[item.ID] = true

		found, err := h.views.exists(ctx, `SELECT 1 FROM ingredient WHERE id = $1`, item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check ingredient: %w", err)
		}
		if !found {
			verr.Add(field+".id", fmt.Sprintf("Invalid pk %q - object does not exist.", item.ID))
		}
	}

	return verr, nil
}

// amountError mirrors the NUMERIC(7,2) column: at least 0.01, two decimal
// places, seven digits.
func amountError(d decimal.Decimal) string {
	switch {
	case d.LessThan(minAmount):
		return "Ensure this value is greater than or equal to 0.01."
	case !d.Equal(d.Truncate(2)):
		return "Ensure that there are no more than 2 decimal places."
	case d.GreaterThanOrEqual(maxAmount):
		return "Ensure that there are no more than 7 digits in total."
	}
	return ""
}

func insertIngredients(ctx context.Context, tx *sql.Tx, recipeID string, items []models.IngredientAmount) error {
	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredient (recipe_id, ingredient_id, amount) VALUES ($1, $2, $3)
		`, recipeID, item.ID, item.Amount.StringFixed(2))
		if err != nil {
			return fmt.Errorf("failed to insert recipe ingredient: %w", err)
		}
	}
	return nil
}

func (h *RecipeHandler) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (h *RecipeHandler) respondRecipe(w http.ResponseWriter, r *http.Request, recipeID string, status int) {
	rec, err := h.views.recipe(r.Context(), recipeID, viewerID(r))
	if err != nil {
		slog.Error("failed to load recipe", "error", err, "recipe_id", recipeID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, status, rec)
}

func (h *RecipeHandler) removeMedia(r *http.Request, key string) {
	if err := h.media.Delete(r.Context(), key); err != nil {
		slog.Warn("failed to delete media file", "error", err, "key", key)
	}
}
