// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/recipe-box/models"
	"github.com/danielhkuo/recipe-box/storage"
)

// views renders database rows into response models. Every query drains its
// rows before the next one runs, which SQLite's single connection needs.
type views struct {
	db    *sql.DB
	media storage.Storage
}

func (v views) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	err := v.db.QueryRowContext(ctx, "SELECT EXISTS ("+query+")", args...).Scan(&ok)
	return ok, err
}

// user loads one user as seen by viewer. It returns sql.ErrNoRows for an
// unknown id.
func (v views) user(ctx context.Context, id, viewer string) (models.User, error) {
	var u models.User
	var avatar sql.NullString

	err := v.db.QueryRowContext(ctx, `
		SELECT id, email, username, first_name, last_name, avatar
		FROM app_user WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName, &avatar)
	if err != nil {
		return models.User{}, err
	}

	if avatar.Valid && avatar.String != "" {
		url := v.media.URL(avatar.String)
		u.Avatar = &url
	}

	if viewer != "" && viewer != id {
		u.IsSubscribed, err = v.exists(ctx, `
			SELECT 1 FROM subscription WHERE follower_id = $1 AND author_id = $2
		`, viewer, id)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to check subscription: %w", err)
		}
	}

	return u, nil
}

func (v views) users(ctx context.Context, ids []string, viewer string) ([]models.User, error) {
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		u, err := v.user(ctx, id, viewer)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

// recipe loads the full recipe view. It returns sql.ErrNoRows for an unknown
// id.
func (v views) recipe(ctx context.Context, id, viewer string) (models.Recipe, error) {
	var rec models.Recipe
	var authorID, image string

	err := v.db.QueryRowContext(ctx, `
		SELECT id, author_id, title, description, cooking_time, image
		FROM recipe WHERE id = $1
	`, id).Scan(&rec.ID, &authorID, &rec.Name, &rec.Text, &rec.CookingTime, &image)
	if err != nil {
		return models.Recipe{}, err
	}
	rec.Image = v.media.URL(image)

	if rec.Author, err = v.user(ctx, authorID, viewer); err != nil {
		return models.Recipe{}, fmt.Errorf("failed to load recipe author: %w", err)
	}
	if rec.Ingredients, err = v.recipeIngredients(ctx, id); err != nil {
		return models.Recipe{}, err
	}

	if viewer != "" {
		rec.IsFavorited, err = v.exists(ctx, `
			SELECT 1 FROM favorite WHERE user_id = $1 AND recipe_id = $2
		`, viewer, id)
		if err != nil {
			return models.Recipe{}, fmt.Errorf("failed to check favorite: %w", err)
		}
		rec.IsInShoppingCart, err = v.exists(ctx, `
			SELECT 1 FROM shopping_cart WHERE user_id = $1 AND recipe_id = $2
		`, viewer, id)
		if err != nil {
			return models.Recipe{}, fmt.Errorf("failed to check shopping cart: %w", err)
		}
	}

	return rec, nil
}

func (v views) recipes(ctx context.Context, ids []string, viewer string) ([]models.Recipe, error) {
	out := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		rec, err := v.recipe(ctx, id, viewer)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (v views) recipeIngredients(ctx context.Context, recipeID string) ([]models.RecipeIngredient, error) {
	rows, err := v.db.QueryContext(ctx, `
		SELECT i.id, i.title, i.measurement_unit, ri.amount
		FROM recipe_ingredient ri
		JOIN ingredient i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = $1
		ORDER BY i.title, i.measurement_unit
	`, recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe ingredients: %w", err)
	}
	defer rows.Close()

	out := []models.RecipeIngredient{}
	for rows.Next() {
		var ri models.RecipeIngredient
		var amount decimal.Decimal
		if err := rows.Scan(&ri.ID, &ri.Name, &ri.MeasurementUnit, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan recipe ingredient: %w", err)
		}
		ri.Amount = json.Number(amount.StringFixed(2))
		out = append(out, ri)
	}
	return out, rows.Err()
}

// minified returns the author's recipes, newest first. limit < 0 means all.
func (v views) minified(ctx context.Context, authorID string, limit int) ([]models.RecipeMinified, error) {
	query := `
		SELECT id, title, image, cooking_time
		FROM recipe WHERE author_id = $1
		ORDER BY created_at DESC, id`
	args := []any{authorID}
	if limit >= 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query author recipes: %w", err)
	}
	defer rows.Close()

	out := []models.RecipeMinified{}
	for rows.Next() {
		var m models.RecipeMinified
		var image string
		if err := rows.Scan(&m.ID, &m.Name, &image, &m.CookingTime); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		m.Image = v.media.URL(image)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (v views) minifiedOne(ctx context.Context, id string) (models.RecipeMinified, error) {
	var m models.RecipeMinified
	var image string
	err := v.db.QueryRowContext(ctx, `
		SELECT id, title, image, cooking_time FROM recipe WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &image, &m.CookingTime)
	if err != nil {
		return models.RecipeMinified{}, err
	}
	m.Image = v.media.URL(image)
	return m, nil
}

// subscription renders a followed author with up to recipesLimit recipes.
func (v views) subscription(ctx context.Context, authorID, viewer string, recipesLimit int) (models.Subscription, error) {
	u, err := v.user(ctx, authorID, viewer)
	if err != nil {
		return models.Subscription{}, err
	}
	sub := models.Subscription{User: u}

	if sub.Recipes, err = v.minified(ctx, authorID, recipesLimit); err != nil {
		return models.Subscription{}, err
	}
	err = v.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM recipe WHERE author_id = $1
	`, authorID).Scan(&sub.RecipesCount)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("failed to count author recipes: %w", err)
	}
	return sub, nil
}

// ids runs a query returning one string column and collects it.
func (v views) ids(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
