// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/recipe-box/shoppinglist"
)

// CartReader reads shopping carts for the shopping list builder.
type CartReader struct {
	db *sql.DB
}

func NewCartReader(db *sql.DB) *CartReader {
	return &CartReader{db: db}
}

// LoadCart implements shoppinglist.Source.
func (c *CartReader) LoadCart(ctx context.Context, userID string) (shoppinglist.Cart, error) {
	var cart shoppinglist.Cart

	err := c.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM shopping_cart WHERE user_id = $1
	`, userID).Scan(&cart.Recipes)
	if err != nil {
		return shoppinglist.Cart{}, fmt.Errorf("failed to count cart entries: %w", err)
	}
	if cart.Recipes == 0 {
		return cart, nil
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT i.title, i.measurement_unit, ri.amount
		FROM shopping_cart sc
		JOIN recipe_ingredient ri ON ri.recipe_id = sc.recipe_id
		JOIN ingredient i ON i.id = ri.ingredient_id
		WHERE sc.user_id = $1
	`, userID)
	if err != nil {
		return shoppinglist.Cart{}, fmt.Errorf("failed to query cart ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it shoppinglist.Item
		if err := rows.Scan(&it.Title, &it.Unit, &it.Amount); err != nil {
			return shoppinglist.Cart{}, fmt.Errorf("failed to scan cart ingredient: %w", err)
		}
		cart.Items = append(cart.Items, it)
	}
	if err := rows.Err(); err != nil {
		return shoppinglist.Cart{}, fmt.Errorf("failed to read cart ingredients: %w", err)
	}

	return cart, nil
}
