// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	ddl, err := Schema(dialect)
	if err != nil {
		return err
	}

	_, err = db.Exec(ddl)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Schema returns the DDL for a dialect. Amounts are exact NUMERIC on
// Postgres; SQLite keeps them as TEXT because its NUMERIC affinity would
// turn 0.10 into a float.
func Schema(dialect string) (string, error) {
	switch dialect {
	case DialectPostgres:
		return fmt.Sprintf(schema, "NUMERIC(7,2) NOT NULL CHECK (amount >= 0.01)"), nil
	case DialectSQLite:
		return fmt.Sprintf(schema, "TEXT NOT NULL"), nil
	}
	return "", fmt.Errorf("unsupported database type %q", dialect)
}

// Tables in drop order (children first).
var Tables = []string{
	"shopping_cart",
	"favorite",
	"recipe_ingredient",
	"recipe",
	"ingredient",
	"subscription",
	"auth_token",
	"app_user",
}

const schema = `
-- Users
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    username TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    avatar TEXT,
    date_joined TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Auth tokens
CREATE TABLE IF NOT EXISTS auth_token (
    token TEXT PRIMARY KEY,
    user_id TEXT NOT NULL UNIQUE REFERENCES app_user(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Subscriptions (follower -> author)
CREATE TABLE IF NOT EXISTS subscription (
    follower_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    author_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (follower_id, author_id),
    CHECK (follower_id <> author_id)
);

CREATE INDEX IF NOT EXISTS idx_subscription_author ON subscription(author_id);

-- Ingredients
CREATE TABLE IF NOT EXISTS ingredient (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    measurement_unit TEXT NOT NULL CHECK (measurement_unit IN ('g', 'kg', 'ml', 'l', 'pcs')),
    UNIQUE (title, measurement_unit)
);

-- Recipes
CREATE TABLE IF NOT EXISTS recipe (
    id TEXT PRIMARY KEY,
    author_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    cooking_time INTEGER NOT NULL CHECK (cooking_time >= 1),
    image TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_recipe_author ON recipe(author_id);
CREATE INDEX IF NOT EXISTS idx_recipe_created_at ON recipe(created_at);

-- Recipe ingredients
CREATE TABLE IF NOT EXISTS recipe_ingredient (
    recipe_id TEXT NOT NULL REFERENCES recipe(id) ON DELETE CASCADE,
    ingredient_id TEXT NOT NULL REFERENCES ingredient(id) ON DELETE CASCADE,
    amount %s,
    PRIMARY KEY (recipe_id, ingredient_id)
);

CREATE INDEX IF NOT EXISTS idx_recipe_ingredient_ingredient ON recipe_ingredient(ingredient_id);

-- Favorites
CREATE TABLE IF NOT EXISTS favorite (
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    recipe_id TEXT NOT NULL REFERENCES recipe(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, recipe_id)
);

-- Shopping cart
CREATE TABLE IF NOT EXISTS shopping_cart (
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    recipe_id TEXT NOT NULL REFERENCES recipe(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY (user_id, recipe_id)
);

CREATE INDEX IF NOT EXISTS idx_shopping_cart_recipe ON shopping_cart(recipe_id);
`
