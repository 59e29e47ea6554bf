// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Drivers

Open supports PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite):

	conn, err := db.Open(db.DialectPostgres, "postgres://...")
	conn, err := db.Open(db.DialectSQLite, "file:recipes.db")

SQLite connections always enforce foreign keys and are limited to one open
connection, so callers must not issue a query while rows from another are
still open.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, db.DialectPostgres); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - app_user: Accounts (email and username unique)
  - auth_token: One login token per user
  - subscription: follower → author
  - ingredient: Unique per (title, measurement_unit)
  - recipe: Authored recipes
  - recipe_ingredient: Amount of each ingredient in a recipe
  - favorite: user ↔ recipe
  - shopping_cart: user ↔ recipe

All foreign keys use ON DELETE CASCADE.

# Shopping Lists

CartReader implements shoppinglist.Source:

	builder := shoppinglist.NewBuilder(db.NewCartReader(conn))
*/
package db
