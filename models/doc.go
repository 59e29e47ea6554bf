// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - TokenLoginRequest: email, password
  - CreateUserRequest: email, username, first_name, last_name, password
  - SetPasswordRequest: current_password, new_password
  - AvatarRequest: avatar (base64 data URI)
  - RecipeWriteRequest: ingredients, image, name, text, cooking_time

Validation rules live in `validate` struct tags and are checked by the
validation package.

# Response Types

  - User, Subscription (user + recipes + recipes_count)
  - Ingredient, RecipeIngredient
  - Recipe (full view) and RecipeMinified (id, name, image, cooking_time)
  - Page[T]: count, next, previous, results
  - ErrorResponse: error, message, fields
  - ConflictResponse: errors

# Measurement Units

Ingredients use one of Units: g, kg, ml, l, pcs.
*/
package models
