package models

import (
	"encoding/json"
	"slices"

	"github.com/shopspring/decimal"
)

// Measurement unit constants
const (
	UnitGram       = "g"
	UnitKilogram   = "kg"
	UnitMilliliter = "ml"
	UnitLiter      = "l"
	UnitPiece      = "pcs"
)

var Units = []string{UnitGram, UnitKilogram, UnitMilliliter, UnitLiter, UnitPiece}

func IsValidUnit(unit string) bool {
	return slices.Contains(Units, unit)
}

// Request types

type TokenLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email,max=150"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=72"`
}

type SetPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,max=72"`
}

// Avatar holds either a base64 string or an invalid value; the image decoder
// decides which.
type AvatarRequest struct {
	Avatar json.RawMessage `json:"avatar"`
}

type IngredientAmount struct {
	ID     string          `json:"id" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// Pointers tell "absent" from "empty" for PATCH.
type RecipeWriteRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" validate:"omitnil,min=1,dive"`
	Image       json.RawMessage    `json:"image"`
	Name        *string            `json:"name" validate:"omitnil,min=1,max=256"`
	Text        *string            `json:"text" validate:"omitnil,min=1"`
	CookingTime *int               `json:"cooking_time" validate:"omitnil,min=1"`
}

// Response types

type TokenLoginResponse struct {
	AuthToken string `json:"auth_token"`
}

type CreateUserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type AvatarResponse struct {
	Avatar string `json:"avatar"`
}

type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// Page is the paginated list envelope.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Domain types

type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Avatar       *string `json:"avatar"`
	IsSubscribed bool    `json:"is_subscribed"`
}

// Subscription is the followed author with a preview of their recipes.
type Subscription struct {
	User
	Recipes      []RecipeMinified `json:"recipes"`
	RecipesCount int              `json:"recipes_count"`
}

type Ingredient struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type RecipeIngredient struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	MeasurementUnit string      `json:"measurement_unit"`
	Amount          json.Number `json:"amount"`
}

type Recipe struct {
	ID               string             `json:"id"`
	Author           User               `json:"author"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

type RecipeMinified struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// Error responses

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ConflictResponse reports a business rule violation such as adding a
// recipe to the cart twice.
type ConflictResponse struct {
	Errors string `json:"errors"`
}
