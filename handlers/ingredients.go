// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/recipe-box/cliparse"
	"github.com/danielhkuo/recipe-box/middleware"
	"github.com/danielhkuo/recipe-box/models"
)

type IngredientHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewIngredientHandler(db *sql.DB, cfg cliparse.Config) *IngredientHandler {
	return &IngredientHandler{db: db, cfg: cfg}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List handles GET /api/ingredients?name=
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	query := `SELECT id, title, measurement_unit FROM ingredient`
	var args []any

	if name := strings.TrimSpace(r.URL.Query().Get("name")); name != "" {
		query += ` WHERE LOWER(title) LIKE $1 ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(name))+"%")
	}
	query += ` ORDER BY title, measurement_unit`

	rows, err := h.db.QueryContext(r.Context(), query, args...)
	if err != nil {
		slog.Error("failed to query ingredients", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	ingredients := []models.Ingredient{}
	for rows.Next() {
		var ing models.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit); err != nil {
			slog.Error("failed to scan ingredient", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read ingredients", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ingredients)
}

// Get handles GET /api/ingredients/{id}
func (h *IngredientHandler) Get(w http.ResponseWriter, r *http.Request) {
	var ing models.Ingredient
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, title, measurement_unit FROM ingredient WHERE id = $1
	`, r.PathValue("id")).Scan(&ing.ID, &ing.Name, &ing.MeasurementUnit)
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Ingredient not found")
		return
	}
	if err != nil {
		slog.Error("failed to query ingredient", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, ing)
}
