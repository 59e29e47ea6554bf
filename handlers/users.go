// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/recipe-box/auth"
	"github.com/danielhkuo/recipe-box/cliparse"
	"github.com/danielhkuo/recipe-box/db"
	"github.com/danielhkuo/recipe-box/imagefield"
	"github.com/danielhkuo/recipe-box/middleware"
	"github.com/danielhkuo/recipe-box/models"
	"github.com/danielhkuo/recipe-box/storage"
	"github.com/danielhkuo/recipe-box/validation"
)

type UserHandler struct {
	db      *sql.DB
	cfg     cliparse.Config
	media   storage.Storage
	decoder *imagefield.Decoder
	views   views
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config, media storage.Storage) *UserHandler {
	return &UserHandler{
		db:      db,
		cfg:     cfg,
		media:   media,
		decoder: newImageDecoder(cfg),
		views:   views{db: db, media: media},
	}
}

// List handles GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Invalid page.")
		return
	}

	var count int
	if err := h.db.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM app_user`).Scan(&count); err != nil {
		slog.Error("failed to count users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	ids, err := h.views.ids(r.Context(), `
		SELECT id FROM app_user ORDER BY date_joined, id LIMIT $1 OFFSET $2
	`, p.limit, p.offset())
	if err != nil {
		slog.Error("failed to query users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	users, err := h.views.users(r.Context(), ids, viewerID(r))
	if err != nil {
		slog.Error("failed to load users", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	page, err := newPage(r, h.cfg.PublicURL, p, count, users)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Invalid page.")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, page)
}

// Create handles POST /api/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	verr := validation.ValidateStruct(&req)
	if verr == nil {
		verr = &validation.RequestValidationError{}
	}
	if err := h.checkUnique(r, &req, verr); err != nil {
		slog.Error("failed to check user uniqueness", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if verr.HasErrors() {
		middleware.ValidationErrorResponse(w, verr.Fields())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	userID := auth.NewID()
	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO app_user (id, email, username, first_name, last_name, password_hash, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, userID, req.Email, req.Username, req.FirstName, req.LastName, hash, time.Now().UTC())
	if db.IsUniqueViolation(err) {
		middleware.ValidationErrorResponse(w, map[string]string{
			"username": "A user with that username or email already exists.",
		})
		return
	}
	if err != nil {
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	slog.Info("user created", "user_id", userID, "username", req.Username)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateUserResponse{
		ID:        userID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
}

func (h *UserHandler) checkUnique(r *http.Request, req *models.CreateUserRequest, verr *validation.RequestValidationError) error {
	taken, err := h.views.exists(r.Context(), `SELECT 1 FROM app_user WHERE email = $1`, req.Email)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("email", "A user with that email already exists.")
	}

	taken, err = h.views.exists(r.Context(), `SELECT 1 FROM app_user WHERE username = $1`, req.Username)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("username", "A user with that username already exists.")
	}
	return nil
}

// Get handles GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.views.user(r.Context(), r.PathValue("id"), viewerID(r))
	if errors.Is(err, sql.ErrNoRows) {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		slog.Error("failed to load user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, u)
}

// Me handles GET /api/users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	me := viewerID(r)
	u, err := h.views.user(r.Context(), me, me)
	if err != nil {
		slog.Error("failed to load current user", "error", err, "user_id", me)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, u)
}

// SetPassword handles POST /api/users/set_password
func (h *UserHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.SetPasswordRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		middleware.ValidationErrorResponse(w, verr.Fields())
		return
	}

	me := viewerID(r)
	var hash string
	err := h.db.QueryRowContext(r.Context(), `SELECT password_hash FROM app_user WHERE id = $1`, me).Scan(&hash)
	if err != nil {
		slog.Error("failed to load password hash", "error", err, "user_id", me)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if auth.CheckPassword(hash, req.CurrentPassword) != nil {
		middleware.ValidationErrorResponse(w, map[string]string{
			"current_password": "Current password is incorrect.",
		})
		return
	}
	if auth.CheckPassword(hash, req.NewPassword) == nil {
		middleware.ValidationErrorResponse(w, map[string]string{
			"new_password": "New password must differ from the current one.",
		})
		return
	}

	newHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to set password")
		return
	}
	if _, err := h.db.ExecContext(r.Context(), `
		UPDATE app_user SET password_hash = $1 WHERE id = $2
	`, newHash, me); err != nil {
		slog.Error("failed to update password", "error", err, "user_id", me)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to set password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PutAvatar handles PUT /api/users/me/avatar. The body is either JSON
// {"avatar": "<data URI>"} or a multipart form with an "avatar" file.
func (h *UserHandler) PutAvatar(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.avatarPayload(w, r)
	if !ok {
		return
	}
	if stream, isStream := payload.(imagefield.BinaryStream); isStream {
		if c, canClose := stream.Reader.(io.Closer); canClose {
			defer c.Close()
		}
	}

	asset, err := h.decoder.Decode(payload)
	if err != nil {
		middleware.ValidationErrorResponse(w, map[string]string{"avatar": imageErrorMessage(err)})
		return
	}

	me := viewerID(r)
	var old sql.NullString
	if err := h.db.QueryRowContext(r.Context(), `SELECT avatar FROM app_user WHERE id = $1`, me).Scan(&old); err != nil {
		slog.Error("failed to load avatar", "error", err, "user_id", me)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	key := storage.AvatarKey(me, asset.Name)
	if err := h.media.Save(r.Context(), key, asset.Data, asset.ContentType()); err != nil {
		slog.Error("failed to store avatar", "error", err, "key", key)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to store avatar")
		return
	}

	if _, err := h.db.ExecContext(r.Context(), `UPDATE app_user SET avatar = $1 WHERE id = $2`, key, me); err != nil {
		slog.Error("failed to update avatar", "error", err, "user_id", me)
		h.removeMedia(r, key)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if old.Valid && old.String != "" && old.String != key {
		h.removeMedia(r, old.String)
	}

	middleware.JSONResponse(w, http.StatusOK, models.AvatarResponse{Avatar: h.media.URL(key)})
}

func (h *UserHandler) avatarPayload(w http.ResponseWriter, r *http.Request) (imagefield.Payload, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, imageBodyLimit(h.cfg))
		file, header, err := r.FormFile("avatar")
		if errors.Is(err, http.ErrMissingFile) {
			middleware.ValidationErrorResponse(w, map[string]string{"avatar": "This field is required."})
			return nil, false
		}
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid multipart form")
			return nil, false
		}
		return imagefield.BinaryStream{Reader: file, Filename: header.Filename}, true
	}

	var req models.AvatarRequest
	if !parseImageJSON(w, r, h.cfg, &req) {
		return nil, false
	}
	if len(req.Avatar) == 0 {
		middleware.ValidationErrorResponse(w, map[string]string{"avatar": "This field is required."})
		return nil, false
	}
	return imagefield.FromJSON(req.Avatar), true
}

// DeleteAvatar handles DELETE /api/users/me/avatar
func (h *UserHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	me := viewerID(r)

	var old sql.NullString
	if err := h.db.QueryRowContext(r.Context(), `SELECT avatar FROM app_user WHERE id = $1`, me).Scan(&old); err != nil {
		slog.Error("failed to load avatar", "error", err, "user_id", me)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if _, err := h.db.ExecContext(r.Context(), `UPDATE app_user SET avatar = NULL WHERE id = $1`, me); err != nil {
		slog.Error("failed to clear avatar", "error", err, "user_id", me)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if old.Valid && old.String != "" {
		h.removeMedia(r, old.String)
	}

	w.WriteHeader(http.StatusNoContent)
}

// Subscribe handles POST /api/users/{id}/subscribe
func (h *UserHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	me := viewerID(r)
	authorID, ok := h.subscriptionTarget(w, r, me)
	if !ok {
		return
	}

	_, err := h.db.ExecContext(r.Context(), `
		INSERT INTO subscription (follower_id, author_id, created_at) VALUES ($1, $2, $3)
	`, me, authorID, time.Now().UTC())
	if db.IsUniqueViolation(err) {
		middleware.ConflictResponse(w, "Already subscribed.")
		return
	}
	if err != nil {
		slog.Error("failed to insert subscription", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	sub, err := h.views.subscription(r.Context(), authorID, me, recipesLimit(r))
	if err != nil {
		slog.Error("failed to load subscription", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("subscribed", "follower_id", me, "author_id", authorID)
	middleware.JSONResponse(w, http.StatusCreated, sub)
}

// Unsubscribe handles DELETE /api/users/{id}/subscribe
func (h *UserHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	me := viewerID(r)
	authorID, ok := h.subscriptionTarget(w, r, me)
	if !ok {
		return
	}

	res, err := h.db.ExecContext(r.Context(), `
		DELETE FROM subscription WHERE follower_id = $1 AND author_id = $2
	`, me, authorID)
	if err != nil {
		slog.Error("failed to delete subscription", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ConflictResponse(w, "Subscription not found.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// subscriptionTarget resolves {id} and rejects unknown users and the caller
// themself.
func (h *UserHandler) subscriptionTarget(w http.ResponseWriter, r *http.Request, me string) (string, bool) {
	authorID := r.PathValue("id")

	found, err := h.views.exists(r.Context(), `SELECT 1 FROM app_user WHERE id = $1`, authorID)
	if err != nil {
		slog.Error("failed to query author", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return "", false
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return "", false
	}
	if authorID == me {
		middleware.ConflictResponse(w, "You cannot subscribe to yourself.")
		return "", false
	}
	return authorID, true
}

// Subscriptions handles GET /api/users/subscriptions
func (h *UserHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	p, err := parsePage(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Invalid page.")
		return
	}
	me := viewerID(r)

	var count int
	err = h.db.QueryRowContext(r.Context(), `
		SELECT COUNT(*) FROM subscription WHERE follower_id = $1
	`, me).Scan(&count)
	if err != nil {
		slog.Error("failed to count subscriptions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	authorIDs, err := h.views.ids(r.Context(), `
		SELECT author_id FROM subscription
		WHERE follower_id = $1
		ORDER BY created_at, author_id
		LIMIT $2 OFFSET $3
	`, me, p.limit, p.offset())
	if err != nil {
		slog.Error("failed to query subscriptions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	limit := recipesLimit(r)
	subs := make([]models.Subscription, 0, len(authorIDs))
	for _, authorID := range authorIDs {
		sub, err := h.views.subscription(r.Context(), authorID, me, limit)
		if err != nil {
			slog.Error("failed to load subscription", "error", err, "author_id", authorID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		subs = append(subs, sub)
	}

	page, err := newPage(r, h.cfg.PublicURL, p, count, subs)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusNotFound, "Invalid page.")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, page)
}

// recipesLimit reads ?recipes_limit=; anything but digits means no limit.
func recipesLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("recipes_limit"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}

func (h *UserHandler) removeMedia(r *http.Request, key string) {
	if err := h.media.Delete(r.Context(), key); err != nil {
		slog.Warn("failed to delete media file", "error", err, "key", key)
	}
}
