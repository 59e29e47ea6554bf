// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/danielhkuo/recipe-box/cliparse"
)

var ErrInvalidKey = errors.New("invalid storage key")

// Storage persists media files under slash-separated keys.
type Storage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// RecipeImageKey is where a recipe image of the given author lives.
func RecipeImageKey(authorID, name string) string {
	return path.Join("users", "recipes", authorID, name)
}

// AvatarKey is where a user's avatar lives.
func AvatarKey(userID, name string) string {
	return path.Join("users", "avatars", userID, name)
}

// FromConfig builds the backend selected by cfg.MediaBackend.
func FromConfig(ctx context.Context, cfg cliparse.Config) (Storage, error) {
	if cfg.MediaBackend == "s3" {
		return NewS3(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return NewLocal(cfg.MediaRoot, cfg.MediaURL)
}

// cleanKey rejects absolute keys and keys that climb out of the root.
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", ErrInvalidKey
		}
	}
	return cleaned, nil
}
