// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/danielhkuo/recipe-box/auth"
	"github.com/danielhkuo/recipe-box/cliparse"
	"github.com/danielhkuo/recipe-box/models"
	"github.com/danielhkuo/recipe-box/storage"
	"github.com/danielhkuo/recipe-box/testutil"
)

type testEnv struct {
	db    *sql.DB
	cfg   cliparse.Config
	media *storage.Local
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	cfg := testutil.GetTestConfig()
	media := testutil.SetupTestMedia(t, &cfg)
	return testEnv{db: testutil.SetupTestDB(t), cfg: cfg, media: media}
}

// asUser attaches an authenticated user the way the auth middleware does
func asUser(req *http.Request, id, username string) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), models.User{ID: id, Username: username}))
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	return n
}
