// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/danielhkuo/recipe-box/auth"
	"github.com/danielhkuo/recipe-box/cliparse"
	"github.com/danielhkuo/recipe-box/db"
	"github.com/danielhkuo/recipe-box/storage"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the password of every user made by CreateTestUser
const TestPassword = "s3cret-pass"

// SetupTestDB creates a fresh test database with the full schema. It uses an
// in-memory SQLite database unless TEST_DATABASE_URL points at Postgres.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// Keep bcrypt fast in tests
	auth.BcryptCost = bcrypt.MinCost

	dialect, url := db.DialectSQLite, "file::memory:"
	if pgURL := os.Getenv("TEST_DATABASE_URL"); pgURL != "" {
		dialect, url = db.DialectPostgres, pgURL
	}

	conn, err := db.Open(dialect, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Clean up tables before each test
	if dialect == db.DialectPostgres {
		for _, table := range db.Tables {
			if _, err := conn.Exec("DROP TABLE IF EXISTS " + table + " CASCADE"); err != nil {
				t.Fatalf("Failed to clean database: %v", err)
			}
		}
	}

	if err := db.CreateSchema(conn, dialect); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseURL:        "file::memory:",
		DatabaseType:       db.DialectSQLite,
		PublicURL:          "http://testserver",
		MediaBackend:       "local",
		MediaRoot:          "media",
		MediaURL:           "/media/",
		ImageTokenLength:   cliparse.DefaultImageTokenLength,
		MaxImageBytes:      cliparse.DefaultMaxImageBytes,
		MaxImageSide:       cliparse.DefaultMaxImageSide,
		LoginRatePerMinute: 0,
		LogLevel:           "error",
	}
}

// SetupTestMedia returns local storage rooted in a temp dir
func SetupTestMedia(t *testing.T, cfg *cliparse.Config) *storage.Local {
	t.Helper()

	cfg.MediaRoot = t.TempDir()
	media, err := storage.NewLocal(cfg.MediaRoot, cfg.MediaURL)
	if err != nil {
		t.Fatalf("Failed to create media storage: %v", err)
	}
	return media
}

// CreateTestUser inserts a user with TestPassword and returns its ID
func CreateTestUser(t *testing.T, conn *sql.DB, username string) string {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	userID := auth.NewID()
	_, err = conn.Exec(`
		INSERT INTO app_user (id, email, username, first_name, last_name, password_hash, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, userID, username+"@example.com", username, "First", "Last", hash, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID
}

// CreateTestToken issues an auth token for a user and returns the
// Authorization header value
func CreateTestToken(t *testing.T, conn *sql.DB, userID string) string {
	t.Helper()

	token, err := auth.GenerateAuthToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	_, err = conn.Exec(`
		INSERT INTO auth_token (token, user_id, created_at) VALUES ($1, $2, $3)
	`, token, userID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test token: %v", err)
	}

	return "Token " + token
}

// CreateTestIngredient inserts an ingredient and returns its ID
func CreateTestIngredient(t *testing.T, conn *sql.DB, title, unit string) string {
	t.Helper()

	id := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO ingredient (id, title, measurement_unit) VALUES ($1, $2, $3)
	`, id, title, unit)
	if err != nil {
		t.Fatalf("Failed to create test ingredient: %v", err)
	}

	return id
}

// CreateTestRecipe inserts a recipe with the given ingredient amounts and
// returns its ID. createdAt orders recipes in list views.
func CreateTestRecipe(t *testing.T, conn *sql.DB, authorID, title string, createdAt time.Time, amounts map[string]string) string {
	t.Helper()

	recipeID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO recipe (id, author_id, title, description, cooking_time, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, recipeID, authorID, title, "Mix and cook.", 10, "users/recipes/"+authorID+"/test.png", createdAt.UTC())
	if err != nil {
		t.Fatalf("Failed to create test recipe: %v", err)
	}

	for ingredientID, amount := range amounts {
		_, err := conn.Exec(`
			INSERT INTO recipe_ingredient (recipe_id, ingredient_id, amount) VALUES ($1, $2, $3)
		`, recipeID, ingredientID, amount)
		if err != nil {
			t.Fatalf("Failed to create test recipe ingredient: %v", err)
		}
	}

	return recipeID
}

// AddToTable links a user and a recipe in "favorite" or "shopping_cart"
func AddToTable(t *testing.T, conn *sql.DB, table, userID, recipeID string) {
	t.Helper()

	_, err := conn.Exec(`INSERT INTO `+table+` (user_id, recipe_id, created_at) VALUES ($1, $2, $3)`,
		userID, recipeID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to insert into %s: %v", table, err)
	}
}

// PNGDataURI returns a small valid PNG as a base64 data URI
func PNGDataURI(t *testing.T) string {
	t.Helper()
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(PNGBytes(t))
}

// PNGBytes returns a 2x2 PNG image
func PNGBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode PNG: %v", err)
	}
	return buf.Bytes()
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
