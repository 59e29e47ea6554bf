// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/danielhkuo/recipe-box/models"
	"github.com/danielhkuo/recipe-box/testutil"
)

func TestIngredients(t *testing.T) {
	testCases := []struct {
		name            string
		input           string
		opts            Options
		expectedCreated int
		expectedSkipped int
	}{
		{
			name:            "csv without header",
			input:           "flour,g\nmilk,ml\n",
			opts:            Options{Format: FormatCSV},
			expectedCreated: 2,
		},
		{
			name:            "csv with header",
			input:           "title,measurement_unit\nflour,g\n",
			opts:            Options{Format: FormatCSV},
			expectedCreated: 1,
		},
		{
			name:            "localized header and semicolons",
			input:           "название;единица\nмука;g\nсоль;g\n",
			opts:            Options{Format: FormatCSV, Delimiter: ';'},
			expectedCreated: 2,
		},
		{
			name:            "repeats and bad rows",
			input:           "flour,g\nFLOUR,kg\nrocks,tons\nlonely\n,g\n",
			opts:            Options{Format: FormatCSV},
			expectedCreated: 1,
			expectedSkipped: 4,
		},
		{
			name:            "extra columns ignored",
			input:           "eggs, pcs, fresh\n",
			opts:            Options{},
			expectedCreated: 1,
		},
		{
			name:            "json",
			input:           `[{"name": "butter", "measurement_unit": "g"}, {"name": "water", "measurement_unit": "l"}]`,
			opts:            Options{Format: FormatJSON},
			expectedCreated: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conn := testutil.SetupTestDB(t)

			res, err := Ingredients(context.Background(), conn, strings.NewReader(tc.input), tc.opts)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if res.Created != tc.expectedCreated || res.Skipped != tc.expectedSkipped {
				t.Errorf("Expected created=%d skipped=%d, got %+v", tc.expectedCreated, tc.expectedSkipped, res)
			}

			var count int
			if err := conn.QueryRow(`SELECT COUNT(*) FROM ingredient`).Scan(&count); err != nil {
				t.Fatal(err)
			}
			if count != tc.expectedCreated {
				t.Errorf("Expected %d rows, got %d", tc.expectedCreated, count)
			}
		})
	}
}

func TestIngredients_SkipsExisting(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	testutil.CreateTestIngredient(t, conn, "Мука", models.UnitGram)
	testutil.CreateTestIngredient(t, conn, "Sugar", models.UnitGram)

	res, err := Ingredients(context.Background(), conn,
		strings.NewReader("мука,kg\nsugar,g\nsalt,g\n"), Options{Format: FormatCSV})
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 1 || res.Skipped != 2 {
		t.Errorf("Expected 1 created and 2 skipped, got %+v", res)
	}
}

func TestIngredients_Errors(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	testCases := []struct {
		name  string
		input string
		opts  Options
	}{
		{"unknown format", "flour,g", Options{Format: "xml"}},
		{"malformed csv", "\"flour,g\n", Options{Format: FormatCSV}},
		{"malformed json", `{"name": "flour"}`, Options{Format: FormatJSON}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Ingredients(context.Background(), conn, strings.NewReader(tc.input), tc.opts)
			if err == nil {
				t.Fatal("Expected an error")
			}
		})
	}

	_, err := Ingredients(context.Background(), conn, strings.NewReader(""), Options{Format: "xml"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ingredient`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Failed imports must not insert, got %d rows", count)
	}
}
