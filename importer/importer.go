// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/danielhkuo/recipe-box/auth"
	"github.com/danielhkuo/recipe-box/models"
)

const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var ErrUnsupportedFormat = errors.New("unsupported import format")

// headerTitles are first-column values that mark a CSV header row.
var headerTitles = map[string]bool{
	"title":    true,
	"name":     true,
	"название": true,
}

type Options struct {
	Format    string
	Delimiter rune
}

type Result struct {
	Created int
	Skipped int
}

type record struct {
	title string
	unit  string
}

// Ingredients reads ingredient records from r and inserts the new ones in a
// single transaction. Titles that already exist (ignoring case), repeats
// within the input and unknown units are counted as skipped.
func Ingredients(ctx context.Context, conn *sql.DB, r io.Reader, opts Options) (Result, error) {
	var records []record
	var res Result
	var err error

	switch opts.Format {
	case FormatCSV, "":
		records, res.Skipped, err = readCSV(r, opts.Delimiter)
	case FormatJSON:
		records, err = readJSON(r)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
	if err != nil {
		return Result{}, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	seen, err := existingTitles(ctx, tx)
	if err != nil {
		return Result{}, err
	}

	for _, rec := range records {
		key := strings.ToLower(rec.title)
		switch {
		case rec.title == "":
			slog.Debug("skipping ingredient without title", "unit", rec.unit)
		case !models.IsValidUnit(rec.unit):
			slog.Debug("skipping ingredient with unknown unit", "title", rec.title, "unit", rec.unit)
		case seen[key]:
			slog.Debug("skipping existing ingredient", "title", rec.title)
		default:
			_, err := tx.ExecContext(ctx, `
				INSERT INTO ingredient (id, title, measurement_unit) VALUES ($1, $2, $3)
			`, auth.NewID(), rec.title, rec.unit)
			if err != nil {
				return Result{}, fmt.Errorf("failed to insert ingredient %q: %w", rec.title, err)
			}
			seen[key] = true
			res.Created++
			continue
		}
		res.Skipped++
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("failed to commit import: %w", err)
	}
	return res, nil
}

// existingTitles lowercases in Go; SQLite's LOWER only folds ASCII.
func existingTitles(ctx context.Context, tx *sql.Tx) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT title FROM ingredient`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan ingredient: %w", err)
		}
		seen[strings.ToLower(title)] = true
	}
	return seen, rows.Err()
}

// readCSV returns the data rows and how many rows were too short to use.
func readCSV(r io.Reader, delimiter rune) ([]record, int, error) {
	cr := csv.NewReader(r)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var records []record
	short := 0
	first := true
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read CSV: %w", err)
		}

		title := strings.TrimSpace(strings.TrimPrefix(row[0], "\ufeff"))
		if first {
			first = false
			if headerTitles[strings.ToLower(title)] {
				continue
			}
		}
		if len(row) < 2 {
			short++
			continue
		}
		records = append(records, record{title: title, unit: strings.TrimSpace(row[1])})
	}
	return records, short, nil
}

func readJSON(r io.Reader) ([]record, error) {
	var items []struct {
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}

	records := make([]record, 0, len(items))
	for _, it := range items {
		records = append(records, record{
			title: strings.TrimSpace(it.Name),
			unit:  strings.TrimSpace(it.MeasurementUnit),
		})
	}
	return records, nil
}
