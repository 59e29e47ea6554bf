// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package shoppinglist

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyCart means the user has nothing in the cart. It is a normal
	// outcome, not a fault.
	ErrEmptyCart = errors.New("shopping cart is empty")

	// ErrStorageUnavailable wraps any failure of the Source.
	ErrStorageUnavailable = errors.New("shopping cart storage unavailable")
)

// Item is one ingredient line of one recipe in the cart.
type Item struct {
	Title  string
	Unit   string
	Amount decimal.Decimal
}

// Cart is what a Source returns for a user: how many recipes are in the
// cart and every ingredient line across them.
type Cart struct {
	Recipes int
	Items   []Item
}

// Source reads a user's cart. Implementations only read.
type Source interface {
	LoadCart(ctx context.Context, userID string) (Cart, error)
}

// Line is the summed amount for one (title, unit) group.
type Line struct {
	Title string
	Unit  string
	Total decimal.Decimal
}

type List struct {
	Lines []Line
}

// String renders one "<title> (<unit>) — <total>" line per group, each
// followed by a newline.
func (l List) String() string {
	var b strings.Builder
	for _, line := range l.Lines {
		fmt.Fprintf(&b, "%s (%s) — %s\n", line.Title, line.Unit, line.Total.StringFixed(2))
	}
	return b.String()
}

type groupKey struct {
	title string
	unit  string
}

// Aggregate sums amounts per (title, unit) and sorts the groups by title,
// then unit.
func Aggregate(items []Item) List {
	totals := make(map[groupKey]decimal.Decimal, len(items))
	for _, it := range items {
		key := groupKey{title: it.Title, unit: it.Unit}
		totals[key] = totals[key].Add(it.Amount)
	}

	lines := make([]Line, 0, len(totals))
	for key, total := range totals {
		lines = append(lines, Line{Title: key.title, Unit: key.unit, Total: total})
	}
	slices.SortFunc(lines, func(a, b Line) int {
		return cmp.Or(strings.Compare(a.Title, b.Title), strings.Compare(a.Unit, b.Unit))
	})

	return List{Lines: lines}
}

type Builder struct {
	src Source
}

func NewBuilder(src Source) *Builder {
	return &Builder{src: src}
}

// Build loads the user's cart and aggregates it. It returns ErrEmptyCart
// when the cart has no recipes and an error matching ErrStorageUnavailable
// when the Source fails.
func (b *Builder) Build(ctx context.Context, userID string) (List, error) {
	cart, err := b.src.LoadCart(ctx, userID)
	if err != nil {
		return List{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	if cart.Recipes == 0 {
		return List{}, ErrEmptyCart
	}
	return Aggregate(cart.Items), nil
}
