// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/danielhkuo/recipe-box/imagefield"
)

func TestParsePage(t *testing.T) {
	testCases := []struct {
		query     string
		expected  pageRequest
		expectErr bool
	}{
		{"", pageRequest{page: 1, limit: defaultPageSize}, false},
		{"?page=3&limit=10", pageRequest{page: 3, limit: 10}, false},
		{"?limit=1000", pageRequest{page: 1, limit: maxPageSize}, false},
		{"?limit=abc", pageRequest{page: 1, limit: defaultPageSize}, false},
		{"?limit=0", pageRequest{page: 1, limit: defaultPageSize}, false},
		{"?page=0", pageRequest{}, true},
		{"?page=last", pageRequest{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			got, err := parsePage(httptest.NewRequest("GET", "/api/recipes"+tc.query, nil))
			if tc.expectErr {
				if !errors.Is(err, errInvalidPage) {
					t.Errorf("Expected errInvalidPage, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("Expected %+v, got %+v", tc.expected, got)
			}
		})
	}
}

func TestNewPage(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/recipes?author=x&page=2&limit=2", nil)

	page, err := newPage(r, "http://host", pageRequest{page: 2, limit: 2}, 5, []int{3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if page.Next == nil || *page.Next != "http://host/api/recipes?author=x&limit=2&page=3" {
		t.Errorf("Unexpected next %v", page.Next)
	}
	if page.Previous == nil || *page.Previous != "http://host/api/recipes?author=x&limit=2" {
		t.Errorf("Unexpected previous %v", page.Previous)
	}

	page, err = newPage(r, "http://host", pageRequest{page: 3, limit: 2}, 5, []int{5})
	if err != nil {
		t.Fatal(err)
	}
	if page.Next != nil {
		t.Errorf("Last page should have no next, got %s", *page.Next)
	}

	if _, err := newPage(r, "http://host", pageRequest{page: 4, limit: 2}, 5, []int(nil)); !errors.Is(err, errInvalidPage) {
		t.Errorf("Expected errInvalidPage past the end, got %v", err)
	}

	empty, err := newPage[int](r, "http://host", pageRequest{page: 1, limit: 2}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Results == nil || empty.Next != nil || empty.Previous != nil {
		t.Errorf("Unexpected empty page %+v", empty)
	}
}

func TestAmountError(t *testing.T) {
	testCases := []struct {
		amount string
		valid  bool
	}{
		{"0.01", true},
		{"1", true},
		{"99999.99", true},
		{"0", false},
		{"-5", false},
		{"0.001", false},
		{"1.005", false},
		{"100000", false},
	}

	for _, tc := range testCases {
		t.Run(tc.amount, func(t *testing.T) {
			msg := amountError(decimal.RequireFromString(tc.amount))
			if (msg == "") != tc.valid {
				t.Errorf("amount %s: valid=%v, got message %q", tc.amount, tc.valid, msg)
			}
		})
	}
}

func TestQueryFlag(t *testing.T) {
	for value, expected := range map[string]bool{
		"1": true, "true": true, "True": true,
		"0": false, "false": false, "": false, "yes": false,
	} {
		r := httptest.NewRequest("GET", "/api/recipes?is_favorited="+value, nil)
		if got := queryFlag(r, "is_favorited"); got != expected {
			t.Errorf("queryFlag(%q) = %v, want %v", value, got, expected)
		}
	}
}

func TestRecipesLimit(t *testing.T) {
	for query, expected := range map[string]int{
		"":                  -1,
		"?recipes_limit=3":  3,
		"?recipes_limit=0":  0,
		"?recipes_limit=-2": -1,
		"?recipes_limit=x":  -1,
	} {
		r := httptest.NewRequest("GET", "/api/users/subscriptions"+query, nil)
		if got := recipesLimit(r); got != expected {
			t.Errorf("recipesLimit(%q) = %d, want %d", query, got, expected)
		}
	}
}

func TestImageErrorMessage(t *testing.T) {
	testCases := []struct {
		err      error
		expected string
	}{
		{imagefield.ErrEmptyPayload, "The submitted file is empty."},
		{fmt.Errorf("wrap: %w", imagefield.ErrDecode), "Invalid base64 image data."},
		{imagefield.ErrInvalidInputType, "Expected a base64 encoded image string or a file."},
		{errors.New("other"), "Upload a valid image."},
	}

	for _, tc := range testCases {
		if got := imageErrorMessage(tc.err); got != tc.expected {
			t.Errorf("imageErrorMessage(%v) = %q, want %q", tc.err, got, tc.expected)
		}
	}
}
