// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package shoppinglist

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Filename returns the attachment name for a user's shopping list.
func Filename(username string) string {
	slug := Slugify(username)
	if slug == "" {
		slug = "user"
	}
	return "shopping_list_" + slug + ".txt"
}

// Slugify keeps ASCII letters, digits, underscores and hyphens, lowercases
// them, and turns runs of whitespace or hyphens into a single hyphen.
// Accented letters lose their accents; other characters are dropped.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false

	for _, r := range norm.NFKD.String(s) {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsSpace(r) || r == '-':
			pendingDash = b.Len() > 0
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingDash {
				b.WriteByte('-')
				pendingDash = false
			}
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
