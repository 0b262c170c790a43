// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package text normalizes user-supplied strings before they are validated or stored.
//
// # Usage
//
// Task titles, subtask titles and category names are free-form Unicode input.
// Cleaning them first keeps length checks stable: "é" typed as e + combining
// acute counts the same as the precomposed rune.
package text

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Clean returns s in NFC form with control characters removed and every run
// of whitespace collapsed to a single space.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFC (composes e + combining acute into é).
// 2. Removes control characters (newlines, tabs, NUL).
// 3. Collapses inner whitespace runs and trims both ends.
func Clean(s string) string {
	t := transform.Chain(norm.NFC, transform.RemoveFunc(unicode.IsControl))
	result, _, err := transform.String(t, s)
	if err != nil {
		// Invalid input bytes: fall back to the raw string minus controls.
		result = strings.Map(dropControl, s)
	}

	return strings.Join(strings.Fields(result), " ")
}

// Email normalizes an email address for lookup and storage.
func Email(s string) string {
	return strings.ToLower(Clean(s))
}

func dropControl(r rune) rune {
	if unicode.IsControl(r) {
		return -1
	}
	return r
}
