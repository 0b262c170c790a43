// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package text_test

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/taskflow/pkg/text"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Buy milk", "Buy milk"},
		{"trims", "  Buy milk \t", "Buy milk"},
		{"strips_controls", "Buy\x00 milk\n", "Buy milk"},
		{"collapses_inner_spaces", "Buy   milk\u00a0 now", "Buy milk now"},
		{"composes_accents", "Café", "Café"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, text.Clean(tt.input))
		})
	}
}

func TestClean_StableRuneCount(t *testing.T) {
	decomposed := "éé"
	assert.Equal(t, 2, utf8.RuneCountInString(text.Clean(decomposed)))
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "user@example.com", text.Email("  User@Example.COM "))
}
