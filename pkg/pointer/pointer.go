// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer carries optional fields of partial updates.
//
// A nil pointer means "leave unchanged"; [To] builds a set field and
// [Fallback] resolves one against the stored value.
package pointer

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}

// Fallback returns *p, or fallback when p is nil.
func Fallback[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
