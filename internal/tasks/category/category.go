// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package category manages the fixed set of color-coded task buckets each user owns.

Categories are created once, at registration, from [Defaults]. Users may rename,
recolor and reorder them but can neither add nor delete any.
*/
package category

import (
	"net/http"
	"slices"
	"time"

	"github.com/taibuivan/taskflow/internal/platform/apperr"
)

// # Domain Entities

// Category is a named, colored bucket of todos.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Order     int       `json:"order"`
	TaskCount int       `json:"taskCount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Seed is a name/color pair a new account starts with.
type Seed struct {
	Name  string
	Color string
}

// Defaults are the starter categories, in display order.
var Defaults = []Seed{
	{Name: "Personal", Color: "blue"},
	{Name: "Work", Color: "red"},
	{Name: "Shopping", Color: "green"},
	{Name: "Health", Color: "purple"},
	{Name: "Study", Color: "indigo"},
	{Name: "Finance", Color: "emerald"},
}

// Palette lists the accepted color names.
var Palette = []string{
	"red", "blue", "green", "yellow", "purple", "indigo",
	"pink", "orange", "teal", "cyan", "lime", "emerald",
	"violet", "fuchsia", "rose", "sky", "amber", "slate",
}

// IsValidColor reports whether color is part of [Palette].
func IsValidColor(color string) bool {
	return slices.Contains(Palette, color)
}

// # Constraints

const (
	MinNameLength = 2
	MaxNameLength = 30
)

// # Field Identifiers

const (
	FieldName       = "name"
	FieldColor      = "color"
	FieldCategories = "categories"
)

// # Errors

var (
	ErrCategoryNotFound = apperr.New(http.StatusNotFound, "NOT_FOUND", "Category not found or unauthorized")
	ErrCreateForbidden  = apperr.Forbidden("Adding new categories is not allowed.")
	ErrDeleteForbidden  = apperr.Forbidden("Deleting categories is not allowed.")
)
