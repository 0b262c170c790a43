// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package todo manages a user's tasks, their ordered sub-tasks and their manual
sequence.

A todo always belongs to exactly one category of the same user. Sub-tasks are
stored inline with their todo and keep the order in which the client sent them.
*/
package todo

import (
	"net/http"
	"time"

	"github.com/taibuivan/taskflow/internal/platform/apperr"
)

// # Domain Entities

// Todo is a single task.
type Todo struct {
	ID          string       `json:"id"`
	UserID      string       `json:"-"`
	TaskTitle   string       `json:"taskTitle"`
	CategoryID  string       `json:"-"`
	Category    *CategoryRef `json:"category"`
	SubTask     []SubTask    `json:"subTask"`
	IsCompleted bool         `json:"isCompleted"`
	Order       int          `json:"order"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// CategoryRef is the category summary embedded in a todo.
type CategoryRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// SubTask is a checklist item of a todo.
type SubTask struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
}

// # Constraints

const (
	MinTitleLength = 1
	MaxTitleLength = 100
)

// # Field Identifiers

const (
	FieldTaskTitle = "taskTitle"
	FieldCategory  = "category"
	FieldSubTask   = "subTask"
	FieldTasks     = "tasks"
)

// # Errors

var (
	ErrTodoNotFound    = apperr.New(http.StatusNotFound, "NOT_FOUND", "Todo not found")
	ErrInvalidCategory = apperr.ValidationError("Invalid category reference",
		apperr.FieldError{Field: FieldCategory, Message: "Category not found"})
)

const messageDeleted = "Todo deleted successfully"
