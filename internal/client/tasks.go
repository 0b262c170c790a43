// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/taibuivan/taskflow/pkg/pointer"
)

// Category is a category as listed by the server.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Order     int    `json:"order"`
	TaskCount int    `json:"taskCount"`
}

// SubTask is a checklist item of a [Todo].
type SubTask struct {
	ID          string `json:"id,omitempty"`
	Text        string `json:"text"`
	IsCompleted bool   `json:"isCompleted"`
}

// Todo is a todo as returned by the server.
type Todo struct {
	ID          string    `json:"id"`
	TaskTitle   string    `json:"taskTitle"`
	Category    Category  `json:"category"`
	SubTask     []SubTask `json:"subTask"`
	IsCompleted bool      `json:"isCompleted"`
	Order       int       `json:"order"`
}

// NewTodo is the payload of [Tasks.AddTodo].
type NewTodo struct {
	TaskTitle   string    `json:"taskTitle"`
	Category    string    `json:"category"`
	SubTask     []SubTask `json:"subTask"`
	IsCompleted bool      `json:"isCompleted"`
}

// TodoPatch is the payload of a partial todo update. Nil fields are left
// unchanged by the server.
type TodoPatch struct {
	TaskTitle   *string    `json:"taskTitle,omitempty"`
	Category    *string    `json:"category,omitempty"`
	SubTask     *[]SubTask `json:"subTask,omitempty"`
	IsCompleted *bool      `json:"isCompleted,omitempty"`
}

// Tasks wraps the /api/categories and /api/todos endpoints.
type Tasks struct {
	gateway *Gateway
}

// NewTasks creates the task API bound to gateway.
func NewTasks(gateway *Gateway) *Tasks {
	return &Tasks{gateway: gateway}
}

func (tasks *Tasks) Categories(context context.Context) ([]Category, error) {
	var categories []Category
	err := tasks.gateway.Do(context, http.MethodGet, "/api/categories", nil, &categories)
	return categories, err
}

func (tasks *Tasks) Todos(context context.Context) ([]Todo, error) {
	var todos []Todo
	err := tasks.gateway.Do(context, http.MethodGet, "/api/todos", nil, &todos)
	return todos, err
}

func (tasks *Tasks) AddTodo(context context.Context, todo NewTodo) (*Todo, error) {
	if todo.SubTask == nil {
		todo.SubTask = []SubTask{}
	}

	created := &Todo{}
	if err := tasks.gateway.Do(context, http.MethodPost, "/api/todos", todo, created); err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTodo sends a partial update of a todo.
func (tasks *Tasks) UpdateTodo(context context.Context, id string, patch TodoPatch) (*Todo, error) {
	updated := &Todo{}
	if err := tasks.gateway.Do(context, http.MethodPut, "/api/todos/"+url.PathEscape(id), patch, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// SetCompleted flips only the completion flag of a todo.
func (tasks *Tasks) SetCompleted(context context.Context, id string, completed bool) (*Todo, error) {
	return tasks.UpdateTodo(context, id, TodoPatch{IsCompleted: pointer.To(completed)})
}

func (tasks *Tasks) DeleteTodo(context context.Context, id string) error {
	return tasks.gateway.Do(context, http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, nil)
}
