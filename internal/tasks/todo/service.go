// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package todo

import (
	"context"
	"fmt"

	"github.com/taibuivan/taskflow/internal/platform/apperr"
	"github.com/taibuivan/taskflow/internal/platform/validate"
	"github.com/taibuivan/taskflow/pkg/pointer"
	"github.com/taibuivan/taskflow/pkg/text"
	"github.com/taibuivan/taskflow/pkg/uuid"
)

// Service implements todo use cases.
type Service struct {
	repository Repository
	categories CategoryOwnership
}

// NewService constructs a new [Service].
func NewService(repository Repository, categories CategoryOwnership) *Service {
	return &Service{repository: repository, categories: categories}
}

// # Inputs

// SubTaskInput is a sub-task as sent by the client. A missing ID is generated.
type SubTaskInput struct {
	ID          string
	Text        string
	IsCompleted bool
}

// CreateInput holds the fields of a new todo.
type CreateInput struct {
	TaskTitle   string
	CategoryID  string
	SubTasks    []SubTaskInput
	IsCompleted bool
}

// UpdateInput holds the fields to replace. Nil fields keep their value.
type UpdateInput struct {
	TaskTitle   *string
	CategoryID  *string
	SubTasks    *[]SubTaskInput
	IsCompleted *bool
}

// # Use Cases

// List returns the user's todos in display order.
func (service *Service) List(context context.Context, userID string) ([]*Todo, error) {
	return service.repository.List(context, userID)
}

/*
Create validates and persists a new todo at the end of the user's list.

Parameters:
  - context: context.Context
  - userID: string
  - input: CreateInput

Returns:
  - *Todo: Created entity with its category embedded
  - error: Validation, ErrInvalidCategory or storage errors
*/
func (service *Service) Create(context context.Context, userID string, input CreateInput) (*Todo, error) {
	title := text.Clean(input.TaskTitle)
	subTasks, err := normalizeSubTasks(input.SubTasks)
	if err != nil {
		return nil, err
	}

	if err := validateTodo(title, input.CategoryID); err != nil {
		return nil, err
	}
	if err := service.checkCategory(context, userID, input.CategoryID); err != nil {
		return nil, err
	}

	todo := &Todo{
		ID:          uuid.New(),
		UserID:      userID,
		TaskTitle:   title,
		CategoryID:  input.CategoryID,
		SubTask:     subTasks,
		IsCompleted: input.IsCompleted,
	}

	if err := service.repository.Create(context, todo); err != nil {
		return nil, err
	}

	return service.repository.Find(context, userID, todo.ID)
}

/*
Update replaces the given fields of an owned todo.

Parameters:
  - context: context.Context
  - userID: string
  - id: string
  - input: UpdateInput

Returns:
  - *Todo: Updated entity
  - error: ErrTodoNotFound, validation or storage errors
*/
func (service *Service) Update(context context.Context, userID, id string, input UpdateInput) (*Todo, error) {
	if !uuid.IsValid(id) {
		return nil, ErrTodoNotFound
	}

	todo, err := service.repository.Find(context, userID, id)
	if err != nil {
		return nil, err
	}

	if input.TaskTitle != nil {
		todo.TaskTitle = text.Clean(*input.TaskTitle)
	}
	if input.SubTasks != nil {
		if todo.SubTask, err = normalizeSubTasks(*input.SubTasks); err != nil {
			return nil, err
		}
	}
	todo.IsCompleted = pointer.Fallback(input.IsCompleted, todo.IsCompleted)

	categoryID := pointer.Fallback(input.CategoryID, todo.CategoryID)
	if err := validateTodo(todo.TaskTitle, categoryID); err != nil {
		return nil, err
	}
	if categoryID != todo.CategoryID {
		if err := service.checkCategory(context, userID, categoryID); err != nil {
			return nil, err
		}
		todo.CategoryID = categoryID
	}

	if err := service.repository.Update(context, todo); err != nil {
		return nil, err
	}

	return service.repository.Find(context, userID, id)
}

// Delete removes an owned todo.
func (service *Service) Delete(context context.Context, userID, id string) error {
	if !uuid.IsValid(id) {
		return ErrTodoNotFound
	}
	return service.repository.Delete(context, userID, id)
}

/*
Reorder sets each todo's order to its index in ids, atomically.

Returns:
  - []*Todo: The listed todos in their new order
  - error: Validation or storage errors
*/
func (service *Service) Reorder(context context.Context, userID string, ids []string) ([]*Todo, error) {
	validator := &validate.Validator{}
	for _, id := range ids {
		validator.UUID(FieldTasks, id)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repository.Reorder(context, userID, ids); err != nil {
		return nil, err
	}

	todos, err := service.repository.List(context, userID)
	if err != nil {
		return nil, err
	}

	listed := make(map[string]bool, len(ids))
	for _, id := range ids {
		listed[id] = true
	}

	reordered := make([]*Todo, 0, len(ids))
	for _, todo := range todos {
		if listed[todo.ID] {
			reordered = append(reordered, todo)
		}
	}
	return reordered, nil
}

// # Internal Helpers

func validateTodo(title, categoryID string) error {
	validator := &validate.Validator{}
	validator.Required(FieldTaskTitle, title).
		MinLen(FieldTaskTitle, title, MinTitleLength).
		MaxLen(FieldTaskTitle, title, MaxTitleLength).
		Required(FieldCategory, categoryID)
	return validator.Err()
}

func (service *Service) checkCategory(context context.Context, userID, categoryID string) error {
	if !uuid.IsValid(categoryID) {
		return ErrInvalidCategory
	}

	owned, err := service.categories.Owns(context, userID, categoryID)
	if err != nil {
		return apperr.Internal(fmt.Errorf("todo_service_category_lookup_failed: %w", err))
	}
	if !owned {
		return ErrInvalidCategory
	}
	return nil
}

// normalizeSubTasks trims texts and fills in missing ids, keeping order.
func normalizeSubTasks(inputs []SubTaskInput) ([]SubTask, error) {
	subTasks := make([]SubTask, 0, len(inputs))
	validator := &validate.Validator{}

	for _, input := range inputs {
		subTask := SubTask{
			ID:          input.ID,
			Text:        text.Clean(input.Text),
			IsCompleted: input.IsCompleted,
		}
		if subTask.ID == "" {
			subTask.ID = uuid.New()
		}
		validator.Required(FieldSubTask, subTask.Text)
		subTasks = append(subTasks, subTask)
	}

	if validator.HasErrors() {
		return nil, validator.Err()
	}
	return subTasks, nil
}
