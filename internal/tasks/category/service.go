// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/taibuivan/taskflow/internal/platform/validate"
	"github.com/taibuivan/taskflow/pkg/text"
	"github.com/taibuivan/taskflow/pkg/uuid"
)

// Service implements category use cases.
type Service struct {
	repository Repository
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// List returns the user's categories with their task counts.
func (service *Service) List(context context.Context, userID string) ([]*Category, error) {
	return service.repository.List(context, userID)
}

// UpdateInput carries the editable fields of a category.
type UpdateInput struct {
	Name  string
	Color string
}

/*
Update renames and recolors an owned category.

Parameters:
  - context: context.Context
  - userID: string
  - id: string
  - input: UpdateInput

Returns:
  - *Category: Updated entity
  - error: Validation, ErrCategoryNotFound or storage errors
*/
func (service *Service) Update(context context.Context, userID, id string, input UpdateInput) (*Category, error) {
	name := text.Clean(input.Name)
	color := strings.ToLower(strings.TrimSpace(input.Color))

	validator := &validate.Validator{}
	validator.Required(FieldName, name).
		MinLen(FieldName, name, MinNameLength).
		MaxLen(FieldName, name, MaxNameLength).
		Required(FieldColor, color).
		Custom(FieldColor, color != "" && !IsValidColor(color), fmt.Sprintf("%q is not a valid color", color))

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if !uuid.IsValid(id) {
		return nil, ErrCategoryNotFound
	}

	category := &Category{ID: id, UserID: userID, Name: name, Color: color}
	if err := service.repository.Update(context, category); err != nil {
		return nil, err
	}

	return service.find(context, userID, id)
}

/*
Reorder sets each category's order to its index in ids, atomically.

Returns:
  - []*Category: The user's categories in their new order
  - error: Validation or storage errors
*/
func (service *Service) Reorder(context context.Context, userID string, ids []string) ([]*Category, error) {
	validator := &validate.Validator{}
	for _, id := range ids {
		validator.UUID(FieldCategories, id)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.repository.Reorder(context, userID, ids); err != nil {
		return nil, err
	}

	return service.repository.List(context, userID)
}

// SeedDefaults creates the starter categories for a new account. Every
// default is attempted; failures are joined.
func (service *Service) SeedDefaults(context context.Context, userID string) error {
	var errs []error

	for position, seed := range Defaults {
		err := service.repository.Create(context, &Category{
			ID:     uuid.New(),
			UserID: userID,
			Name:   seed.Name,
			Color:  seed.Color,
			Order:  position,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("category_seed_%s_failed: %w", strings.ToLower(seed.Name), err))
		}
	}

	return errors.Join(errs...)
}

// find returns a single owned category with its task count.
func (service *Service) find(context context.Context, userID, id string) (*Category, error) {
	categories, err := service.repository.List(context, userID)
	if err != nil {
		return nil, err
	}
	for _, category := range categories {
		if category.ID == id {
			return category, nil
		}
	}
	return nil, ErrCategoryNotFound
}
