// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package todo

import "context"

// # Todo Data Access

// Repository defines the data access contract for todos. Every operation is
// scoped to one owner.
type Repository interface {

	/*
		List returns the user's todos ordered by position, with their category
		summary embedded.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []*Todo: Ordered todos
		  - error: Database retrieval failures
	*/
	List(context context.Context, userID string) ([]*Todo, error)

	/*
		Find returns a single owned todo.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - id: string

		Returns:
		  - *Todo: Hydrated entity
		  - error: ErrTodoNotFound or database retrieval failures
	*/
	Find(context context.Context, userID, id string) (*Todo, error)

	/*
		Create persists a todo at the end of the user's list.

		Parameters:
		  - context: context.Context
		  - todo: *Todo (Order is assigned)

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, todo *Todo) error

	/*
		Update replaces title, category, sub-tasks and completion of an owned todo.

		Parameters:
		  - context: context.Context
		  - todo: *Todo

		Returns:
		  - error: ErrTodoNotFound or persistence failures
	*/
	Update(context context.Context, todo *Todo) error

	/*
		Delete removes an owned todo.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - id: string

		Returns:
		  - error: ErrTodoNotFound or persistence failures
	*/
	Delete(context context.Context, userID, id string) error

	/*
		Reorder assigns position = index to every listed id in one transaction.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - ids: []string

		Returns:
		  - error: Transaction failures
	*/
	Reorder(context context.Context, userID string, ids []string) error
}

// CategoryOwnership answers whether a category may hold the user's todos.
type CategoryOwnership interface {
	Owns(context context.Context, userID, id string) (bool, error)
}
