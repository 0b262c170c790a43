// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import "context"

// # Category Data Access

// Repository defines the data access contract for categories.
//
// Every operation is scoped to one owner; a category of another user behaves
// exactly like a missing one.
type Repository interface {

	/*
		List returns the user's categories ordered by position, each carrying
		the number of todos filed under it.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []*Category: Ordered categories
		  - error: Database retrieval failures
	*/
	List(context context.Context, userID string) ([]*Category, error)

	/*
		Create persists a single category.

		Parameters:
		  - context: context.Context
		  - category: *Category

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, category *Category) error

	/*
		Update replaces name and color of an owned category.

		Parameters:
		  - context: context.Context
		  - category: *Category (ID and UserID identify the row)

		Returns:
		  - error: ErrCategoryNotFound or persistence failures
	*/
	Update(context context.Context, category *Category) error

	/*
		Reorder assigns position = index to every listed id in one transaction.
		Ids the user does not own are skipped.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - ids: []string

		Returns:
		  - error: Transaction failures
	*/
	Reorder(context context.Context, userID string, ids []string) error

	/*
		Owns reports whether the category exists and belongs to the user.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - id: string

		Returns:
		  - bool: Ownership
		  - error: Database retrieval failures
	*/
	Owns(context context.Context, userID, id string) (bool, error)
}
