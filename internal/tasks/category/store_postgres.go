// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/taskflow/internal/platform/database/schema"
	"github.com/taibuivan/taskflow/internal/platform/dberr"
	"github.com/taibuivan/taskflow/internal/platform/postgres"
)

// PostgresRepository implements [Repository] on tasks.categories.
type PostgresRepository struct {
	db postgres.TxBeginner
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(db postgres.TxBeginner) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	categoryCols = schema.TaskCategory
	todoCols     = schema.TaskTodo
)

func (repository *PostgresRepository) List(context context.Context, userID string) ([]*Category, error) {
	query := fmt.Sprintf(`
		SELECT c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, COUNT(t.%s)
		FROM %s c
		LEFT JOIN %s t ON t.%s = c.%s AND t.%s = c.%s
		WHERE c.%s = $1
		GROUP BY c.%s
		ORDER BY c.%s ASC, c.%s ASC
	`,
		categoryCols.ID, categoryCols.UserID, categoryCols.Name, categoryCols.Color, categoryCols.Position, categoryCols.CreatedAt, categoryCols.UpdatedAt, todoCols.ID,
		categoryCols.Table,
		todoCols.Table, todoCols.CategoryID, categoryCols.ID, todoCols.UserID, categoryCols.UserID,
		categoryCols.UserID,
		categoryCols.ID,
		categoryCols.Position, categoryCols.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_category_repo_list_failed")
	}
	defer rows.Close()

	categories := []*Category{}
	for rows.Next() {
		category := &Category{}
		if err := rows.Scan(
			&category.ID, &category.UserID, &category.Name, &category.Color,
			&category.Order, &category.CreatedAt, &category.UpdatedAt, &category.TaskCount,
		); err != nil {
			return nil, dberr.Wrap(err, "postgres_category_repo_scan_failed")
		}
		categories = append(categories, category)
	}

	return categories, dberr.Wrap(rows.Err(), "postgres_category_repo_list_failed")
}

func (repository *PostgresRepository) Create(context context.Context, category *Category) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`,
		categoryCols.Table, categoryCols.ID, categoryCols.UserID, categoryCols.Name, categoryCols.Color, categoryCols.Position, categoryCols.CreatedAt, categoryCols.UpdatedAt,
	)

	now := time.Now()
	category.CreatedAt, category.UpdatedAt = now, now

	_, err := repository.db.Exec(context, query,
		category.ID, category.UserID, category.Name, category.Color, category.Order, now,
	)
	return dberr.Wrap(err, "postgres_category_repo_create_failed")
}

func (repository *PostgresRepository) Update(context context.Context, category *Category) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = $4, %s = $5
		WHERE %s = $1 AND %s = $2
	`,
		categoryCols.Table, categoryCols.Name, categoryCols.Color, categoryCols.UpdatedAt, categoryCols.ID, categoryCols.UserID,
	)

	category.UpdatedAt = time.Now()

	tag, err := repository.db.Exec(context, query,
		category.ID, category.UserID, category.Name, category.Color, category.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "postgres_category_repo_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (repository *PostgresRepository) Reorder(context context.Context, userID string, ids []string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $3 WHERE %s = $1 AND %s = $2`,
		categoryCols.Table, categoryCols.Position, categoryCols.ID, categoryCols.UserID,
	)

	err := postgres.WithTx(context, repository.db, func(tx postgres.DBTX) error {
		for position, id := range ids {
			if _, err := tx.Exec(context, query, id, userID, position); err != nil {
				return err
			}
		}
		return nil
	})
	return dberr.Wrap(err, "postgres_category_repo_reorder_failed")
}

func (repository *PostgresRepository) Owns(context context.Context, userID, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
		categoryCols.Table, categoryCols.ID, categoryCols.UserID,
	)

	var exists bool
	if err := repository.db.QueryRow(context, query, id, userID).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "postgres_category_repo_owns_failed")
	}
	return exists, nil
}
