// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package todo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/taskflow/internal/platform/database/schema"
	"github.com/taibuivan/taskflow/internal/platform/dberr"
	"github.com/taibuivan/taskflow/internal/platform/postgres"
)

// PostgresRepository implements [Repository] on tasks.todos.
type PostgresRepository struct {
	db postgres.TxBeginner
}

// NewPostgresRepository creates a new PostgreSQL implementation of the Repository.
func NewPostgresRepository(db postgres.TxBeginner) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	todoCols     = schema.TaskTodo
	categoryCols = schema.TaskCategory
)

// selectTodos joins every todo with its category summary.
var selectTodos = fmt.Sprintf(`
	SELECT t.%s, t.%s, t.%s, t.%s, t.%s, t.%s, t.%s, t.%s, t.%s, c.%s, c.%s
	FROM %s t
	JOIN %s c ON c.%s = t.%s
	WHERE t.%s = $1`,
	todoCols.ID, todoCols.UserID, todoCols.CategoryID, todoCols.Title, todoCols.SubTasks,
	todoCols.IsCompleted, todoCols.Position, todoCols.CreatedAt, todoCols.UpdatedAt,
	categoryCols.Name, categoryCols.Color,
	todoCols.Table,
	categoryCols.Table, categoryCols.ID, todoCols.CategoryID,
	todoCols.UserID,
)

func scanTodo(row pgx.Row) (*Todo, error) {
	todo := &Todo{Category: &CategoryRef{}}
	err := row.Scan(
		&todo.ID, &todo.UserID, &todo.CategoryID, &todo.TaskTitle, &todo.SubTask,
		&todo.IsCompleted, &todo.Order, &todo.CreatedAt, &todo.UpdatedAt,
		&todo.Category.Name, &todo.Category.Color,
	)
	if err != nil {
		return nil, err
	}

	todo.Category.ID = todo.CategoryID
	if todo.SubTask == nil {
		todo.SubTask = []SubTask{}
	}
	return todo, nil
}

func (repository *PostgresRepository) List(context context.Context, userID string) ([]*Todo, error) {
	query := selectTodos + fmt.Sprintf(" ORDER BY t.%s ASC, t.%s ASC", todoCols.Position, todoCols.CreatedAt)

	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_todo_repo_list_failed")
	}
	defer rows.Close()

	todos := []*Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "postgres_todo_repo_scan_failed")
		}
		todos = append(todos, todo)
	}

	return todos, dberr.Wrap(rows.Err(), "postgres_todo_repo_list_failed")
}

func (repository *PostgresRepository) Find(context context.Context, userID, id string) (*Todo, error) {
	query := selectTodos + fmt.Sprintf(" AND t.%s = $2", todoCols.ID)

	todo, err := scanTodo(repository.db.QueryRow(context, query, userID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, dberr.Wrap(err, "postgres_todo_repo_find_failed")
	}
	return todo, nil
}

func (repository *PostgresRepository) Create(context context.Context, todo *Todo) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		SELECT $1, $2, $3, $4, $5, $6, COALESCE(MAX(%s) + 1, 0), $7, $7
		FROM %s WHERE %s = $2
		RETURNING %s
	`,
		todoCols.Table, todoCols.ID, todoCols.UserID, todoCols.CategoryID, todoCols.Title, todoCols.SubTasks,
		todoCols.IsCompleted, todoCols.Position, todoCols.CreatedAt, todoCols.UpdatedAt,
		todoCols.Position,
		todoCols.Table, todoCols.UserID,
		todoCols.Position,
	)

	now := time.Now()
	todo.CreatedAt, todo.UpdatedAt = now, now

	err := repository.db.QueryRow(context, query,
		todo.ID, todo.UserID, todo.CategoryID, todo.TaskTitle, todo.SubTask, todo.IsCompleted, now,
	).Scan(&todo.Order)
	return dberr.Wrap(err, "postgres_todo_repo_create_failed")
}

func (repository *PostgresRepository) Update(context context.Context, todo *Todo) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = $4, %s = $5, %s = $6, %s = $7
		WHERE %s = $1 AND %s = $2
	`,
		todoCols.Table,
		todoCols.Title, todoCols.CategoryID, todoCols.SubTasks, todoCols.IsCompleted, todoCols.UpdatedAt,
		todoCols.ID, todoCols.UserID,
	)

	todo.UpdatedAt = time.Now()

	tag, err := repository.db.Exec(context, query,
		todo.ID, todo.UserID, todo.TaskTitle, todo.CategoryID, todo.SubTask, todo.IsCompleted, todo.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "postgres_todo_repo_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (repository *PostgresRepository) Delete(context context.Context, userID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, todoCols.Table, todoCols.ID, todoCols.UserID)

	tag, err := repository.db.Exec(context, query, id, userID)
	if err != nil {
		return dberr.Wrap(err, "postgres_todo_repo_delete_failed")
	}
	if tag.RowsAffected() == 0 {
		return ErrTodoNotFound
	}
	return nil
}

func (repository *PostgresRepository) Reorder(context context.Context, userID string, ids []string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $3 WHERE %s = $1 AND %s = $2`,
		todoCols.Table, todoCols.Position, todoCols.ID, todoCols.UserID,
	)

	err := postgres.WithTx(context, repository.db, func(tx postgres.DBTX) error {
		for position, id := range ids {
			if _, err := tx.Exec(context, query, id, userID, position); err != nil {
				return err
			}
		}
		return nil
	})
	return dberr.Wrap(err, "postgres_todo_repo_reorder_failed")
}
