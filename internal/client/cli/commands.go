// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/taibuivan/taskflow/internal/client"
	"github.com/taibuivan/taskflow/internal/client/storage"
)

type credentialsCall func(ctx context.Context, email, password string) (*storage.User, error)

func (cli *CLI) runCredentials(ctx context.Context, call credentialsCall, verb string) error {
	email, err := cli.prompt("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := cli.promptPassword()
	if err != nil {
		return err
	}

	user, err := call(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "%s as %s\n", verb, user.Email)
	return nil
}

func (cli *CLI) runLogout(ctx context.Context) error {
	if err := cli.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Logged out")
	return nil
}

func (cli *CLI) runStatus(ctx context.Context) error {
	user, err := cli.auth.Verify(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Logged in as %s (%s)\n", user.Email, user.ID)
	return nil
}

func (cli *CLI) runCategories(ctx context.Context) error {
	categories, err := cli.tasks.Categories(ctx)
	if err != nil {
		return err
	}

	table := tabwriter.NewWriter(cli.out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tNAME\tCOLOR\tTASKS")
	for _, category := range categories {
		fmt.Fprintf(table, "%s\t%s\t%s\t%d\n", category.ID, category.Name, category.Color, category.TaskCount)
	}
	return table.Flush()
}

func (cli *CLI) runTodos(ctx context.Context) error {
	todos, err := cli.tasks.Todos(ctx)
	if err != nil {
		return err
	}
	if len(todos) == 0 {
		fmt.Fprintln(cli.out, "No todos")
		return nil
	}

	table := tabwriter.NewWriter(cli.out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(table, "ID\tDONE\tCATEGORY\tTITLE")
	for _, todo := range todos {
		done := " "
		if todo.IsCompleted {
			done = "x"
		}
		fmt.Fprintf(table, "%s\t[%s]\t%s\t%s\n", todo.ID, done, todo.Category.Name, todo.TaskTitle)
	}
	return table.Flush()
}

func (cli *CLI) runAdd(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: add <category> <title>", ErrUsage)
	}

	categoryID, err := cli.resolveCategory(ctx, args[0])
	if err != nil {
		return err
	}

	todo, err := cli.tasks.AddTodo(ctx, client.NewTodo{
		TaskTitle: strings.Join(args[1:], " "),
		Category:  categoryID,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Added %s to %s\n", todo.ID, todo.Category.Name)
	return nil
}

// resolveCategory accepts a category id or a case-insensitive name.
func (cli *CLI) resolveCategory(ctx context.Context, ref string) (string, error) {
	categories, err := cli.tasks.Categories(ctx)
	if err != nil {
		return "", err
	}

	for _, category := range categories {
		if category.ID == ref || strings.EqualFold(category.Name, ref) {
			return category.ID, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", ref)
}

func (cli *CLI) runDone(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: done <id>", ErrUsage)
	}

	todo, err := cli.tasks.SetCompleted(ctx, args[0], true)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Completed %q\n", todo.TaskTitle)
	return nil
}

func (cli *CLI) runRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: rm <id>", ErrUsage)
	}

	if err := cli.tasks.DeleteTodo(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Deleted")
	return nil
}
