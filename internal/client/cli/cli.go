// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli implements the taskctl commands on top of the client package.

Usage:

	taskctl [-server URL] [-db PATH] COMMAND [ARGS]
*/
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/taibuivan/taskflow/internal/client"
)

// SessionExpiredNotice is printed when a refresh fails and the session is gone.
const SessionExpiredNotice = "Session expired, please log in: taskctl login"

// ErrUsage is returned for unknown commands or missing arguments.
var ErrUsage = errors.New("invalid usage")

// PasswordReader reads a password without echo.
type PasswordReader func() (string, error)

// TerminalPassword reads from the controlling terminal via x/term.
func TerminalPassword() (string, error) {
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(password), nil
}

// CLI dispatches taskctl commands.
type CLI struct {
	auth         *client.Auth
	tasks        *client.Tasks
	in           *bufio.Reader
	out          io.Writer
	readPassword PasswordReader
}

// New creates a CLI writing to out and prompting on in.
func New(auth *client.Auth, tasks *client.Tasks, in io.Reader, out io.Writer, readPassword PasswordReader) *CLI {
	if readPassword == nil {
		readPassword = TerminalPassword
	}
	return &CLI{
		auth:         auth,
		tasks:        tasks,
		in:           bufio.NewReader(in),
		out:          out,
		readPassword: readPassword,
	}
}

// Run executes one command.
func (cli *CLI) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.PrintUsage()
		return ErrUsage
	}

	command, rest := args[0], args[1:]
	var err error

	switch command {
	case "register":
		err = cli.runCredentials(ctx, cli.auth.Register, "Registered")
	case "login":
		err = cli.runCredentials(ctx, cli.auth.Login, "Logged in")
	case "logout":
		err = cli.runLogout(ctx)
	case "status":
		err = cli.runStatus(ctx)
	case "categories":
		err = cli.runCategories(ctx)
	case "todos":
		err = cli.runTodos(ctx)
	case "add":
		err = cli.runAdd(ctx, rest)
	case "done":
		err = cli.runDone(ctx, rest)
	case "rm":
		err = cli.runRemove(ctx, rest)
	case "help":
		cli.PrintUsage()
	default:
		fmt.Fprintf(cli.out, "Unknown command: %s\n", command)
		cli.PrintUsage()
		return ErrUsage
	}

	if errors.Is(err, client.ErrSessionExpired) || errors.Is(err, client.ErrNotAuthenticated) {
		fmt.Fprintln(cli.out, "Not logged in. Run 'taskctl login' first.")
	}
	return err
}

// PrintUsage writes the command summary.
func (cli *CLI) PrintUsage() {
	fmt.Fprint(cli.out, `Taskflow command-line client

Usage:
  taskctl [-server URL] [-db PATH] COMMAND [ARGS]

Commands:
  register                 Create an account
  login                    Log in
  logout                   Log out and forget the local session
  status                   Show the logged-in user
  categories               List categories with their task counts
  todos                    List todos
  add <category> <title>   Add a todo to a category (name or id)
  done <id>                Mark a todo as completed
  rm <id>                  Delete a todo
`)
}

// # Prompts

func (cli *CLI) prompt(label string) (string, error) {
	fmt.Fprint(cli.out, label)
	line, err := cli.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (cli *CLI) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Password: ")
	password, err := cli.readPassword()
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	return password, nil
}
