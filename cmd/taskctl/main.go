// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command taskctl is the command-line client of the Taskflow API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taibuivan/taskflow/internal/client"
	"github.com/taibuivan/taskflow/internal/client/cli"
	"github.com/taibuivan/taskflow/internal/client/storage/boltdb"
)

func main() {
	serverURL := flag.String("server", "http://localhost:5000", "Server URL")
	dbPath := flag.String("db", "taskctl.db", "Path to the local session database")
	debug := flag.Bool("debug", false, "Log client events to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, *serverURL, *dbPath, flag.Args(), logger))
}

func run(ctx context.Context, serverURL, dbPath string, args []string, logger *slog.Logger) int {
	store, err := boltdb.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session database: %v\n", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("session_database_close_failed", slog.String("error", err.Error()))
		}
	}()

	gateway, err := client.NewGateway(ctx, client.Config{
		BaseURL:  serverURL,
		Store:    store,
		Logger:   logger,
		OnLogout: func() { fmt.Fprintln(os.Stderr, cli.SessionExpiredNotice) },
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	command := cli.New(client.NewAuth(gateway), client.NewTasks(gateway), os.Stdin, os.Stdout, cli.TerminalPassword)
	if err := command.Run(ctx, args); err != nil {
		if !errors.Is(err, cli.ErrUsage) || len(args) > 1 {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
