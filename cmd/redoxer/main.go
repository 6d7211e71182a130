// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gitlab.redox-os.org/redox-os/redoxer/internal/cmd"
)

func main() {
	var levelVar slog.LevelVar
	levelVar.Set(slog.LevelInfo)

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: &levelVar})))

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cmd.NewRootCommand(&levelVar)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return
	}

	// Guest verdicts carry their own exit code, everything else is a
	// harness fault.
	var exitCode cmd.ExitCodeError
	if errors.As(err, &exitCode) {
		os.Exit(exitCode.Code())
	}

	slog.Error("redoxer failed", "error", err)
	os.Exit(cmd.ExitInternalError)
}
