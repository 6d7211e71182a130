// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package sys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// Installed reports whether the program can be found in PATH.
func Installed(program string) bool {
	_, err := exec.LookPath(program)
	return err == nil
}

// RequireTools returns an error naming the first of the given programs that
// is not installed.
func RequireTools(programs ...string) error {
	for _, program := range programs {
		if !Installed(program) {
			return fmt.Errorf("%w: %s", ErrToolNotFound, program)
		}
	}

	return nil
}

// Run runs the program with the given arguments and waits for it to
// terminate. Stderr is passed through. A non-zero exit status is returned as
// [CommandError] so build steps can name the tool that failed.
func Run(ctx context.Context, program string, args ...string) error {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stderr = os.Stderr

	slog.Debug("run tool", slog.String("cmd", cmd.String()))

	return CheckStatus(program, cmd.Run())
}

// CheckStatus converts the error returned by [exec.Cmd.Run] into a
// [CommandError] carrying the tool name and its exit status.
func CheckStatus(name string, err error) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &CommandError{Name: name, Status: exitErr.ExitCode()}
	}

	return &CommandError{Name: name, Err: err}
}
