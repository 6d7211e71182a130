// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package qemu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

// Emulator exit statuses produced by the guest writing its completion code
// to the debug-exit device. The device reports (value << 1) | 1 as process
// exit status, so the guest writes 51/2 and 53/2 respectively.
const (
	guestSuccessStatus = 51
	guestFailureStatus = 53
)

// Outcome is the harness level interpretation of an emulator run.
type Outcome int

const (
	// OutcomeSuccess means the guest explicitly reported success.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure means the guest explicitly reported failure.
	OutcomeFailure
	// OutcomeIndeterminate means the emulator terminated some other way and
	// no guest verdict is available.
	OutcomeIndeterminate
)

// String implements [fmt.Stringer].
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "indeterminate"
	}
}

// ExitCode returns the process exit code the harness reports for the
// outcome.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeSuccess:
		return 0
	case OutcomeFailure:
		return 1
	default:
		return 2
	}
}

// Result is the reconciled result of a single emulator run.
type Result struct {
	Outcome Outcome

	// QemuStatus is the raw process exit status of the emulator, kept for
	// diagnostics of indeterminate runs.
	QemuStatus int

	// LogPath points at the captured console log.
	LogPath string
}

// Command is a single emulator invocation, ready to run.
type Command struct {
	// Executable is the qemu-system binary.
	Executable string

	// Args is the final, merged argument token list.
	Args []string

	// LogPath is the file the console log chardev writes to.
	LogPath string

	// Stdin, Stdout and Stderr are attached to the emulator process.
	// Stdout and stderr default to the callers streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewCommand builds a [Command] for the given spec with user overrides
// merged into its baseline arguments.
func NewCommand(spec *Spec, overrides []string) *Command {
	executable := spec.Target.QemuExecutable()

	return &Command{
		Executable: executable,
		Args:       MergeArgs(spec.DefaultArgs().Tokens(), overrides),
		LogPath:    spec.LogPath,
	}
}

// Run starts the emulator, blocks until it terminates and maps its exit
// status onto a [Result].
//
// The status mapping is a fixed hardware convention: the guest requests an
// emulator exit with status 51 for success and 53 for failure. Every other
// way the emulator terminates, including a clean shutdown without a guest
// verdict, yields an indeterminate result.
func (c *Command) Run(ctx context.Context) (*Result, error) {
	cmd := exec.CommandContext(ctx, c.Executable, c.Args...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}

	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	slog.Debug("launch emulator", slog.String("cmd", cmd.String()))

	err := cmd.Run()

	var exitErr *exec.ExitError

	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		// Non-zero statuses carry the guest verdict, handled below.
	default:
		return nil, &sys.CommandError{Name: c.Executable, Err: err}
	}

	result := &Result{
		QemuStatus: cmd.ProcessState.ExitCode(),
		LogPath:    c.LogPath,
	}

	switch result.QemuStatus {
	case guestSuccessStatus:
		result.Outcome = OutcomeSuccess
	case guestFailureStatus:
		result.Outcome = OutcomeFailure
	default:
		result.Outcome = OutcomeIndeterminate
	}

	return result, nil
}

// EmitLog delivers the captured console log. It is copied to outputPath if
// given, streamed to fallback otherwise.
func (r *Result) EmitLog(outputPath string, fallback io.Writer) error {
	log, err := os.Open(r.LogPath)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer log.Close()

	dst := fallback

	if outputPath != "" {
		out, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()

		dst = out
	}

	if _, err := io.Copy(dst, log); err != nil {
		return fmt.Errorf("copy log: %w", err)
	}

	return nil
}
