// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

// Package buildenv assembles the environment cross builds need: the
// toolchain on PATH and the per-target compiler, linker and runner
// variables cargo and the cc tooling look for.
package buildenv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

// cargoBuildCommands are the cargo subcommands that take a --target flag.
var cargoBuildCommands = []string{
	"bench", "build", "check", "clippy", "doc", "install",
	"run", "rustc", "rustdoc", "test",
}

// Env describes the cross build environment for one target.
type Env struct {
	Target       sys.Target
	ToolchainDir string

	// Runner is set as the cargo runner for the target, typically an
	// invocation that executes the binary inside the emulator.
	Runner string
}

// Vars returns the environment additions as KEY=VALUE pairs. PATH is
// returned with the toolchain's bin directory prepended.
func (e *Env) Vars() []string {
	prefix := e.Target.GNUPrefix()
	key := e.Target.EnvKey()
	upperKey := strings.ToUpper(key)

	vars := []string{
		"PATH=" + prependPath(filepath.Join(e.ToolchainDir, "bin")),
		"TARGET=" + e.Target.String(),
		fmt.Sprintf("AR_%s=%sar", key, prefix),
		fmt.Sprintf("CC_%s=%sgcc", key, prefix),
		fmt.Sprintf("CXX_%s=%sg++", key, prefix),
		fmt.Sprintf("RANLIB_%s=%sranlib", key, prefix),
		fmt.Sprintf("CARGO_TARGET_%s_LINKER=%sgcc", upperKey, prefix),
	}

	if e.Runner != "" {
		vars = append(vars,
			fmt.Sprintf("CARGO_TARGET_%s_RUNNER=%s", upperKey, e.Runner))
	}

	return append(vars, "CARGO_ENCODED_RUSTFLAGS="+e.rustFlags())
}

// rustFlags builds the encoded flag string pointing the linker at the
// toolchain's target libraries, keeping any RUSTFLAGS the caller set. The
// encoded form separates flags with 0x1f so values may contain spaces.
func (e *Env) rustFlags() string {
	const sep = "\x1f"

	flags := "-L" + sep + "native=" +
		filepath.Join(e.ToolchainDir, e.Target.String(), "lib")

	if user := os.Getenv("RUSTFLAGS"); user != "" {
		flags += sep + strings.ReplaceAll(user, " ", sep)
	}

	return flags
}

// Command builds a command with the cross environment applied on top of the
// caller's environment.
func (e *Env) Command(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), e.Vars()...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd
}

// CargoArgs builds the argument vector for a cargo subcommand, injecting
// the target triple for subcommands that build.
func (e *Env) CargoArgs(subcommand string, args []string) []string {
	out := []string{subcommand}

	if slices.Contains(cargoBuildCommands, subcommand) {
		out = append(out, "--target", e.Target.String())
	}

	return append(out, args...)
}

// Cargo runs a cargo subcommand in the cross environment, inheriting the
// caller's standard streams.
func (e *Env) Cargo(ctx context.Context, subcommand string, args []string) error {
	cmd := e.Command(ctx, "cargo", e.CargoArgs(subcommand, args)...)

	return sys.CheckStatus("cargo", cmd.Run())
}

func prependPath(dir string) string {
	path := os.Getenv("PATH")
	if path == "" {
		return dir
	}

	return dir + string(os.PathListSeparator) + path
}
