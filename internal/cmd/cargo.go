// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
)

// cargoSubcommands are exposed as first class redoxer commands, so
// "redoxer test" is "cargo test" with the cross environment applied and
// the emulator registered as the test runner.
var cargoSubcommands = []struct {
	name  string
	short string
}{
	{"build", "Cross compile the current crate"},
	{"check", "Type check the current crate for the target"},
	{"clippy", "Lint the current crate for the target"},
	{"doc", "Build the crate documentation for the target"},
	{"bench", "Run benchmarks inside the emulator"},
	{"install", "Install a crate built for the target"},
	{"run", "Run the crate's binary inside the emulator"},
	{"rustc", "Invoke rustc through cargo for the target"},
	{"test", "Run the crate's tests inside the emulator"},
}

func newCargoCommands(levelVar *slog.LevelVar) []*cobra.Command {
	commands := make([]*cobra.Command, 0, len(cargoSubcommands))

	for _, sub := range cargoSubcommands {
		commands = append(commands, newCargoCommand(levelVar, sub.name, sub.short))
	}

	return commands
}

func newCargoCommand(levelVar *slog.LevelVar, name, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " [cargo args...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(levelVar)
			if err != nil {
				return err
			}

			env, err := newBuildEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			return env.Cargo(cmd.Context(), name, args)
		},
	}

	// All flags after the subcommand belong to cargo.
	cmd.DisableFlagParsing = true

	return cmd
}
