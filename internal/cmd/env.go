// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"gitlab.redox-os.org/redox-os/redoxer/internal/buildenv"
	"gitlab.redox-os.org/redox-os/redoxer/internal/config"
	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

func newEnvCommand(levelVar *slog.LevelVar) *cobra.Command {
	return &cobra.Command{
		Use:   "env [command [args...]]",
		Short: "Print the cross build environment, or run a command in it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(levelVar)
			if err != nil {
				return err
			}

			env, err := newBuildEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				for _, v := range env.Vars() {
					fmt.Fprintln(cmd.OutOrStdout(), v)
				}

				return nil
			}

			return sys.CheckStatus(args[0],
				env.Command(cmd.Context(), args[0], args[1:]...).Run())
		},
	}
}

// newBuildEnv ensures the toolchain and assembles the cross environment,
// with the emulator harness registered as the cargo runner.
func newBuildEnv(ctx context.Context, cfg *config.Config) (*buildenv.Env, error) {
	root, err := cacheRoot(cfg)
	if err != nil {
		return nil, err
	}

	dir, err := newToolchainManager(cfg, root).Ensure(ctx, false)
	if err != nil {
		return nil, err
	}

	return &buildenv.Env{
		Target:       cfg.Target,
		ToolchainDir: dir,
		Runner:       "redoxer exec --folder .",
	}, nil
}
