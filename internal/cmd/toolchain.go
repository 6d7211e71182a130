// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

func newToolchainCommand(levelVar *slog.LevelVar) *cobra.Command {
	var (
		update bool
		url    string
	)

	cmd := &cobra.Command{
		Use:   "toolchain",
		Short: "Download the cross toolchain and print its location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(levelVar)
			if err != nil {
				return err
			}

			if url != "" {
				cfg.ToolchainURL = url
			}

			root, err := cacheRoot(cfg)
			if err != nil {
				return err
			}

			dir, err := newToolchainManager(cfg, root).Ensure(cmd.Context(), update)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), dir)

			return nil
		},
	}

	cmd.Flags().BoolVar(&update, "update", false,
		"Replace the cached toolchain with a freshly downloaded copy")
	cmd.Flags().StringVar(&url, "url", "",
		"Base URL to download the toolchain from")

	return cmd
}
