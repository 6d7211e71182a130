// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"gitlab.redox-os.org/redox-os/redoxer/internal/image"
)

func newWriteExecCommand(levelVar *slog.LevelVar) *cobra.Command {
	var (
		root    string
		folders []string
	)

	cmd := &cobra.Command{
		Use:   "write-exec <program> [args...]",
		Args:  cobra.MinimumNArgs(1),
		Short: "Write the guest supervisor configuration into a root tree",
		Long: "Writes the program invocation to etc/redoxerd under the given " +
			"root, with host paths under a mapped folder rewritten to their " +
			"guest mount points. Useful when assembling an image by hand.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(levelVar); err != nil {
				return err
			}

			runCfg, err := buildRunConfig(execOptions{folders: folders}, args)
			if err != nil {
				return err
			}

			return image.WriteGuestConfig(root, runCfg)
		},
	}

	cmd.Flags().StringVar(&root, "root", ".",
		"Root of the guest tree to write the configuration into")
	cmd.Flags().StringArrayVarP(&folders, "folder", "f", nil,
		"Host folder mapping used for path rewriting, host[:/guest/path] (repeatable)")

	return cmd
}
