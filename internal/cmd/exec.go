// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gitlab.redox-os.org/redox-os/redoxer/internal/config"
	"gitlab.redox-os.org/redox-os/redoxer/internal/image"
	"gitlab.redox-os.org/redox-os/redoxer/internal/qemu"
	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
	"gitlab.redox-os.org/redox-os/redoxer/internal/toolchain"
)

type execOptions struct {
	folders   []string
	artifacts []string
	gui       bool
	output    string
}

func newExecCommand(levelVar *slog.LevelVar) *cobra.Command {
	var opts execOptions

	cmd := &cobra.Command{
		Use:   "exec <program> [args...]",
		Args:  cobra.MinimumNArgs(1),
		Short: "Run a program inside an ephemeral Redox VM",
		Long: "Boots a disposable VM from the cached base image, runs the " +
			"program under the guest supervisor and reports its verdict: " +
			"exit code 0 on success, 1 on failure, 2 if the VM terminated " +
			"without a verdict.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(levelVar)
			if err != nil {
				return err
			}

			result, err := runExec(cmd.Context(), cfg, opts, args)
			if err != nil {
				return err
			}

			if code := result.Outcome.ExitCode(); code != 0 {
				return ExitCodeError(code)
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&opts.folders, "folder", "f", nil,
		"Host folder to copy into the guest, host[:/guest/path], /root by default (repeatable)")
	cmd.Flags().StringArrayVar(&opts.artifacts, "artifact", nil,
		"Guest folder to copy back out after a successful run, host[:/guest/path] (repeatable)")
	cmd.Flags().BoolVarP(&opts.gui, "gui", "g", false,
		"Show the emulator display instead of running headless")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "",
		"Write the captured console log to this file instead of stdout")

	return cmd
}

func runExec(ctx context.Context, cfg *config.Config, opts execOptions, args []string) (*qemu.Result, error) {
	runCfg, err := buildRunConfig(opts, args)
	if err != nil {
		return nil, err
	}

	builder, err := newBuilder(ctx, cfg)
	if err != nil {
		return nil, err
	}

	base, err := builder.EnsureBase(ctx, image.DefaultManifest())
	if err != nil {
		return nil, err
	}

	run, err := builder.MaterializeRun(ctx, base, runCfg)
	if err != nil {
		return nil, err
	}
	defer run.Close()

	spec := &qemu.Spec{
		Target:    cfg.Target,
		ImagePath: run.DiskPath,
		LogPath:   run.LogPath(),
		GUI:       opts.gui,
		KVM:       sys.KVMAvailableFor(cfg.Target),
	}

	command := qemu.NewCommand(spec, cfg.QemuArgs)
	command.Executable = cfg.Qemu()

	result, err := command.Run(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("emulator terminated",
		"outcome", result.Outcome, "status", result.QemuStatus)

	if err := result.EmitLog(opts.output, os.Stdout); err != nil {
		return nil, err
	}

	if result.Outcome == qemu.OutcomeSuccess {
		if err := builder.ExtractArtifacts(ctx, run, runCfg); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func buildRunConfig(opts execOptions, args []string) (*image.RunConfig, error) {
	runCfg := &image.RunConfig{Args: args}

	for _, spec := range opts.folders {
		mapping, err := image.ParseFolderMapping(spec)
		if err != nil {
			return nil, err
		}

		runCfg.Folders = append(runCfg.Folders, mapping)
	}

	for _, spec := range opts.artifacts {
		mapping, err := image.ParseFolderMapping(spec)
		if err != nil {
			return nil, err
		}

		runCfg.Artifacts = append(runCfg.Artifacts, mapping)
	}

	return runCfg, runCfg.Validate()
}

// newBuilder wires the image builder for the configured target: cache
// location, backend, installer and the bootloader from the toolchain.
func newBuilder(ctx context.Context, cfg *config.Config) (*image.Builder, error) {
	root, err := cacheRoot(cfg)
	if err != nil {
		return nil, err
	}

	tcDir, err := newToolchainManager(cfg, root).Ensure(ctx, false)
	if err != nil {
		return nil, err
	}

	backend := image.BackendArchived
	if cfg.UseFuse() {
		backend = image.BackendMounted
	}

	builder := &image.Builder{
		Cache:          image.CacheLocation{Root: root},
		Target:         cfg.Target,
		Backend:        backend,
		BootloaderPath: filepath.Join(tcDir, "boot", "bootloader.bin"),
	}

	if sys.Installed("redox_installer") {
		builder.Installer = image.ExecInstaller{}
	}

	return builder, nil
}

func newToolchainManager(cfg *config.Config, cacheRoot string) *toolchain.Manager {
	return &toolchain.Manager{
		Root:      filepath.Join(cacheRoot, "toolchain"),
		Target:    cfg.Target,
		URL:       cfg.ToolchainURL,
		LocalPath: cfg.LocalToolchain,
	}
}
