// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

// Package cmd implements the redoxer command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gitlab.redox-os.org/redox-os/redoxer/internal/config"
)

// Process exit codes. Guest verdicts map to 0, 1 and 2, anything that went
// wrong in the harness itself reports 3 so it is never confused with a
// guest result.
const (
	ExitInternalError = 3
)

// ExitCodeError carries a specific process exit code through cobra.
type ExitCodeError int

// Error implements the [error] interface.
func (e ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", int(e))
}

// Code returns the process exit code.
func (e ExitCodeError) Code() int {
	return int(e)
}

// NewRootCommand assembles the redoxer CLI.
func NewRootCommand(levelVar *slog.LevelVar) *cobra.Command {
	logLevel := "info"

	root := &cobra.Command{
		Use:           "redoxer",
		Short:         "Build for Redox OS and verify the result in an ephemeral VM",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", logLevel,
		"Log verbosity (debug, info, warning, error)")

	root.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		level, err := parseLogLevel(logLevel)
		if err != nil {
			return err
		}

		levelVar.Set(level)

		return nil
	}

	root.AddCommand(newExecCommand(levelVar))
	root.AddCommand(newWriteExecCommand(levelVar))
	root.AddCommand(newEnvCommand(levelVar))
	root.AddCommand(newToolchainCommand(levelVar))
	root.AddCommand(newCargoCommands(levelVar)...)

	return root
}

// loadConfig resolves the configuration and raises the log level for debug
// configs.
func loadConfig(levelVar *slog.LevelVar) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if cfg.Debug && levelVar != nil {
		levelVar.Set(slog.LevelDebug)
	}

	return cfg, nil
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "err":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
}

// cacheRoot resolves the configured cache directory.
func cacheRoot(cfg *config.Config) (string, error) {
	if cfg.CacheDir != "" {
		return cfg.CacheDir, nil
	}

	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(base, "redoxer"), nil
}
