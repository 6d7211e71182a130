// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

// Package toolchain downloads and caches the prebuilt cross toolchain for a
// target. Archives are fetched with curl, verified against the published
// SHA256SUM file and unpacked into a per-target cache directory. A build is
// only promoted from its partial directory once fully verified.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

// DefaultURL is the base URL the prebuilt toolchains are published under.
const DefaultURL = "https://static.redox-os.org/toolchain"

const (
	sumFileName   = "SHA256SUM"
	partialSuffix = ".partial"
)

// ErrChecksumMismatch is returned if a downloaded archive does not match
// its published checksum.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// Manager locates, downloads and updates the toolchain for one target.
type Manager struct {
	// Root is the directory toolchains are cached under.
	Root string

	// Target selects the toolchain variant.
	Target sys.Target

	// URL overrides [DefaultURL].
	URL string

	// LocalPath points at a prebuilt local toolchain and skips
	// downloads entirely.
	LocalPath string
}

// Dir returns the directory the target's toolchain lives in.
func (m *Manager) Dir() string {
	if m.LocalPath != "" {
		return m.LocalPath
	}

	return filepath.Join(m.Root, string(m.Target))
}

func (m *Manager) url(name string) string {
	base := m.URL
	if base == "" {
		base = DefaultURL
	}

	return fmt.Sprintf("%s/%s/%s", base, m.Target, name)
}

// Ensure returns the toolchain directory, downloading the toolchain first
// if it is missing. With update set, a fresh copy replaces the cached one.
func (m *Manager) Ensure(ctx context.Context, update bool) (string, error) {
	dir := m.Dir()

	if m.LocalPath != "" {
		if _, err := os.Stat(dir); err != nil {
			return "", fmt.Errorf("local toolchain: %w", err)
		}

		return dir, nil
	}

	if _, err := os.Stat(dir); err == nil && !update {
		return dir, nil
	}

	if err := m.install(ctx, dir); err != nil {
		return "", err
	}

	return dir, nil
}

func (m *Manager) install(ctx context.Context, dir string) error {
	slog.Info("installing toolchain", "target", m.Target, "dir", dir)

	partial := dir + partialSuffix
	if err := os.RemoveAll(partial); err != nil {
		return err
	}

	if err := os.MkdirAll(partial, 0o755); err != nil {
		return err
	}

	if err := m.populate(ctx, partial); err != nil {
		_ = os.RemoveAll(partial)
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return err
	}

	return os.Rename(partial, dir)
}

func (m *Manager) populate(ctx context.Context, dir string) error {
	sumPath := filepath.Join(dir, sumFileName)
	if err := download(ctx, m.url(sumFileName), sumPath); err != nil {
		return err
	}

	sums, err := ReadSumFile(sumPath)
	if err != nil {
		return err
	}

	for _, sum := range sums {
		archive := filepath.Join(dir, sum.Name)

		if err := download(ctx, m.url(sum.Name), archive); err != nil {
			return err
		}

		if err := sum.Verify(archive); err != nil {
			return err
		}

		err := sys.Run(ctx, "tar",
			"--extract", "--file", archive, "--directory", dir)
		if err != nil {
			return err
		}

		if err := os.Remove(archive); err != nil {
			return err
		}
	}

	return nil
}

func download(ctx context.Context, url, dst string) error {
	slog.Debug("downloading", "url", url)

	return sys.Run(ctx, "curl",
		"--silent", "--fail", "--location", "--output", dst, url)
}
