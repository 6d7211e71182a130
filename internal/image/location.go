// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package image

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

// CacheLocation is the directory tree holding cached base images and run
// workspaces. It is passed explicitly so tests can point it at a temporary
// root.
type CacheLocation struct {
	Root string
}

// DefaultCacheLocation returns the per-user cache root.
func DefaultCacheLocation() (CacheLocation, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return CacheLocation{}, err
	}

	return CacheLocation{Root: filepath.Join(base, "redoxer")}, nil
}

// BaseImagePath returns the cache path of the named base image for the
// given backend.
func (c CacheLocation) BaseImagePath(target sys.Target, name string, kind BackendKind) string {
	ext := "bin"
	if kind == BackendArchived {
		ext = "tar"
	}

	return filepath.Join(c.Root, string(target), name+"."+ext)
}

// ManifestPath returns the path of the manifest recorded next to the named
// base image.
func (c CacheLocation) ManifestPath(target sys.Target, name string) string {
	return filepath.Join(c.Root, string(target), name+".toml")
}

// TargetDir returns the per-target cache directory, creating it if needed.
func (c CacheLocation) TargetDir(target sys.Target) (string, error) {
	dir := filepath.Join(c.Root, string(target))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	return dir, nil
}

// NewRunDir creates a fresh workspace directory for a single run.
func (c CacheLocation) NewRunDir() (string, error) {
	dir := filepath.Join(c.Root, "run", fmt.Sprintf("run-%s", uuid.NewString()))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	return dir, nil
}
