// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package toolchain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

func TestParseSumFile(t *testing.T) {
	hash := strings.Repeat("ab", sha256.Size)

	sums, err := ParseSumFile(strings.NewReader(
		hash + "  relibc-install.tar.gz\n\n" + hash + "  rust-install.tar.gz\n"))
	require.NoError(t, err)

	require.Len(t, sums, 2)
	assert.Equal(t, Sum{Hash: hash, Name: "relibc-install.tar.gz"}, sums[0])
	assert.Equal(t, Sum{Hash: hash, Name: "rust-install.tar.gz"}, sums[1])

	_, err = ParseSumFile(strings.NewReader("nonsense\n"))
	require.Error(t, err)
}

func TestSumVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	digest := sha256.Sum256([]byte("payload"))
	good := Sum{Hash: hex.EncodeToString(digest[:]), Name: "archive"}
	require.NoError(t, good.Verify(path))

	bad := Sum{Hash: strings.Repeat("00", sha256.Size), Name: "archive"}
	require.ErrorIs(t, bad.Verify(path), ErrChecksumMismatch)
}

func TestEnsureUsesCachedDir(t *testing.T) {
	root := t.TempDir()
	manager := &Manager{Root: root, Target: sys.X8664}

	require.NoError(t, os.MkdirAll(manager.Dir(), 0o755))

	dir, err := manager.Ensure(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, manager.Dir(), dir)
}

func TestEnsureLocalPath(t *testing.T) {
	local := t.TempDir()
	manager := &Manager{Target: sys.X8664, LocalPath: local}

	dir, err := manager.Ensure(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, local, dir)

	manager.LocalPath = filepath.Join(local, "missing")
	_, err = manager.Ensure(context.Background(), false)
	require.Error(t, err)
}

func TestEnsureDownloadsAndVerifies(t *testing.T) {
	if !sys.Installed("curl") || !sys.Installed("tar") {
		t.Skip("curl or tar not installed")
	}

	// Publish a toolchain under a file:// URL.
	publish := t.TempDir()
	targetDir := filepath.Join(publish, string(sys.X8664))
	require.NoError(t, os.MkdirAll(targetDir, 0o755))

	payload := filepath.Join(t.TempDir(), "install")
	require.NoError(t, os.MkdirAll(filepath.Join(payload, "bin"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(payload, "bin", "cc"), []byte("#!/bin/sh\n"), 0o755))

	archive := filepath.Join(targetDir, "install.tar.gz")
	require.NoError(t, sys.Run(context.Background(), "tar",
		"--create", "--gzip", "--file", archive, "--directory", payload, "."))

	data, err := os.ReadFile(archive)
	require.NoError(t, err)
	digest := sha256.Sum256(data)

	require.NoError(t, os.WriteFile(
		filepath.Join(targetDir, "SHA256SUM"),
		fmt.Appendf(nil, "%s  install.tar.gz\n", hex.EncodeToString(digest[:])),
		0o644))

	manager := &Manager{
		Root:   t.TempDir(),
		Target: sys.X8664,
		URL:    "file://" + publish,
	}

	dir, err := manager.Ensure(context.Background(), false)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "bin", "cc"))
	assert.NoFileExists(t, filepath.Join(dir, "install.tar.gz"))
	assert.NoDirExists(t, dir+partialSuffix)
}

func TestEnsureRejectsCorruptArchive(t *testing.T) {
	if !sys.Installed("curl") {
		t.Skip("curl not installed")
	}

	publish := t.TempDir()
	targetDir := filepath.Join(publish, string(sys.X8664))
	require.NoError(t, os.MkdirAll(targetDir, 0o755))

	require.NoError(t, os.WriteFile(
		filepath.Join(targetDir, "install.tar.gz"), []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(targetDir, "SHA256SUM"),
		fmt.Appendf(nil, "%s  install.tar.gz\n", strings.Repeat("00", sha256.Size)),
		0o644))

	manager := &Manager{
		Root:   t.TempDir(),
		Target: sys.X8664,
		URL:    "file://" + publish,
	}

	_, err := manager.Ensure(context.Background(), false)
	require.ErrorIs(t, err, ErrChecksumMismatch)
	assert.NoDirExists(t, manager.Dir())
	assert.NoDirExists(t, manager.Dir()+partialSuffix)
}
