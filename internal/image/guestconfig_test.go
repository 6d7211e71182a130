// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package image

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteArgs(t *testing.T) {
	proj := filepath.Join(t.TempDir(), "proj")
	require.NoError(t, os.MkdirAll(filepath.Join(proj, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(proj, "bin", "app"), []byte("x"), 0o755))

	folders := []FolderMapping{{Host: proj, Guest: "/root"}}

	args, err := RewriteArgs([]string{
		filepath.Join(proj, "bin", "app"),
		proj,
		"--flag",
		"/nonexistent/path",
	}, folders)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/root/bin/app",
		"/root",
		"--flag",
		"/nonexistent/path",
	}, args)
}

func TestRewriteArgsNonexistentUnderFolder(t *testing.T) {
	proj := filepath.Join(t.TempDir(), "proj")
	require.NoError(t, os.MkdirAll(proj, 0o755))

	folders := []FolderMapping{{Host: proj, Guest: "/root"}}

	args, err := RewriteArgs([]string{
		filepath.Join(proj, "out", "result.txt"),
		"out/result.txt",
	}, folders)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"/root/out/result.txt",
		"out/result.txt",
	}, args)
}

func TestRewriteArgsOutsideFolderUntouched(t *testing.T) {
	dir := t.TempDir()
	outside := filepath.Join(dir, "other")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	proj := filepath.Join(dir, "proj")
	require.NoError(t, os.MkdirAll(proj, 0o755))

	args, err := RewriteArgs([]string{outside}, []FolderMapping{{Host: proj, Guest: "/root"}})
	require.NoError(t, err)

	assert.Equal(t, []string{outside}, args)
}

func TestWriteGuestConfig(t *testing.T) {
	root := t.TempDir()

	cfg := &RunConfig{Args: []string{"myprog", "--verbose", "input.txt"}}
	require.NoError(t, WriteGuestConfig(root, cfg))

	content, err := os.ReadFile(filepath.Join(root, "etc", "redoxerd"))
	require.NoError(t, err)
	assert.Equal(t, "myprog\n--verbose\ninput.txt\n", string(content))
}
