// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteExecCommand(t *testing.T) {
	t.Setenv("TARGET", "")

	root := t.TempDir()

	project := filepath.Join(t.TempDir(), "proj")
	require.NoError(t, os.MkdirAll(filepath.Join(project, "bin"), 0o755))

	binary := filepath.Join(project, "bin", "app")
	require.NoError(t, os.WriteFile(binary, []byte("\x7fELF"), 0o755))

	var levelVar slog.LevelVar

	cli := NewRootCommand(&levelVar)
	cli.SetArgs([]string{
		"write-exec", "--root", root, "--folder", project,
		"--", binary, "--release",
	})

	require.NoError(t, cli.Execute())

	content, err := os.ReadFile(filepath.Join(root, "etc", "redoxerd"))
	require.NoError(t, err)
	assert.Equal(t, "/root/bin/app\n--release\n", string(content))
}
