// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxfs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")

	var runArgs []string

	prev := sysRun
	sysRun = func(_ context.Context, name string, args ...string) error {
		runArgs = append([]string{name}, args...)
		return nil
	}
	t.Cleanup(func() { sysRun = prev })

	size, err := Archive(context.Background(), path, "/some/tree", nil, 64*BlockSize)
	require.NoError(t, err)

	assert.Equal(t, []string{"redoxfs-ar", path, "/some/tree"}, runArgs)

	// Nothing was archived, so the image shrinks to the minimal area.
	assert.EqualValues(t, minBlocks*BlockSize, size)

	fs, err := Open(path)
	require.NoError(t, err)
	defer fs.Close()
	assert.Equal(t, size, fs.Size())
}
