// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxfs

import (
	"context"
	"log/slog"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

// sysRun is swapped for a stub in tests.
var sysRun = sys.Run

// Archive packs the directory tree at dir into a fresh image at path using
// the external redoxfs-ar helper. The image is created with size bytes of
// filesystem area so the archived tree fits, then shrunk to its minimal
// size. It returns the resulting size of the filesystem area.
func Archive(ctx context.Context, path, dir string, bootloader []byte, size uint64) (uint64, error) {
	fs, err := Create(path, bootloader, size)
	if err != nil {
		return 0, err
	}

	if err := fs.Close(); err != nil {
		return 0, wrapErr(path, err)
	}

	slog.Debug("archiving tree", "dir", dir, "image", path)

	if err := sysRun(ctx, "redoxfs-ar", path, dir); err != nil {
		return 0, err
	}

	// Reopen to replay the allocations the helper appended.
	fs, err = Open(path)
	if err != nil {
		return 0, err
	}
	defer fs.Close()

	return fs.Shrink()
}
