// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxfs

import (
	"fmt"
	"log/slog"
)

// Shrink trims the trailing free run off the filesystem area and truncates
// the image file accordingly. The header is committed before the file is
// truncated, so an interrupted shrink leaves a consistent oversized image.
// It returns the resulting size of the filesystem area.
func (fs *FileSystem) Shrink() (uint64, error) {
	tail, ok := fs.alloc.TrailingFree(fs.header.Blocks())
	if !ok {
		return fs.header.Size, nil
	}

	// Never go below the minimal filesystem area.
	if tail.Index < minBlocks {
		tail = Extent{Index: minBlocks, Count: tail.End() - minBlocks}
	}

	if tail.Count == 0 {
		return fs.header.Size, nil
	}

	size := tail.Index * BlockSize

	err := fs.Tx(func(tx *Tx) error {
		// The vacated tail must be free, anything else means the
		// accounting lost track of live blocks.
		if err := tx.Allocate(tail); err != nil {
			return wrapErr(fs.path, fmt.Errorf("shrink tail: %w", err))
		}

		tx.SetSize(size)

		return nil
	})
	if err != nil {
		return 0, err
	}

	if err := fs.file.Truncate(int64(DataOffset + size)); err != nil {
		return 0, wrapErr(fs.path, err)
	}

	slog.Debug("shrunk image", "path", fs.path, "size", size)

	return size, nil
}

// Expand grows the filesystem area to size bytes, rounded down to a block
// multiple. The image file is grown before the new tail is added to the free
// set, so an interrupted expand leaves a consistent undersized image. Sizes
// up to the current one are a no-op.
func (fs *FileSystem) Expand(size uint64) (uint64, error) {
	size -= size % BlockSize

	if size <= fs.header.Size {
		return fs.header.Size, nil
	}

	if err := fs.file.Truncate(int64(DataOffset + size)); err != nil {
		return 0, wrapErr(fs.path, err)
	}

	tail := Extent{
		Index: fs.header.Blocks(),
		Count: size/BlockSize - fs.header.Blocks(),
	}

	err := fs.Tx(func(tx *Tx) error {
		tx.Deallocate(tail)
		tx.SetSize(size)

		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Debug("expanded image", "path", fs.path, "size", size)

	return size, nil
}
