// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxfs

import (
	"errors"
	"fmt"
)

var (
	// ErrCorrupted is returned when the on-disk structures do not parse or
	// contradict each other.
	ErrCorrupted = errors.New("filesystem corrupted")

	// ErrBlocksNotFree is returned when an allocation targets blocks that
	// are not in the free set.
	ErrBlocksNotFree = errors.New("blocks not free")

	// ErrImageTooSmall is returned when a requested image cannot hold the
	// bootloader region and the minimal filesystem structures.
	ErrImageTooSmall = errors.New("image too small")

	// ErrAlreadyMounted is returned when the mount point is in use.
	ErrAlreadyMounted = errors.New("already mounted")

	// ErrStillMounted is returned when the mount point is in use after an
	// unmount.
	ErrStillMounted = errors.New("still mounted")

	// ErrMountTimeout is returned when the mount point did not appear in
	// time.
	ErrMountTimeout = errors.New("mount timed out")
)

// FilesystemError wraps errors for a single image file.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Is(other error) bool {
	o, ok := other.(*FilesystemError)
	if !ok {
		return false
	}

	return o.Path == "" || o.Path == e.Path
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}
