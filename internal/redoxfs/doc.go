// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

// Package redoxfs provides the disk block accounting the harness needs for
// sizing RedoxFS images: the image header, the allocator's free-extent log
// and the shrink/expand operations built on them.
//
// Everything beyond block accounting is delegated to the external RedoxFS
// tools: "redoxfs" mounts an image via FUSE, "fusermount" unmounts it and
// "redoxfs-ar" archives a directory tree into an image.
package redoxfs
