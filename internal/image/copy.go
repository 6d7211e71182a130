// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package image

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

// copyTree copies the contents of src into dst, creating dst if needed.
func copyTree(ctx context.Context, src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return err
	}

	// Trailing separator copies the contents, not the directory itself.
	return sys.Run(ctx, "cp", "--recursive", "--dereference",
		filepath.Clean(src)+string(filepath.Separator)+".", dst)
}

// copyFoldersIn copies every mapped host folder to its guest mount point
// under root. The folders are independent, so they are copied concurrently.
func copyFoldersIn(ctx context.Context, root string, folders []FolderMapping) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, folder := range folders {
		folder := folder
		dst := filepath.Join(root, filepath.FromSlash(folder.Guest))
		group.Go(func() error {
			return copyTree(ctx, folder.Host, dst)
		})
	}

	return group.Wait()
}

// copyFoldersOut copies every artifact mount point under root back to its
// host folder.
func copyFoldersOut(ctx context.Context, root string, artifacts []FolderMapping) error {
	for _, artifact := range artifacts {
		src := filepath.Join(root, filepath.FromSlash(artifact.Guest))
		if err := copyTree(ctx, src, artifact.Host); err != nil {
			return err
		}
	}

	return nil
}

// extractArchive unpacks a tar archive into dir.
func extractArchive(ctx context.Context, archive, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return sys.Run(ctx, "tar", "--extract", "--file", archive, "--directory", dir)
}

// packArchive packs the contents of dir into a tar archive.
func packArchive(ctx context.Context, dir, archive string) error {
	return sys.Run(ctx, "tar", "--create", "--file", archive, "--directory", dir, ".")
}
