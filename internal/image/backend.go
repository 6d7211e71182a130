// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package image

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"gitlab.redox-os.org/redox-os/redoxer/internal/redoxfs"
)

// BackendKind selects how images are built and populated.
type BackendKind int

const (
	// BackendMounted works on RedoxFS images via FUSE.
	BackendMounted BackendKind = iota

	// BackendArchived works on plain directory trees packed with tar.
	BackendArchived
)

// String implements the [fmt.Stringer] interface.
func (k BackendKind) String() string {
	if k == BackendArchived {
		return "archived"
	}

	return "mounted"
}

// BaseImage is a cached, reusable image with the installed system.
type BaseImage struct {
	Kind     BackendKind
	Path     string
	Manifest Manifest
}

// RunImage is the disposable per-run disk image. DiskPath is bound to the
// emulator's block device.
type RunImage struct {
	Kind     BackendKind
	DiskPath string

	workdir string
}

// LogPath returns where the emulator's console log for this run goes.
func (r *RunImage) LogPath() string {
	return filepath.Join(r.workdir, "qemu.log")
}

// Close deletes the run workspace.
func (r *RunImage) Close() error {
	return os.RemoveAll(r.workdir)
}

// backendOps is the per-backend build strategy.
type backendOps interface {
	build(ctx context.Context, b *Builder, manifest Manifest, path string) error
	materialize(ctx context.Context, b *Builder, base *BaseImage, cfg *RunConfig, workdir string) (*RunImage, error)
	extractArtifacts(ctx context.Context, run *RunImage, cfg *RunConfig) error
}

func (k BackendKind) ops() backendOps {
	if k == BackendArchived {
		return archivedBackend{}
	}

	return mountedBackend{}
}

type mountedBackend struct{}

func (mountedBackend) build(ctx context.Context, b *Builder, manifest Manifest, path string) error {
	bootloader, err := b.bootloader()
	if err != nil {
		return buildErr("bootloader", err)
	}

	fsys, err := redoxfs.Create(path, bootloader, uint64(b.baseSize()))
	if err != nil {
		return buildErr("create image", err)
	}

	if err := fsys.Close(); err != nil {
		return buildErr("create image", err)
	}

	dir, err := os.MkdirTemp("", "redoxer-mount-")
	if err != nil {
		return buildErr("mount", err)
	}
	defer os.RemoveAll(dir)

	mount, err := redoxfs.MountImage(ctx, path, dir)
	if err != nil {
		return buildErr("mount", err)
	}

	if err := b.populate(ctx, manifest, mount.Dir()); err != nil {
		_ = mount.Unmount(ctx)
		return err
	}

	if err := mount.Unmount(ctx); err != nil {
		return buildErr("unmount", err)
	}

	return nil
}

func (mountedBackend) materialize(ctx context.Context, b *Builder, base *BaseImage, cfg *RunConfig, workdir string) (*RunImage, error) {
	diskPath := filepath.Join(workdir, "disk.bin")

	if err := copyFile(base.Path, diskPath); err != nil {
		return nil, buildErr("copy base image", err)
	}

	fsys, err := redoxfs.Open(diskPath)
	if err != nil {
		return nil, buildErr("expand image", err)
	}

	if _, err := fsys.Expand(uint64(runImageSize)); err != nil {
		_ = fsys.Close()
		return nil, buildErr("expand image", err)
	}

	if err := fsys.Close(); err != nil {
		return nil, buildErr("expand image", err)
	}

	err = withMount(ctx, diskPath, filepath.Join(workdir, "mnt"), func(root string) error {
		if err := WriteGuestConfig(root, cfg); err != nil {
			return buildErr("guest config", err)
		}

		if err := copyFoldersIn(ctx, root, cfg.Folders); err != nil {
			return buildErr("copy folders", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &RunImage{Kind: BackendMounted, DiskPath: diskPath, workdir: workdir}, nil
}

func (mountedBackend) extractArtifacts(ctx context.Context, run *RunImage, cfg *RunConfig) error {
	if len(cfg.Artifacts) == 0 {
		return nil
	}

	return withMount(ctx, run.DiskPath, filepath.Join(run.workdir, "mnt"), func(root string) error {
		return copyFoldersOut(ctx, root, cfg.Artifacts)
	})
}

type archivedBackend struct{}

func (archivedBackend) build(ctx context.Context, b *Builder, manifest Manifest, path string) error {
	dir, err := os.MkdirTemp("", "redoxer-install-")
	if err != nil {
		return buildErr("install", err)
	}
	defer os.RemoveAll(dir)

	if b.Installer == nil {
		return buildErr("install", ErrNoInstaller)
	}

	if err := b.Installer.Install(ctx, manifest, dir); err != nil {
		return buildErr("install", err)
	}

	if err := packArchive(ctx, dir, path); err != nil {
		return buildErr("pack archive", err)
	}

	return nil
}

func (archivedBackend) materialize(ctx context.Context, b *Builder, base *BaseImage, cfg *RunConfig, workdir string) (*RunImage, error) {
	tree := filepath.Join(workdir, "tree")

	if err := extractArchive(ctx, base.Path, tree); err != nil {
		return nil, buildErr("extract base archive", err)
	}

	if err := WriteGuestConfig(tree, cfg); err != nil {
		return nil, buildErr("guest config", err)
	}

	if err := copyFoldersIn(ctx, tree, cfg.Folders); err != nil {
		return nil, buildErr("copy folders", err)
	}

	bootloader, err := b.bootloader()
	if err != nil {
		return nil, buildErr("bootloader", err)
	}

	size, err := treeSize(tree)
	if err != nil {
		return nil, buildErr("archive image", err)
	}

	diskPath := filepath.Join(workdir, "disk.bin")

	_, err = redoxfs.Archive(ctx, diskPath, tree, bootloader, size+uint64(archiveFreeSpace))
	if err != nil {
		return nil, buildErr("archive image", err)
	}

	return &RunImage{Kind: BackendArchived, DiskPath: diskPath, workdir: workdir}, nil
}

func (archivedBackend) extractArtifacts(_ context.Context, _ *RunImage, cfg *RunConfig) error {
	if len(cfg.Artifacts) == 0 {
		return nil
	}

	return ErrArtifactsUnsupported
}

// withMount mounts the image at dir, runs fn against the mount point and
// unmounts again, also on fn failure.
func withMount(ctx context.Context, image, dir string, fn func(root string) error) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return buildErr("mount", err)
	}

	mount, err := redoxfs.MountImage(ctx, image, dir)
	if err != nil {
		return buildErr("mount", err)
	}

	if err := fn(mount.Dir()); err != nil {
		_ = mount.Unmount(ctx)
		return err
	}

	if err := mount.Unmount(ctx); err != nil {
		return buildErr("unmount", err)
	}

	return nil
}

// treeSize estimates the bytes the tree occupies once archived, padding
// each file to a full block for metadata overhead.
func treeSize(dir string) (uint64, error) {
	var total uint64

	err := filepath.WalkDir(dir, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		info, err := entry.Info()
		if err != nil {
			return err
		}

		blocks := (uint64(info.Size()) + redoxfs.BlockSize) / redoxfs.BlockSize

		total += (blocks + 1) * redoxfs.BlockSize

		return nil
	})

	return total, err
}
