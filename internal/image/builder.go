// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package image

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/c2h5oh/datasize"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

const (
	// baseImageSize is the filesystem area of a freshly built base image.
	baseImageSize = 2 * datasize.GB

	// liveImageSize is used for live bootable media instead.
	liveImageSize = 512 * datasize.MB

	// runImageSize is what a run image is expanded to before boot.
	runImageSize = 4 * datasize.GB

	// archiveFreeSpace is left free in images produced by the archived
	// backend.
	archiveFreeSpace = 256 * datasize.MB

	partialSuffix = ".partial"
)

// Builder produces base images and materializes run images from them.
type Builder struct {
	Cache          CacheLocation
	Target         sys.Target
	Backend        BackendKind
	Installer      Installer
	BootloaderPath string
	Live           bool
}

// EnsureBase returns the cached base image for the manifest, building it
// first if it is missing or its recorded manifest drifted. Partially built
// images stay under a partial name and are only renamed into place on full
// success.
func (b *Builder) EnsureBase(ctx context.Context, manifest Manifest) (*BaseImage, error) {
	if _, err := b.Cache.TargetDir(b.Target); err != nil {
		return nil, buildErr("cache dir", err)
	}

	path := b.Cache.BaseImagePath(b.Target, manifest.Name, b.Backend)
	manifestPath := b.Cache.ManifestPath(b.Target, manifest.Name)

	recorded, err := os.ReadFile(manifestPath)
	if err == nil && string(recorded) != manifest.Text {
		slog.Info("base image manifest drifted, rebuilding",
			"name", manifest.Name, "path", path)

		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, buildErr("invalidate cache", err)
		}

		if err := os.Remove(manifestPath); err != nil {
			return nil, buildErr("invalidate cache", err)
		}

		recorded = nil
	}

	if recorded != nil {
		if _, err := os.Stat(path); err == nil {
			return &BaseImage{Kind: b.Backend, Path: path, Manifest: manifest}, nil
		}
	}

	slog.Info("building base image",
		"name", manifest.Name, "backend", b.Backend, "target", b.Target)

	partial := path + partialSuffix
	_ = os.Remove(partial)

	if err := b.Backend.ops().build(ctx, b, manifest, partial); err != nil {
		return nil, err
	}

	if err := os.Rename(partial, path); err != nil {
		return nil, buildErr("promote image", err)
	}

	// The manifest is recorded last so an interrupted build is rebuilt.
	if err := os.WriteFile(manifestPath, []byte(manifest.Text), 0o644); err != nil {
		return nil, buildErr("record manifest", err)
	}

	return &BaseImage{Kind: b.Backend, Path: path, Manifest: manifest}, nil
}

// MaterializeRun creates a fresh run image from the base image with the
// run's configuration and folders injected. The caller owns the returned
// image and must close it.
func (b *Builder) MaterializeRun(ctx context.Context, base *BaseImage, cfg *RunConfig) (*RunImage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	workdir, err := b.Cache.NewRunDir()
	if err != nil {
		return nil, buildErr("run workspace", err)
	}

	run, err := base.Kind.ops().materialize(ctx, b, base, cfg, workdir)
	if err != nil {
		_ = os.RemoveAll(workdir)
		return nil, err
	}

	return run, nil
}

// ExtractArtifacts copies the run configuration's artifact folders back out
// of the run image.
func (b *Builder) ExtractArtifacts(ctx context.Context, run *RunImage, cfg *RunConfig) error {
	return run.Kind.ops().extractArtifacts(ctx, run, cfg)
}

// populate fills a mounted base filesystem, preferring the installer and
// falling back to a previously packed base archive.
func (b *Builder) populate(ctx context.Context, manifest Manifest, root string) error {
	if b.Installer != nil {
		if err := b.Installer.Install(ctx, manifest, root); err != nil {
			return buildErr("install", err)
		}

		return nil
	}

	archive := b.Cache.BaseImagePath(b.Target, manifest.Name, BackendArchived)
	if _, err := os.Stat(archive); err != nil {
		return buildErr("install", ErrNoInstaller)
	}

	if err := extractArchive(ctx, archive, root); err != nil {
		return buildErr("extract base archive", err)
	}

	return nil
}

func (b *Builder) baseSize() datasize.ByteSize {
	if b.Live {
		return liveImageSize
	}

	return baseImageSize
}

// bootloader loads the boot-sector image for targets that use one. UEFI
// targets boot via firmware and leave the reserved region empty.
func (b *Builder) bootloader() ([]byte, error) {
	if b.Target.UEFI() || b.BootloaderPath == "" {
		return nil, nil
	}

	return os.ReadFile(b.BootloaderPath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	return out.Close()
}
