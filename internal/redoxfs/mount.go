// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxfs

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

const (
	// mountTimeout bounds the wait for the FUSE mount point to appear.
	mountTimeout = 30 * time.Second

	mountPollInterval = 10 * time.Millisecond

	mountsFile = "/proc/self/mounts"
)

// Mount is an image mounted at a directory via the external redoxfs FUSE
// helper.
type Mount struct {
	image string
	dir   string
}

// MountImage mounts the image at dir and waits until the mount point
// appears, bounded by ctx and [mountTimeout]. The helper daemonizes, so its
// exit alone does not mean the mount is up.
func MountImage(ctx context.Context, image, dir string) (*Mount, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	mounted, err := MountedAt(dir)
	if err != nil {
		return nil, err
	}

	if mounted {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyMounted, dir)
	}

	ctx, cancel := context.WithTimeout(ctx, mountTimeout)
	defer cancel()

	helperErr := make(chan error, 1)
	go func() {
		helperErr <- sys.Run(ctx, "redoxfs", image, dir)
	}()

	slog.Debug("mounting image", "image", image, "dir", dir)

	ticker := time.NewTicker(mountPollInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-helperErr:
			if err != nil {
				return nil, err
			}
			// Helper exited cleanly after daemonizing, keep
			// polling for the mount point.
			helperErr = nil
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", ErrMountTimeout, dir)
		case <-ticker.C:
			mounted, err := MountedAt(dir)
			if err != nil {
				return nil, err
			}

			if mounted {
				return &Mount{image: image, dir: dir}, nil
			}
		}
	}
}

// Dir returns the mount point.
func (m *Mount) Dir() string {
	return m.dir
}

// Unmount detaches the image and verifies the mount point is gone.
func (m *Mount) Unmount(ctx context.Context) error {
	if err := sys.Run(ctx, "fusermount", "-u", m.dir); err != nil {
		return err
	}

	mounted, err := MountedAt(m.dir)
	if err != nil {
		return err
	}

	if mounted {
		return fmt.Errorf("%w: %s", ErrStillMounted, m.dir)
	}

	return nil
}

// MountedAt reports whether dir is a mount point.
func MountedAt(dir string) (bool, error) {
	file, err := os.Open(mountsFile)
	if err != nil {
		return false, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}

		if unescapeMountPath(fields[1]) == dir {
			return true, nil
		}
	}

	return false, scanner.Err()
}

// unescapeMountPath reverses the octal escapes getmntent applies to
// whitespace and backslashes in mount paths.
func unescapeMountPath(path string) string {
	replacer := strings.NewReplacer(
		`\040`, " ",
		`\011`, "\t",
		`\012`, "\n",
		`\134`, `\`,
	)

	return replacer.Replace(path)
}
