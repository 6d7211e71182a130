// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package image

import (
	"context"
	"os"
	"path/filepath"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

// Manifest is the installer configuration a base image is keyed by. Text is
// compared verbatim against the recorded copy to detect drift.
type Manifest struct {
	Name string
	Text string
}

// ReadManifest loads a manifest from a file, named after its base name
// without extension.
func ReadManifest(path string) (Manifest, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	name := filepath.Base(path)
	name = name[:len(name)-len(filepath.Ext(name))]

	return Manifest{Name: name, Text: string(text)}, nil
}

// DefaultManifest describes the minimal system the harness boots: the base
// system plus the supervisor as init.
func DefaultManifest() Manifest {
	return Manifest{Name: "redoxer", Text: defaultManifestText}
}

const defaultManifestText = `[general]
prompt = false
sysroot = true

[packages]
base = {}
ca-certificates = {}
redoxerd = {}

[files."/etc/init.d/30_redoxerd"]
data = "redoxerd"
`

// Installer populates a directory tree with the target operating system
// described by a manifest.
type Installer interface {
	Install(ctx context.Context, manifest Manifest, dir string) error
}

// ExecInstaller runs the external redox_installer tool.
type ExecInstaller struct{}

// Install implements [Installer]. The manifest text is handed to the tool
// via a temporary file.
func (ExecInstaller) Install(ctx context.Context, manifest Manifest, dir string) error {
	file, err := os.CreateTemp("", "redoxer-manifest-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(file.Name())

	if _, err := file.WriteString(manifest.Text); err != nil {
		_ = file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return err
	}

	return sys.Run(ctx, "redox_installer", "-c", file.Name(), dir)
}
