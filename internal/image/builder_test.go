// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package image

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

// fakeInstaller writes a marker file and counts invocations.
type fakeInstaller struct {
	calls     int
	manifests []Manifest
}

func (f *fakeInstaller) Install(_ context.Context, manifest Manifest, dir string) error {
	f.calls++
	f.manifests = append(f.manifests, manifest)

	return os.WriteFile(filepath.Join(dir, "installed"), []byte(manifest.Text), 0o644)
}

func newTestBuilder(t *testing.T) (*Builder, *fakeInstaller) {
	t.Helper()

	if !sys.Installed("tar") {
		t.Skip("tar not installed")
	}

	installer := &fakeInstaller{}
	builder := &Builder{
		Cache:     CacheLocation{Root: t.TempDir()},
		Target:    sys.X8664,
		Backend:   BackendArchived,
		Installer: installer,
	}

	return builder, installer
}

func TestEnsureBaseBuildsOnce(t *testing.T) {
	builder, installer := newTestBuilder(t)
	manifest := Manifest{Name: "demo", Text: "packages = [\"hello\"]\n"}

	base, err := builder.EnsureBase(context.Background(), manifest)
	require.NoError(t, err)
	assert.Equal(t, BackendArchived, base.Kind)
	assert.FileExists(t, base.Path)
	assert.NoFileExists(t, base.Path+partialSuffix)

	// Unchanged manifest hits the cache.
	again, err := builder.EnsureBase(context.Background(), manifest)
	require.NoError(t, err)
	assert.Equal(t, base.Path, again.Path)
	assert.Equal(t, 1, installer.calls)
}

func TestEnsureBaseRebuildsOnDrift(t *testing.T) {
	builder, installer := newTestBuilder(t)

	first, err := builder.EnsureBase(context.Background(),
		Manifest{Name: "demo", Text: "packages = []\n"})
	require.NoError(t, err)

	info, err := os.Stat(first.Path)
	require.NoError(t, err)

	second, err := builder.EnsureBase(context.Background(),
		Manifest{Name: "demo", Text: "packages = [\"hello\"]\n"})
	require.NoError(t, err)

	assert.Equal(t, 2, installer.calls)
	assert.Equal(t, first.Path, second.Path)

	rebuilt, err := os.Stat(second.Path)
	require.NoError(t, err)
	assert.NotEqual(t, info.ModTime(), rebuilt.ModTime())

	recorded, err := os.ReadFile(builder.Cache.ManifestPath(builder.Target, "demo"))
	require.NoError(t, err)
	assert.Equal(t, "packages = [\"hello\"]\n", string(recorded))
}

func TestEnsureBaseRebuildsMissingImage(t *testing.T) {
	builder, installer := newTestBuilder(t)
	manifest := Manifest{Name: "demo", Text: "packages = []\n"}

	base, err := builder.EnsureBase(context.Background(), manifest)
	require.NoError(t, err)
	require.NoError(t, os.Remove(base.Path))

	_, err = builder.EnsureBase(context.Background(), manifest)
	require.NoError(t, err)
	assert.Equal(t, 2, installer.calls)
}

func TestEnsureBaseFailureLeavesNoCache(t *testing.T) {
	builder, _ := newTestBuilder(t)
	builder.Installer = nil

	_, err := builder.EnsureBase(context.Background(),
		Manifest{Name: "demo", Text: "packages = []\n"})
	require.ErrorIs(t, err, ErrNoInstaller)
	require.ErrorIs(t, err, &BuildError{Step: "install"})

	assert.NoFileExists(t,
		builder.Cache.BaseImagePath(builder.Target, "demo", BackendArchived))
	assert.NoFileExists(t, builder.Cache.ManifestPath(builder.Target, "demo"))
}

func TestExtractArtifactsArchivedUnsupported(t *testing.T) {
	builder, _ := newTestBuilder(t)

	run := &RunImage{Kind: BackendArchived}
	cfg := &RunConfig{Artifacts: []FolderMapping{{Host: "./out", Guest: "/data/out"}}}

	require.ErrorIs(t,
		builder.ExtractArtifacts(context.Background(), run, cfg),
		ErrArtifactsUnsupported)

	require.NoError(t,
		builder.ExtractArtifacts(context.Background(), run, &RunConfig{}))
}
