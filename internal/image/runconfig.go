// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package image

import (
	"fmt"
	"path"
	"strings"
)

// GuestFolderDefault is the guest mount point used when a folder mapping
// omits one.
const GuestFolderDefault = "/root"

// FolderMapping pairs a host directory with an absolute guest path.
type FolderMapping struct {
	Host  string
	Guest string
}

// ParseFolderMapping parses the "host[:guest]" syntax. An omitted guest
// path defaults to [GuestFolderDefault].
func ParseFolderMapping(spec string) (FolderMapping, error) {
	host, guest, found := strings.Cut(spec, ":")
	if !found {
		guest = GuestFolderDefault
	}

	switch {
	case host == "":
		return FolderMapping{}, fmt.Errorf("%w: empty host folder in %q", ErrInvalidMapping, spec)
	case !path.IsAbs(guest):
		return FolderMapping{}, fmt.Errorf("%w: guest path %q is not absolute", ErrInvalidMapping, guest)
	}

	return FolderMapping{Host: host, Guest: path.Clean(guest)}, nil
}

// String implements the [fmt.Stringer] interface.
func (m FolderMapping) String() string {
	return m.Host + ":" + m.Guest
}

// RunConfig describes a single guest run: the argument vector to execute,
// the host folders to copy in before boot and the folders to copy back out
// as artifacts afterwards.
type RunConfig struct {
	Args      []string
	Folders   []FolderMapping
	Artifacts []FolderMapping
}

// Validate checks that every host folder is unique across the copy-in and
// artifact sets.
func (c *RunConfig) Validate() error {
	seen := make(map[string]bool)

	for _, mapping := range append(append([]FolderMapping{}, c.Folders...), c.Artifacts...) {
		if seen[mapping.Host] {
			return fmt.Errorf("%w: %s", ErrDuplicateFolder, mapping.Host)
		}

		seen[mapping.Host] = true
	}

	return nil
}
