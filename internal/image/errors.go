// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package image

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMapping is returned for folder mappings that do not parse
	// or point at a guest path that is not absolute.
	ErrInvalidMapping = errors.New("invalid folder mapping")

	// ErrDuplicateFolder is returned if the same host folder appears more
	// than once across the copy-in and artifact sets.
	ErrDuplicateFolder = errors.New("duplicate host folder")

	// ErrInvalidPath is returned if a path needed for guest substitution
	// is not valid UTF-8.
	ErrInvalidPath = errors.New("path is not valid UTF-8")

	// ErrArtifactsUnsupported is returned when artifact extraction is
	// requested for an archived image, which no longer exists as a
	// filesystem after the run.
	ErrArtifactsUnsupported = errors.New("artifacts require a mounted image")

	// ErrNoInstaller is returned when a base image must be built but
	// neither an installer nor a packed base archive is available.
	ErrNoInstaller = errors.New("no installer available")
)

// BuildError names the image build step that failed.
type BuildError struct {
	Step string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build step %s: %v", e.Step, e.Err)
}

func (e *BuildError) Is(other error) bool {
	o, ok := other.(*BuildError)
	if !ok {
		return false
	}

	return o.Step == "" || o.Step == e.Step
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func buildErr(step string, err error) error {
	return &BuildError{Step: step, Err: err}
}
