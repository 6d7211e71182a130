// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package sys

import (
	"errors"
	"fmt"
)

// ErrTargetNotSupported is returned for target triples the harness does not
// know how to emulate.
var ErrTargetNotSupported = errors.New("target not supported")

// ErrToolNotFound is returned if a required external tool is not installed.
var ErrToolNotFound = errors.New("required tool not found")

// CommandError is returned if an external tool terminated with a non-zero
// exit status or could not be run at all.
type CommandError struct {
	Name   string
	Status int
	Err    error
}

// Error implements the [error] interface.
func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}

	return fmt.Sprintf("%s: exit status %d", e.Name, e.Status)
}

// Is implements the [errors.Is] interface.
func (*CommandError) Is(other error) bool {
	_, ok := other.(*CommandError)
	return ok
}

// Unwrap implements the [errors.Unwrap] interface.
func (e *CommandError) Unwrap() error {
	return e.Err
}
