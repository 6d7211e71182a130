// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxerd

import "errors"

var (
	// ErrNoCommand is returned if the guest configuration file is empty.
	ErrNoCommand = errors.New("no command configured")

	// ErrUnexpectedEvent is returned if the event queue reports a source
	// that is neither the terminal nor the timer. It is a protocol
	// violation, not an ordinary I/O error.
	ErrUnexpectedEvent = errors.New("unexpected event source")
)
