// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"os"

	"gitlab.redox-os.org/redox-os/redoxer/redoxerd"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := redoxerd.Run(); err != nil {
		// The failure was already signaled to the host, the exit code
		// of init itself is informational only.
		os.Exit(1)
	}
}
