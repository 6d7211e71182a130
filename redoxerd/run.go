// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxerd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Run loads the guest configuration, spawns the configured program and
// supervises it to its verdict. Failures before the program could be
// spawned are still signaled to the host, the emulator must never be left
// running without a verdict.
func Run() error {
	channel, err := OpenPortChannel()
	if err != nil {
		return fmt.Errorf("signal channel: %w", err)
	}
	defer channel.Close()

	return supervise(channel)
}

// supervise wires the daemon together. Errors before the daemon takes over
// are reported and signaled here; the daemon signals its own faults, so
// every path writes the verdict exactly once.
func supervise(channel *PortChannel) error {
	cfg, err := LoadConfig(ConfigPath)
	if err != nil {
		return reportFailure(channel, os.Stderr, err)
	}

	if err := setupLoopback(); err != nil {
		slog.Warn("loopback setup failed", "error", err)
	}

	program, err := StartProgram(cfg)
	if err != nil {
		return reportFailure(channel, os.Stderr, err)
	}
	defer program.Close()

	events, err := NewEventQueue(program.TerminalFD())
	if err != nil {
		return reportFailure(channel, os.Stderr, err)
	}
	defer events.Close()

	daemon := &Daemon{
		Events:   events,
		Terminal: program,
		Child:    program,
		Signal:   channel,
		Console:  os.Stdout,
		Mirror:   channel.DebugWriter(),
		Errors:   os.Stderr,
	}

	return daemon.Supervise()
}

// reportFailure writes the diagnostic line and signals the failure verdict.
func reportFailure(signal SignalChannel, w io.Writer, err error) error {
	fmt.Fprintf(w, "redoxerd: %v\n", err)

	if sigErr := signal.Failure(); sigErr != nil {
		slog.Error("failed to signal failure", "error", sigErr)
	}

	return err
}
