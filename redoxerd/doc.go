// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

// Package redoxerd implements the guest supervisor that runs as the init
// process of the booted system. It reads the program to execute from the
// guest configuration file, runs it on a pseudo-terminal, relays terminal
// output to the console and the debug port, and signals the final verdict
// to the host through the emulator's exit ports.
package redoxerd
