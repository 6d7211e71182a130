// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

// Package qemu assembles QEMU command lines from per-target defaults and
// user overrides, runs the emulator and reconciles its exit status into a
// harness level result.
package qemu
