// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

// Package image builds the disk images the harness boots. A base image with
// the installed system is built once per installer manifest and cached, then
// each run materializes a disposable copy with the run's configuration and
// folders injected.
//
// Images come in two backends. The mounted backend works on a RedoxFS image
// via FUSE and supports extracting artifacts after a run. The archived
// backend works on a plain directory tree packed with tar and is used where
// FUSE is unavailable.
package image
