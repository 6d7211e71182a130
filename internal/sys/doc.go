// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

// Package sys provides target triple handling and helpers for working with
// the external tools the harness depends on.
package sys
