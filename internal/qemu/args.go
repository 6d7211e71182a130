// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package qemu

import (
	"slices"
	"strings"
)

const flagMarker = "-"

// Argument is a single QEMU flag with an optional value.
type Argument struct {
	name  string
	value string
}

// Arg creates a new [Argument]. Multiple value parts are joined with commas,
// the way QEMU option strings are written.
func Arg(name string, value ...string) Argument {
	return Argument{
		name:  name,
		value: strings.Join(value, ","),
	}
}

// Name returns the flag name including the leading dash.
func (a Argument) Name() string {
	return flagMarker + a.name
}

// Value returns the value of the [Argument]. It is empty for boolean flags.
func (a Argument) Value() string {
	return a.value
}

// Arguments is an ordered list of [Argument]s.
type Arguments []Argument

// Add appends the given [Argument]s.
func (a *Arguments) Add(args ...Argument) {
	*a = append(*a, args...)
}

// Tokens flattens the list into the flat flag/value token list passed to
// [exec.Command]. Boolean flags contribute a single token.
func (a Arguments) Tokens() []string {
	tokens := make([]string, 0, 2*len(a))

	for _, arg := range a {
		tokens = append(tokens, arg.Name())
		if arg.value != "" {
			tokens = append(tokens, arg.value)
		}
	}

	return tokens
}

// MergeArgs merges user supplied override tokens into a default token list.
//
// Defaults are a flat list alternating flags and values. A flag is treated
// as boolean if the next token is absent or is itself a flag. Every default
// flag that also appears in the overrides is dropped together with its
// value, then the full override list is appended verbatim. This lets a
// caller selectively replace any one default flag while leaving the rest
// untouched, and add new flags that have no default.
func MergeArgs(defaults, overrides []string) []string {
	if len(overrides) == 0 {
		return slices.Clone(defaults)
	}

	overridden := make(map[string]bool, len(overrides))

	for _, token := range overrides {
		if strings.HasPrefix(token, flagMarker) {
			overridden[token] = true
		}
	}

	merged := make([]string, 0, len(defaults)+len(overrides))

	for idx := 0; idx < len(defaults); {
		flag := defaults[idx]
		if !strings.HasPrefix(flag, flagMarker) {
			// Stray value without a flag, should not happen with
			// well-formed defaults.
			idx++
			continue
		}

		boolean := idx+1 >= len(defaults) ||
			strings.HasPrefix(defaults[idx+1], flagMarker)

		if !overridden[flag] {
			merged = append(merged, flag)
			if !boolean {
				merged = append(merged, defaults[idx+1])
			}
		}

		if boolean {
			idx++
		} else {
			idx += 2
		}
	}

	return append(merged, overrides...)
}
