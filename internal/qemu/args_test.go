// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package qemu_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.redox-os.org/redox-os/redoxer/internal/qemu"
	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

func TestArgumentsTokens(t *testing.T) {
	args := qemu.Arguments{
		qemu.Arg("machine", "q35"),
		qemu.Arg("nographic"),
		qemu.Arg("chardev", "file", "id=log", "path=/tmp/log"),
	}

	expected := []string{
		"-machine", "q35",
		"-nographic",
		"-chardev", "file,id=log,path=/tmp/log",
	}

	assert.Equal(t, expected, args.Tokens())
}

func TestMergeArgs(t *testing.T) {
	tests := []struct {
		name      string
		defaults  []string
		overrides []string
		expected  []string
	}{
		{
			name:     "no overrides",
			defaults: []string{"-cpu", "max", "-nographic"},
			expected: []string{"-cpu", "max", "-nographic"},
		},
		{
			name:      "replace valued flag",
			defaults:  []string{"-cpu", "max", "-machine", "q35"},
			overrides: []string{"-machine", "pc"},
			expected:  []string{"-cpu", "max", "-machine", "pc"},
		},
		{
			name:      "replace boolean flag",
			defaults:  []string{"-nographic", "-cpu", "max"},
			overrides: []string{"-nographic"},
			expected:  []string{"-cpu", "max", "-nographic"},
		},
		{
			name:      "boolean default detected by lookahead",
			defaults:  []string{"-enable-kvm", "-m", "2048"},
			overrides: []string{"-m", "4096"},
			expected:  []string{"-enable-kvm", "-m", "4096"},
		},
		{
			name:      "new flags appended",
			defaults:  []string{"-cpu", "max"},
			overrides: []string{"-s", "-S"},
			expected:  []string{"-cpu", "max", "-s", "-S"},
		},
		{
			name:      "trailing boolean default",
			defaults:  []string{"-m", "2048", "-nographic"},
			overrides: []string{"-vga", "std"},
			expected:  []string{"-m", "2048", "-nographic", "-vga", "std"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := qemu.MergeArgs(tt.defaults, tt.overrides)
			assert.Equal(t, tt.expected, actual)
		})
	}
}

// Every flag present in the overrides must never also survive from the
// defaults, no matter how the two lists are shaped.
func TestMergeArgsNoDuplicateFlags(t *testing.T) {
	defaults := []string{
		"-cpu", "max",
		"-machine", "q35",
		"-nographic",
		"-m", "2048",
		"-device", "isa-debug-exit",
	}

	overrides := []string{"-machine", "pc", "-m", "512", "-nographic", "-smp", "2"}

	merged := qemu.MergeArgs(defaults, overrides)

	for _, flag := range []string{"-machine", "-m", "-nographic"} {
		count := 0
		for _, token := range merged {
			if token == flag {
				count++
			}
		}
		assert.Equal(t, 1, count, "flag %s must appear exactly once", flag)
	}
}

func TestDefaultArgsPerTarget(t *testing.T) {
	tests := []struct {
		name        string
		target      sys.Target
		contains    []string
		notContains []string
	}{
		{
			name:   "x86_64 uses debug devices",
			target: sys.X8664,
			contains: []string{
				"-machine", "q35",
				"isa-debug-exit",
				"e1000,netdev=net0",
			},
			notContains: []string{"-bios"},
		},
		{
			name:   "i686 uses pc machine",
			target: sys.I686,
			contains: []string{
				"-machine", "pc",
				"isa-debug-exit",
			},
		},
		{
			name:   "aarch64 boots via firmware",
			target: sys.AArch64,
			contains: []string{
				"-machine", "virt",
				"-bios",
				"virtio-net-device,netdev=net0",
				"file=/tmp/run.bin,format=raw,if=none,id=disk",
				"virtio-blk-device,drive=disk",
			},
			notContains: []string{"isa-debug-exit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := qemu.Spec{
				Target:    tt.target,
				ImagePath: "/tmp/run.bin",
				LogPath:   "/tmp/run.log",
			}

			tokens := spec.DefaultArgs().Tokens()

			for _, want := range tt.contains {
				assert.Contains(t, tokens, want)
			}

			for _, unwanted := range tt.notContains {
				assert.NotContains(t, tokens, unwanted)
			}
		})
	}
}

func TestDefaultArgsFlags(t *testing.T) {
	spec := qemu.Spec{
		Target:    sys.X8664,
		ImagePath: "/tmp/run.bin",
		LogPath:   "/tmp/run.log",
		KVM:       true,
		GUI:       true,
	}

	joined := strings.Join(spec.DefaultArgs().Tokens(), " ")

	require.Contains(t, joined, "-accel kvm")
	require.Contains(t, joined, "path=/tmp/run.log")
	require.Contains(t, joined, "file=/tmp/run.bin,format=raw")
	assert.NotContains(t, joined, "-nographic")
	assert.NotContains(t, joined, "-vga none")
}
