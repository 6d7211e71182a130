// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package sys

import (
	"os"
	"runtime"
	"strings"
)

// Target is a Redox OS target triple.
type Target string

// Supported target triples.
const (
	X8664   Target = "x86_64-unknown-redox"
	AArch64 Target = "aarch64-unknown-redox"
	I686    Target = "i686-unknown-redox"
)

// DefaultTarget is used when no target is requested explicitly.
const DefaultTarget = X8664

var supportedTargets = []Target{X8664, AArch64, I686}

// TargetFromEnv resolves the target triple from the TARGET environment
// variable. Unknown or empty values fall back to [DefaultTarget].
func TargetFromEnv() Target {
	requested := Target(os.Getenv("TARGET"))
	for _, target := range supportedTargets {
		if target == requested {
			return target
		}
	}

	return DefaultTarget
}

func (t Target) String() string {
	return string(t)
}

// Set implements [flag.Value] so a [Target] can be used as a flag directly.
func (t *Target) Set(s string) error {
	for _, target := range supportedTargets {
		if target == Target(s) {
			*t = target
			return nil
		}
	}

	return ErrTargetNotSupported
}

// Type implements [pflag.Value].
func (Target) Type() string {
	return "target"
}

// Arch returns the architecture part of the triple, like "x86_64".
func (t Target) Arch() string {
	arch, _, _ := strings.Cut(string(t), "-")
	return arch
}

// QemuExecutable returns the name of the qemu-system binary that emulates
// the target.
func (t Target) QemuExecutable() string {
	switch t {
	case I686:
		return "qemu-system-i386"
	case AArch64:
		return "qemu-system-aarch64"
	default:
		return "qemu-system-x86_64"
	}
}

// UEFI returns whether the target boots via UEFI firmware instead of a
// legacy boot sector written into the image's reserved region.
func (t Target) UEFI() bool {
	return t == AArch64
}

// GNUPrefix returns the prefix of the cross tools for the target, including
// the trailing dash.
func (t Target) GNUPrefix() string {
	return string(t) + "-"
}

// EnvKey returns the triple in the form used in per-target environment
// variable names, like "x86_64_unknown_redox".
func (t Target) EnvKey() string {
	return strings.ReplaceAll(string(t), "-", "_")
}

// HostTriple returns the GNU triple of the build host. Only Linux hosts are
// supported.
func HostTriple() string {
	switch runtime.GOARCH {
	case "arm64":
		return "aarch64-unknown-linux-gnu"
	case "386":
		return "i686-unknown-linux-gnu"
	default:
		return "x86_64-unknown-linux-gnu"
	}
}

// KVMAvailableFor checks if KVM can accelerate emulation of the target on
// this host.
func KVMAvailableFor(t Target) bool {
	hostArch := map[string]string{
		"amd64": "x86_64",
		"arm64": "aarch64",
		"386":   "i686",
	}[runtime.GOARCH]

	// i686 guests run accelerated on x86_64 hosts.
	if t.Arch() != hostArch && !(t == I686 && hostArch == "x86_64") {
		return false
	}

	f, err := os.OpenFile("/dev/kvm", os.O_WRONLY, 0)
	_ = f.Close()

	return err == nil
}
