// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package qemu

import (
	"strconv"

	"gitlab.redox-os.org/redox-os/redoxer/internal/sys"
)

const (
	memoryDefaultMB = 2048
	smpDefault      = 4

	// Firmware image used to boot UEFI targets on the virt machine type.
	aarch64FirmwareDefault = "/usr/share/AAVMF/AAVMF_CODE.fd"
)

// Spec describes a single emulator invocation.
type Spec struct {
	// Target selects the architecture specific baseline arguments.
	Target sys.Target

	// ImagePath is the RunImage the virtual block device is bound to.
	ImagePath string

	// LogPath is the host file the console log chardev writes to.
	LogPath string

	// Firmware overrides the UEFI firmware image for targets that boot via
	// UEFI. Ignored for boot-sector targets.
	Firmware string

	// GUI enables graphical output instead of the headless defaults.
	GUI bool

	// KVM enables hardware acceleration.
	KVM bool
}

// DefaultArgs builds the architecture specific baseline argument list. Any
// of them can be replaced per-flag by user overrides via [MergeArgs].
func (s *Spec) DefaultArgs() Arguments {
	args := Arguments{
		Arg("cpu", "max"),
		Arg("machine", s.machineType()),
		Arg("m", strconv.Itoa(memoryDefaultMB)),
		Arg("smp", strconv.Itoa(smpDefault)),
		Arg("serial", "mon:stdio"),
		Arg("chardev", "file", "id=log", "path="+s.LogPath),
		Arg("netdev", "user", "id=net0"),
	}

	switch s.Target {
	case sys.AArch64:
		// The virt machine has no default disk bus, the drive must be
		// attached explicitly as a virtio block device.
		args.Add(
			Arg("bios", s.firmware()),
			Arg("device", "virtio-net-device", "netdev=net0"),
			Arg("drive", "file="+s.ImagePath, "format=raw", "if=none", "id=disk"),
			Arg("device", "virtio-blk-device", "drive=disk"),
		)
	default:
		// Legacy boot sector targets use the Bochs compatible debugcon
		// for out-of-band console capture and the debug-exit device as
		// exit status side-channel.
		args.Add(
			Arg("device", "isa-debugcon", "chardev=log"),
			Arg("device", "isa-debug-exit"),
			Arg("device", "e1000", "netdev=net0"),
			Arg("drive", "file="+s.ImagePath, "format=raw"),
		)
	}

	if s.KVM {
		args.Add(Arg("accel", "kvm"))
	}

	if !s.GUI {
		args.Add(
			Arg("nographic"),
			Arg("vga", "none"),
		)
	}

	return args
}

func (s *Spec) machineType() string {
	switch s.Target {
	case sys.AArch64:
		return "virt"
	case sys.I686:
		return "pc"
	default:
		return "q35"
	}
}

func (s *Spec) firmware() string {
	if s.Firmware != "" {
		return s.Firmware
	}

	return aarch64FirmwareDefault
}
