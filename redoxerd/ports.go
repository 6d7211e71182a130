// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxerd

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// I/O ports of the emulator's exit and debug devices. Writing the shutdown
// value followed by a completion code makes the emulator exit with status
// 2*code+1, so 25 and 26 surface on the host as 51 and 53.
const (
	shutdownPort  = 0x604
	exitPort      = 0x501
	debugPort     = 0xe9
	shutdownValue = 0x2000

	successCode byte = 51 / 2
	failureCode byte = 53 / 2
)

// portDevice is the character device exposing raw port I/O.
const portDevice = "/dev/port"

// SignalChannel reports the final verdict of a guest run to the host.
type SignalChannel interface {
	Success() error
	Failure() error
}

// PortChannel signals through the emulator's shutdown and exit ports.
type PortChannel struct {
	ports *os.File
}

// OpenPortChannel acquires the raw port device. This needs the privileges
// of the init process.
func OpenPortChannel() (*PortChannel, error) {
	ports, err := os.OpenFile(portDevice, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", portDevice, err)
	}

	return &PortChannel{ports: ports}, nil
}

// Success implements [SignalChannel].
func (c *PortChannel) Success() error {
	return c.signal(successCode)
}

// Failure implements [SignalChannel].
func (c *PortChannel) Failure() error {
	return c.signal(failureCode)
}

func (c *PortChannel) signal(code byte) error {
	var value [2]byte
	binary.LittleEndian.PutUint16(value[:], shutdownValue)

	if _, err := c.ports.WriteAt(value[:], shutdownPort); err != nil {
		return err
	}

	if _, err := c.ports.WriteAt([]byte{code}, exitPort); err != nil {
		return err
	}

	return nil
}

// Close releases the port device.
func (c *PortChannel) Close() error {
	return c.ports.Close()
}

// DebugWriter mirrors bytes to the debug console port, one byte per write,
// for out-of-band capture by the host log file.
func (c *PortChannel) DebugWriter() *DebugWriter {
	return &DebugWriter{ports: c.ports}
}

// DebugWriter writes to the debug console port.
type DebugWriter struct {
	ports io.WriterAt
}

// Write implements the [io.Writer] interface.
func (w *DebugWriter) Write(data []byte) (int, error) {
	for i, b := range data {
		if _, err := w.ports.WriteAt([]byte{b}, debugPort); err != nil {
			return i, err
		}
	}

	return len(data), nil
}
