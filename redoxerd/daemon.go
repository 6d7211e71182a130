// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxerd

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// State is the phase the supervisor is in.
type State int

const (
	// StateStarting covers setup until the program is spawned.
	StateStarting State = iota

	// StateRunning is the event loop with the program alive.
	StateRunning

	// StateDraining means the terminal closed before the program was
	// observed to exit, the supervisor stops consuming events and
	// terminates the program.
	StateDraining

	// StateTerminated means the program's final status is known.
	StateTerminated
)

// String implements the [fmt.Stringer] interface.
func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return "invalid"
	}
}

// Child is the supervised program.
type Child interface {
	// TryWait reports without blocking whether the program exited.
	TryWait() (int, bool, error)

	// Kill forcibly terminates the program.
	Kill() error

	// Wait blocks for the program's exit status.
	Wait() (int, error)
}

// Daemon supervises one program to completion and signals the verdict.
type Daemon struct {
	Events   Events
	Terminal io.Reader
	Child    Child
	Signal   SignalChannel

	// Console receives the relayed terminal output, Mirror gets a copy
	// of every byte for out-of-band capture, Errors receives diagnostic
	// lines.
	Console io.Writer
	Mirror  io.Writer
	Errors  io.Writer

	state State
}

// State returns the supervisor's current phase.
func (d *Daemon) State() State {
	return d.state
}

// Supervise drives the program to completion and signals success exactly if
// it exited with status zero. Internal faults are reported as a failure
// signal as well, so the host never waits on a silent guest.
func (d *Daemon) Supervise() error {
	status, err := d.superviseChild()

	d.state = StateTerminated

	if err != nil {
		fmt.Fprintf(d.Errors, "redoxerd: %v\n", err)

		if sigErr := d.Signal.Failure(); sigErr != nil {
			return errors.Join(err, sigErr)
		}

		return err
	}

	if status == 0 {
		return d.Signal.Success()
	}

	fmt.Fprintf(d.Errors, "redoxerd: program failed with status %d\n", status)

	return d.Signal.Failure()
}

func (d *Daemon) superviseChild() (int, error) {
	d.state = StateRunning

	for {
		source, err := d.Events.Wait()
		if err != nil {
			return 0, err
		}

		switch source {
		case EventTerminal:
			closed, err := d.drainTerminal()
			if err != nil {
				return 0, err
			}

			if closed && d.state == StateRunning {
				d.state = StateDraining
			}
		case EventTimer:
			if err := d.Events.AckTimer(); err != nil {
				return 0, err
			}
		default:
			return 0, fmt.Errorf("%w: %d", ErrUnexpectedEvent, source)
		}

		// The liveness check runs after every event so a terminal
		// closure and an exit observed in the same iteration are both
		// honored.
		status, exited, err := d.Child.TryWait()
		if err != nil {
			return 0, err
		}

		if exited {
			return status, nil
		}

		if d.state == StateDraining {
			if err := d.Child.Kill(); err != nil {
				return 0, err
			}

			return d.Child.Wait()
		}
	}
}

// drainTerminal forwards all currently available terminal bytes to the
// console and the mirror. It reports whether the terminal's slave side has
// closed.
func (d *Daemon) drainTerminal() (bool, error) {
	buf := make([]byte, 4096)

	for {
		n, err := d.Terminal.Read(buf)

		if n > 0 {
			if _, err := d.Console.Write(buf[:n]); err != nil {
				return false, err
			}

			if _, err := d.Mirror.Write(buf[:n]); err != nil {
				return false, err
			}
		}

		switch {
		case errors.Is(err, unix.EAGAIN):
			// No more data right now.
			return false, nil
		case errors.Is(err, io.EOF), errors.Is(err, unix.EIO):
			return true, nil
		case err != nil:
			return false, err
		case n == 0:
			return true, nil
		}
	}
}
