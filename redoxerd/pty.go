// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxerd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// Fixed terminal geometry announced to the program.
const (
	ptyColumns = 80
	ptyRows    = 30

	ptyTerm = "xterm-256color"
)

// Program is the target program running on a pseudo-terminal. The master
// side is non-blocking so the event loop can drain it without suspending.
type Program struct {
	cmd    *exec.Cmd
	master *os.File
}

// StartProgram opens a pseudo-terminal pair and spawns the configured
// program as its session leader.
func StartProgram(cfg *Config) (*Program, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("open pty: %w", err)
	}

	size := &pty.Winsize{Rows: ptyRows, Cols: ptyColumns}
	if err := pty.Setsize(master, size); err != nil {
		_ = master.Close()
		_ = slave.Close()

		return nil, fmt.Errorf("set pty size: %w", err)
	}

	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}
	cmd.Env = append(os.Environ(),
		"COLUMNS="+strconv.Itoa(ptyColumns),
		"LINES="+strconv.Itoa(ptyRows),
		"TERM="+ptyTerm,
		"TTY="+slave.Name(),
	)

	err = cmd.Start()

	// The slave lives on in the child only.
	_ = slave.Close()

	if err != nil {
		_ = master.Close()
		return nil, fmt.Errorf("start %s: %w", cfg.Command, err)
	}

	if err := unix.SetNonblock(int(master.Fd()), true); err != nil {
		_ = master.Close()
		_ = cmd.Process.Kill()

		return nil, fmt.Errorf("set nonblocking: %w", err)
	}

	return &Program{cmd: cmd, master: master}, nil
}

// Read reads from the terminal master without blocking. It returns
// [unix.EAGAIN] when no data is available and [unix.EIO] once the slave
// side has fully closed.
func (p *Program) Read(data []byte) (int, error) {
	return unix.Read(p.masterFD(), data)
}

// TerminalFD returns the master descriptor for event registration.
func (p *Program) TerminalFD() int {
	return p.masterFD()
}

// TryWait reports without blocking whether the program has exited and with
// which status.
func (p *Program) TryWait() (int, bool, error) {
	var status unix.WaitStatus

	pid, err := unix.Wait4(p.cmd.Process.Pid, &status, unix.WNOHANG, nil)
	if err != nil {
		return 0, false, fmt.Errorf("wait: %w", err)
	}

	if pid == 0 {
		return 0, false, nil
	}

	return exitStatus(status), true, nil
}

// Kill forcibly terminates the program.
func (p *Program) Kill() error {
	return p.cmd.Process.Kill()
}

// Wait blocks until the program exits and returns its status.
func (p *Program) Wait() (int, error) {
	var status unix.WaitStatus

	for {
		_, err := unix.Wait4(p.cmd.Process.Pid, &status, 0, nil)
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return 0, fmt.Errorf("wait: %w", err)
		}

		return exitStatus(status), nil
	}
}

// Close releases the terminal master.
func (p *Program) Close() error {
	return p.master.Close()
}

func (p *Program) masterFD() int {
	return int(p.master.Fd())
}

func exitStatus(status unix.WaitStatus) int {
	if status.Signaled() {
		return 128 + int(status.Signal())
	}

	return status.ExitStatus()
}
