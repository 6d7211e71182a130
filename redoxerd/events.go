// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxerd

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// EventSource identifies which descriptor of the event queue became ready.
type EventSource int

const (
	// EventTerminal means the terminal master has data to read.
	EventTerminal EventSource = iota

	// EventTimer means the keep-alive timer expired.
	EventTimer

	// EventUnknown is reported for descriptors the queue does not know.
	EventUnknown
)

// Events is the single-threaded event notification facility the supervisor
// blocks on.
type Events interface {
	// Wait blocks until the next event source is ready.
	Wait() (EventSource, error)

	// AckTimer consumes a timer expiration and keeps the timer armed.
	AckTimer() error
}

// EventQueue multiplexes the terminal master and a periodic one second
// timer over epoll. The timer exists to keep the loop responsive while the
// terminal is idle.
type EventQueue struct {
	epollFD    int
	timerFD    int
	terminalFD int
}

// NewEventQueue registers the terminal descriptor and a fresh timer.
func NewEventQueue(terminalFD int) (*EventQueue, error) {
	epollFD, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}

	timerFD, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epollFD)
		return nil, fmt.Errorf("timer create: %w", err)
	}

	spec := unix.ItimerSpec{
		Interval: unix.Timespec{Sec: 1},
		Value:    unix.Timespec{Sec: 1},
	}
	if err := unix.TimerfdSettime(timerFD, 0, &spec, nil); err != nil {
		_ = unix.Close(timerFD)
		_ = unix.Close(epollFD)

		return nil, fmt.Errorf("timer arm: %w", err)
	}

	queue := &EventQueue{
		epollFD:    epollFD,
		timerFD:    timerFD,
		terminalFD: terminalFD,
	}

	for _, fd := range []int{terminalFD, timerFD} {
		event := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(fd)}
		if err := unix.EpollCtl(epollFD, unix.EPOLL_CTL_ADD, fd, &event); err != nil {
			_ = queue.Close()
			return nil, fmt.Errorf("epoll add fd %d: %w", fd, err)
		}
	}

	return queue, nil
}

// Wait implements [Events].
func (q *EventQueue) Wait() (EventSource, error) {
	var events [1]unix.EpollEvent

	for {
		n, err := unix.EpollWait(q.epollFD, events[:], -1)
		if err == unix.EINTR {
			continue
		}

		if err != nil {
			return EventUnknown, fmt.Errorf("epoll wait: %w", err)
		}

		if n == 0 {
			continue
		}

		switch int(events[0].Fd) {
		case q.terminalFD:
			return EventTerminal, nil
		case q.timerFD:
			return EventTimer, nil
		default:
			return EventUnknown, nil
		}
	}
}

// AckTimer implements [Events].
func (q *EventQueue) AckTimer() error {
	var expirations [8]byte

	_, err := unix.Read(q.timerFD, expirations[:])
	if err != nil && err != unix.EAGAIN {
		return fmt.Errorf("timer read: %w", err)
	}

	return nil
}

// Close releases the epoll and timer descriptors. The terminal descriptor
// stays with its owner.
func (q *EventQueue) Close() error {
	timerErr := unix.Close(q.timerFD)
	epollErr := unix.Close(q.epollFD)

	if timerErr != nil {
		return timerErr
	}

	return epollErr
}
