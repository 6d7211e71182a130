// SPDX-FileCopyrightText: 2026 The Redoxer Authors
//
// SPDX-License-Identifier: MIT

package redoxerd

import (
	"fmt"

	"github.com/vishvananda/netlink"
)

// setupLoopback brings up the loopback interface so programs that bind to
// localhost work inside the guest.
func setupLoopback() error {
	link, err := netlink.LinkByName("lo")
	if err != nil {
		return fmt.Errorf("get loopback: %w", err)
	}

	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("loopback up: %w", err)
	}

	return nil
}
