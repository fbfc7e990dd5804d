// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package uevent is a minimal kernel uevent monitor: it listens on the
// NETLINK_KOBJECT_UEVENT socket, filtered in userspace to subsystem "net",
// and emits ifindex/new-name pairs for "move" (rename) actions.
package uevent

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"
)

// kobjectUEventGroup is the kernel broadcast group for udev-style uevents
// (NETLINK_KOBJECT_UEVENT has no named multicast groups; group 1 is the
// kernel's own broadcast, as opposed to group 2 used by userspace udevd).
const kobjectUEventGroup = 1

// bufferSize is sized generously for a single uevent payload, matching the
// historical udev/libkmod convention.
const bufferSize = 2048

// Rename is a single ifindex/new-name notification produced by a "move"
// uevent.
type Rename struct {
	Ifindex uint32
	Name    string
}

// Monitor is a non-blocking netdev rename monitor. A zero Monitor is not
// usable; construct one with Open.
type Monitor struct {
	fd int
}

// Open creates and binds the uevent socket. If the uevent facility is
// unavailable (no NETLINK_KOBJECT_UEVENT support, permission denied, ...),
// Open returns an error; the monitor is then a no-op and the rest
// of the system still functions, accepting stale netdev names until a
// devlink event refreshes them.
func Open() (*Monitor, error) {
	fd, err := unix.Socket(unix.AF_NETLINK, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK, unix.NETLINK_KOBJECT_UEVENT)
	if err != nil {
		return nil, err
	}

	addr := &unix.SockaddrNetlink{Family: unix.AF_NETLINK, Groups: kobjectUEventGroup}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &Monitor{fd: fd}, nil
}

// Close releases the uevent socket.
func (m *Monitor) Close() error {
	return unix.Close(m.fd)
}

// Drain reads pending uevents without blocking and calls handle for every
// "move" event on subsystem "net". It stops at the first EAGAIN.
func (m *Monitor) Drain(handle func(Rename)) error {
	buf := make([]byte, bufferSize)
	for {
		n, _, err := unix.Recvfrom(m.fd, buf, unix.MSG_DONTWAIT)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return nil
			}
			return err
		}
		if n <= 0 {
			continue
		}

		action, fields := parseUEvent(buf[:n])
		if fields["SUBSYSTEM"] != "net" {
			continue
		}
		if action != "move" {
			glog.V(2).Infof("uevent: ignoring action %q on subsystem net", action)
			continue
		}

		ifindexStr, ok := fields["IFINDEX"]
		if !ok {
			continue
		}
		ifindex, err := strconv.ParseUint(ifindexStr, 10, 32)
		if err != nil {
			glog.V(2).Infof("uevent: ignoring non-numeric IFINDEX %q", ifindexStr)
			continue
		}

		name, ok := fields["INTERFACE"]
		if !ok {
			name = fields["DEVNAME"]
		}
		if name == "" {
			continue
		}

		handle(Rename{Ifindex: uint32(ifindex), Name: name})
	}
}

// parseUEvent splits a raw kernel uevent datagram into its leading action
// line (e.g. "move@/devices/virtual/net/eth0") and its NUL-separated
// KEY=VALUE fields.
func parseUEvent(raw []byte) (action string, fields map[string]string) {
	fields = make(map[string]string)

	parts := bytes.Split(raw, []byte{0})
	if len(parts) == 0 {
		return "", fields
	}

	header := string(parts[0])
	if at := strings.IndexByte(header, '@'); at >= 0 {
		action = header[:at]
	} else {
		action = header
	}

	for _, part := range parts[1:] {
		kv := string(part)
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		fields[key] = value
	}
	return action, fields
}
