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

package devlink

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/golang/glog"
	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"
)

// ErrUnavailable is returned by ResolveFamily when the devlink
// generic-netlink family cannot be resolved, and by Dump and NewMonitor when
// a genetlink socket cannot be opened. This is fatal for the devlink
// component: the feature is unavailable on this kernel.
var ErrUnavailable = errors.New("devlink: family unavailable")

// ErrDumpFailed is returned by Dump when the kernel's reply stream could
// not be decoded past some point (kernel EPROTO or a malformed message).
var ErrDumpFailed = errors.New("devlink: dump failed")

// Family resolves the devlink generic-netlink family, once per process.
// It is the first step of both Dump and NewMonitor.
type Family struct {
	id            uint16
	version       uint8
	configGroupID uint32
}

// ResolveFamily looks up the devlink generic-netlink family and its config
// multicast group.
func ResolveFamily() (*Family, error) {
	conn, err := genetlink.Dial(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	fam, err := conn.GetFamily(familyName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var groupID uint32
	found := false
	for _, g := range fam.Groups {
		if g.Name == multicastGroupName {
			groupID = g.ID
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: no %q multicast group", ErrUnavailable, multicastGroupName)
	}

	return &Family{id: fam.ID, version: fam.Version, configGroupID: groupID}, nil
}

// Dump performs a single PORT_GET bulk dump and returns every decoded port
// message. A decode failure on any one message ends the dump and returns
// ErrDumpFailed wrapping the underlying cause; messages decoded before the
// failure are discarded, so a caller never acts on a partial dump.
func (f *Family) Dump() ([]*PortMsg, error) {
	conn, err := genetlink.Dial(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer conn.Close()

	req := genetlink.Message{
		Header: genetlink.Header{
			Command: cmdPortGet,
			Version: f.version,
		},
	}

	replies, err := conn.Execute(req, f.id, netlink.Request|netlink.Dump)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDumpFailed, err)
	}

	msgs := make([]*PortMsg, 0, len(replies))
	for _, reply := range replies {
		m, err := decodePortMessage(reply)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDumpFailed, err)
		}
		// The kernel emits a bare PORT_NEW ahead of some PORT_DELs that
		// carries no usable payload; recognisable by a missing ifindex.
		if m.NetdevIfindex == Uint32Absent {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// Monitor is the non-blocking multicast subscription to devlink's config
// group, delivering PORT_NEW/PORT_DEL notifications.
type Monitor struct {
	conn *genetlink.Conn
	fam  *Family
}

// NewMonitor opens a second genetlink socket and joins the devlink config
// multicast group.
func NewMonitor(f *Family) (*Monitor, error) {
	conn, err := genetlink.Dial(nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := conn.JoinGroup(f.configGroupID); err != nil {
		conn.Close()
		return nil, fmt.Errorf("devlink: cannot join config group: %w", err)
	}
	return &Monitor{conn: conn, fam: f}, nil
}

// Close tears down the monitor socket.
func (mon *Monitor) Close() error {
	return mon.conn.Close()
}

// Drain reads pending PORT_NEW/PORT_DEL notifications without blocking,
// calling handle for each successfully decoded one. It stops at the first
// EAGAIN (nothing more pending), logs and continues past ENOBUFS (the
// socket overran; the next dump will refresh state), drops messages for
// other commands/flavours silently, and warns and skips messages that fail
// to decode.
func (mon *Monitor) Drain(handle func(*PortMsg)) error {
	for {
		if err := mon.conn.SetReadDeadline(time.Now()); err != nil {
			return fmt.Errorf("devlink: cannot set read deadline: %w", err)
		}

		msgs, err := mon.conn.Receive()
		if err != nil {
			if isWouldBlock(err) {
				return nil
			}
			if errors.Is(err, unix.ENOBUFS) {
				glog.Warningf("devlink: monitor socket overflowed (ENOBUFS); next dump will refresh state")
				continue
			}
			return fmt.Errorf("devlink: monitor receive failed: %w", err)
		}

		for _, raw := range msgs {
			switch raw.Header.Command {
			case cmdPortNew, cmdPortDel:
			default:
				continue
			}

			m, err := decodePortMessage(raw)
			if err != nil {
				glog.Warningf("devlink: dropping malformed port message: %v", err)
				continue
			}
			if !m.Flavour.Tracked() {
				continue
			}
			if m.IsNew() && m.NetdevIfindex == Uint32Absent {
				continue
			}
			handle(m)
		}
	}
}

func isWouldBlock(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}
