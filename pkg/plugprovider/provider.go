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

// Package plugprovider is the SR-IOV representor plug-provider facade: it
// owns the process-wide devlink sockets, the uevent socket, and the port
// table, and exposes the four operations a switch controller needs
// (Init/Run/Destroy/Prepare). The whole facade runs single-threaded
// cooperatively: Run and Prepare never block the caller, and there is no
// internal locking because there is only ever one goroutine mutating
// state.
package plugprovider

import (
	"fmt"
	"net"
	"strconv"

	"github.com/golang/glog"

	"github.com/ovn-org/ovn-vif/pkg/devlink"
	"github.com/ovn-org/ovn-vif/pkg/pfmac"
	"github.com/ovn-org/ovn-vif/pkg/portkind"
	"github.com/ovn-org/ovn-vif/pkg/porttable"
	"github.com/ovn-org/ovn-vif/pkg/uevent"
)

// OpType distinguishes the lifecycle operation the controller is preparing
// a logical port for.
type OpType int

const (
	Add OpType = iota
	Remove
)

// Result is what Prepare hands back to the controller.
type Result struct {
	// Name is the representor netdev name to attach, valid only when
	// Status is Found. It is an owned copy: stable regardless of any
	// subsequent Run() call.
	Name   string
	Status Status
}

// Status is the outcome discriminant of Prepare.
type Status int

const (
	// Found means Name holds a usable representor netdev name.
	Found Status = iota
	// NotFound means the options were absent/malformed, or no matching
	// record exists yet; the caller should retry on its next iteration.
	NotFound
	// Skip means the caller should remove the bridge port itself (Remove
	// operations never touch the table).
	Skip
)

const (
	optPFMac = "vif-plug:representor:pf-mac"
	optVFNum = "vif-plug:representor:vf-num"
)

// Provider is the process-wide facade context: the table, the two devlink
// sockets, and the (optional) uevent socket, threaded explicitly through
// Init/Run/Destroy/Prepare rather than held in package-level globals.
type Provider struct {
	table   *porttable.Table
	family  *devlink.Family
	monitor *devlink.Monitor
	uev     *uevent.Monitor // nil if the uevent facility was unavailable
}

// New constructs an uninitialised Provider. Call Init before Run/Prepare.
func New() *Provider {
	return &Provider{table: porttable.New()}
}

// Init resolves the devlink family, joins its config multicast group, runs
// one bulk PORT_GET dump to populate the table, and opens the uevent
// monitor. A devlink failure at any step is fatal and returned to the
// caller; a uevent failure is degraded to a warning and Init continues
// without rename support until a later devlink refresh corrects stale
// names.
func (p *Provider) Init() error {
	family, err := devlink.ResolveFamily()
	if err != nil {
		return fmt.Errorf("plugprovider: init: %w", err)
	}
	p.family = family

	monitor, err := devlink.NewMonitor(family)
	if err != nil {
		return fmt.Errorf("plugprovider: init: cannot subscribe to devlink config group: %w", err)
	}
	p.monitor = monitor

	msgs, err := family.Dump()
	if err != nil {
		monitor.Close()
		return fmt.Errorf("plugprovider: init: bulk dump failed: %w", err)
	}
	for _, m := range msgs {
		p.applyPortMsg(m, porttable.Dump)
	}

	uev, err := uevent.Open()
	if err != nil {
		glog.Warningf("plugprovider: uevent monitor unavailable, renames will lag until the next devlink refresh: %v", err)
		p.uev = nil
	} else {
		p.uev = uev
	}

	return nil
}

// Run drains pending devlink multicast messages and uevent messages, each
// to EAGAIN, and returns whether the table changed. It is safe to call
// arbitrarily often and never blocks. Within one call, devlink messages
// are consumed before uevent messages; whichever source delivers last for
// a given ifindex wins for that tick.
func (p *Provider) Run() (changed bool, err error) {
	if p.monitor != nil {
		drainErr := p.monitor.Drain(func(m *devlink.PortMsg) {
			if p.applyPortMsg(m, porttable.Runtime) {
				changed = true
			}
		})
		if drainErr != nil {
			err = fmt.Errorf("plugprovider: run: devlink drain failed: %w", drainErr)
		}
	}

	if p.uev != nil {
		drainErr := p.uev.Drain(func(r uevent.Rename) {
			if p.table.RenameByIfindex(r.Ifindex, r.Name) {
				changed = true
			}
		})
		if drainErr != nil {
			glog.Warningf("plugprovider: uevent drain error: %v", drainErr)
		}
	}

	return changed, err
}

// Resync performs a fresh PORT_GET bulk dump and applies it on top of the
// existing table, the same recovery path Init uses, without reopening
// either socket. It returns the live record count after the dump, for the
// caller's resync bookkeeping (see pkg/repcache).
func (p *Provider) Resync() (int, error) {
	msgs, err := p.family.Dump()
	if err != nil {
		return 0, fmt.Errorf("plugprovider: resync: dump failed: %w", err)
	}
	for _, m := range msgs {
		p.applyPortMsg(m, porttable.Dump)
	}
	return p.table.Len(), nil
}

// Destroy tears down the table and closes both sockets. It must only be
// called when no other operation is in flight.
func (p *Provider) Destroy() {
	if p.monitor != nil {
		if err := p.monitor.Close(); err != nil {
			glog.Warningf("plugprovider: error closing devlink monitor socket: %v", err)
		}
	}
	if p.uev != nil {
		if err := p.uev.Close(); err != nil {
			glog.Warningf("plugprovider: error closing uevent socket: %v", err)
		}
	}
	p.table = porttable.New()
}

// Prepare resolves a logical port's representor netdev name. Options is
// the per-port option mapping the controller maintains; only the two keys
// the controller sets are consulted.
func (p *Provider) Prepare(op OpType, lportName string, options map[string]string) Result {
	if op == Remove {
		return Result{Status: Skip}
	}

	pfMacStr, ok := options[optPFMac]
	if !ok {
		glog.V(2).Infof("plugprovider: prepare %s: no %s option", lportName, optPFMac)
		return Result{Status: NotFound}
	}
	vfNumStr, ok := options[optVFNum]
	if !ok {
		glog.V(2).Infof("plugprovider: prepare %s: no %s option", lportName, optVFNum)
		return Result{Status: NotFound}
	}

	if _, err := p.Run(); err != nil {
		glog.Warningf("plugprovider: prepare %s: run failed: %v", lportName, err)
	}

	hw, err := net.ParseMAC(pfMacStr)
	if err != nil || len(hw) != 6 {
		glog.Warningf("plugprovider: prepare %s: malformed pf-mac %q", lportName, pfMacStr)
		return Result{Status: NotFound}
	}
	var mac [6]byte
	copy(mac[:], hw)

	vfNum, err := strconv.ParseUint(vfNumStr, 10, 32)
	if err != nil || vfNum >= 1<<16 {
		glog.Warningf("plugprovider: prepare %s: malformed vf-num %q", lportName, vfNumStr)
		return Result{Status: NotFound}
	}

	rec, ok := p.table.LookupPFMacVF(mac, uint32(vfNum))
	if !ok {
		return Result{Status: NotFound}
	}

	return Result{Status: Found, Name: rec.NetdevName}
}

// applyPortMsg routes a decoded devlink port message into the table,
// applying the PF MAC sysfs fallback for PciPf
// messages that arrive with a zero function MAC. It returns whether the
// table changed (used to compute Run's changed flag).
func (p *Provider) applyPortMsg(m *devlink.PortMsg, source porttable.Source) bool {
	if m.IsNew() {
		mac := m.FuncEthAddr
		if m.Flavour == portkind.PciPf && mac == ([6]byte{}) {
			phy, ok := p.table.LookupPhyBusDev(m.Bus, m.Dev, portkind.Physical, m.PciPfNumber)
			if !ok {
				glog.Warningf("plugprovider: pf %s/%s pf=%d: no function MAC on the wire and no physical peer to read sysfs from, dropping",
					m.Bus, m.Dev, m.PciPfNumber)
				return false
			}
			resolved, err := pfmac.Read(phy.NetdevName)
			if err != nil {
				glog.Warningf("plugprovider: pf %s/%s pf=%d: no function MAC on the wire and sysfs fallback failed, dropping: %v",
					m.Bus, m.Dev, m.PciPfNumber, err)
				return false
			}
			mac = resolved
		}

		changed, err := p.table.UpdateEntry(m.Bus, m.Dev, m.NetdevIfindex, m.NetdevName,
			m.Number, m.PciPfNumber, m.PciVfNumber, m.Flavour, mac, source)
		if err != nil {
			glog.V(2).Infof("plugprovider: dropping port update for %s/%s: %v", m.Bus, m.Dev, err)
			return false
		}
		return changed
	}

	return p.table.DeleteEntry(m.Bus, m.Dev, m.Number, m.PciPfNumber, m.PciVfNumber, m.Flavour)
}
