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

package porttable

import (
	"github.com/golang/glog"

	"github.com/ovn-org/ovn-vif/pkg/portkind"
)

// Table is the process-wide port model. It is not safe for concurrent use;
// the plug-provider facade that owns it runs single-threaded by design (see
// the concurrency model in the package-level docs of pkg/plugprovider).
type Table struct {
	byIfindex map[uint32]*Record
	byBusDev  map[busDevKey]*Record
	byMacVF   *macVFIndex
}

// New creates an empty port table.
func New() *Table {
	return &Table{
		byIfindex: make(map[uint32]*Record),
		byBusDev:  make(map[busDevKey]*Record),
		byMacVF:   newMacVFIndex(newSeed()),
	}
}

// Len returns the number of live records of any flavour.
func (t *Table) Len() int {
	return len(t.byIfindex)
}

// LookupIfindex returns the record with the given netdev ifindex, if live.
func (t *Table) LookupIfindex(ifindex uint32) (*Record, bool) {
	rec, ok := t.byIfindex[ifindex]
	return rec, ok
}

// LookupPhyBusDev returns the Physical or PciPf record identified by
// bus/dev/flavour/number, if live.
func (t *Table) LookupPhyBusDev(bus, dev string, flavour portkind.Flavour, number uint32) (*Record, bool) {
	rec, ok := t.byBusDev[busDevKey{bus: bus, dev: dev, flavour: flavour, number: number}]
	return rec, ok
}

// LookupPFMacVF returns the PciVf record whose owning PF has the given MAC
// and whose VF number matches, if live.
func (t *Table) LookupPFMacVF(mac [6]byte, vfNum uint32) (*Record, bool) {
	return t.byMacVF.get(macVFKey{mac: mac, vfNum: vfNum})
}

// PFOf resolves a PciVf record's owning PF through the table, revalidating
// the weak reference rather than trusting a cached pointer. It returns
// false if the record has no PF reference, or if the referenced PF is no
// longer live.
func (t *Table) PFOf(rec *Record) (*Record, bool) {
	if rec == nil || rec.PF == nil {
		return nil, false
	}
	return t.LookupPhyBusDev(rec.PF.Bus, rec.PF.Dev, portkind.PciPf, rec.PF.Number)
}

// UpdateEntry inserts or updates a record from a devlink PORT_NEW (dump or
// multicast) message. number is the generic devlink port number attribute
// (meaningful for Physical ports); pciPfNum/pciVfNum are the PCI_PF/PCI_VF
// specific attributes. Unsupported flavours are dropped silently.
func (t *Table) UpdateEntry(
	bus, dev string,
	ifindex uint32,
	name string,
	number uint32,
	pciPfNum uint32,
	pciVfNum uint32,
	flavour portkind.Flavour,
	mac [6]byte,
	source Source,
) (changed bool, err error) {
	if !flavour.Tracked() {
		return false, nil
	}

	switch flavour {
	case portkind.Physical, portkind.PciPf:
		key := busDevKey{bus: bus, dev: dev, flavour: flavour}
		if flavour == portkind.Physical {
			key.number = number
		} else {
			key.number = pciPfNum
		}
		return t.upsertBusDev(key, ifindex, name, mac, source), nil
	case portkind.PciVf:
		return t.upsertVf(bus, dev, ifindex, name, pciPfNum, pciVfNum, mac, source)
	}
	return false, nil
}

func (t *Table) upsertBusDev(key busDevKey, ifindex uint32, name string, mac [6]byte, source Source) bool {
	if existing, ok := t.byBusDev[key]; ok {
		changed := false
		before := existing.NetdevName
		t.renameIfChanged(existing, name)
		changed = changed || existing.NetdevName != before
		if key.flavour == portkind.PciPf && mac != ([6]byte{}) && existing.Mac != mac {
			existing.Mac = mac
			changed = true
		}
		return changed
	}

	rec := &Record{
		NetdevIfindex: ifindex,
		NetdevName:    name,
		Flavour:       key.flavour,
		Bus:           key.bus,
		Dev:           key.dev,
		Number:        key.number,
		Mac:           mac,
		Source:        source,
	}
	t.byBusDev[key] = rec
	t.byIfindex[ifindex] = rec
	return true
}

func (t *Table) upsertVf(bus, dev string, ifindex uint32, name string, pciPfNum, pciVfNum uint32, mac [6]byte, source Source) (bool, error) {
	pf, ok := t.LookupPhyBusDev(bus, dev, portkind.PciPf, pciPfNum)
	if !ok {
		glog.Warningf("porttable: dropping VF update for %s/%s pf=%d vf=%d: no PF on record", bus, dev, pciPfNum, pciVfNum)
		return false, ErrNoPF
	}

	if existing, ok := t.byIfindex[ifindex]; ok && existing.Flavour == portkind.PciVf {
		before := existing.NetdevName
		t.renameIfChanged(existing, name)
		return existing.NetdevName != before, nil
	}

	rec := &Record{
		NetdevIfindex: ifindex,
		NetdevName:    name,
		Flavour:       portkind.PciVf,
		Bus:           bus,
		Dev:           dev,
		Number:        pciVfNum,
		Mac:           pf.Mac,
		PF:            &PFRef{Bus: bus, Dev: dev, Number: pciPfNum},
		Source:        source,
	}
	t.byIfindex[ifindex] = rec
	t.byMacVF.put(macVFKey{mac: pf.Mac, vfNum: pciVfNum}, rec)
	return true, nil
}

func (t *Table) renameIfChanged(rec *Record, name string) {
	if rec.NetdevName == name {
		return
	}
	rec.NetdevName = name
	rec.Renamed = true
}

// DeleteEntry removes a record on a devlink PORT_DEL. Deleting an unknown
// key is a no-op. It returns whether a record was actually removed.
func (t *Table) DeleteEntry(bus, dev string, number, pciPfNum, pciVfNum uint32, flavour portkind.Flavour) bool {
	if !flavour.Tracked() {
		return false
	}

	switch flavour {
	case portkind.Physical, portkind.PciPf:
		key := busDevKey{bus: bus, dev: dev, flavour: flavour}
		if flavour == portkind.Physical {
			key.number = number
		} else {
			key.number = pciPfNum
		}
		rec, ok := t.byBusDev[key]
		if !ok {
			return false
		}
		delete(t.byBusDev, key)
		delete(t.byIfindex, rec.NetdevIfindex)
		return true
	case portkind.PciVf:
		pf, ok := t.LookupPhyBusDev(bus, dev, portkind.PciPf, pciPfNum)
		if !ok {
			// The PF is already gone, so there is no MAC to key the VF
			// by; this delete is a no-op, symmetric with UpdateEntry
			// rejecting a VF update with no known PF.
			return false
		}
		vfKey := macVFKey{mac: pf.Mac, vfNum: pciVfNum}
		rec, ok := t.byMacVF.get(vfKey)
		if !ok {
			return false
		}
		t.byMacVF.delete(vfKey)
		delete(t.byIfindex, rec.NetdevIfindex)
		return true
	}
	return false
}

// RenameByIfindex applies a uevent-sourced rename to the record with the
// given ifindex, if one exists. Unknown ifindexes are ignored.
func (t *Table) RenameByIfindex(ifindex uint32, name string) bool {
	rec, ok := t.byIfindex[ifindex]
	if !ok {
		return false
	}
	before := rec.NetdevName
	t.renameIfChanged(rec, name)
	return rec.NetdevName != before
}
