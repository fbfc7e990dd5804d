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

// Package porttable implements the in-memory devlink port model: three
// indices over one record set, kept consistent as devlink and uevent
// streams report ports coming, going, and being renamed.
package porttable

import "github.com/ovn-org/ovn-vif/pkg/portkind"

// Source records where a Record's most recent creation came from. It exists
// solely to drive the rename-expected diagnostic predicate; lookup
// correctness does not depend on it.
type Source uint8

const (
	// Dump marks a record learned from the initial PORT_GET bulk dump.
	Dump Source = iota
	// Runtime marks a record learned from a live PORT_NEW multicast event.
	Runtime
)

func (s Source) String() string {
	if s == Dump {
		return "dump"
	}
	return "runtime"
}

// Sentinel values for the optional integer devlink attributes this table
// consumes. The wire convention surfaces a missing attribute as the maximum
// value of its width; callers of UpdateEntry/DeleteEntry pass these through
// unchanged from the devlink decode.
const (
	Uint32Absent = ^uint32(0)
	Uint16Absent = uint32(0xffff)
)

// PFRef is a weak lookup relation from a PciVf record to the PciPf record
// that owns it: the PF's identifying bus/dev/number key, never a raw
// pointer. The owning PF may be removed at any time; callers must revalidate
// through the table rather than trust a cached pointer.
type PFRef struct {
	Bus    string
	Dev    string
	Number uint32
}

// Record is the sole entity the table manages.
type Record struct {
	NetdevIfindex uint32
	NetdevName    string
	Renamed       bool

	Flavour portkind.Flavour
	Bus     string
	Dev     string
	Number  uint32 // physical port number, PF number, or VF number, per Flavour

	Mac [6]byte

	PF *PFRef // set only for PciVf records

	Source Source
}

// RenameExpected reports whether this record was learned from a live
// PORT_NEW and has not yet seen its first rename from the uevent stream.
func (r *Record) RenameExpected() bool {
	return r.Source == Runtime && !r.Renamed
}

// busDevKey identifies a Physical or PciPf record by bus/dev/flavour/number.
type busDevKey struct {
	bus     string
	dev     string
	flavour portkind.Flavour
	number  uint32
}

// macVFKey identifies a PciVf record by its owning PF's MAC and VF number.
type macVFKey struct {
	mac   [6]byte
	vfNum uint32
}
