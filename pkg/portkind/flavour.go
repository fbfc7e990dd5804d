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

// Package portkind carries the devlink port flavour taxonomy shared between
// the netlink decoder and the port table, without pulling either into the
// other.
package portkind

// Flavour mirrors the devlink port flavour enumeration. Only Physical, PciPf
// and PciVf participate in the port table; the rest are recognised so they
// can be dropped silently instead of being mistaken for a decode failure.
type Flavour uint8

const (
	Unknown Flavour = iota
	Physical
	PciPf
	PciVf
	Cpu
	Dsa
	Virtual
	Unused
	PciSf
)

// Tracked reports whether the table maintains records of this flavour.
func (f Flavour) Tracked() bool {
	switch f {
	case Physical, PciPf, PciVf:
		return true
	default:
		return false
	}
}

func (f Flavour) String() string {
	switch f {
	case Physical:
		return "physical"
	case PciPf:
		return "pcipf"
	case PciVf:
		return "pcivf"
	case Cpu:
		return "cpu"
	case Dsa:
		return "dsa"
	case Virtual:
		return "virtual"
	case Unused:
		return "unused"
	case PciSf:
		return "pcisf"
	default:
		return "unknown"
	}
}

// FromDevlink maps the kernel's devlink port flavour wire value onto Flavour.
// Wire values follow include/uapi/linux/devlink.h's devlink_port_flavour
// enumeration.
func FromDevlink(wire uint16) Flavour {
	switch wire {
	case 0:
		return Physical
	case 1:
		return Cpu
	case 2:
		return Dsa
	case 3:
		return PciPf
	case 4:
		return PciVf
	case 5:
		return Virtual
	case 6:
		return Unused
	case 7:
		return PciSf
	default:
		return Unknown
	}
}
