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

import "github.com/ovn-org/ovn-vif/pkg/portkind"

// Sentinel values surfaced for missing optional integer attributes, per the
// wire convention: absence shows up as the maximum value of the attribute's
// width.
const (
	Uint32Absent = ^uint32(0)
	Uint16Absent = uint32(0xffff)
)

// PortMsg is the attribute projection of a devlink port message that the
// port table needs, decoded from either a PORT_GET dump reply or a
// PORT_NEW/PORT_DEL multicast notification.
type PortMsg struct {
	Command int

	Bus       string
	Dev       string
	PortIndex uint32
	Flavour   portkind.Flavour

	Number      uint32 // generic port number; meaningful for Physical
	PciPfNumber uint32
	PciVfNumber uint32

	NetdevIfindex uint32
	NetdevName    string

	// FuncEthAddr is the function.eth_addr sub-attribute, or the zero
	// address if absent.
	FuncEthAddr [6]byte
}

// IsNew reports whether this message is a PORT_NEW notification (as
// opposed to PORT_DEL).
func (m *PortMsg) IsNew() bool {
	return m.Command == cmdPortNew
}
