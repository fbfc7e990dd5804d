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
	"fmt"

	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"

	"github.com/ovn-org/ovn-vif/pkg/portkind"
)

// decodePortMessage decodes a single devlink port genetlink message into
// the attribute projection the port table needs. A decode failure here is
// what the bulk-dump caller treats as EPROTO: it ends the dump.
func decodePortMessage(m genetlink.Message) (*PortMsg, error) {
	ad, err := netlink.NewAttributeDecoder(m.Data)
	if err != nil {
		return nil, fmt.Errorf("devlink: cannot decode attributes: %w", err)
	}

	msg := &PortMsg{
		Command:       int(m.Header.Command),
		NetdevIfindex: Uint32Absent,
		Number:        Uint32Absent,
		PciPfNumber:   Uint16Absent,
		PciVfNumber:   Uint16Absent,
	}

	for ad.Next() {
		switch ad.Type() {
		case attrBusName:
			msg.Bus = ad.String()
		case attrDevName:
			msg.Dev = ad.String()
		case attrPortIndex:
			msg.PortIndex = ad.Uint32()
		case attrPortNumber:
			msg.Number = ad.Uint32()
		case attrPortPciPfNumber:
			msg.PciPfNumber = uint32(ad.Uint16())
		case attrPortPciVfNumber:
			msg.PciVfNumber = uint32(ad.Uint16())
		case attrPortFlavour:
			msg.Flavour = portkind.FromDevlink(ad.Uint16())
		case attrPortNetdevIfindex:
			msg.NetdevIfindex = ad.Uint32()
		case attrPortNetdevName:
			msg.NetdevName = ad.String()
		case attrPortFunction:
			if err := decodeFunction(ad.Bytes(), msg); err != nil {
				return nil, err
			}
		}
	}
	if err := ad.Err(); err != nil {
		return nil, fmt.Errorf("devlink: malformed port message: %w", err)
	}

	return msg, nil
}

// decodeFunction decodes the nested DEVLINK_ATTR_PORT_FUNCTION attribute,
// looking only for the hardware (Ethernet) address sub-attribute.
func decodeFunction(data []byte, msg *PortMsg) error {
	nad, err := netlink.NewAttributeDecoder(data)
	if err != nil {
		return fmt.Errorf("devlink: cannot decode port function: %w", err)
	}

	for nad.Next() {
		if nad.Type() != attrPortFunctionHwAddr {
			continue
		}
		b := nad.Bytes()
		if len(b) != 6 {
			return fmt.Errorf("devlink: function hw addr has length %d, want 6", len(b))
		}
		copy(msg.FuncEthAddr[:], b)
	}
	return nad.Err()
}
