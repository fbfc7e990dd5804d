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
	"testing"

	"github.com/mdlayher/genetlink"
	"github.com/mdlayher/netlink"
	"github.com/stretchr/testify/require"

	"github.com/ovn-org/ovn-vif/pkg/portkind"
)

// encodePortNew builds the attribute bytes of a PORT_NEW reply for a PciVf
// port, the same shape a real PORT_GET dump or multicast notification
// carries on the wire.
func encodePortNew(t *testing.T) []byte {
	t.Helper()

	ae := netlink.NewAttributeEncoder()
	ae.String(attrBusName, "pci")
	ae.String(attrDevName, "0000:03:00.1")
	ae.Uint32(attrPortIndex, 3)
	ae.Uint16(attrPortFlavour, 4) // PciVf per devlink_port_flavour
	ae.Uint32(attrPortNumber, Uint32Absent)
	ae.Uint16(attrPortPciPfNumber, 0)
	ae.Uint16(attrPortPciVfNumber, 1)
	ae.Uint32(attrPortNetdevIfindex, 1001)
	ae.String(attrPortNetdevName, "pf0vf1")
	require.NoError(t, ae.Nested(attrPortFunction, func(nae *netlink.AttributeEncoder) error {
		nae.Bytes(attrPortFunctionHwAddr, []byte{0x00, 0x53, 0x00, 0x00, 0x00, 0x77})
		return nil
	}))

	b, err := ae.Encode()
	require.NoError(t, err)
	return b
}

func TestDecodePortMessage(t *testing.T) {
	m := genetlink.Message{
		Header: genetlink.Header{Command: cmdPortNew},
		Data:   encodePortNew(t),
	}

	msg, err := decodePortMessage(m)
	require.NoError(t, err)

	require.Equal(t, cmdPortNew, msg.Command)
	require.True(t, msg.IsNew())
	require.Equal(t, "pci", msg.Bus)
	require.Equal(t, "0000:03:00.1", msg.Dev)
	require.EqualValues(t, 3, msg.PortIndex)
	require.Equal(t, portkind.PciVf, msg.Flavour)
	require.Equal(t, Uint32Absent, msg.Number)
	require.EqualValues(t, 0, msg.PciPfNumber)
	require.EqualValues(t, 1, msg.PciVfNumber)
	require.EqualValues(t, 1001, msg.NetdevIfindex)
	require.Equal(t, "pf0vf1", msg.NetdevName)
	require.Equal(t, [6]byte{0x00, 0x53, 0x00, 0x00, 0x00, 0x77}, msg.FuncEthAddr)
}

func TestDecodePortMessageDelete(t *testing.T) {
	ae := netlink.NewAttributeEncoder()
	ae.String(attrBusName, "pci")
	ae.String(attrDevName, "0000:03:00.1")
	ae.Uint16(attrPortFlavour, 4)
	ae.Uint16(attrPortPciPfNumber, 0)
	ae.Uint16(attrPortPciVfNumber, 1)
	b, err := ae.Encode()
	require.NoError(t, err)

	m := genetlink.Message{
		Header: genetlink.Header{Command: cmdPortDel},
		Data:   b,
	}

	msg, err := decodePortMessage(m)
	require.NoError(t, err)
	require.False(t, msg.IsNew())
	require.Equal(t, Uint32Absent, msg.NetdevIfindex)
}
