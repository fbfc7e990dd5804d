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

// Package devlink is a generic-netlink client for the Linux devlink family,
// scoped to the port attributes this repository needs: bulk PORT_GET dumps
// and PORT_NEW/PORT_DEL multicast events on the "config" group. It does not
// attempt to cover the rest of the devlink protocol (health reporters,
// params, trap policers, ...).
package devlink

// Command values per include/uapi/linux/devlink.h's devlink_command
// enumeration.
const (
	cmdPortGet = 5
	cmdPortNew = 7
	cmdPortDel = 8
)

// Exported aliases of the PORT_NEW/PORT_DEL command values, for callers
// that build synthetic PortMsg values (tests, primarily) without a real
// genetlink reply to decode.
const (
	CmdPortNew = cmdPortNew
	CmdPortDel = cmdPortDel
)

// Attribute values per include/uapi/linux/devlink.h's devlink_attr
// enumeration, restricted to the ones this package decodes.
const (
	attrBusName          = 1
	attrDevName          = 2
	attrPortIndex        = 3
	attrPortNetdevIfindex = 6
	attrPortNetdevName   = 7
	attrPortFlavour      = 77
	attrPortNumber       = 78
	attrPortPciPfNumber  = 127
	attrPortPciVfNumber  = 128
	attrPortFunction     = 145
)

// Nested attributes of attrPortFunction, per devlink_port_function_attr.
const (
	attrPortFunctionHwAddr = 1
)

// multicastGroupName is the devlink multicast group that carries
// PORT_NEW/PORT_DEL notifications.
const multicastGroupName = "config"

// familyName is the generic-netlink family name devlink registers.
const familyName = "devlink"
