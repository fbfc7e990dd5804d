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

// Package legacyrep resolves a VF's representor netdev name through the
// sysfs/sriovnet path the CNI used before devlink port tracking existed.
// Its only caller is vifrepctl's check command (see cmd/vifrepctl), which
// prints the name this path resolves; it does not compare it with the
// devlink-backed plugprovider answer.
package legacyrep

import (
	"fmt"

	"github.com/k8snetworkplumbingwg/sriovnet"
)

// ByPCIAddress resolves a VF's representor netdev name from its PCI
// address, the way the original CNI plugin resolved it for CmdAdd: by
// walking the PF uplink representor and VF index rather than by devlink
// port attributes.
func ByPCIAddress(deviceID string) (string, error) {
	uplink, err := sriovnet.GetUplinkRepresentor(deviceID)
	if err != nil {
		return "", fmt.Errorf("legacyrep: uplink representor for %s: %w", deviceID, err)
	}

	vfIndex, err := sriovnet.GetVfIndexByPciAddress(deviceID)
	if err != nil {
		return "", fmt.Errorf("legacyrep: vf index for %s: %w", deviceID, err)
	}

	rep, err := sriovnet.GetVfRepresentor(uplink, vfIndex)
	if err != nil {
		return "", fmt.Errorf("legacyrep: vf representor for %s on %s: %w", deviceID, uplink, err)
	}

	return rep, nil
}
