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

// vifrepctl is an operator diagnostic tool: it dumps the live devlink port
// table, and its check command prints the representor name that the legacy
// sysfs/sriovnet resolution path gives for a PCI VF address. check does not
// compare that name with the devlink-backed answer, and it does not use its
// second (PF device id) argument.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"

	"github.com/ovn-org/ovn-vif/pkg/devlink"
	"github.com/ovn-org/ovn-vif/pkg/legacyrep"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "dump":
		err = runDump()
	case "check":
		if len(args) != 3 {
			usage()
			os.Exit(2)
		}
		err = runCheck(args[1], args[2])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		glog.Errorf("%v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: vifrepctl dump")
	fmt.Fprintln(os.Stderr, "       vifrepctl check <pci-vf-address> <pci-pf-device-id>")
}

func runDump() error {
	fam, err := devlink.ResolveFamily()
	if err != nil {
		return fmt.Errorf("resolve devlink family: %w", err)
	}

	msgs, err := fam.Dump()
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	for _, m := range msgs {
		fmt.Printf("%-10s bus=%-6s dev=%-16s flavour=%-10s number=%-6d ifindex=%-8d name=%s\n",
			"PORT_NEW", m.Bus, m.Dev, m.Flavour, m.Number, m.NetdevIfindex, m.NetdevName)
	}
	return nil
}

func runCheck(pciVFAddress, pciPFDeviceID string) error {
	rep, err := legacyrep.ByPCIAddress(pciVFAddress)
	if err != nil {
		return fmt.Errorf("legacy resolution for %s: %w", pciVFAddress, err)
	}
	fmt.Printf("legacy representor for %s: %s\n", pciVFAddress, rep)
	return nil
}
