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

package plugprovider

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ovn-org/ovn-vif/pkg/devlink"
	"github.com/ovn-org/ovn-vif/pkg/portkind"
	"github.com/ovn-org/ovn-vif/pkg/porttable"
)

func TestPlugProvider(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "plugprovider suite")
}

// seedProvider builds a Provider with no real sockets attached, populated
// directly through applyPortMsg the way Init populates it from a bulk
// dump. This is how the facade is exercised without a live devlink family.
func seedProvider() *Provider {
	p := New()

	p.applyPortMsg(&devlink.PortMsg{
		Command:       devlink.CmdPortNew,
		Bus:           "pci",
		Dev:           "0000:03:00.0",
		Flavour:       portkind.Physical,
		Number:        0,
		PciPfNumber:   devlink.Uint32Absent,
		PciVfNumber:   devlink.Uint32Absent,
		NetdevIfindex: 10,
		NetdevName:    "p0",
	}, porttable.Dump)

	p.applyPortMsg(&devlink.PortMsg{
		Command:       devlink.CmdPortNew,
		Bus:           "pci",
		Dev:           "0000:03:00.0",
		Flavour:       portkind.PciPf,
		Number:        devlink.Uint32Absent,
		PciPfNumber:   0,
		PciVfNumber:   devlink.Uint32Absent,
		NetdevIfindex: 100,
		NetdevName:    "p0hpf",
		FuncEthAddr:   [6]byte{0x00, 0x53, 0x00, 0x00, 0x00, 0x42},
	}, porttable.Dump)

	p.applyPortMsg(&devlink.PortMsg{
		Command:       devlink.CmdPortNew,
		Bus:           "pci",
		Dev:           "0000:03:00.0",
		Flavour:       portkind.PciVf,
		Number:        devlink.Uint32Absent,
		PciPfNumber:   0,
		PciVfNumber:   0,
		NetdevIfindex: 1000,
		NetdevName:    "pf0vf0",
	}, porttable.Dump)

	return p
}

var _ = Describe("Provider.Prepare", func() {
	var p *Provider

	BeforeEach(func() {
		p = seedProvider()
	})

	It("resolves a known PF MAC and VF number to its representor name", func() {
		result := p.Prepare(Add, "foo1", map[string]string{
			optPFMac: "00:53:00:00:00:42",
			optVFNum: "0",
		})
		Expect(result.Status).To(Equal(Found))
		Expect(result.Name).To(Equal("pf0vf0"))
	})

	It("reports not found for an unknown VF number on a known PF", func() {
		result := p.Prepare(Add, "foo1", map[string]string{
			optPFMac: "00:53:00:00:00:42",
			optVFNum: "1",
		})
		Expect(result.Status).To(Equal(NotFound))
	})

	It("reports not found when the pf-mac option is missing", func() {
		result := p.Prepare(Add, "foo1", map[string]string{
			optVFNum: "0",
		})
		Expect(result.Status).To(Equal(NotFound))
	})

	It("reports not found when the vf-num option is missing", func() {
		result := p.Prepare(Add, "foo1", map[string]string{
			optPFMac: "00:53:00:00:00:42",
		})
		Expect(result.Status).To(Equal(NotFound))
	})

	It("reports not found for a malformed pf-mac", func() {
		result := p.Prepare(Add, "foo1", map[string]string{
			optPFMac: "not-a-mac",
			optVFNum: "0",
		})
		Expect(result.Status).To(Equal(NotFound))
	})

	It("skips remove operations without touching the table", func() {
		result := p.Prepare(Remove, "foo1", map[string]string{
			optPFMac: "00:53:00:00:00:42",
			optVFNum: "0",
		})
		Expect(result.Status).To(Equal(Skip))
	})
})

var _ = Describe("applyPortMsg", func() {
	It("drops a PciVf update for a PF that was never seen", func() {
		p := New()
		changed := p.applyPortMsg(&devlink.PortMsg{
			Command:       devlink.CmdPortNew,
			Bus:           "pci",
			Dev:           "0000:03:00.0",
			Flavour:       portkind.PciVf,
			PciPfNumber:   0,
			PciVfNumber:   0,
			NetdevIfindex: 1000,
			NetdevName:    "pf0vf0",
		}, porttable.Dump)
		Expect(changed).To(BeFalse())
	})

	It("removes a record on a PORT_DEL message", func() {
		p := seedProvider()
		changed := p.applyPortMsg(&devlink.PortMsg{
			Command:     devlink.CmdPortDel,
			Bus:         "pci",
			Dev:         "0000:03:00.0",
			Flavour:     portkind.PciVf,
			PciPfNumber: 0,
			PciVfNumber: 0,
		}, porttable.Runtime)
		Expect(changed).To(BeTrue())

		result := p.Prepare(Add, "foo1", map[string]string{
			optPFMac: "00:53:00:00:00:42",
			optVFNum: "0",
		})
		Expect(result.Status).To(Equal(NotFound))
	})
})
