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

// Package pfmac recovers the host-visible PF MAC address from the
// smart-NIC vendor's sysfs compatibility file, for kernels whose devlink
// implementation does not yet expose the function's Ethernet address.
//
// The file is a plain fixed-format key/value text listing, not JSON or
// netlink, so the scan below is stdlib only: bufio plus strings.Cut.
package pfmac

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

// ErrNotFound is returned when the config file exists but carries no MAC
// line.
var ErrNotFound = errors.New("pfmac: no MAC line found")

const sysfsConfigPath = "/sys/class/net/%s/smart_nic/pf/config"

// Read opens the vendor compat file for physical port netdev phy and
// returns the PF MAC address it finds on the line whose key begins "MAC".
// A missing file, a missing line, or a malformed value are all definite
// failures: the caller is expected to zero the MAC and proceed without the
// fallback.
func Read(phy string) ([6]byte, error) {
	return ReadPath(fmt.Sprintf(sysfsConfigPath, phy))
}

// ReadPath is Read with an explicit file path; the tests call it directly.
func ReadPath(path string) ([6]byte, error) {
	var mac [6]byte

	f, err := os.Open(path)
	if err != nil {
		return mac, fmt.Errorf("pfmac: cannot open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		if len(key) < 3 || key[:3] != "MAC" {
			continue
		}
		hw, err := net.ParseMAC(strings.TrimSpace(value))
		if err != nil {
			return mac, fmt.Errorf("pfmac: malformed MAC value %q: %w", value, err)
		}
		if len(hw) != 6 {
			return mac, fmt.Errorf("pfmac: MAC value %q has length %d, want 6", value, len(hw))
		}
		copy(mac[:], hw)
		return mac, nil
	}
	if err := scanner.Err(); err != nil {
		return mac, fmt.Errorf("pfmac: error reading %s: %w", path, err)
	}

	return mac, ErrNotFound
}
