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

package pfmac

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes a smart_nic/pf/config fixture and returns its path.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// TestS4CompatMacPF checks that the MAC line of the vendor's smart_nic
// compat file is parsed correctly regardless of surrounding whitespace.
func TestS4CompatMacPF(t *testing.T) {
	path := writeConfig(t, "DRIVER: mlx5\nMAC        : 00:53:00:00:00:51\nMAX_TX_SPEED: 0\n")
	mac, err := ReadPath(path)
	require.NoError(t, err)
	assert.Equal(t, [6]byte{0x00, 0x53, 0x00, 0x00, 0x00, 0x51}, mac)
}

func TestReadNoMacLine(t *testing.T) {
	path := writeConfig(t, "DRIVER: mlx5\n")
	_, err := ReadPath(path)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReadMalformed(t *testing.T) {
	path := writeConfig(t, "MAC: not-a-mac\n")
	_, err := ReadPath(path)
	assert.Error(t, err)
}

func TestReadFileAbsent(t *testing.T) {
	_, err := ReadPath(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
