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

package porttable

import "errors"

// ErrNoPF is returned by UpdateEntry when a PciVf update arrives before its
// owning PF has been recorded. The caller is expected to log and drop the
// event; the VF is never stored as an orphan.
var ErrNoPF = errors.New("porttable: no PF on record for VF update")
