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

// Package repcache tracks when vifrepd last forced a full devlink dump.
// It exists so the poll loop can jitter a full resync on top of the
// normal incremental Run() drain, instead of trusting the incremental
// path forever.
package repcache

import "time"

// Cache is the last-resync bookkeeping for one vifrepd process.
type Cache struct {
	lastResyncTime time.Time
	lastCount      int
}

// Refresh records that a full resync just completed with count live
// records.
func (c *Cache) Refresh(count int) {
	c.lastCount = count
	c.lastResyncTime = time.Now()
}

// LastResyncTime returns the last time Refresh was called. The zero
// value forces an immediate resync on first use.
func (c *Cache) LastResyncTime() time.Time {
	return c.lastResyncTime
}

// LastCount returns the live record count as of the last resync.
func (c *Cache) LastCount() int {
	return c.lastCount
}
