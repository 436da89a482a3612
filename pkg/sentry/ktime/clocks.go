// Copyright 2026 The gVisor Authors.
//
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

package ktime

import (
	"sync/atomic"
	"time"
)

// HostClock is a Clock driven by the host's monotonic clock. Its zero time
// is the instant it was created.
type HostClock struct {
	start time.Time

	// last is the greatest value Now has returned, in nanoseconds.
	last atomic.Int64
}

// NewHostClock returns a HostClock reading zero now.
func NewHostClock() *HostClock {
	return &HostClock{start: time.Now()}
}

// Now implements Clock.Now.
func (c *HostClock) Now() Time {
	ns := int64(time.Since(c.start))
	for {
		last := c.last.Load()
		if ns <= last {
			return Time{last}
		}
		if c.last.CompareAndSwap(last, ns) {
			return Time{ns}
		}
	}
}

// ManualClock is a Clock that only advances when told to. The zero value
// reads the zero time.
type ManualClock struct {
	now atomic.Int64
}

// Now implements Clock.Now.
func (c *ManualClock) Now() Time {
	return Time{c.now.Load()}
}

// Advance moves the clock forward by d. Negative durations are ignored.
func (c *ManualClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	for {
		cur := c.now.Load()
		next := Time{cur}.Add(d).ns
		if c.now.CompareAndSwap(cur, next) {
			return
		}
	}
}
