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

// Package ktime provides an API for clocks implemented by the sentry.
package ktime

import (
	"fmt"
	"math"
	"time"
)

// Time represents an instant in time with nanosecond precision.
//
// Time may represent time with respect to any clock and may not have any
// meaning in the real world.
type Time struct {
	ns int64
}

var (
	// MaxTime is the highest possible time that can be represented by
	// Time.
	MaxTime = Time{ns: math.MaxInt64}

	// ZeroTime represents the zero time in an unspecified Clock's domain.
	ZeroTime = Time{ns: 0}
)

// FromNanoseconds returns a Time representing the point ns nanoseconds after
// an unspecified Clock's zero time.
func FromNanoseconds(ns int64) Time {
	return Time{ns}
}

// FromMicroseconds returns a Time representing the point us microseconds
// after an unspecified Clock's zero time.
func FromMicroseconds(us int64) Time {
	if us > math.MaxInt64/1000 {
		return MaxTime
	}
	if us < math.MinInt64/1000 {
		return Time{math.MinInt64}
	}
	return Time{us * 1000}
}

// Nanoseconds returns nanoseconds elapsed since the zero time in t's Clock
// domain.
func (t Time) Nanoseconds() int64 {
	return t.ns
}

// Microseconds returns microseconds elapsed since the zero time in t's Clock
// domain.
func (t Time) Microseconds() int64 {
	return t.ns / 1000
}

// Milliseconds returns milliseconds elapsed since the zero time in t's Clock
// domain.
func (t Time) Milliseconds() int64 {
	return t.ns / 1000000
}

// Add adds the duration of d to t.
func (t Time) Add(d time.Duration) Time {
	if t.ns > 0 && d.Nanoseconds() > math.MaxInt64-t.ns {
		return MaxTime
	}
	return Time{t.ns + d.Nanoseconds()}
}

// Before reports whether the instant t is before the instant u.
func (t Time) Before(u Time) bool {
	return t.ns < u.ns
}

// Sub returns the duration of t - u.
func (t Time) Sub(u Time) time.Duration {
	return time.Duration(t.ns - u.ns)
}

// String returns the time represented in nanoseconds as a string.
func (t Time) String() string {
	return fmt.Sprintf("%dns", t.Nanoseconds())
}

// A Clock is an abstract time source. Successive calls to Now never go
// backwards.
type Clock interface {
	// Now returns the current time in nanoseconds according to the Clock.
	Now() Time
}

// NowMicroseconds returns the current time of c in microseconds.
func NowMicroseconds(c Clock) uint64 {
	if now := c.Now(); now.ns > 0 {
		return uint64(now.Microseconds())
	}
	return 0
}
