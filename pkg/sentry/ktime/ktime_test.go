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
	"math"
	"sync"
	"testing"
	"time"

	"gvisor.dev/teachkernel/pkg/abi/linux"
)

func TestManualClock(t *testing.T) {
	var c ManualClock
	if got := c.Now(); got != ZeroTime {
		t.Errorf("zero-value ManualClock: Now() = %v, want 0", got)
	}
	c.Advance(1500 * time.Millisecond)
	if got, want := NowMicroseconds(&c), uint64(1500000); got != want {
		t.Errorf("after Advance: NowMicroseconds() = %d, want %d", got, want)
	}
	c.Advance(-time.Second)
	if got, want := c.Now(), FromMicroseconds(1500000); got != want {
		t.Errorf("after negative Advance: Now() = %v, want %v", got, want)
	}
	if got, want := linux.TimevalFromMicros(NowMicroseconds(&c)), (linux.Timeval{Sec: 1, Usec: 500000}); got != want {
		t.Errorf("Timeval() = %+v, want %+v", got, want)
	}
}

func TestHostClockNonDecreasing(t *testing.T) {
	c := NewHostClock()
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prev := c.Now()
			for i := 0; i < 1000; i++ {
				now := c.Now()
				if now.Before(prev) {
					t.Errorf("Now() went backwards: %v then %v", prev, now)
					return
				}
				prev = now
			}
		}()
	}
	wg.Wait()
}

func TestTimeArithmetic(t *testing.T) {
	a := FromMicroseconds(2500)
	if got := a.Milliseconds(); got != 2 {
		t.Errorf("Milliseconds() = %d, want 2", got)
	}
	b := a.Add(time.Millisecond)
	if got := b.Sub(a); got != time.Millisecond {
		t.Errorf("Sub() = %v, want %v", got, time.Millisecond)
	}
	if got := MaxTime.Add(time.Second); got != MaxTime {
		t.Errorf("MaxTime.Add() = %v, want MaxTime", got)
	}
}

func TestFromMicrosecondsClamps(t *testing.T) {
	for _, tc := range []struct {
		us   int64
		want Time
	}{
		{us: 0, want: ZeroTime},
		{us: 3000250, want: FromNanoseconds(3000250000)},
		{us: math.MaxInt64 / 1000, want: FromNanoseconds(math.MaxInt64 / 1000 * 1000)},
		{us: math.MaxInt64/1000 + 1, want: MaxTime},
		{us: math.MaxInt64, want: MaxTime},
		{us: math.MinInt64, want: FromNanoseconds(math.MinInt64)},
	} {
		if got := FromMicroseconds(tc.us); got != tc.want {
			t.Errorf("FromMicroseconds(%d) = %v, want %v", tc.us, got, tc.want)
		}
	}
}

func TestNowMicroseconds(t *testing.T) {
	var c ManualClock
	if got := NowMicroseconds(&c); got != 0 {
		t.Errorf("NowMicroseconds() = %d, want 0", got)
	}
	c.Advance(3*time.Second + 250*time.Microsecond + 999*time.Nanosecond)
	if got, want := NowMicroseconds(&c), uint64(3000250); got != want {
		t.Errorf("NowMicroseconds() = %d, want %d", got, want)
	}
}
