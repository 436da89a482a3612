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

package hostarch

import (
	"testing"
)

func TestRoundUpRoundDown(t *testing.T) {
	for _, test := range []struct {
		addr     Addr
		down, up Addr
		upOK     bool
	}{
		{addr: 0, down: 0, up: 0, upOK: true},
		{addr: 1, down: 0, up: PageSize, upOK: true},
		{addr: PageSize, down: PageSize, up: PageSize, upOK: true},
		{addr: 0x10000001, down: 0x10000000, up: 0x10001000, upOK: true},
		{addr: ^Addr(0), down: ^Addr(PageSize - 1), up: 0, upOK: false},
	} {
		if got := test.addr.RoundDown(); got != test.down {
			t.Errorf("%v.RoundDown() = %v, want %v", test.addr, got, test.down)
		}
		got, ok := test.addr.RoundUp()
		if ok != test.upOK || (ok && got != test.up) {
			t.Errorf("%v.RoundUp() = (%v, %t), want (%v, %t)", test.addr, got, ok, test.up, test.upOK)
		}
	}
}

func TestPageRange(t *testing.T) {
	for _, test := range []struct {
		name  string
		ar    AddrRange
		want  AddrRange
		pages uint64
	}{
		{
			name:  "exact page",
			ar:    AddrRange{0x10000000, 0x10001000},
			want:  AddrRange{0x10000000, 0x10001000},
			pages: 1,
		},
		{
			name:  "partial page rounds up",
			ar:    AddrRange{0x10000000, 0x10000001},
			want:  AddrRange{0x10000000, 0x10001000},
			pages: 1,
		},
		{
			name:  "straddles a boundary",
			ar:    AddrRange{0x10000ff0, 0x10001010},
			want:  AddrRange{0x10000000, 0x10002000},
			pages: 2,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			got, ok := test.ar.PageRange()
			if !ok {
				t.Fatalf("%v.PageRange() overflowed", test.ar)
			}
			if got != test.want {
				t.Errorf("%v.PageRange() = %v, want %v", test.ar, got, test.want)
			}
			if n := got.NumPages(); n != test.pages {
				t.Errorf("%v.NumPages() = %d, want %d", got, n, test.pages)
			}
		})
	}
}

func TestToRangeOverflow(t *testing.T) {
	if _, ok := Addr(^Addr(0) - 1).ToRange(PageSize); ok {
		t.Errorf("ToRange past the end of the address space succeeded")
	}
	ar, ok := Addr(0x1000).ToRange(0x2000)
	if !ok || ar != (AddrRange{0x1000, 0x3000}) {
		t.Errorf("ToRange got (%v, %t), want ([0x1000, 0x3000), true)", ar, ok)
	}
}

func TestAccessTypeSetOps(t *testing.T) {
	if got := Read.Union(Write); got != ReadWrite {
		t.Errorf("Read.Union(Write) = %v, want %v", got, ReadWrite)
	}
	if got := ReadWrite.Intersect(Execute); got.Any() {
		t.Errorf("ReadWrite.Intersect(Execute) = %v, want none", got)
	}
	if !AnyAccess.SupersetOf(ReadWrite) {
		t.Errorf("AnyAccess is not a superset of ReadWrite")
	}
	if Read.SupersetOf(Write) {
		t.Errorf("Read is a superset of Write")
	}
	if got, want := ReadWrite.String(), "rw-"; got != want {
		t.Errorf("ReadWrite.String() = %q, want %q", got, want)
	}
}
