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

package pagetables

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gvisor.dev/teachkernel/pkg/hostarch"
)

var rw = UserValid.Union(FlagRead).Union(FlagWrite)

type mapping struct {
	vpn   uint64
	frame uint32
	flags Flags
}

func checkMappings(t *testing.T, pt *PageTables, want []mapping) {
	t.Helper()
	var got []mapping
	pt.Ascend(func(pte PTE) bool {
		got = append(got, mapping{pte.VPN, uint32(pte.Frame), pte.Flags})
		return true
	})
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(mapping{})); diff != "" {
		t.Errorf("mappings mismatch (-want +got):\n%s", diff)
	}
}

func TestMapUnmap(t *testing.T) {
	pt := New()
	for _, vpn := range []uint64{0x10002, 0x10000, 0x10001} {
		if !pt.Map(PTE{VPN: vpn, Frame: 7, Flags: rw}) {
			t.Fatalf("Map(%#x) failed on empty slot", vpn)
		}
	}
	checkMappings(t, pt, []mapping{
		{0x10000, 7, rw},
		{0x10001, 7, rw},
		{0x10002, 7, rw},
	})

	if pt.Map(PTE{VPN: 0x10001, Frame: 9, Flags: UserValid}) {
		t.Errorf("Map over an existing entry succeeded")
	}
	if pte, ok := pt.Lookup(0x10001); !ok || pte.Frame != 7 {
		t.Errorf("Lookup(0x10001) = (%v, %v), want frame 7", pte, ok)
	}

	if _, ok := pt.Unmap(0x10001); !ok {
		t.Errorf("Unmap(0x10001) found nothing")
	}
	if _, ok := pt.Unmap(0x10001); ok {
		t.Errorf("second Unmap(0x10001) found an entry")
	}
	checkMappings(t, pt, []mapping{
		{0x10000, 7, rw},
		{0x10002, 7, rw},
	})
}

func TestTranslate(t *testing.T) {
	pt := New()
	pt.Map(PTE{VPN: 0x10000, Frame: 3, Flags: rw})
	pte, ok := pt.Translate(hostarch.Addr(0x10000fff))
	if !ok || pte.Frame != 3 {
		t.Errorf("Translate(0x10000fff) = (%v, %v), want frame 3", pte, ok)
	}
	if _, ok := pt.Translate(hostarch.Addr(0x10001000)); ok {
		t.Errorf("Translate(0x10001000) found an entry")
	}
}

func TestIsEmpty(t *testing.T) {
	pt := New()
	pt.Map(PTE{VPN: 5, Flags: rw})
	for _, tc := range []struct {
		first, last uint64
		want        bool
	}{
		{0, 5, true},
		{0, 6, false},
		{5, 6, false},
		{6, 100, true},
	} {
		if got := pt.IsEmpty(tc.first, tc.last); got != tc.want {
			t.Errorf("IsEmpty(%d, %d) = %v, want %v", tc.first, tc.last, got, tc.want)
		}
	}
}

func TestDrain(t *testing.T) {
	pt := New()
	pt.Map(PTE{VPN: 2, Frame: 1, Flags: rw})
	pt.Map(PTE{VPN: 1, Frame: 0, Flags: rw})
	got := pt.Drain()
	want := []PTE{{VPN: 1, Frame: 0, Flags: rw}, {VPN: 2, Frame: 1, Flags: rw}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Drain() mismatch (-want +got):\n%s", diff)
	}
	if pt.Len() != 0 {
		t.Errorf("Len() after Drain = %d, want 0", pt.Len())
	}
}

func TestFlags(t *testing.T) {
	for _, tc := range []struct {
		flags Flags
		port  uint64
		str   string
	}{
		{UserValid.Union(FlagRead), 0b001, "Vr--U"},
		{rw, 0b011, "Vrw-U"},
		{UserValid.Union(FlagExecute), 0b100, "V--xU"},
		{NoFlags, 0, "-----"},
	} {
		if got := tc.flags.Port(); got != tc.port {
			t.Errorf("%v.Port() = %#b, want %#b", tc.flags, got, tc.port)
		}
		if got := tc.flags.String(); got != tc.str {
			t.Errorf("String() = %q, want %q", got, tc.str)
		}
	}

	need := UserValid.Union(FlagWrite)
	if !rw.SupersetOf(need) {
		t.Errorf("%v.SupersetOf(%v) = false", rw, need)
	}
	ro := UserValid.Union(FlagRead)
	if ro.SupersetOf(need) {
		t.Errorf("%v.SupersetOf(%v) = true", ro, need)
	}
	if got := rw.Intersect(ro); got != ro {
		t.Errorf("Intersect = %v, want %v", got, ro)
	}
}
