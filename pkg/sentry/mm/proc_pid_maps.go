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

package mm

import (
	"bytes"
	"fmt"

	"gvisor.dev/teachkernel/pkg/hostarch"
	"gvisor.dev/teachkernel/pkg/ring0/pagetables"
)

// Mapping is a maximal run of contiguous pages sharing the same flags.
type Mapping struct {
	Range hostarch.AddrRange
	Flags pagetables.Flags
}

// String returns a /proc/[pid]/maps entry for m, without the trailing
// newline. Every mapping is anonymous and private.
func (m Mapping) String() string {
	return fmt.Sprintf("%08x-%08x %sp 00000000 00:00 0", uintptr(m.Range.Start), uintptr(m.Range.End), m.Flags.AccessType)
}

// Mappings returns the mappings of mm in increasing address order.
func (mm *MemoryManager) Mappings() []Mapping {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	var ms []Mapping
	mm.pt.Ascend(func(pte pagetables.PTE) bool {
		ar := hostarch.AddrRange{Start: pte.Addr(), End: pte.Addr() + hostarch.PageSize}
		if n := len(ms); n > 0 && ms[n-1].Range.End == ar.Start && ms[n-1].Flags == pte.Flags {
			ms[n-1].Range.End = ar.End
			return true
		}
		ms = append(ms, Mapping{Range: ar, Flags: pte.Flags})
		return true
	})
	return ms
}

// String returns the contents mm would present as /proc/[pid]/maps.
func (mm *MemoryManager) String() string {
	var b bytes.Buffer
	for _, m := range mm.Mappings() {
		b.WriteString(m.String())
		b.WriteByte('\n')
	}
	return b.String()
}
