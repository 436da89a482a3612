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

// Package pagetables provides a per-address-space translation table from
// virtual page numbers to frames.
package pagetables

import (
	"fmt"

	"github.com/google/btree"
	"gvisor.dev/teachkernel/pkg/hostarch"
	"gvisor.dev/teachkernel/pkg/sentry/pgalloc"
)

// degree is the btree branching factor.
const degree = 16

// PTE is a single page table entry.
type PTE struct {
	// VPN is the virtual page number translated by this entry.
	VPN uint64

	// Frame is the frame backing the page.
	Frame pgalloc.FrameNumber

	// Flags are the page's capabilities.
	Flags Flags
}

// Addr returns the address of the first byte of the page.
func (p PTE) Addr() hostarch.Addr {
	return hostarch.AddrFromPageNumber(p.VPN)
}

// String implements fmt.Stringer.String.
func (p PTE) String() string {
	return fmt.Sprintf("%v->%v %v", p.Addr(), p.Frame, p.Flags)
}

func pteLess(a, b PTE) bool {
	return a.VPN < b.VPN
}

// PageTables is a page table for a single address space. Entries are kept
// ordered by virtual page number.
//
// PageTables is not safe for concurrent use; the owning MemoryManager
// serializes access.
type PageTables struct {
	tree *btree.BTreeG[PTE]
}

// New returns new, empty PageTables.
func New() *PageTables {
	return &PageTables{
		tree: btree.NewG[PTE](degree, pteLess),
	}
}

// Len returns the number of installed entries.
func (p *PageTables) Len() int {
	return p.tree.Len()
}

// Map installs pte. It returns false and leaves the table unchanged if
// pte.VPN is already mapped.
func (p *PageTables) Map(pte PTE) bool {
	if p.tree.Has(pte) {
		return false
	}
	p.tree.ReplaceOrInsert(pte)
	return true
}

// Unmap removes the entry for vpn, returning it.
func (p *PageTables) Unmap(vpn uint64) (PTE, bool) {
	return p.tree.Delete(PTE{VPN: vpn})
}

// Lookup returns the entry for vpn.
func (p *PageTables) Lookup(vpn uint64) (PTE, bool) {
	return p.tree.Get(PTE{VPN: vpn})
}

// Translate returns the entry for the page containing addr.
func (p *PageTables) Translate(addr hostarch.Addr) (PTE, bool) {
	return p.Lookup(addr.PageNumber())
}

// IsEmpty returns true if no page in [first, last) is mapped.
func (p *PageTables) IsEmpty(first, last uint64) bool {
	empty := true
	p.AscendRange(first, last, func(PTE) bool {
		empty = false
		return false
	})
	return empty
}

// Ascend calls fn for every entry in increasing VPN order until fn returns
// false.
func (p *PageTables) Ascend(fn func(PTE) bool) {
	p.tree.Ascend(btree.ItemIteratorG[PTE](fn))
}

// AscendRange calls fn for every entry with first <= VPN < last in
// increasing order until fn returns false.
func (p *PageTables) AscendRange(first, last uint64, fn func(PTE) bool) {
	p.tree.AscendRange(PTE{VPN: first}, PTE{VPN: last}, btree.ItemIteratorG[PTE](fn))
}

// Drain removes and returns every entry in increasing VPN order.
func (p *PageTables) Drain() []PTE {
	ptes := make([]PTE, 0, p.tree.Len())
	p.tree.Ascend(func(pte PTE) bool {
		ptes = append(ptes, pte)
		return true
	})
	p.tree.Clear(false)
	return ptes
}
