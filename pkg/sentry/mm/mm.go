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

// Package mm provides a memory management subsystem.
//
// Each task owns one MemoryManager. All application memory is anonymous and
// private, backed by frames from a shared pgalloc.MemoryFile, and reachable
// from the kernel only through MemoryManager.CopyOut and CopyIn.
//
// Lock order:
//
//	MemoryManager.mu
//	  pgalloc.MemoryFile.mu
package mm

import (
	"gvisor.dev/teachkernel/pkg/hostarch"
	"gvisor.dev/teachkernel/pkg/ring0/pagetables"
	"gvisor.dev/teachkernel/pkg/sentry/pgalloc"
	"gvisor.dev/teachkernel/pkg/sync"
)

// Layout describes the part of the address space available to a task.
type Layout struct {
	// MinAddr is the lowest mappable address.
	MinAddr hostarch.Addr

	// MaxAddr is the exclusive upper bound of mappable addresses.
	MaxAddr hostarch.Addr
}

// DefaultLayout spans the low 256 GiB of the address space.
var DefaultLayout = Layout{
	MinAddr: 0,
	MaxAddr: 1 << 38,
}

// MemoryManager implements a virtual address space.
type MemoryManager struct {
	// mf is the frame allocator backing every mapping. mf is immutable.
	mf *pgalloc.MemoryFile

	// layout is immutable.
	layout Layout

	// mu serializes page table mutation and copies through it.
	mu sync.Mutex

	// pt translates the task's pages to frames.
	//
	// +checklocks:mu
	pt *pagetables.PageTables
}

// NewMemoryManager returns a new, empty MemoryManager whose pages are backed
// by frames from mf.
func NewMemoryManager(mf *pgalloc.MemoryFile, layout Layout) *MemoryManager {
	return &MemoryManager{
		mf:     mf,
		layout: layout,
		pt:     pagetables.New(),
	}
}

// Layout returns the address space bounds of mm.
func (mm *MemoryManager) Layout() Layout {
	return mm.layout
}

// MemoryFile returns the frame allocator backing mm.
func (mm *MemoryManager) MemoryFile() *pgalloc.MemoryFile {
	return mm.mf
}

// UsagePages returns the number of mapped pages.
func (mm *MemoryManager) UsagePages() uint64 {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return uint64(mm.pt.Len())
}

// Translate returns the page table entry covering addr.
func (mm *MemoryManager) Translate(addr hostarch.Addr) (pagetables.PTE, bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	return mm.pt.Translate(addr)
}
