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
	"gvisor.dev/teachkernel/pkg/context"
	"gvisor.dev/teachkernel/pkg/errors/linuxerr"
	"gvisor.dev/teachkernel/pkg/hostarch"
	"gvisor.dev/teachkernel/pkg/ring0/pagetables"
	"gvisor.dev/teachkernel/pkg/sentry/pgalloc"
)

// MMap establishes an anonymous private mapping of the pages covering
// [start, start+length) with the given flags.
//
// MMap either maps every page or none: if any covered page is already
// mapped it fails with EEXIST, and if the frame allocator cannot supply a
// frame for every page it fails with ENOMEM.
func (mm *MemoryManager) MMap(ctx context.Context, start hostarch.Addr, length uint64, flags pagetables.Flags) error {
	if !start.IsPageAligned() {
		return linuxerr.EINVAL
	}
	if length == 0 {
		return linuxerr.EINVAL
	}
	if !flags.Valid {
		return linuxerr.EINVAL
	}
	ar, ok := start.ToRange(length)
	if !ok {
		return linuxerr.ENOMEM
	}
	ar, ok = ar.PageRange()
	if !ok || ar.Start < mm.layout.MinAddr || ar.End > mm.layout.MaxAddr {
		return linuxerr.ENOMEM
	}
	first, last := ar.Start.PageNumber(), ar.End.PageNumber()

	mm.mu.Lock()
	defer mm.mu.Unlock()

	if !mm.pt.IsEmpty(first, last) {
		ctx.Debugf("mmap %v: range overlaps an existing mapping", ar)
		return linuxerr.EEXIST
	}
	// Acquire every frame before touching the page table, so that running
	// out of frames leaves the address space untouched.
	frames, err := mm.mf.AllocateN(int(last - first))
	if err != nil {
		ctx.Debugf("mmap %v: %v", ar, err)
		return err
	}
	for i, fn := range frames {
		vpn := first + uint64(i)
		if !mm.pt.Map(pagetables.PTE{VPN: vpn, Frame: fn, Flags: flags}) {
			panic("mmap: page table changed while locked at " + hostarch.AddrFromPageNumber(vpn).String())
		}
	}
	ctx.Debugf("mmap %v %v: %d pages", ar, flags, len(frames))
	return nil
}

// MUnmap removes the mappings of every page covering [start, start+length).
// start need not be page aligned; the page containing it is the first page
// unmapped.
//
// MUnmap either unmaps every page or none: if any covered page is not mapped
// it fails with EFAULT.
func (mm *MemoryManager) MUnmap(ctx context.Context, start hostarch.Addr, length uint64) error {
	if length == 0 {
		return linuxerr.EINVAL
	}
	ar, ok := start.ToRange(length)
	if !ok {
		return linuxerr.EINVAL
	}
	ar, ok = ar.PageRange()
	if !ok {
		return linuxerr.EINVAL
	}
	first, last := ar.Start.PageNumber(), ar.End.PageNumber()

	mm.mu.Lock()
	defer mm.mu.Unlock()

	var mapped uint64
	mm.pt.AscendRange(first, last, func(pagetables.PTE) bool {
		mapped++
		return true
	})
	if mapped != last-first {
		ctx.Debugf("munmap %v: %d of %d pages are unmapped", ar, last-first-mapped, last-first)
		return linuxerr.EFAULT
	}

	frames := make([]pgalloc.FrameNumber, 0, last-first)
	for vpn := first; vpn < last; vpn++ {
		pte, ok := mm.pt.Unmap(vpn)
		if !ok {
			panic("munmap: page table changed while locked at " + hostarch.AddrFromPageNumber(vpn).String())
		}
		frames = append(frames, pte.Frame)
	}
	mm.mf.FreeAll(frames)
	ctx.Debugf("munmap %v: %d pages", ar, len(frames))
	return nil
}

// Release removes every mapping in mm and returns their frames to the
// allocator. It is called when the owning task exits.
func (mm *MemoryManager) Release(ctx context.Context) {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	ptes := mm.pt.Drain()
	if len(ptes) == 0 {
		return
	}
	frames := make([]pgalloc.FrameNumber, len(ptes))
	for i, pte := range ptes {
		frames[i] = pte.Frame
	}
	mm.mf.FreeAll(frames)
	ctx.Debugf("released %d pages", len(frames))
}
