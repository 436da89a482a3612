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
	"gvisor.dev/teachkernel/pkg/usermem"
)

// CheckIORange is similar to hostarch.Addr.ToRange, but also requires the
// range to lie below the top of the user address space.
//
// Preconditions: length >= 0.
func (mm *MemoryManager) CheckIORange(addr hostarch.Addr, length int64) (hostarch.AddrRange, bool) {
	ar, ok := addr.ToRange(uint64(length))
	return ar, (ok && ar.End <= mm.layout.MaxAddr)
}

// required returns the flags a page must carry to permit at.
func required(at hostarch.AccessType, opts usermem.IOOpts) pagetables.Flags {
	if opts.IgnorePermissions {
		return pagetables.FlagValid
	}
	return pagetables.UserValid.Union(pagetables.Flags{AccessType: at})
}

// chunk is a page-bounded piece of a copy.
type chunk struct {
	// data is the destination or source slice within a frame.
	data []byte

	// off is the offset of this chunk within the caller's buffer.
	off int
}

// resolveLocked translates every page of ar, returning one chunk per page.
// If any page is unmapped or lacks need, resolveLocked returns EFAULT and no
// chunks.
//
// Preconditions: mm.mu must be locked. ar.Length() > 0.
func (mm *MemoryManager) resolveLocked(ar hostarch.AddrRange, need pagetables.Flags) ([]chunk, error) {
	var chunks []chunk
	for addr := ar.Start; addr < ar.End; {
		pte, ok := mm.pt.Translate(addr)
		if !ok || !pte.Flags.SupersetOf(need) {
			return nil, linuxerr.EFAULT
		}
		next := addr.RoundDown() + hostarch.PageSize
		if next > ar.End || next < addr {
			next = ar.End
		}
		pageOff := addr.PageOffset()
		chunks = append(chunks, chunk{
			data: mm.mf.Data(pte.Frame)[pageOff : pageOff+uint64(next-addr)],
			off:  int(addr - ar.Start),
		})
		addr = next
	}
	return chunks, nil
}

// CopyOut implements usermem.IO.CopyOut.
//
// Every destination page is resolved before any byte is written; if any page
// is unmapped or not writable, nothing is written and CopyOut returns
// (0, EFAULT).
func (mm *MemoryManager) CopyOut(ctx context.Context, addr hostarch.Addr, src []byte, opts usermem.IOOpts) (int, error) {
	ar, ok := mm.CheckIORange(addr, int64(len(src)))
	if !ok {
		return 0, linuxerr.EFAULT
	}
	if len(src) == 0 {
		return 0, nil
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()
	chunks, err := mm.resolveLocked(ar, required(hostarch.Write, opts))
	if err != nil {
		ctx.Debugf("copy out to %v: %v", ar, err)
		return 0, err
	}
	var n int
	for _, c := range chunks {
		n += copy(c.data, src[c.off:])
	}
	return n, nil
}

// CopyIn implements usermem.IO.CopyIn.
//
// As with CopyOut, the whole source range is validated before any byte is
// read.
func (mm *MemoryManager) CopyIn(ctx context.Context, addr hostarch.Addr, dst []byte, opts usermem.IOOpts) (int, error) {
	ar, ok := mm.CheckIORange(addr, int64(len(dst)))
	if !ok {
		return 0, linuxerr.EFAULT
	}
	if len(dst) == 0 {
		return 0, nil
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()
	chunks, err := mm.resolveLocked(ar, required(hostarch.Read, opts))
	if err != nil {
		ctx.Debugf("copy in from %v: %v", ar, err)
		return 0, err
	}
	var n int
	for _, c := range chunks {
		n += copy(dst[c.off:], c.data)
	}
	return n, nil
}
