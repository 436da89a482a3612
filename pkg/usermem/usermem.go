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

// Package usermem governs access to user memory.
package usermem

import (
	"gvisor.dev/teachkernel/pkg/context"
	"gvisor.dev/teachkernel/pkg/hostarch"
	"gvisor.dev/teachkernel/pkg/marshal"
)

// IO provides access to the contents of a virtual memory space.
//
// Kernel code never dereferences a user address directly; every access goes
// through an IO, which resolves the address through the owning page table.
type IO interface {
	// CopyOut copies len(src) bytes from src to the memory mapped at addr. It
	// returns the number of bytes copied. If the number of bytes copied is <
	// len(src), it returns a non-nil error explaining why.
	//
	// Preconditions: The caller must not hold mm.MemoryManager.mu or any
	// following locks in the lock order.
	CopyOut(ctx context.Context, addr hostarch.Addr, src []byte, opts IOOpts) (int, error)

	// CopyIn copies len(dst) bytes from the memory mapped at addr to dst.
	// It returns the number of bytes copied. If the number of bytes copied is
	// < len(dst), it returns a non-nil error explaining why.
	//
	// Preconditions: Same as IO.CopyOut.
	CopyIn(ctx context.Context, addr hostarch.Addr, dst []byte, opts IOOpts) (int, error)
}

// IOOpts contains options applicable to all IO methods.
type IOOpts struct {
	// If IgnorePermissions is true, application-defined memory protections set
	// by mmap(2) are ignored. Only the kernel's own debugging paths set it.
	IgnorePermissions bool
}

// ioCopyContext adapts an IO to marshal.CopyContext.
type ioCopyContext struct {
	ctx  context.Context
	io   IO
	opts IOOpts
}

// CopyScratchBuffer implements marshal.CopyContext.CopyScratchBuffer.
func (i *ioCopyContext) CopyScratchBuffer(size int) []byte {
	return make([]byte, size)
}

// CopyOutBytes implements marshal.CopyContext.CopyOutBytes.
func (i *ioCopyContext) CopyOutBytes(addr hostarch.Addr, src []byte) (int, error) {
	return i.io.CopyOut(i.ctx, addr, src, i.opts)
}

// CopyInBytes implements marshal.CopyContext.CopyInBytes.
func (i *ioCopyContext) CopyInBytes(addr hostarch.Addr, dst []byte) (int, error) {
	return i.io.CopyIn(i.ctx, addr, dst, i.opts)
}

// CopyObjectOut copies a fixed-size value or slice of fixed-size values from
// src to the memory mapped at addr in uio. It returns the number of bytes
// copied.
func CopyObjectOut(ctx context.Context, uio IO, addr hostarch.Addr, src marshal.Marshallable, opts IOOpts) (int, error) {
	return src.CopyOut(&ioCopyContext{ctx: ctx, io: uio, opts: opts}, addr)
}

// CopyObjectIn copies a fixed-size value or slice of fixed-size values from
// the memory mapped at addr in uio to dst. It returns the number of bytes
// copied.
func CopyObjectIn(ctx context.Context, uio IO, addr hostarch.Addr, dst marshal.Marshallable, opts IOOpts) (int, error) {
	return dst.CopyIn(&ioCopyContext{ctx: ctx, io: uio, opts: opts}, addr)
}
