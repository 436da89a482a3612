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

// Package marshal defines the Marshallable interface for serialize/deserializing
// Go data structures to/from memory, according to the kernel's ABI.
//
// Every structure that crosses the kernel/user boundary has a fixed field
// order and width and is laid out in hostarch.ByteOrder.
package marshal

import (
	"gvisor.dev/teachkernel/pkg/hostarch"
)

// CopyContext defines the memory operations required to marshal to and from
// user memory. Typically, kernel.Task is used to provide implementations for
// these operations.
type CopyContext interface {
	// CopyScratchBuffer provides a task goroutine-local scratch buffer. See
	// kernel.CopyScratchBuffer.
	CopyScratchBuffer(size int) []byte

	// CopyOutBytes copies len(b) bytes from b to the memory mapped at addr in
	// the task's address space, resolving every destination page through
	// the task's page table.
	CopyOutBytes(addr hostarch.Addr, b []byte) (int, error)

	// CopyInBytes copies len(dst) bytes from the task's memory to dst.
	CopyInBytes(addr hostarch.Addr, b []byte) (int, error)
}

// Marshallable represents operations on a type that can be marshalled to and
// from memory.
type Marshallable interface {
	// SizeBytes is the size of the memory representation of a type in
	// marshalled form.
	SizeBytes() int

	// MarshalBytes serializes a copy of a type to dst and returns the
	// remaining buffer.
	// Precondition: dst must be at least SizeBytes() in length.
	MarshalBytes(dst []byte) []byte

	// UnmarshalBytes deserializes a type from src and returns the remaining
	// buffer.
	// Precondition: src must be at least SizeBytes() in length.
	UnmarshalBytes(src []byte) []byte

	// CopyOut serializes a Marshallable type to a task's memory. This may
	// only be called from a task goroutine. This is more efficient than
	// calling MarshalBytes followed by CopyContext.CopyOutBytes since it
	// can reuse the task's scratch buffer.
	CopyOut(cc CopyContext, addr hostarch.Addr) (int, error)

	// CopyIn deserializes a Marshallable type from a task's memory. This may
	// only be called from a task goroutine.
	CopyIn(cc CopyContext, addr hostarch.Addr) (int, error)
}

// Marshal returns the serialized contents of m in a newly allocated byte
// slice.
func Marshal(m Marshallable) []byte {
	buf := make([]byte, m.SizeBytes())
	m.MarshalBytes(buf)
	return buf
}

// CopyOut is a helper for implementations of Marshallable.CopyOut in terms of
// MarshalBytes.
func CopyOut(cc CopyContext, addr hostarch.Addr, m Marshallable) (int, error) {
	buf := cc.CopyScratchBuffer(m.SizeBytes())
	m.MarshalBytes(buf)
	return cc.CopyOutBytes(addr, buf)
}

// CopyIn is a helper for implementations of Marshallable.CopyIn in terms of
// UnmarshalBytes. m is left untouched if the copy fails.
func CopyIn(cc CopyContext, addr hostarch.Addr, m Marshallable) (int, error) {
	buf := cc.CopyScratchBuffer(m.SizeBytes())
	n, err := cc.CopyInBytes(addr, buf)
	if err != nil {
		return n, err
	}
	m.UnmarshalBytes(buf)
	return n, nil
}
