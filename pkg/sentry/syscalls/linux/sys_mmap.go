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

package linux

import (
	"gvisor.dev/teachkernel/pkg/sentry/arch"
	"gvisor.dev/teachkernel/pkg/sentry/kernel"
	"gvisor.dev/teachkernel/pkg/sentry/mm"
)

// Mmap implements the mmap syscall: mmap(start, len, port) maps the pages
// covering [start, start+len) with the permissions encoded in port.
func Mmap(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	start := args[0].Pointer()
	length := args[1].Uint64()
	port := args[2].Uint64()

	flags, err := mm.DecodePort(port)
	if err != nil {
		return 0, err
	}
	if err := t.MemoryManager().MMap(t, start, length, flags); err != nil {
		return 0, err
	}
	return 0, nil
}

// Munmap implements the munmap syscall.
func Munmap(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	return 0, t.MemoryManager().MUnmap(t, args[0].Pointer(), args[1].Uint64())
}
