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
	"gvisor.dev/teachkernel/pkg/abi/linux"
	"gvisor.dev/teachkernel/pkg/errors/linuxerr"
	"gvisor.dev/teachkernel/pkg/sentry/arch"
	"gvisor.dev/teachkernel/pkg/sentry/kernel"
)

// maxWriteBytes is the most a single write transfers. Larger writes are
// short.
const maxWriteBytes = 1 << 20

// Write implements the write syscall. Only standard output is supported; its
// bytes go to the kernel console.
func Write(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	fd := args[0].Int()
	addr := args[1].Pointer()
	size := args[2].SizeT()

	if fd != linux.STDOUT_FILENO {
		return 0, linuxerr.EBADF
	}
	if size > maxWriteBytes {
		size = maxWriteBytes
	}
	buf := make([]byte, size)
	if _, err := t.CopyInBytes(addr, buf); err != nil {
		return 0, err
	}
	n, err := t.Kernel().WriteConsole(buf)
	return uintptr(n), err
}
