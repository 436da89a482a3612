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
	"gvisor.dev/teachkernel/pkg/abi/linux"
	"gvisor.dev/teachkernel/pkg/errors/linuxerr"
	"gvisor.dev/teachkernel/pkg/ring0/pagetables"
)

// DecodePort translates the permission bits passed to mmap into page table
// flags. Bit 0 grants read, bit 1 write and bit 2 execute. Every other bit
// must be clear and at least one permission must be requested.
func DecodePort(port uint64) (pagetables.Flags, error) {
	if port&^linux.PROT_MASK != 0 {
		return pagetables.NoFlags, linuxerr.EINVAL
	}
	if port&linux.PROT_MASK == 0 {
		return pagetables.NoFlags, linuxerr.EINVAL
	}
	f := pagetables.UserValid
	if port&linux.PROT_READ != 0 {
		f = f.Union(pagetables.FlagRead)
	}
	if port&linux.PROT_WRITE != 0 {
		f = f.Union(pagetables.FlagWrite)
	}
	if port&linux.PROT_EXEC != 0 {
		f = f.Union(pagetables.FlagExecute)
	}
	return f, nil
}
