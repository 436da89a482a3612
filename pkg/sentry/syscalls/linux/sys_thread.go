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
	"gvisor.dev/teachkernel/pkg/errors/linuxerr"
	"gvisor.dev/teachkernel/pkg/sentry/arch"
	"gvisor.dev/teachkernel/pkg/sentry/kernel"
)

// Exit implements the exit syscall. It does not return.
func Exit(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	t.Exit(args[0].Int())
	panic("unreachable")
}

// SchedYield implements the sched_yield syscall.
func SchedYield(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	t.Yield()
	return 0, nil
}

// SetPriority implements the set_priority syscall. Tasks are scheduled
// round robin, so priorities are not supported.
func SetPriority(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	t.Debugf("set_priority(%d) is not supported", args[0].Int64())
	return 0, linuxerr.ENOSYS
}
