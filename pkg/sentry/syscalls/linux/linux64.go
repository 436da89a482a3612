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

// Package linux provides the syscall table of the teaching kernel.
package linux

import (
	"gvisor.dev/teachkernel/pkg/abi/linux"
	"gvisor.dev/teachkernel/pkg/sentry/kernel"
	"gvisor.dev/teachkernel/pkg/sentry/syscalls"
)

// Table is the kernel's syscall table. Syscall numbers follow the generic
// Linux numbering where one exists.
var Table = &kernel.SyscallTable{
	Table: map[uintptr]kernel.Syscall{
		linux.SYS_WRITE:        syscalls.Supported("write", Write),
		linux.SYS_EXIT:         syscalls.Supported("exit", Exit),
		linux.SYS_SCHED_YIELD:  syscalls.Supported("sched_yield", SchedYield),
		linux.SYS_SET_PRIORITY: syscalls.Supported("set_priority", SetPriority),
		linux.SYS_GET_TIME:     syscalls.Supported("get_time", GetTime),
		linux.SYS_MUNMAP:       syscalls.Supported("munmap", Munmap),
		linux.SYS_MMAP:         syscalls.Supported("mmap", Mmap),
		linux.SYS_TASK_INFO:    syscalls.Supported("task_info", TaskInfo),
	},
}
