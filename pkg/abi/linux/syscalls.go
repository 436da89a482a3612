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

// Package linux contains the constants and types needed to interface with the
// kernel from user space.
package linux

// Syscall numbers. The numbering follows the generic RISC-V Linux table;
// task_info has no Linux equivalent.
const (
	SYS_WRITE        = 64
	SYS_EXIT         = 93
	SYS_SCHED_YIELD  = 124
	SYS_SET_PRIORITY = 140
	SYS_GET_TIME     = 169
	SYS_MUNMAP       = 215
	SYS_MMAP         = 222
	SYS_TASK_INFO    = 410
)

// Standard file descriptors.
const (
	STDIN_FILENO  = 0
	STDOUT_FILENO = 1
	STDERR_FILENO = 2
)
