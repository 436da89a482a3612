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

package kernel

import (
	"fmt"

	"gvisor.dev/teachkernel/pkg/abi/linux"
	"gvisor.dev/teachkernel/pkg/errors/linuxerr"
	"gvisor.dev/teachkernel/pkg/log"
	"gvisor.dev/teachkernel/pkg/sentry/arch"
)

// SyscallFn is a syscall implementation.
type SyscallFn func(t *Task, args arch.SyscallArguments) (uintptr, error)

// Syscall includes the syscall implementation and compatibility information.
type Syscall struct {
	// Name is the syscall name.
	Name string
	// Fn is the implementation of the syscall.
	Fn SyscallFn
}

// SyscallTable is a lookup table of system calls.
type SyscallTable struct {
	// Table is the collection of functions.
	Table map[uintptr]Syscall

	// lookup is a fixed-size array that holds the syscalls (indexed by
	// their numbers). It is used for fast look ups.
	lookup [linux.MaxSyscallNum]SyscallFn
}

// Init initializes the system call table. It is idempotent.
func (s *SyscallTable) Init() {
	for num, sc := range s.Table {
		if num < uintptr(len(s.lookup)) {
			s.lookup[num] = sc.Fn
		}
	}
}

// Lookup returns the syscall implementation, if one exists.
func (s *SyscallTable) Lookup(sysno uintptr) SyscallFn {
	if sysno < uintptr(len(s.lookup)) {
		return s.lookup[sysno]
	}
	if sc, ok := s.Table[sysno]; ok {
		return sc.Fn
	}
	return nil
}

// LookupName looks up a syscall name.
func (s *SyscallTable) LookupName(sysno uintptr) string {
	if sc, ok := s.Table[sysno]; ok {
		return sc.Name
	}
	return fmt.Sprintf("sys_%d", sysno)
}

// Syscall issues syscall sysno with the given arguments from user mode and
// returns the value placed in the return register: the handler's result on
// success and -1 on any error. Syscalls that do not return (exit) never
// return here either.
//
// The invocation is counted before the handler runs, so a task_info call
// observes itself.
//
// Preconditions: The caller must be running on the task goroutine.
func (t *Task) Syscall(sysno uintptr, args ...uintptr) int64 {
	if sysno < linux.MaxSyscallNum {
		t.mu.Lock()
		t.syscallTimes[sysno]++
		t.mu.Unlock()
	}
	rval, err := t.executeSyscall(sysno, arch.Args(args...))
	if err != nil && t.IsLogging(log.Debug) {
		t.Debugf("%s: %v", t.k.syscalls.LookupName(sysno), err)
	}
	return arch.SyscallReturn(rval, err)
}

func (t *Task) executeSyscall(sysno uintptr, args arch.SyscallArguments) (uintptr, error) {
	fn := t.k.syscalls.Lookup(sysno)
	if fn == nil {
		t.k.unimplementedLog.Warningf("%sUnsupported syscall %d", t.logPrefix, sysno)
		return 0, linuxerr.ENOSYS
	}
	return fn(t, args)
}
