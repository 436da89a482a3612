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
	"runtime"

	"gvisor.dev/teachkernel/pkg/abi/linux"
	"gvisor.dev/teachkernel/pkg/context"
	"gvisor.dev/teachkernel/pkg/hostarch"
	"gvisor.dev/teachkernel/pkg/log"
	"gvisor.dev/teachkernel/pkg/sentry/ktime"
	"gvisor.dev/teachkernel/pkg/sentry/mm"
	"gvisor.dev/teachkernel/pkg/sync"
	"gvisor.dev/teachkernel/pkg/usermem"
)

const (
	// copyScratchBufferLen is the length of Task.copyScratchBuffer.
	copyScratchBufferLen = 144

	// faultExitCode is the exit code of a task killed by an illegal memory
	// access.
	faultExitCode = -2

	// killedExitCode is the exit code of a task terminated because the
	// kernel stopped before it finished.
	killedExitCode = -1
)

// Program is the user-mode code of a task. It runs on the task goroutine and
// interacts with the kernel only through the Task's syscall and user memory
// methods. A Program that returns exits the task with code 0.
type Program func(t *Task)

// Task represents a thread of execution.
type Task struct {
	// The following fields are immutable.
	k         *Kernel
	tid       ThreadID
	name      string
	prog      Program
	cpu       int
	logPrefix string
	token     mm.Token

	// wake is signalled by the task's CPU to resume the task goroutine.
	wake chan struct{}

	// switchOut carries the reason the task goroutine gave up its CPU.
	switchOut chan taskEvent

	// goroutineStarted is true once the task goroutine has been created. It
	// is only accessed by the goroutine running the task's CPU, and by Run
	// after every CPU has returned.
	goroutineStarted bool

	// copyScratchBuffer is a buffer available to CopyIn/CopyOut
	// implementations that require an intermediate buffer to copy data
	// into/out of. It prevents these buffers from being allocated on the
	// heap for every syscall. It is only used by the task goroutine.
	copyScratchBuffer [copyScratchBufferLen]byte

	mu sync.Mutex

	// +checklocks:mu
	status linux.TaskStatus

	// syscallTimes counts invocations of each syscall number below
	// linux.MaxSyscallNum.
	//
	// +checklocks:mu
	syscallTimes [linux.MaxSyscallNum]uint32

	// scheduled is true once the task has first been given a CPU, at
	// startTime.
	//
	// +checklocks:mu
	scheduled bool
	// +checklocks:mu
	startTime ktime.Time

	// +checklocks:mu
	exitCode int32
}

// ID returns the task's ID.
func (t *Task) ID() ThreadID {
	return t.tid
}

// Name returns the name the task was spawned with.
func (t *Task) Name() string {
	return t.name
}

// CPU returns the CPU the task is assigned to.
func (t *Task) CPU() int {
	return t.cpu
}

// Kernel returns the Kernel containing t.
func (t *Task) Kernel() *Kernel {
	return t.k
}

// Token returns the token naming t's address space.
func (t *Task) Token() mm.Token {
	return t.token
}

// Status returns the task's current scheduling state.
func (t *Task) Status() linux.TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// ExitCode returns the task's exit code. It is meaningful only once Status
// is linux.TaskExited.
func (t *Task) ExitCode() int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.exitCode
}

// Info returns a snapshot of the task's status, syscall counts and the
// milliseconds elapsed since it was first scheduled.
func (t *Task) Info() linux.TaskInfo {
	now := t.k.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	info := linux.TaskInfo{
		Status:       t.status,
		SyscallTimes: t.syscallTimes,
	}
	if t.scheduled {
		if ms := now.Sub(t.startTime).Milliseconds(); ms > 0 {
			info.Time = uint64(ms)
		}
	}
	return info
}

// SyscallCount returns the number of times t has invoked sysno.
func (t *Task) SyscallCount(sysno uintptr) uint32 {
	if sysno >= linux.MaxSyscallNum {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.syscallTimes[sysno]
}

// MemoryManager returns t's address space.
//
// Preconditions: t has not exited.
func (t *Task) MemoryManager() *mm.MemoryManager {
	return t.k.registry.FromToken(t.token)
}

// CopyScratchBuffer returns a scratch buffer to be used in CopyIn/CopyOut
// functions. It must only be used within those functions and can only be used
// by the task goroutine; it exists to improve performance and thus
// intentionally lacks any synchronization.
func (t *Task) CopyScratchBuffer(size int) []byte {
	if size > copyScratchBufferLen {
		return make([]byte, size)
	}
	return t.copyScratchBuffer[:size]
}

// CopyOutBytes is a fast version of CopyOut if the caller can serialize the
// data without reflection and pass in a byte slice.
//
// This Task's address space must be active.
func (t *Task) CopyOutBytes(addr hostarch.Addr, src []byte) (int, error) {
	return t.MemoryManager().CopyOut(t, addr, src, usermem.IOOpts{})
}

// CopyInBytes is a fast version of CopyIn if the caller can serialize the
// data without reflection and pass in a byte slice.
//
// This Task's address space must be active.
func (t *Task) CopyInBytes(addr hostarch.Addr, dst []byte) (int, error) {
	return t.MemoryManager().CopyIn(t, addr, dst, usermem.IOOpts{})
}

// UserWrite stores src at addr as the task's user-mode code would. An access
// to a page that is unmapped or not writable kills the task.
func (t *Task) UserWrite(addr hostarch.Addr, src []byte) {
	if _, err := t.MemoryManager().CopyOut(t, addr, src, usermem.IOOpts{}); err != nil {
		t.fault(addr, hostarch.Write)
	}
}

// UserRead loads n bytes from addr as the task's user-mode code would. An
// access to a page that is unmapped or not readable kills the task.
func (t *Task) UserRead(addr hostarch.Addr, n int) []byte {
	dst := make([]byte, n)
	if _, err := t.MemoryManager().CopyIn(t, addr, dst, usermem.IOOpts{}); err != nil {
		t.fault(addr, hostarch.Read)
	}
	return dst
}

// fault kills the task after an illegal user-mode access. It does not
// return.
func (t *Task) fault(addr hostarch.Addr, at hostarch.AccessType) {
	log.WarningfRateLimited("%sPage fault: %v access to %v", t.logPrefix, at, addr)
	t.k.Consolef("[kernel] PageFault in application, kernel killed it.\n")
	t.exit(faultExitCode)
}

// Yield gives up the task's CPU and returns once the task is scheduled
// again. If the kernel stops first, the task is terminated and Yield does
// not return.
//
// Preconditions: The caller must be running on the task goroutine.
func (t *Task) Yield() {
	t.mu.Lock()
	t.status = linux.TaskReady
	t.mu.Unlock()
	t.switchOut <- taskYielded
	select {
	case <-t.wake:
	case <-t.k.stop:
		t.Debugf("Terminated while waiting for a CPU")
		t.mu.Lock()
		t.status = linux.TaskExited
		t.exitCode = killedExitCode
		t.mu.Unlock()
		t.releaseAddressSpace(t)
		runtime.Goexit()
	}
}

// Exit terminates the task with the given exit code, releasing its address
// space. It does not return.
//
// Preconditions: The caller must be running on the task goroutine.
func (t *Task) Exit(code int32) {
	t.k.Consolef("[kernel] Application exited with code %d\n", code)
	t.exit(code)
}

// exit implements Exit without the console message.
func (t *Task) exit(code int32) {
	t.Debugf("Exiting with code %d", code)
	t.mu.Lock()
	t.status = linux.TaskExited
	t.exitCode = code
	t.mu.Unlock()
	t.releaseAddressSpace(t)
	t.switchOut <- taskExited
	runtime.Goexit()
}

// releaseAddressSpace retires t's token and frees every frame it mapped.
func (t *Task) releaseAddressSpace(ctx context.Context) {
	t.k.registry.Unregister(t.token).Release(ctx)
}

// beginTermination marks a task that never ran as exited. It returns false
// if the task has run or already exited.
//
// Preconditions: No CPU is running.
func (t *Task) beginTermination() bool {
	if t.goroutineStarted {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status == linux.TaskExited {
		return false
	}
	t.status = linux.TaskExited
	t.exitCode = killedExitCode
	return true
}

// run is the body of the task goroutine.
func (t *Task) run() {
	defer t.k.taskWG.Done()
	t.prog(t)
	t.Exit(0)
}

// String implements fmt.Stringer.String.
func (t *Task) String() string {
	return fmt.Sprintf("task %d (%s)", t.tid, t.name)
}
