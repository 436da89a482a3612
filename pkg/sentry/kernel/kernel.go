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

// Package kernel provides an emulation of the task-facing half of a small
// teaching kernel: tasks, their scheduling across CPUs, and syscall dispatch.
//
// Each task runs its Program on a dedicated goroutine (the "task goroutine"),
// but only while the CPU it is assigned to has switched to it. A task gives
// up its CPU by yielding or exiting, so at most one task goroutine per CPU
// executes at any time.
//
// Lock order:
//
//	Kernel.mu
//	  cpu.mu
//	    Task.mu
package kernel

import (
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
	"gvisor.dev/teachkernel/pkg/abi/linux"
	"gvisor.dev/teachkernel/pkg/context"
	"gvisor.dev/teachkernel/pkg/log"
	"gvisor.dev/teachkernel/pkg/sentry/ktime"
	"gvisor.dev/teachkernel/pkg/sentry/mm"
	"gvisor.dev/teachkernel/pkg/sentry/pgalloc"
	"gvisor.dev/teachkernel/pkg/sync"
)

// ThreadID is a task identifier.
type ThreadID int32

// InitKernelArgs holds arguments to Init.
type InitKernelArgs struct {
	// MemoryFile supplies the frames backing every task's memory.
	MemoryFile *pgalloc.MemoryFile

	// Clock is the kernel's time source. If nil, a HostClock is used.
	Clock ktime.Clock

	// CPUs is the number of CPUs to schedule tasks on. It must be positive.
	CPUs int

	// Layout bounds every task's address space.
	Layout mm.Layout

	// SyscallTable maps syscall numbers to handlers.
	SyscallTable *SyscallTable

	// Console receives output written by tasks and kernel messages. If nil,
	// console output is discarded.
	Console io.Writer
}

// Kernel represents an emulated kernel.
type Kernel struct {
	// The following fields are immutable after Init.
	mf       *pgalloc.MemoryFile
	clock    ktime.Clock
	layout   mm.Layout
	syscalls *SyscallTable
	registry *mm.Registry
	cpus     []*cpu

	// unimplementedLog reports unknown syscalls without flooding the log.
	unimplementedLog log.Logger

	consoleMu sync.Mutex
	// +checklocks:consoleMu
	console io.Writer

	// stop is closed once Run's CPUs have returned. Tasks blocked in Yield
	// observe it and terminate.
	stop chan struct{}

	// taskWG counts running task goroutines.
	taskWG sync.WaitGroup

	mu sync.Mutex

	// +checklocks:mu
	tasks []*Task

	// +checklocks:mu
	lastTID ThreadID

	// +checklocks:mu
	started bool
}

// Init initializes the Kernel with no tasks.
func (k *Kernel) Init(args InitKernelArgs) error {
	if args.MemoryFile == nil {
		return fmt.Errorf("MemoryFile is nil")
	}
	if args.SyscallTable == nil {
		return fmt.Errorf("SyscallTable is nil")
	}
	if args.CPUs <= 0 {
		return fmt.Errorf("invalid CPU count %d", args.CPUs)
	}
	if args.Layout.MaxAddr <= args.Layout.MinAddr {
		return fmt.Errorf("invalid address space layout [%v, %v)", args.Layout.MinAddr, args.Layout.MaxAddr)
	}
	k.mf = args.MemoryFile
	k.clock = args.Clock
	if k.clock == nil {
		k.clock = ktime.NewHostClock()
	}
	k.layout = args.Layout
	k.syscalls = args.SyscallTable
	k.syscalls.Init()
	k.registry = mm.NewRegistry()
	k.console = args.Console
	if k.console == nil {
		k.console = io.Discard
	}
	k.unimplementedLog = log.BasicRateLimitedLogger(time.Second)
	k.stop = make(chan struct{})
	k.cpus = make([]*cpu, args.CPUs)
	for i := range k.cpus {
		k.cpus[i] = &cpu{id: i, k: k}
	}
	return nil
}

// MemoryFile returns the frame allocator backing task memory.
func (k *Kernel) MemoryFile() *pgalloc.MemoryFile {
	return k.mf
}

// Clock returns the kernel's time source.
func (k *Kernel) Clock() ktime.Clock {
	return k.clock
}

// Registry returns the address space registry.
func (k *Kernel) Registry() *mm.Registry {
	return k.registry
}

// SyscallTable returns the kernel's syscall table.
func (k *Kernel) SyscallTable() *SyscallTable {
	return k.syscalls
}

// NumCPUs returns the number of CPUs.
func (k *Kernel) NumCPUs() int {
	return len(k.cpus)
}

// WriteConsole writes b to the kernel console.
func (k *Kernel) WriteConsole(b []byte) (int, error) {
	k.consoleMu.Lock()
	defer k.consoleMu.Unlock()
	return k.console.Write(b)
}

// Consolef formats a kernel message onto the console.
func (k *Kernel) Consolef(format string, v ...any) {
	k.WriteConsole([]byte(fmt.Sprintf(format, v...)))
}

// Spawn creates a task that will run prog, and queues it on a CPU. CPUs are
// assigned round robin in spawn order. Spawn must be called before Run.
func (k *Kernel) Spawn(name string, prog Program) (*Task, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.started {
		return nil, fmt.Errorf("spawn of %q after the kernel started", name)
	}
	k.lastTID++
	t := &Task{
		k:         k,
		tid:       k.lastTID,
		name:      name,
		prog:      prog,
		cpu:       len(k.tasks) % len(k.cpus),
		wake:      make(chan struct{}, 1),
		switchOut: make(chan taskEvent, 1),
		status:    linux.TaskReady,
	}
	t.logPrefix = fmt.Sprintf("[%4d] ", t.tid)
	t.token = k.registry.Register(mm.NewMemoryManager(k.mf, k.layout))
	k.tasks = append(k.tasks, t)
	k.cpus[t.cpu].enqueue(t)
	log.Debugf("Spawned task %d %q on CPU %d with address space %v", t.tid, name, t.cpu, t.token)
	return t, nil
}

// Tasks returns every task spawned so far, in spawn order.
func (k *Kernel) Tasks() []*Task {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]*Task(nil), k.tasks...)
}

// Run runs every CPU until all tasks have exited or ctx is cancelled. When it
// returns, every task has exited and released its address space.
func (k *Kernel) Run(ctx context.Context) error {
	k.mu.Lock()
	if k.started {
		k.mu.Unlock()
		return fmt.Errorf("kernel already started")
	}
	k.started = true
	k.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range k.cpus {
		c := c // per-iteration copy (Go 1.22 loop semantics)
		g.Go(func() error {
			return c.run(gctx)
		})
	}
	err := g.Wait()
	close(k.stop)
	k.reapUnstarted(ctx)
	k.taskWG.Wait()
	return err
}

// reapUnstarted terminates tasks that were never scheduled.
func (k *Kernel) reapUnstarted(ctx context.Context) {
	for _, t := range k.Tasks() {
		if t.beginTermination() {
			ctx.Debugf("Reaping unscheduled task %d", t.tid)
			t.releaseAddressSpace(ctx)
		}
	}
}
