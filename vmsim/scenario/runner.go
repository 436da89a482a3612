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

package scenario

import (
	"fmt"
	"time"

	"gvisor.dev/teachkernel/pkg/abi/linux"
	"gvisor.dev/teachkernel/pkg/context"
	"gvisor.dev/teachkernel/pkg/hostarch"
	"gvisor.dev/teachkernel/pkg/sentry/kernel"
	"gvisor.dev/teachkernel/pkg/sentry/ktime"
	"gvisor.dev/teachkernel/pkg/usermem"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Op Op `json:"op"`

	// Completed is false if the task was terminated before or during the
	// step, e.g. by a page fault in an earlier store.
	Completed bool `json:"completed"`

	// Ret is the syscall return value, or the byte count of store and load.
	Ret    int64  `json:"ret"`
	Expect *int64 `json:"expect,omitempty"`

	// Data is what load read.
	Data string `json:"data,omitempty"`

	// TimeUsec is the time a successful get_time stored, in microseconds.
	TimeUsec *uint64 `json:"time_usec,omitempty"`

	// Mismatch describes why the step did not meet its expectations.
	Mismatch string `json:"mismatch,omitempty"`
}

// TaskReport is the outcome of one task.
type TaskReport struct {
	Name     string `json:"name"`
	TID      int32  `json:"tid"`
	CPU      int    `json:"cpu"`
	Status   string `json:"status"`
	ExitCode int32  `json:"exit_code"`

	// Syscalls counts the invocations of each syscall the task issued.
	Syscalls map[string]uint32 `json:"syscalls,omitempty"`

	Steps    []StepResult `json:"steps"`
	Mismatch string       `json:"mismatch,omitempty"`

	// Maps is the task's address space in /proc/[pid]/maps format, taken
	// when it exited on its own. It is empty for tasks that were killed.
	Maps string `json:"maps,omitempty"`
}

// OK returns true if the task and all of its steps met their expectations.
func (r *TaskReport) OK() bool {
	if r.Mismatch != "" {
		return false
	}
	for _, s := range r.Steps {
		if s.Mismatch != "" {
			return false
		}
	}
	return true
}

// Report is the outcome of a scenario run.
type Report struct {
	Tasks []TaskReport `json:"tasks"`

	// FramesInUse is the number of frames still allocated after every task
	// exited.
	FramesInUse uint32 `json:"frames_in_use"`

	// Console is everything written to the kernel console.
	Console string `json:"console"`

	OK bool `json:"ok"`
}

// program runs the steps of one task and records their results.
type program struct {
	task    Task
	results []StepResult
	maps    string
}

func newProgram(task Task) *program {
	p := &program{
		task:    task,
		results: make([]StepResult, len(task.Steps)),
	}
	for i, step := range task.Steps {
		p.results[i] = StepResult{Op: step.Op, Expect: step.Expect}
	}
	return p
}

// run is the kernel.Program of the task.
func (p *program) run(t *kernel.Task) {
	for i := range p.task.Steps {
		step := &p.task.Steps[i]
		res := &p.results[i]
		res.Ret = p.exec(t, step, res)
		res.Completed = true
		t.Debugf("Step %d: %s = %d", i, step.Op, res.Ret)
		if step.Expect != nil && res.Ret != *step.Expect && res.Mismatch == "" {
			res.Mismatch = fmt.Sprintf("returned %d, want %d", res.Ret, *step.Expect)
		}
	}
	p.maps = t.MemoryManager().String()
}

// exec performs step on behalf of t. It does not return if the step ends the
// task.
func (p *program) exec(t *kernel.Task, step *Step, res *StepResult) int64 {
	switch step.Op {
	case OpMmap:
		return t.Syscall(linux.SYS_MMAP, uintptr(step.Start), uintptr(step.Len), uintptr(step.Port))
	case OpMunmap:
		return t.Syscall(linux.SYS_MUNMAP, uintptr(step.Start), uintptr(step.Len))
	case OpGetTime:
		ret := t.Syscall(linux.SYS_GET_TIME, uintptr(step.Addr), 0)
		if ret == 0 {
			var tv linux.Timeval
			if _, err := usermem.CopyObjectIn(t, t.MemoryManager(), hostarch.Addr(step.Addr), &tv, usermem.IOOpts{IgnorePermissions: true}); err == nil {
				us := tv.Micros()
				res.TimeUsec = &us
			}
		}
		return ret
	case OpTaskInfo:
		return t.Syscall(linux.SYS_TASK_INFO, uintptr(step.Addr))
	case OpYield:
		return t.Syscall(linux.SYS_SCHED_YIELD)
	case OpSetPriority:
		return t.Syscall(linux.SYS_SET_PRIORITY, uintptr(step.Prio))
	case OpWrite:
		return t.Syscall(linux.SYS_WRITE, linux.STDOUT_FILENO, uintptr(step.Addr), uintptr(step.Len))
	case OpStore:
		t.UserWrite(hostarch.Addr(step.Addr), []byte(step.Data))
		return int64(len(step.Data))
	case OpLoad:
		b := t.UserRead(hostarch.Addr(step.Addr), int(step.Len))
		res.Data = string(b)
		if step.Want != nil && res.Data != *step.Want {
			res.Mismatch = fmt.Sprintf("read %q, want %q", res.Data, *step.Want)
		}
		return int64(len(b))
	case OpAdvance:
		clock, ok := t.Kernel().Clock().(*ktime.ManualClock)
		if !ok {
			res.Mismatch = "advance requires the manual clock"
			return -1
		}
		// FromMicroseconds saturates, so huge steps pin the clock at its
		// maximum instead of wrapping.
		clock.Advance(time.Duration(ktime.FromMicroseconds(step.Usec).Nanoseconds()))
		return 0
	case OpExit:
		// The syscall does not return, so the step is recorded up front.
		res.Completed = true
		p.maps = t.MemoryManager().String()
		t.Syscall(linux.SYS_EXIT, uintptr(step.Code))
		panic("unreachable")
	default:
		panic(fmt.Sprintf("unknown op %q", step.Op))
	}
}

// Run spawns every task of sc on k, runs k to completion and reports the
// results. k must not have been started. The report's Console is left empty;
// the caller owns the console writer.
func Run(ctx context.Context, k *kernel.Kernel, sc *Scenario) (*Report, error) {
	tasks := sc.Expand()
	progs := make([]*program, len(tasks))
	spawned := make([]*kernel.Task, len(tasks))
	for i, task := range tasks {
		progs[i] = newProgram(task)
		t, err := k.Spawn(task.Name, progs[i].run)
		if err != nil {
			return nil, err
		}
		spawned[i] = t
	}
	ctx.Infof("Running %d tasks on %d CPUs", len(tasks), k.NumCPUs())
	if err := k.Run(ctx); err != nil {
		return nil, fmt.Errorf("running kernel: %w", err)
	}

	report := &Report{
		Tasks:       make([]TaskReport, len(tasks)),
		FramesInUse: k.MemoryFile().Allocated(),
		OK:          true,
	}
	for i, t := range spawned {
		tr := TaskReport{
			Name:     t.Name(),
			TID:      int32(t.ID()),
			CPU:      t.CPU(),
			Status:   t.Status().String(),
			ExitCode: t.ExitCode(),
			Syscalls: syscallCounts(k, t),
			Steps:    progs[i].results,
			Maps:     progs[i].maps,
		}
		if want := tasks[i].ExpectExit; want != nil && tr.ExitCode != *want {
			tr.Mismatch = fmt.Sprintf("exited with %d, want %d", tr.ExitCode, *want)
		}
		if !tr.OK() {
			report.OK = false
		}
		report.Tasks[i] = tr
	}
	if report.FramesInUse != 0 {
		report.OK = false
	}
	return report, nil
}

func syscallCounts(k *kernel.Kernel, t *kernel.Task) map[string]uint32 {
	counts := make(map[string]uint32)
	for sysno := range k.SyscallTable().Table {
		if n := t.SyscallCount(sysno); n > 0 {
			counts[k.SyscallTable().LookupName(sysno)] = n
		}
	}
	return counts
}
