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
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gvisor.dev/teachkernel/pkg/abi/linux"
	"gvisor.dev/teachkernel/pkg/context"
	"gvisor.dev/teachkernel/pkg/hostarch"
	"gvisor.dev/teachkernel/pkg/sentry/kernel"
	"gvisor.dev/teachkernel/pkg/sentry/ktime"
	"gvisor.dev/teachkernel/pkg/sentry/mm"
	"gvisor.dev/teachkernel/pkg/sentry/pgalloc"
)

const base = 0x10000000

type harness struct {
	k       *kernel.Kernel
	clock   *ktime.ManualClock
	console *bytes.Buffer
}

func newHarness(t *testing.T, frames uint32) *harness {
	t.Helper()
	mf, err := pgalloc.NewMemoryFile(frames)
	if err != nil {
		t.Fatalf("NewMemoryFile failed: %v", err)
	}
	h := &harness{
		k:       &kernel.Kernel{},
		clock:   &ktime.ManualClock{},
		console: &bytes.Buffer{},
	}
	if err := h.k.Init(kernel.InitKernelArgs{
		MemoryFile:   mf,
		Clock:        h.clock,
		CPUs:         1,
		Layout:       mm.DefaultLayout,
		SyscallTable: Table,
		Console:      h.console,
	}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return h
}

// runOne runs prog as the only task and returns the task once it exits.
func (h *harness) runOne(t *testing.T, prog kernel.Program) *kernel.Task {
	t.Helper()
	task, err := h.k.Spawn(t.Name(), prog)
	if err != nil {
		t.Fatalf("Spawn failed: %v", err)
	}
	if err := h.k.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return task
}

func mmap(t *kernel.Task, start, length, port uintptr) int64 {
	return t.Syscall(linux.SYS_MMAP, start, length, port)
}

func munmap(t *kernel.Task, start, length uintptr) int64 {
	return t.Syscall(linux.SYS_MUNMAP, start, length)
}

func TestMmapReadWriteMunmap(t *testing.T) {
	h := newHarness(t, 4)
	var got []int64
	var data []byte
	h.runOne(t, func(t *kernel.Task) {
		got = append(got, mmap(t, base, hostarch.PageSize, 0b011))
		t.UserWrite(base, []byte{0xde, 0xad})
		data = t.UserRead(base, 2)
		got = append(got, munmap(t, base, hostarch.PageSize))
		got = append(got, munmap(t, base, hostarch.PageSize))
	})
	if diff := cmp.Diff([]int64{0, 0, -1}, got); diff != "" {
		t.Errorf("return values mismatch (-want +got):\n%s", diff)
	}
	if !bytes.Equal(data, []byte{0xde, 0xad}) {
		t.Errorf("UserRead = %x, want dead", data)
	}
}

func TestMmapValidation(t *testing.T) {
	for _, tc := range []struct {
		name             string
		start, len, port uintptr
		want             int64
	}{
		{"misaligned start", base + 1, hostarch.PageSize, 0b011, -1},
		{"zero port", base, hostarch.PageSize, 0, -1},
		{"high port bits", base, hostarch.PageSize, 0b1011, -1},
		{"zero length", base, 0, 0b001, -1},
		{"too many frames", base, 5 * hostarch.PageSize, 0b001, -1},
		{"execute only", base, hostarch.PageSize, 0b100, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, 4)
			var got int64
			var pages uint64
			h.runOne(t, func(task *kernel.Task) {
				got = mmap(task, tc.start, tc.len, tc.port)
				pages = task.MemoryManager().UsagePages()
			})
			if got != tc.want {
				t.Errorf("mmap(%#x, %#x, %#b) = %d, want %d", tc.start, tc.len, tc.port, got, tc.want)
			}
			if tc.want == -1 && pages != 0 {
				t.Errorf("failed mmap left %d pages mapped", pages)
			}
		})
	}
}

func TestMmapOverlapLeavesExistingMapping(t *testing.T) {
	h := newHarness(t, 8)
	var got []int64
	var data []byte
	h.runOne(t, func(t *kernel.Task) {
		got = append(got, mmap(t, base, 2*hostarch.PageSize, 0b011))
		t.UserWrite(base+hostarch.PageSize, []byte("keep"))
		got = append(got, mmap(t, base+hostarch.PageSize, 2*hostarch.PageSize, 0b001))
		data = t.UserRead(base+hostarch.PageSize, 4)
		// The non-overlapping page of the failed request stays unmapped.
		got = append(got, munmap(t, base+2*hostarch.PageSize, hostarch.PageSize))
	})
	if diff := cmp.Diff([]int64{0, -1, -1}, got); diff != "" {
		t.Errorf("return values mismatch (-want +got):\n%s", diff)
	}
	if string(data) != "keep" {
		t.Errorf("existing mapping contents = %q, want %q", data, "keep")
	}
}

func TestMunmapPartiallyMapped(t *testing.T) {
	h := newHarness(t, 4)
	var got []int64
	h.runOne(t, func(t *kernel.Task) {
		got = append(got, mmap(t, base, hostarch.PageSize, 0b011))
		got = append(got, munmap(t, base, 2*hostarch.PageSize))
		got = append(got, munmap(t, base, hostarch.PageSize))
	})
	if diff := cmp.Diff([]int64{0, -1, 0}, got); diff != "" {
		t.Errorf("return values mismatch (-want +got):\n%s", diff)
	}
}

func TestGetTime(t *testing.T) {
	h := newHarness(t, 1)
	h.clock.Advance(3*time.Second + 250*time.Microsecond)
	var got []int64
	var tvs []linux.Timeval
	h.runOne(t, func(t *kernel.Task) {
		got = append(got, t.Syscall(linux.SYS_GET_TIME, base, 0))
		got = append(got, mmap(t, base, hostarch.PageSize, 0b011))
		for i := 0; i < 2; i++ {
			got = append(got, t.Syscall(linux.SYS_GET_TIME, base, 0))
			var tv linux.Timeval
			tv.UnmarshalBytes(t.UserRead(base, linux.SizeofTimeval))
			tvs = append(tvs, tv)
			h.clock.Advance(time.Millisecond)
		}
	})
	if diff := cmp.Diff([]int64{-1, 0, 0, 0}, got); diff != "" {
		t.Errorf("return values mismatch (-want +got):\n%s", diff)
	}
	want := []linux.Timeval{{Sec: 3, Usec: 250}, {Sec: 3, Usec: 1250}}
	if diff := cmp.Diff(want, tvs); diff != "" {
		t.Errorf("timevals mismatch (-want +got):\n%s", diff)
	}
}

func TestGetTimeReadOnlyDestination(t *testing.T) {
	h := newHarness(t, 1)
	var got []int64
	h.runOne(t, func(t *kernel.Task) {
		got = append(got, mmap(t, base, hostarch.PageSize, 0b001))
		got = append(got, t.Syscall(linux.SYS_GET_TIME, base, 0))
	})
	if diff := cmp.Diff([]int64{0, -1}, got); diff != "" {
		t.Errorf("return values mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskInfoStraddlingUnmappedPage(t *testing.T) {
	h := newHarness(t, 1)
	var ret int64
	var tail []byte
	h.runOne(t, func(t *kernel.Task) {
		mmap(t, base, hostarch.PageSize, 0b011)
		addr := uintptr(base + hostarch.PageSize - 8)
		ret = t.Syscall(linux.SYS_TASK_INFO, addr)
		tail = t.UserRead(hostarch.Addr(addr), 8)
	})
	if ret != -1 {
		t.Errorf("task_info into a half-mapped buffer returned %d, want -1", ret)
	}
	if !bytes.Equal(tail, make([]byte, 8)) {
		t.Errorf("failed task_info wrote %x into the mapped page", tail)
	}
}

func TestTaskInfoCountsItself(t *testing.T) {
	h := newHarness(t, 1)
	var info linux.TaskInfo
	var rets []int64
	h.runOne(t, func(t *kernel.Task) {
		rets = append(rets, mmap(t, base, hostarch.PageSize, 0b011))
		rets = append(rets, t.Syscall(linux.SYS_GET_TIME, base, 0))
		rets = append(rets, t.Syscall(linux.SYS_GET_TIME, base, 0))
		rets = append(rets, t.Syscall(linux.SYS_SET_PRIORITY, 16))
		h.clock.Advance(12 * time.Millisecond)
		rets = append(rets, t.Syscall(linux.SYS_TASK_INFO, base))
		info.UnmarshalBytes(t.UserRead(base, linux.SizeofTaskInfo))
	})
	if diff := cmp.Diff([]int64{0, 0, 0, -1, 0}, rets); diff != "" {
		t.Errorf("return values mismatch (-want +got):\n%s", diff)
	}
	if info.Status != linux.TaskRunning {
		t.Errorf("Status = %v, want %v", info.Status, linux.TaskRunning)
	}
	if info.Time != 12 {
		t.Errorf("Time = %d, want 12", info.Time)
	}
	want := map[int]uint32{
		linux.SYS_MMAP:         1,
		linux.SYS_GET_TIME:     2,
		linux.SYS_SET_PRIORITY: 1,
		linux.SYS_TASK_INFO:    1,
	}
	for sysno, n := range info.SyscallTimes {
		if n != want[sysno] {
			t.Errorf("SyscallTimes[%d] = %d, want %d", sysno, n, want[sysno])
		}
	}
}

func TestExitSyscall(t *testing.T) {
	h := newHarness(t, 2)
	reached := false
	task := h.runOne(t, func(t *kernel.Task) {
		mmap(t, base, 2*hostarch.PageSize, 0b011)
		t.Syscall(linux.SYS_EXIT, uintptr(3))
		reached = true
	})
	if reached {
		t.Errorf("exit returned")
	}
	if got := task.ExitCode(); got != 3 {
		t.Errorf("ExitCode() = %d, want 3", got)
	}
	if got := h.k.MemoryFile().Allocated(); got != 0 {
		t.Errorf("%d frames still allocated after exit", got)
	}
	if got, want := h.console.String(), "[kernel] Application exited with code 3\n"; got != want {
		t.Errorf("console = %q, want %q", got, want)
	}
}

func TestSchedYield(t *testing.T) {
	h := newHarness(t, 1)
	var trace []string
	for _, name := range []string{"a", "b"} {
		if _, err := h.k.Spawn(name, func(t *kernel.Task) {
			trace = append(trace, t.Name())
			if got := t.Syscall(linux.SYS_SCHED_YIELD); got != 0 {
				trace = append(trace, "bad yield")
			}
			trace = append(trace, t.Name())
		}); err != nil {
			t.Fatalf("Spawn failed: %v", err)
		}
	}
	if err := h.k.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b", "a", "b"}, trace); diff != "" {
		t.Errorf("schedule mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite(t *testing.T) {
	h := newHarness(t, 1)
	var rets []int64
	h.runOne(t, func(t *kernel.Task) {
		mmap(t, base, hostarch.PageSize, 0b011)
		t.UserWrite(base, []byte("hello\n"))
		rets = append(rets, t.Syscall(linux.SYS_WRITE, linux.STDOUT_FILENO, base, 6))
		rets = append(rets, t.Syscall(linux.SYS_WRITE, linux.STDERR_FILENO, base, 6))
		rets = append(rets, t.Syscall(linux.SYS_WRITE, linux.STDOUT_FILENO, base+hostarch.PageSize, 1))
	})
	if diff := cmp.Diff([]int64{6, -1, -1}, rets); diff != "" {
		t.Errorf("return values mismatch (-want +got):\n%s", diff)
	}
	if got := h.console.String(); got != "hello\n[kernel] Application exited with code 0\n" {
		t.Errorf("console = %q", got)
	}
}

func TestUnknownSyscall(t *testing.T) {
	h := newHarness(t, 1)
	var ret int64
	task := h.runOne(t, func(t *kernel.Task) {
		ret = t.Syscall(499)
	})
	if ret != -1 {
		t.Errorf("unknown syscall returned %d, want -1", ret)
	}
	if got := task.SyscallCount(499); got != 1 {
		t.Errorf("SyscallCount(499) = %d, want 1", got)
	}
}
