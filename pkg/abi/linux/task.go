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
	"fmt"

	"gvisor.dev/teachkernel/pkg/hostarch"
	"gvisor.dev/teachkernel/pkg/marshal"
)

// MaxSyscallNum bounds the syscall numbers whose invocations are counted in
// TaskInfo.SyscallTimes.
const MaxSyscallNum = 500

// TaskStatus is the scheduling state of a task. It is written to user memory
// as a machine word.
type TaskStatus uint64

// Task states.
const (
	TaskUnInit TaskStatus = iota
	TaskReady
	TaskRunning
	TaskExited
)

// String implements fmt.Stringer.String.
func (s TaskStatus) String() string {
	switch s {
	case TaskUnInit:
		return "UnInit"
	case TaskReady:
		return "Ready"
	case TaskRunning:
		return "Running"
	case TaskExited:
		return "Exited"
	default:
		return fmt.Sprintf("TaskStatus(%d)", uint64(s))
	}
}

// TaskInfo is the structure written by task_info.
//
// It is a snapshot; later changes to the task are not reflected in a TaskInfo
// that has already been taken.
type TaskInfo struct {
	Status       TaskStatus
	SyscallTimes [MaxSyscallNum]uint32

	// Time is the number of milliseconds since the task was first
	// scheduled.
	Time uint64
}

// SizeofTaskInfo is the size of a TaskInfo struct in bytes.
const SizeofTaskInfo = 8 + 4*MaxSyscallNum + 8

// SizeBytes implements marshal.Marshallable.SizeBytes.
func (ti *TaskInfo) SizeBytes() int {
	return SizeofTaskInfo
}

// MarshalBytes implements marshal.Marshallable.MarshalBytes.
func (ti *TaskInfo) MarshalBytes(dst []byte) []byte {
	hostarch.ByteOrder.PutUint64(dst[:8], uint64(ti.Status))
	dst = dst[8:]
	for _, n := range ti.SyscallTimes {
		hostarch.ByteOrder.PutUint32(dst[:4], n)
		dst = dst[4:]
	}
	hostarch.ByteOrder.PutUint64(dst[:8], ti.Time)
	return dst[8:]
}

// UnmarshalBytes implements marshal.Marshallable.UnmarshalBytes.
func (ti *TaskInfo) UnmarshalBytes(src []byte) []byte {
	ti.Status = TaskStatus(hostarch.ByteOrder.Uint64(src[:8]))
	src = src[8:]
	for i := range ti.SyscallTimes {
		ti.SyscallTimes[i] = hostarch.ByteOrder.Uint32(src[:4])
		src = src[4:]
	}
	ti.Time = hostarch.ByteOrder.Uint64(src[:8])
	return src[8:]
}

// CopyOut implements marshal.Marshallable.CopyOut.
func (ti *TaskInfo) CopyOut(cc marshal.CopyContext, addr hostarch.Addr) (int, error) {
	return marshal.CopyOut(cc, addr, ti)
}

// CopyIn implements marshal.Marshallable.CopyIn.
func (ti *TaskInfo) CopyIn(cc marshal.CopyContext, addr hostarch.Addr) (int, error) {
	return marshal.CopyIn(cc, addr, ti)
}
