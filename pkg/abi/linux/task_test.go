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
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTimevalFromMicros(t *testing.T) {
	for _, tc := range []struct {
		us   uint64
		want Timeval
	}{
		{0, Timeval{}},
		{999999, Timeval{Sec: 0, Usec: 999999}},
		{1000000, Timeval{Sec: 1, Usec: 0}},
		{3500042, Timeval{Sec: 3, Usec: 500042}},
	} {
		got := TimevalFromMicros(tc.us)
		if got != tc.want {
			t.Errorf("TimevalFromMicros(%d) = %+v, want %+v", tc.us, got, tc.want)
		}
		if got.Micros() != tc.us {
			t.Errorf("%+v.Micros() = %d, want %d", got, got.Micros(), tc.us)
		}
	}
}

func TestTimevalLayout(t *testing.T) {
	tv := Timeval{Sec: 0x0102030405060708, Usec: 42}
	buf := make([]byte, tv.SizeBytes())
	if rest := tv.MarshalBytes(buf); len(rest) != 0 {
		t.Fatalf("MarshalBytes left %d bytes", len(rest))
	}
	if got := binary.LittleEndian.Uint64(buf[0:8]); got != tv.Sec {
		t.Errorf("sec at offset 0 = %#x, want %#x", got, tv.Sec)
	}
	if got := binary.LittleEndian.Uint64(buf[8:16]); got != tv.Usec {
		t.Errorf("usec at offset 8 = %d, want %d", got, tv.Usec)
	}
}

func TestTaskInfoLayout(t *testing.T) {
	if SizeofTaskInfo != 2016 {
		t.Fatalf("SizeofTaskInfo = %d, want 2016", SizeofTaskInfo)
	}

	var ti TaskInfo
	ti.Status = TaskRunning
	ti.SyscallTimes[SYS_GET_TIME] = 3
	ti.SyscallTimes[MaxSyscallNum-1] = 9
	ti.Time = 1234

	buf := make([]byte, ti.SizeBytes())
	ti.MarshalBytes(buf)
	if got := binary.LittleEndian.Uint64(buf[0:8]); got != uint64(TaskRunning) {
		t.Errorf("status word = %d, want %d", got, TaskRunning)
	}
	off := 8 + 4*SYS_GET_TIME
	if got := binary.LittleEndian.Uint32(buf[off : off+4]); got != 3 {
		t.Errorf("syscall_times[get_time] = %d, want 3", got)
	}
	if got := binary.LittleEndian.Uint64(buf[SizeofTaskInfo-8:]); got != 1234 {
		t.Errorf("time word = %d, want 1234", got)
	}

	var back TaskInfo
	back.UnmarshalBytes(buf)
	if diff := cmp.Diff(ti, back); diff != "" {
		t.Errorf("TaskInfo mismatch after unmarshal (-want +got):\n%s", diff)
	}
}

func TestTaskStatusString(t *testing.T) {
	if got := TaskExited.String(); got != "Exited" {
		t.Errorf("TaskExited.String() = %q", got)
	}
	if got := TaskStatus(9).String(); got != "TaskStatus(9)" {
		t.Errorf("TaskStatus(9).String() = %q", got)
	}
}
