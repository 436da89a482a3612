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

package linuxerr

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestErrorFromUnix(t *testing.T) {
	for _, tc := range []struct {
		errno unix.Errno
		want  error
	}{
		{errno: 0, want: nil},
		{errno: unix.EINVAL, want: EINVAL},
		{errno: unix.EEXIST, want: EEXIST},
		{errno: unix.EFAULT, want: EFAULT},
		{errno: unix.ENOSYS, want: ENOSYS},
	} {
		if got := ErrorFromUnix(tc.errno); got != tc.want {
			t.Errorf("ErrorFromUnix(%v) = %v, want %v", tc.errno, got, tc.want)
		}
	}
}

func TestUnregisteredErrno(t *testing.T) {
	err := ErrorFromUnix(unix.EPIPE)
	errno, ok := Errno(err)
	if !ok || errno != unix.EPIPE {
		t.Errorf("Errno(ErrorFromUnix(EPIPE)) = (%v, %t), want (%v, true)", errno, ok, unix.EPIPE)
	}
}

func TestEquals(t *testing.T) {
	if !Equals(EFAULT, EFAULT) {
		t.Errorf("Equals(EFAULT, EFAULT) = false")
	}
	if !Equals(EFAULT, unix.EFAULT) {
		t.Errorf("Equals(EFAULT, unix.EFAULT) = false")
	}
	if Equals(EFAULT, EINVAL) {
		t.Errorf("Equals(EFAULT, EINVAL) = true")
	}
	if Equals(EINVAL, nil) {
		t.Errorf("Equals(EINVAL, nil) = true")
	}
	if got := ToUnix(EEXIST); got != unix.EEXIST {
		t.Errorf("ToUnix(EEXIST) = %v, want %v", got, unix.EEXIST)
	}
	if got := ToUnix(nil); got != 0 {
		t.Errorf("ToUnix(nil) = %v, want 0", got)
	}
}
