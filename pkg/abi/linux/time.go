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
	"gvisor.dev/teachkernel/pkg/hostarch"
	"gvisor.dev/teachkernel/pkg/marshal"
)

const (
	// MicrosPerSecond is the number of microseconds in a second.
	MicrosPerSecond = 1000000

	// MicrosPerMilli is the number of microseconds in a millisecond.
	MicrosPerMilli = 1000
)

// Timeval represents struct timeval as written by get_time.
//
// Both fields are machine words; the layout is fixed for user-space readers.
type Timeval struct {
	Sec  uint64
	Usec uint64
}

// SizeofTimeval is the size of a Timeval struct in bytes.
const SizeofTimeval = 16

// TimevalFromMicros converts a microsecond count into a Timeval.
func TimevalFromMicros(us uint64) Timeval {
	return Timeval{
		Sec:  us / MicrosPerSecond,
		Usec: us % MicrosPerSecond,
	}
}

// Micros returns tv as a single microsecond count.
func (tv Timeval) Micros() uint64 {
	return tv.Sec*MicrosPerSecond + tv.Usec
}

// SizeBytes implements marshal.Marshallable.SizeBytes.
func (tv *Timeval) SizeBytes() int {
	return SizeofTimeval
}

// MarshalBytes implements marshal.Marshallable.MarshalBytes.
func (tv *Timeval) MarshalBytes(dst []byte) []byte {
	hostarch.ByteOrder.PutUint64(dst[:8], tv.Sec)
	dst = dst[8:]
	hostarch.ByteOrder.PutUint64(dst[:8], tv.Usec)
	return dst[8:]
}

// UnmarshalBytes implements marshal.Marshallable.UnmarshalBytes.
func (tv *Timeval) UnmarshalBytes(src []byte) []byte {
	tv.Sec = hostarch.ByteOrder.Uint64(src[:8])
	src = src[8:]
	tv.Usec = hostarch.ByteOrder.Uint64(src[:8])
	return src[8:]
}

// CopyOut implements marshal.Marshallable.CopyOut.
func (tv *Timeval) CopyOut(cc marshal.CopyContext, addr hostarch.Addr) (int, error) {
	return marshal.CopyOut(cc, addr, tv)
}

// CopyIn implements marshal.Marshallable.CopyIn.
func (tv *Timeval) CopyIn(cc marshal.CopyContext, addr hostarch.Addr) (int, error) {
	return marshal.CopyIn(cc, addr, tv)
}
