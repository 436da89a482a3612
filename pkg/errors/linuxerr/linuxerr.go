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

// Package linuxerr contains syscall error codes exported as error interface
// pointers. This allows for fast comparison and return operations comparable
// to unix.Errno constants.
//
// The memory-management core reports a small taxonomy that maps onto these
// values:
//
//   - invalid argument (misaligned start, bad permission bits): EINVAL
//   - address conflict (mapping over a mapped page): EEXIST
//   - unmapped address (unmapping or copying through an unmapped or
//     insufficiently-permitted page): EFAULT
//   - unimplemented (set_priority): ENOSYS
//
// All of them are collapsed into -1 at the syscall boundary.
package linuxerr

import (
	"golang.org/x/sys/unix"
	"gvisor.dev/teachkernel/pkg/errors"
)

// The following errors are semantically identical to Errno of type
// unix.Errno. However, since the types are distinct (these are
// *errors.Error), they are not directly comparable. The Errno method returns
// an Errno number such that the error can be compared to unix.Errno (e.g.
// EPERM.Errno() == unix.EPERM is true).
var (
	noError *errors.Error = nil
	EPERM                 = errors.New(unix.EPERM, "operation not permitted")
	ESRCH                 = errors.New(unix.ESRCH, "no such process")
	EBADF                 = errors.New(unix.EBADF, "bad file number")
	ENOMEM                = errors.New(unix.ENOMEM, "out of memory")
	EFAULT                = errors.New(unix.EFAULT, "bad address")
	EEXIST                = errors.New(unix.EEXIST, "file exists")
	EINVAL                = errors.New(unix.EINVAL, "invalid argument")
	ENOSYS                = errors.New(unix.ENOSYS, "invalid system call number")
)

// errorSlice maps errno numbers to their registered *errors.Error values.
var errorSlice = []*errors.Error{
	unix.EPERM:  EPERM,
	unix.ESRCH:  ESRCH,
	unix.EBADF:  EBADF,
	unix.ENOMEM: ENOMEM,
	unix.EFAULT: EFAULT,
	unix.EEXIST: EEXIST,
	unix.EINVAL: EINVAL,
	unix.ENOSYS: ENOSYS,
}

// ErrorFromUnix returns the *errors.Error for err, or err itself wrapped
// as a generic error if it is not one of the registered values.
func ErrorFromUnix(err unix.Errno) error {
	if err == unix.Errno(0) {
		return nil
	}
	if int(err) < len(errorSlice) {
		if e := errorSlice[err]; e != nil {
			return e
		}
	}
	return errors.New(err, err.Error())
}

// ToError converts an *errors.Error to an error, preserving nil.
func ToError(err *errors.Error) error {
	if err == noError {
		return nil
	}
	return err
}

// ToUnix converts an *errors.Error to a unix.Errno. It returns 0 for nil.
func ToUnix(e *errors.Error) unix.Errno {
	if e == noError {
		return 0
	}
	return e.Errno()
}

// Equals compares a linuxerr to a given error. It returns true if err is the
// same *errors.Error or a unix.Errno with the same number.
func Equals(e *errors.Error, err error) bool {
	var unixErr unix.Errno
	switch x := err.(type) {
	case *errors.Error:
		return e == x || (e != nil && x != nil && e.Errno() == x.Errno())
	case unix.Errno:
		unixErr = x
	default:
		return false
	}
	return e != nil && e.Errno() == unixErr
}

// Errno returns the errno number carried by err, if any.
func Errno(err error) (unix.Errno, bool) {
	switch x := err.(type) {
	case *errors.Error:
		return x.Errno(), true
	case unix.Errno:
		return x, true
	}
	return 0, false
}
