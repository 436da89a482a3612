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

package pagetables

import (
	"gvisor.dev/teachkernel/pkg/hostarch"
)

// Flags is the set of capabilities carried by a page table entry.
//
// Flags is a closed set of named capabilities; callers combine them with
// Union, Intersect and SupersetOf rather than with integer arithmetic.
type Flags struct {
	// Valid indicates the entry translates to a frame.
	Valid bool

	// User indicates the page is accessible from user mode.
	User bool

	// AccessType defines permissions.
	AccessType hostarch.AccessType
}

// Individual capabilities.
var (
	NoFlags     = Flags{}
	FlagValid   = Flags{Valid: true}
	FlagUser    = Flags{User: true}
	FlagRead    = Flags{AccessType: hostarch.Read}
	FlagWrite   = Flags{AccessType: hostarch.Write}
	FlagExecute = Flags{AccessType: hostarch.Execute}

	// UserValid is carried by every user mapping.
	UserValid = Flags{Valid: true, User: true}
)

// Union returns the capabilities set in either f or other.
func (f Flags) Union(other Flags) Flags {
	return Flags{
		Valid:      f.Valid || other.Valid,
		User:       f.User || other.User,
		AccessType: f.AccessType.Union(other.AccessType),
	}
}

// Intersect returns the capabilities set in both f and other.
func (f Flags) Intersect(other Flags) Flags {
	return Flags{
		Valid:      f.Valid && other.Valid,
		User:       f.User && other.User,
		AccessType: f.AccessType.Intersect(other.AccessType),
	}
}

// SupersetOf returns true iff every capability in other is also in f.
func (f Flags) SupersetOf(other Flags) bool {
	if other.Valid && !f.Valid {
		return false
	}
	if other.User && !f.User {
		return false
	}
	return f.AccessType.SupersetOf(other.AccessType)
}

// Port returns the user-visible permission encoding of f: bit 0 is read,
// bit 1 is write and bit 2 is execute.
func (f Flags) Port() uint64 {
	var port uint64
	if f.AccessType.Read {
		port |= 1 << 0
	}
	if f.AccessType.Write {
		port |= 1 << 1
	}
	if f.AccessType.Execute {
		port |= 1 << 2
	}
	return port
}

// String returns a pretty representation of f, such as "Vrw-U".
func (f Flags) String() string {
	b := []byte{'-', '-', '-', '-', '-'}
	if f.Valid {
		b[0] = 'V'
	}
	copy(b[1:4], f.AccessType.String())
	if f.User {
		b[4] = 'U'
	}
	return string(b)
}
