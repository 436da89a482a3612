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

// Package pgalloc contains the page allocator subsystem, which manages the
// physical frames backing application memory.
//
// A MemoryFile is a fixed arena of PageSize frames. Frames are handed out by
// index; their contents are reachable only through MemoryFile.Data. Every
// allocated frame is zero filled.
package pgalloc

import (
	"fmt"

	"gvisor.dev/teachkernel/pkg/bitmap"
	"gvisor.dev/teachkernel/pkg/errors/linuxerr"
	"gvisor.dev/teachkernel/pkg/hostarch"
	"gvisor.dev/teachkernel/pkg/log"
	"gvisor.dev/teachkernel/pkg/sync"
)

// FrameNumber is the index of a frame within a MemoryFile.
type FrameNumber uint32

// String implements fmt.Stringer.String.
func (fn FrameNumber) String() string {
	return fmt.Sprintf("frame#%d", uint32(fn))
}

// MemoryFile is a frame allocator. It is safe for concurrent use.
type MemoryFile struct {
	mu sync.Mutex

	// used tracks allocated frames.
	//
	// +checklocks:mu
	used bitmap.Bitmap

	// hint is where the next search for a free frame begins.
	//
	// +checklocks:mu
	hint uint32

	// data backs every frame. It never moves once allocated. Callers of
	// Data synchronize access to a frame's contents themselves, which in
	// practice means holding the owning MemoryManager's lock.
	data []byte
}

// NewMemoryFile creates a MemoryFile holding frames frames.
func NewMemoryFile(frames uint32) (*MemoryFile, error) {
	if frames == 0 {
		return nil, fmt.Errorf("memory file must hold at least one frame")
	}
	if frames > bitmap.MaxBitEntryLimit {
		return nil, fmt.Errorf("memory file of %d frames exceeds limit %d", frames, bitmap.MaxBitEntryLimit)
	}
	return &MemoryFile{
		used: bitmap.New(frames),
		data: make([]byte, uint64(frames)*hostarch.PageSize),
	}, nil
}

// TotalFrames returns the number of frames in the arena.
func (f *MemoryFile) TotalFrames() uint32 {
	return f.used.Size()
}

// Allocated returns the number of frames currently allocated.
func (f *MemoryFile) Allocated() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.used.GetNumOnes()
}

// Available returns the number of frames that can still be allocated.
func (f *MemoryFile) Available() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.used.Size() - f.used.GetNumOnes()
}

// AllocateN returns n zeroed frames. Either all n frames are allocated or,
// with ENOMEM, none are.
func (f *MemoryFile) AllocateN(n int) ([]FrameNumber, error) {
	if n < 0 {
		return nil, linuxerr.EINVAL
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if avail := f.used.Size() - f.used.GetNumOnes(); uint64(n) > uint64(avail) {
		log.Debugf("pgalloc: %d frames requested, %d available", n, avail)
		return nil, linuxerr.ENOMEM
	}
	fns := make([]FrameNumber, 0, n)
	for len(fns) < n {
		fn, ok := f.findFreeLocked()
		if !ok {
			// Unreachable given the availability check above.
			panic(fmt.Sprintf("pgalloc: bitmap reports %d free frames but none found", f.used.Size()-f.used.GetNumOnes()))
		}
		f.used.Add(uint32(fn))
		clear(f.frameLocked(fn))
		fns = append(fns, fn)
	}
	return fns, nil
}

// findFreeLocked returns the first free frame at or after hint, wrapping
// around to the start of the arena.
//
// Preconditions: f.mu must be locked.
func (f *MemoryFile) findFreeLocked() (FrameNumber, bool) {
	if f.hint < f.used.Size() {
		if i, err := f.used.FirstZero(f.hint); err == nil {
			f.hint = i + 1
			return FrameNumber(i), true
		}
	}
	if i, err := f.used.FirstZero(0); err == nil {
		f.hint = i + 1
		return FrameNumber(i), true
	}
	return 0, false
}

// FreeAll returns every frame in fns to the arena. Freeing a frame that is not
// allocated is a kernel bug and panics.
func (f *MemoryFile) FreeAll(fns []FrameNumber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fn := range fns {
		f.freeLocked(fn)
	}
}

// Preconditions: f.mu must be locked.
func (f *MemoryFile) freeLocked(fn FrameNumber) {
	if uint32(fn) >= f.used.Size() {
		panic(fmt.Sprintf("pgalloc: free of %v outside arena of %d frames", fn, f.used.Size()))
	}
	if !f.used.Remove(uint32(fn)) {
		panic(fmt.Sprintf("pgalloc: double free of %v", fn))
	}
	if uint32(fn) < f.hint {
		f.hint = uint32(fn)
	}
}

// Data returns the PageSize bytes backing fn. Accessing a frame that is not
// allocated is a kernel bug and panics.
func (f *MemoryFile) Data(fn FrameNumber) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if uint32(fn) >= f.used.Size() {
		panic(fmt.Sprintf("pgalloc: %v outside arena of %d frames", fn, f.used.Size()))
	}
	if !f.used.Contains(uint32(fn)) {
		panic(fmt.Sprintf("pgalloc: access to free frame %v", fn))
	}
	return f.frameLocked(fn)
}

func (f *MemoryFile) frameLocked(fn FrameNumber) []byte {
	off := uint64(fn) * hostarch.PageSize
	return f.data[off : off+hostarch.PageSize : off+hostarch.PageSize]
}
