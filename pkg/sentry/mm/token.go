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

package mm

import (
	"fmt"

	"gvisor.dev/teachkernel/pkg/sync"
)

// Token is an opaque handle naming an address space. Code outside the
// kernel's memory subsystem refers to an address space only by its Token.
type Token uint64

// String implements fmt.Stringer.String.
func (t Token) String() string {
	return fmt.Sprintf("as#%d", uint64(t))
}

// Registry mints Tokens and resolves them to MemoryManagers.
type Registry struct {
	mu sync.Mutex

	// last is the most recently minted token. Token 0 is never minted.
	//
	// +checklocks:mu
	last Token

	// spaces maps live tokens to their address spaces.
	//
	// +checklocks:mu
	spaces map[Token]*MemoryManager
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{spaces: make(map[Token]*MemoryManager)}
}

// Register mints a new token for mm.
func (r *Registry) Register(mm *MemoryManager) Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last++
	r.spaces[r.last] = mm
	return r.last
}

// Lookup returns the address space named by tok, if it is live.
func (r *Registry) Lookup(tok Token) (*MemoryManager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mm, ok := r.spaces[tok]
	return mm, ok
}

// FromToken returns the address space named by tok. A token that was never
// minted or has been unregistered indicates kernel state corruption, and
// FromToken panics.
func (r *Registry) FromToken(tok Token) *MemoryManager {
	mm, ok := r.Lookup(tok)
	if !ok {
		panic(fmt.Sprintf("mm: unknown address space token %v", tok))
	}
	return mm
}

// Unregister retires tok and returns the address space it named. Retiring an
// unknown token panics.
func (r *Registry) Unregister(tok Token) *MemoryManager {
	r.mu.Lock()
	defer r.mu.Unlock()
	mm, ok := r.spaces[tok]
	if !ok {
		panic(fmt.Sprintf("mm: unregister of unknown address space token %v", tok))
	}
	delete(r.spaces, tok)
	return mm
}

// Len returns the number of live address spaces.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spaces)
}
