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
	"testing"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a := testMemoryManager(t, 1)
	b := testMemoryManager(t, 1)
	ta, tb := r.Register(a), r.Register(b)
	if ta == tb || ta == 0 || tb == 0 {
		t.Fatalf("Register minted tokens %v and %v", ta, tb)
	}
	if got := r.FromToken(ta); got != a {
		t.Errorf("FromToken(%v) returned the wrong address space", ta)
	}
	if got := r.Unregister(tb); got != b {
		t.Errorf("Unregister(%v) returned the wrong address space", tb)
	}
	if _, ok := r.Lookup(tb); ok {
		t.Errorf("Lookup(%v) succeeded after Unregister", tb)
	}
	if got := r.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}

func TestRegistryUnknownTokenPanics(t *testing.T) {
	r := NewRegistry()
	defer func() {
		if recover() == nil {
			t.Errorf("FromToken of an unknown token did not panic")
		}
	}()
	r.FromToken(42)
}
