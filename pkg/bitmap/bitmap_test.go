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

package bitmap

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAddRemove(t *testing.T) {
	b := New(130)
	for _, i := range []uint32{0, 63, 64, 129} {
		if !b.Add(i) {
			t.Errorf("Add(%d) = false on a clear bit", i)
		}
	}
	if b.Add(63) {
		t.Errorf("Add(63) = true on a set bit")
	}
	if got, want := b.GetNumOnes(), uint32(4); got != want {
		t.Errorf("GetNumOnes() = %d, want %d", got, want)
	}
	if diff := cmp.Diff([]uint32{0, 63, 64, 129}, b.ToSlice()); diff != "" {
		t.Errorf("ToSlice() mismatch (-want +got):\n%s", diff)
	}
	if !b.Remove(64) {
		t.Errorf("Remove(64) = false on a set bit")
	}
	if b.Remove(64) {
		t.Errorf("Remove(64) = true on a clear bit")
	}
	if b.Contains(64) || !b.Contains(129) {
		t.Errorf("Contains mismatch after Remove: %v", b.ToSlice())
	}
}

func TestFirstZero(t *testing.T) {
	b := New(66)
	for i := uint32(0); i < 65; i++ {
		b.Add(i)
	}
	if got, err := b.FirstZero(0); err != nil || got != 65 {
		t.Errorf("FirstZero(0) = (%d, %v), want (65, nil)", got, err)
	}
	b.Add(65)
	if _, err := b.FirstZero(0); err == nil {
		t.Errorf("FirstZero on a full bitmap succeeded")
	}
	b.Remove(3)
	if got, err := b.FirstZero(1); err != nil || got != 3 {
		t.Errorf("FirstZero(1) = (%d, %v), want (3, nil)", got, err)
	}
}

func TestFirstZeroIgnoresPadding(t *testing.T) {
	// Bits 3..63 of the only word are padding and must never be returned.
	b := New(3)
	b.Add(0)
	b.Add(1)
	b.Add(2)
	if got, err := b.FirstZero(0); err == nil {
		t.Errorf("FirstZero = %d, want error", got)
	}
}

func TestFirstOne(t *testing.T) {
	b := New(200)
	if _, err := b.FirstOne(0); err == nil {
		t.Errorf("FirstOne on an empty bitmap succeeded")
	}
	b.Add(150)
	if got, err := b.FirstOne(10); err != nil || got != 150 {
		t.Errorf("FirstOne(10) = (%d, %v), want (150, nil)", got, err)
	}
	if _, err := b.FirstOne(151); err == nil {
		t.Errorf("FirstOne(151) succeeded")
	}
}
