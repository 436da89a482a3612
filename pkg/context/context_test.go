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

package context

import (
	"context"
	"testing"

	"gvisor.dev/teachkernel/pkg/log"
)

type testKey struct{}

func TestWithLogger(t *testing.T) {
	emitter := &log.TestEmitter{TestLogger: t}
	logger := log.Basic(emitter)
	logger.SetLevel(log.Debug)

	parent, cancel := context.WithCancel(context.WithValue(context.Background(), testKey{}, "v"))
	ctx := WithLogger(parent, logger)
	if got := ctx.Value(testKey{}); got != "v" {
		t.Errorf("Value() = %v, want v", got)
	}

	ctx.Debugf("mapped %d pages", 3)
	if !ctx.IsLogging(log.Debug) {
		t.Errorf("IsLogging(Debug) = false, want true")
	}

	cancel()
	<-ctx.Done()
	if ctx.Err() != context.Canceled {
		t.Errorf("Err() = %v, want %v", ctx.Err(), context.Canceled)
	}
}

func TestBackground(t *testing.T) {
	ctx := Background()
	if ctx.Done() != nil {
		t.Errorf("Background().Done() is not nil")
	}
	if ctx.Value(testKey{}) != nil {
		t.Errorf("Background() carries a value")
	}
}
