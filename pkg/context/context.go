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

// Package context defines an internal context type.
//
// The given Context conforms to the standard Go context, but mandates
// additional methods that are specific to the kernel. Passing a kernel
// context where a standard context is ok, but not vice versa.
package context

import (
	"context"

	"gvisor.dev/teachkernel/pkg/log"
)

// A Context represents a thread of execution (hereafter "goroutine" to reflect
// Go idiosyncrasy). It carries state associated with the goroutine across API
// boundaries.
//
// Unlike context.Context, it is not safe to use the same Context in multiple
// concurrent goroutines.
type Context interface {
	context.Context
	log.Logger
}

type logContext struct {
	context.Context
	log.Logger
}

// bgContext is the context returned by context.Background.
var bgContext = &logContext{
	Context: context.Background(),
	Logger:  log.Global(),
}

// Background returns an empty context using the default logger.
//
// Generally, one should use the Task as their context when available, or avoid
// having to use a context in places where a Task is unavailable.
//
// Using a Background context for tests is fine, as long as no values are
// needed from the context in the tested code paths.
func Background() Context {
	return bgContext
}

// WithLogger returns a Context that carries the cancellation and values of
// ctx and logs to logger.
func WithLogger(ctx context.Context, logger log.Logger) Context {
	return &logContext{Context: ctx, Logger: logger}
}
