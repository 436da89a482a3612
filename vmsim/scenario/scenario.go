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

// Package scenario describes user programs as YAML documents and runs them as
// kernel tasks.
//
// A scenario is a list of tasks, each a list of steps. Most steps issue one
// syscall; store and load touch user memory directly, the way a user program
// dereferencing a pointer would, and fault the task if the page does not
// allow the access. For example:
//
//	tasks:
//	  - name: writer
//	    repeat: 2
//	    steps:
//	      - {op: mmap, start: 0x10000000, len: 4096, port: 3, expect: 0}
//	      - {op: store, addr: 0x10000000, data: "hello\n"}
//	      - {op: write, addr: 0x10000000, len: 6, expect: 6}
//	      - {op: munmap, start: 0x10000000, len: 4096, expect: 0}
package scenario

import (
	"fmt"
	"io"
	"os"

	"github.com/mohae/deepcopy"
	"gopkg.in/yaml.v3"
)

// Op names a step.
type Op string

// Supported steps.
const (
	OpMmap        Op = "mmap"
	OpMunmap      Op = "munmap"
	OpGetTime     Op = "get_time"
	OpTaskInfo    Op = "task_info"
	OpYield       Op = "yield"
	OpSetPriority Op = "set_priority"
	OpWrite       Op = "write"
	OpStore       Op = "store"
	OpLoad        Op = "load"
	OpAdvance     Op = "advance"
	OpExit        Op = "exit"
)

var knownOps = map[Op]struct{}{
	OpMmap:        {},
	OpMunmap:      {},
	OpGetTime:     {},
	OpTaskInfo:    {},
	OpYield:       {},
	OpSetPriority: {},
	OpWrite:       {},
	OpStore:       {},
	OpLoad:        {},
	OpAdvance:     {},
	OpExit:        {},
}

// MaxLoadBytes bounds the length of a single load, matching the limit the
// write syscall places on one call.
const MaxLoadBytes = 1 << 20

// Step is a single action of a task. Which fields are meaningful depends on
// Op.
type Step struct {
	Op Op `yaml:"op"`

	// Start, Len and Port are the mmap and munmap arguments. Len is also the
	// byte count of write and load.
	Start uint64 `yaml:"start,omitempty"`
	Len   uint64 `yaml:"len,omitempty"`
	Port  uint64 `yaml:"port,omitempty"`

	// Addr is the user address used by get_time, task_info, write, store
	// and load.
	Addr uint64 `yaml:"addr,omitempty"`

	Prio int64 `yaml:"prio,omitempty"`
	Code int32 `yaml:"code,omitempty"`

	// Data is written by store.
	Data string `yaml:"data,omitempty"`

	// Want is the content load expects to read.
	Want *string `yaml:"want,omitempty"`

	// Usec is how far advance moves a manual clock, in microseconds.
	Usec int64 `yaml:"usec,omitempty"`

	// Expect is the return value the step's syscall should produce.
	Expect *int64 `yaml:"expect,omitempty"`
}

// Task is a named program. Repeat runs that many copies of it; zero means one.
type Task struct {
	Name   string `yaml:"name"`
	Repeat int    `yaml:"repeat,omitempty"`
	Steps  []Step `yaml:"steps"`

	// ExpectExit is the exit code the task should finish with.
	ExpectExit *int32 `yaml:"expect_exit,omitempty"`
}

// Scenario is a set of tasks run together on one kernel.
type Scenario struct {
	Tasks []Task `yaml:"tasks"`
}

// Load decodes and validates a scenario. Unknown fields are rejected.
func Load(r io.Reader) (*Scenario, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var sc Scenario
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadFile is Load on the contents of the named file.
func LoadFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Validate checks task names, repeat counts and step operations.
func (sc *Scenario) Validate() error {
	if len(sc.Tasks) == 0 {
		return fmt.Errorf("scenario has no tasks")
	}
	names := make(map[string]struct{}, len(sc.Tasks))
	for i, task := range sc.Tasks {
		if task.Name == "" {
			return fmt.Errorf("task %d has no name", i)
		}
		if _, ok := names[task.Name]; ok {
			return fmt.Errorf("duplicate task name %q", task.Name)
		}
		names[task.Name] = struct{}{}
		if task.Repeat < 0 {
			return fmt.Errorf("task %q: negative repeat %d", task.Name, task.Repeat)
		}
		for j, step := range task.Steps {
			if _, ok := knownOps[step.Op]; !ok {
				return fmt.Errorf("task %q step %d: unknown op %q", task.Name, j, step.Op)
			}
			if step.Op == OpLoad && step.Len > MaxLoadBytes {
				return fmt.Errorf("task %q step %d: load of %d bytes exceeds the %d byte limit", task.Name, j, step.Len, MaxLoadBytes)
			}
			if step.Op == OpLoad && step.Want != nil && uint64(len(*step.Want)) != step.Len {
				return fmt.Errorf("task %q step %d: want has %d bytes, len is %d", task.Name, j, len(*step.Want), step.Len)
			}
		}
	}
	return nil
}

// Expand returns one task per copy to be spawned. Repeated tasks are deep
// copies named "<name>.<n>", so no two copies share step state.
func (sc *Scenario) Expand() []Task {
	var tasks []Task
	for _, task := range sc.Tasks {
		if task.Repeat <= 1 {
			tasks = append(tasks, task)
			continue
		}
		for n := 0; n < task.Repeat; n++ {
			cp := deepcopy.Copy(task).(Task)
			cp.Name = fmt.Sprintf("%s.%d", task.Name, n)
			cp.Repeat = 0
			tasks = append(tasks, cp)
		}
	}
	return tasks
}
