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

package kernel

import (
	"context"

	"gvisor.dev/teachkernel/pkg/abi/linux"
	"gvisor.dev/teachkernel/pkg/log"
	"gvisor.dev/teachkernel/pkg/sync"
)

// taskEvent is the reason a task goroutine hands its CPU back.
type taskEvent int

const (
	taskYielded taskEvent = iota
	taskExited
)

// cpu runs the tasks queued on it one at a time, in FIFO order.
type cpu struct {
	id int
	k  *Kernel

	mu sync.Mutex

	// +checklocks:mu
	queue []*Task
}

func (c *cpu) enqueue(t *Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, t)
}

func (c *cpu) dequeue() *Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return nil
	}
	t := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	return t
}

// run schedules tasks until the queue drains or ctx is cancelled.
func (c *cpu) run(ctx context.Context) error {
	for {
		t := c.dequeue()
		if t == nil {
			log.Debugf("CPU %d: run queue empty", c.id)
			return nil
		}
		if err := ctx.Err(); err != nil {
			c.enqueue(t)
			return err
		}
		ev, ok := c.switchTo(ctx, t)
		if !ok {
			return ctx.Err()
		}
		if ev == taskYielded {
			c.enqueue(t)
		}
	}
}

// switchTo runs t until it yields or exits. It returns false if ctx is
// cancelled first.
func (c *cpu) switchTo(ctx context.Context, t *Task) (taskEvent, bool) {
	now := c.k.clock.Now()
	t.mu.Lock()
	t.status = linux.TaskRunning
	if !t.scheduled {
		t.scheduled = true
		t.startTime = now
	}
	t.mu.Unlock()

	if !t.goroutineStarted {
		t.goroutineStarted = true
		c.k.taskWG.Add(1)
		go t.run()
	} else {
		t.wake <- struct{}{}
	}

	select {
	case ev := <-t.switchOut:
		return ev, true
	case <-ctx.Done():
		return 0, false
	}
}
