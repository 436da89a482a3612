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

package linux

import (
	"gvisor.dev/teachkernel/pkg/sentry/arch"
	"gvisor.dev/teachkernel/pkg/sentry/kernel"
)

// TaskInfo implements the task_info syscall.
func TaskInfo(t *kernel.Task, args arch.SyscallArguments) (uintptr, error) {
	addr := args[0].Pointer()

	info := t.Info()
	if _, err := info.CopyOut(t, addr); err != nil {
		return 0, err
	}
	return 0, nil
}
