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

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/subcommands"
	kcontext "gvisor.dev/teachkernel/pkg/context"
	"gvisor.dev/teachkernel/pkg/log"
	"gvisor.dev/teachkernel/pkg/sentry/kernel"
	"gvisor.dev/teachkernel/pkg/sentry/pgalloc"
	"gvisor.dev/teachkernel/pkg/sentry/syscalls/linux"
	"gvisor.dev/teachkernel/vmsim/config"
	"gvisor.dev/teachkernel/vmsim/scenario"
)

// demoScenario runs when no --scenario is given. Two tasks share a CPU and
// hand it back and forth while each maps, writes and unmaps a page.
const demoScenario = `
tasks:
  - name: demo
    repeat: 2
    expect_exit: 0
    steps:
      - {op: mmap, start: 0x10000000, len: 4096, port: 3, expect: 0}
      - {op: store, addr: 0x10000000, data: "hello\n"}
      - {op: yield, expect: 0}
      - {op: write, addr: 0x10000000, len: 6, expect: 6}
      - {op: get_time, addr: 0x10000010, expect: 0}
      - {op: set_priority, prio: 16, expect: -1}
      - {op: munmap, start: 0x10000000, len: 4096, expect: 0}
`

// Run implements subcommands.Command for the "run" command.
type Run struct {
	scenario string
	out      io.Writer
}

// Name implements subcommands.Command.Name.
func (*Run) Name() string {
	return "run"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Run) Synopsis() string {
	return "boot a kernel and run a scenario's tasks to completion"
}

// Usage implements subcommands.Command.Usage.
func (*Run) Usage() string {
	return `run [--scenario <file.yaml>] - boot a kernel, run every task of the
scenario and print a JSON report of the results. The exit status is 1 if any
step did not return what it expected.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (r *Run) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.scenario, "scenario", "", "path to a YAML scenario. A built-in demo is run if empty.")
}

// Execute implements subcommands.Command.Execute.
func (r *Run) Execute(ctx context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	conf := args[0].(*config.Config)

	var (
		sc  *scenario.Scenario
		err error
	)
	if r.scenario == "" {
		sc, err = scenario.Load(strings.NewReader(demoScenario))
	} else {
		sc, err = scenario.LoadFile(r.scenario)
	}
	if err != nil {
		Fatalf("loading scenario: %v", err)
	}

	var console bytes.Buffer
	k, err := newKernel(conf, &console)
	if err != nil {
		Fatalf("booting kernel: %v", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	report, err := scenario.Run(kcontext.WithLogger(ctx, log.Log()), k, sc)
	if err != nil {
		Fatalf("%v", err)
	}
	report.Console = console.String()

	enc := json.NewEncoder(stdout(r.out))
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		Fatalf("writing report: %v", err)
	}
	if !report.OK {
		log.Warningf("Scenario did not meet its expectations")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// newKernel boots a kernel with the Linux syscall table as configured by
// conf. Console output is written to console.
func newKernel(conf *config.Config, console io.Writer) (*kernel.Kernel, error) {
	mf, err := pgalloc.NewMemoryFile(conf.Frames)
	if err != nil {
		return nil, err
	}
	k := &kernel.Kernel{}
	if err := k.Init(kernel.InitKernelArgs{
		MemoryFile:   mf,
		Clock:        conf.NewClock(),
		CPUs:         conf.CPUs,
		Layout:       conf.Layout(),
		SyscallTable: linux.Table,
		Console:      console,
	}); err != nil {
		return nil, fmt.Errorf("initializing kernel: %w", err)
	}
	log.Infof("Kernel booted with %d frames, %d CPUs, user addresses below %#x", conf.Frames, conf.CPUs, conf.MaxUserAddr)
	return k, nil
}
