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
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/google/subcommands"
	"gvisor.dev/teachkernel/pkg/sentry/mm"
)

// Decode implements subcommands.Command for the "decode" command.
type Decode struct {
	out io.Writer
}

// Name implements subcommands.Command.Name.
func (*Decode) Name() string {
	return "decode"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Decode) Synopsis() string {
	return "print the page permissions an mmap port selects"
}

// Usage implements subcommands.Command.Usage.
func (*Decode) Usage() string {
	return `decode <port>... - print the page permissions each mmap port argument
selects, or why mmap would reject it. Ports may be given in decimal, hex (0x)
or octal (0o).
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (*Decode) SetFlags(*flag.FlagSet) {}

// Execute implements subcommands.Command.Execute.
func (d *Decode) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	out := stdout(d.out)
	status := subcommands.ExitSuccess
	for _, arg := range f.Args() {
		port, err := strconv.ParseUint(arg, 0, 64)
		if err != nil {
			fmt.Fprintf(out, "%s: invalid number: %v\n", arg, err)
			status = subcommands.ExitFailure
			continue
		}
		flags, err := mm.DecodePort(port)
		if err != nil {
			fmt.Fprintf(out, "%#x: %v\n", port, err)
			status = subcommands.ExitFailure
			continue
		}
		fmt.Fprintf(out, "%#x: %v\n", port, flags)
	}
	return status
}
