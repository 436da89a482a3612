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

package config

import (
	"flag"
)

// RegisterFlags registers flags used to populate Config.
func RegisterFlags(flagSet *flag.FlagSet) {
	def := Default()

	flagSet.String("config", "", "path to a TOML file with configuration settings. Flags set on the command line override values from the file.")

	// Logging flags.
	flagSet.String("log", "", "file path where internal debug information is written, default is stderr. The following variables are available: %TIMESTAMP%, %COMMAND%.")
	flagSet.String("log-format", def.LogFormat, "log format: text (default), json, or logrus.")
	flagSet.Bool("debug", def.Debug, "enable debug logging.")

	// Flags that control the simulated machine.
	flagSet.Uint("frames", uint(def.Frames), "number of physical frames available to user tasks.")
	flagSet.Int("cpus", def.CPUs, "number of CPUs tasks are scheduled on.")
	flagSet.Uint64("max-user-addr", def.MaxUserAddr, "exclusive upper bound of mappable user addresses; must be page aligned.")
	flagSet.Var(clockTypePtr(def.Clock), "clock", "kernel time source: host (default), manual. The manual clock only moves when a scenario advances it.")
}
