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

// Package config provides basic infrastructure to set configuration settings
// for vmsim. Settings come from command line flags and, optionally, a TOML
// file named by --config. Flags that are set explicitly take precedence over
// the file.
package config

import (
	"flag"
	"fmt"
	"io"
	"reflect"

	"github.com/BurntSushi/toml"
	"gvisor.dev/teachkernel/pkg/hostarch"
	"gvisor.dev/teachkernel/pkg/sentry/ktime"
	"gvisor.dev/teachkernel/pkg/sentry/mm"
)

// Config holds configuration that is not part of a scenario.
type Config struct {
	// Frames is the number of physical frames available to user tasks.
	Frames uint32 `toml:"frames" flag:"frames"`

	// CPUs is the number of CPUs tasks are spread across.
	CPUs int `toml:"cpus" flag:"cpus"`

	// MaxUserAddr is the exclusive upper bound of mappable user addresses.
	MaxUserAddr uint64 `toml:"max-user-addr" flag:"max-user-addr"`

	// Clock selects the kernel time source.
	Clock ClockType `toml:"clock" flag:"clock"`

	// Debug indicates that debug logging should be enabled.
	Debug bool `toml:"debug" flag:"debug"`

	// LogFormat is the log format: text, json or logrus.
	LogFormat string `toml:"log-format" flag:"log-format"`

	// LogFilename is the filename to log to, if not empty. It may contain
	// %COMMAND% and %TIMESTAMP%.
	LogFilename string `toml:"log" flag:"log"`
}

// ClockType selects the kernel clock.
type ClockType string

const (
	// ClockHost reads the host's monotonic clock.
	ClockHost ClockType = "host"

	// ClockManual is a clock that only moves when a scenario advances it.
	ClockManual ClockType = "manual"
)

func clockTypePtr(v ClockType) *ClockType {
	return &v
}

// Set implements flag.Value.
func (c *ClockType) Set(v string) error {
	switch ClockType(v) {
	case ClockHost, ClockManual:
		*c = ClockType(v)
		return nil
	default:
		return fmt.Errorf("invalid clock type %q", v)
	}
}

// Get implements flag.Getter.
func (c *ClockType) Get() any {
	return *c
}

// String implements flag.Value.
func (c ClockType) String() string {
	return string(c)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClockType) UnmarshalText(text []byte) error {
	return c.Set(string(text))
}

// MarshalText implements encoding.TextMarshaler.
func (c ClockType) MarshalText() ([]byte, error) {
	return []byte(c), nil
}

// Default returns the configuration used when no flag or file sets a value.
func Default() *Config {
	return &Config{
		Frames:      1024,
		CPUs:        1,
		MaxUserAddr: uint64(mm.DefaultLayout.MaxAddr),
		Clock:       ClockHost,
		LogFormat:   "text",
	}
}

// NewFromFlags creates a new Config with values coming from command line
// flags, layered over the file named by --config, if any.
func NewFromFlags(flagSet *flag.FlagSet) (*Config, error) {
	conf := Default()
	if f := flagSet.Lookup("config"); f != nil && f.Value.String() != "" {
		if _, err := toml.DecodeFile(f.Value.String(), conf); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", f.Value.String(), err)
		}
	}

	var err error
	flagSet.Visit(func(f *flag.Flag) {
		if err == nil {
			err = conf.setFromFlag(f)
		}
	})
	if err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// setFromFlag copies the value of an explicitly set flag into the field
// tagged with its name. Flags without a matching field are ignored.
func (c *Config) setFromFlag(f *flag.Flag) error {
	obj := reflect.ValueOf(c).Elem()
	st := obj.Type()
	for i := 0; i < st.NumField(); i++ {
		if st.Field(i).Tag.Get("flag") != f.Name {
			continue
		}
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return fmt.Errorf("flag %q does not implement flag.Getter", f.Name)
		}
		val := reflect.ValueOf(getter.Get())
		field := obj.Field(i)
		if !val.Type().ConvertibleTo(field.Type()) {
			return fmt.Errorf("flag %q of type %v cannot set field of type %v", f.Name, val.Type(), field.Type())
		}
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return nil
}

// Validate checks that the configuration describes a bootable kernel.
func (c *Config) Validate() error {
	if c.Frames == 0 {
		return fmt.Errorf("frames must be greater than zero")
	}
	if c.CPUs <= 0 {
		return fmt.Errorf("cpus must be greater than zero, got %d", c.CPUs)
	}
	if c.MaxUserAddr < hostarch.PageSize || !hostarch.Addr(c.MaxUserAddr).IsPageAligned() {
		return fmt.Errorf("max-user-addr %#x must be a non-zero multiple of the page size", c.MaxUserAddr)
	}
	var clock ClockType
	if err := clock.Set(string(c.Clock)); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json", "logrus":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	return nil
}

// Layout returns the user address space layout.
func (c *Config) Layout() mm.Layout {
	return mm.Layout{MinAddr: 0, MaxAddr: hostarch.Addr(c.MaxUserAddr)}
}

// NewClock returns a fresh clock of the configured type.
func (c *Config) NewClock() ktime.Clock {
	if c.Clock == ClockManual {
		return &ktime.ManualClock{}
	}
	return ktime.NewHostClock()
}

// WriteTOML writes the configuration to w in the --config file format.
func (c *Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
