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

package log

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// GoogleEmitter is a wrapper that emits logs in a format compatible with
// package github.com/golang/glog:
//
//	Lmmdd hh:mm:ss.uuuuuu pid file:line] msg
//
// L is the level (D, I or W) and pid is right aligned to glog's width of 7.
type GoogleEmitter struct {
	*Writer
}

var pid = fmt.Sprintf("%7d", os.Getpid())

var levelLetters = [...]byte{
	Warning: 'W',
	Info:    'I',
	Debug:   'D',
}

// caller returns the base name of the file and the line of the frame depth
// levels above the function calling caller.
func caller(depth int) (string, int, bool) {
	_, file, line, ok := runtime.Caller(depth + 2)
	if !ok {
		return "???", 0, false
	}
	if slash := strings.LastIndexByte(file, '/'); slash >= 0 {
		file = file[slash+1:]
	}
	return file, line, true
}

// appendZeroPadded appends v in decimal, left padded with zeros to width.
func appendZeroPadded(b []byte, v, width int) []byte {
	var digits [20]byte
	d := strconv.AppendInt(digits[:0], int64(v), 10)
	for i := len(d); i < width; i++ {
		b = append(b, '0')
	}
	return append(b, d...)
}

// Emit emits the message, google-style.
func (g GoogleEmitter) Emit(depth int, level Level, timestamp time.Time, format string, args ...any) {
	// Most lines fit; longer ones spill to the heap.
	var local [256]byte
	b := local[:0]

	if int(level) < len(levelLetters) {
		b = append(b, levelLetters[level])
	} else {
		b = append(b, '?')
	}
	_, month, day := timestamp.Date()
	hour, minute, second := timestamp.Clock()
	b = appendZeroPadded(b, int(month), 2)
	b = appendZeroPadded(b, day, 2)
	b = append(b, ' ')
	b = appendZeroPadded(b, hour, 2)
	b = append(b, ':')
	b = appendZeroPadded(b, minute, 2)
	b = append(b, ':')
	b = appendZeroPadded(b, second, 2)
	b = append(b, '.')
	b = appendZeroPadded(b, timestamp.Nanosecond()/1000, 6)
	b = append(b, ' ')
	b = append(b, pid...)
	b = append(b, ' ')

	file, line, _ := caller(depth)
	b = append(b, file...)
	b = append(b, ':')
	b = strconv.AppendInt(b, int64(line), 10)
	b = append(b, "] "...)

	b = fmt.Appendf(b, format, args...)
	b = append(b, '\n')
	g.Writer.Write(b)
}
