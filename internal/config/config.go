//
// FrankyGo - UCI chess engine in GO for learning purposes
//
// MIT License
//
// Copyright (c) 2018-2020 Frank Kopp
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//

// Package config holds globally available configuration, set from
// defaults, an optional TOML file, and command-line flags, in that
// precedence order (flags parsed after Setup override file values).
package config

import (
	"log"
	"os"

	"github.com/BurntSushi/toml"
)

// Global configuration values, mutable before Setup and read-only after.
var (
	// ConfFile is the path to the optional config file.
	ConfFile = ""

	// LogLevel/SearchLogLevel hold level names for general engine logging
	// and hot-path search logging (which defaults quieter). No package reads
	// them; internal/logging has a single backend whose levels are set with
	// logging.SetLevel.
	LogLevel       = "INFO"
	SearchLogLevel = "WARNING"

	// Settings holds the TOML-decoded [search]/[eval] sections.
	Settings conf

	initialized = false
)

type searchConfiguration struct {
	DefaultThreads int
	DefaultHashMb  int
	UseOwnBook     bool
	BookFile       string
}

type evalConfiguration struct {
	NnueFile string
}

type conf struct {
	Search searchConfiguration
	Eval   evalConfiguration
}

func defaults() conf {
	return conf{
		Search: searchConfiguration{
			DefaultThreads: 1,
			DefaultHashMb:  128,
			UseOwnBook:     true,
			BookFile:       "",
		},
		Eval: evalConfiguration{NnueFile: ""},
	}
}

// Setup loads ConfFile if set and resolvable, falling back to defaults
// for anything the file omits or that is absent entirely.
func Setup() {
	if initialized {
		return
	}
	Settings = defaults()
	if ConfFile != "" {
		if _, err := os.Stat(ConfFile); err == nil {
			if _, err := toml.DecodeFile(ConfFile, &Settings); err != nil {
				log.Printf("config: could not parse %s, using defaults (%v)", ConfFile, err)
			}
		}
	}
	initialized = true
}
