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

// Package logging configures the engine's named op/go-logging loggers.
// Every package that logs calls GetLog(name) once at init time and keeps
// the returned logger.
package logging

import (
	"os"

	logging "github.com/op/go-logging"
)

var (
	format = logging.MustStringFormatter(
		`%{time:15:04:05.000} %{shortfile} %{level:-7s}: %{message}`,
	)
	backend      = logging.NewLogBackend(os.Stdout, "", 0)
	backendLevel = logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
)

func init() {
	backendLevel.SetLevel(logging.INFO, "")
	logging.SetBackend(backendLevel)
}

// GetLog returns (creating if needed) the named logger.
func GetLog(name string) *logging.Logger {
	return logging.MustGetLogger(name)
}

// SetLevel parses a textual level ("DEBUG", "INFO", "WARNING", "ERROR")
// and applies it either globally (module == "") or to a single module.
func SetLevel(level, module string) error {
	lvl, err := logging.LogLevel(level)
	if err != nil {
		return err
	}
	backendLevel.SetLevel(lvl, module)
	return nil
}
