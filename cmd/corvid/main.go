/*
 * FrankyGo - UCI chess engine in GO for learning purposes
 *
 * MIT License
 *
 * Copyright (c) 2018-2020 Frank Kopp
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/corvidchess/corvid/internal/config"
	"github.com/corvidchess/corvid/internal/logging"
	"github.com/corvidchess/corvid/internal/movegen"
	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/uci"
	"github.com/corvidchess/corvid/internal/version"
)

var out = message.NewPrinter(language.English)

func main() {
	versionInfo := flag.Bool("version", false, "prints version and exits")
	configFile := flag.String("config", "./config.toml", "path to configuration settings file")
	logLvl := flag.String("loglvl", "INFO", "standard log level (DEBUG|INFO|WARNING|ERROR)")
	searchLogLvl := flag.String("searchloglvl", "WARNING", "search log level (DEBUG|INFO|WARNING|ERROR)")
	bookFile := flag.String("bookfile", "", "path to a PolyGlot opening book file")
	perft := flag.Int("perft", 0, "runs perft to the given depth on -fen and exits")
	fen := flag.String("fen", position.StartFen, "starting position for -perft")
	cpuProfile := flag.Bool("cpuprofile", false, "write a CPU profile to ./cpu.pprof")
	flag.Parse()

	if *versionInfo {
		printVersionInfo()
		return
	}

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	config.ConfFile = *configFile
	config.Setup()
	if *bookFile != "" {
		config.Settings.Search.BookFile = *bookFile
		config.Settings.Search.UseOwnBook = true
	}

	if err := logging.SetLevel(*logLvl, ""); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -loglvl %q: %v\n", *logLvl, err)
	}
	if err := logging.SetLevel(*searchLogLvl, "search"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -searchloglvl %q: %v\n", *searchLogLvl, err)
	}

	if *perft != 0 {
		p, err := position.NewFromFen(*fen)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -fen %q: %v\n", *fen, err)
			os.Exit(1)
		}
		for d := 1; d <= *perft; d++ {
			start := time.Now()
			nodes := movegen.Perft(p, d)
			elapsed := time.Since(start)
			out.Printf("perft(%d) = %d  (%s, %.0f nps)\n", d, nodes, elapsed, float64(nodes)/elapsed.Seconds())
		}
		return
	}

	u := uci.NewHandler()
	u.Loop()
}

func printVersionInfo() {
	out.Printf("corvid %s\n", version.Version())
	out.Println("Environment:")
	out.Printf("  Using GO version %s\n", runtime.Version())
	out.Printf("  Running %s using %s as a compiler\n", runtime.GOARCH, runtime.Compiler)
	out.Printf("  Number of CPU: %d\n", runtime.NumCPU())
	cwd, _ := os.Getwd()
	out.Printf("  Working directory: %s\n", cwd)
}
