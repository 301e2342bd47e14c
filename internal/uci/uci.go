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

// Package uci implements the UCI protocol loop that bridges a chess user
// interface's stdin/stdout traffic to the engine's search pool.
package uci

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/corvidchess/corvid/internal/book"
	"github.com/corvidchess/corvid/internal/config"
	"github.com/corvidchess/corvid/internal/logging"
	"github.com/corvidchess/corvid/internal/movegen"
	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/search"
	"github.com/corvidchess/corvid/internal/tb"
	"github.com/corvidchess/corvid/internal/types"
	"github.com/corvidchess/corvid/internal/version"
)

var out = message.NewPrinter(language.English)
var log = logging.GetLog("uci")

// Handler owns the engine-side half of a UCI session: the current
// position, the search pool, and the io streams a test can swap out.
type Handler struct {
	InIo  *bufio.Scanner
	OutIo *bufio.Writer

	pos     *position.Position
	pool    *search.Pool
	threads int
}

// NewHandler builds a handler with its search pool sized from config,
// wired to startpos, and with an opening book and NNUE network loaded if
// configured.
func NewHandler() *Handler {
	config.Setup()
	h := &Handler{
		InIo:    bufio.NewScanner(os.Stdin),
		OutIo:   bufio.NewWriter(os.Stdout),
		pos:     position.NewFromStart(),
		pool:    search.NewPool(config.Settings.Search.DefaultHashMb, config.Settings.Search.DefaultThreads),
		threads: config.Settings.Search.DefaultThreads,
	}
	h.InIo.Buffer(make([]byte, 64*1024), 1024*1024)
	h.pool.SetReporter(&reporter{h: h})

	if config.Settings.Eval.NnueFile != "" {
		if err := h.pool.Shared().Eval.LoadNetwork(config.Settings.Eval.NnueFile); err != nil {
			log.Warningf("could not load NNUE network %s: %v", config.Settings.Eval.NnueFile, err)
		}
	}
	if config.Settings.Search.UseOwnBook && config.Settings.Search.BookFile != "" {
		b, err := book.Load(config.Settings.Search.BookFile)
		if err != nil {
			log.Warningf("could not load opening book %s: %v", config.Settings.Search.BookFile, err)
		} else {
			h.pool.Shared().Book = b
		}
	}
	h.pool.Shared().TB = tb.NullProber{}
	return h
}

// Loop reads commands from InIo until "quit" is received.
func (h *Handler) Loop() {
	for h.InIo.Scan() {
		if h.handle(h.InIo.Text()) {
			return
		}
	}
}

// Command runs a single command line and returns everything it wrote to
// OutIo, for tests that drive the handler without a real stdin/stdout.
func (h *Handler) Command(cmd string) string {
	saved := h.OutIo
	buf := new(bytes.Buffer)
	h.OutIo = bufio.NewWriter(buf)
	h.handle(cmd)
	_ = h.OutIo.Flush()
	h.OutIo = saved
	return buf.String()
}

func (h *Handler) send(s string) {
	_, _ = h.OutIo.WriteString(s + "\n")
	_ = h.OutIo.Flush()
}

var whitespace = regexp.MustCompile(`\s+`)

func (h *Handler) handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	tokens := whitespace.Split(line, -1)
	switch tokens[0] {
	case "quit":
		h.pool.StopSearch()
		return true
	case "uci":
		h.uciCommand()
	case "isready":
		h.send("readyok")
	case "setoption":
		h.setOptionCommand(tokens)
	case "ucinewgame":
		h.pos = position.NewFromStart()
		h.pool.Shared().TT.Clear()
	case "position":
		h.positionCommand(tokens)
	case "go":
		h.goCommand(tokens)
	case "stop":
		h.pool.StopSearch()
	case "d":
		h.debugBoardCommand()
	case "ponderhit":
		// ponder mode is not implemented; nothing to reconcile.
	default:
		log.Warningf("unknown command: %s", line)
	}
	return false
}

func (h *Handler) uciCommand() {
	h.send("id name corvid " + version.Version())
	h.send("id author the corvid project")
	h.send(fmt.Sprintf("option name Hash type spin default %d min 1 max 65536", config.Settings.Search.DefaultHashMb))
	h.send(fmt.Sprintf("option name Threads type spin default %d min 1 max 512", config.Settings.Search.DefaultThreads))
	h.send(fmt.Sprintf("option name OwnBook type check default %v", config.Settings.Search.UseOwnBook))
	h.send("option name SyzygyPath type string default <empty>")
	h.send("uciok")
}

func (h *Handler) setOptionCommand(tokens []string) {
	name, value, ok := parseSetOption(tokens)
	if !ok {
		h.send("info string malformed setoption command")
		return
	}
	switch name {
	case "Hash":
		mb, err := strconv.Atoi(value)
		if err != nil {
			h.send(out.Sprintf("info string invalid Hash value %q", value))
			return
		}
		h.pool.Shared().TT.Resize(mb)
	case "Threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			h.send(out.Sprintf("info string invalid Threads value %q", value))
			return
		}
		h.threads = n
	case "OwnBook":
		v, err := strconv.ParseBool(value)
		if err != nil {
			h.send(out.Sprintf("info string invalid OwnBook value %q", value))
			return
		}
		if !v {
			h.pool.Shared().Book = nil
		}
	case "SyzygyPath":
		prober, err := tb.Init(value)
		if err != nil {
			h.send(out.Sprintf("info string could not initialize tablebase at %q: %v", value, err))
		}
		h.pool.Shared().TB = prober
	default:
		h.send(out.Sprintf("info string no such option %q", name))
	}
}

func parseSetOption(tokens []string) (name, value string, ok bool) {
	if len(tokens) < 3 || tokens[1] != "name" {
		return "", "", false
	}
	i := 2
	var nameParts []string
	for i < len(tokens) && tokens[i] != "value" {
		nameParts = append(nameParts, tokens[i])
		i++
	}
	name = strings.Join(nameParts, " ")
	if i < len(tokens) && tokens[i] == "value" && i+1 < len(tokens) {
		value = strings.Join(tokens[i+1:], " ")
	}
	return name, value, name != ""
}

func (h *Handler) positionCommand(tokens []string) {
	if len(tokens) < 2 {
		h.send("info string malformed position command")
		return
	}
	i := 1
	var p *position.Position
	switch tokens[i] {
	case "startpos":
		p = position.NewFromStart()
		i++
	case "fen":
		i++
		var fenParts []string
		for i < len(tokens) && tokens[i] != "moves" {
			fenParts = append(fenParts, tokens[i])
			i++
		}
		parsed, err := position.NewFromFen(strings.Join(fenParts, " "))
		if err != nil {
			h.send(out.Sprintf("info string invalid fen: %v", err))
			return
		}
		p = parsed
	default:
		h.send("info string malformed position command")
		return
	}

	if i < len(tokens) && tokens[i] == "moves" {
		i++
		for ; i < len(tokens); i++ {
			m := movegen.MoveFromUci(p, tokens[i])
			if m == types.MoveNone {
				h.send(out.Sprintf("info string illegal move in position command: %s", tokens[i]))
				return
			}
			p.DoMove(m)
		}
	}
	h.pos = p
}

func (h *Handler) goCommand(tokens []string) {
	if len(tokens) >= 2 && tokens[1] == "perft" {
		depth := 4
		if len(tokens) >= 3 {
			if d, err := strconv.Atoi(tokens[2]); err == nil {
				depth = d
			}
		}
		h.perftCommand(depth)
		return
	}

	limits, ok := parseGoLimits(tokens, h.pos.SideToMove())
	if !ok {
		h.send("info string malformed go command")
		return
	}
	h.pool.StartSearch(h.pos, limits, h.threads)
}

func (h *Handler) perftCommand(depth int) {
	start := time.Now()
	nodes := movegen.Perft(h.pos, depth)
	elapsed := time.Since(start)
	nps := uint64(0)
	if elapsed > 0 {
		nps = uint64(float64(nodes) / elapsed.Seconds())
	}
	h.send(fmt.Sprintf("info string perft depth %d nodes %d time %d nps %d", depth, nodes, elapsed.Milliseconds(), nps))
}

func (h *Handler) debugBoardCommand() {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		sb.WriteString(strconv.Itoa(r + 1))
		sb.WriteString("  ")
		for f := 0; f < 8; f++ {
			sq := types.NewSquare(types.File(f), types.Rank(r))
			pc := h.pos.PieceOn(sq)
			glyph := pc.Char()
			switch {
			case pc == types.PieceNone:
				sb.WriteString(glyph)
			case pc.ColorOf() == types.White:
				sb.WriteString(color.New(color.FgWhite, color.Bold).Sprint(glyph))
			default:
				sb.WriteString(color.New(color.FgCyan).Sprint(glyph))
			}
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("   a b c d e f g h\n")
	sb.WriteString("fen: " + h.pos.Fen() + "\n")
	h.send(sb.String())
}

func parseGoLimits(tokens []string, us types.Color) (search.Limits, bool) {
	var l search.Limits
	i := 1
	parseMs := func() (time.Duration, bool) {
		i++
		if i >= len(tokens) {
			return 0, false
		}
		v, err := strconv.ParseInt(tokens[i], 10, 64)
		if err != nil {
			return 0, false
		}
		return time.Duration(v) * time.Millisecond, true
	}
	for i < len(tokens) {
		switch tokens[i] {
		case "infinite":
			l.Infinite = true
		case "depth":
			i++
			if i >= len(tokens) {
				return l, false
			}
			d, err := strconv.Atoi(tokens[i])
			if err != nil {
				return l, false
			}
			l.Depth = d
		case "movetime":
			v, ok := parseMs()
			if !ok {
				return l, false
			}
			l.MoveTime = v
		case "wtime":
			v, ok := parseMs()
			if !ok {
				return l, false
			}
			l.WTime = v
		case "btime":
			v, ok := parseMs()
			if !ok {
				return l, false
			}
			l.BTime = v
		case "winc":
			v, ok := parseMs()
			if !ok {
				return l, false
			}
			l.WInc = v
		case "binc":
			v, ok := parseMs()
			if !ok {
				return l, false
			}
			l.BInc = v
		case "movestogo":
			i++
			if i >= len(tokens) {
				return l, false
			}
			n, err := strconv.Atoi(tokens[i])
			if err != nil {
				return l, false
			}
			l.MovesToGo = n
		case "ponder", "nodes", "mate", "searchmoves":
			// accepted but not implemented; skip any trailing value token.
		default:
			return l, false
		}
		i++
	}
	if !l.Infinite && l.Depth == 0 && l.MoveTime == 0 && !l.HasClock() {
		l.Infinite = true
	}
	return l, true
}

// reporter adapts search.Reporter to UCI info/bestmove lines.
type reporter struct {
	h *Handler
}

func (r *reporter) Info(depth int, score types.Value, pv []types.Move, nodes uint64, elapsed time.Duration) {
	nps := uint64(0)
	if elapsed > 0 {
		nps = uint64(float64(nodes) / elapsed.Seconds())
	}
	var pvStr strings.Builder
	for i, m := range pv {
		if i > 0 {
			pvStr.WriteString(" ")
		}
		pvStr.WriteString(m.StringUci())
	}
	r.h.send(fmt.Sprintf("info depth %d score %s nodes %d nps %d time %d pv %s",
		depth, score.String(), nodes, nps, elapsed.Milliseconds(), pvStr.String()))
}

func (r *reporter) InfoString(s string) {
	r.h.send("info string " + s)
}

func (r *reporter) BestMove(m types.Move, ponder types.Move) {
	if m == types.MoveNone {
		r.h.send("bestmove 0000")
		return
	}
	if ponder != types.MoveNone {
		r.h.send("bestmove " + m.StringUci() + " ponder " + ponder.StringUci())
		return
	}
	r.h.send("bestmove " + m.StringUci())
}
