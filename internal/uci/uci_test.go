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

package uci

import (
	"bufio"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUciCommandAnnouncesIdentityAndOptions(t *testing.T) {
	h := NewHandler()
	out := h.Command("uci")
	assert.Contains(t, out, "id name corvid")
	assert.Contains(t, out, "option name Hash")
	assert.Contains(t, out, "option name Threads")
	assert.Contains(t, out, "option name OwnBook")
	assert.Contains(t, out, "option name SyzygyPath")
	assert.Contains(t, out, "uciok\n")
}

func TestIsReadyRespondsReadyOk(t *testing.T) {
	h := NewHandler()
	assert.Equal(t, "readyok\n", h.Command("isready"))
}

func TestPositionStartposWithMoves(t *testing.T) {
	h := NewHandler()
	out := h.Command("position startpos moves e2e4 e7e5")
	assert.Empty(t, out)
	assert.Equal(t, "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2", h.pos.Fen())
}

func TestPositionRejectsIllegalMove(t *testing.T) {
	h := NewHandler()
	out := h.Command("position startpos moves e2e5")
	assert.Contains(t, out, "illegal move")
}

func TestPositionFen(t *testing.T) {
	h := NewHandler()
	fen := "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1"
	h.Command("position fen " + fen)
	assert.Equal(t, fen, h.pos.Fen())
}

func TestSetOptionHash(t *testing.T) {
	h := NewHandler()
	out := h.Command("setoption name Hash value 8")
	assert.Empty(t, out)
}

func TestSetOptionSyzygyPathEmptyClearsProber(t *testing.T) {
	h := NewHandler()
	out := h.Command("setoption name SyzygyPath value ")
	assert.Empty(t, out)
	assert.Equal(t, 0, h.pool.Shared().TB.MaxPieces())
}

func TestSetOptionUnknownOption(t *testing.T) {
	h := NewHandler()
	out := h.Command("setoption name Nonsense value 1")
	assert.Contains(t, out, "no such option")
}

func TestGoDepthReportsBestMove(t *testing.T) {
	h := NewHandler()
	h.Command("position startpos")

	buf := new(bytes.Buffer)
	h.OutIo = bufio.NewWriter(buf)
	h.handle("go depth 3")
	h.pool.WaitWhileSearching(context.Background())
	_ = h.OutIo.Flush()

	assert.Contains(t, buf.String(), "bestmove")
}

func TestGoPerftReportsNodeCount(t *testing.T) {
	h := NewHandler()
	h.Command("position startpos")
	out := h.Command("go perft 3")
	assert.Contains(t, out, "nodes 8902")
}

func TestDebugBoardIncludesFen(t *testing.T) {
	h := NewHandler()
	out := h.Command("d")
	assert.Contains(t, out, "fen: "+h.pos.Fen())
}
