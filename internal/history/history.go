// Package history holds the per-thread move-ordering heuristics: killer
// moves, quiet-move history scores, and counter-moves. These must never be
// shared between search threads, only cloned fresh per thread.
package history

import "github.com/corvidchess/corvid/internal/types"

const maxPly = 128

// historyCap bounds the history score to +-20000 so a long search cannot
// overflow an int32 accumulation.
const historyCap = 20000

// Heuristics is one search thread's private move-ordering state.
type Heuristics struct {
	killers [maxPly][2]types.Move
	history [types.PieceLength][types.SqLength]int32
	counter [types.PieceLength][types.SqLength]types.Move
}

// New returns a zeroed Heuristics, matching a fresh search thread's state.
func New() *Heuristics {
	return &Heuristics{}
}

// Reset clears all heuristics, used on ucinewgame.
func (h *Heuristics) Reset() {
	*h = Heuristics{}
}

// Killers returns the two killer moves recorded for ply.
func (h *Heuristics) Killers(ply int) (types.Move, types.Move) {
	return h.killers[ply][0], h.killers[ply][1]
}

// AddKiller promotes m into killer slot 0 at ply, shifting the previous
// slot-0 killer down, unless m is already the top killer.
func (h *Heuristics) AddKiller(ply int, m types.Move) {
	if h.killers[ply][0] == m {
		return
	}
	h.killers[ply][1] = h.killers[ply][0]
	h.killers[ply][0] = m
}

// HistoryScore returns the quiet-move history score for (piece, to).
func (h *Heuristics) HistoryScore(pc types.Piece, to types.Square) int32 {
	return h.history[pc][to]
}

// AddHistoryBonus rewards a quiet move that improved alpha, capped at
// +historyCap.
func (h *Heuristics) AddHistoryBonus(pc types.Piece, to types.Square, depth int) {
	bonus := int32(depth * depth)
	h.history[pc][to] = clamp(h.history[pc][to]+bonus, -historyCap, historyCap)
}

// AddHistoryMalus penalizes a quiet move that was searched but did not
// cause a cutoff, after a sibling move did.
func (h *Heuristics) AddHistoryMalus(pc types.Piece, to types.Square, depth int) {
	malus := int32(depth * depth)
	h.history[pc][to] = clamp(h.history[pc][to]-malus, -historyCap, historyCap)
}

// SetCounterMove records m as the reply to the move that placed pc on to.
func (h *Heuristics) SetCounterMove(pc types.Piece, to types.Square, reply types.Move) {
	h.counter[pc][to] = reply
}

// CounterMove returns the recorded reply to (pc, to), or MoveNone.
func (h *Heuristics) CounterMove(pc types.Piece, to types.Square) types.Move {
	return h.counter[pc][to]
}

func clamp(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
