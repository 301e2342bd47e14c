// Package evaluator scores a position from the side-to-move's perspective,
// preferring a loaded NNUE network and falling back to a classical
// material-plus-piece-square evaluation when no network is bound.
package evaluator

import (
	"github.com/corvidchess/corvid/internal/nnue"
	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/types"
)

// Evaluator selects between NNUE and the classical fallback.
type Evaluator struct {
	net *nnue.Network
}

// New returns an Evaluator with no network bound; Evaluate will use the
// classical evaluator until LoadNetwork succeeds.
func New() *Evaluator {
	return &Evaluator{}
}

// LoadNetwork binds an NNUE network loaded from path. On failure the
// evaluator keeps using the classical fallback.
func (e *Evaluator) LoadNetwork(path string) error {
	net, err := nnue.Load(path)
	if err != nil {
		return err
	}
	e.net = net
	return nil
}

// HasNetwork reports whether an NNUE network is currently bound.
func (e *Evaluator) HasNetwork() bool { return e.net != nil }

// Evaluate returns a centipawn score from p's side-to-move perspective. If
// a network is bound, p's accumulator is updated incrementally by every
// DoMove/UndoMove since the last BindNetwork call, so this normally does
// no per-node refresh work at all.
func (e *Evaluator) Evaluate(p *position.Position) types.Value {
	if e.net != nil {
		p.BindNetwork(e.net)
		return e.net.Evaluate(p, p.Accumulator())
	}
	return Classical(p)
}

// Classical sums material and piece-square values for both sides and
// returns the difference from the side-to-move's perspective.
func Classical(p *position.Position) types.Value {
	var score int
	for pt := types.Pawn; pt < types.PtLength; pt++ {
		for c := types.White; c < types.ColorLength; c++ {
			bb := p.Pieces(c, pt)
			sign := 1
			if c == types.Black {
				sign = -1
			}
			for bb != types.BbZero {
				sq := bb.PopLsb()
				score += sign * (pieceValue[pt] + pstValue(pt, c, sq))
			}
		}
	}
	score += mobility(p)
	if p.SideToMove() == types.Black {
		score = -score
	}
	return types.Value(score)
}
