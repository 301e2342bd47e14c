package search

import (
	"sync/atomic"

	"github.com/corvidchess/corvid/internal/book"
	"github.com/corvidchess/corvid/internal/evaluator"
	"github.com/corvidchess/corvid/internal/tb"
	"github.com/corvidchess/corvid/internal/tt"
)

// SharedState is everything the search threads share: the transposition
// table, the evaluator, the opening book, the tablebase prober, the stop
// flag, and the global node counter.
type SharedState struct {
	TT    *tt.Table
	Eval  *evaluator.Evaluator
	Book  *book.Book
	TB    tb.Prober
	Stop  atomic.Bool
	Nodes atomic.Uint64
}

// NewSharedState wires up a fresh shared state with the given hash size.
func NewSharedState(hashMb int) *SharedState {
	return &SharedState{
		TT:   tt.New(hashMb),
		Eval: evaluator.New(),
		TB:   tb.NullProber{},
	}
}
