// Package moveslice provides a fixed-capacity move list reused across
// search nodes to avoid per-node allocation.
package moveslice

import "github.com/corvidchess/corvid/internal/types"

// MaxMoves bounds the largest legal move count any reachable chess
// position can produce; 256 leaves generous headroom.
const MaxMoves = 256

// MoveSlice is a fixed-capacity, zero-allocation-after-first-use list of
// scored moves.
type MoveSlice struct {
	moves [MaxMoves]types.ScoredMove
	len   int
}

// Clear empties the list without releasing the backing array.
func (s *MoveSlice) Clear() { s.len = 0 }

// Len returns the number of moves currently stored.
func (s *MoveSlice) Len() int { return s.len }

// Push appends a move with an initial ordering score of zero.
func (s *MoveSlice) Push(m types.Move) {
	s.moves[s.len] = types.ScoredMove{Move: m}
	s.len++
}

// PushScored appends a move with an explicit ordering score.
func (s *MoveSlice) PushScored(m types.Move, score int32) {
	s.moves[s.len] = types.ScoredMove{Move: m, Score: score}
	s.len++
}

// At returns the i-th entry.
func (s *MoveSlice) At(i int) types.ScoredMove { return s.moves[i] }

// SetScore updates the ordering score of the i-th entry.
func (s *MoveSlice) SetScore(i int, score int32) { s.moves[i].Score = score }

// Moves returns a slice view over the currently stored entries. The slice
// aliases the backing array and is only valid until the next Clear/Push.
func (s *MoveSlice) Moves() []types.ScoredMove { return s.moves[:s.len] }

// PickBest performs one step of selection sort: it finds the
// highest-scoring move among indices [from, Len), swaps it into index
// from, and returns it. Used by move ordering, which only ever needs the
// next-best move rather than a full sort.
func (s *MoveSlice) PickBest(from int) types.ScoredMove {
	best := from
	for i := from + 1; i < s.len; i++ {
		if s.moves[i].Score > s.moves[best].Score {
			best = i
		}
	}
	s.moves[from], s.moves[best] = s.moves[best], s.moves[from]
	return s.moves[from]
}

// Contains reports whether m is present in the slice.
func (s *MoveSlice) Contains(m types.Move) bool {
	for i := 0; i < s.len; i++ {
		if s.moves[i].Move == m {
			return true
		}
	}
	return false
}
