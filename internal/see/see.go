// Package see implements static exchange evaluation: the material outcome
// of the forced sequence of captures on one square if both sides always
// play their least valuable attacker.
package see

import (
	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/types"
)

// pieceValue gives the material values used purely for exchange ordering,
// matching the classical evaluator's material table.
var pieceValue = [types.PtLength]int{
	types.Pawn:   100,
	types.Knight: 320,
	types.Bishop: 330,
	types.Rook:   500,
	types.Queen:  900,
	types.King:   20000,
}

// Evaluate returns the SEE score of move m: positive means the capturing
// side comes out ahead in the full exchange. Non-captures return 0.
func Evaluate(p *position.Position, m types.Move) int {
	if !m.IsCapture() {
		return 0
	}
	to := m.To()
	from := m.From()
	us := p.SideToMove()
	them := us.Flip()

	var captured types.PieceType
	if m.IsEnPassant() {
		captured = types.Pawn
	} else {
		captured = p.PieceOn(to).TypeOf()
	}

	attackerType := p.PieceOn(from).TypeOf()
	occupied := p.AllOccupied().Clear(from)
	if m.IsEnPassant() {
		capSq := types.NewSquare(to.FileOf(), from.RankOf())
		occupied = occupied.Clear(capSq)
	}

	var gain [32]int
	depth := 0
	gain[0] = pieceValue[captured]

	sideToCapture := them
	attackerVal := pieceValue[attackerType]
	occupiedByColor := [types.ColorLength]types.Bitboard{
		types.White: p.Occupied(types.White),
		types.Black: p.Occupied(types.Black),
	}
	occupiedByColor[us] = occupiedByColor[us].Clear(from)

	for {
		depth++
		gain[depth] = attackerVal - gain[depth-1]
		if max(-gain[depth-1], gain[depth]) < 0 {
			break
		}

		attackers := attackersTo(p, to, occupied)
		ours := attackers & occupiedByColor[sideToCapture]
		if ours == types.BbZero {
			depth--
			break
		}
		nextFrom, nextType := leastValuableAttacker(p, ours)
		occupied = occupied.Clear(nextFrom)
		occupiedByColor[sideToCapture] = occupiedByColor[sideToCapture].Clear(nextFrom)
		attackerVal = pieceValue[nextType]
		sideToCapture = sideToCapture.Flip()

		if nextType == types.King {
			// Capturing with the king when the square is still defended is
			// illegal; stop the exchange here.
			remainingAttackers := attackersTo(p, to, occupied) & occupiedByColor[sideToCapture]
			if remainingAttackers != types.BbZero {
				depth--
				break
			}
		}
	}

	for depth > 0 {
		gain[depth-1] = -max(-gain[depth-1], gain[depth])
		depth--
	}
	return gain[0]
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// attackersTo returns every piece (either color) attacking sq given a
// custom occupancy, used so the exchange can "see through" pieces already
// removed earlier in the sequence.
func attackersTo(p *position.Position, sq types.Square, occupied types.Bitboard) types.Bitboard {
	var attackers types.Bitboard
	attackers |= types.GetPawnAttacks(types.Black, sq) & p.Pieces(types.White, types.Pawn)
	attackers |= types.GetPawnAttacks(types.White, sq) & p.Pieces(types.Black, types.Pawn)
	attackers |= types.GetKnightAttacks(sq) & (p.Pieces(types.White, types.Knight) | p.Pieces(types.Black, types.Knight))
	attackers |= types.GetKingAttacks(sq) & (p.Pieces(types.White, types.King) | p.Pieces(types.Black, types.King))
	bishopsQueens := p.Pieces(types.White, types.Bishop) | p.Pieces(types.Black, types.Bishop) |
		p.Pieces(types.White, types.Queen) | p.Pieces(types.Black, types.Queen)
	attackers |= types.GetBishopAttacks(sq, occupied) & bishopsQueens
	rooksQueens := p.Pieces(types.White, types.Rook) | p.Pieces(types.Black, types.Rook) |
		p.Pieces(types.White, types.Queen) | p.Pieces(types.Black, types.Queen)
	attackers |= types.GetRookAttacks(sq, occupied) & rooksQueens
	return attackers & occupied
}

// leastValuableAttacker picks the cheapest piece among candidates.
func leastValuableAttacker(p *position.Position, candidates types.Bitboard) (types.Square, types.PieceType) {
	order := [6]types.PieceType{types.Pawn, types.Knight, types.Bishop, types.Rook, types.Queen, types.King}
	for _, pt := range order {
		bb := candidates & (p.Pieces(types.White, pt) | p.Pieces(types.Black, pt))
		if bb != types.BbZero {
			return bb.Lsb(), pt
		}
	}
	return types.SqNone, types.PtNone
}
