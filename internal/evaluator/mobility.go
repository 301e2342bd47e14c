package evaluator

import (
	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/types"
)

// mobilityWeight is the centipawn value of one extra legal destination
// square for a knight, bishop, rook or queen.
var mobilityWeight = [types.PtLength]int{
	types.Knight: 4,
	types.Bishop: 3,
	types.Rook:   2,
	types.Queen:  1,
}

var mobilityPieces = [4]types.PieceType{types.Knight, types.Bishop, types.Rook, types.Queen}

// mobility scores each side's non-pawn piece mobility (attacked squares
// not occupied by a friendly piece) and returns the White-minus-Black
// difference in centipawns.
func mobility(p *position.Position) int {
	occ := p.AllOccupied()
	var score int
	for c := types.White; c < types.ColorLength; c++ {
		own := p.Occupied(c)
		sign := 1
		if c == types.Black {
			sign = -1
		}
		for _, pt := range mobilityPieces {
			for bb := p.Pieces(c, pt); bb != types.BbZero; {
				sq := bb.PopLsb()
				attacks := types.GetAttacksBb(pt, sq, occ) &^ own
				score += sign * mobilityWeight[pt] * attacks.PopCount()
			}
		}
	}
	return score
}
