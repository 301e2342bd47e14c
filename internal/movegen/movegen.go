// Package movegen generates pseudo-legal moves from a position. Legality
// (does the move leave our own king attacked) is checked by the caller
// after making the move, not here.
package movegen

import (
	"github.com/corvidchess/corvid/internal/moveslice"
	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/types"
)

// Generate fills dst with every pseudo-legal move in p.
func Generate(p *position.Position, dst *moveslice.MoveSlice) {
	dst.Clear()
	us := p.SideToMove()
	generatePawnMoves(p, us, dst, false)
	generateLeaperMoves(p, us, types.Knight, dst, false)
	generateSliderMoves(p, us, types.Bishop, dst, false)
	generateSliderMoves(p, us, types.Rook, dst, false)
	generateSliderMoves(p, us, types.Queen, dst, false)
	generateLeaperMoves(p, us, types.King, dst, false)
	generateCastling(p, us, dst)
}

// GenerateCapturesOnly fills dst with captures and promotions only, used
// by quiescence search.
func GenerateCapturesOnly(p *position.Position, dst *moveslice.MoveSlice) {
	dst.Clear()
	us := p.SideToMove()
	generatePawnMoves(p, us, dst, true)
	generateLeaperMoves(p, us, types.Knight, dst, true)
	generateSliderMoves(p, us, types.Bishop, dst, true)
	generateSliderMoves(p, us, types.Rook, dst, true)
	generateSliderMoves(p, us, types.Queen, dst, true)
	generateLeaperMoves(p, us, types.King, dst, true)
}

func generateLeaperMoves(p *position.Position, us types.Color, pt types.PieceType, dst *moveslice.MoveSlice, capturesOnly bool) {
	own := p.Occupied(us)
	enemy := p.Occupied(us.Flip())
	pieces := p.Pieces(us, pt)
	for pieces != types.BbZero {
		from := pieces.PopLsb()
		var attacks types.Bitboard
		if pt == types.Knight {
			attacks = types.GetKnightAttacks(from)
		} else {
			attacks = types.GetKingAttacks(from)
		}
		attacks &^= own
		captures := attacks & enemy
		for captures != types.BbZero {
			to := captures.PopLsb()
			dst.Push(types.NewMove(from, to, types.FlagCapture))
		}
		if !capturesOnly {
			quiets := attacks &^ enemy
			for quiets != types.BbZero {
				to := quiets.PopLsb()
				dst.Push(types.NewMove(from, to, types.FlagQuiet))
			}
		}
	}
}

func generateSliderMoves(p *position.Position, us types.Color, pt types.PieceType, dst *moveslice.MoveSlice, capturesOnly bool) {
	own := p.Occupied(us)
	enemy := p.Occupied(us.Flip())
	occ := p.AllOccupied()
	pieces := p.Pieces(us, pt)
	for pieces != types.BbZero {
		from := pieces.PopLsb()
		attacks := types.GetAttacksBb(pt, from, occ) &^ own
		captures := attacks & enemy
		for captures != types.BbZero {
			to := captures.PopLsb()
			dst.Push(types.NewMove(from, to, types.FlagCapture))
		}
		if !capturesOnly {
			quiets := attacks &^ enemy
			for quiets != types.BbZero {
				to := quiets.PopLsb()
				dst.Push(types.NewMove(from, to, types.FlagQuiet))
			}
		}
	}
}

func generatePawnMoves(p *position.Position, us types.Color, dst *moveslice.MoveSlice, capturesOnly bool) {
	them := us.Flip()
	enemy := p.Occupied(them)
	occ := p.AllOccupied()
	pawns := p.Pieces(us, types.Pawn)
	pushDir := us.PawnPushDirection()
	promoRank := us.PromotionRank()
	startRank := us.PawnRank()

	for bb := pawns; bb != types.BbZero; {
		from := bb.PopLsb()

		if one := from.To(pushDir); one != types.SqNone && !occ.Has(one) {
			if one.RankOf() == promoRank {
				pushPromotions(dst, from, one, false)
			} else if !capturesOnly {
				dst.Push(types.NewMove(from, one, types.FlagQuiet))
				if from.RankOf() == startRank {
					if two := one.To(pushDir); two != types.SqNone && !occ.Has(two) {
						dst.Push(types.NewMove(from, two, types.FlagDoublePawnPush))
					}
				}
			}
		}

		attacks := types.GetPawnAttacks(us, from)
		captures := attacks & enemy
		for captures != types.BbZero {
			to := captures.PopLsb()
			if to.RankOf() == promoRank {
				pushPromotions(dst, from, to, true)
			} else {
				dst.Push(types.NewMove(from, to, types.FlagCapture))
			}
		}

		if ep := p.EpSquare(); ep != types.SqNone && attacks.Has(ep) {
			dst.Push(types.NewMove(from, ep, types.FlagEpCapture))
		}
	}
}

func pushPromotions(dst *moveslice.MoveSlice, from, to types.Square, capture bool) {
	for _, pt := range [4]types.PieceType{types.Queen, types.Rook, types.Bishop, types.Knight} {
		dst.Push(types.NewMove(from, to, types.PromotionFlag(pt, capture)))
	}
}

// castling transit/king-path squares, indexed by color then side
// (0=king-side, 1=queen-side).
var (
	castleKingTravel  = [types.ColorLength][2][2]types.Square{}
	castleEmptyMask   = [types.ColorLength][2]types.Bitboard{}
)

func init() {
	castleKingTravel[types.White][0] = [2]types.Square{types.SqE1, types.SqG1}
	castleKingTravel[types.White][1] = [2]types.Square{types.SqE1, types.SqC1}
	castleKingTravel[types.Black][0] = [2]types.Square{types.SqE8, types.SqG8}
	castleKingTravel[types.Black][1] = [2]types.Square{types.SqE8, types.SqC8}

	castleEmptyMask[types.White][0] = types.SquareBb(types.SqF1) | types.SquareBb(types.SqG1)
	castleEmptyMask[types.White][1] = types.SquareBb(types.SqB1) | types.SquareBb(types.SqC1) | types.SquareBb(types.SqD1)
	castleEmptyMask[types.Black][0] = types.SquareBb(types.SqF8) | types.SquareBb(types.SqG8)
	castleEmptyMask[types.Black][1] = types.SquareBb(types.SqB8) | types.SquareBb(types.SqC8) | types.SquareBb(types.SqD8)
}

func generateCastling(p *position.Position, us types.Color, dst *moveslice.MoveSlice) {
	if p.InCheck() {
		return
	}
	them := us.Flip()
	occ := p.AllOccupied()

	if p.CastlingRights().Has(types.CastlingKingSide(us)) {
		if occ&castleEmptyMask[us][0] == types.BbZero {
			king := castleKingTravel[us][0]
			mid := types.NewSquare((king[0].FileOf()+king[1].FileOf())/2, king[0].RankOf())
			if !p.IsSquareAttacked(mid, them) && !p.IsSquareAttacked(king[1], them) {
				dst.Push(types.NewMove(king[0], king[1], types.FlagKingCastle))
			}
		}
	}
	if p.CastlingRights().Has(types.CastlingQueenSide(us)) {
		if occ&castleEmptyMask[us][1] == types.BbZero {
			king := castleKingTravel[us][1]
			mid := types.NewSquare((king[0].FileOf()+king[1].FileOf())/2, king[0].RankOf())
			if !p.IsSquareAttacked(mid, them) && !p.IsSquareAttacked(king[1], them) {
				dst.Push(types.NewMove(king[0], king[1], types.FlagQueenCastle))
			}
		}
	}
}

// IsLegal makes m on p, checks whether it left our own king attacked, and
// always unmakes before returning — used by search and perft to filter
// pseudo-legal moves down to legal ones.
func IsLegal(p *position.Position, m types.Move) bool {
	us := p.SideToMove()
	p.DoMove(m)
	ok := !p.IsSquareAttacked(p.KingSquare(us), p.SideToMove())
	p.UndoMove()
	return ok
}

// MoveFromUci resolves a UCI long-algebraic move string (e.g. "e2e4" or
// "e7e8q") against the legal moves available in p, returning MoveNone if
// it does not name a legal move.
func MoveFromUci(p *position.Position, s string) types.Move {
	if len(s) < 4 {
		return types.MoveNone
	}
	from, err := types.SquareFromString(s[0:2])
	if err != nil {
		return types.MoveNone
	}
	to, err := types.SquareFromString(s[2:4])
	if err != nil {
		return types.MoveNone
	}
	promo := types.PtNone
	if len(s) >= 5 {
		promo = promoTypeFromLetter(s[4:5])
	}
	return ResolveMove(p, from, to, promo)
}

// ResolveMove finds the legal move in p matching the given from/to squares
// and (for pawn promotions) promotion piece type. Castling is matched by
// PolyGlot's "king takes own rook" convention as well as the usual
// king-to-target-square convention, since opening books encode it the
// first way and UCI encodes it the second.
func ResolveMove(p *position.Position, from, to types.Square, promo types.PieceType) types.Move {
	var moves moveslice.MoveSlice
	Generate(p, &moves)
	for i := 0; i < moves.Len(); i++ {
		m := moves.At(i).Move
		if m.From() != from {
			continue
		}
		matchesTo := m.To() == to
		if !matchesTo && m.IsCastle() && to == castleRookSquare(p, m) {
			matchesTo = true
		}
		if !matchesTo {
			continue
		}
		if m.IsPromotion() {
			if m.PromotionType() != promo {
				continue
			}
		} else if promo != types.PtNone {
			continue
		}
		if IsLegal(p, m) {
			return m
		}
	}
	return types.MoveNone
}

// castleRookSquare returns the rook's starting square involved in castling
// move m, matching PolyGlot's encoding of castling as king-takes-own-rook.
func castleRookSquare(p *position.Position, m types.Move) types.Square {
	us := p.SideToMove()
	kingside := m.Flag() == types.FlagKingCastle
	rank := types.Rank(0)
	if us == types.Black {
		rank = types.Rank(7)
	}
	file := types.FileH
	if !kingside {
		file = types.FileA
	}
	return types.NewSquare(file, rank)
}

func promoTypeFromLetter(s string) types.PieceType {
	switch s {
	case "n":
		return types.Knight
	case "b":
		return types.Bishop
	case "r":
		return types.Rook
	case "q":
		return types.Queen
	}
	return types.PtNone
}

// Perft counts leaf nodes of the legal move tree to depth plies.
func Perft(p *position.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var moves moveslice.MoveSlice
	Generate(p, &moves)
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		m := moves.At(i).Move
		p.DoMove(m)
		if !p.IsSquareAttacked(p.KingSquare(p.SideToMove().Flip()), p.SideToMove()) {
			nodes += Perft(p, depth-1)
		}
		p.UndoMove()
	}
	return nodes
}
