package types

import "strings"

// Piece packs a Color and a PieceType into a single value indexable by a
// board array: White pieces are 0..5, Black pieces are 8..13, so the color
// can be recovered with a single shift/mask without a branch table.
type Piece int8

const (
	WhitePawn Piece = iota
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	_ // padding so Black starts at a fixed offset of 8
	_
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing

	PieceNone Piece = -1
	PieceLength = 16
)

const colorShift = 3

// MakePiece builds a Piece from a Color and PieceType.
func MakePiece(c Color, pt PieceType) Piece {
	return Piece(int8(c)<<colorShift | int8(pt))
}

// ColorOf returns the owning color of the piece.
func (p Piece) ColorOf() Color {
	return Color(p >> colorShift)
}

// TypeOf returns the piece type, discarding color.
func (p Piece) TypeOf() PieceType {
	return PieceType(p & 0x7)
}

var pieceChars = map[Piece]string{
	WhitePawn: "P", WhiteKnight: "N", WhiteBishop: "B", WhiteRook: "R", WhiteQueen: "Q", WhiteKing: "K",
	BlackPawn: "p", BlackKnight: "n", BlackBishop: "b", BlackRook: "r", BlackQueen: "q", BlackKing: "k",
}

// Char returns the FEN letter for the piece ('-' for PieceNone).
func (p Piece) Char() string {
	if p == PieceNone {
		return "-"
	}
	if c, ok := pieceChars[p]; ok {
		return c
	}
	return "-"
}

// PieceFromChar maps a FEN piece letter to a Piece.
func PieceFromChar(c byte) (Piece, bool) {
	for p, s := range pieceChars {
		if s[0] == c {
			return p, true
		}
	}
	return PieceNone, false
}

// String renders the piece for debug output.
func (p Piece) String() string {
	if p == PieceNone {
		return "-"
	}
	var b strings.Builder
	b.WriteString(p.ColorOf().String())
	b.WriteString(p.TypeOf().Char())
	return b.String()
}
