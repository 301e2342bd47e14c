package types

import "strings"

// Move is the packed 16-bit move encoding: bits 0-5 from-square, bits 6-11
// to-square, bits 12-15 a flag enumerating quiet/capture/castle/en-passant/
// promotion variants. This is the classic chessprogramming.org 4-bit flag
// scheme, chosen so that every move fits in two bytes and a null move is
// all zeros.
type Move uint16

// MoveFlag is the 4-bit tag in bits 12-15 of a Move.
type MoveFlag uint8

const (
	FlagQuiet MoveFlag = iota
	FlagDoublePawnPush
	FlagKingCastle
	FlagQueenCastle
	FlagCapture
	FlagEpCapture
	_reservedFlag6
	_reservedFlag7
	FlagPromoKnight
	FlagPromoBishop
	FlagPromoRook
	FlagPromoQueen
	FlagPromoKnightCapture
	FlagPromoBishopCapture
	FlagPromoRookCapture
	FlagPromoQueenCapture
)

const (
	moveFromShift = 6
	moveFlagShift = 12
	moveSquareMask Move = 0x3F
)

// MoveNone is the null/empty move: all zero bits.
const MoveNone Move = 0

// NewMove packs a from/to/flag triple into a Move.
func NewMove(from, to Square, flag MoveFlag) Move {
	return Move(from) | Move(to)<<moveFromShift | Move(flag)<<moveFlagShift
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & moveSquareMask)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> moveFromShift) & moveSquareMask)
}

// Flag returns the 4-bit move flag.
func (m Move) Flag() MoveFlag {
	return MoveFlag(m >> moveFlagShift)
}

// IsCapture reports whether the move removes an enemy piece, including
// en-passant and promotion captures.
func (m Move) IsCapture() bool {
	f := m.Flag()
	return f == FlagCapture || f == FlagEpCapture || (f >= FlagPromoKnightCapture && f <= FlagPromoQueenCapture)
}

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Flag() >= FlagPromoKnight
}

// IsCastle reports whether the move is a king- or queen-side castle.
func (m Move) IsCastle() bool {
	return m.Flag() == FlagKingCastle || m.Flag() == FlagQueenCastle
}

// IsEnPassant reports whether the move is an en-passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEpCapture
}

// IsDoublePawnPush reports whether the move is a two-square pawn advance.
func (m Move) IsDoublePawnPush() bool {
	return m.Flag() == FlagDoublePawnPush
}

// PromotionType returns the piece type promoted to. Only meaningful when
// IsPromotion() is true.
func (m Move) PromotionType() PieceType {
	switch m.Flag() {
	case FlagPromoKnight, FlagPromoKnightCapture:
		return Knight
	case FlagPromoBishop, FlagPromoBishopCapture:
		return Bishop
	case FlagPromoRook, FlagPromoRookCapture:
		return Rook
	case FlagPromoQueen, FlagPromoQueenCapture:
		return Queen
	default:
		return PtNone
	}
}

// IsValid reports whether the move is non-null and well-formed.
func (m Move) IsValid() bool {
	return m != MoveNone && m.From().IsValid() && m.To().IsValid() && m.From() != m.To()
}

// StringUci renders the move in UCI long algebraic form, e.g. "e2e4" or
// "e7e8q".
func (m Move) StringUci() string {
	if m == MoveNone {
		return "0000"
	}
	var b strings.Builder
	b.WriteString(m.From().String())
	b.WriteString(m.To().String())
	if m.IsPromotion() {
		b.WriteString(m.PromotionType().Char())
	}
	return b.String()
}

// String is a verbose debug representation.
func (m Move) String() string {
	if m == MoveNone {
		return "(none)"
	}
	return m.StringUci()
}

// promoFlagsByType maps a promotion piece type to its quiet/capture flag
// pair, used by the move generator.
var promoFlagsByType = [PtLength][2]MoveFlag{
	Knight: {FlagPromoKnight, FlagPromoKnightCapture},
	Bishop: {FlagPromoBishop, FlagPromoBishopCapture},
	Rook:   {FlagPromoRook, FlagPromoRookCapture},
	Queen:  {FlagPromoQueen, FlagPromoQueenCapture},
}

// PromotionFlag returns the quiet or capture promotion flag for pt.
func PromotionFlag(pt PieceType, capture bool) MoveFlag {
	pair := promoFlagsByType[pt]
	if capture {
		return pair[1]
	}
	return pair[0]
}

// ScoredMove pairs a Move with a 32-bit ordering score. Keeping the score
// out of the packed 16-bit Move keeps the wire/TT encoding exactly as
// specified while still letting the search do cheap selection-sort
// ordering over a slice of these.
type ScoredMove struct {
	Move  Move
	Score int32
}
