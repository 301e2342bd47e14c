// Package position implements the board representation and the
// make/unmake protocol that keeps piece bitboards, occupancy caches, the
// Zobrist hash and castling/en-passant state all in lockstep.
package position

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/corvidchess/corvid/assert"
	"github.com/corvidchess/corvid/internal/nnue"
	"github.com/corvidchess/corvid/internal/types"
	"github.com/corvidchess/corvid/internal/zobrist"
)

const maxHistory = 1024

// StartFen is the standard chess starting position.
const StartFen = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// castlingRightsMask is keyed by a square (either a move's from or to
// square) and zeroes the bits for any right that leaving/losing that
// square invalidates; squares not home to a king or rook carry
// CastlingAll and have no effect when ANDed in.
var castlingRightsMask [types.SqLength]types.CastlingRights

func init() {
	for sq := types.SqA1; sq < types.SqLength; sq++ {
		castlingRightsMask[sq] = types.CastlingAll
	}
	castlingRightsMask[types.SqE1] &^= types.CastlingWK | types.CastlingWQ
	castlingRightsMask[types.SqA1] &^= types.CastlingWQ
	castlingRightsMask[types.SqH1] &^= types.CastlingWK
	castlingRightsMask[types.SqE8] &^= types.CastlingBK | types.CastlingBQ
	castlingRightsMask[types.SqA8] &^= types.CastlingBQ
	castlingRightsMask[types.SqH8] &^= types.CastlingBK
}

// undoState is one entry of the history stack. The stack is preallocated
// and entries are mutated in place by DoMove/UndoMove to avoid per-move
// allocation in the hot path.
type undoState struct {
	move           types.Move
	capturedPiece  types.Piece
	castlingRights types.CastlingRights
	epSquare       types.Square
	halfmoveClock  int
	zobristHash    uint64
}

// Position is the full mutable board state.
type Position struct {
	board [types.SqLength]types.Piece

	piecesBb   [types.ColorLength][types.PtLength]types.Bitboard
	occupiedBb [types.ColorLength]types.Bitboard
	allBb      types.Bitboard

	sideToMove     types.Color
	castlingRights types.CastlingRights
	epSquare       types.Square
	halfmoveClock  int
	fullmoveNumber int

	kingSquare [types.ColorLength]types.Square

	zobristHash uint64

	// accumulatorNet is nil until BindNetwork is called, in which case
	// DoMove/UndoMove incrementally maintain accumulator alongside every
	// other piece of make/unmake state. Left nil, the fields are simply
	// never touched, so a Position used without NNUE pays no cost for them.
	accumulatorNet *nnue.Network
	accumulator    nnue.Accumulator

	history      [maxHistory]undoState
	historyDepth int
}

// New returns an empty position; callers normally use NewFromFen instead.
func New() *Position {
	p := &Position{epSquare: types.SqNone}
	for sq := range p.board {
		p.board[sq] = types.PieceNone
	}
	return p
}

// NewFromFen parses a FEN string into a fresh Position.
func NewFromFen(fen string) (*Position, error) {
	p := New()
	if err := p.SetFen(fen); err != nil {
		return nil, err
	}
	return p, nil
}

// NewFromStart returns a fresh Position set to the standard starting
// array. StartFen is a compile-time-known-valid FEN, so the error is
// unreachable.
func NewFromStart() *Position {
	p, _ := NewFromFen(StartFen)
	return p
}

// SetFen resets the position to the state encoded by fen.
func (p *Position) SetFen(fen string) error {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return fmt.Errorf("position: malformed fen %q: need at least 4 fields", fen)
	}
	for sq := range p.board {
		p.board[sq] = types.PieceNone
	}
	p.piecesBb = [types.ColorLength][types.PtLength]types.Bitboard{}
	p.occupiedBb = [types.ColorLength]types.Bitboard{}
	p.allBb = types.BbZero
	p.historyDepth = 0

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return fmt.Errorf("position: malformed fen %q: need 8 ranks", fen)
	}
	for i, rankStr := range ranks {
		rank := types.Rank(7 - i)
		file := types.FileA
		for _, c := range rankStr {
			if c >= '1' && c <= '8' {
				file += types.File(c - '0')
				continue
			}
			pc, ok := types.PieceFromChar(byte(c))
			if !ok {
				return fmt.Errorf("position: malformed fen %q: bad piece char %q", fen, c)
			}
			if file >= types.FileLength {
				return fmt.Errorf("position: malformed fen %q: rank overflow", fen)
			}
			sq := types.NewSquare(file, rank)
			p.putPiece(pc, sq)
			file++
		}
		if file != types.FileLength {
			return fmt.Errorf("position: malformed fen %q: rank %d has wrong width", fen, i)
		}
	}

	switch fields[1] {
	case "w":
		p.sideToMove = types.White
	case "b":
		p.sideToMove = types.Black
	default:
		return fmt.Errorf("position: malformed fen %q: bad side to move", fen)
	}

	p.castlingRights = types.CastlingNone
	if fields[2] != "-" {
		for _, c := range fields[2] {
			switch c {
			case 'K':
				p.castlingRights |= types.CastlingWK
			case 'Q':
				p.castlingRights |= types.CastlingWQ
			case 'k':
				p.castlingRights |= types.CastlingBK
			case 'q':
				p.castlingRights |= types.CastlingBQ
			default:
				return fmt.Errorf("position: malformed fen %q: bad castling char %q", fen, c)
			}
		}
	}

	if fields[3] == "-" {
		p.epSquare = types.SqNone
	} else {
		sq, err := types.SquareFromString(fields[3])
		if err != nil {
			return fmt.Errorf("position: malformed fen %q: %w", fen, err)
		}
		p.epSquare = sq
	}

	p.halfmoveClock = 0
	if len(fields) > 4 {
		if n, err := strconv.Atoi(fields[4]); err == nil {
			p.halfmoveClock = n
		}
	}
	p.fullmoveNumber = 1
	if len(fields) > 5 {
		if n, err := strconv.Atoi(fields[5]); err == nil {
			p.fullmoveNumber = n
		}
	}

	p.zobristHash = p.computeZobristFromScratch()
	return nil
}

// Fen serializes the position back into FEN text.
func (p *Position) Fen() string {
	var b strings.Builder
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			sq := types.NewSquare(types.File(f), types.Rank(r))
			pc := p.board[sq]
			if pc == types.PieceNone {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteString(pc.Char())
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
		if r > 0 {
			b.WriteByte('/')
		}
	}
	b.WriteByte(' ')
	b.WriteString(p.sideToMove.String())
	b.WriteByte(' ')
	b.WriteString(p.castlingRights.String())
	b.WriteByte(' ')
	b.WriteString(p.epSquare.String())
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.halfmoveClock))
	b.WriteByte(' ')
	b.WriteString(strconv.Itoa(p.fullmoveNumber))
	return b.String()
}

func (p *Position) putPiece(pc types.Piece, sq types.Square) {
	p.board[sq] = pc
	c := pc.ColorOf()
	pt := pc.TypeOf()
	p.piecesBb[c][pt] = p.piecesBb[c][pt].Set(sq)
	p.occupiedBb[c] = p.occupiedBb[c].Set(sq)
	p.allBb = p.allBb.Set(sq)
	if pt == types.King {
		p.kingSquare[c] = sq
	}
}

func (p *Position) removePiece(sq types.Square) types.Piece {
	pc := p.board[sq]
	assert.Assert(pc != types.PieceNone, "removePiece: square %v is empty", sq)
	c := pc.ColorOf()
	pt := pc.TypeOf()
	p.board[sq] = types.PieceNone
	p.piecesBb[c][pt] = p.piecesBb[c][pt].Clear(sq)
	p.occupiedBb[c] = p.occupiedBb[c].Clear(sq)
	p.allBb = p.allBb.Clear(sq)
	return pc
}

func (p *Position) movePiece(from, to types.Square) types.Piece {
	pc := p.board[from]
	assert.Assert(pc != types.PieceNone, "movePiece: from square %v is empty", from)
	c := pc.ColorOf()
	pt := pc.TypeOf()
	fromTo := types.SquareBb(from) | types.SquareBb(to)
	p.board[from] = types.PieceNone
	p.board[to] = pc
	p.piecesBb[c][pt] ^= fromTo
	p.occupiedBb[c] ^= fromTo
	p.allBb ^= fromTo
	if pt == types.King {
		p.kingSquare[c] = to
	}
	return pc
}

// Accessors

func (p *Position) PieceOn(sq types.Square) types.Piece      { return p.board[sq] }
func (p *Position) SideToMove() types.Color                  { return p.sideToMove }
func (p *Position) CastlingRights() types.CastlingRights     { return p.castlingRights }
func (p *Position) EpSquare() types.Square                   { return p.epSquare }
func (p *Position) HalfmoveClock() int                       { return p.halfmoveClock }
func (p *Position) FullmoveNumber() int                      { return p.fullmoveNumber }
func (p *Position) ZobristHash() uint64                      { return p.zobristHash }
func (p *Position) KingSquare(c types.Color) types.Square    { return p.kingSquare[c] }
func (p *Position) Pieces(c types.Color, pt types.PieceType) types.Bitboard {
	return p.piecesBb[c][pt]
}
func (p *Position) Occupied(c types.Color) types.Bitboard { return p.occupiedBb[c] }
func (p *Position) AllOccupied() types.Bitboard           { return p.allBb }

// BindNetwork attaches net as the Position's incremental NNUE accumulator
// source. Re-binding the same network is a no-op; binding a different one
// (or nil to detach) resets and invalidates the accumulator so the next
// Evaluate call does a full rebuild from the new network's weights.
func (p *Position) BindNetwork(net *nnue.Network) {
	if p.accumulatorNet == net {
		return
	}
	p.accumulatorNet = net
	p.accumulator = nnue.Accumulator{}
	if net != nil {
		net.InvalidatePerspective(&p.accumulator, types.White)
		net.InvalidatePerspective(&p.accumulator, types.Black)
	}
}

// Accumulator returns the Position's NNUE accumulator, incrementally kept
// in sync with the board by DoMove/UndoMove once BindNetwork has been
// called. The evaluator passes it straight to Network.Evaluate.
func (p *Position) Accumulator() *nnue.Accumulator { return &p.accumulator }

// accRemove/accAdd update both accumulator perspectives when a non-king
// piece leaves or arrives on sq. Kings are never HalfKP features; a king
// move instead invalidates its own perspective via accInvalidateKing,
// since the king square is baked into every other feature's index for
// that perspective.
func (p *Position) accRemove(sq types.Square, pc types.Piece) {
	if p.accumulatorNet == nil || pc.TypeOf() == types.King {
		return
	}
	pt, c := pc.TypeOf(), pc.ColorOf()
	p.accumulatorNet.RemoveFeature(&p.accumulator, types.White, p.kingSquare[types.White], sq, pt, c)
	p.accumulatorNet.RemoveFeature(&p.accumulator, types.Black, p.kingSquare[types.Black], sq, pt, c)
}

func (p *Position) accAdd(sq types.Square, pc types.Piece) {
	if p.accumulatorNet == nil || pc.TypeOf() == types.King {
		return
	}
	pt, c := pc.TypeOf(), pc.ColorOf()
	p.accumulatorNet.AddFeature(&p.accumulator, types.White, p.kingSquare[types.White], sq, pt, c)
	p.accumulatorNet.AddFeature(&p.accumulator, types.Black, p.kingSquare[types.Black], sq, pt, c)
}

func (p *Position) accInvalidateKing(c types.Color) {
	if p.accumulatorNet == nil {
		return
	}
	p.accumulatorNet.InvalidatePerspective(&p.accumulator, c)
}

func (p *Position) computeZobristFromScratch() uint64 {
	var h uint64
	for sq := types.SqA1; sq < types.SqLength; sq++ {
		pc := p.board[sq]
		if pc != types.PieceNone {
			h ^= zobrist.Piece(pc.TypeOf(), pc.ColorOf(), sq)
		}
	}
	h ^= zobrist.Castling(p.castlingRights)
	if p.epSquare != types.SqNone && p.epCaptureAvailable(p.epSquare) {
		h ^= zobrist.EpFile(p.epSquare.FileOf())
	}
	if p.sideToMove == types.Black {
		h ^= zobrist.SideToMove()
	}
	return h
}

// epCaptureAvailable reports whether some pawn of the side to move
// attacks epSq, which is the condition under which the ep file
// contributes to the hash.
func (p *Position) epCaptureAvailable(epSq types.Square) bool {
	attackers := types.GetPawnAttacks(p.sideToMove.Flip(), epSq) & p.piecesBb[p.sideToMove][types.Pawn]
	return attackers != types.BbZero
}

// IsSquareAttacked reports whether sq is attacked by any piece of color by.
func (p *Position) IsSquareAttacked(sq types.Square, by types.Color) bool {
	occ := p.allBb
	if types.GetPawnAttacks(by.Flip(), sq)&p.piecesBb[by][types.Pawn] != 0 {
		return true
	}
	if types.GetKnightAttacks(sq)&p.piecesBb[by][types.Knight] != 0 {
		return true
	}
	if types.GetKingAttacks(sq)&p.piecesBb[by][types.King] != 0 {
		return true
	}
	bishopsQueens := p.piecesBb[by][types.Bishop] | p.piecesBb[by][types.Queen]
	if types.GetBishopAttacks(sq, occ)&bishopsQueens != 0 {
		return true
	}
	rooksQueens := p.piecesBb[by][types.Rook] | p.piecesBb[by][types.Queen]
	if types.GetRookAttacks(sq, occ)&rooksQueens != 0 {
		return true
	}
	return false
}

// InCheck reports whether the side to move's king is currently attacked.
func (p *Position) InCheck() bool {
	return p.IsSquareAttacked(p.kingSquare[p.sideToMove], p.sideToMove.Flip())
}

// DoMove applies m, pushing an undo record onto the history stack. It
// follows the twelve-step ordering from the make/unmake protocol: snapshot
// state, unhash side/ep/castling, remove captured piece, move the piece,
// handle promotion/castling specially, recompute ep, update halfmove/full
// move counters, rehash castling/ep/side.
func (p *Position) DoMove(m types.Move) {
	assert.Assert(p.historyDepth < maxHistory, "DoMove: history stack exhausted")

	us := p.sideToMove
	them := us.Flip()
	from, to, flag := m.From(), m.To(), m.Flag()
	movingPiece := p.board[from]

	u := &p.history[p.historyDepth]
	u.move = m
	u.castlingRights = p.castlingRights
	u.epSquare = p.epSquare
	u.halfmoveClock = p.halfmoveClock
	u.zobristHash = p.zobristHash
	u.capturedPiece = types.PieceNone
	p.historyDepth++

	h := p.zobristHash
	if p.sideToMove == types.Black {
		h ^= zobrist.SideToMove()
	}
	if p.epSquare != types.SqNone && p.epCaptureAvailable(p.epSquare) {
		h ^= zobrist.EpFile(p.epSquare.FileOf())
	}
	h ^= zobrist.Castling(p.castlingRights)

	isPawnMoveOrCapture := movingPiece.TypeOf() == types.Pawn || m.IsCapture()

	if m.IsEnPassant() {
		capSq := types.NewSquare(to.FileOf(), from.RankOf())
		u.capturedPiece = p.removePiece(capSq)
		h ^= zobrist.Piece(types.Pawn, them, capSq)
		p.accRemove(capSq, u.capturedPiece)
	} else if m.IsCapture() {
		u.capturedPiece = p.removePiece(to)
		h ^= zobrist.Piece(u.capturedPiece.TypeOf(), them, to)
		p.accRemove(to, u.capturedPiece)
	}

	h ^= zobrist.Piece(movingPiece.TypeOf(), us, from)
	p.accRemove(from, movingPiece)
	p.movePiece(from, to)
	h ^= zobrist.Piece(movingPiece.TypeOf(), us, to)
	p.accAdd(to, movingPiece)
	if movingPiece.TypeOf() == types.King {
		p.accInvalidateKing(us)
	}

	if m.IsPromotion() {
		p.removePiece(to)
		promo := types.MakePiece(us, m.PromotionType())
		p.putPiece(promo, to)
		h ^= zobrist.Piece(movingPiece.TypeOf(), us, to)
		h ^= zobrist.Piece(m.PromotionType(), us, to)
		p.accRemove(to, movingPiece)
		p.accAdd(to, promo)
	}

	if m.IsCastle() {
		var rookFrom, rookTo types.Square
		switch {
		case flag == types.FlagKingCastle && us == types.White:
			rookFrom, rookTo = types.SqH1, types.SqF1
		case flag == types.FlagQueenCastle && us == types.White:
			rookFrom, rookTo = types.SqA1, types.SqD1
		case flag == types.FlagKingCastle:
			rookFrom, rookTo = types.SqH8, types.SqF8
		default:
			rookFrom, rookTo = types.SqA8, types.SqD8
		}
		h ^= zobrist.Piece(types.Rook, us, rookFrom)
		rook := types.MakePiece(us, types.Rook)
		p.accRemove(rookFrom, rook)
		p.movePiece(rookFrom, rookTo)
		h ^= zobrist.Piece(types.Rook, us, rookTo)
		p.accAdd(rookTo, rook)
	}

	p.epSquare = types.SqNone
	if m.IsDoublePawnPush() {
		p.epSquare = types.NewSquare(from.FileOf(), (from.RankOf()+to.RankOf())/2)
	}

	if isPawnMoveOrCapture {
		p.halfmoveClock = 0
	} else {
		p.halfmoveClock++
	}
	if us == types.Black {
		p.fullmoveNumber++
	}

	p.castlingRights &= castlingRightsMask[from] & castlingRightsMask[to]

	h ^= zobrist.Castling(p.castlingRights)
	if p.epSquare != types.SqNone && types.GetPawnAttacks(us, p.epSquare)&p.piecesBb[them][types.Pawn] != 0 {
		h ^= zobrist.EpFile(p.epSquare.FileOf())
	}
	if them == types.Black {
		h ^= zobrist.SideToMove()
	}

	p.zobristHash = h
	p.sideToMove = them
}

// UndoMove reverses the most recent DoMove.
func (p *Position) UndoMove() {
	assert.Assert(p.historyDepth > 0, "UndoMove: history stack empty")
	p.historyDepth--
	u := &p.history[p.historyDepth]
	m := u.move

	them := p.sideToMove
	us := them.Flip()
	from, to := m.From(), m.To()

	if m.IsCastle() {
		var rookFrom, rookTo types.Square
		switch {
		case m.Flag() == types.FlagKingCastle && us == types.White:
			rookFrom, rookTo = types.SqH1, types.SqF1
		case m.Flag() == types.FlagQueenCastle && us == types.White:
			rookFrom, rookTo = types.SqA1, types.SqD1
		case m.Flag() == types.FlagKingCastle:
			rookFrom, rookTo = types.SqH8, types.SqF8
		default:
			rookFrom, rookTo = types.SqA8, types.SqD8
		}
		rook := types.MakePiece(us, types.Rook)
		p.accRemove(rookTo, rook)
		p.movePiece(rookTo, rookFrom)
		p.accAdd(rookFrom, rook)
	}

	if m.IsPromotion() {
		promo := p.board[to]
		p.accRemove(to, promo)
		p.removePiece(to)
		pawn := types.MakePiece(us, types.Pawn)
		p.putPiece(pawn, to)
		p.accAdd(to, pawn)
	}

	moving := p.board[to]
	p.accRemove(to, moving)
	p.movePiece(to, from)
	p.accAdd(from, moving)
	if moving.TypeOf() == types.King {
		p.accInvalidateKing(us)
	}

	if m.IsEnPassant() {
		capSq := types.NewSquare(to.FileOf(), from.RankOf())
		p.putPiece(u.capturedPiece, capSq)
		p.accAdd(capSq, u.capturedPiece)
	} else if m.IsCapture() {
		p.putPiece(u.capturedPiece, to)
		p.accAdd(to, u.capturedPiece)
	}

	p.castlingRights = u.castlingRights
	p.epSquare = u.epSquare
	p.halfmoveClock = u.halfmoveClock
	p.zobristHash = u.zobristHash
	p.sideToMove = us
	if us == types.Black {
		p.fullmoveNumber--
	}
}

// DoNullMove flips the side to move without moving a piece, used by
// null-move pruning. Returns the previous ep square so it can be restored.
func (p *Position) DoNullMove() types.Square {
	oldEp := p.epSquare
	h := p.zobristHash
	if oldEp != types.SqNone && p.epCaptureAvailable(oldEp) {
		h ^= zobrist.EpFile(oldEp.FileOf())
	}
	h ^= zobrist.SideToMove()
	p.epSquare = types.SqNone
	p.zobristHash = h
	p.sideToMove = p.sideToMove.Flip()
	return oldEp
}

// UndoNullMove reverses DoNullMove.
func (p *Position) UndoNullMove(oldEp types.Square) {
	p.sideToMove = p.sideToMove.Flip()
	h := p.zobristHash
	h ^= zobrist.SideToMove()
	if oldEp != types.SqNone && p.epCaptureAvailable(oldEp) {
		h ^= zobrist.EpFile(oldEp.FileOf())
	}
	p.epSquare = oldEp
	p.zobristHash = h
}

// IsRepetition walks the undo stack backward to the last irreversible move
// and reports whether the current hash has already occurred at least
// twice, satisfying a threefold-equivalent draw claim.
func (p *Position) IsRepetition() bool {
	count := 0
	limit := p.historyDepth - p.halfmoveClock
	if limit < 0 {
		limit = 0
	}
	for i := p.historyDepth - 1; i >= limit; i-- {
		if p.history[i].zobristHash == p.zobristHash {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}

// IsDraw50 reports whether the 50-move (100 half-move) rule applies.
func (p *Position) IsDraw50() bool {
	return p.halfmoveClock >= 100
}

// Clone returns a deep copy suitable for a helper search thread.
func (p *Position) Clone() *Position {
	c := *p
	return &c
}

// NonPawnMaterial reports whether side c has any piece besides pawns and
// king, used by the null-move pruning safety check.
func (p *Position) NonPawnMaterial(c types.Color) bool {
	return p.piecesBb[c][types.Knight]|p.piecesBb[c][types.Bishop]|
		p.piecesBb[c][types.Rook]|p.piecesBb[c][types.Queen] != types.BbZero
}
