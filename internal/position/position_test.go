package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/internal/types"
)

func TestFenRoundTrip(t *testing.T) {
	fens := []string{
		StartFen,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 b - - 0 1",
		"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2",
	}
	for _, fen := range fens {
		p, err := NewFromFen(fen)
		require.NoError(t, err, fen)
		assert.Equal(t, fen, p.Fen())
	}
}

func TestDoUndoMoveRestoresZobristHash(t *testing.T) {
	p, err := NewFromFen(StartFen)
	require.NoError(t, err)
	before := p.ZobristHash()
	beforeFen := p.Fen()

	m := types.NewMove(types.SqE2, types.SqE4, types.FlagDoublePawnPush)
	p.DoMove(m)
	assert.NotEqual(t, before, p.ZobristHash())

	p.UndoMove()
	assert.Equal(t, before, p.ZobristHash())
	assert.Equal(t, beforeFen, p.Fen())
}

func TestDoMoveEpCaptureClearsCapturedPawn(t *testing.T) {
	p, err := NewFromFen("rnbqkbnr/ppp1pppp/8/3pP3/8/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 3")
	require.NoError(t, err)

	m := types.NewMove(types.SqE5, types.SqD6, types.FlagEpCapture)
	p.DoMove(m)

	assert.Equal(t, types.PieceNone, p.PieceOn(types.SqD5))
	assert.Equal(t, types.WhitePawn, p.PieceOn(types.SqD6))

	p.UndoMove()
	assert.Equal(t, types.BlackPawn, p.PieceOn(types.SqD5))
	assert.Equal(t, types.PieceNone, p.PieceOn(types.SqD6))
}

func TestCastlingRightsRevokedByKingMove(t *testing.T) {
	p, err := NewFromFen("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	m := types.NewMove(types.SqE1, types.SqG1, types.FlagKingCastle)
	p.DoMove(m)

	assert.False(t, p.CastlingRights().Has(types.CastlingKingSide(types.White)))
	assert.False(t, p.CastlingRights().Has(types.CastlingQueenSide(types.White)))
	assert.Equal(t, types.WhiteKing, p.PieceOn(types.SqG1))
	assert.Equal(t, types.WhiteRook, p.PieceOn(types.SqF1))
}

func TestInCheck(t *testing.T) {
	p, err := NewFromFen("4k3/8/8/8/8/8/4r3/4K3 w - - 0 1")
	require.NoError(t, err)
	assert.True(t, p.InCheck())
}
