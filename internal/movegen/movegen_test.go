package movegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/types"
)

func TestPerftStartpos(t *testing.T) {
	p, err := position.NewFromFen(position.StartFen)
	require.NoError(t, err)

	want := []uint64{1, 20, 400, 8902, 197281, 4865609}
	for depth, n := range want {
		assert.Equal(t, n, Perft(p, depth), "depth %d", depth)
	}
}

func TestPerftKiwipete(t *testing.T) {
	p, err := position.NewFromFen("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	want := []uint64{1, 48, 2039, 97862, 4085603}
	for depth, n := range want {
		assert.Equal(t, n, Perft(p, depth), "depth %d", depth)
	}
}

func TestPerftPositionThree(t *testing.T) {
	p, err := position.NewFromFen("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	require.NoError(t, err)

	want := []uint64{1, 14, 191, 2812, 43238}
	for depth, n := range want {
		assert.Equal(t, n, Perft(p, depth), "depth %d", depth)
	}
}

func TestMoveFromUci(t *testing.T) {
	p, err := position.NewFromFen(position.StartFen)
	require.NoError(t, err)

	m := MoveFromUci(p, "e2e4")
	require.NotEqual(t, types.MoveNone, m)
	assert.True(t, m.IsDoublePawnPush())
	assert.Equal(t, types.SqE2, m.From())
	assert.Equal(t, types.SqE4, m.To())

	assert.Equal(t, types.MoveNone, MoveFromUci(p, "e2e5"))
	assert.Equal(t, types.MoveNone, MoveFromUci(p, "zz"))
}

func TestMoveFromUciPromotion(t *testing.T) {
	p, err := position.NewFromFen("8/P7/8/8/8/8/8/k6K w - - 0 1")
	require.NoError(t, err)

	m := MoveFromUci(p, "a7a8q")
	require.NotEqual(t, types.MoveNone, m)
	assert.True(t, m.IsPromotion())
	assert.Equal(t, types.Queen, m.PromotionType())
}

func TestResolveMoveCastlingPolyglotEncoding(t *testing.T) {
	p, err := position.NewFromFen("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	// UCI style: king travels to its destination square.
	uciStyle := ResolveMove(p, types.SqE1, types.SqG1, types.PtNone)
	require.NotEqual(t, types.MoveNone, uciStyle)
	assert.True(t, uciStyle.IsCastle())

	// PolyGlot style: king "captures" its own rook.
	polyglotStyle := ResolveMove(p, types.SqE1, types.SqH1, types.PtNone)
	require.NotEqual(t, types.MoveNone, polyglotStyle)
	assert.Equal(t, uciStyle, polyglotStyle)
}

func TestResolveMoveUnresolvable(t *testing.T) {
	p, err := position.NewFromFen(position.StartFen)
	require.NoError(t, err)

	assert.Equal(t, types.MoveNone, ResolveMove(p, types.SqA1, types.SqA8, types.PtNone))
}
