package nnue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/types"
)

// deterministicNetwork returns a Network with small, reproducible weights
// so the feature-transformer sum is sensitive to every added/removed
// feature without needing a real trained model file.
func deterministicNetwork() *Network {
	n := &Network{ftWeights: make([]int16, InputSize*AccumulatorWidth)}
	for i := range n.ftBiases {
		n.ftBiases[i] = int16(i % 7)
	}
	for i := range n.ftWeights {
		n.ftWeights[i] = int16((i%13)-6) * 11
	}
	return n
}

func fullRefresh(t *testing.T, net *Network, p *position.Position) Accumulator {
	t.Helper()
	var acc Accumulator
	net.Refresh(p, &acc)
	return acc
}

// TestIncrementalAccumulatorMatchesRefresh plays a short sequence of moves
// (White castles king-side, Black castles queen-side, then a quiet pawn
// push), then checks that Position's incrementally maintained
// accumulator - built purely from the AddFeature/RemoveFeature/
// InvalidatePerspective calls DoMove/UndoMove make - agrees bit-for-bit
// with a from-scratch Refresh of the same final position.
func TestIncrementalAccumulatorMatchesRefresh(t *testing.T) {
	net := deterministicNetwork()

	p, err := position.NewFromFen("r3k2r/ppp2ppp/8/8/8/8/PPP2PPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	p.BindNetwork(net)

	moves := []types.Move{
		types.NewMove(types.SqE1, types.SqG1, types.FlagKingCastle),
		types.NewMove(types.SqE8, types.SqC8, types.FlagQueenCastle),
		types.NewMove(types.SqA2, types.SqA3, types.FlagQuiet),
	}
	for _, m := range moves {
		p.DoMove(m)
	}

	net.EnsureValid(p, p.Accumulator())
	want := fullRefresh(t, net, p)

	for _, persp := range [2]types.Color{types.White, types.Black} {
		assert.Equal(t, want.Values(persp), p.Accumulator().Values(persp), "perspective %v", persp)
	}
}

// TestIncrementalAccumulatorSurvivesUndo does a move/undo/move round trip
// and checks the accumulator still agrees with a fresh Refresh, since
// UndoMove reverses the same Add/Remove/Invalidate calls DoMove made.
func TestIncrementalAccumulatorSurvivesUndo(t *testing.T) {
	net := deterministicNetwork()

	p, err := position.NewFromFen("r3k2r/ppp2ppp/8/8/8/8/PPP2PPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)
	p.BindNetwork(net)

	quiet := types.NewMove(types.SqA2, types.SqA3, types.FlagQuiet)
	p.DoMove(quiet)
	p.UndoMove()

	p.DoMove(types.NewMove(types.SqE1, types.SqG1, types.FlagKingCastle))

	net.EnsureValid(p, p.Accumulator())
	want := fullRefresh(t, net, p)

	for _, persp := range [2]types.Color{types.White, types.Black} {
		assert.Equal(t, want.Values(persp), p.Accumulator().Values(persp), "perspective %v", persp)
	}
}

func TestFeatureIndexDistinguishesPerspectives(t *testing.T) {
	white := FeatureIndex(types.White, types.SqE1, types.SqD4, types.Queen, types.Black)
	black := FeatureIndex(types.Black, types.SqE8, types.SqD5, types.Queen, types.White)
	assert.Equal(t, white, black, "mirrored perspective should land on the same feature")
}
