package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/types"
)

func TestRootSearchFindsMateInOne(t *testing.T) {
	// Ra1-a8 is a back-rank mate: the king's own pawns block every escape
	// square along the seventh rank.
	p, err := position.NewFromFen("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	require.NoError(t, err)

	shared := NewSharedState(4)
	th := NewThread(shared, p, true, 0)
	th.deadlines = Deadlines{Infinite: true}

	mv, score := th.rootSearch(4)
	require.NotEqual(t, types.MoveNone, mv)
	assert.Greater(t, int(score), int(types.MateThreshold))
}

func TestRootSearchPrefersOnlyLegalMove(t *testing.T) {
	p, err := position.NewFromFen("k7/8/1K6/8/8/8/8/7R w - - 0 1")
	require.NoError(t, err)

	shared := NewSharedState(4)
	th := NewThread(shared, p, true, 0)
	th.deadlines = Deadlines{Infinite: true}

	mv, _ := th.rootSearch(2)
	require.NotEqual(t, types.MoveNone, mv)
}

func TestRootSearchRecognizesRookMaterialAdvantage(t *testing.T) {
	p, err := position.NewFromFen("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	require.NoError(t, err)

	shared := NewSharedState(4)
	th := NewThread(shared, p, true, 0)
	th.deadlines = Deadlines{Infinite: true}

	_, score := th.rootSearch(6)
	assert.GreaterOrEqual(t, int(score), 400)
}
