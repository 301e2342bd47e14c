package see

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/types"
)

func TestEvaluateNonCaptureIsZero(t *testing.T) {
	p, err := position.NewFromFen(position.StartFen)
	require.NoError(t, err)

	m := types.NewMove(types.SqE2, types.SqE4, types.FlagDoublePawnPush)
	assert.Equal(t, 0, Evaluate(p, m))
}

func TestEvaluateWinningPawnTakesQueen(t *testing.T) {
	p, err := position.NewFromFen("4k3/8/8/8/3q4/4P3/8/4K3 w - - 0 1")
	require.NoError(t, err)

	m := types.NewMove(types.SqE3, types.SqD4, types.FlagCapture)
	assert.Greater(t, Evaluate(p, m), 0)
}

func TestEvaluateLosingQueenTakesDefendedPawn(t *testing.T) {
	p, err := position.NewFromFen("4k3/3p4/8/8/8/8/3Q4/4K3 w - - 0 1")
	require.NoError(t, err)

	m := types.NewMove(types.SqD2, types.SqD7, types.FlagCapture)
	assert.Less(t, Evaluate(p, m), 0)
}
