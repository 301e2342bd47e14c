package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidchess/corvid/internal/types"
)

func TestAddKillerPromotesAndShifts(t *testing.T) {
	h := New()
	m1 := types.NewMove(types.SqE2, types.SqE4, types.FlagDoublePawnPush)
	m2 := types.NewMove(types.SqD2, types.SqD4, types.FlagDoublePawnPush)

	h.AddKiller(3, m1)
	k0, k1 := h.Killers(3)
	assert.Equal(t, m1, k0)
	assert.Equal(t, types.MoveNone, k1)

	h.AddKiller(3, m2)
	k0, k1 = h.Killers(3)
	assert.Equal(t, m2, k0)
	assert.Equal(t, m1, k1)

	// Re-adding the existing top killer is a no-op.
	h.AddKiller(3, m2)
	k0, k1 = h.Killers(3)
	assert.Equal(t, m2, k0)
	assert.Equal(t, m1, k1)
}

func TestHistoryBonusAccumulatesAndClamps(t *testing.T) {
	h := New()
	pc, to := types.WhiteKnight, types.SqF3

	h.AddHistoryBonus(pc, to, 10)
	assert.Equal(t, int32(100), h.HistoryScore(pc, to))

	for i := 0; i < 1000; i++ {
		h.AddHistoryBonus(pc, to, 32)
	}
	assert.Equal(t, int32(historyCap), h.HistoryScore(pc, to))
}

func TestHistoryMalusClampsNegative(t *testing.T) {
	h := New()
	pc, to := types.BlackQueen, types.SqD5

	for i := 0; i < 1000; i++ {
		h.AddHistoryMalus(pc, to, 32)
	}
	assert.Equal(t, int32(-historyCap), h.HistoryScore(pc, to))
}

func TestCounterMoveRoundTrip(t *testing.T) {
	h := New()
	reply := types.NewMove(types.SqG8, types.SqF6, types.FlagQuiet)
	h.SetCounterMove(types.WhitePawn, types.SqE4, reply)
	assert.Equal(t, reply, h.CounterMove(types.WhitePawn, types.SqE4))
	assert.Equal(t, types.MoveNone, h.CounterMove(types.WhitePawn, types.SqD4))
}

func TestResetClearsAllState(t *testing.T) {
	h := New()
	m := types.NewMove(types.SqE2, types.SqE4, types.FlagDoublePawnPush)
	h.AddKiller(0, m)
	h.AddHistoryBonus(types.WhitePawn, types.SqE4, 5)
	h.SetCounterMove(types.WhitePawn, types.SqE4, m)

	h.Reset()

	k0, k1 := h.Killers(0)
	assert.Equal(t, types.MoveNone, k0)
	assert.Equal(t, types.MoveNone, k1)
	assert.Equal(t, int32(0), h.HistoryScore(types.WhitePawn, types.SqE4))
	assert.Equal(t, types.MoveNone, h.CounterMove(types.WhitePawn, types.SqE4))
}
