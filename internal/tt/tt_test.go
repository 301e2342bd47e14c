package tt

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/corvidchess/corvid/internal/types"
)

func TestStoreProbeRoundTrip(t *testing.T) {
	table := New(1)
	key := uint64(0xDEADBEEFCAFEBABE)
	m := types.NewMove(types.SqE2, types.SqE4, types.FlagDoublePawnPush)

	table.Store(key, m, types.Value(150), 6, BoundExact, 0)

	e, ok := table.Probe(key, 0)
	assert.True(t, ok)
	assert.Equal(t, m, e.Move)
	assert.Equal(t, types.Value(150), e.Score)
	assert.Equal(t, 6, e.Depth)
	assert.Equal(t, BoundExact, e.Bound)
}

func TestProbeMissOnUnknownKey(t *testing.T) {
	table := New(1)
	_, ok := table.Probe(0x1234, 0)
	assert.False(t, ok)
}

func TestStorePreservesMoveOnMoveNoneOverwrite(t *testing.T) {
	table := New(1)
	key := uint64(0xAB)
	m := types.NewMove(types.SqD2, types.SqD4, types.FlagDoublePawnPush)

	table.Store(key, m, types.Value(10), 4, BoundExact, 0)
	table.Store(key, types.MoveNone, types.Value(20), 5, BoundUpper, 0)

	e, ok := table.Probe(key, 0)
	assert.True(t, ok)
	assert.Equal(t, m, e.Move)
	assert.Equal(t, types.Value(20), e.Score)
}

func TestClearRemovesEntries(t *testing.T) {
	table := New(1)
	key := uint64(0x99)
	table.Store(key, types.MoveNone, types.Value(1), 1, BoundExact, 0)
	table.Clear()
	_, ok := table.Probe(key, 0)
	assert.False(t, ok)
}

// TestConcurrentStoreProbeNeverProducesWrongHit hammers a tiny table (so
// every key collides into the same handful of clusters) with concurrent
// Store/Probe calls. Each key's move/score is a pure function of its
// index, so any hit whose decoded move doesn't match its own key's index
// means a reader combined one write's key with another write's data - the
// torn-read wrong-hit bug the XOR checksum in entry.store/Probe exists to
// prevent. Under the old scheme (plain key.Store then data.Store on
// eviction) this test reliably catches mismatches within a few thousand
// iterations; under the checksum scheme it should never fire.
func TestConcurrentStoreProbeNeverProducesWrongHit(t *testing.T) {
	table := New(0)
	const numKeys = 8
	const numGoroutines = 16
	const iterations = 4000

	keys := make([]uint64, numKeys)
	for i := range keys {
		keys[i] = 0x1000000000000001 * uint64(i+1)
	}

	var wrongHits atomic.Int32
	var wg sync.WaitGroup
	for g := 0; g < numGoroutines; g++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				idx := (seed + i) % numKeys
				key := keys[idx]
				wantFrom := types.Square(idx % 64)
				wantTo := types.Square((idx + 1) % 64)
				move := types.NewMove(wantFrom, wantTo, types.FlagQuiet)
				wantScore := types.Value(idx * 10)

				table.Store(key, move, wantScore, idx%8, BoundExact, 0)

				if e, ok := table.Probe(key, 0); ok {
					if e.Move.From() != wantFrom || e.Move.To() != wantTo || e.Score != wantScore {
						wrongHits.Add(1)
					}
				}
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, int32(0), wrongHits.Load(), "a probe returned a hit whose payload didn't belong to the probed key")
}

func TestMateScoreNormalizedByPly(t *testing.T) {
	table := New(1)
	key := uint64(0x42)
	mateScore := types.Value(types.ValueCheckMate - 3)

	table.Store(key, types.MoveNone, mateScore, 3, BoundExact, 2)
	e, ok := table.Probe(key, 2)
	assert.True(t, ok)
	assert.Equal(t, mateScore, e.Score)
}
