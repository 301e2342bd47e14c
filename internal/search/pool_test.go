package search

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidchess/corvid/internal/book"
	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/tb"
	"github.com/corvidchess/corvid/internal/types"
)

// stubTB is a fixed-answer tb.Prober used to exercise the root-probe wiring
// without a real Syzygy binding.
type stubTB struct {
	maxPieces int
	root      tb.RootProbe
	rootOk    bool
}

func (s stubTB) MaxPieces() int { return s.maxPieces }

func (s stubTB) ProbeWDL(tb.Position) (tb.Wdl, bool) { return tb.WdlNone, false }

func (s stubTB) ProbeRoot(tb.Position) (tb.RootProbe, bool) { return s.root, s.rootOk }

func TestSearchSyncReturnsLegalMove(t *testing.T) {
	p, err := position.NewFromFen(position.StartFen)
	require.NoError(t, err)

	pool := NewPool(4, 1)
	mv, _ := pool.SearchSync(p, Limits{Depth: 3}, 1)
	assert.NotEqual(t, types.MoveNone, mv)
	assert.False(t, pool.IsSearching())
}

func TestSearchSyncFindsBackRankMate(t *testing.T) {
	p, err := position.NewFromFen("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	require.NoError(t, err)

	pool := NewPool(4, 2)
	mv, score := pool.SearchSync(p, Limits{Depth: 5}, 2)
	require.NotEqual(t, types.MoveNone, mv)
	assert.Greater(t, int(score), int(types.MateThreshold))
}

func TestStartSearchReturnsBookMoveWithoutSearching(t *testing.T) {
	p, err := position.NewFromFen(position.StartFen)
	require.NoError(t, err)

	pgMove := uint16(28) | uint16(12)<<6 // e2e4
	dir := t.TempDir()
	path := filepath.Join(dir, "book.bin")
	var row [16]byte
	binary.BigEndian.PutUint64(row[0:8], p.ZobristHash())
	binary.BigEndian.PutUint16(row[8:10], pgMove)
	binary.BigEndian.PutUint16(row[10:12], 10)
	require.NoError(t, os.WriteFile(path, row[:], 0o644))

	b, err := book.Load(path)
	require.NoError(t, err)

	pool := NewPool(4, 1)
	pool.Shared().Book = b

	mv, _ := pool.SearchSync(p, Limits{Depth: 10}, 1)
	require.NotEqual(t, types.MoveNone, mv)
	assert.Equal(t, types.SqE2, mv.From())
	assert.Equal(t, types.SqE4, mv.To())
	assert.True(t, mv.IsDoublePawnPush())
}

func TestStartSearchReturnsRootTablebaseMoveWithoutSearching(t *testing.T) {
	p, err := position.NewFromFen("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	require.NoError(t, err)

	pool := NewPool(4, 1)
	pool.Shared().TB = stubTB{
		maxPieces: 32,
		root: tb.RootProbe{
			From: types.SqA1,
			To:   types.SqA8,
			Wdl:  tb.WdlWin,
		},
		rootOk: true,
	}

	mv, score := pool.SearchSync(p, Limits{Depth: 10}, 1)
	require.NotEqual(t, types.MoveNone, mv)
	assert.Equal(t, types.SqA1, mv.From())
	assert.Equal(t, types.SqA8, mv.To())
	assert.Greater(t, int(score), int(types.MateThreshold))
}

func TestMultiThreadedSearchReturnsLegalMove(t *testing.T) {
	p, err := position.NewFromFen(position.StartFen)
	require.NoError(t, err)

	pool := NewPool(4, 4)
	mv, _ := pool.SearchSync(p, Limits{Depth: 4}, 4)
	assert.NotEqual(t, types.MoveNone, mv)
}

func TestStopReturnsPromptlyUnderLoad(t *testing.T) {
	p, err := position.NewFromFen(position.StartFen)
	require.NoError(t, err)

	pool := NewPool(4, 4)
	pool.StartSearch(p, Limits{Infinite: true}, 4)

	// let the threads get into their search loops before asking them to
	// stop, so this actually exercises cancellation under load.
	time.Sleep(20 * time.Millisecond)
	pool.StopSearch()

	done := make(chan struct{})
	go func() {
		pool.WaitWhileSearching(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("search did not stop within 100ms of StopSearch")
	}
}

func TestIsSearchingDuringAndAfterSearch(t *testing.T) {
	p, err := position.NewFromFen(position.StartFen)
	require.NoError(t, err)

	pool := NewPool(4, 1)
	assert.False(t, pool.IsSearching())
	pool.SearchSync(p, Limits{Depth: 2}, 1)
	assert.False(t, pool.IsSearching())
}
