package search

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/corvidchess/corvid/internal/movegen"
	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/types"
)

// Pool runs a Lazy-SMP search: several threads searching the same
// position independently, sharing only a *SharedState. A weighted
// semaphore caps how many searches may run concurrently against a given
// shared state, since StartSearch/StopSearch/WaitWhileSearching must
// never overlap on the same Pool.
type Pool struct {
	shared      *SharedState
	sem         *semaphore.Weighted
	defaultSize int

	mu       sync.Mutex
	wg       sync.WaitGroup
	running  bool
	reporter Reporter

	bestMove  types.Move
	bestScore types.Value
}

// NewPool builds a thread pool sharing a single hash table, evaluator,
// opening book and tablebase prober, defaulting future searches to
// defaultThreads worker threads.
func NewPool(hashMb int, defaultThreads int) *Pool {
	if defaultThreads < 1 {
		defaultThreads = 1
	}
	return &Pool{
		shared:      NewSharedState(hashMb),
		sem:         semaphore.NewWeighted(1),
		defaultSize: defaultThreads,
	}
}

// Shared exposes the pool's shared state, e.g. for wiring a book or
// tablebase prober after construction.
func (p *Pool) Shared() *SharedState { return p.shared }

// SetReporter installs the UCI-facing progress reporter used by the main
// search thread.
func (p *Pool) SetReporter(r Reporter) { p.reporter = r }

// StartSearch launches a Lazy-SMP search of root over the given limits
// using threadCount goroutines, and returns immediately; the caller
// joins with WaitWhileSearching. A book hit, when present, is returned
// synchronously without spawning any threads.
func (p *Pool) StartSearch(root *position.Position, limits Limits, threadCount int) {
	if !p.sem.TryAcquire(1) {
		return
	}
	if threadCount < 1 {
		threadCount = p.defaultSize
	}

	p.mu.Lock()
	p.running = true
	p.mu.Unlock()

	p.shared.Stop.Store(false)
	p.shared.Nodes.Store(0)
	p.shared.TT.NewSearch()

	if p.shared.Book != nil {
		if raw, ok := p.shared.Book.Probe(root.ZobristHash()); ok {
			promo := types.PtNone
			if raw.IsPromotion() {
				promo = raw.PromotionType()
			}
			if mv := movegen.ResolveMove(root, raw.From(), raw.To(), promo); mv != types.MoveNone {
				p.finish(mv, types.ValueZero)
				return
			}
			// Book move didn't resolve against the current legal move
			// list (corrupt or mismatched book); fall through to search.
		}
	}

	if tbMax := p.shared.TB.MaxPieces(); tbMax > 0 && root.AllOccupied().PopCount() <= tbMax {
		if rp, ok := p.shared.TB.ProbeRoot(root); ok {
			if mv := movegen.ResolveMove(root, rp.From, rp.To, rp.Promo); mv != types.MoveNone {
				p.finish(mv, tbValueFromWdl(rp.Wdl))
				return
			}
			// Root probe named a move the current generator doesn't see as
			// legal (stale or corrupt tablebase data); fall through to search.
		}
	}

	deadlines := ComputeDeadlines(limits, root.SideToMove())

	p.wg.Add(threadCount)
	results := make([]struct {
		move  types.Move
		score types.Value
	}, threadCount)

	for i := 0; i < threadCount; i++ {
		id := i
		board := root.Clone()
		th := NewThread(p.shared, board, id == 0, id)
		th.deadlines = deadlines
		if id == 0 {
			th.reporter = p.reporter
		}
		depthLimit := limits.Depth
		if id > 0 {
			// helper threads search without their own time budget and
			// occasionally probe a slightly different depth to diversify
			// the search tree, per the usual Lazy-SMP recipe.
			th.deadlines = Deadlines{Infinite: true}
			if depthLimit > 0 && id%3 == 1 {
				depthLimit++
			}
		}

		go func() {
			defer p.wg.Done()
			mv, sc := th.rootSearch(depthLimit)
			results[id].move = mv
			results[id].score = sc
		}()
	}

	go func() {
		p.wg.Wait()
		mv, sc := results[0].move, results[0].score
		if mv == types.MoveNone {
			for _, r := range results {
				if r.move != types.MoveNone {
					mv, sc = r.move, r.score
					break
				}
			}
		}
		p.finish(mv, sc)
	}()
}

func (p *Pool) finish(mv types.Move, sc types.Value) {
	p.mu.Lock()
	p.bestMove, p.bestScore = mv, sc
	p.running = false
	p.mu.Unlock()
	if p.reporter != nil {
		p.reporter.BestMove(mv, types.MoveNone)
	}
	p.sem.Release(1)
}

// StopSearch requests every running thread to return as soon as it next
// checks the shared stop flag.
func (p *Pool) StopSearch() {
	p.shared.Stop.Store(true)
}

// WaitWhileSearching blocks until the in-flight search (if any) has
// produced its best move, or until ctx is done.
func (p *Pool) WaitWhileSearching(ctx context.Context) (types.Move, types.Value) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return types.MoveNone, types.ValueZero
	}
	p.sem.Release(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bestMove, p.bestScore
}

// IsSearching reports whether a search is currently in flight.
func (p *Pool) IsSearching() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// SearchSync runs a search to completion synchronously, used by tests that
// do not need the async UCI flow.
func (p *Pool) SearchSync(root *position.Position, limits Limits, threadCount int) (types.Move, types.Value) {
	p.StartSearch(root, limits, threadCount)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	return p.WaitWhileSearching(ctx)
}
