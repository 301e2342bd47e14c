package search

import (
	"math"
	"time"

	"github.com/corvidchess/corvid/internal/history"
	"github.com/corvidchess/corvid/internal/movegen"
	"github.com/corvidchess/corvid/internal/moveslice"
	"github.com/corvidchess/corvid/internal/position"
	"github.com/corvidchess/corvid/internal/see"
	"github.com/corvidchess/corvid/internal/tb"
	"github.com/corvidchess/corvid/internal/tt"
	"github.com/corvidchess/corvid/internal/types"
)

const (
	maxPly         = 128
	nodeCheckEvery = 2048
	nodeFlushEvery = 4096
	mateValue      = int(types.ValueCheckMate)
)

// tbWinValue is the score reported for a tablebase-proven win, placed
// above MateThreshold (so it is still recognized as a forced result) but
// below any real mate score the search itself can produce.
const tbWinValue = types.ValueCheckMate - 2*maxPly

// tbValueFromWdl converts a tablebase classification into a score from
// the side-to-move's perspective. Cursed wins and blessed losses are
// draws under the fifty-move rule, so they score as a draw.
func tbValueFromWdl(wdl tb.Wdl) types.Value {
	switch wdl {
	case tb.WdlWin:
		return tbWinValue
	case tb.WdlLoss:
		return -tbWinValue
	default:
		return types.ValueDraw
	}
}

// Reporter receives progress callbacks during search, implemented by the
// UCI layer to print `info` lines.
type Reporter interface {
	Info(depth int, score types.Value, pv []types.Move, nodes uint64, elapsed time.Duration)
	InfoString(s string)
	BestMove(m types.Move, ponder types.Move)
}

// Thread is one search worker's entirely private state plus a pointer to
// the state it shares with every other thread.
type Thread struct {
	shared *SharedState
	board  *position.Position
	heur   *history.Heuristics

	isMain   bool
	threadID int

	localNodes uint64

	pvTable [maxPly][maxPly]types.Move
	pvLen   [maxPly]int

	moveLists [maxPly]moveslice.MoveSlice
	moveStack [maxPly]types.Move

	deadlines Deadlines
	startTime time.Time
	reporter  Reporter

	lastBestMove     types.Move
	stableIterations int
	prevIterElapsed  time.Duration
	rootBestScore    types.Value
}

// NewThread returns a fresh per-thread search worker bound to shared.
func NewThread(shared *SharedState, board *position.Position, isMain bool, id int) *Thread {
	return &Thread{
		shared:   shared,
		board:    board,
		heur:     history.New(),
		isMain:   isMain,
		threadID: id,
	}
}

func (t *Thread) checkStop() bool {
	if t.shared.Stop.Load() {
		return true
	}
	if !t.isMain || t.deadlines.Infinite {
		return false
	}
	if time.Since(t.startTime) >= t.deadlines.Hard {
		t.shared.Stop.Store(true)
		return true
	}
	return false
}

func (t *Thread) bumpNodes() {
	t.localNodes++
	if t.localNodes%nodeFlushEvery == 0 {
		t.shared.Nodes.Add(nodeFlushEvery)
	}
}

func (t *Thread) flushNodes() {
	remainder := t.localNodes % nodeFlushEvery
	if remainder != 0 {
		t.shared.Nodes.Add(remainder)
	}
}

// rootSearch runs iterative deepening from depth 1 up to maxDepth (or, when
// maxDepth is 0, up to maxPly-1, stopping earlier on the deadlines/stop flag).
func (t *Thread) rootSearch(maxDepth int) (types.Move, types.Value) {
	t.startTime = time.Now()
	var bestMove types.Move
	var bestScore types.Value

	var rootMoves moveslice.MoveSlice
	movegen.Generate(t.board, &rootMoves)
	legal := filterLegal(t.board, &rootMoves)
	if legal.Len() == 0 {
		return types.MoveNone, types.ValueZero
	}
	if legal.Len() == 1 {
		bestMove = legal.At(0).Move
	}

	depthLimit := maxDepth
	if depthLimit == 0 {
		depthLimit = maxPly - 1
	}

	for depth := 1; depth <= depthLimit; depth++ {
		iterStart := time.Now()
		score, move, ok := t.searchRootDepth(depth, bestScore, &legal)
		if !ok {
			break
		}
		bestScore = score
		if move != types.MoveNone {
			bestMove = move
		}
		elapsed := time.Since(t.startTime)

		if t.isMain && t.reporter != nil {
			pv := t.pvTable[0][:t.pvLen[0]]
			t.reporter.Info(depth, score, pv, t.shared.Nodes.Load()+t.localNodes, elapsed)
		}

		if bestMove == t.lastBestMove {
			t.stableIterations++
		} else {
			t.stableIterations = 0
		}
		t.lastBestMove = bestMove

		if t.isMain && !t.deadlines.Infinite && maxDepth == 0 {
			iterElapsed := time.Since(iterStart)
			stable := t.stableIterations >= 4 && elapsed > t.deadlines.Soft/2
			projected := elapsed + iterElapsed + iterElapsed/2
			tooSlow := t.prevIterElapsed > 0 && projected > t.deadlines.Soft
			if stable || tooSlow || elapsed > t.deadlines.Soft {
				t.prevIterElapsed = iterElapsed
				break
			}
			t.prevIterElapsed = iterElapsed
		}

		if t.checkStop() {
			break
		}
	}

	t.flushNodes()
	return bestMove, bestScore
}

// searchRootDepth runs one iterative-deepening iteration with an
// aspiration window once depth > 4, widening and eventually falling back
// to a full window on repeated fail-high/fail-low.
func (t *Thread) searchRootDepth(depth int, prevScore types.Value, legal *moveslice.MoveSlice) (types.Value, types.Move, bool) {
	if depth <= 4 {
		score := t.negamaxRoot(depth, types.Value(-mateValue), types.Value(mateValue), legal)
		if t.shared.Stop.Load() && depth > 1 {
			return 0, types.MoveNone, false
		}
		return score, t.pvTable[0][0], true
	}

	delta := types.Value(50)
	alpha := prevScore - delta
	beta := prevScore + delta
	for {
		score := t.negamaxRoot(depth, alpha, beta, legal)
		if t.shared.Stop.Load() {
			return 0, types.MoveNone, false
		}
		if score <= alpha {
			alpha -= delta
		} else if score >= beta {
			beta += delta
		} else {
			return score, t.pvTable[0][0], true
		}
		delta += delta / 2
		if delta > 3000 {
			alpha = types.Value(-mateValue)
			beta = types.Value(mateValue)
		}
	}
}

func (t *Thread) negamaxRoot(depth int, alpha, beta types.Value, legal *moveslice.MoveSlice) types.Value {
	t.scoreMoves(legal, 0, types.MoveNone)
	best := types.Value(-mateValue)
	bestMove := types.MoveNone
	first := true

	for i := 0; i < legal.Len(); i++ {
		sm := legal.PickBest(i)
		m := sm.Move
		t.board.DoMove(m)
		var score types.Value
		if first {
			score = -t.negamax(depth-1, 1, -beta, -alpha, true)
			first = false
		} else {
			score = -t.negamax(depth-1, 1, -alpha-1, -alpha, true)
			if score > alpha && score < beta {
				score = -t.negamax(depth-1, 1, -beta, -alpha, true)
			}
		}
		t.board.UndoMove()

		if t.shared.Stop.Load() {
			return best
		}

		if score > best {
			best = score
			bestMove = m
			t.updatePv(0, m)
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	if bestMove != types.MoveNone {
		t.pvTable[0][0] = bestMove
		if t.pvLen[0] == 0 {
			t.pvLen[0] = 1
		}
	}
	return best
}

func (t *Thread) updatePv(ply int, m types.Move) {
	t.pvTable[ply][0] = m
	n := t.pvLen[ply+1]
	copy(t.pvTable[ply][1:1+n], t.pvTable[ply+1][:n])
	t.pvLen[ply] = n + 1
}

// negamax implements the full per-node search described in §4.J.
func (t *Thread) negamax(depth, ply int, alpha, beta types.Value, allowNull bool) types.Value {
	t.pvLen[ply] = 0
	t.bumpNodes()

	if t.localNodes%nodeCheckEvery == 0 && t.checkStop() {
		return 0
	}

	inCheck := t.board.InCheck()
	if inCheck {
		depth++
	}

	if ply > 0 {
		if t.board.IsDraw50() || t.board.IsRepetition() {
			return types.ValueDraw
		}
	}

	if depth <= 0 {
		return t.quiescence(alpha, beta)
	}

	alphaOrig := alpha

	key := t.board.ZobristHash()
	var ttMove types.Move
	if entry, ok := t.shared.TT.Probe(key, ply); ok {
		ttMove = entry.Move
		if entry.Depth >= depth {
			switch entry.Bound {
			case tt.BoundExact:
				return entry.Score
			case tt.BoundLower:
				if entry.Score >= beta {
					return entry.Score
				}
			case tt.BoundUpper:
				if entry.Score <= alpha {
					return entry.Score
				}
			}
		}
	}

	if ply > 0 {
		if tbMax := t.shared.TB.MaxPieces(); tbMax > 0 && t.board.AllOccupied().PopCount() <= tbMax {
			if wdl, ok := t.shared.TB.ProbeWDL(t.board); ok {
				score := tbValueFromWdl(wdl)
				decisive := wdl == tb.WdlWin || wdl == tb.WdlLoss
				if decisive && (score >= beta || score <= alpha) {
					return score
				}
				if !decisive && score > alpha && score < beta {
					return score
				}
			}
		}
	}

	staticEval := t.shared.Eval.Evaluate(t.board)

	if ply > 0 && !inCheck && depth <= 6 {
		margin := types.Value(80 * depth)
		if staticEval-margin >= beta {
			return staticEval - margin
		}
	}

	if ply > 0 && !inCheck && allowNull && depth >= 3 &&
		staticEval >= beta && t.board.NonPawnMaterial(t.board.SideToMove()) {
		reduction := 2
		if depth > 6 {
			reduction = 3
		}
		oldEp := t.board.DoNullMove()
		score := -t.negamax(depth-1-reduction, ply+1, -beta, -beta+1, false)
		t.board.UndoNullMove(oldEp)
		if score >= beta && score < types.Value(mateValue)-types.Value(maxPly) {
			return beta
		}
	}

	if ttMove == types.MoveNone && depth >= 4 {
		t.negamax(depth-2, ply, alpha, beta, allowNull)
		if entry, ok := t.shared.TT.Probe(key, ply); ok {
			ttMove = entry.Move
		}
	}

	moves := &t.moveLists[ply]
	movegen.Generate(t.board, moves)
	t.scoreMoves(moves, ply, ttMove)

	futility := !inCheck && depth <= 3 && staticEval+types.Value(150*depth) <= alpha

	legalCount := 0
	best := types.Value(-mateValue)
	bestMove := types.MoveNone
	var searchedQuiets []types.Move

	for i := 0; i < moves.Len(); i++ {
		sm := moves.PickBest(i)
		m := sm.Move
		isQuiet := !m.IsCapture() && !m.IsPromotion()

		if futility && isQuiet && legalCount > 0 {
			continue
		}
		if isQuiet && depth <= 4 && legalCount >= lmpThreshold(depth) {
			continue
		}
		if m.IsCapture() && !inCheck && depth <= 6 && see.Evaluate(t.board, m) < -20*depth {
			continue
		}

		us := t.board.SideToMove()
		t.board.DoMove(m)
		if t.board.IsSquareAttacked(t.board.KingSquare(us), t.board.SideToMove()) {
			t.board.UndoMove()
			continue
		}
		legalCount++
		t.moveStack[ply] = m

		var score types.Value
		if legalCount == 1 {
			score = -t.negamax(depth-1, ply+1, -beta, -alpha, true)
		} else {
			reduction := 0
			if depth >= 3 && isQuiet && !inCheck && legalCount > 1 {
				reduction = lmrReduction(depth, legalCount)
			}
			score = -t.negamax(depth-1-reduction, ply+1, -alpha-1, -alpha, true)
			if score > alpha && reduction > 0 {
				score = -t.negamax(depth-1, ply+1, -alpha-1, -alpha, true)
			}
			if score > alpha && score < beta {
				score = -t.negamax(depth-1, ply+1, -beta, -alpha, true)
			}
		}
		t.board.UndoMove()

		if t.shared.Stop.Load() {
			return best
		}

		if score > best {
			best = score
			bestMove = m
			t.updatePv(ply, m)
		}
		if score > alpha {
			alpha = score
			if isQuiet {
				movingPiece := t.board.PieceOn(m.From())
				t.heur.AddHistoryBonus(movingPiece, m.To(), depth)
				t.heur.AddKiller(ply, m)
				if ply > 0 {
					prev := t.moveStack[ply-1]
					if prev != types.MoveNone {
						prevPc := t.board.PieceOn(prev.To())
						t.heur.SetCounterMove(prevPc, prev.To(), m)
					}
				}
			}
		}
		if isQuiet {
			searchedQuiets = append(searchedQuiets, m)
		}
		if alpha >= beta {
			// The cutoff move m only belongs to searchedQuiets - and only
			// received the history bonus above - when it is itself quiet.
			// A capture cutoff leaves every tracked quiet move a genuine
			// non-cutoff quiet that should take the malus.
			malusQuiets := searchedQuiets
			if isQuiet {
				malusQuiets = searchedQuiets[:len(searchedQuiets)-1]
			}
			for _, q := range malusQuiets {
				pc := t.board.PieceOn(q.From())
				t.heur.AddHistoryMalus(pc, q.To(), depth)
			}
			break
		}
	}

	if legalCount == 0 {
		if inCheck {
			return types.Value(-mateValue + ply)
		}
		return types.ValueDraw
	}

	var bound tt.Bound
	switch {
	case best <= alphaOrig:
		bound = tt.BoundUpper
		bestMove = types.MoveNone
	case best >= beta:
		bound = tt.BoundLower
	default:
		bound = tt.BoundExact
	}
	t.shared.TT.Store(key, bestMove, best, depth, bound, ply)

	return best
}

func lmpThreshold(depth int) int {
	thresholds := [5]int{0, 3, 6, 10, 15}
	if depth >= len(thresholds) {
		return 99
	}
	return thresholds[depth]
}

// quiescence restricts search to captures and promotions to avoid the
// horizon effect, with delta pruning and SEE-based capture filtering.
func (t *Thread) quiescence(alpha, beta types.Value) types.Value {
	t.bumpNodes()
	if t.localNodes%nodeCheckEvery == 0 && t.checkStop() {
		return 0
	}

	standPat := t.shared.Eval.Evaluate(t.board)
	if standPat >= beta {
		return beta
	}
	const deltaMargin = types.Value(975)
	if standPat+deltaMargin < alpha {
		return alpha
	}
	if standPat > alpha {
		alpha = standPat
	}

	var moves moveslice.MoveSlice
	movegen.GenerateCapturesOnly(t.board, &moves)
	t.scoreMoves(&moves, 0, types.MoveNone)

	for i := 0; i < moves.Len(); i++ {
		sm := moves.PickBest(i)
		m := sm.Move
		if see.Evaluate(t.board, m) < -50 {
			continue
		}
		us := t.board.SideToMove()
		t.board.DoMove(m)
		if t.board.IsSquareAttacked(t.board.KingSquare(us), t.board.SideToMove()) {
			t.board.UndoMove()
			continue
		}
		score := -t.quiescence(-beta, -alpha)
		t.board.UndoMove()

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

func filterLegal(p *position.Position, src *moveslice.MoveSlice) moveslice.MoveSlice {
	var out moveslice.MoveSlice
	for i := 0; i < src.Len(); i++ {
		m := src.At(i).Move
		if movegen.IsLegal(p, m) {
			out.Push(m)
		}
	}
	return out
}

const (
	mvvLvaBase   = int32(1_000_000)
	killerScore1 = int32(900_000)
	killerScore2 = int32(800_000)
)

const counterScore = int32(700_000)

func (t *Thread) scoreMoves(moves *moveslice.MoveSlice, ply int, ttMove types.Move) {
	k1, k2 := t.heur.Killers(ply)
	var counter types.Move
	if ply > 0 {
		if prev := t.moveStack[ply-1]; prev != types.MoveNone {
			counter = t.heur.CounterMove(t.board.PieceOn(prev.To()), prev.To())
		}
	}
	for i := 0; i < moves.Len(); i++ {
		sm := moves.At(i)
		m := sm.Move
		var score int32
		switch {
		case m == ttMove:
			score = mvvLvaBase * 10
		case m.IsCapture():
			victim := t.board.PieceOn(m.To())
			victimType := victim.TypeOf()
			if m.IsEnPassant() {
				victimType = types.Pawn
			}
			attacker := t.board.PieceOn(m.From()).TypeOf()
			score = mvvLvaBase + int32(pieceOrderValue(victimType))*16 - int32(pieceOrderValue(attacker))
		case m == k1:
			score = killerScore1
		case m == k2:
			score = killerScore2
		case m == counter && counter != types.MoveNone:
			score = counterScore
		default:
			pc := t.board.PieceOn(m.From())
			score = t.heur.HistoryScore(pc, m.To())
		}
		moves.SetScore(i, score)
	}
}

func pieceOrderValue(pt types.PieceType) int {
	values := [types.PtLength]int{types.Pawn: 1, types.Knight: 3, types.Bishop: 3, types.Rook: 5, types.Queen: 9, types.King: 20}
	return values[pt]
}

// reductionTable[d][n] holds a precomputed late-move-reduction amount for
// searching the n-th quiet move at remaining depth d, following the usual
// log(d)*log(n) shape without taking a log per node.
var reductionTable [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for n := 1; n < 64; n++ {
			r := 0.2 + math.Log(float64(d))*math.Log(float64(n))*0.5
			reductionTable[d][n] = int(r)
		}
	}
}

func lmrReduction(depth, moveIndex int) int {
	d, n := depth, moveIndex
	if d >= 64 {
		d = 63
	}
	if n >= 64 {
		n = 63
	}
	r := reductionTable[d][n]
	if r < 0 {
		r = 0
	}
	if r > depth-1 {
		r = depth - 1
	}
	return r
}
