package search

import (
	"context"
	"time"

	"github.com/kresala/warden/pkg/board"
	"github.com/kresala/warden/pkg/eval"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"go.uber.org/atomic"
)

const (
	maxDepth          = 64
	killerMovesStored = 3

	// aspirationWindow is the half-width of the first window at each depth.
	aspirationWindow eval.Score = 40

	// timeSafetyMargin is withheld from an explicit movetime budget.
	timeSafetyMargin = 100 * time.Millisecond

	// infiniteTime is the time budget when no control applies.
	infiniteTime = time.Duration(1<<62 - 1)
)

// Options hold dynamic search options for a single go invocation.
type Options struct {
	// White/Black clocks and increments. Zero means unknown.
	WhiteTime, BlackTime time.Duration
	WhiteInc, BlackInc   time.Duration
	// MoveTime, if set, fixes the time budget for this move.
	MoveTime lang.Optional[time.Duration]
	// Depth, if set, limits the search depth.
	Depth lang.Optional[int]
	// Infinite searches until stopped.
	Infinite bool
}

// PV reports a completed iteration: principal variation plus statistics. The
// score is from the side-to-move's point of view.
type PV struct {
	Depth, Seldepth int
	Score           eval.Score
	Nodes           uint64
	NPS             uint64
	Time            time.Duration
	Hashfull        int
	TBHits          uint64
	Moves           []board.Move
}

// Searcher implements iterative-deepening principal variation search over a
// single board: negamax with zero-window probes, quiescence, transposition
// table, killer/history ordering and forward pruning. Single-threaded; the
// only external signal is the stop flag, polled cooperatively.
type Searcher struct {
	b  *board.Board
	tt *TranspositionTable

	// Report, if set, is invoked after each completed iteration.
	Report func(PV)

	depth, seldepth int
	lastEval        eval.Score
	bestMove        board.Move
	killers         [maxDepth][killerMovesStored]board.Move
	history         historyTable

	nodes  uint64
	tbhits uint64

	clockQueries int
	start        time.Time
	target       time.Duration
	timeHit      bool
	stop         *atomic.Bool
}

// NewSearcher returns a searcher owning the given board and table. The stop
// flag may be shared with the protocol driver; nil disables external stops.
func NewSearcher(b *board.Board, tt *TranspositionTable, stop *atomic.Bool) *Searcher {
	if stop == nil {
		stop = atomic.NewBool(false)
	}
	return &Searcher{b: b, tt: tt, stop: stop}
}

// Go searches the current position within the given limits and returns the
// best move found. The searcher unwinds on time-out and falls back to the
// last completed iteration.
func (s *Searcher) Go(ctx context.Context, opts Options) board.Move {
	s.start = time.Now()
	s.target = s.targetTime(ctx, opts)
	s.timeHit = false
	s.clockQueries = 0
	s.bestMove = board.NoMove

	targetDepth := maxDepth - 1
	if d, ok := opts.Depth.V(); ok && d < targetDepth {
		targetDepth = d
	}

	score := s.lastEval
	var absScore eval.Score
	best := board.NoMove
	var pv []board.Move

	consecutive := 0
	lastScore := score
	lastMove := board.NoMove

	for depth := 1; depth <= targetDepth; depth++ {
		iterStart := time.Now()
		prev := score

		s.depth = depth
		s.seldepth = 0

		// Aspiration: assume the score stays near the previous iteration and
		// re-search with a full window when it escapes.
		score = s.negamax(ctx, 0, depth, prev-aspirationWindow, prev+aspirationWindow, true)
		if s.timeHit {
			break
		}
		if (prev - score).Abs() >= aspirationWindow {
			score = s.negamax(ctx, 0, depth, eval.MinScore, eval.MaxScore, true)
			if s.timeHit {
				break
			}
		}

		best = s.bestMove
		absScore = eval.Unit(s.b.Turn()) * score
		pv = s.pv(depth)
		s.report(depth, score, pv)

		taken := time.Since(s.start)
		iterTaken := time.Since(iterStart)
		if taken >= s.target || iterTaken > s.target/8 {
			break
		}

		// Stop early once a mate score and the move have been stable for a
		// while; deeper search cannot improve an exact mate.
		if best == lastMove && absScore == lastScore {
			consecutive++
		} else {
			consecutive = 0
		}
		if consecutive > 8 && absScore.Abs() >= eval.MateValue-maxDepth {
			break
		}

		lastMove = best
		lastScore = absScore
	}

	if best == board.NoMove {
		logw.Warningf(ctx, "No best move found, falling back to first legal move")
		if moves := board.GenerateAll(s.b); len(moves) > 0 {
			best = moves[0]
		}
	}

	if s.timeHit && s.depth > 1 {
		s.report(s.depth-1, score, pv)
	}

	s.lastEval = -score
	return best
}

// targetTime computes the budget for this move. An explicit movetime wins;
// otherwise the remaining clock is divided by a schedule that spends little
// in the opening, plus a share of any time advantage.
func (s *Searcher) targetTime(ctx context.Context, opts Options) time.Duration {
	if mt, ok := opts.MoveTime.V(); ok {
		if mt > timeSafetyMargin {
			return mt - timeSafetyMargin
		}
		return mt
	}
	if opts.Infinite {
		return infiniteTime
	}

	side := s.b.Turn()
	our, opponent := opts.WhiteTime, opts.BlackTime
	if side == board.Black {
		our, opponent = opponent, our
	}
	if our == 0 {
		return infiniteTime
	}

	advantage := our - opponent
	modifier := advantage / 4
	if advantage < 0 {
		modifier = advantage / 8
	}
	if modifier < 0 {
		modifier = 0
	}

	var divider time.Duration
	switch moves := s.b.FullMoves(); {
	case moves < 2:
		divider = 60
	case moves < 4:
		divider = 25
	case moves < 6:
		divider = 12
	default:
		divider = 8
	}

	target := our/divider + modifier
	logw.Debugf(ctx, "Time budget: our=%v opponent=%v divider=%v target=%v", our, opponent, divider, target)
	return target
}

// outOfTime polls the stop flag always and the wall clock every ~1000 calls.
// Once hit, the flag is sticky for the rest of the search.
func (s *Searcher) outOfTime() bool {
	if s.timeHit {
		return true
	}
	if s.stop.Load() {
		s.timeHit = true
		return true
	}

	s.clockQueries++
	if s.clockQueries > 1000 {
		s.clockQueries = 0
		if time.Since(s.start) >= s.target {
			s.timeHit = true
			return true
		}
	}
	return false
}

// breakConditions checks the early exits shared by all search routines:
// time-out, draws by rule, and a usable transposition hit. Never applies at
// the root, which must always produce a move.
func (s *Searcher) breakConditions(depth int, alpha, beta eval.Score, root bool) (eval.Score, bool) {
	if root {
		return 0, false
	}
	if s.outOfTime() {
		return 0, true
	}
	if s.b.IsDrawByRule() {
		return 0, true
	}
	if score, ok := s.tt.Get(s.b.Hash(), depth, alpha, beta); ok {
		s.tbhits++
		return score, true
	}
	return 0, false
}

// getMoves generates and orders moves for the current position.
func (s *Searcher) getMoves(depth int, captures bool) *MoveList {
	var moves []board.Move
	if captures {
		moves = board.GenerateCaptures(s.b)
	} else {
		moves = board.GenerateAll(s.b)
	}
	hashMove, hasHashMove := s.tt.GetMove(s.b.Hash())
	weights := order(s.b, moves, hashMove, hasHashMove, s.killersAt(depth), &s.history)
	return NewMoveList(moves, weights)
}

func (s *Searcher) killersAt(depth int) []board.Move {
	if depth <= 0 || depth >= maxDepth {
		depth = maxDepth - 1
	}
	return s.killers[depth][:]
}

// storeKiller records a quiet move that caused a beta cutoff: a history bonus
// plus a slot at the head of the killer list for this depth. Called with the
// cutoff position on the board (after unmake).
func (s *Searcher) storeKiller(depth int, m board.Move) {
	if s.b.AnyPiece().IsSet(m.To()) {
		return // capture: ordered by MVV-LVA already
	}

	s.history.add(s.b.Turn(), m, depth)

	killers := s.killersAt(depth)
	for _, k := range killers {
		if k == m {
			return
		}
	}
	copy(killers[1:], killers[:len(killers)-1])
	killers[0] = m
}

// lateMoveReduction returns the depth reduction for a move late in the order:
// far from the root and past the first few moves, reduce by one ply, or two
// deep into the list. Killers and in-check positions are not reduced.
func (s *Searcher) lateMoveReduction(depth int, m board.Move, counter int) int {
	fromRoot := s.depth - depth
	if fromRoot > 3 && counter > 4 && !s.b.InCheck() {
		for _, k := range s.killersAt(depth) {
			if k == m {
				return 0
			}
		}
		if counter < 12 {
			return 1
		}
		return 2
	}
	return 0
}

// negamax is the full-window principal variation search: the first move is
// searched with the full window, the rest probed with a zero window and
// re-searched only on improvement.
func (s *Searcher) negamax(ctx context.Context, ply, depth int, alpha, beta eval.Score, root bool) eval.Score {
	if depth <= 0 {
		return s.qsearch(ctx, ply, 0, alpha, beta)
	}

	if score, ok := s.breakConditions(depth, alpha, beta, root); ok {
		return score
	}

	// Mate-distance pruning: no line from here can beat a shorter mate that
	// is already known.
	alpha = eval.Max(alpha, eval.MatedScore(ply))
	beta = eval.Min(beta, -eval.MatedScore(ply))
	if alpha >= beta {
		return alpha
	}

	s.nodes++
	moves := s.getMoves(depth, false)

	if moves.IsEmpty() {
		if s.b.InCheck() {
			return eval.MatedScore(ply)
		}
		return 0 // stalemate
	}

	if s.b.InCheck() {
		depth++ // check extension
	}

	best := board.NoMove
	foundExact := false
	counter := 0

	for {
		m, ok := moves.Next()
		if !ok {
			break
		}

		if err := s.b.MakeMove(m); err != nil {
			logw.Errorf(ctx, "Generated move %v not makeable on %v: %v", m, s.b, err)
			s.timeHit = true
			return 0
		}

		var score eval.Score
		if counter == 0 {
			score = -s.negamax(ctx, ply+1, depth-1, -beta, -alpha, false)
		} else {
			next := depth - 1 - s.lateMoveReduction(depth, m, counter)
			score = -s.zeroWindow(ctx, ply+1, next, -alpha, false)
			if score > alpha {
				score = -s.negamax(ctx, ply+1, depth-1, -beta, -alpha, false)
			}
		}

		_ = s.b.UnmakeMove()

		if s.timeHit {
			return 0
		}

		if score >= beta {
			s.tt.Set(s.b.Hash(), depth, LowerBound, beta, m)
			s.storeKiller(depth, m)
			return beta
		}

		if score > alpha {
			best = m
			foundExact = true
			alpha = score

			if root {
				s.bestMove = m
			}
		}

		counter++
	}

	bound := UpperBound
	if foundExact {
		bound = ExactBound
	}
	s.tt.Set(s.b.Hash(), depth, bound, alpha, best)
	if s.depth-depth > s.seldepth {
		s.seldepth = s.depth - depth
	}

	return alpha
}

// zeroWindow searches [beta-1, beta] to prove a move worse than the current
// best as cheaply as possible, with the forward-pruning battery: razoring,
// reverse futility, null move, internal iterative deepening and late move
// reductions.
func (s *Searcher) zeroWindow(ctx context.Context, ply, depth int, beta eval.Score, lastNull bool) eval.Score {
	if depth <= 0 {
		return s.qsearch(ctx, ply, 0, beta-1, beta)
	}

	if score, ok := s.breakConditions(depth, beta-1, beta, false); ok {
		return score
	}

	// Mate-distance bounds derived from the incoming beta and the ply.
	alpha := eval.Max(beta-1, eval.MatedScore(ply))
	beta = eval.Min(beta, -eval.MatedScore(ply))
	if alpha >= beta {
		return alpha
	}

	side := s.b.Turn()
	currentEval := eval.Unit(side) * eval.Evaluate(s.b)

	// Razoring: when even a large margin cannot reach the window, verify with
	// quiescence and trust its failure. Computed in wide ints: the margin
	// exceeds int16 past depth 12.
	if !s.b.InCheck() && int(currentEval)+500+200*depth*depth < int(beta-1) {
		if q := s.qsearch(ctx, ply, 0, beta-1, beta); q < beta-1 {
			return q
		}
	}

	// Reverse futility pruning: close to the horizon, a static eval far above
	// beta is assumed to hold.
	if !lastNull && !s.b.InCheck() && depth < 3 {
		margin := futilityMargin(depth)
		if currentEval-margin > beta {
			return beta
		}
	}

	// Null-move pruning: if passing still fails high, the position is good
	// enough to cut. Requires material, no check, and no preceding null.
	if !lastNull && !s.b.InCheck() && s.hasNonPawnMaterial(side) {
		reduction := 1 + depth*2/3

		s.b.MakeNull()
		value := -s.zeroWindow(ctx, ply+2, depth-reduction, 1-beta, true)
		s.b.UnmakeNull()

		if value >= beta {
			return beta
		}
	}

	s.nodes++
	moves := s.getMoves(depth, false)

	if moves.IsEmpty() {
		if s.b.InCheck() {
			return eval.MatedScore(ply)
		}
		return 0
	}

	// Internal iterative deepening: with no hash move to order by, a shallower
	// search is a better use of the node budget.
	if depth > 4 {
		if _, ok := s.tt.GetMove(s.b.Hash()); !ok {
			depth -= 2
		}
	}
	if depth <= 0 {
		return s.qsearch(ctx, ply, 0, beta-1, beta)
	}

	if s.b.InCheck() {
		depth++ // check extension
	}

	counter := 0
	for {
		m, ok := moves.Next()
		if !ok {
			break
		}

		next := depth - 1 - s.lateMoveReduction(depth, m, counter)

		if err := s.b.MakeMove(m); err != nil {
			logw.Errorf(ctx, "Generated move %v not makeable on %v: %v", m, s.b, err)
			s.timeHit = true
			return 0
		}
		score := -s.zeroWindow(ctx, ply+1, next, 1-beta, false)
		_ = s.b.UnmakeMove()

		if s.timeHit {
			return 0
		}

		if score >= beta {
			s.tt.Set(s.b.Hash(), depth, LowerBound, beta, m)
			s.storeKiller(depth, m)
			return beta
		}

		counter++
	}

	return beta - 1
}

// qsearch extends the tree by captures only until the position is quiet, to
// avoid evaluating in the middle of an exchange.
func (s *Searcher) qsearch(ctx context.Context, ply, depth int, alpha, beta eval.Score) eval.Score {
	if score, ok := s.breakConditions(depth, alpha, beta, false); ok {
		return score
	}

	alpha = eval.Max(alpha, eval.MatedScore(ply))
	beta = eval.Min(beta, -eval.MatedScore(ply))
	if alpha >= beta {
		return alpha
	}

	s.nodes++

	if s.b.InCheckmate() {
		return eval.MatedScore(ply)
	}

	side := s.b.Turn()
	score := eval.Unit(side) * eval.Evaluate(s.b)

	// Delta pruning: even winning a queen cannot bring this back to alpha.
	if score+eval.BaseScores[board.Queen] < alpha && !s.b.InCheck() {
		return alpha
	}

	if score >= beta {
		return beta // standing pat
	}
	if score > alpha {
		alpha = score
	}

	moves := s.getMoves(depth, true)
	best := board.NoMove
	foundExact := false

	for {
		m, ok := moves.Next()
		if !ok {
			break
		}

		if err := s.b.MakeMove(m); err != nil {
			logw.Errorf(ctx, "Generated move %v not makeable on %v: %v", m, s.b, err)
			s.timeHit = true
			return 0
		}
		sc := -s.qsearch(ctx, ply+1, depth-1, -beta, -alpha)
		_ = s.b.UnmakeMove()

		if s.timeHit {
			return 0
		}

		if sc >= beta {
			s.tt.Set(s.b.Hash(), depth, LowerBound, beta, m)
			return beta
		}

		if sc > alpha {
			alpha = sc
			best = m
			foundExact = true
		}
	}

	if best != board.NoMove {
		bound := UpperBound
		if foundExact {
			bound = ExactBound
		}
		s.tt.Set(s.b.Hash(), depth, bound, alpha, best)
		if s.depth-depth > s.seldepth {
			s.seldepth = s.depth - depth
		}
	}

	return alpha
}

func (s *Searcher) hasNonPawnMaterial(c board.Color) bool {
	return s.b.Pieces(c, board.Knight)|s.b.Pieces(c, board.Bishop)|s.b.Pieces(c, board.Rook)|s.b.Pieces(c, board.Queen) != 0
}

// pv reconstructs the principal variation by walking hash moves. Each stored
// move is validated against the legal moves first: an index clash may hand
// back a move from a different position, which is skipped.
func (s *Searcher) pv(limit int) []board.Move {
	if limit <= 0 {
		return nil
	}

	m, ok := s.tt.GetMove(s.b.Hash())
	if !ok {
		return nil
	}

	legal := false
	for _, candidate := range board.GenerateAll(s.b) {
		if candidate == m {
			legal = true
			break
		}
	}
	if !legal {
		return nil
	}

	if err := s.b.MakeMove(m); err != nil {
		return nil
	}
	rest := s.pv(limit - 1)
	_ = s.b.UnmakeMove()

	return append([]board.Move{m}, rest...)
}

func (s *Searcher) report(depth int, score eval.Score, pv []board.Move) {
	if s.Report == nil {
		return
	}

	taken := time.Since(s.start)
	seldepth := s.seldepth
	if seldepth < depth {
		seldepth = depth
	}
	nps := uint64(0)
	if taken > 0 {
		nps = uint64(time.Second) * s.nodes / uint64(taken)
	}

	s.Report(PV{
		Depth:    depth,
		Seldepth: seldepth,
		Score:    score,
		Nodes:    s.nodes,
		NPS:      nps,
		Time:     taken,
		Hashfull: s.tt.Used(),
		TBHits:   s.tbhits,
		Moves:    pv,
	})
}

// futilityMargin is the reverse-futility margin by depth: a bishop one ply
// out, a rook two plies out.
func futilityMargin(depth int) eval.Score {
	switch depth {
	case 1:
		return eval.BaseScores[board.Bishop]
	case 2:
		return eval.BaseScores[board.Rook]
	default:
		return 0
	}
}
