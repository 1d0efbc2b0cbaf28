// Package search implements CAPS, a principal-variation alpha-beta search
// over pkg/board positions, scored by pkg/eval. It provides the
// transposition table, move-ordering history and the recursive search
// itself; pkg/search/searchctl wraps it with iterative deepening and time
// management.
package search

import (
	"context"
	"errors"

	"github.com/kestrelchess/caps/pkg/board"
	"github.com/kestrelchess/caps/pkg/eval"
)

// ErrHalted indicates the search was stopped before completing the
// requested depth, via the quit channel.
var ErrHalted = errors.New("search halted")

// Search runs a fixed-depth search from the position currently loaded into
// b, within the given alpha-beta window, returning the node count, score
// and principal variation. Implementations must be safe to run
// concurrently from independent Boards sharing one TranspositionTable
// (lazy-SMP). exclude removes root moves from consideration entirely,
// used by MultiPV to force subsequent lines away from moves already
// reported at the current depth; nil considers every root move.
type Search interface {
	Search(ctx context.Context, b *board.Board, tt TranspositionTable, h *History, depth int, alpha, beta eval.Score, exclude []board.Move, quit <-chan struct{}) (uint64, eval.Score, []board.Move, error)
}

// Limits bound a recursive CAPS search beyond its explicit depth parameter:
// heuristics that would otherwise recurse past the root's intended horizon
// (check extensions, in particular) are capped: no check extension is granted
// at or beyond ply maxCheckExtensions.
const (
	maxCheckExtensions = 16
	nullMoveMinDepth   = 3
	nullMoveReduction  = 3
	iirMinDepth        = 4
	futilityMaxDepth   = 8
	lmpMaxDepth        = 8
	lmrMinDepth        = 3
	lmrMinMoveIndex    = 4
	rfpMaxDepth        = 8
)

// futilityMargin and rfpMargin scale linearly with depth: the shallower the
// remaining search, the less material swing is needed to justify pruning.
// rfpMargin is tightened when the static eval isn't improving over two plies
// ago, since a sagging position is less trustworthy at face value.
func futilityMargin(depth int) eval.Score { return eval.Score(100 + 80*depth) }

func rfpMargin(depth int, improving bool) eval.Score {
	margin := eval.Score(90 * depth)
	if !improving {
		margin -= 60
	}
	return margin
}

// CAPS implements principal variation search with the standard modern
// pruning and reduction suite: reverse futility pruning, null-move
// pruning, internal iterative reduction, futility pruning, late move
// pruning, SEE-based capture pruning, check extensions, late move
// reductions with a zero-window-then-full-window re-search, and
// mate-distance pruning. Grounded on the teacher's alphabeta.go/pvs.go
// shape (recursive negamax, TT probe/store around the recursion, move list
// ordered by priority, alpha raised on improvement, beta cutoff breaks the
// loop) generalized to the full heuristic suite.
type CAPS struct {
	Eval       eval.Evaluator
	Quiescence Quiescence
}

func (c CAPS) Search(ctx context.Context, b *board.Board, tt TranspositionTable, h *History, depth int, alpha, beta eval.Score, exclude []board.Move, quit <-chan struct{}) (uint64, eval.Score, []board.Move, error) {
	qs := c.Quiescence
	qs.TT = tt
	run := &runCAPS{eval: c.Eval, qs: qs, tt: tt, h: h, b: b, exclude: exclude, quit: quit}
	score, pv := run.search(ctx, depth, 0, alpha, beta, board.NullMove, board.NullMove)
	if isClosed(quit) {
		return run.nodes, 0, nil, ErrHalted
	}
	return run.nodes, score, pv, nil
}

type runCAPS struct {
	eval    eval.Evaluator
	qs      Quiescence
	tt      TranspositionTable
	h       *History
	b       *board.Board
	exclude []board.Move
	nodes   uint64
	quit    <-chan struct{}

	// staticEval records each ply's static evaluation, read back two plies
	// later to derive the "improving" signal: a side whose position has
	// gotten no better since its own last move is pruned more aggressively.
	staticEval [maxPly]eval.Score
	haveStatic [maxPly]bool
}

// recordStatic stashes the static eval at ply for the improving lookup two
// plies later, if ply is within the tracked range.
func (r *runCAPS) recordStatic(ply int, score eval.Score) {
	if ply < maxPly {
		r.staticEval[ply] = score
		r.haveStatic[ply] = true
	}
}

// isImproving reports whether the static eval at ply beats the one recorded
// two plies earlier for the same side to move. Absent a prior reading, the
// position is assumed to be improving so pruning stays at its normal
// strength rather than its most conservative.
func (r *runCAPS) isImproving(ply int, staticEval eval.Score) bool {
	if ply < 2 || ply-2 >= maxPly || !r.haveStatic[ply-2] {
		return true
	}
	return staticEval > r.staticEval[ply-2]
}

// search returns the score relative to the side to move at b's current
// position, i.e. negamax convention: search(...) == -search_opponent(...).
// prev and prev2 are the moves played one and two plies above this node,
// feeding move-ordering's continuation history.
func (r *runCAPS) search(ctx context.Context, depth, ply int, alpha, beta eval.Score, prev, prev2 board.Move) (eval.Score, []board.Move) {
	if isClosed(r.quit) {
		return 0, nil
	}
	if result := r.b.Result(); result.Outcome == board.Draw {
		return eval.Draw, nil
	}

	pvNode := beta-alpha > 1
	inCheck := r.b.IsInCheck()

	// Mate-distance pruning: a mate found closer than ply can't improve on
	// a shorter one already in the window, and a position can't be worse
	// than being mated at this ply.
	alpha = eval.Max(alpha, eval.MatedIn(ply))
	beta = eval.Min(beta, eval.MateIn(ply+1))
	if alpha >= beta {
		return alpha, nil
	}

	hash := r.b.Hash()
	var ttMove board.Move
	if bound, d, score, move, ok := r.tt.Probe(hash); ok {
		ttMove = move
		if d >= depth && !pvNode {
			score = eval.FromTT(score, ply)
			switch bound {
			case ExactBound:
				return score, []board.Move{move}
			case LowerBound:
				if score >= beta {
					return score, []board.Move{move}
				}
			case UpperBound:
				if score <= alpha {
					return score, []board.Move{move}
				}
			}
		}
	}

	if depth <= 0 {
		nodes, score := r.qs.QuietSearch(ctx, r.b, alpha, beta, r.quit)
		r.nodes += nodes
		return score, nil
	}

	r.nodes++

	staticEval := r.eval.Evaluate(ctx, r.b)
	r.recordStatic(ply, staticEval)
	improving := r.isImproving(ply, staticEval)

	// Reverse futility pruning: if the static eval already clears beta by a
	// depth-scaled margin and we are not in check, assume a full search
	// would too and cut immediately. The margin tightens when the position
	// isn't improving, since the static eval is then less trustworthy.
	if !pvNode && !inCheck && depth <= rfpMaxDepth && staticEval-rfpMargin(depth, improving) >= beta {
		return staticEval, nil
	}

	// Null-move pruning: let the opponent move twice in a row; if even then
	// they can't catch up to beta, the position is too good to need a real
	// search here. Disabled in check, in the endgame (zugzwang risk), and
	// near the root's own reduction.
	if !pvNode && !inCheck && depth >= nullMoveMinDepth && staticEval >= beta &&
		r.b.Position().HasNonPawnMaterial(r.b.Turn()) {
		r.b.PushNullMove()
		score, _ := r.search(ctx, depth-1-nullMoveReduction, ply+1, -beta, -beta+1, board.NullMove, prev)
		r.b.PopNullMove()
		if isClosed(r.quit) {
			return 0, nil
		}
		score = -score
		if score >= beta && !eval.IsMateScore(score) {
			return score, nil
		}
	}

	// Internal iterative reduction: without a TT move to search first, a
	// full-depth search tends to spend its effort on the wrong line, so
	// shave a ply off and let the result seed ordering on the retry.
	if !pvNode && ttMove.IsNull() && depth >= iirMinDepth {
		depth--
	}

	moves := r.b.LegalMoves()
	ordered := OrderMoves(r.b.Position(), r.b.Turn(), moves, ttMove, ply, prev, prev2, r.h)

	hasLegalMove := false
	bound := UpperBound
	var pv []board.Move
	var tried []board.Move
	moveIndex := 0

	for {
		m, ok := ordered.Next()
		if !ok {
			break
		}
		if ply == 0 && containsMove(r.exclude, m) {
			hasLegalMove = true
			continue
		}
		losingCapture := m.IsCapture() && !r.b.Position().SEEGreaterEqual(r.b.Turn(), m, -100*depth)
		if !r.b.PushMove(m) {
			continue
		}
		hasLegalMove = true
		moveIndex++
		givesCheck := r.b.IsInCheck()

		ext := 0
		if givesCheck && ply < maxCheckExtensions {
			ext = 1
		}

		// Late move pruning: in a quiet position, far down the move list,
		// skip remaining quiet moves outright near the search horizon. The
		// move-count threshold shrinks when the position isn't improving.
		lmpThreshold := lmpMaxDepth + depth*depth
		if !improving {
			lmpThreshold /= 2
		}
		if !pvNode && !inCheck && !givesCheck && m.IsQuiet() && depth <= lmpMaxDepth &&
			moveIndex > lmpThreshold {
			r.b.PopMove()
			hasLegalMove = true
			continue
		}

		// Futility pruning: a quiet move this far from the horizon that
		// can't plausibly close the gap to alpha is not worth searching.
		if !pvNode && !inCheck && !givesCheck && m.IsQuiet() && ext == 0 && depth <= futilityMaxDepth &&
			staticEval+futilityMargin(depth) <= alpha {
			r.b.PopMove()
			hasLegalMove = true
			continue
		}

		// SEE pruning: a losing capture this shallow is assumed not to
		// recover its material loss before the horizon.
		if !pvNode && !inCheck && depth <= futilityMaxDepth && losingCapture {
			r.b.PopMove()
			hasLegalMove = true
			continue
		}

		childDepth := depth - 1 + ext

		reduction := 0
		if depth >= lmrMinDepth && moveIndex > lmrMinMoveIndex && ext == 0 && !inCheck && !givesCheck && m.IsQuiet() {
			reduction = lmrReduction(depth, moveIndex, improving)
			if pvNode {
				reduction--
			}
			if reduction < 0 {
				reduction = 0
			}
			if reduction > childDepth-1 {
				reduction = childDepth - 1
			}
		}

		var score eval.Score
		var rem []board.Move
		if moveIndex == 1 {
			score, rem = r.search(ctx, childDepth, ply+1, -beta, -alpha, m, prev)
			score = -score
		} else {
			score, rem = r.search(ctx, childDepth-reduction, ply+1, -alpha-1, -alpha, m, prev)
			score = -score
			if score > alpha && !isClosed(r.quit) && (reduction > 0 || pvNode) {
				score, rem = r.search(ctx, childDepth, ply+1, -beta, -alpha, m, prev)
				score = -score
			}
		}

		r.b.PopMove()

		if isClosed(r.quit) {
			return 0, nil
		}

		tried = append(tried, m)

		if score > alpha {
			alpha = score
			bound = ExactBound
			pv = append([]board.Move{m}, rem...)
		}
		if alpha >= beta {
			bound = LowerBound
			if m.IsQuiet() {
				r.h.AddKiller(ply, m)
				r.h.UpdateQuiet(r.b.Turn(), m, tried, depth)
				r.h.UpdateContinuation(prev, prev2, m, tried, depth)
			} else {
				r.h.UpdateCapture(m, tried, depth)
			}
			break
		}
	}

	if !hasLegalMove {
		if result := r.b.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return eval.MatedIn(ply), nil
		}
		return eval.Draw, nil
	}

	best := board.NullMove
	if len(pv) > 0 {
		best = pv[0]
	}
	r.tt.Store(hash, bound, depth, eval.ToTT(alpha, ply), best)

	return alpha, pv
}

// lmrReduction grows logarithmically with both depth and move index, the
// standard shape: deep, late moves get reduced the most. A non-improving
// position is reduced one ply further, since its quiet moves are less
// likely to need the full remaining depth to be refuted.
func lmrReduction(depth, moveIndex int, improving bool) int {
	r := 0
	for d, i := depth, moveIndex; d > 1 && i > 1; {
		r++
		d /= 2
		i /= 2
	}
	if !improving {
		r++
	}
	if r > depth-1 {
		r = depth - 1
	}
	return r
}

func containsMove(moves []board.Move, m board.Move) bool {
	for _, e := range moves {
		if e.Equals(m) {
			return true
		}
	}
	return false
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
