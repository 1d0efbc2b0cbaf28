package search

import (
	"context"

	"github.com/kestrelchess/caps/pkg/board"
	"github.com/kestrelchess/caps/pkg/eval"
)

// Quiescence extends search past the nominal horizon through capturing and
// promoting lines only, so the static evaluation is never taken in the
// middle of an unresolved exchange. Grounded on the teacher's
// quiescence.go shape (stand-pat alpha raise, explore-then-recurse loop,
// checkmate/draw adjudication on no legal moves) restricted to noisy moves
// and a SEE-based prune in place of the teacher's pluggable Exploration
// predicate. TT probes and stores at depth 0, sharing the table with the
// enclosing CAPS search.
type Quiescence struct {
	Eval eval.Evaluator
	TT   TranspositionTable
}

func (q Quiescence) QuietSearch(ctx context.Context, b *board.Board, alpha, beta eval.Score, quit <-chan struct{}) (uint64, eval.Score) {
	tt := q.TT
	if tt == nil {
		tt = NoTranspositionTable{}
	}
	run := &runQuiescence{eval: q.Eval, tt: tt, b: b, quit: quit}
	score := run.search(ctx, alpha, beta, 0)
	return run.nodes, score
}

type runQuiescence struct {
	eval  eval.Evaluator
	tt    TranspositionTable
	b     *board.Board
	nodes uint64
	quit  <-chan struct{}
}

const quiescenceMaxPly = 32

func (r *runQuiescence) search(ctx context.Context, alpha, beta eval.Score, ply int) eval.Score {
	if isClosed(r.quit) {
		return eval.Draw
	}
	if r.b.Result().Outcome == board.Draw {
		return eval.Draw
	}

	origAlpha := alpha
	inCheck := r.b.IsInCheck()

	hash := r.b.Hash()
	var ttMove board.Move
	if bound, _, score, move, ok := r.tt.Probe(hash); ok {
		ttMove = move
		score = eval.FromTT(score, ply)
		switch bound {
		case ExactBound:
			return score
		case LowerBound:
			if score >= beta {
				return score
			}
		case UpperBound:
			if score <= alpha {
				return score
			}
		}
	}

	r.nodes++

	standPat := r.eval.Evaluate(ctx, r.b)
	if !inCheck {
		if standPat >= beta {
			r.store(hash, LowerBound, standPat, board.NullMove, ply)
			return standPat
		}
		alpha = eval.Max(alpha, standPat)
	}
	if ply >= quiescenceMaxPly {
		return standPat
	}

	moves := r.b.Position().PseudoLegalMoves(r.b.Turn())
	var checks []board.Move
	if !inCheck && ply == 0 {
		checks = checkingQuietMoves(r.b)
	}
	turn := r.b.Turn()
	ordered := OrderMoves(r.b.Position(), turn, moves, ttMove, ply, board.NullMove, board.NullMove, noopHistory)

	hasLegalMove := false
	bound := UpperBound
	best := board.NullMove
	for {
		m, ok := ordered.Next()
		if !ok {
			break
		}
		// In check, every pseudo-legal move must be examined to find an
		// escape; otherwise only captures, queen promotions and (at ply 0)
		// checking quiets can change the static evaluation materially.
		noisy := m.IsCapture() || (m.IsPromotion() && m.Promotion == board.Queen)
		if !inCheck && !noisy && !containsMove(checks, m) {
			continue
		}
		if !inCheck && m.IsCapture() && !r.b.Position().SEEGreaterEqual(turn, m, 0) {
			continue // losing capture: can't improve the position
		}

		if !r.b.PushMove(m) {
			continue
		}
		hasLegalMove = true

		score := -r.search(ctx, -beta, -alpha, ply+1)

		r.b.PopMove()

		if isClosed(r.quit) {
			return eval.Draw
		}

		if score > alpha {
			alpha = score
			bound = ExactBound
			best = m
		}
		if alpha >= beta {
			r.store(hash, LowerBound, alpha, m, ply)
			return alpha
		}
	}

	if inCheck && !hasLegalMove {
		if result := r.b.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return eval.MatedIn(ply)
		}
		return eval.Draw
	}

	if alpha == origAlpha {
		bound = UpperBound
	}
	r.store(hash, bound, alpha, best, ply)

	return alpha
}

// store records a qsearch result at depth 0, unless the search was aborted
// mid-line: an aborted subtree's bound is not a real result and must never
// reach the shared table.
func (r *runQuiescence) store(hash board.ZobristHash, bound Bound, score eval.Score, move board.Move, ply int) {
	if isClosed(r.quit) {
		return
	}
	r.tt.Store(hash, bound, 0, eval.ToTT(score, ply), move)
}

// noopHistory backs qsearch's move ordering, which has no search depth to
// reinforce a history table with; it only ever reads the (always zero)
// scores out of it.
var noopHistory = &History{}

// checkingQuietMoves returns the quiet moves at b's current position that
// give check when played, found by speculative push/pop. Tried only at
// qsearch's ply 0, where a single extra ply of checks catches mating nets a
// capture-only search would otherwise miss entirely.
func checkingQuietMoves(b *board.Board) []board.Move {
	var checks []board.Move
	for _, m := range b.Position().PseudoLegalMoves(b.Turn()) {
		if !m.IsQuiet() {
			continue
		}
		if !b.PushMove(m) {
			continue
		}
		if b.IsInCheck() {
			checks = append(checks, m)
		}
		b.PopMove()
	}
	return checks
}
