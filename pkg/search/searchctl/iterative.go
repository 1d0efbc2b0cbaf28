package searchctl

import (
	"context"
	"sync"
	"time"

	"github.com/kestrelchess/caps/pkg/board"
	"github.com/kestrelchess/caps/pkg/eval"
	"github.com/kestrelchess/caps/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// Iterative is a search harness driving CAPS deeper one ply at a time,
// reporting a PV after each completed iteration, with aspiration windows
// narrowed around the previous iteration's score once it is established
// enough to trust. It implements Launcher: each launch builds a fresh CAPS
// root parameterized by the caller's noise evaluator, so independent
// lazy-SMP workers searching the same position can be told apart.
type Iterative struct{}

const (
	aspirationMinDepth = 5
	aspirationWindow   = eval.Score(25)
)

func (i *Iterative) Launch(ctx context.Context, b *board.Board, tt search.TranspositionTable, noise eval.Random, opt Options) (Handle, <-chan search.PV) {
	root := search.CAPS{Eval: noise, Quiescence: search.Quiescence{Eval: noise}}

	out := make(chan search.PV, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
	}
	go h.process(ctx, root, &search.History{}, b, tt, opt, out)

	return h, out
}

var _ Launcher = (*Iterative)(nil)

type handle struct {
	init, quit iox.AsyncCloser

	pv search.PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, root search.Search, history *search.History, b *board.Board, tt search.TranspositionTable, opt Options, out chan search.PV) {
	defer h.init.Close()
	defer close(out)

	if history == nil {
		history = &search.History{}
	}

	lines := 1
	if v, ok := opt.MultiPV.V(); ok && v > 0 {
		lines = int(v)
	}

	// searchmoves restricts the root to a subset; CAPS only knows how to
	// exclude moves, so the restriction is turned into its complement once,
	// since the legal root move set is stable across iterations.
	var baseExclude []board.Move
	if len(opt.SearchMoves) > 0 {
		for _, m := range b.LegalMoves() {
			if !containsMove(opt.SearchMoves, m) {
				baseExclude = append(baseExclude, m)
			}
		}
	}

	soft, hard, useSoft := EnforceTimeControl(ctx, h, opt.TimeControl, b.Turn())

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	prevScore := make([]eval.Score, lines)
	var totalNodes uint64
	var prevBest board.Move
	var prevBestScore eval.Score
	depth := 1
	searchStart := time.Now()
	for !h.quit.IsClosed() {
		start := time.Now()

		var found []board.Move
		var lastScore eval.Score
		for line := 0; line < lines; line++ {
			exclude := append(append([]board.Move{}, baseExclude...), found...)

			alpha, beta := eval.NegInf, eval.Inf
			if depth >= aspirationMinDepth {
				alpha = eval.Max(eval.NegInf, prevScore[line]-aspirationWindow)
				beta = eval.Min(eval.Inf, prevScore[line]+aspirationWindow)
			}

			var nodes uint64
			var score eval.Score
			var moves []board.Move
			var err error
			for {
				nodes, score, moves, err = root.Search(wctx, b, tt, history, depth, alpha, beta, exclude, h.quit.Closed())
				if err != nil || !(score <= alpha || score >= beta) {
					break
				}
				// Aspiration window missed: widen and re-search at the same depth.
				if score <= alpha {
					alpha = eval.Max(eval.NegInf, alpha-2*aspirationWindow)
				} else {
					beta = eval.Min(eval.Inf, beta+2*aspirationWindow)
				}
			}
			if err != nil {
				if err == search.ErrHalted {
					return // Halt was called.
				}
				logw.Errorf(ctx, "Search failed on %v at depth=%v: %v", b, depth, err)
				return
			}
			prevScore[line] = score
			lastScore = score
			totalNodes += nodes

			if len(moves) == 0 {
				break // fewer legal lines than requested multipv count
			}
			found = append(found, moves[0])

			pv := search.PV{
				Depth:   depth,
				MultiPV: line + 1,
				Nodes:   nodes,
				Score:   score,
				Moves:   moves,
				Time:    time.Since(start),
			}
			if tt != nil {
				pv.Hash = tt.Used()
			}

			logw.Debugf(ctx, "Searched %v: %v", b.Position(), pv)

			h.mu.Lock()
			h.pv = pv
			h.mu.Unlock()

			select {
			case <-out:
			default:
			}
			out <- pv
		}

		h.init.Close()

		// Soft deadline adjustment: an unstable root (best move changed, or
		// its score dropped) deserves more time before committing.
		if useSoft && len(found) > 0 {
			best := found[0]
			if depth > 1 {
				if !best.Equals(prevBest) {
					if extended := soft * 3 / 2; extended <= hard {
						soft = extended
					} else {
						soft = hard
					}
				} else if prevBestScore-prevScore[0] > eval.Score(50) {
					if extended := soft * 13 / 10; extended <= hard {
						soft = extended
					} else {
						soft = hard
					}
				}
			}
			prevBest = best
			prevBestScore = prevScore[0]
		}

		if limit, ok := opt.DepthLimit.V(); ok && uint(depth) == limit {
			return // halt: reached max depth
		}
		if limit, ok := opt.NodeLimit.V(); ok && totalNodes >= limit {
			return // halt: reached node limit
		}
		if limit, ok := opt.MateLimit.V(); ok && eval.IsMateScore(lastScore) {
			if movesToMate := (eval.MateDistance(lastScore) + 1) / 2; movesToMate <= limit {
				return // halt: found mate within the requested move count
			}
		}
		if eval.IsMateScore(lastScore) && eval.MateDistance(lastScore) <= depth {
			return // halt: forced mate found within full width search. Exact result.
		}
		if useSoft && soft < time.Since(searchStart) {
			return // halt: exceeded soft time limit. Do not start new search.
		}
		depth++
	}
}

func containsMove(moves []board.Move, m board.Move) bool {
	for _, e := range moves {
		if e.Equals(m) {
			return true
		}
	}
	return false
}

func (h *handle) Halt() search.PV {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pv
}
