package search

import (
	"math"

	"github.com/kestrelchess/caps/pkg/board"
	"github.com/kestrelchess/caps/pkg/eval"
)

// Move-ordering priority bands, highest to lowest: the transposition-table
// move (handled separately via board.First), winning captures (by MVV plus
// capture history), killers, quiet moves (by quiet plus continuation
// history) and finally losing captures -- moves SEE judges as net material
// loss are explored dead last, since they rarely produce a cutoff.
const (
	winningCaptureBand board.MovePriority = 20000
	killerBand         board.MovePriority = 10000
	losingCaptureBand  board.MovePriority = -20000
)

// OrderMoves returns a priority queue over moves for searching at ply, with
// ttMove (if any) always explored first. prev and prev2 are the moves played
// one and two plies earlier, feeding the 1-ply and 2-ply continuation
// history terms.
func OrderMoves(pos *board.Position, turn board.Color, moves []board.Move, ttMove board.Move, ply int, prev, prev2 board.Move, h *History) *board.MoveList {
	priority := func(m board.Move) board.MovePriority {
		switch {
		case m.IsCapture() || m.IsPromotion():
			gain := int32(eval.NominalValueGain(m))
			hist := h.CaptureScore(m) / 64
			if pos.SEEGreaterEqual(turn, m, 0) {
				return clamp16(winningCaptureBand + board.MovePriority(gain+hist))
			}
			return clamp16(losingCaptureBand + board.MovePriority(gain+hist))
		case h.IsKiller(ply, m):
			return killerBand
		default:
			score := h.QuietScore(turn, m) + h.ContinuationScore(prev, prev2, m)
			return clamp16(board.MovePriority(score / 32))
		}
	}
	return board.NewMoveList(moves, board.First(ttMove, priority))
}

func clamp16(p board.MovePriority) board.MovePriority {
	switch {
	case p > math.MaxInt16-1:
		return math.MaxInt16 - 1
	case p < math.MinInt16+1:
		return math.MinInt16 + 1
	default:
		return p
	}
}
