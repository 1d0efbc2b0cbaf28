package search

import "github.com/kestrelchess/caps/pkg/board"

// historyMax bounds each table entry, and is also the cap used by the
// gravity formula below to keep any single entry from saturating the
// signal after a long search.
const historyMax = 1 << 14

// History accumulates move-ordering statistics across a search: quiet-move
// history (indexed by piece and destination square, following the
// butterfly-board convention), continuation history for both the 1-ply and
// 2-ply predecessor (each indexed by that predecessor's piece/destination
// paired with this move's), and capture history (indexed by the capturing
// piece, destination square and captured piece). Not safe for concurrent use
// by multiple searchers; each lazy-SMP worker owns its own History.
type History struct {
	quiet         [board.NumColors][board.NumPieces][board.NumSquares]int32
	continuation1 [board.NumPieces][board.NumSquares][board.NumPieces][board.NumSquares]int32
	continuation2 [board.NumPieces][board.NumSquares][board.NumPieces][board.NumSquares]int32
	capture       [board.NumPieces][board.NumSquares][board.NumPieces]int32
	killers       [maxPly][2]board.Move
}

// maxPly bounds the killer-move table; deeper plies simply don't get
// killers, which only costs move-ordering quality, never correctness.
const maxPly = 128

// bonus implements the common "history gravity" update: new information
// moves the entry towards +/-historyMax, by a step of delta scaled down by
// how close the entry already is to that bound, so repeated updates of the
// same sign settle at historyMax instead of growing without limit.
func bonus(entry *int32, delta int32) {
	*entry += delta - *entry*abs32(delta)/historyMax
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// UpdateQuiet rewards the quiet move that caused a beta cutoff and
// penalizes the quiet moves tried before it at the same node, following the
// standard history-heuristic reinforcement pattern.
func (h *History) UpdateQuiet(turn board.Color, best board.Move, tried []board.Move, depth int) {
	delta := int32(depth * depth)
	for _, m := range tried {
		if !m.IsQuiet() {
			continue
		}
		d := -delta
		if m == best {
			d = delta
		}
		bonus(&h.quiet[turn][m.Piece][m.To], d)
	}
}

func (h *History) QuietScore(turn board.Color, m board.Move) int32 {
	return h.quiet[turn][m.Piece][m.To]
}

// UpdateContinuation rewards/penalizes quiet moves relative to the moves
// played one and two plies earlier, capturing "this piece likes to follow
// that piece" patterns (both the opponent's last move and the side's own
// previous move) that plain butterfly history misses.
func (h *History) UpdateContinuation(prev, prev2, best board.Move, tried []board.Move, depth int) {
	if prev.IsNull() && prev2.IsNull() {
		return
	}
	delta := int32(depth * depth)
	for _, m := range tried {
		if !m.IsQuiet() {
			continue
		}
		d := -delta
		if m == best {
			d = delta
		}
		if !prev.IsNull() {
			bonus(&h.continuation1[prev.Piece][prev.To][m.Piece][m.To], d)
		}
		if !prev2.IsNull() {
			bonus(&h.continuation2[prev2.Piece][prev2.To][m.Piece][m.To], d)
		}
	}
}

// ContinuationScore sums the 1-ply and 2-ply continuation history for m,
// following the moves played one and two plies earlier respectively.
func (h *History) ContinuationScore(prev, prev2, m board.Move) int32 {
	var score int32
	if !prev.IsNull() {
		score += h.continuation1[prev.Piece][prev.To][m.Piece][m.To]
	}
	if !prev2.IsNull() {
		score += h.continuation2[prev2.Piece][prev2.To][m.Piece][m.To]
	}
	return score
}

// UpdateCapture rewards/penalizes captures the same way UpdateQuiet does
// for quiets, used to order winning captures ahead of a full SEE pass.
func (h *History) UpdateCapture(best board.Move, tried []board.Move, depth int) {
	delta := int32(depth * depth)
	for _, m := range tried {
		if !m.IsCapture() {
			continue
		}
		d := -delta
		if m == best {
			d = delta
		}
		bonus(&h.capture[m.Piece][m.To][m.Capture], d)
	}
}

func (h *History) CaptureScore(m board.Move) int32 {
	return h.capture[m.Piece][m.To][m.Capture]
}

// AddKiller records a quiet move that caused a beta cutoff at ply, pushing
// any existing killer down to the second slot.
func (h *History) AddKiller(ply int, m board.Move) {
	if ply >= maxPly || m == h.killers[ply][0] {
		return
	}
	h.killers[ply][1] = h.killers[ply][0]
	h.killers[ply][0] = m
}

// IsKiller returns true iff m is one of the two recorded killers at ply.
func (h *History) IsKiller(ply int, m board.Move) bool {
	return ply < maxPly && (m == h.killers[ply][0] || m == h.killers[ply][1])
}
