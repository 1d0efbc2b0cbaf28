// Package board contains chess board representation and utilities: bitboard
// positions, move generation, Zobrist hashing and the game-level history
// needed to adjudicate draws.
package board

import "fmt"

const (
	repetition3Limit   = 3
	repetition5Limit   = 5
	noprogressPlyLimit = 100
)

type node struct {
	pos        *Position
	hash       ZobristHash
	noprogress int

	next Move // move played from this node, if not current
	prev *node
}

// Board represents a chess board, its metadata, and the history of
// positions needed to correctly adjudicate draws (repetition, the
// fifty-move rule, insufficient material). Not thread-safe; call Fork to
// hand an independent copy to another goroutine.
//
// Make/unmake symmetry falls out of the representation for free: positions
// are immutable values, so PushMove simply advances a pointer to a freshly
// computed node and PopMove walks it back — there is no in-place mutation to
// accidentally leave inconsistent.
type Board struct {
	zt          *ZobristTable
	repetitions map[ZobristHash]int

	fullmoves int
	turn      Color
	result    Result
	current   *node
}

// NewBoard constructs a board from a starting position.
func NewBoard(zt *ZobristTable, pos *Position, turn Color, noprogress, fullmoves int) *Board {
	current := &node{
		pos:        pos,
		noprogress: noprogress,
		hash:       zt.Hash(pos, turn),
	}

	repetitions := map[ZobristHash]int{
		current.hash: 1,
	}

	return &Board{
		zt:          zt,
		repetitions: repetitions,
		fullmoves:   fullmoves,
		turn:        turn,
		current:     current,
	}
}

// Fork branches off a new board, sharing the node history for past
// positions. If forked, the shared history should not be mutated (via
// PopMove past the fork point) as the forward moves in node might then
// become stale. Used to hand each lazy-SMP search worker an independent
// root it can push/pop against without synchronization.
func (b *Board) Fork() *Board {
	fork := &Board{
		zt:          b.zt,
		repetitions: map[ZobristHash]int{},
		fullmoves:   b.fullmoves,
		turn:        b.turn,
		result:      b.result,
		current: &node{
			pos:        b.current.pos,
			hash:       b.current.hash,
			noprogress: b.current.noprogress,
			prev:       b.current.prev,
		},
	}
	for k, v := range b.repetitions {
		fork.repetitions[k] = v
	}

	return fork
}

func (b *Board) Position() *Position {
	return b.current.pos
}

func (b *Board) Turn() Color {
	return b.turn
}

func (b *Board) Hash() ZobristHash {
	return b.current.hash
}

func (b *Board) NoProgress() int {
	return b.current.noprogress
}

func (b *Board) FullMoves() int {
	return b.fullmoves
}

func (b *Board) Result() Result {
	return b.result
}

// IsInCheck returns true iff the side to move is in check.
func (b *Board) IsInCheck() bool {
	return b.current.pos.IsChecked(b.turn)
}

// LegalMoves returns every legal move in the current position: pseudo-legal
// moves filtered by whether they leave the mover's own king in check.
func (b *Board) LegalMoves() []Move {
	pseudo := b.current.pos.PseudoLegalMoves(b.turn)
	legal := make([]Move, 0, len(pseudo))
	for _, m := range pseudo {
		if next, ok := b.current.pos.Move(m); ok && !next.IsChecked(b.turn) {
			legal = append(legal, m)
		}
	}
	return legal
}

// PushMove attempts to make a pseudo-legal move. Returns true iff it is
// actually legal (does not leave the mover's own king in check).
func (b *Board) PushMove(m Move) bool {
	if b.result.Reason == Checkmate || b.result.Reason == Stalemate {
		return false // there are no legal moves
	} // else: ignore draws that are not always called correctly.

	next, ok := b.current.pos.Move(m)
	if !ok || next.IsChecked(b.turn) {
		return false
	}

	// (1) Move is legal. Create new node.

	n := &node{
		pos:        next,
		hash:       b.zt.Move(b.current.hash, b.current.pos, m),
		noprogress: updateNoProgress(b.current.noprogress, m),
		prev:       b.current,
	}

	b.current.next = m
	b.current = n

	// (2) Update board-level metadata.

	b.turn = b.turn.Opponent()
	b.repetitions[b.current.hash]++
	if b.turn == White {
		b.fullmoves++
	}

	// (3) Determine if a draw condition applies.

	if b.repetitions[b.current.hash] >= repetition3Limit {
		actual := b.identicalPositionCount(b.current, b.turn, b.current.noprogress)
		switch {
		case actual >= repetition5Limit:
			b.result.Outcome = Draw
			b.result.Reason = Repetition5
		case actual >= repetition3Limit:
			b.result.Outcome = Draw
			b.result.Reason = Repetition3
		default:
			// zobrist collision: not an actual repetition
		}
	}

	if b.current.noprogress >= noprogressPlyLimit {
		b.result.Outcome = Draw
		b.result.Reason = NoProgress
	}

	if m.IsCapture() || (m.IsPromotion() && (m.Promotion == Bishop || m.Promotion == Knight)) {
		if b.current.pos.HasInsufficientMaterial() {
			b.result.Outcome = Draw
			b.result.Reason = InsufficientMaterial
		}
	}

	return true
}

// PushNullMove plays a null move (passes the turn without moving a piece),
// used by null-move pruning. The en passant target is cleared, matching the
// rule that a pass forfeits any pending en passant capture. Always legal as
// long as the side to move is not in check (checked by the caller).
func (b *Board) PushNullMove() {
	pos := *b.current.pos
	pos.enpassant = ZeroSquare

	hash := b.zt.nullMove(b.current.hash, b.current.pos, b.turn)

	n := &node{
		pos:        &pos,
		hash:       hash,
		noprogress: b.current.noprogress,
		prev:       b.current,
	}

	b.current.next = NullMove
	b.current = n
	b.turn = b.turn.Opponent()
	b.repetitions[b.current.hash]++
	if b.turn == White {
		b.fullmoves++
	}
}

// PopNullMove undoes a null move played with PushNullMove.
func (b *Board) PopNullMove() {
	b.turn = b.turn.Opponent()
	b.repetitions[b.current.hash]--
	b.result = Result{Outcome: Undecided}
	if b.turn == Black {
		b.fullmoves--
	}
	b.current = b.current.prev
	b.current.next = Move{}
}

func (b *Board) PopMove() (Move, bool) {
	if b.current.prev == nil {
		return Move{}, false
	}

	// (1) Update board-level metadata.

	b.turn = b.turn.Opponent()
	b.repetitions[b.current.hash]--
	b.result = Result{Outcome: Undecided} // a legal move was made, so not terminal
	if b.turn == Black {
		b.fullmoves--
	}

	// (2) Pop current node.

	b.current = b.current.prev
	m := b.current.next
	b.current.next = Move{}
	return m, true
}

// AdjudicateNoLegalMoves adjudicates the position assuming no legal moves exist.
// The result is then either Checkmate or Stalemate.
func (b *Board) AdjudicateNoLegalMoves() Result {
	result := Result{Outcome: Draw, Reason: Stalemate}
	if b.IsInCheck() {
		result = Result{Outcome: Loss(b.Turn()), Reason: Checkmate}
	}
	b.Adjudicate(result)
	return result
}

// Adjudicate sets the result as given, e.g. from an externally-determined
// draw claim or tablebase hit.
func (b *Board) Adjudicate(result Result) {
	b.result = result
}

func (b *Board) identicalPositionCount(n *node, turn Color, limit int) int {
	ret := 1
	tmp := n.prev
	t := b.turn.Opponent()

	for i := 1; i < limit && tmp != nil; i++ {
		if tmp.hash == n.hash && turn == t && *tmp.pos == *n.pos {
			ret++
		}
		tmp = tmp.prev
		t = t.Opponent()
	}
	return ret
}

// LastMove returns the last move played, if any.
func (b *Board) LastMove() (Move, bool) {
	if b.current.prev != nil {
		return b.current.prev.next, true
	}
	return Move{}, false
}

// HasCastled returns true iff the color has castled at some point in this game.
func (b *Board) HasCastled(c Color) bool {
	t := b.turn.Opponent()
	cur := b.current.prev

	for cur != nil {
		if t == c && cur.next.IsCastle() {
			return true
		}
		t = t.Opponent()
		cur = cur.prev
	}
	return false
}

func (b *Board) String() string {
	return fmt.Sprintf("board{pos=%v, turn=%v, hash=%x (%v) noprogress=%v, fullmoves=%v, result=%v}", b.current.pos, b.turn, b.current.hash, b.repetitions[b.current.hash], b.current.noprogress, b.fullmoves, b.result)
}

func updateNoProgress(old int, m Move) int {
	if m.Type != Normal {
		return 0
	}
	return old + 1
}
