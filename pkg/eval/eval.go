package eval

import (
	"context"

	"github.com/kestrelchess/caps/pkg/board"
)

// Evaluator is a static position evaluator. Evaluate returns a centipawn
// score from the perspective of the side to move.
type Evaluator interface {
	Evaluate(ctx context.Context, b *board.Board) Score
}

// Material returns the untapered nominal material balance for the side to
// move, the cheapest possible evaluator. Used in tests and as a sanity
// baseline against the full LiTE evaluator.
type Material struct{}

func (Material) Evaluate(ctx context.Context, b *board.Board) Score {
	pos := b.Position()
	turn := b.Turn()

	var score Score
	for p := board.Pawn; p <= board.King; p++ {
		diff := pos.PieceOccupancy(turn, p).PopCount() - pos.PieceOccupancy(turn.Opponent(), p).PopCount()
		score += Score(diff) * NominalValue(p)
	}
	return score
}

// LiTE ("Linear Tapered Evaluation") is the engine's default evaluator. It
// sums a fixed set of features computed from White's perspective, each as a
// middlegame and an endgame component, then interpolates between the two by
// the game phase before returning the result relative to the side to move.
type LiTE struct{}

func (LiTE) Evaluate(ctx context.Context, b *board.Board) Score {
	pos := b.Position()

	mg, eg := Score(0), Score(0)
	for _, feature := range []func(*board.Position) (Score, Score){
		material,
		pieceSquares,
		pawnStructure,
		kingSafety,
		mobility,
		bishopPair,
		rookFiles,
	} {
		fmg, feg := feature(pos)
		mg += fmg
		eg += feg
	}

	phase := GamePhase(pos)
	score := Crop(Taper(mg, eg, phase))
	return score * Unit(b.Turn())
}
