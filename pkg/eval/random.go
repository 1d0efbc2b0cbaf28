package eval

import (
	"context"
	"math/rand"

	"github.com/kestrelchess/caps/pkg/board"
)

// Random adds a small amount of noise to another evaluator's score, useful
// for de-duplicating engine play in self-test matches. Limit specifies how
// many centipawns to add/remove, uniformly in [-limit/2, limit-1-limit/2]
// (limit distinct values); a non-positive limit disables it entirely.
type Random struct {
	next  Evaluator
	rand  *rand.Rand
	limit int
}

func NewRandom(next Evaluator, limit int, seed int64) Random {
	return Random{
		next:  next,
		limit: limit,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

func (n Random) Evaluate(ctx context.Context, b *board.Board) Score {
	base := n.next.Evaluate(ctx, b)
	if n.limit <= 0 {
		return base
	}
	return base + Score(n.rand.Intn(n.limit)-n.limit/2)
}
