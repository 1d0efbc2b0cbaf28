package searchctl_test

import (
	"context"
	"testing"

	"github.com/kestrelchess/caps/pkg/board"
	"github.com/kestrelchess/caps/pkg/board/fen"
	"github.com/kestrelchess/caps/pkg/eval"
	"github.com/kestrelchess/caps/pkg/search"
	"github.com/kestrelchess/caps/pkg/search/searchctl"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoard(t *testing.T, f string) *board.Board {
	t.Helper()

	pos, turn, noprogress, fullmoves, err := fen.Decode(f)
	require.NoError(t, err)

	zt := board.NewZobristTable(1)
	return board.NewBoard(zt, pos, turn, noprogress, fullmoves)
}

func TestIterativeDepthLimit(t *testing.T) {
	ctx := context.Background()

	b := newTestBoard(t, fen.Initial)
	tt := search.NewTranspositionTable(1 << 20)

	var it searchctl.Iterative
	h, out := it.Launch(ctx, b, tt, eval.NewRandom(eval.LiTE{}, 0, 1), searchctl.Options{
		DepthLimit: lang.Some(uint(3)),
	})

	var last search.PV
	for pv := range out {
		assert.LessOrEqual(t, pv.Depth, 3)
		last = pv
	}
	h.Halt()

	assert.Equal(t, 3, last.Depth)
	assert.NotEmpty(t, last.Moves)
}

func TestIterativeMultiPVReportsDistinctLines(t *testing.T) {
	ctx := context.Background()

	b := newTestBoard(t, fen.Initial)
	tt := search.NewTranspositionTable(1 << 20)

	var it searchctl.Iterative
	_, out := it.Launch(ctx, b, tt, eval.NewRandom(eval.LiTE{}, 0, 1), searchctl.Options{
		DepthLimit: lang.Some(uint(2)),
		MultiPV:    lang.Some(uint(2)),
	})

	lines := map[int]board.Move{}
	for pv := range out {
		if len(pv.Moves) > 0 {
			lines[pv.MultiPV] = pv.Moves[0]
		}
	}

	require.Contains(t, lines, 1)
	require.Contains(t, lines, 2)
	assert.False(t, lines[1].Equals(lines[2]), "multipv lines should not repeat the same root move")
}

func TestIterativeHaltIsIdempotent(t *testing.T) {
	ctx := context.Background()

	b := newTestBoard(t, fen.Initial)
	tt := search.NewTranspositionTable(1 << 20)

	var it searchctl.Iterative
	h, out := it.Launch(ctx, b, tt, eval.NewRandom(eval.LiTE{}, 0, 1), searchctl.Options{
		DepthLimit: lang.Some(uint(1)),
	})

	for range out {
		// drain
	}

	h.Halt()
	h.Halt()
}
