package search_test

import (
	"math/rand"
	"testing"

	"github.com/kestrelchess/caps/pkg/board"
	"github.com/kestrelchess/caps/pkg/eval"
	"github.com/kestrelchess/caps/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestTranspositionTableSizeRoundsToPowerOfTwoBuckets(t *testing.T) {
	tt := search.NewTranspositionTable(0x1000)
	assert.Equal(t, uint64(0x1000), tt.Size())

	tt2 := search.NewTranspositionTable(0x1f00)
	assert.Equal(t, uint64(0x1000), tt2.Size())
}

func TestTranspositionTableProbeStore(t *testing.T) {
	tt := search.NewTranspositionTable(1 << 20)

	a := board.ZobristHash(rand.Uint64())

	_, _, _, _, ok := tt.Probe(a)
	assert.False(t, ok)

	m := board.Move{From: board.G4, To: board.G8, Promotion: board.Queen}
	tt.Store(a, search.ExactBound, 2, 123, m)

	bound, depth, score, move, ok := tt.Probe(a)
	assert.True(t, ok)
	assert.Equal(t, search.ExactBound, bound)
	assert.Equal(t, 2, depth)
	assert.Equal(t, eval.Score(123), score)
	assert.Equal(t, m, move)

	_, _, _, _, ok = tt.Probe(a ^ 0xffffffffffffffff)
	assert.False(t, ok)
}

func TestTranspositionTableKeepsDeeperExactEntry(t *testing.T) {
	tt := search.NewTranspositionTable(1 << 20)
	a := board.ZobristHash(rand.Uint64())
	m := board.Move{From: board.E2, To: board.E4}

	tt.Store(a, search.ExactBound, 10, 50, m)
	tt.Store(a, search.UpperBound, 3, -10, m) // shallower, inexact: should not replace

	_, depth, score, _, ok := tt.Probe(a)
	assert.True(t, ok)
	assert.Equal(t, 10, depth)
	assert.Equal(t, eval.Score(50), score)

	tt.Store(a, search.ExactBound, 12, 75, m) // deeper: replaces
	_, depth, score, _, ok = tt.Probe(a)
	assert.True(t, ok)
	assert.Equal(t, 12, depth)
	assert.Equal(t, eval.Score(75), score)
}

func TestTranspositionTableNewGenerationAgesOutStaleEntries(t *testing.T) {
	// A single-bucket table: every hash maps to the same 4 slots, so the
	// table is forced to choose a victim among them rather than spreading
	// across buckets.
	tt := search.NewTranspositionTable(32)

	// Verification keys come from each hash's top 16 bits, so distinct test
	// entries need to differ there, not just in their low bits.
	hash := func(n uint64) board.ZobristHash { return board.ZobristHash(n << 48) }

	stale := hash(1)
	tt.Store(stale, search.ExactBound, 3, 1, board.Move{From: board.A2, To: board.A4})

	tt.NewGeneration()

	// Fill the remaining three slots in the bucket with fresh, shallower
	// entries from the new generation.
	for i := uint64(2); i <= 4; i++ {
		tt.Store(hash(i), search.ExactBound, 1, 2, board.Move{From: board.E2, To: board.E4})
	}

	// A fifth fresh entry forces an eviction: the one-generation-stale entry
	// should lose out to the shallower but current-generation ones, since
	// the age penalty (ageWeight=4 per generation) outweighs its 2-ply
	// depth advantage.
	tt.Store(hash(5), search.ExactBound, 1, 3, board.Move{From: board.D2, To: board.D4})

	_, _, _, _, ok := tt.Probe(stale)
	assert.False(t, ok, "a stale entry from a prior generation should be evicted ahead of current-generation entries, even if deeper")
}

func TestTranspositionTableClear(t *testing.T) {
	tt := search.NewTranspositionTable(1 << 20)
	a := board.ZobristHash(rand.Uint64())
	tt.Store(a, search.ExactBound, 5, 1, board.Move{From: board.A2, To: board.A4})

	tt.Clear()
	_, _, _, _, ok := tt.Probe(a)
	assert.False(t, ok)
	assert.Equal(t, float64(0), tt.Used())
}
