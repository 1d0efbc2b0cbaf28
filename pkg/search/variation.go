package search

import (
	"fmt"
	"time"

	"github.com/kestrelchess/caps/pkg/board"
	"github.com/kestrelchess/caps/pkg/eval"
)

// PV represents the principal variation found by one iterative-deepening
// pass, reported to the engine driver and, from there, to the UCI adapter.
type PV struct {
	Depth   int           // depth of search, in plies
	MultiPV int           // 1-based line index, for UCI "multipv N"; 0 means unset/1
	Moves   []board.Move  // principal variation, best move first
	Score   eval.Score    // evaluation at depth, from the side to move's perspective
	Nodes   uint64        // interior/leaf nodes searched
	Time    time.Duration // time taken by this iteration
	Hash    float64       // transposition table used [0;1]
}

func (p PV) String() string {
	pv := board.PrintMoves(p.Moves)
	return fmt.Sprintf("depth=%v multipv=%v score=%v nodes=%v time=%v hash=%v%% pv=%v", p.Depth, p.line(), p.Score, p.Nodes, p.Time, int(100*p.Hash), pv)
}

func (p PV) line() int {
	if p.MultiPV <= 0 {
		return 1
	}
	return p.MultiPV
}
