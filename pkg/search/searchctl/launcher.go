// Package searchctl contains search functionality and utilities.
package searchctl

import (
	"context"
	"fmt"
	"strings"

	"github.com/kestrelchess/caps/pkg/board"
	"github.com/kestrelchess/caps/pkg/eval"
	"github.com/kestrelchess/caps/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Options hold dynamic search options. The user may change these on a particular search.
type Options struct {
	// DepthLimit, if set, limits the search to the given ply depth. Zero means no limit.
	DepthLimit lang.Optional[uint]
	// TimeControl, if set, limits the search to the given time parameters.
	TimeControl lang.Optional[TimeControl]
	// MultiPV, if set and greater than one, reports that many best lines per
	// depth instead of just the principal variation.
	MultiPV lang.Optional[uint]
	// SearchMoves, if set, restricts the root to these moves only.
	SearchMoves []board.Move
	// NodeLimit, if set, halts the search once at least this many nodes have
	// been searched. Checked between iterations, not mid-iteration.
	NodeLimit lang.Optional[uint64]
	// MateLimit, if set, halts the search once a mate in this many moves (not
	// plies) or faster has been found.
	MateLimit lang.Optional[int]
}

func (o Options) String() string {
	var ret []string
	if v, ok := o.DepthLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("depth=%v", v))
	}
	if v, ok := o.TimeControl.V(); ok {
		ret = append(ret, fmt.Sprintf("time=%v", v))
	}
	if v, ok := o.MultiPV.V(); ok {
		ret = append(ret, fmt.Sprintf("multipv=%v", v))
	}
	if len(o.SearchMoves) > 0 {
		ret = append(ret, fmt.Sprintf("searchmoves=%v", board.PrintMoves(o.SearchMoves)))
	}
	if v, ok := o.NodeLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("nodes=%v", v))
	}
	if v, ok := o.MateLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("mate=%v", v))
	}
	return fmt.Sprintf("[%v]", strings.Join(ret, ", "))
}

// Launcher is an interface for managing searches.
type Launcher interface {
	// Launch a new search from the given position. It expects an exclusive (forked) board and
	// returns a PV channel for iteratively deeper searches. If the search is exhausted, the
	// channel is closed. The search can be stopped at any time. noise parameterizes the root
	// evaluator, so independent lazy-SMP workers searching the same position diverge.
	Launch(ctx context.Context, b *board.Board, tt search.TranspositionTable, noise eval.Random, opt Options) (Handle, <-chan search.PV)
}

// Handle is an interface for the engine to manage searches. The engine is expected to spin off
// searches with forked boards and close/abandon them when no longer needed. This design keeps
// stopping conditions and re-synchronization trivial.
type Handle interface {
	// Halt halts the search, if running. Idempotent.
	Halt() search.PV
}
