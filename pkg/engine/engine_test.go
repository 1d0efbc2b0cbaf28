package engine_test

import (
	"context"
	"testing"

	"github.com/kestrelchess/caps/pkg/board/fen"
	"github.com/kestrelchess/caps/pkg/engine"
	"github.com/kestrelchess/caps/pkg/eval"
	"github.com/kestrelchess/caps/pkg/search"
	"github.com/kestrelchess/caps/pkg/search/searchctl"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(ctx context.Context) *engine.Engine {
	return engine.New(ctx, "test", "tester", eval.LiTE{})
}

func TestEngineResetAndPosition(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(ctx)

	require.Equal(t, fen.Initial, e.Position())

	const sicilian = "rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2"
	require.NoError(t, e.Reset(ctx, sicilian))
	assert.Equal(t, sicilian, e.Position())
}

func TestEngineMoveAndTakeBack(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(ctx)

	require.NoError(t, e.Move(ctx, "e2e4"))
	assert.NotEqual(t, fen.Initial, e.Position())

	require.NoError(t, e.TakeBack(ctx))
	assert.Equal(t, fen.Initial, e.Position())

	assert.Error(t, e.TakeBack(ctx), "nothing left to take back")
}

func TestEngineMoveRejectsIllegalMove(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(ctx)

	assert.Error(t, e.Move(ctx, "e2e5"))
	assert.Error(t, e.Move(ctx, "not-a-move"))
}

func TestEngineAnalyzeAndHalt(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(ctx)

	out, err := e.Analyze(ctx, searchctl.Options{DepthLimit: lang.Some(uint(2))})
	require.NoError(t, err)

	var last search.PV
	for pv := range out {
		last = pv
	}
	assert.NotEmpty(t, last.Moves)

	_, err = e.Halt(ctx)
	assert.NoError(t, err, "search ran to completion naturally, but is still the active handle until halted")

	_, err = e.Halt(ctx)
	assert.Error(t, err, "nothing active to halt a second time")
}

func TestEngineAnalyzeRejectsConcurrentSearch(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(ctx)

	out, err := e.Analyze(ctx, searchctl.Options{DepthLimit: lang.Some(uint(20))})
	require.NoError(t, err)

	_, err = e.Analyze(ctx, searchctl.Options{})
	assert.Error(t, err)

	_, err = e.Halt(ctx)
	assert.NoError(t, err)

	for range out {
		// drain until the halted search's goroutine closes it
	}
}

func TestEngineLazySMPHelpersDoNotBlockPrimaryResult(t *testing.T) {
	ctx := context.Background()
	e := engine.New(ctx, "test", "tester", eval.LiTE{}, engine.WithOptions(engine.Options{Threads: 4}))

	out, err := e.Analyze(ctx, searchctl.Options{DepthLimit: lang.Some(uint(2))})
	require.NoError(t, err)

	var last search.PV
	for pv := range out {
		last = pv
	}
	assert.NotEmpty(t, last.Moves)
}
