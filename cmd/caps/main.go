package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kestrelchess/caps/pkg/engine"
	"github.com/kestrelchess/caps/pkg/engine/uci"
	"github.com/kestrelchess/caps/pkg/eval"
	"github.com/kestrelchess/caps/pkg/search"
	"github.com/seekerror/logw"
)

var (
	hash    = flag.Uint("hash", 64, "Transposition table size in MB")
	threads = flag.Uint("threads", 1, "Number of lazy-SMP search workers")
	noise   = flag.Uint("noise", 0, "Evaluation noise in centipawns (zero if deterministic)")
	seed    = flag.Int64("seed", 0, "Zobrist and noise random seed")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: caps [options]

CAPS is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	e := engine.New(ctx, "caps", "kestrelchess", eval.LiTE{},
		engine.WithOptions(engine.Options{
			Hash:         *hash,
			Threads:      *threads,
			MultiPV:      1,
			MoveOverhead: 20,
			Noise:        *noise,
		}),
		engine.WithZobrist(*seed),
		engine.WithTable(func(_ context.Context, size uint64) search.TranspositionTable {
			return search.NewTranspositionTable(size)
		}),
	)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
