// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kestrelchess/caps/pkg/board"
	"github.com/kestrelchess/caps/pkg/board/fen"
	"github.com/kestrelchess/caps/pkg/engine"
	"github.com/kestrelchess/caps/pkg/search"
	"github.com/kestrelchess/caps/pkg/search/searchctl"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

const (
	minHash, maxHash, defaultHash             = 1, 65536, 64
	minThreads, maxThreads, defaultThreads    = 1, 512, 1
	minMultiPV, maxMultiPV, defaultMultiPV    = 1, 256, 1
	minOverhead, maxOverhead, defaultOverhead = 0, 5000, 20
)

// Driver implements a UCI driver for an engine. It is activated by sending "uci".
type Driver struct {
	e *engine.Engine

	out chan<- string

	active    atomic.Bool    // user is waiting for engine to move
	pondering atomic.Bool    // active search is a "go ... ponder" search
	chess960  atomic.Bool    // UCI_Chess960 setting
	pv        chan search.PV // chan for intermediate search information

	pendingTC    lang.Optional[searchctl.TimeControl] // real deadline to apply on ponderhit
	lastPosition string                               // last position line (empty if no last position)

	quit   chan struct{}
	closed atomic.Bool
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:    e,
		out:  out,
		pv:   make(chan search.PV, 400),
		quit: make(chan struct{}),
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())

	d.out <- fmt.Sprintf("option name Hash type spin default %v min %v max %v", defaultHash, minHash, maxHash)
	d.out <- fmt.Sprintf("option name Threads type spin default %v min %v max %v", defaultThreads, minThreads, maxThreads)
	d.out <- fmt.Sprintf("option name MultiPV type spin default %v min %v max %v", defaultMultiPV, minMultiPV, maxMultiPV)
	d.out <- fmt.Sprintf("option name Move Overhead type spin default %v min %v max %v", defaultOverhead, minOverhead, maxOverhead)
	d.out <- "option name UCI_Chess960 type check default false"
	d.out <- "option name Ponder type check default false"

	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}
			d.handle(ctx, line)

		case pv := <-d.pv:
			if d.active.Load() {
				d.out <- d.printPV(pv)
			}

		case <-d.quit:
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) handle(ctx context.Context, line string) {
	parts := strings.Split(strings.TrimSpace(line), " ")
	if len(parts) == 0 || parts[0] == "" {
		return
	}

	cmd, args := parts[0], parts[1:]

	switch strings.ToLower(cmd) {
	case "isready":
		d.out <- "readyok"

	case "debug":
		// Switches verbose "info string" logging. Not implemented: all
		// diagnostics go to the log writer instead of the GUI.

	case "setoption":
		d.handleSetOption(ctx, args)

	case "register":
		// No registration scheme; always unlocked.

	case "ucinewgame":
		d.ensureInactive(ctx)
		d.lastPosition = ""

	case "position":
		d.handlePosition(ctx, line, args)

	case "go":
		d.handleGo(ctx, line, args)

	case "stop":
		pv, err := d.e.Halt(ctx)
		if err == nil {
			d.searchCompleted(ctx, pv)
		}

	case "ponderhit":
		d.handlePonderHit(ctx)

	case "quit":
		d.Close()

	default:
		logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
	}
}

func (d *Driver) handleSetOption(ctx context.Context, args []string) {
	name, value := parseSetOption(args)

	switch {
	case strings.EqualFold(name, "Hash"):
		n, err := strconv.Atoi(value)
		if err != nil {
			d.out <- fmt.Sprintf("info string invalid Hash value '%v': %v", value, err)
			return
		}
		d.e.SetHash(uint(n))

	case strings.EqualFold(name, "Threads"):
		n, err := strconv.Atoi(value)
		if err != nil {
			d.out <- fmt.Sprintf("info string invalid Threads value '%v': %v", value, err)
			return
		}
		d.e.SetThreads(uint(n))

	case strings.EqualFold(name, "MultiPV"):
		n, err := strconv.Atoi(value)
		if err != nil {
			d.out <- fmt.Sprintf("info string invalid MultiPV value '%v': %v", value, err)
			return
		}
		d.e.SetMultiPV(uint(n))

	case strings.EqualFold(name, "Move Overhead"):
		n, err := strconv.Atoi(value)
		if err != nil {
			d.out <- fmt.Sprintf("info string invalid Move Overhead value '%v': %v", value, err)
			return
		}
		d.e.SetMoveOverhead(uint(n))

	case strings.EqualFold(name, "UCI_Chess960"):
		b, err := strconv.ParseBool(value)
		if err != nil {
			d.out <- fmt.Sprintf("info string invalid UCI_Chess960 value '%v': %v", value, err)
			return
		}
		d.chess960.Store(b)

	case strings.EqualFold(name, "Ponder"):
		// Informational only: the GUI tells us pondering is possible. We
		// don't change behavior until a "go ... ponder" is actually sent.

	default:
		logw.Warningf(ctx, "Unknown option '%v'", name)
	}
}

// parseSetOption splits "[name] <id...> [value <x...>]" into id and value,
// tolerating multi-word option names like "Move Overhead".
func parseSetOption(args []string) (name, value string) {
	i := 0
	if i < len(args) && args[i] == "name" {
		i++
	}

	var nameParts, valueParts []string
	for ; i < len(args); i++ {
		if args[i] == "value" {
			valueParts = args[i+1:]
			break
		}
		nameParts = append(nameParts, args[i])
	}
	return strings.Join(nameParts, " "), strings.Join(valueParts, " ")
}

func (d *Driver) handlePosition(ctx context.Context, line string, args []string) {
	d.ensureInactive(ctx)

	if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
		// Continuation of the same game: replay only the new moves.

		rest := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
		for _, arg := range strings.Split(rest, " ") {
			if arg == "" || arg == "moves" {
				continue
			}
			if err := d.e.Move(ctx, arg); err != nil {
				d.out <- fmt.Sprintf("info string invalid move '%v': %v", arg, err)
				return
			}
		}

		d.lastPosition = line
		return
	}

	position := fen.Initial
	rest := args
	if len(args) >= 1 && args[0] == "fen" {
		if len(args) < 7 {
			d.out <- fmt.Sprintf("info string malformed fen in position command: %v", line)
			return
		}
		position = strings.Join(args[1:7], " ")
		rest = args[7:]
	}

	if err := d.e.Reset(ctx, position); err != nil {
		d.out <- fmt.Sprintf("info string invalid position '%v': %v", position, err)
		return
	}

	move := false
	for _, arg := range rest {
		if arg == "moves" {
			move = true
			continue
		}
		if !move {
			continue
		}
		if err := d.e.Move(ctx, arg); err != nil {
			d.out <- fmt.Sprintf("info string invalid move '%v': %v", arg, err)
			return
		}
	}
	d.lastPosition = line
}

var goKeywords = map[string]bool{
	"searchmoves": true, "ponder": true, "wtime": true, "btime": true,
	"winc": true, "binc": true, "movestogo": true, "depth": true,
	"nodes": true, "mate": true, "movetime": true, "infinite": true,
}

func (d *Driver) handleGo(ctx context.Context, line string, args []string) {
	d.ensureInactive(ctx)

	var opt searchctl.Options
	var tc searchctl.TimeControl
	var haveTC bool
	infinite, ponder := false, false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "searchmoves":
			i++
			for i < len(args) && !goKeywords[args[i]] {
				m, err := board.ParseMove(args[i])
				if err != nil {
					d.out <- fmt.Sprintf("info string invalid searchmoves entry '%v': %v", args[i], err)
				} else {
					opt.SearchMoves = append(opt.SearchMoves, m)
				}
				i++
			}
			i--

		case "ponder":
			ponder = true

		case "infinite":
			infinite = true

		case "wtime", "btime", "winc", "binc", "movestogo", "depth", "nodes", "mate", "movetime":
			cmd := args[i]
			i++
			if i == len(args) {
				d.out <- fmt.Sprintf("info string missing argument for %v: %v", cmd, line)
				return
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				d.out <- fmt.Sprintf("info string invalid argument for %v: %v", cmd, line)
				return
			}

			switch cmd {
			case "wtime":
				tc.White, haveTC = time.Millisecond*time.Duration(n), true
			case "btime":
				tc.Black, haveTC = time.Millisecond*time.Duration(n), true
			case "winc":
				tc.WhiteInc, haveTC = time.Millisecond*time.Duration(n), true
			case "binc":
				tc.BlackInc, haveTC = time.Millisecond*time.Duration(n), true
			case "movestogo":
				tc.MovesToGo, haveTC = n, true
			case "movetime":
				tc.MoveTime, haveTC = time.Millisecond*time.Duration(n), true
			case "depth":
				opt.DepthLimit = lang.Some(uint(n))
			case "nodes":
				opt.NodeLimit = lang.Some(uint64(n))
			case "mate":
				opt.MateLimit = lang.Some(n)
			}

		default:
			d.out <- fmt.Sprintf("info string unrecognized go argument '%v'", args[i])
		}
	}

	if haveTC {
		opt.TimeControl = lang.Some(tc)
	}

	if ponder {
		// Pondering runs open-ended: the real deadline, if any, is applied
		// only once ponderhit recomputes it from the actual clock.
		d.pendingTC = opt.TimeControl
		opt.TimeControl = lang.Optional[searchctl.TimeControl]{}
		d.pondering.Store(true)
	} else {
		d.pondering.Store(false)
	}

	d.startSearch(ctx, opt, infinite || ponder)
}

func (d *Driver) startSearch(ctx context.Context, opt searchctl.Options, suppressAutoComplete bool) {
	out, err := d.e.Analyze(ctx, opt)
	if err != nil {
		d.out <- fmt.Sprintf("info string analyze failed: %v", err)
		return
	}
	d.active.Store(true)

	go func() {
		var last search.PV
		for pv := range out {
			last = pv
			d.pv <- pv
		}
		if !suppressAutoComplete {
			d.searchCompleted(ctx, last)
		}
	}()
}

func (d *Driver) handlePonderHit(ctx context.Context) {
	if !d.pondering.CAS(true, false) {
		return
	}

	// Recompute the deadline from the actual clock: halt the open-ended
	// ponder search and relaunch with the stored time control, keeping the
	// shared transposition table and histories warm.
	_, _ = d.e.Halt(ctx)

	opt := searchctl.Options{TimeControl: d.pendingTC}
	d.startSearch(ctx, opt, false)
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	d.pondering.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if !d.active.CAS(true, false) {
		return // stale or duplicate result
	}

	if len(pv.Moves) == 0 {
		// Checkmate or stalemate at the root: no move to report.
		d.out <- "bestmove 0000"
		return
	}

	d.out <- d.printPV(pv)

	best := fmt.Sprintf("bestmove %v", d.formatMove(pv.Moves[0]))
	if len(pv.Moves) > 1 {
		best += fmt.Sprintf(" ponder %v", d.formatMove(pv.Moves[1]))
	}
	d.out <- best
}

func (d *Driver) printPV(pv search.PV) string {
	parts := []string{"info"}
	parts = append(parts, fmt.Sprintf("depth %v", pv.Depth))
	parts = append(parts, fmt.Sprintf("seldepth %v", pv.Depth))
	if line := pv.MultiPV; line > 0 {
		parts = append(parts, fmt.Sprintf("multipv %v", line))
	} else {
		parts = append(parts, "multipv 1")
	}
	parts = append(parts, fmt.Sprintf("score %v", pv.Score))
	parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(time.Second)*pv.Nodes/uint64(pv.Time)))
	}
	parts = append(parts, fmt.Sprintf("hashfull %v", int(pv.Hash*1000)))
	parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv")
		parts = append(parts, d.formatMoves(pv.Moves))
	}

	return strings.Join(parts, " ")
}

func (d *Driver) formatMoves(moves []board.Move) string {
	var sb strings.Builder
	for i, m := range moves {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(d.formatMove(m))
	}
	return sb.String()
}

// formatMove renders a move as required on the wire, in lowercase long
// algebraic form (e.g. "e2e4", "e7e8q"): raw From/To/Promotion
// under UCI_Chess960, but with the king's actual destination square
// substituted for castling otherwise, since Move always stores castling in
// the unambiguous "king captures own rook" encoding internally.
func (d *Driver) formatMove(m board.Move) string {
	if !d.chess960.Load() && m.IsCastle() {
		return strings.ToLower(fmt.Sprintf("%v%v", m.From, m.CastlingDestination()))
	}
	return strings.ToLower(m.String())
}
