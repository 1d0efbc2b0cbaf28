// Package eval contains static position evaluation: the LiTE (Linear Tapered
// Evaluation) function and its feature extractors -- material, piece-square
// tables, pawn structure, king safety and mobility -- tied together by a
// game-phase interpolation between middlegame and endgame weights.
package eval

import (
	"fmt"

	"github.com/kestrelchess/caps/pkg/board"
)

// Score is a signed centipawn evaluation from the perspective of the side to
// move, unless documented otherwise. Mate scores are encoded as Mate minus
// the number of plies to deliver it, so shorter mates always compare more
// extreme than longer ones and the encoding survives negation: a mate-in-N
// for the side to move is a mated-in-N for the opponent.
type Score int32

const (
	// Mate is the score of delivering checkmate at ply 0. Chosen well clear
	// of any plausible material/positional sum so mate scores never collide
	// with ordinary evaluations.
	Mate Score = 32000

	// MaxPly bounds search depth and separates ordinary evaluation scores
	// from mate-distance-encoded ones.
	MaxPly = 128

	// MaxEval is the largest score Evaluate may return; anything beyond it
	// is reserved for mate encoding.
	MaxEval Score = Mate - MaxPly - 1

	// MinEval mirrors MaxEval.
	MinEval Score = -MaxEval

	// Draw is the score of a known draw.
	Draw Score = 0

	// NegInf and Inf bound the alpha-beta search window, one past the
	// largest possible mate score in either direction.
	Inf    Score = Mate + 1
	NegInf Score = -Inf
)

// MateIn returns the score for delivering mate in the given number of plies.
func MateIn(ply int) Score {
	return Mate - Score(ply)
}

// MatedIn returns the score for being mated in the given number of plies.
func MatedIn(ply int) Score {
	return -Mate + Score(ply)
}

// IsMateScore returns true iff s encodes a forced mate rather than a
// positional evaluation.
func IsMateScore(s Score) bool {
	return s > MaxEval || s < MinEval
}

// MateDistance returns the number of plies to mate encoded in s. Only
// meaningful when IsMateScore(s) holds.
func MateDistance(s Score) int {
	if s > 0 {
		return int(Mate - s)
	}
	return int(Mate + s)
}

// ToTT rewrites a mate score found at the given search ply, which counts the
// mate distance from the root, into one that counts it from the current
// node, for storage in the transposition table, where it remains correct
// regardless of the ply at which it is later probed.
func ToTT(s Score, ply int) Score {
	switch {
	case s > MaxEval:
		return s + Score(ply)
	case s < MinEval:
		return s - Score(ply)
	default:
		return s
	}
}

// FromTT is the inverse of ToTT: it rewrites a node-relative mate score
// loaded from the transposition table back into one that counts the mate
// distance from the root, for a node at the given ply.
func FromTT(s Score, ply int) Score {
	switch {
	case s > MaxEval:
		return s - Score(ply)
	case s < MinEval:
		return s + Score(ply)
	default:
		return s
	}
}

// Crop clamps s into [MinEval, MaxEval] so it cannot be confused with a mate
// encoding when stored as a static evaluation.
func Crop(s Score) Score {
	switch {
	case s > MaxEval:
		return MaxEval
	case s < MinEval:
		return MinEval
	default:
		return s
	}
}

// Unit returns the signed unit for the color: 1 for White and -1 for Black.
// Evaluation features are conventionally computed from White's perspective
// and then multiplied by the unit of the side asking for the score.
func Unit(c board.Color) Score {
	if c == board.White {
		return 1
	}
	return -1
}

func Max(a, b Score) Score {
	if a > b {
		return a
	}
	return b
}

func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}

func (s Score) String() string {
	if IsMateScore(s) {
		n := (MateDistance(s) + 1) / 2
		if s < 0 {
			return fmt.Sprintf("mate -%v", n)
		}
		return fmt.Sprintf("mate %v", n)
	}
	return fmt.Sprintf("cp %v", int32(s))
}
