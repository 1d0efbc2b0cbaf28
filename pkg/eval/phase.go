package eval

import "github.com/kestrelchess/caps/pkg/board"

// Phase weights per piece kind, used to interpolate between middlegame and
// endgame piece-square tables and feature weights. Matches the commonly used
// "tapered eval" weighting (knight/bishop=1, rook=2, queen=4).
const (
	knightPhase = 1
	bishopPhase = 1
	rookPhase   = 2
	queenPhase  = 4

	totalPhase = knightPhase*4 + bishopPhase*4 + rookPhase*4 + queenPhase*2
)

// GamePhase returns a value in [0, 256] describing how far the position has
// progressed from the middlegame (0, full material) towards the endgame
// (256, bare kings and pawns), based on the non-pawn material remaining on the
// board for both sides.
func GamePhase(pos *board.Position) int {
	phase := totalPhase
	for _, c := range [2]board.Color{board.White, board.Black} {
		phase -= pos.PieceOccupancy(c, board.Knight).PopCount() * knightPhase
		phase -= pos.PieceOccupancy(c, board.Bishop).PopCount() * bishopPhase
		phase -= pos.PieceOccupancy(c, board.Rook).PopCount() * rookPhase
		phase -= pos.PieceOccupancy(c, board.Queen).PopCount() * queenPhase
	}
	if phase < 0 {
		phase = 0
	}
	return (phase*256 + totalPhase/2) / totalPhase
}

// Taper interpolates between a middlegame and endgame score given a phase in
// [0, 256], where 0 is full middlegame material and 256 is a bare endgame.
func Taper(mg, eg Score, phase int) Score {
	return (mg*(256-Score(phase)) + eg*Score(phase)) / 256
}
