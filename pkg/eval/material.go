package eval

import "github.com/kestrelchess/caps/pkg/board"

// Nominal centipawn values per piece, middlegame and endgame, following the
// commonly published "PeSTO" style tapered material weights.
var (
	materialMG = [board.NumPieces]Score{board.NoPiece: 0, board.Pawn: 82, board.Knight: 337, board.Bishop: 365, board.Rook: 477, board.Queen: 1025, board.King: 0}
	materialEG = [board.NumPieces]Score{board.NoPiece: 0, board.Pawn: 94, board.Knight: 281, board.Bishop: 297, board.Rook: 512, board.Queen: 936, board.King: 0}
)

// NominalValue is the static, non-tapered material value of a piece in
// centipawns, used for move ordering (MVV/LVA) and by the Material evaluator;
// LiTE scores material with the tapered materialMG/materialEG tables instead.
func NominalValue(p board.Piece) Score {
	return (materialMG[p] + materialEG[p]) / 2
}

// NominalValueGain is the nominal material gain of making move m, used to
// seed capture ordering ahead of a full SEE pass.
func NominalValueGain(m board.Move) Score {
	switch m.Type {
	case board.CapturePromotion:
		return NominalValue(m.Capture) + NominalValue(m.Promotion) - NominalValue(board.Pawn)
	case board.Promotion:
		return NominalValue(m.Promotion) - NominalValue(board.Pawn)
	case board.Capture:
		return NominalValue(m.Capture)
	case board.EnPassant:
		return NominalValue(board.Pawn)
	default:
		return 0
	}
}

// material returns the tapered material balance from White's perspective.
func material(pos *board.Position) (mg, eg Score) {
	for _, c := range [2]board.Color{board.White, board.Black} {
		unit := Unit(c)
		for p := board.Pawn; p <= board.King; p++ {
			n := Score(pos.PieceOccupancy(c, p).PopCount())
			mg += unit * n * materialMG[p]
			eg += unit * n * materialEG[p]
		}
	}
	return mg, eg
}

// bishopPair gives a small tapered bonus to the side holding both bishops,
// which cooperate on complementary diagonals better than bishop+knight.
func bishopPair(pos *board.Position) (mg, eg Score) {
	for _, c := range [2]board.Color{board.White, board.Black} {
		if pos.PieceOccupancy(c, board.Bishop).PopCount() >= 2 {
			unit := Unit(c)
			mg += unit * 30
			eg += unit * 50
		}
	}
	return mg, eg
}
