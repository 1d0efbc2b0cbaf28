package eval

import "github.com/kestrelchess/caps/pkg/board"

// mobilityWeightMG/EG scale the number of squares a piece attacks (excluding
// its own pieces) into a centipawn bonus. Knights and bishops benefit most
// from open lines early; rooks and queens gain relatively more in the
// endgame once pawns have cleared.
var (
	mobilityWeightMG = [board.NumPieces]Score{board.Knight: 4, board.Bishop: 5, board.Rook: 2, board.Queen: 1}
	mobilityWeightEG = [board.NumPieces]Score{board.Knight: 4, board.Bishop: 5, board.Rook: 4, board.Queen: 2}
)

// mobility sums attacked-square counts for knights, bishops, rooks and
// queens, tapered and signed from White's perspective. Pawns and kings are
// excluded: their mobility is dominated by the structural and safety terms
// evaluated elsewhere.
func mobility(pos *board.Position) (mg, eg Score) {
	occ := pos.Occupancy()
	for _, c := range [2]board.Color{board.White, board.Black} {
		unit := Unit(c)
		own := pos.ColorOccupancy(c)
		for p := board.Knight; p <= board.Queen; p++ {
			bb := pos.PieceOccupancy(c, p)
			for bb != 0 {
				var sq board.Square
				sq, bb = bb.PopLSB()
				n := Score((board.Attackboard(occ, sq, p) &^ own).PopCount())
				mg += unit * mobilityWeightMG[p] * n
				eg += unit * mobilityWeightEG[p] * n
			}
		}
	}
	return mg, eg
}
