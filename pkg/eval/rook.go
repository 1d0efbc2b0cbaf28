package eval

import "github.com/kestrelchess/caps/pkg/board"

const (
	rookOpenFileBonusMG     Score = 20
	rookSemiOpenFileBonusMG Score = 10
)

// rookFiles rewards rooks standing on open files (no pawns of either color)
// or semi-open files (no pawn of their own color), where they exert the most
// pressure along the file.
func rookFiles(pos *board.Position) (mg, eg Score) {
	for _, c := range [2]board.Color{board.White, board.Black} {
		unit := Unit(c)
		ownPawns := pos.PieceOccupancy(c, board.Pawn)
		oppPawns := pos.PieceOccupancy(c.Opponent(), board.Pawn)

		rooks := pos.PieceOccupancy(c, board.Rook)
		for rooks != 0 {
			var sq board.Square
			sq, rooks = rooks.PopLSB()
			file := board.BitFile(sq.File())
			switch {
			case ownPawns&file == 0 && oppPawns&file == 0:
				mg += unit * rookOpenFileBonusMG
			case ownPawns&file == 0:
				mg += unit * rookSemiOpenFileBonusMG
			}
		}
	}
	return mg, eg
}
