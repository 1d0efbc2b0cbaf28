package eval

import "github.com/kestrelchess/caps/pkg/board"

const (
	shieldPawnBonusMG Score = 10
	openFilePenaltyMG Score = 20
	semiOpenPenaltyMG Score = 10
)

// kingSafety rewards an intact pawn shield in front of a castled king and
// penalizes open or semi-open files running past it, a middlegame-only
// concern: in the endgame the king belongs in the center, not behind a wall.
func kingSafety(pos *board.Position) (mg, eg Score) {
	for _, c := range [2]board.Color{board.White, board.Black} {
		unit := Unit(c)
		king := pos.KingSquare(c)
		ownPawns := pos.PieceOccupancy(c, board.Pawn)
		oppPawns := pos.PieceOccupancy(c.Opponent(), board.Pawn)

		files := board.BitFile(king.File()) | adjacentFiles(king.File())
		shieldRank := shieldRankFor(c, king.Rank())

		for f := board.ZeroFile; f < board.NumFiles; f++ {
			if files&board.BitFile(f) == 0 {
				continue
			}
			fileOwn := ownPawns & board.BitFile(f)
			fileOpp := oppPawns & board.BitFile(f)

			if fileOwn&board.BitRank(shieldRank) != 0 {
				mg += unit * shieldPawnBonusMG
			}
			switch {
			case fileOwn == 0 && fileOpp == 0:
				mg -= unit * openFilePenaltyMG
			case fileOwn == 0:
				mg -= unit * semiOpenPenaltyMG
			}
		}
	}
	return mg, eg
}

// shieldRankFor returns the rank one step in front of the king, where a
// shield pawn is expected to sit, saturating at the board edge.
func shieldRankFor(c board.Color, kingRank board.Rank) board.Rank {
	if c == board.White {
		if kingRank >= board.Rank8 {
			return board.Rank8
		}
		return kingRank + 1
	}
	if kingRank <= board.Rank1 {
		return board.Rank1
	}
	return kingRank - 1
}
