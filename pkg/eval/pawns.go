package eval

import "github.com/kestrelchess/caps/pkg/board"

const (
	isolatedPenaltyMG Score = 10
	isolatedPenaltyEG Score = 20
	doubledPenaltyMG  Score = 8
	doubledPenaltyEG  Score = 16
)

// passedBonusMG/EG are indexed by the pawn's rank as seen from its own side
// (0 = own home rank, 7 = promotion rank), rising sharply as the pawn nears
// queening.
var (
	passedBonusMG = [8]Score{0, 5, 10, 15, 35, 60, 90, 0}
	passedBonusEG = [8]Score{0, 10, 20, 35, 65, 110, 170, 0}
)

func adjacentFiles(f board.File) board.Bitboard {
	var bb board.Bitboard
	if v := f.V() - 1; v >= 0 {
		bb |= board.BitFile(board.File(v))
	}
	if v := f.V() + 1; v < int(board.NumFiles) {
		bb |= board.BitFile(board.File(v))
	}
	return bb
}

// pawnStructure evaluates isolated pawns, doubled pawns and passed pawns for
// both sides, returning the tapered balance from White's perspective.
func pawnStructure(pos *board.Position) (mg, eg Score) {
	for _, c := range [2]board.Color{board.White, board.Black} {
		unit := Unit(c)
		own := pos.PieceOccupancy(c, board.Pawn)
		opp := pos.PieceOccupancy(c.Opponent(), board.Pawn)

		for f := board.ZeroFile; f < board.NumFiles; f++ {
			count := (own & board.BitFile(f)).PopCount()
			if count == 0 {
				continue
			}
			if own&adjacentFiles(f) == 0 {
				mg -= unit * isolatedPenaltyMG
				eg -= unit * isolatedPenaltyEG
			}
			if count > 1 {
				mg -= unit * doubledPenaltyMG * Score(count-1)
				eg -= unit * doubledPenaltyEG * Score(count-1)
			}
		}

		bb := own
		for bb != 0 {
			var sq board.Square
			sq, bb = bb.PopLSB()
			if isPassed(c, sq, opp) {
				rank := relativeRank(c, sq)
				mg += unit * passedBonusMG[rank]
				eg += unit * passedBonusEG[rank]
			}
		}
	}
	return mg, eg
}

// relativeRank returns sq's rank as seen from c's own side of the board,
// 0 for the home rank and 7 for the promotion rank.
func relativeRank(c board.Color, sq board.Square) int {
	if c == board.White {
		return int(sq.Rank())
	}
	return 7 - int(sq.Rank())
}

// isPassed returns true if a pawn of color c on sq has no opposing pawn on
// its own or an adjacent file standing in the way of its promotion.
func isPassed(c board.Color, sq board.Square, oppPawns board.Bitboard) bool {
	front := adjacentFiles(sq.File()) | board.BitFile(sq.File())
	if c == board.White {
		for r := int(sq.Rank()) + 1; r < int(board.NumRanks); r++ {
			if front&board.BitRank(board.Rank(r))&oppPawns != 0 {
				return false
			}
		}
		return true
	}
	for r := int(sq.Rank()) - 1; r >= 0; r-- {
		if front&board.BitRank(board.Rank(r))&oppPawns != 0 {
			return false
		}
	}
	return true
}
