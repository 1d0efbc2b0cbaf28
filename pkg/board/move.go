package board

import (
	"fmt"
	"strings"
)

// MoveType indicates the type of move. The no-progress counter is reset with any non-Normal move.
type MoveType uint8

const (
	Normal    MoveType = iota
	Push               // Pawn single-square move
	Jump               // Pawn 2-square move
	EnPassant          // Implicitly a pawn capture
	QueenSideCastle
	KingSideCastle
	Capture
	Promotion
	CapturePromotion
)

// Move represents a not-necessarily-legal move along with the contextual
// metadata needed to make/unmake it and to maintain the Zobrist hash
// incrementally, without having to re-probe the position it was generated
// from. For Chess960, castling moves are encoded "king captures own rook":
// From is the king's current square, To is the castling rook's current
// square, exactly as the external UCI_Chess960 wire format requires: this
// way the encoding is unambiguous for arbitrary start files and requires no
// separate variant-aware decoding step downstream.
type Move struct {
	Type      MoveType
	From, To  Square
	Piece     Piece // piece being moved
	Promotion Piece // desired piece for promotion, if any
	Capture   Piece // captured piece, if any
}

// ParseMove parses a move in pure algebraic coordinate notation, such as "a2a4" or "a7a8q".
// The parsed move does not contain contextual information like castling or en passant;
// use Board.DecodeMove to resolve it against a position.
func ParseMove(str string) (Move, error) {
	runes := []rune(str)

	if len(runes) < 4 || len(runes) > 5 {
		return Move{}, fmt.Errorf("invalid move: '%v'", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid from: '%v': %v", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return Move{}, fmt.Errorf("invalid to: '%v': %v", str, err)
	}

	if len(runes) == 5 {
		promo, ok := ParsePiece(runes[4])
		if !ok || promo == Pawn || promo == King {
			return Move{}, fmt.Errorf("invalid promotion: '%v'", str)
		}
		return Move{From: from, To: to, Promotion: promo}, nil
	}

	return Move{From: from, To: to}, nil
}

// NullMove is the illegal zero move used by the UCI adapter's "bestmove 0000"
// when no legal move exists at the root.
var NullMove = Move{}

// IsNull returns true iff the move is the zero value (no move).
func (m Move) IsNull() bool {
	return m == Move{}
}

// Equals compares the squares and promotion piece, ignoring the rest of the
// contextual metadata. Sufficient to match a TT move or a UCI move against a
// pseudo-legal move generated independently.
func (m Move) Equals(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion
}

// IsCapture returns true iff the move captures a piece (including en passant).
func (m Move) IsCapture() bool {
	return m.Type == Capture || m.Type == CapturePromotion || m.Type == EnPassant
}

// IsPromotion returns true iff the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Type == Promotion || m.Type == CapturePromotion
}

// IsQuiet returns true iff the move is neither a capture nor a promotion, the
// set of moves eligible for history/killer ordering and LMR/LMP/futility.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// IsCastle returns true iff the move is a castling move.
func (m Move) IsCastle() bool {
	return m.Type == KingSideCastle || m.Type == QueenSideCastle
}

// EnPassantCapture returns the square of the pawn captured en passant, if any.
func (m Move) EnPassantCapture() (Square, bool) {
	if m.Type != EnPassant {
		return ZeroSquare, false
	}
	// The captured pawn sits on the same file as To but the same rank as From.
	return NewSquare(m.To.File(), m.From.Rank()), true
}

// EnPassantTarget returns the en-passant target square created by this move,
// if it is a pawn double-push (Jump). The target square is used both for
// position bookkeeping and as the Zobrist en-passant-file key.
func (m Move) EnPassantTarget() (Square, bool) {
	if m.Type != Jump {
		return ZeroSquare, false
	}
	// Target is the square "jumped over".
	if m.To.Rank() > m.From.Rank() {
		return NewSquare(m.From.File(), m.From.Rank()+1), true
	}
	return NewSquare(m.From.File(), m.From.Rank()-1), true
}

// CastlingRookMove returns the rook's from/to squares for a castling move, in
// the classical (non-Chess960-encoded) sense: the actual squares the rook
// physically moves between. ok is false if the move is not a castle.
func (m Move) CastlingRookMove() (from, to Square, ok bool) {
	if !m.IsCastle() {
		return ZeroSquare, ZeroSquare, false
	}
	turn := Rank1
	if m.From.Rank() == Rank8 {
		turn = Rank8
	}
	if m.Type == KingSideCastle {
		return m.To, NewSquare(FileF, turn), true
	}
	return m.To, NewSquare(FileD, turn), true
}

// CastlingDestination returns the king's actual destination square for a
// castling move (g-file for kingside, c-file for queenside), independent of
// where the rook that is "captured" in the Chess960 encoding actually sits.
func (m Move) CastlingDestination() Square {
	turn := Rank1
	if m.From.Rank() == Rank8 {
		turn = Rank8
	}
	if m.Type == KingSideCastle {
		return NewSquare(FileG, turn)
	}
	return NewSquare(FileC, turn)
}

// String renders the move in pure algebraic coordinate notation. Chess960
// castling notation (king-captures-rook) is handled by the UCI adapter,
// which knows whether UCI_Chess960 is in effect; String always prints the
// raw From/To encoding.
func (m Move) String() string {
	if m.Promotion.IsValid() {
		return fmt.Sprintf("%v%v%v", m.From, m.To, m.Promotion)
	}
	return fmt.Sprintf("%v%v", m.From, m.To)
}

// PrintMoves renders a sequence of moves space-separated in pure algebraic
// coordinate notation, as used in both UCI "pv" output and log lines.
func PrintMoves(moves []Move) string {
	var sb strings.Builder
	for i, m := range moves {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(m.String())
	}
	return sb.String()
}
