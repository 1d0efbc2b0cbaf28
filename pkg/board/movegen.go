package board

// PseudoLegalMoves generates every pseudo-legal move for turn in this
// position: moves that are legal ignoring whether they leave the mover's own
// king in check. Callers (Board.PushMove) filter for king safety by applying
// the move and testing IsChecked, rather than this generator tracking
// checkers/pins itself — simpler to get right, at the cost of occasionally
// generating and discarding a handful of illegal moves per node.
func (p *Position) PseudoLegalMoves(turn Color) []Move {
	var moves []Move
	occ := p.Occupancy()
	own := p.pieces[turn][NoPiece]

	moves = p.appendPawnMoves(moves, turn, occ)
	moves = p.appendOfficerMoves(moves, turn, occ, own, Knight)
	moves = p.appendOfficerMoves(moves, turn, occ, own, Bishop)
	moves = p.appendOfficerMoves(moves, turn, occ, own, Rook)
	moves = p.appendOfficerMoves(moves, turn, occ, own, Queen)
	moves = p.appendOfficerMoves(moves, turn, occ, own, King)
	moves = p.appendCastlingMoves(moves, turn)
	return moves
}

func (p *Position) appendOfficerMoves(moves []Move, turn Color, occ, own Bitboard, piece Piece) []Move {
	for bb := p.pieces[turn][piece]; bb != 0; {
		var from Square
		from, bb = bb.PopLSB()

		targets := Attackboard(occ, from, piece) &^ own
		for t := targets; t != 0; {
			var to Square
			to, t = t.PopLSB()

			if _, captured, ok := p.Square(to); ok {
				moves = append(moves, Move{Type: Capture, From: from, To: to, Piece: piece, Capture: captured})
			} else {
				moves = append(moves, Move{Type: Normal, From: from, To: to, Piece: piece})
			}
		}
	}
	return moves
}

func (p *Position) appendPawnMoves(moves []Move, turn Color, occ Bitboard) []Move {
	promoRank := PawnPromotionRank(turn)

	for bb := p.pieces[turn][Pawn]; bb != 0; {
		var from Square
		from, bb = bb.PopLSB()

		step := 8
		if turn == Black {
			step = -8
		}
		push := Square(int(from) + step)
		if push.IsValid() && !occ.IsSet(push) {
			moves = appendPawnAdvance(moves, from, push, turn, promoRank, false, NoPiece)

			onStart := (turn == White && from.Rank() == Rank2) || (turn == Black && from.Rank() == Rank7)
			if onStart {
				push2 := Square(int(push) + step)
				if push2.IsValid() && !occ.IsSet(push2) {
					moves = append(moves, Move{Type: Jump, From: from, To: push2, Piece: Pawn})
				}
			}
		}

		captures := PawnCaptureboard(turn, BitMask(from))
		for t := captures; t != 0; {
			var to Square
			to, t = t.PopLSB()

			if c, captured, ok := p.Square(to); ok && c == turn.Opponent() {
				moves = appendPawnAdvance(moves, from, to, turn, promoRank, true, captured)
			} else if ep, ok := p.EnPassant(); ok && to == ep {
				moves = append(moves, Move{Type: EnPassant, From: from, To: to, Piece: Pawn, Capture: Pawn})
			}
		}
	}
	return moves
}

// appendPawnAdvance appends a pawn push or capture, expanding to four
// promotion moves if the destination is on the back rank.
func appendPawnAdvance(moves []Move, from, to Square, turn Color, promoRank Bitboard, capture bool, captured Piece) []Move {
	if promoRank.IsSet(to) {
		promoType := Promotion
		if capture {
			promoType = CapturePromotion
		}
		for _, promo := range []Piece{Queen, Rook, Bishop, Knight} {
			moves = append(moves, Move{Type: promoType, From: from, To: to, Piece: Pawn, Promotion: promo, Capture: captured})
		}
		return moves
	}
	if capture {
		return append(moves, Move{Type: Capture, From: from, To: to, Piece: Pawn, Capture: captured})
	}
	return append(moves, Move{Type: Push, From: from, To: to, Piece: Pawn})
}

func (p *Position) appendCastlingMoves(moves []Move, turn Color) []Move {
	if p.canCastle(turn, true) {
		rank := homeRank(turn)
		kingSq := NewSquare(p.rights.KingFile[turn], rank)
		rookSq := NewSquare(p.rights.RookStartFile(turn, true), rank)
		moves = append(moves, Move{Type: KingSideCastle, From: kingSq, To: rookSq, Piece: King})
	}
	if p.canCastle(turn, false) {
		rank := homeRank(turn)
		kingSq := NewSquare(p.rights.KingFile[turn], rank)
		rookSq := NewSquare(p.rights.RookStartFile(turn, false), rank)
		moves = append(moves, Move{Type: QueenSideCastle, From: kingSq, To: rookSq, Piece: King})
	}
	return moves
}

func homeRank(c Color) Rank {
	if c == White {
		return Rank1
	}
	return Rank8
}

// canCastle implements the Chess960-general castling legality rule: the king
// path squares must not be attacked, and every square from the king's start
// to its end square and from the rook's start to its end square, both ends
// included (other than the king and rook's own start squares), must be empty.
func (p *Position) canCastle(turn Color, kingSide bool) bool {
	right := queenSideRight(turn)
	if kingSide {
		right = kingSideRight(turn)
	}
	if !p.castling.IsAllowed(right) {
		return false
	}

	rank := homeRank(turn)
	kingFile := p.rights.KingFile[turn]
	rookFile := p.rights.RookStartFile(turn, kingSide)
	kingSq := NewSquare(kingFile, rank)
	rookSq := NewSquare(rookFile, rank)

	if c, piece, ok := p.Square(kingSq); !ok || c != turn || piece != King {
		return false
	}
	if c, piece, ok := p.Square(rookSq); !ok || c != turn || piece != Rook {
		return false
	}

	kingDestFile, rookDestFile := FileG, FileF
	if !kingSide {
		kingDestFile, rookDestFile = FileC, FileD
	}

	occ := p.Occupancy() &^ BitMask(kingSq) &^ BitMask(rookSq)
	if occupiedBetween(occ, kingFile, kingDestFile, rank) {
		return false
	}
	if occupiedBetween(occ, rookFile, rookDestFile, rank) {
		return false
	}

	lo, hi := kingFile, kingDestFile
	if lo > hi {
		lo, hi = hi, lo
	}
	for f := lo; f <= hi; f++ {
		if p.IsAttacked(turn, NewSquare(f, rank)) {
			return false
		}
	}
	return true
}

// occupiedBetween returns true iff any square between f1 and f2 (inclusive
// of both ends) on rank is set in occ.
func occupiedBetween(occ Bitboard, f1, f2 File, rank Rank) bool {
	lo, hi := f1, f2
	if lo > hi {
		lo, hi = hi, lo
	}
	for f := lo; f <= hi; f++ {
		if occ.IsSet(NewSquare(f, rank)) {
			return true
		}
	}
	return false
}

// CastlingRightsLost returns the mask of castling rights invalidated by
// playing move m (assumed pseudo-legal for turn) from this position: a king
// move or castle loses both of the mover's rights; a rook move from its
// start square loses that single right; capturing a rook on its start
// square loses the victim's corresponding right.
func (p *Position) CastlingRightsLost(turn Color, m Move) Castling {
	var lost Castling

	if m.Piece == King || m.IsCastle() {
		lost |= kingSideRight(turn) | queenSideRight(turn)
	} else if m.Piece == Rook && m.From.Rank() == homeRank(turn) {
		if m.From.File() == p.rights.RookStartFile(turn, true) {
			lost |= kingSideRight(turn)
		}
		if m.From.File() == p.rights.RookStartFile(turn, false) {
			lost |= queenSideRight(turn)
		}
	}

	if m.Type == Capture || m.Type == CapturePromotion {
		opp := turn.Opponent()
		if m.To.Rank() == homeRank(opp) {
			if m.To.File() == p.rights.RookStartFile(opp, true) {
				lost |= kingSideRight(opp)
			}
			if m.To.File() == p.rights.RookStartFile(opp, false) {
				lost |= queenSideRight(opp)
			}
		}
	}
	return lost
}

// Move applies m to the position, returning the resulting position. ok is
// false only if m is structurally inconsistent with this position (e.g. no
// piece on From) — it does not check whether the mover's king ends up in
// check; that is the caller's responsibility (see Board.PushMove).
func (p *Position) Move(m Move) (*Position, bool) {
	turn, piece, ok := p.Square(m.From)
	if !ok {
		return nil, false
	}

	next := *p
	next.enpassant = ZeroSquare

	switch m.Type {
	case Normal, Push:
		next.xor(m.From, turn, piece)
		next.xor(m.To, turn, piece)

	case Jump:
		next.xor(m.From, turn, piece)
		next.xor(m.To, turn, piece)
		if t, ok := m.EnPassantTarget(); ok {
			next.enpassant = t
		}

	case Capture:
		next.xor(m.To, turn.Opponent(), m.Capture)
		next.xor(m.From, turn, piece)
		next.xor(m.To, turn, piece)

	case EnPassant:
		epc, ok := m.EnPassantCapture()
		if !ok {
			return nil, false
		}
		next.xor(epc, turn.Opponent(), Pawn)
		next.xor(m.From, turn, Pawn)
		next.xor(m.To, turn, Pawn)

	case Promotion:
		next.xor(m.From, turn, Pawn)
		next.xor(m.To, turn, m.Promotion)

	case CapturePromotion:
		next.xor(m.To, turn.Opponent(), m.Capture)
		next.xor(m.From, turn, Pawn)
		next.xor(m.To, turn, m.Promotion)

	case KingSideCastle, QueenSideCastle:
		kingTo := m.CastlingDestination()
		rookFrom, rookTo, ok := m.CastlingRookMove()
		if !ok {
			return nil, false
		}
		next.xor(m.From, turn, King)
		next.xor(rookFrom, turn, Rook)
		next.xor(kingTo, turn, King)
		next.xor(rookTo, turn, Rook)

	default:
		return nil, false
	}

	next.castling &^= p.CastlingRightsLost(turn, m)
	return &next, true
}
