package board_test

import (
	"testing"

	"github.com/kestrelchess/caps/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestParseMove(t *testing.T) {
	tests := []struct {
		str      string
		expected board.Move
	}{
		{"e2e4", board.Move{From: board.E2, To: board.E4}},
		{"a7a8q", board.Move{From: board.A7, To: board.A8, Promotion: board.Queen}},
	}

	for _, tt := range tests {
		m, err := board.ParseMove(tt.str)
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, m)
	}

	_, err := board.ParseMove("e2")
	assert.Error(t, err)
}

func TestMoveEnPassantTarget(t *testing.T) {
	m := board.Move{Type: board.Jump, From: board.E2, To: board.E4}
	target, ok := m.EnPassantTarget()
	assert.True(t, ok)
	assert.Equal(t, board.E3, target)

	m = board.Move{Type: board.Jump, From: board.E7, To: board.E5}
	target, ok = m.EnPassantTarget()
	assert.True(t, ok)
	assert.Equal(t, board.E6, target)

	m = board.Move{Type: board.Push, From: board.E2, To: board.E3}
	_, ok = m.EnPassantTarget()
	assert.False(t, ok)
}

func TestMoveEnPassantCapture(t *testing.T) {
	m := board.Move{Type: board.EnPassant, From: board.E5, To: board.D6}
	sq, ok := m.EnPassantCapture()
	assert.True(t, ok)
	assert.Equal(t, board.D5, sq)
}

func TestMoveCastlingRookMoveAndDestination(t *testing.T) {
	// Chess960 encoding: To is the rook's own square.
	m := board.Move{Type: board.KingSideCastle, From: board.E1, To: board.H1, Piece: board.King}
	from, to, ok := m.CastlingRookMove()
	assert.True(t, ok)
	assert.Equal(t, board.H1, from)
	assert.Equal(t, board.F1, to)
	assert.Equal(t, board.G1, m.CastlingDestination())

	m = board.Move{Type: board.QueenSideCastle, From: board.E8, To: board.A8, Piece: board.King}
	from, to, ok = m.CastlingRookMove()
	assert.True(t, ok)
	assert.Equal(t, board.A8, from)
	assert.Equal(t, board.D8, to)
	assert.Equal(t, board.C8, m.CastlingDestination())
}

func TestMoveClassification(t *testing.T) {
	capture := board.Move{Type: board.Capture, Capture: board.Knight}
	assert.True(t, capture.IsCapture())
	assert.False(t, capture.IsQuiet())

	promo := board.Move{Type: board.Promotion, Promotion: board.Queen}
	assert.True(t, promo.IsPromotion())

	quiet := board.Move{Type: board.Normal}
	assert.True(t, quiet.IsQuiet())

	assert.True(t, board.NullMove.IsNull())
}
