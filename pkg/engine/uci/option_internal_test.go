package uci

import (
	"testing"

	"github.com/kestrelchess/caps/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSetOptionSingleWordName(t *testing.T) {
	name, value := parseSetOption([]string{"name", "Hash", "value", "128"})
	assert.Equal(t, "Hash", name)
	assert.Equal(t, "128", value)
}

func TestParseSetOptionMultiWordName(t *testing.T) {
	name, value := parseSetOption([]string{"name", "Move", "Overhead", "value", "50"})
	assert.Equal(t, "Move Overhead", name)
	assert.Equal(t, "50", value)
}

func TestParseSetOptionNoValue(t *testing.T) {
	name, value := parseSetOption([]string{"name", "Ponder"})
	assert.Equal(t, "Ponder", name)
	assert.Equal(t, "", value)
}

func castleMove(t *testing.T) board.Move {
	t.Helper()

	from, err := board.ParseSquare('e', '1')
	require.NoError(t, err)
	to, err := board.ParseSquare('h', '1')
	require.NoError(t, err)

	return board.Move{Type: board.KingSideCastle, From: from, To: to}
}

func TestFormatMoveCastlingStandard(t *testing.T) {
	var d Driver

	m := castleMove(t)
	require.True(t, m.IsCastle())

	assert.Equal(t, "e1g1", d.formatMove(m))
}

func TestFormatMoveCastlingChess960(t *testing.T) {
	var d Driver
	d.chess960.Store(true)

	m := castleMove(t)

	assert.Equal(t, "e1h1", d.formatMove(m))
}
