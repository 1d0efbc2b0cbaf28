package eval_test

import (
	"testing"

	"github.com/kestrelchess/caps/pkg/eval"
	"github.com/stretchr/testify/assert"
)

func TestMateScoreRoundTrip(t *testing.T) {
	for ply := 1; ply < 10; ply++ {
		win := eval.MateIn(ply)
		loss := eval.MatedIn(ply)

		assert.True(t, eval.IsMateScore(win))
		assert.True(t, eval.IsMateScore(loss))
		assert.Equal(t, win, -loss)
		assert.Equal(t, ply, eval.MateDistance(win))
		assert.Equal(t, ply, eval.MateDistance(loss))
	}
}

func TestIsMateScore(t *testing.T) {
	assert.False(t, eval.IsMateScore(eval.Draw))
	assert.False(t, eval.IsMateScore(eval.MaxEval))
	assert.False(t, eval.IsMateScore(eval.MinEval))
	assert.True(t, eval.IsMateScore(eval.MaxEval+1))
	assert.True(t, eval.IsMateScore(eval.MinEval-1))
	assert.True(t, eval.IsMateScore(eval.Mate))
}

func TestMateDistance(t *testing.T) {
	assert.Equal(t, 3, eval.MateDistance(eval.MateIn(3)))
	assert.Equal(t, 5, eval.MateDistance(eval.MatedIn(5)))
}

func TestToFromTT(t *testing.T) {
	s := eval.MateIn(2)
	stored := eval.ToTT(s, 10)
	assert.Equal(t, s, eval.FromTT(stored, 10))

	// Non-mate scores are untouched by ply rewriting.
	assert.Equal(t, eval.Score(37), eval.ToTT(37, 5))
	assert.Equal(t, eval.Score(37), eval.FromTT(37, 5))
}

func TestCrop(t *testing.T) {
	assert.Equal(t, eval.MaxEval, eval.Crop(eval.Mate))
	assert.Equal(t, eval.MinEval, eval.Crop(-eval.Mate))
	assert.Equal(t, eval.Score(10), eval.Crop(10))
}
