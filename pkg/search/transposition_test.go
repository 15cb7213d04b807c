package search_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/kresala/warden/pkg/board"
	"github.com/kresala/warden/pkg/eval"
	"github.com/kresala/warden/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestTranspositionTable(t *testing.T) {
	ctx := context.Background()

	tt := search.NewTranspositionTable(ctx, 1)
	hash := board.ZobristHash(rand.Uint64())
	m := board.NewMove(board.G4, board.G8)

	// (1) Empty table: miss.

	_, ok := tt.Get(hash, 2, eval.MinScore, eval.MaxScore)
	assert.False(t, ok)
	_, ok = tt.GetMove(hash)
	assert.False(t, ok)

	// (2) Exact entries hit at equal or lower depth, miss deeper.

	tt.Set(hash, 4, search.ExactBound, 42, m)

	score, ok := tt.Get(hash, 4, eval.MinScore, eval.MaxScore)
	assert.True(t, ok)
	assert.Equal(t, score, eval.Score(42))

	score, ok = tt.Get(hash, 2, eval.MinScore, eval.MaxScore)
	assert.True(t, ok)
	assert.Equal(t, score, eval.Score(42))

	_, ok = tt.Get(hash, 5, eval.MinScore, eval.MaxScore)
	assert.False(t, ok)

	// (3) The stored move is available regardless of depth.

	stored, ok := tt.GetMove(hash)
	assert.True(t, ok)
	assert.Equal(t, stored, m)

	// (4) A different hash misses.

	_, ok = tt.Get(hash^0xff0000, 2, eval.MinScore, eval.MaxScore)
	assert.False(t, ok)
}

func TestTranspositionTableBounds(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1)
	hash := board.ZobristHash(rand.Uint64())
	m := board.NewMove(board.E2, board.E4)

	// A beta-cutoff bound hits only when it cannot raise alpha.

	tt.Set(hash, 3, search.LowerBound, 100, m)

	score, ok := tt.Get(hash, 3, 100, 200)
	assert.True(t, ok)
	assert.Equal(t, score, eval.Score(100))

	_, ok = tt.Get(hash, 3, 50, 200)
	assert.False(t, ok)

	// An alpha-unimproved bound hits only when it cannot fall below beta.

	tt.Set(hash, 4, search.UpperBound, 300, m)

	score, ok = tt.Get(hash, 4, 100, 300)
	assert.True(t, ok)
	assert.Equal(t, score, eval.Score(300))

	_, ok = tt.Get(hash, 4, 100, 400)
	assert.False(t, ok)
}

func TestTranspositionTableReplacement(t *testing.T) {
	ctx := context.Background()
	tt := search.NewTranspositionTable(ctx, 1)
	hash := board.ZobristHash(rand.Uint64())
	m1 := board.NewMove(board.E2, board.E4)
	m2 := board.NewMove(board.D2, board.D4)

	tt.Set(hash, 5, search.ExactBound, 10, m1)

	// Shallower result does not replace.
	tt.Set(hash, 3, search.ExactBound, 20, m2)
	score, ok := tt.Get(hash, 5, eval.MinScore, eval.MaxScore)
	assert.True(t, ok)
	assert.Equal(t, score, eval.Score(10))

	// Equal depth replaces: recency wins ties.
	tt.Set(hash, 5, search.ExactBound, 30, m2)
	score, ok = tt.Get(hash, 5, eval.MinScore, eval.MaxScore)
	assert.True(t, ok)
	assert.Equal(t, score, eval.Score(30))

	stored, ok := tt.GetMove(hash)
	assert.True(t, ok)
	assert.Equal(t, stored, m2)

	assert.GreaterOrEqual(t, tt.Used(), 0)
}
