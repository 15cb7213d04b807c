package search_test

import (
	"context"
	"testing"

	"github.com/kresala/warden/pkg/board"
	"github.com/kresala/warden/pkg/board/fen"
	"github.com/kresala/warden/pkg/eval"
	"github.com/kresala/warden/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

var zt = board.NewZobristTable(0)

func searchPosition(t *testing.T, position string, depth int) (board.Move, search.PV) {
	t.Helper()
	ctx := context.Background()

	b, err := fen.Decode(zt, position)
	require.NoError(t, err)

	tt := search.NewTranspositionTable(ctx, 16)
	s := search.NewSearcher(b, tt, nil)

	var last search.PV
	s.Report = func(pv search.PV) {
		last = pv
	}

	m := s.Go(ctx, search.Options{Depth: lang.Some(depth)})
	return m, last
}

func TestSearchMateInOne(t *testing.T) {
	m, pv := searchPosition(t, "k7/7R/6R1/8/8/8/8/7K w - - 0 1", 3)

	assert.Equal(t, m.String(), "g6g8")
	assert.True(t, pv.Score.IsMate(), "expected mate score, got %v", pv.Score)
	assert.Equal(t, pv.Score.MateIn(), 1)
}

func TestSearchMateInTwo(t *testing.T) {
	m, pv := searchPosition(t, "k7/7R/7R/8/8/8/8/7K w - - 0 1", 4)

	// Any rook lift to the g-file mates next move.
	assert.True(t, pv.Score.IsMate(), "expected mate score, got %v", pv.Score)
	assert.Equal(t, pv.Score.MateIn(), 2)
	assert.NotEqual(t, m, board.NoMove)
}

func TestSearchWinsQueen(t *testing.T) {
	m, pv := searchPosition(t, "k7/8/8/3q4/4P3/8/8/7K w - - 0 1", 4)

	assert.Equal(t, m.String(), "e4d5")
	// Only a white pawn is left after the capture: White is about a pawn up.
	assert.Greater(t, pv.Score, eval.Score(50))
}

func TestSearchAvoidsStalemate(t *testing.T) {
	// With only the king left, any move is fine but must be legal.
	m, _ := searchPosition(t, "k7/8/1K6/8/8/8/8/8 w - - 0 1", 3)

	b, err := fen.Decode(zt, "k7/8/1K6/8/8/8/8/8 w - - 0 1")
	require.NoError(t, err)
	assert.Contains(t, board.GenerateAll(b), m)
}

func TestSearchNoLegalMoves(t *testing.T) {
	// Stalemate position: there is no move to return.
	m, _ := searchPosition(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 3)
	assert.Equal(t, m, board.NoMove)
}

// Re-invoking the search on the same position at equal depth returns the same
// move and score: the search is deterministic under a seeded zobrist.
func TestSearchDeterministic(t *testing.T) {
	position := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

	m1, pv1 := searchPosition(t, position, 4)
	m2, pv2 := searchPosition(t, position, 4)

	assert.Equal(t, m1, m2)
	assert.Equal(t, pv1.Score, pv2.Score)
}

// The search must never return an illegal move, across a handful of tricky
// positions.
func TestSearchReturnsLegalMoves(t *testing.T) {
	positions := []string{
		fen.Initial,
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	}

	for _, position := range positions {
		m, _ := searchPosition(t, position, 3)

		b, err := fen.Decode(zt, position)
		require.NoError(t, err)
		assert.Containsf(t, board.GenerateAll(b), m, "illegal best move %v for %v", m, position)
	}
}

// A searcher stopped before starting returns promptly with some legal move.
func TestSearchStop(t *testing.T) {
	ctx := context.Background()

	b, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)

	tt := search.NewTranspositionTable(ctx, 1)
	s := search.NewSearcher(b, tt, atomic.NewBool(true))

	m := s.Go(ctx, search.Options{Depth: lang.Some(1)})
	assert.Contains(t, board.GenerateAll(b), m)
}

func TestSearchReportsProgress(t *testing.T) {
	ctx := context.Background()

	b, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)

	tt := search.NewTranspositionTable(ctx, 16)
	s := search.NewSearcher(b, tt, nil)

	var depths []int
	s.Report = func(pv search.PV) {
		depths = append(depths, pv.Depth)
		assert.NotZero(t, pv.Nodes)
		assert.GreaterOrEqual(t, pv.Seldepth, pv.Depth)
	}

	_ = s.Go(ctx, search.Options{Depth: lang.Some(3)})
	assert.Equal(t, depths, []int{1, 2, 3})
}
