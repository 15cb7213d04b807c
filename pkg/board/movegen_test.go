package board_test

import (
	"sort"
	"testing"

	"github.com/kresala/warden/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movesFrom(moves []board.Move, from board.Square) []string {
	var ret []string
	for _, m := range moves {
		if m.From() == from {
			ret = append(ret, m.String())
		}
	}
	sort.Strings(ret)
	return ret
}

func assertMovesFrom(t *testing.T, position string, from board.Square, expected ...string) {
	t.Helper()

	b := mustBoard(t, position)
	sort.Strings(expected)
	if expected == nil {
		expected = []string{}
	}

	actual := movesFrom(board.GenerateAll(b), from)
	if actual == nil {
		actual = []string{}
	}
	assert.Equalf(t, actual, expected, "moves from %v in %v", from, position)
}

func TestPawnMoves(t *testing.T) {
	assertMovesFrom(t, "4k3/2p5/8/8/8/3P4/2P5/7K w - - 0 1", board.C2, "c2c3", "c2c4")
	assertMovesFrom(t, "4k3/2p5/8/8/8/3P4/2P5/7K w - - 0 1", board.D3, "d3d4")
	assertMovesFrom(t, "4k3/2p5/8/8/8/3P4/2P5/7K b - - 0 1", board.C7, "c7c6", "c7c5")

	// Blocked pushes.
	assertMovesFrom(t, "4k3/8/8/8/2n5/2P5/8/7K w - - 0 1", board.C3)

	// Captures.
	assertMovesFrom(t, "4k3/8/8/3p4/2P5/8/8/7K w - - 0 1", board.C4, "c4c5", "c4d5")
}

func TestPawnPromotions(t *testing.T) {
	// The knight blocks the push to b8; two capture targets (a8 rook, c8
	// bishop) times four promotion pieces.
	assertMovesFrom(t, "rnbqkbnr/pPpppppp/8/8/8/8/PPPP1PPP/RNBQKBNR w KQkq - 0 1", board.B7,
		"b7a8q", "b7a8r", "b7a8b", "b7a8n",
		"b7c8q", "b7c8r", "b7c8b", "b7c8n")
}

func TestKnightPin(t *testing.T) {
	// Knight pinned on the e-file cannot move at all.
	assertMovesFrom(t, "4r2k/8/8/8/8/4N3/8/4K3 w - - 0 1", board.E3)

	// Unpinned knight moves freely.
	assertMovesFrom(t, "7k/8/8/8/8/4N3/8/4K3 w - - 0 1", board.E3,
		"e3c2", "e3c4", "e3d5", "e3f5", "e3g4", "e3g2", "e3d1", "e3f1")
}

func TestSliderPin(t *testing.T) {
	// Bishop pinned on a diagonal may slide along the pin ray only.
	assertMovesFrom(t, "7k/8/8/8/3b4/8/1B6/K7 w - - 0 1", board.B2, "b2c3", "b2d4")

	// Rook pinned on a file may slide along it.
	assertMovesFrom(t, "4r2k/8/8/8/8/8/4R3/4K3 w - - 0 1", board.E2,
		"e2e3", "e2e4", "e2e5", "e2e6", "e2e7", "e2e8")

	// Queen pinned diagonally is restricted to the diagonal.
	assertMovesFrom(t, "7k/8/8/8/3b4/8/1Q6/K7 w - - 0 1", board.B2, "b2c3", "b2d4")
}

func TestKingMoves(t *testing.T) {
	// The white king has exactly d1 and f1: no castle rights ("q" only).
	assertMovesFrom(t, "rn2kb1r/pppppppp/8/8/8/8/PPPPPPPP/R3K2R w q - 0 1", board.E1, "e1d1", "e1f1")

	// With rights, both castles appear.
	assertMovesFrom(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", board.E1,
		"e1d1", "e1f1", "e1d2", "e1e2", "e1f2", "e1g1", "e1c1")

	// The king may not step into an attacked square, including squares a
	// slider sees through the king.
	assertMovesFrom(t, "4r2k/8/8/8/8/8/8/4K3 w - - 0 1", board.E1, "e1d1", "e1f1", "e1d2", "e1f2")
}

func TestCastlingBlocked(t *testing.T) {
	// Kingside path attacked: no O-O. Queenside b1 occupied: no O-O-O.
	assertMovesFrom(t, "4k3/8/8/8/8/6r1/8/RN2K2R w KQ - 0 1", board.E1, "e1d1", "e1d2", "e1e2", "e1f2", "e1f1")

	// Queenside b-file square may be attacked, only d1/c1 must be safe.
	b := mustBoard(t, "1r2k3/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	moves := movesFrom(board.GenerateAll(b), board.E1)
	assert.Contains(t, moves, "e1c1")
}

func TestDoubleCheckOnlyKingMoves(t *testing.T) {
	// Knight on f3 and rook on e8 both give check: only king moves legal.
	b := mustBoard(t, "4r2k/8/8/8/8/5n2/8/4K3 w - - 0 1")
	for _, m := range board.GenerateAll(b) {
		assert.Equalf(t, m.From(), board.E1, "non-king move %v in double check", m)
	}
}

func TestCheckEvasions(t *testing.T) {
	// Not in check: the e2 rook blocks the e-file and is pinned to it.
	b := mustBoard(t, "4r2k/8/8/8/8/8/4R3/1B2K3 w - - 0 1")
	require.True(t, b.InCheck() == false)

	// Here the rook on e2 already blocks; move it away illegally is excluded.
	moves := movesFrom(board.GenerateAll(b), board.E2)
	for _, m := range moves {
		assert.Equal(t, m[2], byte('e'), "pinned rook must stay on the e-file: %v", m)
	}
}

// En passant capture that would expose the king to a rook on the same rank is
// excluded; the f4 pawn's only legal move is the push f4f3.
func TestEnPassantDiscoveredCheck(t *testing.T) {
	b := mustBoard(t, "8/2p5/3p4/KP5r/1R2Pp1k/8/6P1/8 b - e3 0 1")

	var pawnMoves []string
	for _, m := range board.GenerateAll(b) {
		if m.From() == board.F4 {
			pawnMoves = append(pawnMoves, m.String())
		}
	}
	assert.Equal(t, pawnMoves, []string{"f4f3"})
}

// The en passant capture is generated alongside the plain push.
func TestEnPassantCapture(t *testing.T) {
	b := mustBoard(t, "rnbqkbnr/pppp1pp1/7p/3Pp3/8/8/PPP1PPPP/RNBQKBNR w KQkq e6 0 3")
	moves := movesFrom(board.GenerateAll(b), board.D5)
	assert.Contains(t, moves, "d5e6")
	assert.Contains(t, moves, "d5d6")
}

func TestGenerateCaptures(t *testing.T) {
	b := mustBoard(t, "r2qkbnr/ppp1pppp/2n5/3p1b2/1P2P3/2N5/P1PP1PPP/R1BQKBNR w KQkq - 1 4")

	captures := board.GenerateCaptures(b)
	all := board.GenerateAll(b)
	assert.NotEmpty(t, captures)
	assert.Less(t, len(captures), len(all))

	for _, m := range captures {
		_, ok := b.PieceAt(board.Black, m.To())
		assert.Truef(t, ok, "capture %v has empty destination", m)
	}

	// Every capture is also in the full move list.
	for _, m := range captures {
		assert.Contains(t, all, m)
	}
}

func TestStalemateAndCheckmate(t *testing.T) {
	// Stalemate: black to move, no moves, not in check.
	b := mustBoard(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	assert.Empty(t, board.GenerateAll(b))
	assert.False(t, b.InCheck())

	// Back-rank mate: no moves, in check.
	b = mustBoard(t, "R5k1/5ppp/8/8/8/8/8/4K3 b - - 0 1")
	assert.Empty(t, board.GenerateAll(b))
	assert.True(t, b.InCheck())
	assert.True(t, b.InCheckmate())
}
