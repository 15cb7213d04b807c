package board_test

import (
	"testing"

	"github.com/kresala/warden/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestBitboard(t *testing.T) {

	t.Run("popcount", func(t *testing.T) {
		tests := []struct {
			bb       board.Bitboard
			expected int
		}{
			{board.EmptyBitboard, 0},
			{board.BitMask(board.G4), 1},
			{board.BitMask(board.G3) | board.BitMask(board.G4), 2},
			{board.FullBitboard, 64},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.bb.PopCount(), tt.expected)
		}
	})

	t.Run("popsquare", func(t *testing.T) {
		bb := board.BitMask(board.C3) | board.BitMask(board.A8) | board.BitMask(board.H1)

		var squares []board.Square
		for bb != 0 {
			var sq board.Square
			sq, bb = bb.PopSquare()
			squares = append(squares, sq)
		}

		// Ascending index order.
		assert.Equal(t, squares, []board.Square{board.H1, board.C3, board.A8})
	})

	t.Run("string", func(t *testing.T) {
		tests := []struct {
			bb       board.Bitboard
			expected string
		}{
			{board.EmptyBitboard, "--------/--------/--------/--------/--------/--------/--------/--------"},
			{board.BitMask(board.A1), "--------/--------/--------/--------/--------/--------/--------/X-------"},
			{board.BitMask(board.G3) | board.BitMask(board.G4), "--------/--------/--------/--------/------X-/------X-/--------/--------"},
		}

		for _, tt := range tests {
			assert.Equal(t, tt.bb.String(), tt.expected)
		}
	})

	t.Run("rankfile", func(t *testing.T) {
		assert.Equal(t, board.BitRank(board.Rank1).String(), "--------/--------/--------/--------/--------/--------/--------/XXXXXXXX")
		assert.Equal(t, board.BitRank(board.Rank8).String(), "XXXXXXXX/--------/--------/--------/--------/--------/--------/--------")
		assert.Equal(t, board.BitFile(board.FileA).String(), "X-------/X-------/X-------/X-------/X-------/X-------/X-------/X-------")
		assert.Equal(t, board.BitFile(board.FileH).String(), "-------X/-------X/-------X/-------X/-------X/-------X/-------X/-------X")
	})

	t.Run("king", func(t *testing.T) {
		tests := []struct {
			sq       board.Square
			expected string
		}{
			{board.A1, "--------/--------/--------/--------/--------/--------/XX------/-X------"},
			{board.D1, "--------/--------/--------/--------/--------/--------/--XXX---/--X-X---"},
			{board.D3, "--------/--------/--------/--------/--XXX---/--X-X---/--XXX---/--------"},
			{board.H8, "------X-/------XX/--------/--------/--------/--------/--------/--------"},
		}

		for _, tt := range tests {
			assert.Equal(t, board.KingAttackboard(tt.sq).String(), tt.expected)
		}
	})

	t.Run("knight", func(t *testing.T) {
		tests := []struct {
			sq       board.Square
			expected string
		}{
			{board.A1, "--------/--------/--------/--------/--------/-X------/--X-----/--------"},
			{board.D4, "--------/--------/--X-X---/-X---X--/--------/-X---X--/--X-X---/--------"},
			{board.H8, "--------/-----X--/------X-/--------/--------/--------/--------/--------"},
		}

		for _, tt := range tests {
			assert.Equal(t, board.KnightAttackboard(tt.sq).String(), tt.expected)
		}
	})

	t.Run("pawns", func(t *testing.T) {
		assert.Equal(t, board.PawnAttackboard(board.White, board.E2), board.BitMask(board.D3)|board.BitMask(board.F3))
		assert.Equal(t, board.PawnAttackboard(board.White, board.A2), board.BitMask(board.B3))
		assert.Equal(t, board.PawnAttackboard(board.Black, board.E7), board.BitMask(board.D6)|board.BitMask(board.F6))
		assert.Equal(t, board.PawnAttackboard(board.Black, board.H7), board.BitMask(board.G6))

		pawns := board.BitMask(board.A2) | board.BitMask(board.H2)
		assert.Equal(t, board.PawnCaptureboard(board.White, pawns), board.BitMask(board.B3)|board.BitMask(board.G3))
		assert.Equal(t, board.PawnPushboard(board.White, pawns), board.BitMask(board.A3)|board.BitMask(board.H3))
	})

	t.Run("between", func(t *testing.T) {
		tests := []struct {
			a, b     board.Square
			expected board.Bitboard
		}{
			{board.E4, board.E7, board.BitMask(board.E5) | board.BitMask(board.E6)},
			{board.E7, board.E4, board.BitMask(board.E5) | board.BitMask(board.E6)},
			{board.A1, board.D4, board.BitMask(board.B2) | board.BitMask(board.C3)},
			{board.A1, board.C1, board.BitMask(board.B1)},
			{board.A1, board.B1, board.EmptyBitboard},
			{board.A1, board.B3, board.EmptyBitboard}, // not aligned
			{board.D4, board.D4, board.EmptyBitboard},
		}

		for _, tt := range tests {
			assert.Equalf(t, board.Between(tt.a, tt.b), tt.expected, "between %v and %v", tt.a, tt.b)
		}
	})
}

func TestMagicAttackboards(t *testing.T) {

	t.Run("rook", func(t *testing.T) {
		// Empty board: full rank and file.
		attacks := board.RookAttackboard(board.EmptyBitboard, board.A1)
		assert.Equal(t, attacks, (board.BitRank(board.Rank1)|board.BitFile(board.FileA))&^board.BitMask(board.A1))

		// Blocker on a4 ends the file ray there, inclusive.
		blockers := board.BitMask(board.A4)
		attacks = board.RookAttackboard(blockers, board.A1)
		assert.True(t, attacks.IsSet(board.A4))
		assert.False(t, attacks.IsSet(board.A5))
		assert.True(t, attacks.IsSet(board.H1))

		attacks = board.RookAttackboard(board.BitMask(board.D2)|board.BitMask(board.F4), board.D4)
		assert.True(t, attacks.IsSet(board.D2))
		assert.False(t, attacks.IsSet(board.D1))
		assert.True(t, attacks.IsSet(board.F4))
		assert.False(t, attacks.IsSet(board.G4))
		assert.True(t, attacks.IsSet(board.D8))
		assert.True(t, attacks.IsSet(board.A4))
	})

	t.Run("bishop", func(t *testing.T) {
		attacks := board.BishopAttackboard(board.EmptyBitboard, board.A1)
		assert.Equal(t, attacks.PopCount(), 7)
		assert.True(t, attacks.IsSet(board.H8))

		attacks = board.BishopAttackboard(board.BitMask(board.F6), board.D4)
		assert.True(t, attacks.IsSet(board.F6))
		assert.False(t, attacks.IsSet(board.G7))
		assert.True(t, attacks.IsSet(board.A1))
		assert.True(t, attacks.IsSet(board.A7))
		assert.True(t, attacks.IsSet(board.G1))
	})

	t.Run("queen", func(t *testing.T) {
		attacks := board.QueenAttackboard(board.EmptyBitboard, board.D4)
		assert.Equal(t, attacks, board.RookAttackboard(board.EmptyBitboard, board.D4)|board.BishopAttackboard(board.EmptyBitboard, board.D4))
		assert.Equal(t, attacks.PopCount(), 27)
	})
}
