package fen_test

import (
	"testing"

	"github.com/kresala/warden/pkg/board"
	"github.com/kresala/warden/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zt = board.NewZobristTable(0)

func TestRoundTrip(t *testing.T) {
	tests := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"rnbqkbnr/pppp1pp1/7p/3Pp3/8/8/PPP1PPPP/RNBQKBNR w KQkq e6 0 3",
		"4k3/8/8/8/8/8/8/4K3 w - - 42 99",
	}

	for _, tt := range tests {
		b, err := fen.Decode(zt, tt)
		require.NoErrorf(t, err, "decode %v", tt)
		assert.Equal(t, fen.Encode(b), tt)
	}
}

func TestDecode(t *testing.T) {
	b, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)

	assert.Equal(t, b.Turn(), board.White)
	assert.Equal(t, b.HalfMoveClock(), 0)
	assert.Equal(t, b.FullMoves(), 1)
	assert.True(t, b.CastleKingside(board.White))
	assert.True(t, b.CastleQueenside(board.Black))

	c, p, ok := b.Square(board.E1)
	require.True(t, ok)
	assert.Equal(t, c, board.White)
	assert.Equal(t, p, board.King)

	c, p, ok = b.Square(board.D8)
	require.True(t, ok)
	assert.Equal(t, c, board.Black)
	assert.Equal(t, p, board.Queen)

	_, _, ok = b.Square(board.E4)
	assert.False(t, ok)
}

// The decoder drops an en passant target that no enemy pawn can use, matching
// the board's lazy rule, so such positions hash identically to their
// target-free twins.
func TestDecodeLazyEnPassant(t *testing.T) {
	withTarget, err := fen.Decode(zt, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	require.NoError(t, err)
	without, err := fen.Decode(zt, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	require.NoError(t, err)

	_, ok := withTarget.EnPassant()
	assert.False(t, ok)
	assert.Equal(t, withTarget.Hash(), without.Hash())
}

func TestDecodeErrors(t *testing.T) {
	tests := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",              // missing fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1", // bad turn
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w XQkq - 0 1", // bad castling
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq z9 0 1", // bad square
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1",  // bad clock
		"rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",    // 7 ranks
		"rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", // 9 files
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNZ w KQkq - 0 1",  // bad piece
		"8/8/8/8/8/8/8/8 w - - 0 1",                                 // no kings
	}

	for _, tt := range tests {
		_, err := fen.Decode(zt, tt)
		assert.Errorf(t, err, "expected decode failure: '%v'", tt)
	}
}
