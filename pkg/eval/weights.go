package eval

import "github.com/kresala/warden/pkg/board"

// PieceTable holds a score per piece kind, indexed by board.Piece.
type PieceTable [board.NumPieces]Score

// BaseScores are the middlegame piece base values in centipawns. The king
// carries no material value.
var BaseScores = PieceTable{
	board.Pawn:   50,
	board.Knight: 300,
	board.Bishop: 320,
	board.Rook:   500,
	board.Queen:  900,
}

// EndScores are the endgame piece base values: pawns gain weight late.
var EndScores = PieceTable{
	board.Pawn:   80,
	board.Knight: 300,
	board.Bishop: 320,
	board.Rook:   500,
	board.Queen:  900,
}

// SideStartingMaterial is the non-pawn material either side starts with.
const SideStartingMaterial = 2*300 + 2*320 + 2*500 + 900

// WeightSet is a full set of evaluation weights for one game phase: base
// values plus a piece-square table per piece kind. Tables are White-oriented;
// Black obtains a rank-mirrored view through Lookup.
type WeightSet struct {
	Base   PieceTable
	tables [board.NumPieces][board.NumSquares]Score
}

// Lookup returns the piece-square bonus for a piece of the given color on the
// given square.
func (w *WeightSet) Lookup(p board.Piece, c board.Color, sq board.Square) Score {
	if c == board.White {
		sq ^= 56 // rank-mirror into the table's top-rank-first layout
	}
	return w.tables[p][sq]
}

// MidGame and EndGame are the two phase weight sets the tapered evaluation
// blends between.
var (
	MidGame WeightSet
	EndGame WeightSet
)

// Piece-square tables, written with rank 8 as the first row. The non-pawn
// tables are symmetric about the d/e file boundary and stored as half-rows.

type halfWeights [32]Score
type weights [board.NumSquares]Score

var pawnBase = weights{
	0, 0, 0, 0, 0, 0, 0, 0,
	-3, 3, -1, -6, 2, -8, 5, -4,
	2, -6, -3, 11, -4, -2, -8, -4,
	6, 0, -6, 0, 5, -1, -6, 5,
	-2, -12, 3, 10, 20, 8, 2, -4,
	-4, -8, 6, 7, 16, 10, 2, -11,
	1, 1, 5, 9, 8, 9, 3, -2,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var pawnEnd = weights{
	0, 0, 0, 0, 0, 0, 0, 0,
	0, -5, 6, 10, 13, 9, 2, 3,
	14, 10, 11, 14, 15, 3, 3, 6,
	5, 2, 2, -2, -2, -2, 7, 5,
	3, -1, -4, -2, -6, -6, -5, -4,
	-5, -5, -5, 2, 2, 1, -3, -2,
	-5, -3, 5, 0, 7, 3, -2, -9,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightBase = halfWeights{
	-77, -32, -22, -10,
	-26, -10, 2, 14,
	-3, 8, 22, 21,
	-13, 5, 17, 20,
	-13, 3, 15, 19,
	-23, -7, 2, 5,
	-30, -16, -10, -6,
	-67, -35, -28, -28,
}

var knightEnd = halfWeights{
	-35, -31, -20, -6,
	-24, -18, -18, 4,
	-18, -15, -6, 6,
	-16, -6, 3, 13,
	-12, -1, 5, 35,
	-14, -9, -3, 10,
	-24, -19, -6, 3,
	-34, -22, -17, -7,
}

var bishopBase = halfWeights{
	-19, 0, -5, -9,
	-7, -5, 2, 0,
	-6, 2, 0, 4,
	-5, 11, 8, 12,
	-2, 4, 9, 15,
	-3, 8, -2, -7,
	-6, 3, 7, 2,
	-21, -2, -3, -9,
}

var bishopEnd = halfWeights{
	-16, -14, -12, -8,
	-10, -7, -1, 0,
	-10, 2, 1, 2,
	-6, 0, -5, 6,
	-7, -2, 0, 6,
	-5, 0, -1, 4,
	-13, -5, -6, 0,
	-20, -11, -13, -4,
}

var rookBase = halfWeights{
	-7, -8, 0, 4,
	0, 5, 6, 7,
	-9, -1, 2, 5,
	-11, -6, -2, 1,
	-5, -2, -1, -2,
	-10, -4, 0, 1,
	-8, -5, -3, 2,
	-31, -8, -5, -2,
}

var rookEnd = halfWeights{
	7, 0, 7, 5,
	1, 2, 7, -2,
	2, 0, -2, 4,
	-1, 3, 3, -2,
	-2, 0, -3, 3,
	2, -3, -1, -2,
	-4, -3, 0, -1,
	-3, -5, -4, -3,
}

var queenBase = halfWeights{
	-1, -1, 0, -1,
	-2, 2, 4, 3,
	-1, 4, 2, 3,
	0, 5, 4, 2,
	1, 2, 3, 3,
	-1, 2, 5, 2,
	-1, 2, 3, 4,
	1, -2, -2, 1,
}

var queenEnd = halfWeights{
	-25, -17, -14, -12,
	-17, -9, -8, -3,
	-13, -6, -4, 0,
	-10, -2, 3, 7,
	-8, -1, 4, 8,
	-13, -6, -3, 1,
	-18, -10, -7, -1,
	-23, -19, -15, -9,
}

var kingBase = halfWeights{
	23, 35, 18, 0,
	35, 48, 26, 13,
	49, 58, 32, 12,
	61, 72, 42, 28,
	66, 76, 55, 39,
	78, 103, 67, 48,
	110, 120, 93, 71,
	110, 130, 110, 80,
}

var kingEnd = halfWeights{
	5, 24, 30, 32,
	19, 48, 46, 52,
	36, 68, 74, 76,
	39, 67, 80, 80,
	41, 62, 68, 68,
	35, 52, 67, 70,
	21, 40, 53, 54,
	0, 18, 34, 30,
}

// mirror expands half-rows into full rows, reflecting files e..h from d..a.
func mirror(h halfWeights) weights {
	var ret weights
	for row := 0; row < 8; row++ {
		for col := 0; col < 4; col++ {
			ret[row*8+col] = h[row*4+col]
			ret[row*8+7-col] = h[row*4+col]
		}
	}
	return ret
}

func init() {
	MidGame = WeightSet{Base: BaseScores}
	MidGame.tables[board.Pawn] = pawnBase
	MidGame.tables[board.Knight] = mirror(knightBase)
	MidGame.tables[board.Bishop] = mirror(bishopBase)
	MidGame.tables[board.Rook] = mirror(rookBase)
	MidGame.tables[board.Queen] = mirror(queenBase)
	MidGame.tables[board.King] = mirror(kingBase)

	EndGame = WeightSet{Base: EndScores}
	EndGame.tables[board.Pawn] = pawnEnd
	EndGame.tables[board.Knight] = mirror(knightEnd)
	EndGame.tables[board.Bishop] = mirror(bishopEnd)
	EndGame.tables[board.Rook] = mirror(rookEnd)
	EndGame.tables[board.Queen] = mirror(queenEnd)
	EndGame.tables[board.King] = mirror(kingEnd)
}
