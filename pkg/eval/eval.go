package eval

import "github.com/kresala/warden/pkg/board"

// tempoBonus is the side-to-move bonus in centipawns, added after the blend.
const tempoBonus Score = 12

// Mobility weights per attacked square, by piece kind.
var mobilityWeights = PieceTable{
	board.Knight: 4,
	board.Bishop: 2,
	board.Rook:   3,
	board.Queen:  2,
}

// Pawn structure penalties in centipawns.
const (
	doubledPawnMid  Score = 5
	isolatedPawnMid Score = 4
	doubledPawnEnd  Score = 20
	isolatedPawnEnd Score = 8
)

// Breakdown is the verbose component view of an evaluation.
type Breakdown struct {
	Middle, End   Score // phase scores before the blend
	EndgameWeight int   // 0 = middlegame, 100 = endgame
	Phase         Score // blended score
	Mobility      Score
	Tempo         Score
	Doubled       [board.NumColors]int
	Isolated      [board.NumColors]int
}

// Evaluate returns the position score in centipawns from White's perspective:
// a tapered blend of middlegame and endgame material, piece-square and pawn
// structure scores, plus mobility and a tempo bonus.
func Evaluate(b *board.Board) Score {
	s, _ := evaluate(b)
	return s
}

// EvaluateVerbose returns the score along with its component breakdown.
func EvaluateVerbose(b *board.Board) (Score, Breakdown) {
	return evaluate(b)
}

func evaluate(b *board.Board) (Score, Breakdown) {
	var bd Breakdown

	for c := board.ZeroColor; c < board.NumColors; c++ {
		counts := filePawnCounts(b, c)
		bd.Doubled[c] = doubledPawns(counts)
		bd.Isolated[c] = isolatedPawns(counts)
	}

	bd.Middle = piecesScore(b, &MidGame) + pawnStructure(&bd, doubledPawnMid, isolatedPawnMid)
	bd.End = piecesScore(b, &EndGame) + pawnStructure(&bd, doubledPawnEnd, isolatedPawnEnd)
	bd.EndgameWeight = endgameWeight(b)
	bd.Phase = lerp(bd.EndgameWeight, bd.Middle, bd.End)
	bd.Mobility = mobility(b)
	bd.Tempo = tempoBonus * Unit(b.Turn())

	return bd.Phase + bd.Mobility + bd.Tempo, bd
}

// lerp blends the two phase scores linearly by the endgame weight in [0;100].
func lerp(weight int, mid, end Score) Score {
	return Score((int(mid)*(100-weight) + int(end)*weight) / 100)
}

// endgameWeight estimates how far into the endgame the position is from the
// total non-pawn material on the board: 0 is middlegame, 100 is endgame.
func endgameWeight(b *board.Board) int {
	const minBound = 1000
	const maxBound = 2*SideStartingMaterial - minBound

	pieces := nonPawnMaterial(b, board.White) + nonPawnMaterial(b, board.Black)
	if pieces < minBound {
		pieces = minBound
	}
	if pieces > maxBound {
		pieces = maxBound
	}

	return ((maxBound - pieces) * 100) / (maxBound - minBound)
}

func nonPawnMaterial(b *board.Board, c board.Color) int {
	ret := 0
	for _, p := range []board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen} {
		ret += b.Pieces(c, p).PopCount() * int(BaseScores[p])
	}
	return ret
}

// piecesScore sums base value plus piece-square bonus over every piece on the
// board, White minus Black.
func piecesScore(b *board.Board, w *WeightSet) Score {
	var score Score
	for c := board.ZeroColor; c < board.NumColors; c++ {
		var side Score
		for bb := b.Occupied(c); bb != 0; {
			var sq board.Square
			sq, bb = bb.PopSquare()
			p, _ := b.PieceAt(c, sq)
			side += w.Base[p] + w.Lookup(p, c, sq)
		}
		score += Unit(c) * side
	}
	return score
}

func pawnStructure(bd *Breakdown, doubled, isolated Score) Score {
	var score Score
	for c := board.ZeroColor; c < board.NumColors; c++ {
		side := -doubled*Score(bd.Doubled[c]) - isolated*Score(bd.Isolated[c])
		score += Unit(c) * side
	}
	return score
}

func filePawnCounts(b *board.Board, c board.Color) [board.NumFiles]int {
	var counts [board.NumFiles]int
	for f := board.ZeroFile; f < board.NumFiles; f++ {
		counts[f] = (b.Pieces(c, board.Pawn) & board.BitFile(f)).PopCount()
	}
	return counts
}

func doubledPawns(counts [board.NumFiles]int) int {
	ret := 0
	for _, n := range counts {
		if n > 1 {
			ret++
		}
	}
	return ret
}

// isolatedPawns counts files whose neighbouring files hold no pawns. Note the
// file itself need not be occupied; empty files with empty neighbours count
// for both sides alike and cancel out.
func isolatedPawns(counts [board.NumFiles]int) int {
	ret := 0
	for f := board.ZeroFile; f < board.NumFiles; f++ {
		left := f == board.FileA || counts[f-1] == 0
		right := f == board.FileH || counts[f+1] == 0
		if left && right {
			ret++
		}
	}
	return ret
}

// mobility scores each non-pawn piece by the number of its pseudo-attacks that
// land on squares neither occupied by its own pieces nor attacked by an enemy
// pawn.
func mobility(b *board.Board) Score {
	var score Score

	for c := board.ZeroColor; c < board.NumColors; c++ {
		opp := c.Opponent()
		goodTargets := ^b.Occupied(c) &^ board.PawnCaptureboard(opp, b.Pieces(opp, board.Pawn))

		var side Score
		for bb := b.Pieces(c, board.Knight); bb != 0; {
			var sq board.Square
			sq, bb = bb.PopSquare()
			side += mobilityWeights[board.Knight] * Score((board.KnightAttackboard(sq)&goodTargets).PopCount())
		}
		for bb := b.Pieces(c, board.Bishop); bb != 0; {
			var sq board.Square
			sq, bb = bb.PopSquare()
			side += mobilityWeights[board.Bishop] * Score((board.BishopAttackboard(b.AnyPiece(), sq)&goodTargets).PopCount())
		}
		for bb := b.Pieces(c, board.Rook); bb != 0; {
			var sq board.Square
			sq, bb = bb.PopSquare()
			side += mobilityWeights[board.Rook] * Score((board.RookAttackboard(b.AnyPiece(), sq)&goodTargets).PopCount())
		}
		for bb := b.Pieces(c, board.Queen); bb != 0; {
			var sq board.Square
			sq, bb = bb.PopSquare()
			side += mobilityWeights[board.Queen] * Score((board.QueenAttackboard(b.AnyPiece(), sq)&goodTargets).PopCount())
		}

		score += Unit(c) * side
	}

	return score
}
