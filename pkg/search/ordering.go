package search

import (
	"github.com/kresala/warden/pkg/board"
)

// Move ordering: a cheap O(moves) weighting pass per node. The hash move goes
// first. Captures by MVV-LVA (most valuable victim, least valuable attacker)
// and killers share the next band by weight: the first killer (900) is above
// every capture, later killers interleave with them. Quiet moves by the
// history heuristic come last.

const (
	hashMoveWeight = 10000
	killerWeight   = 900
	killerStep     = 50
)

// mvvlvaValues are the piece values used by capture ordering only.
var mvvlvaValues = [board.NumPieces]int32{
	board.Pawn:   10,
	board.Knight: 30,
	board.Bishop: 32,
	board.Rook:   50,
	board.Queen:  90,
	board.King:   50,
}

// historyTable is a per-(side, from, to) running bonus for quiet moves that
// caused beta cutoffs, saturating at historyLimit. order caps the weight it
// derives from it below the killer weights.
type historyTable [board.NumColors][board.NumSquares][board.NumSquares]uint32

const historyLimit = 16384

// add credits a quiet cutoff at the given depth with a depth² bonus, decaying
// proportionally as the counter saturates.
func (h *historyTable) add(c board.Color, m board.Move, depth int) {
	bonus := uint32(depth * depth)
	if bonus < 1 {
		bonus = 1
	}
	if bonus > historyLimit {
		bonus = historyLimit
	}
	current := h[c][m.From()][m.To()]
	penalty := current * bonus / historyLimit
	h[c][m.From()][m.To()] += bonus - penalty
}

func (h *historyTable) get(c board.Color, m board.Move) uint32 {
	return h[c][m.From()][m.To()]
}

// order computes the ordering weight for every move.
func order(b *board.Board, moves []board.Move, hashMove board.Move, hasHashMove bool, killers []board.Move, history *historyTable) []int32 {
	side := b.Turn()
	enemy := b.Occupied(side.Opponent())

	weights := make([]int32, len(moves))
	for i, m := range moves {
		switch {
		case hasHashMove && m == hashMove:
			weights[i] = hashMoveWeight
		case enemy.IsSet(m.To()):
			weights[i] = mvvlva(b, side, m)
		default:
			if w, ok := killerWeightFor(killers, m); ok {
				weights[i] = w
				break
			}
			h := history.get(side, m)
			if h > killerWeight-killerStep*3 {
				h = killerWeight - killerStep*3
			}
			weights[i] = int32(h)
		}
	}
	return weights
}

func mvvlva(b *board.Board, side board.Color, m board.Move) int32 {
	victim, _ := b.PieceAt(side.Opponent(), m.To())
	attacker, _ := b.PieceAt(side, m.From())
	return mvvlvaValues[victim]*10 - mvvlvaValues[attacker]
}

func killerWeightFor(killers []board.Move, m board.Move) (int32, bool) {
	for i, k := range killers {
		if k == m {
			return killerWeight - int32(i)*killerStep, true
		}
	}
	return 0, false
}

// MoveList yields moves in decreasing weight order via selection: each Next
// scans the remaining tail for the maximum. Cheaper than a full sort when a
// cutoff ends iteration early.
type MoveList struct {
	moves   []board.Move
	weights []int32
	used    int
}

func NewMoveList(moves []board.Move, weights []int32) *MoveList {
	return &MoveList{moves: moves, weights: weights}
}

func (l *MoveList) IsEmpty() bool {
	return len(l.moves) == 0
}

func (l *MoveList) Size() int {
	return len(l.moves)
}

// Next returns the highest-weight remaining move.
func (l *MoveList) Next() (board.Move, bool) {
	if l.used >= len(l.moves) {
		return board.NoMove, false
	}

	max := l.used
	for i := l.used + 1; i < len(l.moves); i++ {
		if l.weights[i] > l.weights[max] {
			max = i
		}
	}

	m := l.moves[max]
	l.moves[l.used], l.moves[max] = l.moves[max], l.moves[l.used]
	l.weights[l.used], l.weights[max] = l.weights[max], l.weights[l.used]
	l.used++

	return m, true
}
