package board

import "fmt"

// Perft returns the number of leaf nodes of the legal move tree below the
// current position at the given depth. The reference validation for move
// generation: counts must match the published tables exactly.
func Perft(b *Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}

	var nodes uint64
	for _, m := range GenerateAll(b) {
		if err := b.MakeMove(m); err != nil {
			panic(fmt.Sprintf("perft: %v", err))
		}
		nodes += Perft(b, depth-1)
		if err := b.UnmakeMove(); err != nil {
			panic(fmt.Sprintf("perft: %v", err))
		}
	}
	return nodes
}

// PerftDivide returns the per-root-move node counts at the given depth, keyed
// by root move; the map has no order.
func PerftDivide(b *Board, depth int) map[Move]uint64 {
	ret := map[Move]uint64{}
	for _, m := range GenerateAll(b) {
		if err := b.MakeMove(m); err != nil {
			panic(fmt.Sprintf("perft: %v", err))
		}
		ret[m] = Perft(b, depth-1)
		if err := b.UnmakeMove(); err != nil {
			panic(fmt.Sprintf("perft: %v", err))
		}
	}
	return ret
}
