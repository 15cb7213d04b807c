// Package search contains game tree search functionality and utilities.
package search

import (
	"context"

	"github.com/kresala/warden/pkg/board"
	"github.com/kresala/warden/pkg/eval"
	"github.com/seekerror/logw"
)

// Bound represents the precision of a -- possibly inexact -- search score.
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound       // a beta cutoff occurred
	UpperBound       // alpha was never improved
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	default:
		return "?"
	}
}

// entry is a transposition table slot. 16 bytes.
type entry struct {
	hash  board.ZobristHash // full hash for verification
	depth int16             // depth searched; negative within quiescence
	bound Bound
	score eval.Score
	move  board.Move
}

// TranspositionTable is a fixed-capacity position cache to speed up search.
// Indexing is hash mod capacity; replacement keeps the deeper entry, with
// always-replace on equal depth so recent results win ties. Single-owner, not
// thread-safe.
type TranspositionTable struct {
	entries []entry
	used    int
}

// NewTranspositionTable allocates a table of the given size in megabytes.
func NewTranspositionTable(ctx context.Context, sizeMB uint64) *TranspositionTable {
	n := (sizeMB << 20) / 16

	logw.Infof(ctx, "Allocating %vMB TT with %v entries", sizeMB, n)

	return &TranspositionTable{
		entries: make([]entry, n),
	}
}

func (t *TranspositionTable) slot(hash board.ZobristHash) *entry {
	return &t.entries[uint64(hash)%uint64(len(t.entries))]
}

// Get returns the stored score for the position iff the slot holds this very
// position at sufficient depth and the score is usable within [alpha, beta]:
// an exact score always, a beta-cutoff bound if it cannot raise alpha, an
// alpha-unimproved bound if it cannot fall below beta.
func (t *TranspositionTable) Get(hash board.ZobristHash, depth int, alpha, beta eval.Score) (eval.Score, bool) {
	e := t.slot(hash)
	if e.hash != hash || int(e.depth) < depth {
		return 0, false
	}

	switch e.bound {
	case ExactBound:
		return e.score, true
	case LowerBound:
		if e.score <= alpha {
			return e.score, true
		}
	case UpperBound:
		if e.score >= beta {
			return e.score, true
		}
	}
	return 0, false
}

// GetMove returns the stored move whenever the slot hash matches, ignoring
// depth. Used purely for move ordering and PV reconstruction.
func (t *TranspositionTable) GetMove(hash board.ZobristHash) (board.Move, bool) {
	e := t.slot(hash)
	if e.hash == hash && e.move != board.NoMove {
		return e.move, true
	}
	return board.NoMove, false
}

// Set stores the entry, replacing an empty slot, a different position, or an
// equal-or-shallower result for the same position.
func (t *TranspositionTable) Set(hash board.ZobristHash, depth int, bound Bound, score eval.Score, move board.Move) {
	e := t.slot(hash)
	if e.hash == hash && int(e.depth) > depth {
		return
	}
	if e.hash == 0 {
		t.used++
	}
	*e = entry{hash: hash, depth: int16(depth), bound: bound, score: score, move: move}
}

// Used returns the utilization in permille, as reported by UCI hashfull.
func (t *TranspositionTable) Used() int {
	return t.used * 1000 / len(t.entries)
}
