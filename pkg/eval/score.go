// Package eval contains static position evaluation logic and utilities.
package eval

import (
	"fmt"

	"github.com/kresala/warden/pkg/board"
)

// Score is a signed move or position score in centipawns. Positive favors the
// point of view of the caller: Evaluate returns White's perspective, the
// search negates per side. Mate scores are encoded near +/-10000 with the
// distance to mate folded in. 16 bits.
type Score int16

const (
	MinScore Score = -30000
	MaxScore Score = 30000

	// MateValue is the base magnitude of a mate score; a mate in n plies from
	// the root scores MateValue - n for the winner.
	MateValue Score = 10000

	// mateBound separates mate scores from heuristic scores.
	mateBound Score = 9000
)

// MatedScore returns the score for the side to move being checkmated at the
// given ply from the root. Deeper mates score closer to zero, so the search
// prefers the shortest mate.
func MatedScore(ply int) Score {
	return -(MateValue - Score(ply))
}

// IsMate returns true iff the score indicates a forced mate either way.
func (s Score) IsMate() bool {
	return s > mateBound || s < -mateBound
}

// MateIn returns the signed number of full moves to mate. Only meaningful if
// IsMate.
func (s Score) MateIn() int {
	if s < 0 {
		return -int(1+(MateValue+s)) / 2
	}
	return int(1+(MateValue-s)) / 2
}

// Abs returns the absolute value of the score.
func (s Score) Abs() Score {
	if s < 0 {
		return -s
	}
	return s
}

func (s Score) String() string {
	if s.IsMate() {
		return fmt.Sprintf("#%v", s.MateIn())
	}
	return fmt.Sprintf("%.2f", float64(s)/100)
}

// Max returns the largest of the given scores.
func Max(a, b Score) Score {
	if a < b {
		return b
	}
	return a
}

// Min returns the smallest of the given scores.
func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}

// Unit returns the signed unit for the color: 1 for White and -1 for Black.
func Unit(c board.Color) Score {
	if c == board.White {
		return 1
	}
	return -1
}
