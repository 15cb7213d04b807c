// Package engine encapsulates game-playing logic, search and evaluation.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/kresala/warden/pkg/board"
	"github.com/seekerror/logw"
)

// Line represents an opening line: e2e4 d7d5.
type Line []string

func (l Line) String() string {
	return strings.Join(l, " ")
}

// positionMap indexes book moves by position hash.
type positionMap map[board.ZobristHash][]board.Move

// Book is a static in-memory opening book, built at process start from the
// preparation lines below and indexed by (side, fullmove number, position
// hash). White lines contribute moves on White's turns only, and vice versa.
type Book struct {
	sides [board.NumColors]map[int]positionMap
}

// NewBook builds the opening book against the given zobrist table, replaying
// and validating every line from the starting position.
func NewBook(ctx context.Context, zt *board.ZobristTable) (*Book, error) {
	ret := &Book{}
	for c := board.ZeroColor; c < board.NumColors; c++ {
		ret.sides[c] = map[int]positionMap{}
	}

	for _, line := range openingsWhite {
		if err := ret.addLine(zt, board.White, line); err != nil {
			return nil, err
		}
	}
	for _, line := range openingsBlack {
		if err := ret.addLine(zt, board.Black, line); err != nil {
			return nil, err
		}
	}

	logw.Infof(ctx, "Opening book: %v white + %v black lines", len(openingsWhite), len(openingsBlack))
	return ret, nil
}

// Find returns the book moves for the position, if any. Once an empty list is
// returned, the book need not be consulted again for the game.
func (b *Book) Find(side board.Color, fullmove int, hash board.ZobristHash) []board.Move {
	positions, ok := b.sides[side][fullmove]
	if !ok {
		return nil
	}
	return positions[hash]
}

// Pick selects one of the legal book moves uniformly at random, if any.
func (b *Book) Pick(r *rand.Rand, side board.Color, fullmove int, hash board.ZobristHash, legal []board.Move) (board.Move, bool) {
	var candidates []board.Move
	for _, m := range b.Find(side, fullmove, hash) {
		for _, l := range legal {
			if m == l {
				candidates = append(candidates, m)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return board.NoMove, false
	}
	return candidates[r.Intn(len(candidates))], true
}

func (b *Book) addLine(zt *board.ZobristTable, side board.Color, line Line) error {
	pos := board.NewStartingBoard(zt)

	for i, str := range line {
		m, err := board.ParseMove(str)
		if err != nil {
			return fmt.Errorf("invalid line '%v': %v", line, err)
		}

		found := false
		for _, candidate := range board.GenerateAll(pos) {
			if candidate == m {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("invalid line '%v': move %v not legal", line, str)
		}

		if pos.Turn() == side {
			clock := pos.FullMoves()
			if b.sides[side][clock] == nil {
				b.sides[side][clock] = positionMap{}
			}

			key := pos.Hash()
			present := false
			for _, existing := range b.sides[side][clock][key] {
				if existing == m {
					present = true
					break
				}
			}
			if !present {
				b.sides[side][clock][key] = append(b.sides[side][clock][key], m)
			}
		}

		if err := pos.MakeMove(m); err != nil {
			return fmt.Errorf("invalid line '%v' at %v: %v", line, i, err)
		}
	}
	return nil
}

// White preparation: lines ending on a White move.
var openingsWhite = []Line{

	// -- e4 -- //

	// Russian
	{"e2e4", "e7e5", "g1f3", "g8f6", "f3e5", "f6e4", "d1e2"}, // Damiano variation
	{"e2e4", "e7e5", "g1f3", "g8f6", "f3e5", "d7d6", "e5f3"},
	{"e2e4", "e7e5", "g1f3", "g8f6", "f3e5", "b8c6", "e5c6"}, // Stafford gambit

	// Philidor
	{"e2e4", "e7e5", "g1f3", "d7d6", "d2d4", "e5d4", "f3d4"}, // Exchange
	{"e2e4", "e7e5", "g1f3", "d7d6", "d2d4", "c8g4", "d4e5"},

	// Two knights defense
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "d2d3"}, // Modern bishop opening

	// Giuoco Piano
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "f8c5", "b2b4"}, // Evans Gambit

	// Ruy Lopez
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6", "b5a4"}, // Morphy defense
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "g8f6", "e1g1"}, // Berlin defense
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "d7d6", "d2d4"}, // Steinitz defense
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "d7d6", "e1g1"},
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "f8c5", "e1g1"}, // Classical
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "f8c5", "c2c3"},

	// Scotch
	{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4", "e5d4", "f3d4"}, // Exchange
	{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4", "d7d6", "d4e5"}, // Black d6
	{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4", "d7d6", "f1b5"},
	{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4", "d7d6", "d4d5"},
	{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4", "g8f6", "d4d5"}, // Black Nf6
	{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4", "g8f6", "d4e5"},
	{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4", "g8f6", "b1c3"},

	// Scandinavian
	{"e2e4", "d7d5", "e4d5", "d8d5", "b1c3", "d5d6", "f1e2"},
	{"e2e4", "d7d5", "e4d5", "d8d5", "b1c3", "d5d8", "d2d4"},
	{"e2e4", "d7d5", "e4d5", "d8d5", "b1c3", "d5a5", "d2d4"},

	// Sicilian
	{"e2e4", "c7c5", "g1f3", "b8c6", "d2d4", "c5d4", "f3d4"},
	{"e2e4", "c7c5", "g1f3", "d7d6", "d2d4", "c5d4", "f3d4"},
	{"e2e4", "c7c5", "g1f3", "e7e6", "d2d4", "c5d4", "f3d4"},

	// French
	{"e2e4", "e7e6", "d2d4", "d7d5", "b1c3", "c7c5", "e4d5"},
	{"e2e4", "e7e6", "d2d4", "d7d5", "b1c3", "d5e4", "c3e4"},
	{"e2e4", "e7e6", "d2d4", "d7d5", "b1d2", "c7c5", "e4d5"},
	{"e2e4", "e7e6", "d2d4", "d7d5", "b1d2", "c7c5", "g1f3"},
	{"e2e4", "e7e6", "d2d4", "d7d5", "b1d2", "d5e4", "d2e4"},
	{"e2e4", "e7e6", "d2d4", "d7d5", "e4e5", "b8c6", "g1f3"},

	// Caro-Kann
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4e5", "c8f5", "g1f3"},
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4e5", "c8f5", "h2h4"},
	{"e2e4", "c7c6", "d2d4", "d7d5", "b1c3", "g8f6", "e4e5"},
	{"e2e4", "c7c6", "d2d4", "d7d5", "b1c3", "d5e4", "c3e4"}, // Main line
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4d5", "c6d5", "c2c4"}, // Panov attack
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4d5", "c6d5", "f1d3"},

	// Pirc
	{"e2e4", "d7d6", "d2d4", "g8f6", "b1c3"},

	// -- d4 -- //

	// London
	{"d2d4", "g8f6", "c1f4"}, // Transposes to the main line below, order does not matter
	{"d2d4", "d7d5", "c1f4", "b8c6", "e2e3"},
	{"d2d4", "d7d5", "c1f4", "g8f6", "e2e3", "b8c6", "g1f3"},
	{"d2d4", "d7d5", "c1f4", "g8f6", "e2e3", "e7e6", "g1f3"},
	{"d2d4", "d7d5", "c1f4", "g8f6", "e2e3", "c7c5", "c2c3"},

	// Zukertort
	{"d2d4", "d7d5", "g1f3", "b8c6", "c1f4", "g8f6", "e2e3"},
	{"d2d4", "d7d5", "g1f3", "b8c6", "c1f4", "c8f5", "e2e3"},
	{"d2d4", "d7d5", "g1f3", "b8c6", "c2c4", "e7e6", "b1c3"},
	{"d2d4", "d7d5", "g1f3", "b8c6", "c2c4", "d5c4", "e2e3"},
	{"d2d4", "d7d5", "g1f3", "b8c6", "c2c4", "d5c4", "b1c3"},
	{"d2d4", "d7d5", "g1f3", "b8c6", "c2c4", "d5c4", "d4d5"},

	// Queen's gambit
	{"d2d4", "d7d5", "c2c4"},
	{"d2d4", "d7d5", "c2c4", "d5c4", "g1f3"},                 // Accepted, normal
	{"d2d4", "d7d5", "c2c4", "d5c4", "e2e3"},                 // Accepted, old
	{"d2d4", "d7d5", "c2c4", "d5c4", "e2e4"},                 // Accepted, Saduleto
	{"d2d4", "d7d5", "c2c4", "c7c6", "g1f3"},                 // Slav Defense
	{"d2d4", "d7d5", "c2c4", "e7e6", "b1c3", "d5c4", "e2e4"}, // Declined, dxc4 capture
	{"d2d4", "d7d5", "c2c4", "e7e6", "b1c3", "d5c4", "e2e3"},
	{"d2d4", "d7d5", "c2c4", "e7e6", "b1c3", "g8f6", "c4d5"}, // Declined, normal line
	{"d2d4", "d7d5", "c2c4", "e7e6", "b1c3", "g8f6", "g1f3"},
	{"d2d4", "d7d5", "c2c4", "e7e6", "b1c3", "g8f6", "c1g5"},

	// Responses to 1. ...Nc6
	{"d2d4", "b8c6", "g1f3", "d7d5", "c1f4", "g8f6", "e2e3"},
	{"d2d4", "b8c6", "g1f3", "d7d5", "c1f4", "c8f5", "e2e3"},
	{"d2d4", "b8c6", "g1f3", "d7d5", "c1f4", "e7e6", "e2e3"},
	{"d2d4", "b8c6", "g1f3", "d7d5", "c2c4", "d5c4", "e2e3"},
	{"d2d4", "b8c6", "g1f3", "d7d5", "c2c4", "d5c4", "b1c3"},
	{"d2d4", "b8c6", "g1f3", "d7d5", "c2c4", "e7e6", "b1c3"},
	{"d2d4", "b8c6", "g1f3", "g8f6", "c2c4"},
	{"d2d4", "b8c6", "g1f3", "g8f6", "d4d5", "c6b4", "c2c4"},
}

// Black preparation: lines ending on a Black move.
var openingsBlack = []Line{

	// -- Against e4 -- //

	// Italian
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "f8c5", "d2d3", "g8f6"}, // Giuoco Piano
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "f8c5", "b2b4", "c5b4"}, // Evans Gambit
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "f3g5", "d7d5"}, // Fried liver

	// Ruy Lopez
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6", "b5c6", "d7c6"}, // Exchange
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5", "a7a6", "b5a4", "g8f6"},

	// Four knights
	{"e2e4", "e7e5", "g1f3", "b8c6", "b1c3", "g8f6", "f1c4", "f6e4"}, // Italian-like
	{"e2e4", "e7e5", "g1f3", "b8c6", "b1c3", "g8f6", "f1c4", "f8c5"},
	{"e2e4", "e7e5", "g1f3", "b8c6", "b1c3", "g8f6", "d2d4", "e5d4"}, // Scotch-like

	// Scotch
	{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4", "e5d4", "f3d4", "f8c5"},
	{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4", "e5d4", "f3d4", "g8f6"},
	{"e2e4", "e7e5", "g1f3", "b8c6", "d2d4", "e5d4", "f1c4", "g8f6"},

	// Center game
	{"e2e4", "e7e5", "d2d4", "e5d4", "d1d4", "b8c6", "d4d1", "g8f6"},
	{"e2e4", "e7e5", "d2d4", "e5d4", "d1d4", "b8c6", "d4d1", "f8c5"},
	{"e2e4", "e7e5", "d2d4", "e5d4", "d1d4", "b8c6", "d4e3", "g8f6"}, // Paulsen attack
	{"e2e4", "e7e5", "d2d4", "e5d4", "c2c3", "d7d5", "e4d5", "d8d5"}, // Danish gambit declined
	{"e2e4", "e7e5", "d2d4", "e5d4", "c2c3", "d4c3", "b1c3", "b8c6"}, // Danish gambit accepted
	{"e2e4", "e7e5", "d2d4", "e5d4", "c2c3", "d4c3", "b1c3", "f8b4"},
	{"e2e4", "e7e5", "d2d4", "e5d4", "c2c3", "d4c3", "f1c4", "c3b2"},

	// Caro-Kann
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4e5", "c8f5", "g1f3", "e7e6"}, // Advance variation
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4e5", "c8f5", "f1d3", "f5d3"},
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4e5", "c8f5", "b1c3", "e7e6"},
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4e5", "c8f5", "g2g4", "f5e4"},
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4d5", "c6d5", "b1c3", "b8c6"}, // Exchange variation
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4d5", "c6d5", "b1c3", "g8f6"},
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4d5", "c6d5", "g1f3", "b8c6"},
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4d5", "c6d5", "g1f3", "g8f6"},
	{"e2e4", "c7c6", "d2d4", "d7d5", "e4d5", "c6d5", "c2c4", "g8f6"}, // Panov attack
	{"e2e4", "c7c6", "f1c4", "d7d5", "c4b3", "d5e4"},                 // Hillbilly attack
	{"e2e4", "c7c6", "g1f3", "d7d5", "b1c3", "c8g4"},                 // Two knights attack
	{"e2e4", "c7c6", "g1f3", "d7d5", "e4d5", "c6d5"},
	{"e2e4", "c7c6", "b1c3", "d7d5"}, // Queen-side knight first

	// -- Against d4 -- //

	// Slav Defense
	{"d2d4", "d7d5", "c2c4", "c7c6", "b1c3", "g8f6", "g1f3", "e7e6"},
	{"d2d4", "d7d5", "c2c4", "c7c6", "g1f3", "g8f6"},

	// Queen's Gambit Declined
	{"d2d4", "d7d5", "c2c4", "e7e6", "b1c3", "g8f6"},
	{"d2d4", "d7d5", "c2c4", "e7e6", "g1f3", "g8f6"},

	// Anti-London
	{"d2d4", "d7d5", "c1f4", "g8f6", "e2e3", "c7c5"}, // Main (?) line
	{"d2d4", "d7d5", "c1f4", "g8f6", "g1f3", "c7c5"}, // Knight first, supposed to be bad
	{"d2d4", "d7d5", "c1f4", "g8f6", "b1c3", "e7e6"}, // Jobava-London
	{"d2d4", "d7d5", "c1f4", "g8f6", "b1c3", "a7a6"}, // Alternative Jobava line

	// -- Against e3 -- //

	{"e2e3", "d7d5", "d2d4", "g8f6", "g1f3", "e7e6"}, // Colle system with strange move order?

	// -- Against Nf3 -- //

	{"g1f3", "d7d5", "d2d4", "g8f6"},
	{"g1f3", "g8f6", "d2d4", "g7g6", "c2c4", "f8g7"},
}
