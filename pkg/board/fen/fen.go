// Package fen implements Forsyth-Edwards Notation encoding and decoding of
// chess positions.
//
// See: https://en.wikipedia.org/wiki/Forsyth–Edwards_Notation.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kresala/warden/pkg/board"
)

// Initial is the starting position.
const Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// NewBoard returns a board decoded from the given FEN string.
func NewBoard(zt *board.ZobristTable, fen string) (*board.Board, error) {
	return Decode(zt, fen)
}

// Decode decodes a 6-field FEN position into a fresh board. The board is left
// untouched by parse errors: all fields are validated before mutation starts.
func Decode(zt *board.ZobristTable, fen string) (*board.Board, error) {
	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) != 6 {
		return nil, fmt.Errorf("invalid fen: '%v': expected 6 fields", fen)
	}

	placements, err := parsePlacement(fields[0])
	if err != nil {
		return nil, fmt.Errorf("invalid fen: '%v': %v", fen, err)
	}

	var turn board.Color
	switch fields[1] {
	case "w":
		turn = board.White
	case "b":
		turn = board.Black
	default:
		return nil, fmt.Errorf("invalid fen: '%v': bad turn '%v'", fen, fields[1])
	}

	castling := fields[2]
	if castling != "-" && strings.Trim(castling, "KQkq") != "" {
		return nil, fmt.Errorf("invalid fen: '%v': bad castling '%v'", fen, castling)
	}

	var enpassant board.Square
	hasEnpassant := false
	if fields[3] != "-" {
		sq, err := board.ParseSquareStr(fields[3])
		if err != nil {
			return nil, fmt.Errorf("invalid fen: '%v': %v", fen, err)
		}
		enpassant = sq
		hasEnpassant = true
	}

	halfMoves, err := strconv.Atoi(fields[4])
	if err != nil || halfMoves < 0 {
		return nil, fmt.Errorf("invalid fen: '%v': bad halfmove clock '%v'", fen, fields[4])
	}
	fullMoves, err := strconv.Atoi(fields[5])
	if err != nil || fullMoves < 1 {
		return nil, fmt.Errorf("invalid fen: '%v': bad fullmove counter '%v'", fen, fields[5])
	}

	b := board.NewBoard(zt)
	for _, p := range placements {
		b.Put(p.color, p.piece, p.sq)
	}
	b.SetTurn(turn)
	b.SetCastleKingside(board.White, strings.Contains(castling, "K"))
	b.SetCastleQueenside(board.White, strings.Contains(castling, "Q"))
	b.SetCastleKingside(board.Black, strings.Contains(castling, "k"))
	b.SetCastleQueenside(board.Black, strings.Contains(castling, "q"))
	if hasEnpassant {
		b.SetEnPassant(enpassant)
	}
	b.SetClocks(halfMoves, fullMoves)
	b.UpdateHash()

	if b.Pieces(board.White, board.King).PopCount() != 1 || b.Pieces(board.Black, board.King).PopCount() != 1 {
		return nil, fmt.Errorf("invalid fen: '%v': invalid number of kings", fen)
	}
	return b, nil
}

type placement struct {
	sq    board.Square
	color board.Color
	piece board.Piece
}

func parsePlacement(str string) ([]placement, error) {
	ranks := strings.Split(str, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("expected 8 ranks: '%v'", str)
	}

	var ret []placement
	for i, line := range ranks {
		r := board.Rank7 + 1 - board.Rank(i) // ranks are listed 8 down to 1
		f := board.FileA

		for _, c := range line {
			switch {
			case unicode.IsDigit(c):
				f += board.File(c - '0')
			default:
				piece, ok := board.ParsePiece(c)
				if !ok {
					return nil, fmt.Errorf("invalid piece '%c'", c)
				}
				color := board.Black
				if unicode.IsUpper(c) {
					color = board.White
				}
				if !f.IsValid() {
					return nil, fmt.Errorf("rank overflow: '%v'", line)
				}
				ret = append(ret, placement{sq: board.NewSquare(f, r), color: color, piece: piece})
				f++
			}
		}
		if f != board.NumFiles {
			return nil, fmt.Errorf("incomplete rank: '%v'", line)
		}
	}
	return ret, nil
}

// Encode encodes the board as a 6-field FEN string. The en passant field
// reflects the board's lazy target: it is emitted only when set.
func Encode(b *board.Board) string {
	var sb strings.Builder

	for r := board.NumRanks; r > 0; r-- {
		if r != board.NumRanks {
			sb.WriteRune('/')
		}
		empty := 0
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			c, p, ok := b.Square(board.NewSquare(f, r-1))
			if !ok {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			if c == board.White {
				sb.WriteString(strings.ToUpper(p.String()))
			} else {
				sb.WriteString(p.String())
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
	}

	castling := ""
	if b.CastleKingside(board.White) {
		castling += "K"
	}
	if b.CastleQueenside(board.White) {
		castling += "Q"
	}
	if b.CastleKingside(board.Black) {
		castling += "k"
	}
	if b.CastleQueenside(board.Black) {
		castling += "q"
	}
	if castling == "" {
		castling = "-"
	}

	enpassant := "-"
	if sq, ok := b.EnPassant(); ok {
		enpassant = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), b.Turn(), castling, enpassant, b.HalfMoveClock(), b.FullMoves())
}
