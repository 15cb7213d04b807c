package board

import "fmt"

// Move represents a move as a bit-packed value. 16 bits:
//
//	bits 0-5:   source square
//	bits 6-11:  destination square
//	bits 12-13: promotion kind (queen, rook, bishop, knight)
//	bit 14:     promotion flag
//
// Castling and en passant captures are encoded as ordinary king/pawn moves; the
// board infers their effect from the moving piece and its state. Equality and
// ordering are on the raw 16 bits.
type Move uint16

// NoMove is the zero Move, used as "no move" in search and tables.
const NoMove Move = 0

const promotionFlag Move = 1 << 14

func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

func NewPromotionMove(from, to Square, p Promotion) Move {
	return Move(from) | Move(to)<<6 | Move(p)<<12 | promotionFlag
}

// ParseMove parses a move in pure algebraic coordinate notation, such as
// "a2a4" or "a7a8q". The parsed move carries no contextual information, such
// as whether it castles or captures en passant.
func ParseMove(str string) (Move, error) {
	runes := []rune(str)

	if len(runes) < 4 || len(runes) > 5 {
		return NoMove, fmt.Errorf("invalid move: '%v'", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return NoMove, fmt.Errorf("invalid from: '%v': %v", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return NoMove, fmt.Errorf("invalid to: '%v': %v", str, err)
	}

	if len(runes) == 5 {
		var p Promotion
		switch runes[4] {
		case 'q', 'Q':
			p = PromoQueen
		case 'r', 'R':
			p = PromoRook
		case 'b', 'B':
			p = PromoBishop
		case 'n', 'N':
			p = PromoKnight
		default:
			return NoMove, fmt.Errorf("invalid promotion: '%v'", str)
		}
		return NewPromotionMove(from, to, p), nil
	}

	return NewMove(from, to), nil
}

func (m Move) From() Square {
	return Square(m & 0x3f)
}

func (m Move) To() Square {
	return Square((m >> 6) & 0x3f)
}

func (m Move) IsPromotion() bool {
	return m&promotionFlag != 0
}

// Promotion returns the promotion kind. Only meaningful if IsPromotion.
func (m Move) Promotion() Promotion {
	return Promotion((m >> 12) & 0x3)
}

func (m Move) String() string {
	if m.IsPromotion() {
		return fmt.Sprintf("%v%v%v", m.From(), m.To(), m.Promotion())
	}
	return fmt.Sprintf("%v%v", m.From(), m.To())
}

// PrintMoves formats a move list as a space-separated string.
func PrintMoves(moves []Move) string {
	ret := ""
	for i, m := range moves {
		if i > 0 {
			ret += " "
		}
		ret += m.String()
	}
	return ret
}
