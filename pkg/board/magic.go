package board

// Sliding piece attacks via "magic" bitboards: a perfect-hash scheme mapping
// (square, blocker configuration) to an attack bitboard. For each square we
// mask the occupancy down to the squares where a blocker matters, multiply by
// a hand-tuned 64-bit magic and shift, and use the product as an index into a
// precomputed table. The tables are populated at process start by enumerating
// every blocker subset of each mask; the magic constants guarantee no
// colliding entries map to different attack sets.
//
// See: https://www.chessprogramming.org/Magic_Bitboards.

// RookAttackboard returns all potential moves/attacks for a Rook at the given
// square, given the occupancy of the board.
func RookAttackboard(occupied Bitboard, sq Square) Bitboard {
	m := &rookMagics[sq]
	return rookTable[m.offset+uint32((uint64(occupied&m.mask)*m.magic)>>m.shift)]
}

// BishopAttackboard returns all potential moves/attacks for a Bishop at the
// given square, given the occupancy of the board.
func BishopAttackboard(occupied Bitboard, sq Square) Bitboard {
	m := &bishopMagics[sq]
	return bishopTable[m.offset+uint32((uint64(occupied&m.mask)*m.magic)>>m.shift)]
}

// QueenAttackboard returns all potential moves/attacks for a Queen at the
// given square, given the occupancy of the board.
func QueenAttackboard(occupied Bitboard, sq Square) Bitboard {
	return RookAttackboard(occupied, sq) | BishopAttackboard(occupied, sq)
}

// magic holds the lookup data for a single (piece, square) pair.
type magic struct {
	mask   Bitboard // relevant occupancy mask (excludes edges along each ray)
	magic  uint64   // magic multiplier
	shift  uint8    // 64 - popcount(mask)
	offset uint32   // base index into the attack table
}

var (
	bishopMagics [NumSquares]magic
	rookMagics   [NumSquares]magic

	bishopTable [5248]Bitboard
	rookTable   [102400]Bitboard
)

// Hand-tuned magic multipliers. Finding them is a trial-and-error search; these
// are the well-known constants from chessprogramming.org.
var bishopMagicNumbers = [NumSquares]uint64{
	0x0002020202020200, 0x0002020202020000, 0x0004010202000000, 0x0004040080000000,
	0x0001104000000000, 0x0000821040000000, 0x0000410410400000, 0x0000104104104000,
	0x0000040404040400, 0x0000020202020200, 0x0000040102020000, 0x0000040400800000,
	0x0000011040000000, 0x0000008210400000, 0x0000004104104000, 0x0000002082082000,
	0x0004000808080800, 0x0002000404040400, 0x0001000202020200, 0x0000800802004000,
	0x0000800400A00000, 0x0000200100884000, 0x0000400082082000, 0x0000200041041000,
	0x0002080010101000, 0x0001040008080800, 0x0000208004010400, 0x0000404004010200,
	0x0000840000802000, 0x0000404002011000, 0x0000808001041000, 0x0000404000820800,
	0x0001041000202000, 0x0000820800101000, 0x0000104400080800, 0x0000020080080080,
	0x0000404040040100, 0x0000808100020100, 0x0001010100020800, 0x0000808080010400,
	0x0000820820004000, 0x0000410410002000, 0x0000082088001000, 0x0000002011000800,
	0x0000080100400400, 0x0001010101000200, 0x0002020202000400, 0x0001010101000200,
	0x0000410410400000, 0x0000208208200000, 0x0000002084100000, 0x0000000020880000,
	0x0000001002020000, 0x0000040408020000, 0x0004040404040000, 0x0002020202020000,
	0x0000104104104000, 0x0000002082082000, 0x0000000020841000, 0x0000000000208800,
	0x0000000010020200, 0x0000000404080200, 0x0000040404040400, 0x0002020202020200,
}

var rookMagicNumbers = [NumSquares]uint64{
	0x0080001020400080, 0x0040001000200040, 0x0080081000200080, 0x0080040800100080,
	0x0080020400080080, 0x0080010200040080, 0x0080008001000200, 0x0080002040800100,
	0x0000800020400080, 0x0000400020005000, 0x0000801000200080, 0x0000800800100080,
	0x0000800400080080, 0x0000800200040080, 0x0000800100020080, 0x0000800040800100,
	0x0000208000400080, 0x0000404000201000, 0x0000808010002000, 0x0000808008001000,
	0x0000808004000800, 0x0000808002000400, 0x0000010100020004, 0x0000020000408104,
	0x0000208080004000, 0x0000200040005000, 0x0000100080200080, 0x0000080080100080,
	0x0000040080080080, 0x0000020080040080, 0x0000010080800200, 0x0000800080004100,
	0x0000204000800080, 0x0000200040401000, 0x0000100080802000, 0x0000080080801000,
	0x0000040080800800, 0x0000020080800400, 0x0000020001010004, 0x0000800040800100,
	0x0000204000808000, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000010002008080, 0x0000004081020004,
	0x0000204000800080, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000800100020080, 0x0000800041000080,
	0x00FFFCDDFCED714A, 0x007FFCDDFCED714A, 0x003FFFCDFFD88096, 0x0000040810002101,
	0x0001000204080011, 0x0001000204000801, 0x0001000082000401, 0x0001FFFAABFAD1A2,
}

func init() {
	var offset uint32
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		mask := bishopAttacksSlow(sq, EmptyBitboard) &^ edges
		bits := mask.PopCount()

		bishopMagics[sq] = magic{
			mask:   mask,
			magic:  bishopMagicNumbers[sq],
			shift:  uint8(64 - bits),
			offset: offset,
		}

		entries := 1 << bits
		for i := 0; i < entries; i++ {
			occ := indexToOccupancy(i, mask)
			idx := (uint64(occ) * bishopMagicNumbers[sq]) >> (64 - bits)
			bishopTable[offset+uint32(idx)] = bishopAttacksSlow(sq, occ)
		}
		offset += uint32(entries)
	}

	offset = 0
	for sq := ZeroSquare; sq < NumSquares; sq++ {
		mask := rookMaskFor(sq)
		bits := mask.PopCount()

		rookMagics[sq] = magic{
			mask:   mask,
			magic:  rookMagicNumbers[sq],
			shift:  uint8(64 - bits),
			offset: offset,
		}

		entries := 1 << bits
		for i := 0; i < entries; i++ {
			occ := indexToOccupancy(i, mask)
			idx := (uint64(occ) * rookMagicNumbers[sq]) >> (64 - bits)
			rookTable[offset+uint32(idx)] = rookAttacksSlow(sq, occ)
		}
		offset += uint32(entries)
	}
}

// edges are irrelevant as blockers for a bishop: its rays always end there.
var edges = BitRank(Rank1) | BitRank(Rank8) | BitFile(FileA) | BitFile(FileH)

// rookMaskFor is the rook's file without ranks 1 and 8 plus its rank without
// files a and h, minus the rook's own square. A rook on an edge keeps the
// inner squares of that edge line; the corner squares are dropped.
func rookMaskFor(sq Square) Bitboard {
	mask := EmptyBitboard
	f, r := sq.File(), sq.Rank()
	for rr := Rank2; rr < Rank8; rr++ {
		if rr != r {
			mask |= BitMask(NewSquare(f, rr))
		}
	}
	for ff := FileB; ff < FileH; ff++ {
		if ff != f {
			mask |= BitMask(NewSquare(ff, r))
		}
	}
	return mask
}

// indexToOccupancy spreads the bits of an enumeration index over the member
// squares of the mask, in ascending square order.
func indexToOccupancy(index int, mask Bitboard) Bitboard {
	occ := EmptyBitboard
	for i := 0; mask != 0; i++ {
		var sq Square
		sq, mask = mask.PopSquare()
		if index&(1<<i) != 0 {
			occ |= BitMask(sq)
		}
	}
	return occ
}

var slideDeltas = map[Piece][][2]int{
	Rook:   {{0, 1}, {0, -1}, {1, 0}, {-1, 0}},
	Bishop: {{1, 1}, {1, -1}, {-1, 1}, {-1, -1}},
}

func attacksSlow(p Piece, sq Square, occupied Bitboard) Bitboard {
	ret := EmptyBitboard
	for _, d := range slideDeltas[p] {
		f, r := sq.File().V(), sq.Rank().V()
		for {
			f, r = f+d[0], r+d[1]
			if f < 0 || f > 7 || r < 0 || r > 7 {
				break
			}
			next := NewSquare(File(f), Rank(r))
			ret |= BitMask(next)
			if occupied.IsSet(next) {
				break
			}
		}
	}
	return ret
}

// rookAttacksSlow computes rook attacks by ray-walking. Table construction only.
func rookAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	return attacksSlow(Rook, sq, occupied)
}

// bishopAttacksSlow computes bishop attacks by ray-walking. Table construction only.
func bishopAttacksSlow(sq Square, occupied Bitboard) Bitboard {
	return attacksSlow(Bishop, sq, occupied)
}
