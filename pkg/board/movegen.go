package board

// Legal move generation using check and pin masks. Every emitted move is
// legal; no subsequent legality filter runs. The pipeline computes, for the
// side to move: a check mask restricting non-king destinations while in
// check, and two disjoint pin masks (rank/file and diagonal) restricting
// pinned pieces to their pin rays.

const (
	allMoves     = false
	capturesOnly = true
)

// GenerateAll returns every legal move for the side to move.
func GenerateAll(b *Board) []Move {
	return generate(b, allMoves)
}

// GenerateCaptures returns legal captures and capture-promotions for the side
// to move. Used by quiescence search.
func GenerateCaptures(b *Board) []Move {
	return generate(b, capturesOnly)
}

func generate(b *Board, mode bool) []Move {
	side := b.turn
	opponent := side.Opponent()

	moves := make([]Move, 0, 64)

	checks, checkMask := checkMask(b, side)

	king := b.pieces[side][King]
	kingSq := king.FirstSquare()

	parallelPins := parallelPinMask(b, side, kingSq)
	diagonalPins := diagonalPinMask(b, side, kingSq)

	legalTargets := ^b.occupied[side]
	if mode == capturesOnly {
		legalTargets = b.occupied[opponent]
	}

	emit(&moves, king, func(sq Square) Bitboard {
		return kingTargets(b, sq, side, legalTargets)
	})

	if checks > 1 {
		// Double check: only king moves are legal.
		return moves
	}

	legalTargets &= checkMask

	generatePawns(b, side, &moves, mode, parallelPins, diagonalPins, checkMask)

	emit(&moves, b.pieces[side][Knight]&^(parallelPins|diagonalPins), func(sq Square) Bitboard {
		return KnightAttackboard(sq) & legalTargets
	})
	emit(&moves, b.pieces[side][Bishop]&^parallelPins, func(sq Square) Bitboard {
		return bishopTargets(b, sq, diagonalPins) & legalTargets
	})
	emit(&moves, b.pieces[side][Rook]&^diagonalPins, func(sq Square) Bitboard {
		return rookTargets(b, sq, parallelPins) & legalTargets
	})
	emit(&moves, b.pieces[side][Queen]&^(parallelPins&diagonalPins), func(sq Square) Bitboard {
		return queenTargets(b, sq, parallelPins, diagonalPins) & legalTargets
	})

	return moves
}

func emit(moves *[]Move, mask Bitboard, targets func(Square) Bitboard) {
	for mask != 0 {
		var from Square
		from, mask = mask.PopSquare()
		for bb := targets(from); bb != 0; {
			var to Square
			to, bb = bb.PopSquare()
			*moves = append(*moves, NewMove(from, to))
		}
	}
}

// checkMask returns the number of pieces checking the side's king and the mask
// of destinations that resolve a single check: the attacker square plus, for
// sliders, the squares between attacker and king. Full board if not in check.
func checkMask(b *Board, side Color) (int, Bitboard) {
	opponent := side.Opponent()
	king := b.pieces[side][King]
	kingSq := king.FirstSquare()

	checks := 0
	mask := EmptyBitboard

	if pawns := b.pieces[opponent][Pawn] & PawnAttackboard(side, kingSq); pawns != 0 {
		checks++
		mask |= pawns
	}

	if knights := b.pieces[opponent][Knight] & KnightAttackboard(kingSq); knights != 0 {
		checks++
		mask |= knights
	}

	if bishops := (b.pieces[opponent][Bishop] | b.pieces[opponent][Queen]) & BishopAttackboard(b.anyPiece, kingSq); bishops != 0 {
		checks++
		attacker := bishops.FirstSquare()
		mask |= Between(kingSq, attacker) | BitMask(attacker)
	}

	if rooks := (b.pieces[opponent][Rook] | b.pieces[opponent][Queen]) & RookAttackboard(b.anyPiece, kingSq); rooks != 0 {
		checks += rooks.PopCount()
		attacker := rooks.FirstSquare()
		mask |= Between(kingSq, attacker) | BitMask(attacker)
	}

	if mask == 0 {
		mask = FullBitboard
	}

	return checks, mask
}

// attackMask returns all squares attacked by the given color, computed with
// the opposing king removed from the occupancy so that sliders attack through
// it. Consumed by king move generation for the opposing side.
func attackMask(b *Board, side Color) Bitboard {
	opponent := side.Opponent()

	oppKing := b.pieces[opponent][King].FirstSquare()
	if KingAttackboard(oppKing)&^b.occupied[opponent] == 0 {
		// The opposing king cannot move, so the mask is irrelevant.
		return EmptyBitboard
	}

	mask := EmptyBitboard
	occupied := b.anyPiece &^ b.pieces[opponent][King]

	mask |= PawnCaptureboard(side, b.pieces[side][Pawn])

	for bb := b.pieces[side][Knight]; bb != 0; {
		var sq Square
		sq, bb = bb.PopSquare()
		mask |= KnightAttackboard(sq)
	}

	for bb := b.pieces[side][Bishop] | b.pieces[side][Queen]; bb != 0; {
		var sq Square
		sq, bb = bb.PopSquare()
		mask |= BishopAttackboard(occupied, sq)
	}

	for bb := b.pieces[side][Rook] | b.pieces[side][Queen]; bb != 0; {
		var sq Square
		sq, bb = bb.PopSquare()
		mask |= RookAttackboard(occupied, sq)
	}

	mask |= KingAttackboard(b.pieces[side][King].FirstSquare())

	return mask
}

// pinMask accumulates rays from the king to each candidate pinner that cross
// exactly one own piece, including both endpoints.
func pinMask(b *Board, side Color, kingSq Square, pinners Bitboard) Bitboard {
	ret := EmptyBitboard
	for pinners != 0 {
		var pinner Square
		pinner, pinners = pinners.PopSquare()

		ray := Between(kingSq, pinner) | BitMask(pinner)
		if (ray & b.occupied[side]).PopCount() == 1 {
			ret |= ray
		}
	}
	return ret
}

func parallelPinMask(b *Board, side Color, kingSq Square) Bitboard {
	opponent := side.Opponent()
	pinners := RookAttackboard(b.occupied[opponent], kingSq) & (b.pieces[opponent][Rook] | b.pieces[opponent][Queen])
	return pinMask(b, side, kingSq, pinners)
}

func diagonalPinMask(b *Board, side Color, kingSq Square) Bitboard {
	opponent := side.Opponent()
	pinners := BishopAttackboard(b.occupied[opponent], kingSq) & (b.pieces[opponent][Bishop] | b.pieces[opponent][Queen])
	return pinMask(b, side, kingSq, pinners)
}

func kingTargets(b *Board, kingSq Square, side Color, legalMask Bitboard) Bitboard {
	enemyAttacks := b.Attacks(side.Opponent())
	targets := KingAttackboard(kingSq) & legalMask &^ enemyAttacks

	if b.castleKingside[side] &&
		b.pieceAt[side][rookKingside[side].FirstSquare()] == Rook &&
		kingStart[side]&enemyAttacks == 0 &&
		kingsideCastleBlocker[side]&^b.anyPiece&^enemyAttacks != 0 &&
		kingsideCastleTarget[side]&legalMask&^b.anyPiece&^enemyAttacks != 0 {
		targets |= kingsideCastleTarget[side]
	}

	if b.castleQueenside[side] &&
		b.anyPiece&queensideCastleBlockerN[side] == 0 &&
		b.pieceAt[side][rookQueenside[side].FirstSquare()] == Rook &&
		kingStart[side]&enemyAttacks == 0 &&
		queensideCastleBlockerQ[side]&^b.anyPiece&^enemyAttacks != 0 &&
		queensideCastleTarget[side]&legalMask&^b.anyPiece&^enemyAttacks != 0 {
		targets |= queensideCastleTarget[side]
	}

	return targets
}

func rookTargets(b *Board, sq Square, parallelPins Bitboard) Bitboard {
	if parallelPins.IsSet(sq) {
		return RookAttackboard(b.anyPiece, sq) & parallelPins
	}
	return RookAttackboard(b.anyPiece, sq)
}

func bishopTargets(b *Board, sq Square, diagonalPins Bitboard) Bitboard {
	if diagonalPins.IsSet(sq) {
		return BishopAttackboard(b.anyPiece, sq) & diagonalPins
	}
	return BishopAttackboard(b.anyPiece, sq)
}

func queenTargets(b *Board, sq Square, parallelPins, diagonalPins Bitboard) Bitboard {
	switch {
	case diagonalPins.IsSet(sq):
		return BishopAttackboard(b.anyPiece, sq) & diagonalPins
	case parallelPins.IsSet(sq):
		return RookAttackboard(b.anyPiece, sq) & parallelPins
	default:
		return QueenAttackboard(b.anyPiece, sq)
	}
}

// generatePawns emits pawn moves in four bitboard streams: single push, double
// push, left capture and right capture, each masked by promotion, pin and
// check constraints. Promotion targets emit four moves per destination.
func generatePawns(b *Board, side Color, moves *[]Move, mode bool, parallelPins, diagonalPins, checkMask Bitboard) {
	opponent := side.Opponent()
	pawns := b.pieces[side][Pawn]

	// A parallel-pinned pawn can never capture; a diagonally-pinned pawn may
	// only capture along its pin ray.
	mayTake := pawns &^ parallelPins
	mayTakeUnpinned := mayTake &^ diagonalPins
	mayTakePinned := mayTake & diagonalPins

	var attacksLeft, attacksRight Bitboard
	if side == White {
		attacksLeft = ((mayTakeUnpinned << 7) &^ BitFile(FileH)) | ((mayTakePinned << 7) &^ BitFile(FileH) & diagonalPins)
		attacksRight = ((mayTakeUnpinned << 9) &^ BitFile(FileA)) | ((mayTakePinned << 9) &^ BitFile(FileA) & diagonalPins)
	} else {
		attacksLeft = ((mayTakeUnpinned >> 7) &^ BitFile(FileA)) | ((mayTakePinned >> 7) &^ BitFile(FileA) & diagonalPins)
		attacksRight = ((mayTakeUnpinned >> 9) &^ BitFile(FileH)) | ((mayTakePinned >> 9) &^ BitFile(FileH) & diagonalPins)
	}
	attacksLeft &= checkMask & b.occupied[opponent]
	attacksRight &= checkMask & b.occupied[opponent]

	// A diagonally-pinned pawn can never walk; a parallel-pinned pawn may only
	// walk along its file pin.
	mayWalk := pawns &^ diagonalPins
	walkUnpinned := PawnPushboard(side, mayWalk&^parallelPins) &^ b.anyPiece
	walkPinned := PawnPushboard(side, mayWalk&parallelPins) &^ b.anyPiece & parallelPins

	walk := (walkUnpinned | walkPinned) & checkMask

	jumpRank := BitRank(Rank3.Relative(side))
	double := PawnPushboard(side, (walkUnpinned|walkPinned)&jumpRank) &^ b.anyPiece & checkMask

	lastRank := PawnPromotionRank(side)

	if pawns&BitRank(Rank7.Relative(side)) != 0 {
		promoLeft := attacksLeft & lastRank
		promoRight := attacksRight & lastRank
		promoWalk := walk & lastRank

		emitPromotions(moves, promoLeft, func(to Square) Square {
			if side == White {
				return to.SouthEast()
			}
			return to.NorthWest()
		})
		emitPromotions(moves, promoRight, func(to Square) Square {
			if side == White {
				return to.SouthWest()
			}
			return to.NorthEast()
		})
		if mode != capturesOnly {
			emitPromotions(moves, promoWalk, func(to Square) Square {
				if side == White {
					return to.South()
				}
				return to.North()
			})
		}
	}

	walk &^= lastRank
	attacksLeft &^= lastRank
	attacksRight &^= lastRank

	for attacksLeft != 0 {
		var to Square
		to, attacksLeft = attacksLeft.PopSquare()
		if side == White {
			*moves = append(*moves, NewMove(to.SouthEast(), to))
		} else {
			*moves = append(*moves, NewMove(to.NorthWest(), to))
		}
	}
	for attacksRight != 0 {
		var to Square
		to, attacksRight = attacksRight.PopSquare()
		if side == White {
			*moves = append(*moves, NewMove(to.SouthWest(), to))
		} else {
			*moves = append(*moves, NewMove(to.NorthEast(), to))
		}
	}

	if mode != capturesOnly {
		for walk != 0 {
			var to Square
			to, walk = walk.PopSquare()
			if side == White {
				*moves = append(*moves, NewMove(to.South(), to))
			} else {
				*moves = append(*moves, NewMove(to.North(), to))
			}
		}
		for double != 0 {
			var to Square
			to, double = double.PopSquare()
			if side == White {
				*moves = append(*moves, NewMove(to.South().South(), to))
			} else {
				*moves = append(*moves, NewMove(to.North().North(), to))
			}
		}
	}

	if b.enpassant == 0 {
		return
	}

	// En passant. The captured pawn sits "behind" the target square.
	target := b.enpassant
	targetSq := target.FirstSquare()

	enemyPawn := target << 8
	if side == White {
		enemyPawn = target >> 8
	}

	if (enemyPawn|target)&checkMask == 0 {
		return
	}

	attackers := PawnAttackboard(opponent, targetSq) & mayTake

	// Discovered check guard: capturing en passant removes two pawns from the
	// capturer's king rank at once, which can expose the king to a rook or
	// queen on that rank.
	kingOnRank := b.pieces[side][King] & BitRank(enemyPawn.FirstSquare().Rank())
	rooks := b.pieces[opponent][Rook] | b.pieces[opponent][Queen]

	for attackers != 0 {
		var from Square
		from, attackers = attackers.PopSquare()
		source := BitMask(from)

		if source&diagonalPins != 0 && target&diagonalPins == 0 {
			continue
		}

		if kingOnRank != 0 && rooks != 0 {
			removed := enemyPawn | source
			kingSq := b.pieces[side][King].FirstSquare()
			if RookAttackboard(b.anyPiece&^removed, kingSq)&rooks != 0 {
				break
			}
		}

		*moves = append(*moves, NewMove(from, targetSq))
	}
}

func emitPromotions(moves *[]Move, targets Bitboard, from func(Square) Square) {
	for targets != 0 {
		var to Square
		to, targets = targets.PopSquare()
		src := from(to)
		*moves = append(*moves, NewPromotionMove(src, to, PromoQueen))
		*moves = append(*moves, NewPromotionMove(src, to, PromoRook))
		*moves = append(*moves, NewPromotionMove(src, to, PromoBishop))
		*moves = append(*moves, NewPromotionMove(src, to, PromoKnight))
	}
}
