// perft is a movegen debugging tool. See: https://www.chessprogramming.org/Perft_Results.
package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"time"

	"github.com/kresala/warden/pkg/board"
	"github.com/kresala/warden/pkg/board/fen"
	"github.com/seekerror/logw"
)

var (
	depth    = flag.Int("depth", 4, "Search depth")
	position = flag.String("fen", "", "Start position (default to standard)")
	divide   = flag.Bool("divide", false, "Divide counts by initial move")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	if *position == "" {
		*position = fen.Initial
	}

	zt := board.NewZobristTable(0)
	b, err := fen.Decode(zt, *position)
	if err != nil {
		logw.Exitf(ctx, "Invalid fen '%v': %v", *position, err)
	}

	for i := 1; i <= *depth; i++ {
		start := time.Now()

		var nodes uint64
		if *divide && i == *depth {
			counts := board.PerftDivide(b, i)

			var moves []board.Move
			for m := range counts {
				moves = append(moves, m)
			}
			sort.Slice(moves, func(a, b int) bool { return moves[a] < moves[b] })

			for _, m := range moves {
				println(fmt.Sprintf("%v: %v", m, counts[m]))
				nodes += counts[m]
			}
		} else {
			nodes = board.Perft(b, i)
		}

		duration := time.Since(start)
		println(fmt.Sprintf("perft,%v,%v,%v,%v", *position, i, nodes, duration.Microseconds()))
	}
}
