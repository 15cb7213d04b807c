package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kresala/warden/pkg/engine"
	"github.com/kresala/warden/pkg/engine/uci"
	"github.com/seekerror/logw"
)

var (
	hash = flag.Uint("hash", 64, "Transposition table size in MB")
	book = flag.Bool("book", true, "Use the built-in opening book")
	seed = flag.Int64("seed", 0, "Zobrist and book selection seed")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: warden [options]

WARDEN is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	e := engine.New(ctx, "warden", "kresala",
		engine.WithOptions(engine.Options{Hash: *hash, Book: *book}),
		engine.WithZobrist(*seed),
	)

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		// Use UCI protocol.

		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
