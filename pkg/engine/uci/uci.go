// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kresala/warden/pkg/board"
	"github.com/kresala/warden/pkg/board/fen"
	"github.com/kresala/warden/pkg/engine"
	"github.com/kresala/warden/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

// ProtocolName is the initial command that activates the driver.
const ProtocolName = "uci"

const (
	minHashMB     = 1
	maxHashMB     = 2048
	defaultHashMB = 64
)

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	e *engine.Engine

	out chan<- string

	active atomic.Bool // user is waiting for engine to move
	quit   iox.AsyncCloser
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:    e,
		out:  out,
		quit: iox.NewAsyncCloser(),
	}
	go d.process(ctx, in, out)

	return d, out
}

func (d *Driver) Close() {
	d.quit.Close()
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit.Closed()
}

func (d *Driver) process(ctx context.Context, in <-chan string, out chan string) {
	defer d.Close()
	defer close(out)

	logw.Infof(ctx, "UCI protocol initialized")

	// * uci
	//
	//	After receiving the uci command the engine must identify itself and
	//	sent the "option" commands to tell the GUI which settings the engine
	//	supports, then "uciok".

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())
	d.out <- fmt.Sprintf("option name Hash type spin default %v min %v max %v", defaultHashMB, minHashMB, maxHashMB)
	d.out <- fmt.Sprintf("option name Book type check default %v", d.e.Options().Book)
	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(strings.TrimSpace(line))
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch cmd {
			case "isready":
				// * isready
				//
				//	Used to synchronize the engine with the GUI. Must always be
				//	answered with "readyok", even while searching.

				d.out <- "readyok"

			case "ucinewgame":
				// * ucinewgame
				//
				//	The next search will be from a different game.

				d.e.Stop()
				if err := d.e.Reset(ctx, fen.Initial); err != nil {
					logw.Errorf(ctx, "Reset failed: %v", err)
				}

			case "setoption":
				// * setoption name <id> [value <x>]

				d.setOption(ctx, args)

			case "position":
				// * position [fen <fenstring> | startpos ] moves <move1> .. <movei>
				//
				//	Set up the position on the internal board and play the moves.

				d.e.Stop()
				if err := d.position(ctx, args); err != nil {
					logw.Errorf(ctx, "Invalid position '%v': %v", line, err)
					d.out <- fmt.Sprintf("info string invalid position: %v", err)
				}

			case "go":
				// * go [wtime N] [btime N] [winc N] [binc N] [movetime N]
				//      [depth N] [infinite] | go perft N
				//
				//	Start calculating on the current position.

				if len(args) >= 2 && args[0] == "perft" {
					d.perft(ctx, args[1])
					break
				}
				d.startSearch(ctx, args)

			case "stop":
				// * stop
				//
				//	Stop calculating as soon as possible. The pending "bestmove"
				//	is still sent by the search goroutine.

				d.e.Stop()

			case "quit":
				// * quit
				//
				//	Quit the program as soon as possible.

				d.e.Stop()
				return

			default:
				logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
			}

		case <-d.quit.Closed():
			d.e.Stop()

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) setOption(ctx context.Context, args []string) {
	var name, value string
	if len(args) > 1 {
		name = args[1]
	}
	if len(args) > 3 {
		value = args[3]
	}

	switch name {
	case "Hash":
		n, err := strconv.Atoi(value)
		if err != nil || n < minHashMB || n > maxHashMB {
			logw.Errorf(ctx, "Invalid Hash value: '%v'", value)
			return
		}
		d.e.SetHash(uint(n))
		if err := d.e.Reset(ctx, d.e.Position()); err != nil {
			logw.Errorf(ctx, "Reset failed: %v", err)
		}

	case "Book":
		b, err := strconv.ParseBool(value)
		if err != nil {
			logw.Errorf(ctx, "Invalid Book value: '%v'", value)
			return
		}
		d.e.SetBook(b)

	default:
		logw.Warningf(ctx, "Unknown option '%v'", name)
	}
}

func (d *Driver) position(ctx context.Context, args []string) error {
	position := fen.Initial
	rest := args

	switch {
	case len(args) > 0 && args[0] == "startpos":
		rest = args[1:]
	case len(args) >= 7 && args[0] == "fen":
		position = strings.Join(args[1:7], " ")
		rest = args[7:]
	default:
		return fmt.Errorf("expected startpos or fen")
	}

	if err := d.e.Reset(ctx, position); err != nil {
		return err
	}

	moves := false
	for _, arg := range rest {
		if arg == "moves" {
			moves = true
			continue
		}
		if !moves {
			continue
		}
		if err := d.e.Move(ctx, arg); err != nil {
			return err
		}
	}
	return nil
}

func (d *Driver) startSearch(ctx context.Context, args []string) {
	if !d.active.CAS(false, true) {
		logw.Warningf(ctx, "Search already active")
		return
	}

	var opts search.Options

	for i := 0; i < len(args); i++ {
		cmd := args[i]
		switch cmd {
		case "wtime", "btime", "winc", "binc", "movetime", "depth":
			// Next argument is an int.

			i++
			if i == len(args) {
				logw.Errorf(ctx, "No argument for %v", cmd)
				d.active.Store(false)
				return
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				logw.Errorf(ctx, "Invalid argument for %v: %v", cmd, err)
				d.active.Store(false)
				return
			}

			switch cmd {
			case "wtime":
				opts.WhiteTime = time.Millisecond * time.Duration(n)
			case "btime":
				opts.BlackTime = time.Millisecond * time.Duration(n)
			case "winc":
				opts.WhiteInc = time.Millisecond * time.Duration(n)
			case "binc":
				opts.BlackInc = time.Millisecond * time.Duration(n)
			case "movetime":
				opts.MoveTime = lang.Some(time.Millisecond * time.Duration(n))
			case "depth":
				opts.Depth = lang.Some(n)
			}

		case "infinite":
			opts.Infinite = true

		default:
			// silently ignore anything not handled.
		}
	}

	if d.e.Options().Depth > 0 {
		if _, ok := opts.Depth.V(); !ok {
			opts.Depth = lang.Some(int(d.e.Options().Depth))
		}
	}

	go func() {
		defer d.active.Store(false)

		m, err := d.e.Search(ctx, opts, func(pv search.PV) {
			d.out <- printPV(pv)
		})
		if err != nil {
			logw.Errorf(ctx, "Search failed: %v", err)

			// No legal move or untrusted state. Send NullMove.
			d.out <- "bestmove 0000"
			return
		}

		// * bestmove <move>
		//
		//	The engine has stopped searching and found this move best. Must
		//	always be sent for every "go".

		d.out <- fmt.Sprintf("bestmove %v", m)
	}()
}

func (d *Driver) perft(ctx context.Context, arg string) {
	depth, err := strconv.Atoi(arg)
	if err != nil || depth < 1 {
		logw.Errorf(ctx, "Invalid perft depth: '%v'", arg)
		return
	}

	start := time.Now()
	divide, nodes := d.e.Perft(ctx, depth)

	var moves []board.Move
	for m := range divide {
		moves = append(moves, m)
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i] < moves[j] })

	for _, m := range moves {
		d.out <- fmt.Sprintf("%v: %v", m, divide[m])
	}
	d.out <- fmt.Sprintf("info string perft depth %v nodes %v time %v", depth, nodes, time.Since(start).Milliseconds())
}

func printPV(pv search.PV) string {
	// "info depth 2 seldepth 3 score cp 214 nodes 2124 nps 34928 time 1242 hashfull 4 tbhits 0 pv e2e4 e7e5"

	parts := []string{"info"}
	parts = append(parts, fmt.Sprintf("depth %v", pv.Depth))
	parts = append(parts, fmt.Sprintf("seldepth %v", pv.Seldepth))
	if pv.Score.IsMate() {
		parts = append(parts, fmt.Sprintf("score mate %v", pv.Score.MateIn()))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", int(pv.Score)))
	}
	parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	parts = append(parts, fmt.Sprintf("nps %v", pv.NPS))
	parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	parts = append(parts, fmt.Sprintf("hashfull %v", pv.Hashfull))
	parts = append(parts, fmt.Sprintf("tbhits %v", pv.TBHits))
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv", board.PrintMoves(pv.Moves))
	}

	return strings.Join(parts, " ")
}
