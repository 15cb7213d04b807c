package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/kresala/warden/pkg/board"
	"github.com/kresala/warden/pkg/board/fen"
	"github.com/kresala/warden/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

var version = build.NewVersion(0, 9, 0)

// Options are engine runtime options.
type Options struct {
	// Depth is the search depth limit. If zero, there is no limit.
	Depth uint
	// Hash is the transposition table size in MB.
	Hash uint
	// Book enables the built-in opening book.
	Book bool
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v, book=%v}", o.Depth, o.Hash, o.Book)
}

// Engine encapsulates game-playing logic, search and evaluation.
type Engine struct {
	name, author string

	zt   *board.ZobristTable
	seed int64
	opts Options

	book *Book
	rand *rand.Rand

	b        *board.Board
	tt       *search.TranspositionTable
	searcher *search.Searcher
	stop     *atomic.Bool

	// corrupt is set when an illegal move was fed into the position; play is
	// rejected until the next game.
	corrupt bool

	mu sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithZobrist configures the engine to use the given random seed instead of
// the default seed of zero.
func WithZobrist(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:   name,
		author: author,
		stop:   atomic.NewBool(false),
	}
	e.opts = Options{Hash: 64, Book: true}
	for _, fn := range opts {
		fn(e)
	}
	e.zt = board.NewZobristTable(e.seed)
	e.rand = rand.New(rand.NewSource(e.seed + 1))

	book, err := NewBook(ctx, e.zt)
	if err != nil {
		logw.Exitf(ctx, "Invalid opening book: %v", err)
	}
	e.book = book

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

func (e *Engine) SetHash(size uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = size
}

func (e *Engine) SetBook(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Book = enabled
}

// Position returns the current position in FEN format. Convenience function.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.b)
}

// Board returns the engine board. The caller must not mutate it while a
// search is active.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b
}

// Reset resets the engine to a new starting position in FEN format. The
// transposition table and search state are rebuilt.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, depth=%v, TT=%vMB", position, e.opts.Depth, e.opts.Hash)

	b, err := fen.Decode(e.zt, position)
	if err != nil {
		return err
	}
	e.b = b
	e.corrupt = false

	size := e.opts.Hash
	if size == 0 {
		size = 1
	}
	e.tt = search.NewTranspositionTable(ctx, uint64(size))
	e.searcher = search.NewSearcher(e.b, e.tt, e.stop)

	logw.Infof(ctx, "New board: %v", e.b)
	return nil
}

// Move plays the given move in coordinate notation, usually an opponent move.
// An illegal move leaves the engine state untrusted: the error is returned
// and further play is rejected until the next Reset.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.corrupt {
		return fmt.Errorf("engine state untrusted after illegal move; new game required")
	}

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}

	for _, m := range board.GenerateAll(e.b) {
		if m != candidate {
			continue
		}
		if err := e.b.MakeMove(m); err != nil {
			return err
		}
		logw.Debugf(ctx, "Move %v: %v", m, e.b)
		return nil
	}

	e.corrupt = true
	return fmt.Errorf("illegal move: %v", candidate)
}

// Search finds a best move for the current position within the given limits.
// Synchronous; run it on a dedicated goroutine and use Stop to interrupt. The
// report callback, if not nil, receives a PV per completed iteration.
func (e *Engine) Search(ctx context.Context, opts search.Options, report func(search.PV)) (board.Move, error) {
	e.mu.Lock()
	if e.corrupt {
		e.mu.Unlock()
		return board.NoMove, fmt.Errorf("engine state untrusted after illegal move; new game required")
	}
	b, s, useBook := e.b, e.searcher, e.opts.Book
	e.mu.Unlock()

	e.stop.Store(false)

	if useBook {
		if m, ok := e.book.Pick(e.rand, b.Turn(), b.FullMoves(), b.Hash(), board.GenerateAll(b)); ok {
			logw.Infof(ctx, "Book move: %v", m)

			// A small artificial think time, so the reply does not look instant.
			time.Sleep(time.Duration(50+e.rand.Intn(50)) * time.Millisecond)
			if report != nil {
				report(search.PV{Depth: 1, Seldepth: 1, Moves: []board.Move{m}})
			}
			return m, nil
		}
	}

	s.Report = report
	m := s.Go(ctx, opts)
	if m == board.NoMove {
		return board.NoMove, fmt.Errorf("no legal moves")
	}
	return m, nil
}

// Stop requests a cooperative stop of the active search, if any. Idempotent.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

// Perft runs the perft node counter at the given depth on the current
// position and returns the per-move division and total.
func (e *Engine) Perft(ctx context.Context, depth int) (map[board.Move]uint64, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	divide := board.PerftDivide(e.b, depth)

	var nodes uint64
	for _, n := range divide {
		nodes += n
	}

	taken := time.Since(start)
	nps := uint64(0)
	if taken > 0 {
		nps = uint64(time.Second) * nodes / uint64(taken)
	}
	logw.Infof(ctx, "Perft depth %v: %v nodes in %v (%v nps)", depth, nodes, taken, nps)

	return divide, nodes
}
