// Package goroutine runs bounded background work such as event publication
// after a credential change has been committed.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/twofactor/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

// DefaultMaxGoroutine is multiplied by NumCPU when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrClosed is recorded when work is submitted after Wait has been called.
var ErrClosed = errors.New("goroutine: manager is closed")

// Manager runs functions in goroutines under a concurrency limit and collects
// their errors until Wait.
type Manager struct {
	mu   sync.Mutex
	errs []error
	wg   sync.WaitGroup
	sema chan struct{}

	// gate orders Go against Wait so no task is added after wg.Wait starts.
	gate     sync.RWMutex
	closed   atomic.Bool
	inflight atomic.Int64
	dropped  atomic.Int64
}

// NewManager creates a Manager allowing at most maxGoroutine concurrent tasks.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go schedules f. It returns false and drops f when the manager is closed or
// every slot is taken.
func (g *Manager) Go(pCtx context.Context, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.gate.RLock()
	defer g.gate.RUnlock()

	if g.closed.Load() {
		g.dropped.Inc()
		slog.WarnContext(pCtx, "goroutine manager is closed, skipping task")
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		g.dropped.Inc()
		slog.WarnContext(pCtx, "goroutine limit reached, skipping task", "limit", cap(g.sema))
		return false
	}

	g.inflight.Inc()
	g.wg.Add(1)
	go g.run(pCtx, f)

	return true
}

func (g *Manager) run(ctx context.Context, f func(ctx context.Context) error) {
	defer func() {
		<-g.sema
		g.inflight.Dec()
		g.wg.Done()

		if rvr := recover(); rvr != nil {
			stack := debug.Stack()
			if frames := stacktrace.InternalPaths(stack); len(frames) > 0 {
				slog.ErrorContext(ctx, "panic in background task", "panic", rvr, "stack", frames)
			} else {
				slog.ErrorContext(ctx, "panic in background task", "panic", rvr, "stack", string(stack))
			}
		}
	}()

	if err := ctx.Err(); err != nil {
		slog.WarnContext(ctx, "background task canceled before start", "because", err)
		return
	}

	if err := f(ctx); err != nil {
		g.mu.Lock()
		g.errs = append(g.errs, err)
		g.mu.Unlock()
	}
}

// Inflight returns the number of tasks currently running.
func (g *Manager) Inflight() int64 { return g.inflight.Load() }

// Dropped returns how many tasks were refused.
func (g *Manager) Dropped() int64 { return g.dropped.Load() }

// Wait closes the manager, blocks until running tasks finish and returns
// their joined errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.gate.Lock()
	g.closed.Store(true)
	g.gate.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
