package poker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/kevinlin/planning-poker/internal/metrics"
)

// Sweeper periodically evicts expired sessions through the engine. It is the
// eager counterpart to the engine's lazy eviction on lookup.
type Sweeper struct {
	engine   *Engine
	clock    clockwork.Clock
	interval time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSweeper(engine *Engine, clock clockwork.Clock, interval time.Duration) *Sweeper {
	return &Sweeper{
		engine:   engine,
		clock:    clock,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sweep loop.
func (s *Sweeper) Start() {
	ticker := s.clock.NewTicker(s.interval)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ticker.Chan():
				s.sweep(context.Background())
			case <-s.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
	slog.Info("Cleanup sweeper started", "interval", s.interval)
}

func (s *Sweeper) sweep(ctx context.Context) {
	start := s.clock.Now()
	defer func() {
		metrics.SweepRunsTotal.Inc()
		metrics.SweepDurationSeconds.Observe(s.clock.Since(start).Seconds())
	}()

	removed, err := s.engine.SweepExpired(ctx)
	if err != nil {
		metrics.SweepErrorsTotal.Inc()
		slog.Error("Cleanup sweep failed to list sessions", "error", err)
		return
	}
	if removed > 0 {
		slog.Info("Cleanup sweep finished", "removed", removed)
	}
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
// Safe to call more than once.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
}
