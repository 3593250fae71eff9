package panels

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/seuros/vidpulse/internal/logging"
)

// Sweeper closes idle dashboards on a fixed interval.
type Sweeper struct {
	registry *Registry
	ttl      time.Duration
	interval time.Duration

	started  atomic.Bool
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

// NewSweeper creates a sweeper for registry. A non-positive ttl disables
// sweeping.
func NewSweeper(registry *Registry, ttl, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		registry: registry,
		ttl:      ttl,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop
func (s *Sweeper) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	if s.ttl <= 0 {
		logging.L().Info("dashboard sweeper disabled")
		close(s.done)
		return
	}
	logging.L().Info("starting dashboard sweeper",
		zap.Duration("ttl", s.ttl),
		zap.Duration("interval", s.interval),
	)
	go s.run()
}

// Stop halts the loop and waits for it to exit.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	if s.started.Load() {
		<-s.done
	}
}

func (s *Sweeper) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Sweeper) sweep() {
	closed := s.registry.Sweep(s.ttl)
	if closed > 0 {
		logging.L().Info("closed idle dashboards",
			zap.Int("closed", closed),
			zap.Int("open", s.registry.Len()),
		)
	}
}
