package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/marketbay/auction-engine/internal/cache"
	"github.com/marketbay/auction-engine/internal/engine"
	"github.com/marketbay/auction-engine/pkg/logger"
)

// Scheduler drives the time-boundary transitions independently of any
// client request: approved auctions go live at their start time,
// active ones are settled at their end time, and stale offers expire.
// All mutation happens through the engine, under the same per-auction
// locks as client writes. Snapshots cached for auctions the sweep
// touched are dropped so reads never serve a pre-transition state for
// a whole cache TTL.
type Scheduler struct {
	engine   *engine.Engine
	cache    cache.Cacher
	interval time.Duration
	log      *logger.Logger

	ticker  *time.Ticker
	stopCh  chan struct{}
	running bool
	mu      sync.Mutex
}

func New(eng *engine.Engine, c cache.Cacher, interval time.Duration, log *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		engine:   eng,
		cache:    c,
		interval: interval,
		log:      log,
	}
}

// Start begins the periodic sweep. Calling Start on a running
// scheduler is a no-op; a stopped scheduler can be started again.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.ticker = time.NewTicker(s.interval)
	s.stopCh = make(chan struct{})
	ticker, stop := s.ticker, s.stopCh
	s.mu.Unlock()

	s.log.Infow("scheduler started", "interval", s.interval)
	go s.run(ticker, stop)
}

func (s *Scheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-ticker.C:
			s.RunNow()
		case <-stop:
			s.log.Infow("scheduler stopped")
			return
		}
	}
}

// RunNow performs one sweep immediately.
func (s *Scheduler) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	changed, err := s.engine.Sweep(ctx)
	if err != nil {
		s.log.Warnw("boundary sweep failed", "error", err)
	}

	expired, err := s.engine.ExpireOffers(ctx)
	if err != nil {
		s.log.Warnw("offer expiry sweep failed", "error", err)
	} else if len(expired) > 0 {
		s.log.Infow("stale offers expired", "auctions", len(expired))
	}
	changed = append(changed, expired...)

	s.invalidate(ctx, changed)
}

func (s *Scheduler) invalidate(ctx context.Context, ids []uuid.UUID) {
	for _, id := range ids {
		if err := s.cache.Delete(ctx, cache.SnapshotKey(id.String())); err != nil {
			s.log.Warnw("snapshot cache invalidation failed", "auction_id", id, "error", err)
		}
	}
}

// Stop halts the sweep loop. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.ticker.Stop()
	close(s.stopCh)
}
