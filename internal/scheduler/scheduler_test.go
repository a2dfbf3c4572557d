package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketbay/auction-engine/internal/cache"
	"github.com/marketbay/auction-engine/internal/domain"
	"github.com/marketbay/auction-engine/internal/engine"
	"github.com/marketbay/auction-engine/internal/repository"
	"github.com/marketbay/auction-engine/internal/scheduler"
	"github.com/marketbay/auction-engine/pkg/logger"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestScheduler_RunNowDrivesLifecycle(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)}
	store := repository.NewMemoryStore()
	eng := engine.New(store, logger.NewNop(), engine.WithClock(clock.Now))
	sched := scheduler.New(eng, cache.NewMemoryCache(), time.Second, logger.NewNop())

	ctx := context.Background()
	snap, err := eng.CreateAuction(ctx, engine.CreateParams{
		Title:        "scheduled listing",
		Type:         domain.TypeStandard,
		StartPrice:   decimal.NewFromInt(100),
		BidIncrement: decimal.NewFromInt(10),
		StartTime:    clock.Now().Add(time.Hour),
		EndTime:      clock.Now().Add(2 * time.Hour),
		SellerID:     uuid.New(),
	})
	require.NoError(t, err)
	_, err = eng.Approve(ctx, snap.ID)
	require.NoError(t, err)

	sched.RunNow()
	got, err := eng.GetSnapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, got.Status, "start time not reached yet")

	clock.Advance(time.Hour)
	sched.RunNow()
	got, err = eng.GetSnapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)

	winner := uuid.New()
	_, err = eng.PlaceBid(ctx, snap.ID, winner, decimal.NewFromInt(100))
	require.NoError(t, err)

	clock.Advance(time.Hour)
	sched.RunNow()
	got, err = eng.GetSnapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, got.Status)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, winner, *got.WinnerID)
}

func TestScheduler_StartStopRestart(t *testing.T) {
	store := repository.NewMemoryStore()
	eng := engine.New(store, logger.NewNop())
	sched := scheduler.New(eng, cache.NewMemoryCache(), 10*time.Millisecond, logger.NewNop())

	sched.Start()
	sched.Start() // second call is a no-op
	time.Sleep(30 * time.Millisecond)
	sched.Stop()
	sched.Stop() // safe to call twice

	// a stopped scheduler comes back up cleanly
	sched.Start()
	time.Sleep(30 * time.Millisecond)
	sched.Stop()
}
