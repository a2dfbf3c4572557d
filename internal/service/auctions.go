package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketbay/auction-engine/internal/cache"
	"github.com/marketbay/auction-engine/internal/domain"
	"github.com/marketbay/auction-engine/internal/engine"
	"github.com/marketbay/auction-engine/internal/repository"
	"github.com/marketbay/auction-engine/pkg/logger"
)

type AuctionServicer interface {
	Create(ctx context.Context, p engine.CreateParams) (domain.Snapshot, error)
	Approve(ctx context.Context, auctionID uuid.UUID) (domain.Snapshot, error)
	Cancel(ctx context.Context, auctionID uuid.UUID) (domain.Snapshot, error)
	GetSnapshot(ctx context.Context, auctionID uuid.UUID) (domain.Snapshot, error)
	List(ctx context.Context, f repository.Filter) ([]domain.Snapshot, error)
	PlaceBid(ctx context.Context, auctionID, bidderID uuid.UUID, amount decimal.Decimal) (domain.Snapshot, error)
	BuyNow(ctx context.Context, auctionID, buyerID uuid.UUID) (domain.Snapshot, error)
	SubmitOffer(ctx context.Context, auctionID, buyerID uuid.UUID, amount decimal.Decimal, message string) (domain.Offer, domain.Snapshot, error)
	AcceptOffer(ctx context.Context, offerID, actorID uuid.UUID) (domain.Snapshot, error)
}

// AuctionService fronts the engine with a write-through snapshot
// cache: reads serve cached JSON when fresh, every committed write
// replaces the cached copy.
type AuctionService struct {
	engine *engine.Engine
	cache  cache.Cacher
	ttl    time.Duration
	log    *logger.Logger
}

func NewAuctionService(eng *engine.Engine, c cache.Cacher, ttl time.Duration, log *logger.Logger) *AuctionService {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &AuctionService{engine: eng, cache: c, ttl: ttl, log: log}
}

func (s *AuctionService) Create(ctx context.Context, p engine.CreateParams) (domain.Snapshot, error) {
	snap, err := s.engine.CreateAuction(ctx, p)
	if err != nil {
		return domain.Snapshot{}, err
	}
	s.cacheSnapshot(ctx, snap)
	return snap, nil
}

func (s *AuctionService) Approve(ctx context.Context, auctionID uuid.UUID) (domain.Snapshot, error) {
	snap, err := s.engine.Approve(ctx, auctionID)
	return s.afterWrite(ctx, snap, err)
}

func (s *AuctionService) Cancel(ctx context.Context, auctionID uuid.UUID) (domain.Snapshot, error) {
	snap, err := s.engine.Cancel(ctx, auctionID)
	return s.afterWrite(ctx, snap, err)
}

func (s *AuctionService) PlaceBid(ctx context.Context, auctionID, bidderID uuid.UUID, amount decimal.Decimal) (domain.Snapshot, error) {
	snap, err := s.engine.PlaceBid(ctx, auctionID, bidderID, amount)
	return s.afterWrite(ctx, snap, err)
}

func (s *AuctionService) BuyNow(ctx context.Context, auctionID, buyerID uuid.UUID) (domain.Snapshot, error) {
	snap, err := s.engine.BuyNow(ctx, auctionID, buyerID)
	return s.afterWrite(ctx, snap, err)
}

func (s *AuctionService) SubmitOffer(ctx context.Context, auctionID, buyerID uuid.UUID, amount decimal.Decimal, message string) (domain.Offer, domain.Snapshot, error) {
	offer, snap, err := s.engine.SubmitOffer(ctx, auctionID, buyerID, amount, message)
	if err != nil {
		return domain.Offer{}, domain.Snapshot{}, err
	}
	s.cacheSnapshot(ctx, snap)
	return offer, snap, nil
}

func (s *AuctionService) AcceptOffer(ctx context.Context, offerID, actorID uuid.UUID) (domain.Snapshot, error) {
	snap, err := s.engine.AcceptOffer(ctx, offerID, actorID)
	return s.afterWrite(ctx, snap, err)
}

func (s *AuctionService) GetSnapshot(ctx context.Context, auctionID uuid.UUID) (domain.Snapshot, error) {
	key := cache.SnapshotKey(auctionID.String())
	if raw, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var snap domain.Snapshot
		if err := json.Unmarshal([]byte(raw), &snap); err == nil {
			return snap, nil
		}
		// stale or corrupt entry, drop and fall through
		_ = s.cache.Delete(ctx, key)
	}

	snap, err := s.engine.GetSnapshot(ctx, auctionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	s.cacheSnapshot(ctx, snap)
	return snap, nil
}

func (s *AuctionService) List(ctx context.Context, f repository.Filter) ([]domain.Snapshot, error) {
	return s.engine.ListSnapshots(ctx, f)
}

func (s *AuctionService) afterWrite(ctx context.Context, snap domain.Snapshot, err error) (domain.Snapshot, error) {
	if err != nil {
		return domain.Snapshot{}, err
	}
	s.cacheSnapshot(ctx, snap)
	return snap, nil
}

func (s *AuctionService) cacheSnapshot(ctx context.Context, snap domain.Snapshot) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.SnapshotKey(snap.ID.String()), string(raw), s.ttl); err != nil {
		s.log.Warnw("snapshot cache write failed", "auction_id", snap.ID, "error", err)
	}
}
