package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/marketbay/auction-engine/internal/domain"
)

var ErrNotFound = errors.New("record not found")

// Filter narrows List results. Zero-valued fields match everything.
type Filter struct {
	Statuses []domain.Status
	SellerID uuid.UUID
	// StartDue / EndDue select records whose start or end boundary is
	// at or before the given instant; used by the scheduler sweep.
	StartDue *time.Time
	EndDue   *time.Time
	Limit    int
	Offset   int
}

func (f Filter) matchStatus(s domain.Status) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, want := range f.Statuses {
		if s == want {
			return true
		}
	}
	return false
}

func (f Filter) Match(a *domain.Auction) bool {
	if !f.matchStatus(a.Status) {
		return false
	}
	if f.SellerID != uuid.Nil && a.SellerID != f.SellerID {
		return false
	}
	if f.StartDue != nil && a.StartTime.After(*f.StartDue) {
		return false
	}
	if f.EndDue != nil && a.EndTime.After(*f.EndDue) {
		return false
	}
	return true
}

// AuctionStore is the durable home of auction records. Get and List
// return copies the caller may mutate freely; Save persists the whole
// record including its bid and offer lanes. The engine is the single
// writer per auction, so stores do not need per-record locking beyond
// their own internal consistency.
type AuctionStore interface {
	Create(ctx context.Context, a *domain.Auction) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Auction, error)
	GetByOffer(ctx context.Context, offerID uuid.UUID) (*domain.Auction, error)
	Save(ctx context.Context, a *domain.Auction) error
	List(ctx context.Context, f Filter) ([]*domain.Auction, error)
	Close(ctx context.Context) error
}
