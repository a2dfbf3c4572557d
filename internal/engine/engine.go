package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketbay/auction-engine/internal/domain"
	"github.com/marketbay/auction-engine/internal/repository"
	"github.com/marketbay/auction-engine/pkg/logger"
)

// Engine owns every auction record. All state-mutating commands on one
// auction are serialized through a per-auction mutex, so "first commit
// wins" holds structurally across the bid, offer and buy-now lanes and
// the scheduler's boundary transitions. Reads go straight to the store
// against the latest committed state.
type Engine struct {
	store repository.AuctionStore
	log   *logger.Logger
	now   func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

type Option func(*Engine)

// WithClock overrides the time source. Tests use it to sit exactly on
// boundary instants.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(store repository.AuctionStore, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   log,
		now:   time.Now,
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) lockFor(id uuid.UUID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// withAuction runs fn under the auction's exclusion domain and saves
// the record only when fn succeeds; a rejected command leaves the
// stored record untouched.
func (e *Engine) withAuction(ctx context.Context, id uuid.UUID, fn func(a *domain.Auction, now time.Time) error) (domain.Snapshot, error) {
	lock := e.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	a, err := e.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Snapshot{}, ErrAuctionNotFound
		}
		return domain.Snapshot{}, err
	}

	now := e.now()
	if err := fn(a, now); err != nil {
		return domain.Snapshot{}, err
	}

	a.UpdatedAt = now
	if err := e.store.Save(ctx, a); err != nil {
		return domain.Snapshot{}, err
	}
	return SnapshotOf(a), nil
}

// CreateParams carries the seller's listing command.
type CreateParams struct {
	Title        string
	Type         domain.AuctionType
	StartPrice   decimal.Decimal
	ReservePrice *decimal.Decimal
	BuyNowPrice  *decimal.Decimal
	BidIncrement decimal.Decimal
	StartTime    time.Time
	EndTime      time.Time
	SellerID     uuid.UUID
	AllowOffers  bool
}

// CreateAuction validates and stores a new draft listing.
func (e *Engine) CreateAuction(ctx context.Context, p CreateParams) (domain.Snapshot, error) {
	if strings.TrimSpace(p.Title) == "" {
		return domain.Snapshot{}, validationf("title is required")
	}
	if !p.Type.Valid() {
		return domain.Snapshot{}, validationf("unknown auction type %q", p.Type)
	}
	if p.SellerID == uuid.Nil {
		return domain.Snapshot{}, validationf("seller id is required")
	}
	if !p.StartPrice.IsPositive() {
		return domain.Snapshot{}, validationf("start price must be positive")
	}
	if p.Type.SupportsBidding() && !p.BidIncrement.IsPositive() {
		return domain.Snapshot{}, validationf("bid increment must be positive")
	}
	if p.Type == domain.TypeReserve {
		if p.ReservePrice == nil || !p.ReservePrice.IsPositive() {
			return domain.Snapshot{}, validationf("reserve auctions require a positive reserve price")
		}
		if p.ReservePrice.LessThan(p.StartPrice) {
			return domain.Snapshot{}, validationf("reserve price must not be below the start price")
		}
	}
	if p.Type == domain.TypeBuyNow && (p.BuyNowPrice == nil || !p.BuyNowPrice.IsPositive()) {
		return domain.Snapshot{}, validationf("buy now auctions require a positive buy now price")
	}
	if !p.EndTime.After(p.StartTime) {
		return domain.Snapshot{}, validationf("end time must be after start time")
	}

	now := e.now()
	a := &domain.Auction{
		ID:           uuid.New(),
		Title:        p.Title,
		Type:         p.Type,
		StartPrice:   p.StartPrice,
		CurrentPrice: p.StartPrice,
		ReservePrice: p.ReservePrice,
		BuyNowPrice:  p.BuyNowPrice,
		BidIncrement: p.BidIncrement,
		Status:       domain.StatusDraft,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		SellerID:     p.SellerID,
		AllowOffers:  p.AllowOffers,
		Bids:         []domain.Bid{},
		Offers:       []domain.Offer{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := e.store.Create(ctx, a); err != nil {
		return domain.Snapshot{}, err
	}
	e.log.Infow("auction created", "auction_id", a.ID, "type", a.Type, "seller_id", a.SellerID)
	return SnapshotOf(a), nil
}

// Approve moves a draft listing into the approved state; the scheduler
// activates it once its start time arrives.
func (e *Engine) Approve(ctx context.Context, auctionID uuid.UUID) (domain.Snapshot, error) {
	return e.withAuction(ctx, auctionID, func(a *domain.Auction, now time.Time) error {
		return transition(a, domain.StatusApproved, now)
	})
}

// Cancel is the out-of-band admin command; legal from any non-terminal
// status and never time-driven.
func (e *Engine) Cancel(ctx context.Context, auctionID uuid.UUID) (domain.Snapshot, error) {
	snap, err := e.withAuction(ctx, auctionID, func(a *domain.Auction, now time.Time) error {
		return transition(a, domain.StatusCancelled, now)
	})
	if err == nil {
		e.log.Infow("auction cancelled", "auction_id", auctionID)
	}
	return snap, err
}

// PlaceBid appends a bid to the ledger and advances the current price.
func (e *Engine) PlaceBid(ctx context.Context, auctionID, bidderID uuid.UUID, amount decimal.Decimal) (domain.Snapshot, error) {
	return e.withAuction(ctx, auctionID, func(a *domain.Auction, now time.Time) error {
		if err := guardWrite(a, now); err != nil {
			return err
		}
		if bidderID == a.SellerID {
			return ErrSelfBid
		}
		if !a.Type.SupportsBidding() {
			return ErrBiddingDisabled
		}
		min := ComputePricing(a).MinNextBid
		if amount.LessThan(min) {
			return belowMinimum(min)
		}

		a.Bids = append(a.Bids, domain.Bid{
			ID:        uuid.New(),
			AuctionID: a.ID,
			BidderID:  bidderID,
			Amount:    amount,
			CreatedAt: now,
		})
		a.CurrentPrice = amount
		a.BidCount++
		return nil
	})
}

// BuyNow is the instant, exclusive settlement path. Once it commits,
// every later command on the auction fails the write guard.
func (e *Engine) BuyNow(ctx context.Context, auctionID, buyerID uuid.UUID) (domain.Snapshot, error) {
	snap, err := e.withAuction(ctx, auctionID, func(a *domain.Auction, now time.Time) error {
		if err := guardWrite(a, now); err != nil {
			return err
		}
		if !a.Type.SupportsBuyNow() {
			return ErrBuyNowDisabled
		}
		if a.BuyNowPrice == nil {
			return validationf("auction has no buy now price")
		}
		if buyerID == a.SellerID {
			return ErrSelfBuy
		}
		if err := transition(a, domain.StatusSoldBuyNow, now); err != nil {
			return err
		}
		price := *a.BuyNowPrice
		a.WinnerID = &buyerID
		a.FinalPrice = &price
		a.CurrentPrice = price
		return nil
	})
	if err == nil {
		e.log.Infow("auction sold via buy now", "auction_id", auctionID, "buyer_id", buyerID)
	}
	return snap, err
}

// SubmitOffer opens a pending offer in the lane parallel to bidding.
// Offers never touch the stored current price.
func (e *Engine) SubmitOffer(ctx context.Context, auctionID, buyerID uuid.UUID, amount decimal.Decimal, message string) (domain.Offer, domain.Snapshot, error) {
	var offer domain.Offer
	snap, err := e.withAuction(ctx, auctionID, func(a *domain.Auction, now time.Time) error {
		if err := guardWrite(a, now); err != nil {
			return err
		}
		if !a.AllowOffers {
			return ErrOffersNotAllowed
		}
		if buyerID == a.SellerID {
			return ErrSelfOffer
		}
		if amount.LessThan(a.StartPrice) {
			return validationf("offer too low: minimum acceptable offer is %s", a.StartPrice.String())
		}
		// An offer at or above the buy-now price is hard-rejected so a
		// pending offer can never shadow the instant settlement lane.
		if a.BuyNowPrice != nil && amount.GreaterThanOrEqual(*a.BuyNowPrice) {
			return validationf("offer meets the buy now price %s: use buy now instead", a.BuyNowPrice.String())
		}

		offer = domain.Offer{
			ID:        uuid.New(),
			AuctionID: a.ID,
			BuyerID:   buyerID,
			Amount:    amount,
			Message:   message,
			Status:    domain.OfferPending,
			CreatedAt: now,
			ExpiresAt: now.Add(domain.OfferTTL),
		}
		a.Offers = append(a.Offers, offer)
		return nil
	})
	if err != nil {
		return domain.Offer{}, domain.Snapshot{}, err
	}
	return offer, snap, nil
}

// AcceptOffer is the seller-only settlement via the offer lane. It
// rejects every other pending offer and closes the auction as sold.
func (e *Engine) AcceptOffer(ctx context.Context, offerID, actorID uuid.UUID) (domain.Snapshot, error) {
	owner, err := e.store.GetByOffer(ctx, offerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Snapshot{}, ErrOfferNotFound
		}
		return domain.Snapshot{}, err
	}

	snap, err := e.withAuction(ctx, owner.ID, func(a *domain.Auction, now time.Time) error {
		o := a.OfferByID(offerID)
		if o == nil {
			return ErrOfferNotFound
		}
		if actorID != a.SellerID {
			return ErrNotSeller
		}
		if err := guardWrite(a, now); err != nil {
			return err
		}
		// An offer past its TTL reports expired whether or not the
		// background sweep already flipped its status.
		if o.Status == domain.OfferExpired || o.ExpiredAt(now) {
			return ErrOfferExpired
		}
		if o.Status != domain.OfferPending {
			return ErrOfferNotPending
		}

		o.Status = domain.OfferAccepted
		if err := transition(a, domain.StatusSold, now); err != nil {
			return err
		}
		buyer := o.BuyerID
		price := o.Amount
		a.WinnerID = &buyer
		a.FinalPrice = &price
		return nil
	})
	if err == nil {
		e.log.Infow("offer accepted", "offer_id", offerID, "auction_id", owner.ID)
	}
	return snap, err
}

// ExpireOffers sweeps pending offers past their expiry. It touches
// neither the current price nor the auction status. The returned ids
// are the auctions whose offer ledger changed.
func (e *Engine) ExpireOffers(ctx context.Context) ([]uuid.UUID, error) {
	active, err := e.store.List(ctx, repository.Filter{
		Statuses: []domain.Status{domain.StatusActive},
	})
	if err != nil {
		return nil, err
	}

	var changed []uuid.UUID
	for _, rec := range active {
		_, err := e.withAuction(ctx, rec.ID, func(a *domain.Auction, now time.Time) error {
			dirty := false
			for i := range a.Offers {
				if a.Offers[i].ExpiredAt(now) {
					a.Offers[i].Status = domain.OfferExpired
					dirty = true
				}
			}
			if !dirty {
				return errNoChange
			}
			return nil
		})
		if err != nil && !errors.Is(err, errNoChange) {
			e.log.Warnw("offer expiry sweep failed", "auction_id", rec.ID, "error", err)
			continue
		}
		if err == nil {
			changed = append(changed, rec.ID)
		}
	}
	return changed, nil
}

// errNoChange short-circuits withAuction without persisting; it never
// escapes the engine.
var errNoChange = errors.New("no change")

// Sweep fires the time-boundary transitions: approved auctions past
// their start time go active, active auctions past their end time are
// settled from the bid lane. It competes for the same per-auction
// locks as client writes, so a bid committed before the boundary is
// honored and one after is rejected. The returned ids are the auctions
// that transitioned.
func (e *Engine) Sweep(ctx context.Context) ([]uuid.UUID, error) {
	now := e.now()
	var changed []uuid.UUID

	due, err := e.store.List(ctx, repository.Filter{
		Statuses: []domain.Status{domain.StatusApproved},
		StartDue: &now,
	})
	if err != nil {
		return nil, err
	}
	for _, rec := range due {
		_, err := e.withAuction(ctx, rec.ID, func(a *domain.Auction, now time.Time) error {
			if a.Status != domain.StatusApproved || now.Before(a.StartTime) {
				return errNoChange
			}
			return transition(a, domain.StatusActive, now)
		})
		if err != nil && !errors.Is(err, errNoChange) {
			e.log.Warnw("start transition failed", "auction_id", rec.ID, "error", err)
			continue
		}
		if err == nil {
			changed = append(changed, rec.ID)
			e.log.Infow("auction activated", "auction_id", rec.ID)
		}
	}

	ending, err := e.store.List(ctx, repository.Filter{
		Statuses: []domain.Status{domain.StatusActive},
		EndDue:   &now,
	})
	if err != nil {
		return nil, err
	}
	for _, rec := range ending {
		snap, err := e.withAuction(ctx, rec.ID, e.settle)
		if err != nil && !errors.Is(err, errNoChange) {
			e.log.Warnw("end transition failed", "auction_id", rec.ID, "error", err)
			continue
		}
		if err == nil {
			changed = append(changed, rec.ID)
			e.log.Infow("auction closed", "auction_id", rec.ID, "status", snap.Status)
		}
	}
	return changed, nil
}

// settle derives the terminal status from the bid lane at the end
// boundary. The reserve is evaluated here and nowhere else.
func (e *Engine) settle(a *domain.Auction, now time.Time) error {
	if a.Status != domain.StatusActive || now.Before(a.EndTime) {
		return errNoChange
	}

	if !a.Type.SupportsBidding() || a.BidCount == 0 {
		return transition(a, domain.StatusEnded, now)
	}
	if !ComputePricing(a).ReserveMet {
		return transition(a, domain.StatusReserveNotMet, now)
	}

	hb := a.HighestBid()
	if err := transition(a, domain.StatusSold, now); err != nil {
		return err
	}
	winner := hb.BidderID
	price := a.CurrentPrice
	a.WinnerID = &winner
	a.FinalPrice = &price
	return nil
}

// GetSnapshot reads the latest committed state without taking the
// auction's write lock.
func (e *Engine) GetSnapshot(ctx context.Context, auctionID uuid.UUID) (domain.Snapshot, error) {
	a, err := e.store.Get(ctx, auctionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Snapshot{}, ErrAuctionNotFound
		}
		return domain.Snapshot{}, err
	}
	return SnapshotOf(a), nil
}

// ListSnapshots is the listing read used by the catalog pages.
func (e *Engine) ListSnapshots(ctx context.Context, f repository.Filter) ([]domain.Snapshot, error) {
	recs, err := e.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Snapshot, 0, len(recs))
	for _, a := range recs {
		out = append(out, SnapshotOf(a))
	}
	return out, nil
}
