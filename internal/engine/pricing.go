package engine

import (
	"github.com/shopspring/decimal"

	"github.com/marketbay/auction-engine/internal/domain"
)

// Pricing holds the derived price fields of an auction record. It is
// recomputed after every committed mutation and by the read API; it
// never feeds back into stored state.
type Pricing struct {
	CurrentPrice decimal.Decimal
	MinNextBid   decimal.Decimal
	ReserveMet   bool
	DisplayPrice decimal.Decimal
}

// ComputePricing is a pure function of the record.
func ComputePricing(a *domain.Auction) Pricing {
	p := Pricing{CurrentPrice: a.CurrentPrice}

	if a.BidCount > 0 {
		p.MinNextBid = a.CurrentPrice.Add(a.BidIncrement)
	} else {
		p.MinNextBid = a.StartPrice
	}

	p.ReserveMet = a.Type != domain.TypeReserve ||
		a.ReservePrice == nil ||
		a.CurrentPrice.GreaterThanOrEqual(*a.ReservePrice)

	// Auctions without a bid lane (buy-now type) that accept offers
	// display the highest pending offer when it tops the list price.
	// Stored currentPrice is never mutated by offers.
	p.DisplayPrice = a.CurrentPrice
	if !a.Type.SupportsBidding() && a.AllowOffers {
		for i := range a.Offers {
			o := &a.Offers[i]
			if o.Status == domain.OfferPending && o.Amount.GreaterThan(p.DisplayPrice) {
				p.DisplayPrice = o.Amount
			}
		}
	}
	return p
}

// SnapshotOf builds the client-facing read model from a record copy.
func SnapshotOf(a *domain.Auction) domain.Snapshot {
	p := ComputePricing(a)
	return domain.Snapshot{
		Auction:      *a,
		MinNextBid:   p.MinNextBid,
		ReserveMet:   p.ReserveMet,
		DisplayPrice: p.DisplayPrice,
	}
}
