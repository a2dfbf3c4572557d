package engine

import (
	"time"

	"github.com/marketbay/auction-engine/internal/domain"
)

// transitions is the authoritative status graph. Cancellation is legal
// from every non-terminal status; terminal statuses admit nothing.
var transitions = map[domain.Status][]domain.Status{
	domain.StatusDraft:    {domain.StatusApproved, domain.StatusCancelled},
	domain.StatusApproved: {domain.StatusActive, domain.StatusCancelled},
	domain.StatusActive: {
		domain.StatusEnded,
		domain.StatusSold,
		domain.StatusSoldBuyNow,
		domain.StatusReserveNotMet,
		domain.StatusCancelled,
	},
}

// CanTransition reports whether from -> to is a legal status move.
func CanTransition(from, to domain.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// guardWrite is the entry condition for every bid/offer/buy-now
// command. It runs under the per-auction lock, so a command that
// passes it is guaranteed to commit before any boundary transition
// is observed.
func guardWrite(a *domain.Auction, now time.Time) error {
	if a.Status != domain.StatusActive {
		return ErrAuctionNotActive
	}
	if !now.Before(a.EndTime) {
		return ErrAuctionEnded
	}
	return nil
}

// transition moves the record to the target status or rejects with a
// conflict. Any move into a terminal status closes the offer lane:
// every pending offer is rejected so nothing stays acceptable on a
// settled auction.
func transition(a *domain.Auction, to domain.Status, now time.Time) error {
	if !CanTransition(a.Status, to) {
		if a.Status.Terminal() {
			return conflictf("auction is already %s", a.Status)
		}
		return conflictf("cannot move auction from %s to %s", a.Status, to)
	}
	a.Status = to
	a.UpdatedAt = now
	if to.Terminal() {
		rejectPendingOffers(a)
	}
	return nil
}

func rejectPendingOffers(a *domain.Auction) {
	for i := range a.Offers {
		if a.Offers[i].Status == domain.OfferPending {
			a.Offers[i].Status = domain.OfferRejected
		}
	}
}
