package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuctionType selects the price-discovery mechanism of a listing.
type AuctionType string

const (
	TypeStandard AuctionType = "standard"
	TypeReserve  AuctionType = "reserve"
	TypeBuyNow   AuctionType = "buy_now"
)

// capability describes which commands an auction type admits.
// Offers are gated per-auction via AllowOffers, not per-type.
type capability struct {
	Bidding bool
	BuyNow  bool
}

var capabilities = map[AuctionType]capability{
	TypeStandard: {Bidding: true},
	TypeReserve:  {Bidding: true},
	TypeBuyNow:   {BuyNow: true},
}

func (t AuctionType) Valid() bool {
	_, ok := capabilities[t]
	return ok
}

// SupportsBidding reports whether the incremental bid lane is open
// for this auction type.
func (t AuctionType) SupportsBidding() bool {
	return capabilities[t].Bidding
}

// SupportsBuyNow reports whether the instant settlement lane is open
// for this auction type.
func (t AuctionType) SupportsBuyNow() bool {
	return capabilities[t].BuyNow
}

// Status is the lifecycle state of an auction.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusApproved      Status = "approved"
	StatusActive        Status = "active"
	StatusEnded         Status = "ended"
	StatusSold          Status = "sold"
	StatusSoldBuyNow    Status = "sold_buy_now"
	StatusReserveNotMet Status = "reserve_not_met"
	StatusCancelled     Status = "cancelled"
)

// Terminal reports whether no further bid/offer/buy-now mutation is
// accepted from this status.
func (s Status) Terminal() bool {
	switch s {
	case StatusEnded, StatusSold, StatusSoldBuyNow, StatusReserveNotMet, StatusCancelled:
		return true
	}
	return false
}

// Auction is the single source of truth for one listing. It is owned
// exclusively by the engine; callers submit commands and read snapshots.
type Auction struct {
	ID           uuid.UUID        `json:"id"`
	Title        string           `json:"title"`
	Type         AuctionType      `json:"auction_type"`
	StartPrice   decimal.Decimal  `json:"start_price"`
	CurrentPrice decimal.Decimal  `json:"current_price"`
	ReservePrice *decimal.Decimal `json:"reserve_price,omitempty"`
	BuyNowPrice  *decimal.Decimal `json:"buy_now_price,omitempty"`
	BidIncrement decimal.Decimal  `json:"bid_increment"`
	BidCount     int              `json:"bid_count"`
	Status       Status           `json:"status"`
	StartTime    time.Time        `json:"start_time"`
	EndTime      time.Time        `json:"end_time"`
	SellerID     uuid.UUID        `json:"seller_id"`
	WinnerID     *uuid.UUID       `json:"winner_id,omitempty"`
	FinalPrice   *decimal.Decimal `json:"final_price,omitempty"`
	AllowOffers  bool             `json:"allow_offers"`
	Bids         []Bid            `json:"bids"`
	Offers       []Offer          `json:"offers"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Clone returns a deep copy so stores can hand out records without
// sharing mutable state with the engine.
func (a *Auction) Clone() *Auction {
	cp := *a
	if a.ReservePrice != nil {
		v := *a.ReservePrice
		cp.ReservePrice = &v
	}
	if a.BuyNowPrice != nil {
		v := *a.BuyNowPrice
		cp.BuyNowPrice = &v
	}
	if a.WinnerID != nil {
		v := *a.WinnerID
		cp.WinnerID = &v
	}
	if a.FinalPrice != nil {
		v := *a.FinalPrice
		cp.FinalPrice = &v
	}
	cp.Bids = make([]Bid, len(a.Bids))
	copy(cp.Bids, a.Bids)
	cp.Offers = make([]Offer, len(a.Offers))
	copy(cp.Offers, a.Offers)
	return &cp
}

// HighestBid returns the top accepted bid, or nil when there are none.
// The bid sequence is append-only and strictly increasing in amount,
// so the last element is the highest.
func (a *Auction) HighestBid() *Bid {
	if len(a.Bids) == 0 {
		return nil
	}
	return &a.Bids[len(a.Bids)-1]
}

// OfferByID returns a pointer into the auction's offer set, or nil.
func (a *Auction) OfferByID(id uuid.UUID) *Offer {
	for i := range a.Offers {
		if a.Offers[i].ID == id {
			return &a.Offers[i]
		}
	}
	return nil
}
