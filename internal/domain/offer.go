package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferTTL is how long a submitted offer stays acceptable.
const OfferTTL = 48 * time.Hour

type OfferStatus string

const (
	OfferPending  OfferStatus = "pending"
	OfferAccepted OfferStatus = "accepted"
	OfferRejected OfferStatus = "rejected"
	OfferExpired  OfferStatus = "expired"
)

// Offer is a time-boxed price proposal in a lane parallel to bidding.
// Only its status may change after creation.
type Offer struct {
	ID        uuid.UUID       `json:"id"`
	AuctionID uuid.UUID       `json:"auction_id"`
	BuyerID   uuid.UUID       `json:"buyer_id"`
	Amount    decimal.Decimal `json:"amount"`
	Message   string          `json:"message,omitempty"`
	Status    OfferStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// ExpiredAt reports whether the offer is past its expiry at the given
// instant. Only pending offers can expire.
func (o *Offer) ExpiredAt(now time.Time) bool {
	return o.Status == OfferPending && !now.Before(o.ExpiresAt)
}
