package domain

import "github.com/shopspring/decimal"

// Snapshot is the read model handed to API clients: the auction record
// plus the derived pricing fields the front end renders.
type Snapshot struct {
	Auction
	MinNextBid   decimal.Decimal `json:"min_next_bid"`
	ReserveMet   bool            `json:"reserve_met"`
	DisplayPrice decimal.Decimal `json:"display_price"`
}
