package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateAuctionRequest struct {
	Title        string           `json:"title" validate:"required"`
	AuctionType  string           `json:"auction_type" validate:"required,oneof=standard reserve buy_now"`
	StartPrice   decimal.Decimal  `json:"start_price" validate:"required"`
	ReservePrice *decimal.Decimal `json:"reserve_price"`
	BuyNowPrice  *decimal.Decimal `json:"buy_now_price"`
	BidIncrement decimal.Decimal  `json:"bid_increment"`
	StartTime    time.Time        `json:"start_time" validate:"required"`
	EndTime      time.Time        `json:"end_time" validate:"required"`
	AllowOffers  bool             `json:"allow_offers"`
}

type PlaceBidRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type SubmitOfferRequest struct {
	Amount  decimal.Decimal `json:"amount" validate:"required"`
	Message string          `json:"message" validate:"max=500"`
}
