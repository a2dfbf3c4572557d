package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketbay/auction-engine/internal/domain"
)

func TestAuctionTypeCapabilities(t *testing.T) {
	tests := []struct {
		typ     domain.AuctionType
		bidding bool
		buyNow  bool
	}{
		{domain.TypeStandard, true, false},
		{domain.TypeReserve, true, false},
		{domain.TypeBuyNow, false, true},
	}
	for _, tc := range tests {
		assert.True(t, tc.typ.Valid())
		assert.Equal(t, tc.bidding, tc.typ.SupportsBidding(), "%s bidding", tc.typ)
		assert.Equal(t, tc.buyNow, tc.typ.SupportsBuyNow(), "%s buy now", tc.typ)
	}

	assert.False(t, domain.AuctionType("dutch").Valid())
	assert.False(t, domain.AuctionType("dutch").SupportsBidding())
}

func TestCloneIsDeep(t *testing.T) {
	reserve := decimal.NewFromInt(500)
	a := &domain.Auction{
		ID:           uuid.New(),
		ReservePrice: &reserve,
		Bids: []domain.Bid{
			{ID: uuid.New(), Amount: decimal.NewFromInt(100)},
		},
		Offers: []domain.Offer{
			{ID: uuid.New(), Status: domain.OfferPending},
		},
	}

	cp := a.Clone()
	cp.Bids[0].Amount = decimal.NewFromInt(999)
	cp.Offers[0].Status = domain.OfferRejected
	*cp.ReservePrice = decimal.NewFromInt(1)

	assert.True(t, a.Bids[0].Amount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, domain.OfferPending, a.Offers[0].Status)
	assert.True(t, a.ReservePrice.Equal(decimal.NewFromInt(500)))
}

func TestOfferExpiredAt(t *testing.T) {
	now := time.Now()
	o := &domain.Offer{Status: domain.OfferPending, ExpiresAt: now.Add(time.Hour)}

	assert.False(t, o.ExpiredAt(now))
	assert.True(t, o.ExpiredAt(now.Add(time.Hour)), "expiry instant counts as expired")
	assert.True(t, o.ExpiredAt(now.Add(2*time.Hour)))

	o.Status = domain.OfferAccepted
	assert.False(t, o.ExpiredAt(now.Add(2*time.Hour)), "only pending offers expire")
}

func TestHighestBid(t *testing.T) {
	a := &domain.Auction{}
	require.Nil(t, a.HighestBid())

	top := uuid.New()
	a.Bids = []domain.Bid{
		{BidderID: uuid.New(), Amount: decimal.NewFromInt(100)},
		{BidderID: top, Amount: decimal.NewFromInt(200)},
	}
	hb := a.HighestBid()
	require.NotNil(t, hb)
	assert.Equal(t, top, hb.BidderID)
}
