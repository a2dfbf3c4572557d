package engine_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/marketbay/auction-engine/internal/domain"
	"github.com/marketbay/auction-engine/internal/engine"
)

func TestComputePricing_MinNextBid(t *testing.T) {
	a := &domain.Auction{
		Type:         domain.TypeStandard,
		StartPrice:   dec("1000"),
		CurrentPrice: dec("1000"),
		BidIncrement: dec("100"),
	}

	p := engine.ComputePricing(a)
	assert.True(t, p.MinNextBid.Equal(dec("1000")), "no bids: minimum is the start price")

	a.BidCount = 1
	a.CurrentPrice = dec("1000")
	p = engine.ComputePricing(a)
	assert.True(t, p.MinNextBid.Equal(dec("1100")))

	a.BidCount = 3
	a.CurrentPrice = dec("1750.50")
	p = engine.ComputePricing(a)
	assert.True(t, p.MinNextBid.Equal(dec("1850.50")))
}

func TestComputePricing_ReserveMet(t *testing.T) {
	reserve := dec("5000")

	a := &domain.Auction{
		Type:         domain.TypeReserve,
		StartPrice:   dec("1000"),
		CurrentPrice: dec("4500"),
		ReservePrice: &reserve,
		BidCount:     2,
		BidIncrement: dec("100"),
	}
	assert.False(t, engine.ComputePricing(a).ReserveMet)

	a.CurrentPrice = dec("5000")
	assert.True(t, engine.ComputePricing(a).ReserveMet)

	// non-reserve types are always met, reserve or not
	a.Type = domain.TypeStandard
	a.CurrentPrice = dec("1")
	assert.True(t, engine.ComputePricing(a).ReserveMet)
}

func TestComputePricing_DisplayPriceTracksPendingOffers(t *testing.T) {
	buyNow := dec("4000")
	a := &domain.Auction{
		Type:         domain.TypeBuyNow,
		StartPrice:   dec("1000"),
		CurrentPrice: dec("1000"),
		BuyNowPrice:  &buyNow,
		AllowOffers:  true,
		Offers: []domain.Offer{
			{ID: uuid.New(), Amount: dec("1800"), Status: domain.OfferPending},
			{ID: uuid.New(), Amount: dec("2600"), Status: domain.OfferPending},
			{ID: uuid.New(), Amount: dec("3900"), Status: domain.OfferRejected},
		},
	}

	p := engine.ComputePricing(a)
	assert.True(t, p.DisplayPrice.Equal(dec("2600")), "highest pending offer wins the display")
	assert.True(t, p.CurrentPrice.Equal(dec("1000")), "stored price untouched")

	// bidding types never borrow the offer amount for display
	a.Type = domain.TypeStandard
	p = engine.ComputePricing(a)
	assert.True(t, p.DisplayPrice.Equal(dec("1000")))
}
