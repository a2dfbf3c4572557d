package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marketbay/auction-engine/internal/domain"
	"github.com/marketbay/auction-engine/internal/engine"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to domain.Status }{
		{domain.StatusDraft, domain.StatusApproved},
		{domain.StatusDraft, domain.StatusCancelled},
		{domain.StatusApproved, domain.StatusActive},
		{domain.StatusApproved, domain.StatusCancelled},
		{domain.StatusActive, domain.StatusEnded},
		{domain.StatusActive, domain.StatusSold},
		{domain.StatusActive, domain.StatusSoldBuyNow},
		{domain.StatusActive, domain.StatusReserveNotMet},
		{domain.StatusActive, domain.StatusCancelled},
	}
	for _, tc := range allowed {
		assert.True(t, engine.CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	denied := []struct{ from, to domain.Status }{
		{domain.StatusDraft, domain.StatusActive},
		{domain.StatusDraft, domain.StatusSold},
		{domain.StatusApproved, domain.StatusEnded},
		{domain.StatusActive, domain.StatusDraft},
		{domain.StatusActive, domain.StatusApproved},
		{domain.StatusSold, domain.StatusActive},
		{domain.StatusSoldBuyNow, domain.StatusCancelled},
		{domain.StatusEnded, domain.StatusSold},
		{domain.StatusReserveNotMet, domain.StatusSold},
		{domain.StatusCancelled, domain.StatusApproved},
	}
	for _, tc := range denied {
		assert.False(t, engine.CanTransition(tc.from, tc.to), "%s -> %s should be illegal", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := []domain.Status{
		domain.StatusEnded,
		domain.StatusSold,
		domain.StatusSoldBuyNow,
		domain.StatusReserveNotMet,
		domain.StatusCancelled,
	}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "%s is terminal", s)
	}

	for _, s := range []domain.Status{domain.StatusDraft, domain.StatusApproved, domain.StatusActive} {
		assert.False(t, s.Terminal(), "%s is not terminal", s)
	}
}
