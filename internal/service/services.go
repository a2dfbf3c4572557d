package service

import (
	"time"

	"github.com/marketbay/auction-engine/internal/cache"
	"github.com/marketbay/auction-engine/internal/engine"
	"github.com/marketbay/auction-engine/pkg/logger"
)

type Services struct {
	AuctionService AuctionServicer
}

func NewServices(eng *engine.Engine, c cache.Cacher, snapshotTTL time.Duration, log *logger.Logger) *Services {
	return &Services{
		AuctionService: NewAuctionService(eng, c, snapshotTTL, log),
	}
}
