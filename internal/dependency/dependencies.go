package dependency

import (
	"context"

	"github.com/marketbay/auction-engine/internal/cache"
	"github.com/marketbay/auction-engine/internal/engine"
	"github.com/marketbay/auction-engine/internal/handlers"
	"github.com/marketbay/auction-engine/internal/repository"
	"github.com/marketbay/auction-engine/internal/scheduler"
	"github.com/marketbay/auction-engine/internal/service"
	"github.com/marketbay/auction-engine/pkg/config"
	"github.com/marketbay/auction-engine/pkg/logger"
)

// Dependencies holds all the initialized instances required by the application.
type Dependencies struct {
	Store          repository.AuctionStore
	Cache          cache.Cacher
	Engine         *engine.Engine
	Scheduler      *scheduler.Scheduler
	Services       *service.Services
	AuctionHandler *handlers.AuctionHandler
}

// NewDependencies connects storage and cache, and wires up the engine,
// scheduler, services and handlers. An empty DB DSN selects the
// in-memory store; an empty Redis address selects the in-memory cache.
func NewDependencies(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Dependencies, error) {
	var (
		store repository.AuctionStore
		err   error
	)
	if cfg.Database.DSN != "" {
		store, err = repository.NewPostgresStore(ctx, cfg.Database.DSN)
		if err != nil {
			log.Errorw("[DB] connection failed", "error", err)
			return nil, err
		}
		log.Infow("[DB] connected")
	} else {
		store = repository.NewMemoryStore()
		log.Infow("[DB] using in-memory store")
	}

	var c cache.Cacher
	if cfg.Cache.RedisAddr != "" {
		c, err = cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Errorw("[Cache] connection failed", "error", err)
			return nil, err
		}
		log.Infow("[Cache] connected")
	} else {
		c = cache.NewMemoryCache()
		log.Infow("[Cache] using in-memory cache")
	}

	eng := engine.New(store, log)
	sched := scheduler.New(eng, c, cfg.Scheduler.Interval, log)
	services := service.NewServices(eng, c, cfg.Cache.SnapshotTTL, log)
	auctionHandler := handlers.NewAuctionHandler(services.AuctionService)

	return &Dependencies{
		Store:          store,
		Cache:          c,
		Engine:         eng,
		Scheduler:      sched,
		Services:       services,
		AuctionHandler: auctionHandler,
	}, nil
}

// Close releases storage and cache connections.
func (d *Dependencies) Close(ctx context.Context) error {
	if err := d.Cache.Close(); err != nil {
		return err
	}
	return d.Store.Close(ctx)
}
