package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/delivery-dispatch/internal/api/handler"
	"github.com/99minutos/delivery-dispatch/internal/core/ports"
	"github.com/99minutos/delivery-dispatch/internal/core/service"
	"github.com/99minutos/delivery-dispatch/internal/infrastructure/config"
	"github.com/99minutos/delivery-dispatch/internal/infrastructure/db/memory"
	mongostore "github.com/99minutos/delivery-dispatch/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/delivery-dispatch/internal/infrastructure/db/redis"
	s3store "github.com/99minutos/delivery-dispatch/internal/infrastructure/storage/s3"
	"github.com/99minutos/delivery-dispatch/internal/infrastructure/stream"
	"github.com/99minutos/delivery-dispatch/pkg/logger"
)

const zoneCacheTTL = 30 * time.Second

// app is the fully wired service graph shared by every subcommand.
type app struct {
	cfg *config.Config
	log zerolog.Logger

	shipments ports.ShipmentRepository
	agentRepo ports.AgentRepository

	auth       *service.AuthService
	deliveries *service.ShipmentService
	agents     *service.AgentService
	zones      *service.ZoneRegistry
	tracker    *service.LocationTracker
	reconciler *service.Reconciler
	feed       ports.TrackingFeed

	checks  map[string]handler.HealthCheck
	closers []func(context.Context) error
}

// setup loads configuration, initialises the logger and builds the app.
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx, zerolog.New(os.Stderr).With().Timestamp().Logger())
	if err != nil {
		return nil, err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "delivery-dispatch",
	})
	return build(ctx, cfg, log)
}

func build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log, checks: map[string]handler.HealthCheck{}}

	var (
		users ports.AuthRepository
		zones ports.ZoneRepository
	)
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)
		store, err := mongostore.NewStore(ctx, db)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.shipments, a.agentRepo, zones, users = store.Shipments, store.Agents, store.Zones, store.Users
		a.checks["mongodb"] = handler.MongoCheck(db)
	default:
		log.Warn().Msg("using in-memory store; data is lost on restart")
		a.shipments = memory.NewShipmentRepository()
		a.agentRepo = memory.NewAgentRepository()
		zones = memory.NewZoneRepository()
		users = memory.NewAuthRepository()
	}

	// Interfaces stay nil, not typed-nil, when the backing service is off.
	var dedup ports.LocationDedup
	switch cfg.TrackingFeed {
	case config.FeedRedis:
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		a.feed = redisstore.NewTrackingBus(rdb, log)
		dedup = redisstore.NewDedupChecker(rdb)
		a.checks["redis"] = handler.RedisCheck(rdb)
	default:
		a.feed = stream.NewHub()
	}

	var proofs ports.ProofStore
	if cfg.S3.Bucket != "" {
		up, err := s3store.NewUploader(ctx, s3store.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
		})
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		proofs = up
	}

	pricing := cfg.PricingTable()
	a.zones = service.NewZoneRegistry(zones, pricing.DefaultRates, cfg.Pricing.DefaultZone, zoneCacheTTL, log)
	fees := service.NewFeeEngine(pricing, a.zones)
	bookkeeper := service.NewBookkeeper(a.shipments, a.agentRepo, log)
	dispatcher := service.NewDispatcher(a.shipments, a.agentRepo, a.feed, log)
	lifecycle := service.NewLifecycleEngine(a.shipments, bookkeeper, a.feed, log)

	a.auth = service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL, cfg.AllowAdminSignup)
	a.deliveries = service.NewShipmentService(a.shipments, a.agentRepo, fees, dispatcher, lifecycle, proofs, log)
	a.agents = service.NewAgentService(a.agentRepo, dispatcher, log)
	a.tracker = service.NewLocationTracker(a.shipments, a.agentRepo, dedup, a.feed, cfg.TrackingSettings(), log)
	a.reconciler = service.NewReconciler(a.shipments, a.agentRepo, bookkeeper, dispatcher, log)

	return a, nil
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}
