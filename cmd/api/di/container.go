package di

import (
	"context"
	"fmt"
	"time"

	"user-fixture-service/cmd/api/infrastructure"
	"user-fixture-service/internal/adapter/cache"
	"user-fixture-service/internal/adapter/db/sqlstore"
	ginhandler "user-fixture-service/internal/adapter/gin/handler"
	"user-fixture-service/internal/adapter/grpc/middleware"
	"user-fixture-service/internal/adapter/repository/cached"
	"user-fixture-service/internal/adapter/repository/memory"
	"user-fixture-service/internal/adapter/seed"
	"user-fixture-service/internal/config"
	"user-fixture-service/internal/usecase/user"
	"user-fixture-service/pkg/ratelimit"
	redisclient "user-fixture-service/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigFile is the path handed to the settings loader behind LoadConfig.
const ConfigFile = "config.yaml"

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	DB              *gorm.DB
	RedisClient     *redisclient.Client
	Store           user.Repository
	Generation      string // cache namespace of the backing store
	UserUC          user.Usecase
	Limiter         *ratelimit.Limiter
	GRPCRateLimiter *middleware.RateLimiter
	GinHandler      *ginhandler.UserHandler
	Seeder          *seed.Seeder
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	c.RedisClient = rdb

	var backing user.Repository
	switch cfg.DB.Driver {
	case config.DriverMemory:
		store := memory.NewUserStore(l)
		backing = store
		c.Generation = store.Generation()
	default:
		db, err := infrastructure.NewDatabase(cfg, l)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		repo := sqlstore.NewUserRepo(db, l)
		if c.Generation, err = repo.Generation(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
		backing = repo
	}

	// Redis-backed pieces stay nil without a client
	var (
		userCache   cache.UserCache
		redisClient *goredis.Client
	)
	if rdb != nil {
		redisClient = rdb.Client
		userCache = cache.NewRedisUserCache(redisClient, c.Generation, time.Duration(cfg.Redis.CacheTTL)*time.Second, l)
	}
	c.Store = cached.NewUserStore(backing, userCache, l)

	c.UserUC = user.New(c.Store, config.NewLoader(ConfigFile), l)

	c.Limiter = ratelimit.New(redisClient, ratelimit.Config{
		Enabled:           cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstCapacity:     cfg.RateLimit.BurstCapacity,
	}, l)
	c.GRPCRateLimiter = middleware.NewRateLimiter(c.Limiter, l)

	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.Seeder = seed.NewSeeder(c.UserUC, l)

	return c, nil
}

// Seed appends the configured startup records.
func (c *Container) Seed(ctx context.Context) error {
	added, err := c.Seeder.Run(ctx, c.Config.Seed.Admin, c.Config.Seed.File)
	if err != nil {
		return fmt.Errorf("failed to seed users after %d records: %w", added, err)
	}
	return nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
