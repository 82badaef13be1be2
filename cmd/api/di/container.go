package di

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"samaj-directory/cmd/api/infrastructure"
	"samaj-directory/internal/adapter/cache"
	"samaj-directory/internal/adapter/db/postgres"
	ginhandler "samaj-directory/internal/adapter/gin/handler"
	grpcadapter "samaj-directory/internal/adapter/grpc"
	"samaj-directory/internal/adapter/grpc/middleware"
	"samaj-directory/internal/adapter/repository/cached"
	"samaj-directory/internal/config"
	domain "samaj-directory/internal/domain/directory"
	"samaj-directory/internal/scheduler"
	"samaj-directory/internal/usecase/directory"
	"samaj-directory/pkg/metrics"
	redisclient "samaj-directory/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client // nil when Redis is disabled
	Metrics     *metrics.Metrics
	DirectoryUC *directory.Service
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.DirectoryHandler
	GRPCServer  *grpcadapter.DirectoryServer
	Scheduler   *scheduler.Scheduler // nil when the scheduler is disabled
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	c := &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		RedisClient: rdb,
		Metrics:     metrics.New("samaj_directory"),
	}
	c.DirectoryUC = c.newUsecase()

	if rdb != nil {
		c.RateLimiter = middleware.NewRateLimiter(
			rdb.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           cfg.RateLimit.Enabled,
			},
			l,
		)
	}

	c.GinHandler = ginhandler.NewDirectoryHandler(c.DirectoryUC, c.Metrics, l)
	c.GRPCServer = grpcadapter.NewDirectoryServer(c.DirectoryUC, c.Metrics, l)

	if cfg.Scheduler.Enabled {
		c.Scheduler = scheduler.New(c.Metrics, l)
		timeout := time.Duration(cfg.App.ShutdownTimeoutSeconds) * time.Second
		if err := c.Scheduler.AddCountsRefresh(cfg.Scheduler.CountsRefresh, c.DirectoryUC, timeout); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	return c, nil
}

func (c *Container) newUsecase() *directory.Service {
	ttl := time.Duration(c.Config.Redis.CacheTTL) * time.Second

	repos := directory.Repositories{
		Organisations: withCache[domain.Organisation](c, postgres.NewOrganisationRepo(c.DB, c.Logger), domain.CollectionOrganisations, ttl),
		AryaSamajs:    withCache[domain.AryaSamaj](c, postgres.NewAryaSamajRepo(c.DB, c.Logger), domain.CollectionAryaSamajs, ttl),
		Members:       withCache[domain.Member](c, postgres.NewMemberRepo(c.DB, c.Logger), domain.CollectionMembers, ttl),
		Families:      withCache[domain.Family](c, postgres.NewFamilyRepo(c.DB, c.Logger), domain.CollectionFamilies, ttl),
		Activities:    withCache[domain.Activity](c, postgres.NewActivityRepo(c.DB, c.Logger), domain.CollectionActivities, ttl),
	}

	var counts directory.CountsCache
	if c.RedisClient != nil {
		counts = cache.NewCountsCache(c.RedisClient.Client, time.Duration(c.Config.Redis.CountsTTL)*time.Second, c.Logger)
	}

	sizes := directory.PageSizes{
		Default: c.Config.Pagination.DefaultPageSize,
		Max:     c.Config.Pagination.MaxPageSize,
	}
	return directory.New(repos, counts, sizes, c.Logger)
}

// withCache puts the Redis cache-aside decorator in front of repo when Redis is available.
func withCache[T cache.Keyed](c *Container, repo directory.Repository[T], coll domain.Collection, ttl time.Duration) directory.Repository[T] {
	if c.RedisClient == nil {
		return repo
	}
	entities := cache.NewRedisEntityCache[T](c.RedisClient.Client, string(coll), ttl, c.Logger)
	return cached.New[T](repo, entities, string(coll), c.Logger)
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
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
