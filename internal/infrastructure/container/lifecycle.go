package container

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"io"

	appinventory "github.com/pantrysense/v2/internal/application/inventory"
	appshopping "github.com/pantrysense/v2/internal/application/shopping"
	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/shared"
	aiinfra "github.com/pantrysense/v2/internal/infrastructure/ai"
	"github.com/pantrysense/v2/internal/infrastructure/config"
	"github.com/pantrysense/v2/internal/infrastructure/http/apiserver"
	"github.com/pantrysense/v2/internal/infrastructure/monitoring"
	gormrepo "github.com/pantrysense/v2/internal/infrastructure/persistence/gorm"
	s3store "github.com/pantrysense/v2/internal/infrastructure/storage/s3"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/pantrysense/v2/pkg/healthcheck"
	"github.com/pantrysense/v2/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewHealthCheck registers a check per dependency. The feed, the AI provider
// and object storage are optional: inventory reads report the feed error,
// recipes fall back to built-in content and only captures need storage.
func NewHealthCheck(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *goredis.Client,
	aiService outbound.AIService,
	inv *appinventory.Service,
	s3 *s3store.ObjectStore,
	log *zap.Logger,
) (*healthcheck.Checker, error) {
	health := healthcheck.New(cfg.App.Version, cfg.Monitoring.HealthTimeout, cfg.Monitoring.HealthCacheTTL, log.Named("health"))

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	health.Require("database", sqlDB.PingContext)

	if redisClient != nil {
		health.Require("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	if s3 != nil {
		health.Optional("storage", s3.Ping)
	}
	health.Optional("ai", aiinfra.HealthCheck(aiService, log))
	health.Optional("feed", func(context.Context) error {
		_, err := inv.Current()
		return err
	})

	return health, nil
}

// RegisterEventHandlers subscribes the cart reseeding and the domain metrics
func RegisterEventHandlers(dispatcher shared.EventDispatcher, shopping *appshopping.Service, metrics *monitoring.EventMetrics) {
	dispatcher.Register(inventory.EventLowStockChanged, shopping.HandleLowStockChanged)
	metrics.Register(dispatcher)
}

// WatchConfig applies log level edits of the config file without a restart
func WatchConfig(cfg *config.Config, l *logger.Logger) {
	log := l.Named("config")
	watching := cfg.Watch(func(next *config.Config) {
		l.SetLevel(next.App.LogLevel)
		log.Info("Configuration reloaded", zap.String("log_level", next.App.LogLevel))
	}, func(err error) {
		log.Warn("Ignoring invalid configuration change", zap.Error(err))
	})
	if watching {
		log.Info("Watching config file", zap.String("file", cfg.File()))
	}
}

// RegisterLifecycleHooks starts the feed subscription and the listeners, and
// stops them in reverse order
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	redisClient *goredis.Client,
	cache outbound.CacheRepository,
	telemetry *monitoring.Telemetry,
	inv *appinventory.Service,
	api *apiserver.Server,
	ops *monitoring.OpsServer,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting PantrySense",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("feed", cfg.Feed.Provider),
			)
			return inv.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			if err := inv.Stop(ctx); err != nil {
				log.Error("Failed to stop inventory subscription", zap.Error(err))
			}
			if closer, ok := cache.(io.Closer); ok {
				_ = closer.Close()
			}
			if redisClient != nil {
				if err := redisClient.Close(); err != nil {
					log.Error("Failed to close redis client", zap.Error(err))
				}
			}
			if err := gormrepo.Close(db); err != nil {
				log.Error("Failed to close database connection", zap.Error(err))
			}
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown telemetry", zap.Error(err))
			}
			_ = log.Sync()
			return nil
		},
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return api.Start()
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down API server")
			return api.Shutdown(ctx)
		},
	})

	if cfg.Monitoring.Enabled {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return ops.Start()
			},
			OnStop: func(ctx context.Context) error {
				return ops.Shutdown(ctx)
			},
		})
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
