// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"fmt"
	"os"
	"time"

	appai "github.com/pantrysense/v2/internal/application/ai"
	appcapture "github.com/pantrysense/v2/internal/application/capture"
	"github.com/pantrysense/v2/internal/application/events"
	appinventory "github.com/pantrysense/v2/internal/application/inventory"
	apprecipe "github.com/pantrysense/v2/internal/application/recipe"
	appshopping "github.com/pantrysense/v2/internal/application/shopping"
	appusage "github.com/pantrysense/v2/internal/application/usage"
	appuser "github.com/pantrysense/v2/internal/application/user"
	"github.com/pantrysense/v2/internal/domain/inventory"
	"github.com/pantrysense/v2/internal/domain/shared"
	"github.com/pantrysense/v2/internal/infrastructure/ai/ollama"
	"github.com/pantrysense/v2/internal/infrastructure/ai/openai"
	firebaseauth "github.com/pantrysense/v2/internal/infrastructure/auth/firebase"
	memoryauth "github.com/pantrysense/v2/internal/infrastructure/auth/memory"
	"github.com/pantrysense/v2/internal/infrastructure/config"
	firebasefeed "github.com/pantrysense/v2/internal/infrastructure/feed/firebase"
	redisfeed "github.com/pantrysense/v2/internal/infrastructure/feed/redis"
	staticfeed "github.com/pantrysense/v2/internal/infrastructure/feed/static"
	"github.com/pantrysense/v2/internal/infrastructure/http/apiserver"
	"github.com/pantrysense/v2/internal/infrastructure/http/middleware"
	"github.com/pantrysense/v2/internal/infrastructure/monitoring"
	gormrepo "github.com/pantrysense/v2/internal/infrastructure/persistence/gorm"
	"github.com/pantrysense/v2/internal/infrastructure/persistence/memory"
	rediscache "github.com/pantrysense/v2/internal/infrastructure/persistence/redis"
	s3store "github.com/pantrysense/v2/internal/infrastructure/storage/s3"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/pantrysense/v2/pkg/healthcheck"
	"github.com/pantrysense/v2/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigPathEnv names the variable holding an explicit config file path
const ConfigPathEnv = "PANTRYSENSE_CONFIG"

// Module provides all dependency injection modules
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	TelemetryModule,
	DatabaseModule,
	CacheModule,
	FeedModule,
	AIModule,
	AuthModule,
	StorageModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load(os.Getenv(ConfigPathEnv))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*logger.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.IsDevelopment(),
		})
	},
	func(l *logger.Logger) *zap.Logger {
		return l.Logger
	},
)

// TelemetryModule provides the metrics registry, OpenTelemetry and the domain metrics
var TelemetryModule = fx.Provide(
	monitoring.NewRegistry,
	func(reg *prometheus.Registry) prometheus.Registerer { return reg },
	func(reg *prometheus.Registry) prometheus.Gatherer { return reg },
	func(cfg *config.Config, reg prometheus.Registerer, log *zap.Logger) (*monitoring.Telemetry, error) {
		return monitoring.NewTelemetry(monitoring.TelemetryConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			TracingEnabled: cfg.Monitoring.TracingEnabled,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			OTLPInsecure:   cfg.Monitoring.OTLPInsecure,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			MetricsEnabled: cfg.Monitoring.MetricsEnabled,
		}, reg, log)
	},
	func(t *monitoring.Telemetry) metric.Meter { return t.Meter() },
	middleware.NewMetrics,
	monitoring.NewEventMetrics,
	fx.Annotate(events.NewDispatcher, fx.As(new(shared.EventDispatcher))),
)

// DatabaseModule provides the relational store and its repositories
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		dbCfg := gormrepo.Config{
			Driver:             cfg.Database.Driver,
			DSN:                cfg.DatabaseDSN(),
			Name:               cfg.Database.Name,
			Replicas:           cfg.Database.Replicas,
			LoadBalancePolicy:  cfg.Database.LoadBalancePolicy,
			MaxOpenConns:       cfg.Database.MaxOpenConns,
			MaxIdleConns:       cfg.Database.MaxIdleConns,
			ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime:    cfg.Database.ConnMaxIdleTime,
			SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
			LogLevel:           cfg.Database.LogLevel,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := gormrepo.Open(ctx, dbCfg, log)
		if err != nil {
			return nil, err
		}
		if err := gormrepo.Migrate(db, dbCfg, log); err != nil {
			_ = gormrepo.Close(db)
			return nil, err
		}
		return db, nil
	},
	fx.Annotate(gormrepo.NewReadingRepository, fx.As(new(outbound.ReadingRepository))),
	fx.Annotate(gormrepo.NewCaptureRepository, fx.As(new(outbound.CaptureRepository))),
)

// CacheModule provides the Redis client (nil when disabled) and the cache repository
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*goredis.Client, error) {
		if !cfg.Redis.Enabled {
			return nil, nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout+time.Second)
		defer cancel()

		client, err := rediscache.NewClient(ctx, rediscache.Config{
			Addr:         cfg.RedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.Database,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr()))
		return client, nil
	},
	func(cfg *config.Config, client *goredis.Client, log *zap.Logger) outbound.CacheRepository {
		if client == nil {
			log.Info("Using in-memory cache")
			return memory.NewCacheRepository(time.Minute)
		}
		return rediscache.NewCacheRepository(client, cfg.Redis.KeyPrefix, log)
	},
)

// FeedModule provides the inventory push channel
var FeedModule = fx.Provide(
	func(cfg *config.Config, client *goredis.Client, log *zap.Logger) outbound.InventoryFeed {
		switch cfg.Feed.Provider {
		case "redis":
			return redisfeed.NewFeed(client, cfg.Feed.KeyPrefix, log)
		case "firebase":
			return firebasefeed.NewFeed(firebasefeed.Config{
				DatabaseURL:    cfg.Feed.FirebaseURL,
				AuthToken:      cfg.Feed.FirebaseAuthToken,
				ReconnectDelay: cfg.Feed.ReconnectDelay,
			}, log)
		default:
			log.Warn("Serving a fixed sensor reading, no push channel configured")
			return staticfeed.NewFeed(fixedReading(time.Now(), cfg.Feed.PublishInterval))
		}
	},
)

// fixedReading is the demo value served when no push channel is configured
func fixedReading(now time.Time, interval time.Duration) *inventory.SensorReading {
	return &inventory.SensorReading{
		Distance:  12.5,
		Weight:    850,
		FoodLevel: 70,
		Timestamp: now.UnixMilli(),
		Interval:  interval.Milliseconds(),
	}
}

// AIModule provides the recipe generation provider chain
var AIModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.AIService {
		primary := aiProvider(cfg, cfg.AI.Provider, log)
		var secondary outbound.AIService
		if cfg.AI.Fallback != "" && cfg.AI.Fallback != cfg.AI.Provider {
			secondary = aiProvider(cfg, cfg.AI.Fallback, log)
		}
		return appai.NewAIService(appai.Config{
			RequestsPerMinute: cfg.AI.RequestsPerMinute,
			Burst:             cfg.AI.Burst,
		}, primary, secondary, log)
	},
)

func aiProvider(cfg *config.Config, name string, log *zap.Logger) outbound.AIService {
	if name == "ollama" {
		return ollama.NewClient(ollama.Config{
			BaseURL: cfg.AI.OllamaURL,
			Model:   cfg.AI.OllamaModel,
			Timeout: cfg.AI.Timeout,
		}, log)
	}
	return openai.NewClient(openai.Config{
		APIKey:      cfg.AI.OpenAIKey,
		BaseURL:     cfg.AI.OpenAIBaseURL,
		Model:       cfg.AI.OpenAIModel,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	}, log)
}

// AuthModule provides the identity provider
var AuthModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) outbound.AuthProvider {
		if cfg.Auth.Provider == "firebase" {
			return firebaseauth.NewProvider(firebaseauth.Config{
				APIKey:  cfg.Auth.FirebaseAPIKey,
				BaseURL: cfg.Auth.FirebaseBaseURL,
				Timeout: cfg.Auth.Timeout,
			}, log)
		}
		log.Warn("Using in-memory accounts, sign-ups are lost on restart")
		return memoryauth.NewProvider(cfg.Auth.BCryptCost)
	},
)

// StorageModule provides the capture object store. The health check is nil for
// in-memory storage.
var StorageModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.ObjectStore, *s3store.ObjectStore, error) {
		if cfg.Storage.Provider != "s3" {
			return memory.NewObjectStore(cfg.Storage.PublicBaseURL), nil, nil
		}
		store, err := s3store.NewObjectStore(s3store.Config{
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			PublicBaseURL:   cfg.Storage.PublicBaseURL,
			ForcePathStyle:  cfg.Storage.ForcePathStyle,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	},
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(cfg *config.Config, feed outbound.InventoryFeed, readings outbound.ReadingRepository, dispatcher shared.EventDispatcher, log *zap.Logger) *appinventory.Service {
		return appinventory.NewService(appinventory.Config{Channel: cfg.Feed.Channel}, feed, readings, dispatcher, log)
	},
	func(s *appinventory.Service) inbound.InventoryService { return s },

	func(cfg *config.Config, inv *appinventory.Service, readings outbound.ReadingRepository, log *zap.Logger) inbound.UsageService {
		return appusage.NewService(appusage.Config{
			HistorySource: cfg.Usage.HistorySource,
			HistoryLimit:  cfg.Usage.HistoryLimit,
		}, inv, readings, log)
	},

	func(
		cfg *config.Config,
		aiService outbound.AIService,
		inv *appinventory.Service,
		cache outbound.CacheRepository,
		dispatcher shared.EventDispatcher,
		meter metric.Meter,
		log *zap.Logger,
	) inbound.RecipeService {
		return apprecipe.NewRecipeService(apprecipe.Config{BatchTTL: cfg.AI.BatchTTL}, aiService, inv, cache, dispatcher, meter, log)
	},

	func(inv *appinventory.Service, log *zap.Logger) *appshopping.Service {
		return appshopping.NewService(inv, log)
	},
	func(s *appshopping.Service) inbound.ShoppingService { return s },

	func(cfg *config.Config, provider outbound.AuthProvider, cache outbound.CacheRepository, log *zap.Logger) (inbound.AuthService, error) {
		secret := cfg.Auth.JWTSecret
		if secret == "" {
			log.Warn("No JWT secret configured, using a random per-process secret")
			secret = randomSecret()
		}
		return appuser.NewAuthService(appuser.AuthConfig{
			JWTSecret:  secret,
			Issuer:     cfg.Auth.Issuer,
			SessionTTL: cfg.Auth.SessionTTL,
		}, provider, cache, nil, log), nil
	},

	func(cfg *config.Config, cache outbound.CacheRepository, log *zap.Logger) inbound.PreferencesService {
		return appuser.NewPreferencesService(cfg.Preferences, cache, log)
	},

	func(objects outbound.ObjectStore, repo outbound.CaptureRepository, log *zap.Logger) inbound.CaptureService {
		return appcapture.NewService(objects, repo, log)
	},
)

// HTTPModule provides the API server, health checks and the ops server
var HTTPModule = fx.Provide(
	func(
		cfg *config.Config,
		auth inbound.AuthService,
		inv inbound.InventoryService,
		usage inbound.UsageService,
		recipes inbound.RecipeService,
		shopping inbound.ShoppingService,
		prefs inbound.PreferencesService,
		captures inbound.CaptureService,
		metrics *middleware.Metrics,
		log *zap.Logger,
	) *apiserver.Server {
		return apiserver.New(apiserver.Config{
			Host:             cfg.Server.Host,
			Port:             cfg.Server.Port,
			ReadTimeout:      cfg.Server.ReadTimeout,
			WriteTimeout:     cfg.Server.WriteTimeout,
			IdleTimeout:      cfg.Server.IdleTimeout,
			RequestTimeout:   cfg.Server.RequestTimeout,
			CompressionLevel: cfg.Server.CompressionLevel,
			EnableH2C:        cfg.Server.EnableH2C,
			CORS: middleware.CORSConfig{
				AllowedOrigins: cfg.Server.AllowedOrigins,
				MaxAge:         cfg.Server.CORSMaxAge,
			},
			RateLimit: middleware.RateLimitConfig{
				Enabled:           cfg.RateLimit.Enabled,
				RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
				Burst:             cfg.RateLimit.Burst,
				IdleTTL:           cfg.RateLimit.IdleTTL,
			},
		}, apiserver.Services{
			Auth:        auth,
			Inventory:   inv,
			Usage:       usage,
			Recipes:     recipes,
			Shopping:    shopping,
			Preferences: prefs,
			Captures:    captures,
		}, metrics, log)
	},
	NewHealthCheck,
	func(cfg *config.Config, health *healthcheck.Checker, gatherer prometheus.Gatherer, log *zap.Logger) *monitoring.OpsServer {
		return monitoring.NewOpsServer(monitoring.OpsConfig{
			Enabled: cfg.Monitoring.Enabled,
			Host:    cfg.Monitoring.Host,
			Port:    cfg.Monitoring.Port,
		}, health, gatherer, log)
	},
)

// LifecycleModule wires event handlers, config reload and start/stop hooks
var LifecycleModule = fx.Invoke(
	RegisterEventHandlers,
	WatchConfig,
	RegisterLifecycleHooks,
)
