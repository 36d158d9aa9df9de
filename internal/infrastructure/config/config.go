// Package config provides centralized configuration management
// using Viper for configuration loading and validation
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/pantrysense/v2/internal/domain/user"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. PANTRYSENSE_SERVER_PORT
const EnvPrefix = "PANTRYSENSE"

// Config holds all application configuration
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Feed        FeedConfig       `mapstructure:"feed"`
	AI          AIConfig         `mapstructure:"ai"`
	Auth        AuthConfig       `mapstructure:"auth"`
	Storage     StorageConfig    `mapstructure:"storage"`
	Monitoring  MonitoringConfig `mapstructure:"monitoring"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Usage       UsageConfig      `mapstructure:"usage"`
	Preferences user.Preferences `mapstructure:"preferences"`

	v *viper.Viper
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	ReadTimeout      time.Duration `mapstructure:"read_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
	CompressionLevel int           `mapstructure:"compression_level"`
	EnableH2C        bool          `mapstructure:"enable_h2c"`
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	CORSMaxAge       time.Duration `mapstructure:"cors_max_age"`
}

// DatabaseConfig contains database configuration
type DatabaseConfig struct {
	Driver             string        `mapstructure:"driver"`
	DSN                string        `mapstructure:"dsn"`
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Name               string        `mapstructure:"name"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	SSLMode            string        `mapstructure:"ssl_mode"`
	Replicas           []string      `mapstructure:"replicas"`
	LoadBalancePolicy  string        `mapstructure:"load_balance_policy"`
	MaxOpenConns       int           `mapstructure:"max_open_conns"`
	MaxIdleConns       int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime    time.Duration `mapstructure:"conn_max_idle_time"`
	SlowQueryThreshold time.Duration `mapstructure:"slow_query_threshold"`
	LogLevel           string        `mapstructure:"log_level"`
}

// RedisConfig contains Redis configuration. When disabled the cache falls
// back to process memory.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// FeedConfig selects the inventory push channel
type FeedConfig struct {
	Provider          string        `mapstructure:"provider"`
	Channel           string        `mapstructure:"channel"`
	KeyPrefix         string        `mapstructure:"key_prefix"`
	FirebaseURL       string        `mapstructure:"firebase_url"`
	FirebaseAuthToken string        `mapstructure:"firebase_auth_token"`
	ReconnectDelay    time.Duration `mapstructure:"reconnect_delay"`
	PublishInterval   time.Duration `mapstructure:"publish_interval"`
}

// AIConfig contains recipe generation provider configuration
type AIConfig struct {
	Provider          string        `mapstructure:"provider"`
	Fallback          string        `mapstructure:"fallback"`
	OpenAIKey         string        `mapstructure:"openai_key"`
	OpenAIBaseURL     string        `mapstructure:"openai_base_url"`
	OpenAIModel       string        `mapstructure:"openai_model"`
	Temperature       float64       `mapstructure:"temperature"`
	OllamaURL         string        `mapstructure:"ollama_url"`
	OllamaModel       string        `mapstructure:"ollama_model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Burst             int           `mapstructure:"burst"`
	BatchTTL          time.Duration `mapstructure:"batch_ttl"`
}

// AuthConfig contains authentication configuration
type AuthConfig struct {
	Provider        string        `mapstructure:"provider"`
	FirebaseAPIKey  string        `mapstructure:"firebase_api_key"`
	FirebaseBaseURL string        `mapstructure:"firebase_base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	Issuer          string        `mapstructure:"issuer"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	BCryptCost      int           `mapstructure:"bcrypt_cost"`
}

// StorageConfig contains capture image storage configuration
type StorageConfig struct {
	Provider        string `mapstructure:"provider"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	ForcePathStyle  bool   `mapstructure:"force_path_style"`
}

// MonitoringConfig contains monitoring configuration
type MonitoringConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	MetricsEnabled bool          `mapstructure:"metrics_enabled"`
	TracingEnabled bool          `mapstructure:"tracing_enabled"`
	OTLPEndpoint   string        `mapstructure:"otlp_endpoint"`
	OTLPInsecure   bool          `mapstructure:"otlp_insecure"`
	SamplingRate   float64       `mapstructure:"sampling_rate"`
	HealthCacheTTL time.Duration `mapstructure:"health_cache_ttl"`
	HealthTimeout  time.Duration `mapstructure:"health_timeout"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Burst             int           `mapstructure:"burst"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl"`
}

// UsageConfig selects where depletion history comes from
type UsageConfig struct {
	HistorySource string `mapstructure:"history_source"`
	HistoryLimit  int    `mapstructure:"history_limit"`
}

// Load reads .env, the optional config file and PANTRYSENSE_* overrides, in
// increasing order of precedence
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/pantrysense")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.v = v
	return &cfg, nil
}

// Watch reloads the config file on every change and hands the result to
// onChange. Invalid edits are reported through onError and otherwise ignored.
// Without a config file there is nothing to watch.
func (c *Config) Watch(onChange func(*Config), onError func(error)) bool {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		return false
	}

	var mu sync.Mutex
	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		mu.Lock()
		defer mu.Unlock()

		next, err := decode(c.v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(next)
	})
	c.v.WatchConfig()
	return true
}

// File returns the config file in use, if any
func (c *Config) File() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}

// setDefaults sets default configuration values. Every key is listed so
// that AutomaticEnv can override it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "PantrySense")
	v.SetDefault("app.version", "2.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "45s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.compression_level", 5)
	v.SetDefault("server.enable_h2c", false)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.cors_max_age", "10m")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "pantrysense")
	v.SetDefault("database.username", "pantrysense")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.replicas", []string{})
	v.SetDefault("database.load_balance_policy", "random")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("database.slow_query_threshold", "200ms")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.key_prefix", "pantrysense:")

	v.SetDefault("feed.provider", "static")
	v.SetDefault("feed.channel", "food_monitor_1")
	v.SetDefault("feed.key_prefix", "feed:")
	v.SetDefault("feed.firebase_url", "")
	v.SetDefault("feed.firebase_auth_token", "")
	v.SetDefault("feed.reconnect_delay", "5s")
	v.SetDefault("feed.publish_interval", "10s")

	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.fallback", "")
	v.SetDefault("ai.openai_key", "")
	v.SetDefault("ai.openai_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("ai.openai_model", "mixtral-8x7b-32768")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.ollama_url", "http://localhost:11434")
	v.SetDefault("ai.ollama_model", "llama3.2:3b")
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.requests_per_minute", 30)
	v.SetDefault("ai.burst", 5)
	v.SetDefault("ai.batch_ttl", "24h")

	v.SetDefault("auth.provider", "memory")
	v.SetDefault("auth.firebase_api_key", "")
	v.SetDefault("auth.firebase_base_url", "")
	v.SetDefault("auth.timeout", "10s")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "pantrysense")
	v.SetDefault("auth.session_ttl", "24h")
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("storage.provider", "memory")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.force_path_style", false)

	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.host", "0.0.0.0")
	v.SetDefault("monitoring.port", 9090)
	v.SetDefault("monitoring.metrics_enabled", true)
	v.SetDefault("monitoring.tracing_enabled", false)
	v.SetDefault("monitoring.otlp_endpoint", "")
	v.SetDefault("monitoring.otlp_insecure", true)
	v.SetDefault("monitoring.sampling_rate", 0.1)
	v.SetDefault("monitoring.health_cache_ttl", "5s")
	v.SetDefault("monitoring.health_timeout", "5s")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 120)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.idle_ttl", "10m")

	v.SetDefault("usage.history_source", "mock")
	v.SetDefault("usage.history_limit", 7)

	defaults := user.DefaultPreferences()
	v.SetDefault("preferences.dark_mode", defaults.DarkMode)
	v.SetDefault("preferences.notifications", defaults.Notifications)
	v.SetDefault("preferences.stock_alerts", defaults.StockAlerts)
	v.SetDefault("preferences.recipe_suggestions", defaults.RecipeSuggestions)
	v.SetDefault("preferences.default_grocery", defaults.DefaultGrocery)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Monitoring.Enabled && (c.Monitoring.Port < 1 || c.Monitoring.Port > 65535) {
		return fmt.Errorf("monitoring.port must be between 1 and 65535")
	}
	if c.Monitoring.Enabled && c.Monitoring.Port == c.Server.Port && c.Monitoring.Host == c.Server.Host {
		return fmt.Errorf("monitoring.port must differ from server.port")
	}

	if err := oneOf("database.driver", c.Database.Driver, "sqlite", "postgres"); err != nil {
		return err
	}
	if err := oneOf("feed.provider", c.Feed.Provider, "redis", "firebase", "static"); err != nil {
		return err
	}
	if err := oneOf("ai.provider", c.AI.Provider, "openai", "ollama"); err != nil {
		return err
	}
	if c.AI.Fallback != "" {
		if err := oneOf("ai.fallback", c.AI.Fallback, "openai", "ollama"); err != nil {
			return err
		}
	}
	if err := oneOf("auth.provider", c.Auth.Provider, "firebase", "memory"); err != nil {
		return err
	}
	if err := oneOf("storage.provider", c.Storage.Provider, "s3", "memory"); err != nil {
		return err
	}
	if err := oneOf("usage.history_source", c.Usage.HistorySource, "mock", "recorded"); err != nil {
		return err
	}

	if c.Feed.Channel == "" {
		return fmt.Errorf("feed.channel is required")
	}
	if c.Feed.Provider == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("feed.provider redis requires redis.enabled")
	}
	if c.Feed.Provider == "firebase" && c.Feed.FirebaseURL == "" {
		return fmt.Errorf("feed.firebase_url is required for the firebase feed")
	}
	if c.Auth.Provider == "firebase" && c.Auth.FirebaseAPIKey == "" {
		return fmt.Errorf("auth.firebase_api_key is required for firebase auth")
	}
	if c.Storage.Provider == "s3" && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required for s3 storage")
	}
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required in production")
	}
	if err := c.Preferences.Validate(); err != nil {
		return fmt.Errorf("preferences.default_grocery: %w", err)
	}

	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), value)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns true if running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// DatabaseDSN returns the connection string for the configured driver
func (c *Config) DatabaseDSN() string {
	if c.Database.DSN != "" || c.Database.Driver != "postgres" {
		return c.Database.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.Username,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// RedisAddr returns host:port of the Redis server
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
