package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// MaxHistoryLimit is the largest number of sync runs kept in memory.
const MaxHistoryLimit = 100

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Sync        SyncConfig
	Marketplace MarketplaceConfig
	Telemetry   TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	Version string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds the settings used to verify operator tokens
type JWTConfig struct {
	Secret    string
	Issuer    string
	AdminRole string // role claim required on mutating routes
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
	MaxBodySize    int64
	TrustedProxies []string
	AllowOrigins   []string // CORS origins of the admin frontend; empty rejects cross-origin calls
}

// SyncConfig holds reconciliation and coordinator settings
type SyncConfig struct {
	MaxConcurrentChannels   int
	PushConcurrency         int
	AdapterTimeout          time.Duration
	HistoryLimit            int
	ScheduleIntervalMinutes int           // 0 disables the recurring schedule at startup
	OrderLookback           time.Duration // window used when an order sync has no explicit since
	DistributedLock         bool          // guard runs with a Redis lock across replicas
	LockTTL                 time.Duration
	RunTimeout              time.Duration
}

// MarketplaceConfig holds credentials for the remote channels
type MarketplaceConfig struct {
	Amazon AmazonConfig
	Etsy   EtsyConfig
}

// AmazonConfig holds Selling Partner API settings
type AmazonConfig struct {
	Enabled        bool
	AccessToken    string
	SellerID       string
	MarketplaceID  string
	APIBaseURL     string
	TimeoutSeconds int
}

// EtsyConfig holds Etsy Open API v3 settings
type EtsyConfig struct {
	Enabled        bool
	APIKey         string
	AccessToken    string
	ShopID         string
	APIBaseURL     string
	TimeoutSeconds int
	PageSize       int
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	MetricsInterval   time.Duration
	LogsEnabled       bool
	// Database tracing options
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
	// Pyroscope continuous profiling
	ProfilingEnabled  bool
	ProfilerAddress   string
	ProfilerAuthUser  string
	ProfilerAuthPass  string
	SpanProfiles      bool // link trace spans to profiles; needs tracing and profiling
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			Version: v.GetString("app.version"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:    v.GetString("jwt.secret"),
			Issuer:    v.GetString("jwt.issuer"),
			AdminRole: v.GetString("jwt.admin_role"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
			MaxBodySize:    v.GetInt64("http.max_body_size"),
			TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
			AllowOrigins:   v.GetStringSlice("http.allow_origins"),
		},
		Sync: SyncConfig{
			MaxConcurrentChannels:   v.GetInt("sync.max_concurrent_channels"),
			PushConcurrency:         v.GetInt("sync.push_concurrency"),
			AdapterTimeout:          v.GetDuration("sync.adapter_timeout"),
			HistoryLimit:            v.GetInt("sync.history_limit"),
			ScheduleIntervalMinutes: v.GetInt("sync.schedule_interval_minutes"),
			OrderLookback:           v.GetDuration("sync.order_lookback"),
			DistributedLock:         v.GetBool("sync.distributed_lock"),
			LockTTL:                 v.GetDuration("sync.lock_ttl"),
			RunTimeout:              v.GetDuration("sync.run_timeout"),
		},
		Marketplace: MarketplaceConfig{
			Amazon: AmazonConfig{
				Enabled:        v.GetBool("amazon.enabled"),
				AccessToken:    v.GetString("amazon.access_token"),
				SellerID:       v.GetString("amazon.seller_id"),
				MarketplaceID:  v.GetString("amazon.marketplace_id"),
				APIBaseURL:     v.GetString("amazon.api_base_url"),
				TimeoutSeconds: v.GetInt("amazon.timeout_seconds"),
			},
			Etsy: EtsyConfig{
				Enabled:        v.GetBool("etsy.enabled"),
				APIKey:         v.GetString("etsy.api_key"),
				AccessToken:    v.GetString("etsy.access_token"),
				ShopID:         v.GetString("etsy.shop_id"),
				APIBaseURL:     v.GetString("etsy.api_base_url"),
				TimeoutSeconds: v.GetInt("etsy.timeout_seconds"),
				PageSize:       v.GetInt("etsy.page_size"),
			},
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			ProfilerAddress:   v.GetString("telemetry.profiler_address"),
			ProfilerAuthUser:  v.GetString("telemetry.profiler_auth_user"),
			ProfilerAuthPass:  v.GetString("telemetry.profiler_auth_password"),
			SpanProfiles:      v.GetBool("telemetry.span_profiles"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront-sync"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "storefront"
	}
	if cfg.JWT.AdminRole == "" {
		cfg.JWT.AdminRole = "admin"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	// manual syncs with auto-correct can take minutes
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 10 * time.Minute
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20
	}
	if cfg.Sync.MaxConcurrentChannels == 0 {
		cfg.Sync.MaxConcurrentChannels = 2
	}
	if cfg.Sync.PushConcurrency == 0 {
		cfg.Sync.PushConcurrency = 1
	}
	if cfg.Sync.AdapterTimeout == 0 {
		cfg.Sync.AdapterTimeout = 60 * time.Second
	}
	if cfg.Sync.HistoryLimit == 0 {
		cfg.Sync.HistoryLimit = MaxHistoryLimit
	}
	if cfg.Sync.OrderLookback == 0 {
		cfg.Sync.OrderLookback = 24 * time.Hour
	}
	if cfg.Sync.LockTTL == 0 {
		cfg.Sync.LockTTL = 10 * time.Minute
	}
	if cfg.Sync.RunTimeout == 0 {
		cfg.Sync.RunTimeout = 30 * time.Minute
	}
	if cfg.Marketplace.Amazon.TimeoutSeconds == 0 {
		cfg.Marketplace.Amazon.TimeoutSeconds = 30
	}
	if cfg.Marketplace.Etsy.TimeoutSeconds == 0 {
		cfg.Marketplace.Etsy.TimeoutSeconds = 30
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Sync.MaxConcurrentChannels < 1 {
		return fmt.Errorf("sync.max_concurrent_channels must be positive")
	}
	if c.Sync.PushConcurrency < 1 {
		return fmt.Errorf("sync.push_concurrency must be positive")
	}
	if c.Sync.HistoryLimit < 1 || c.Sync.HistoryLimit > MaxHistoryLimit {
		return fmt.Errorf("sync.history_limit must be between 1 and %d, got %d", MaxHistoryLimit, c.Sync.HistoryLimit)
	}
	if c.Sync.ScheduleIntervalMinutes < 0 {
		return fmt.Errorf("sync.schedule_interval_minutes cannot be negative")
	}
	if c.Sync.AdapterTimeout < 0 || c.Sync.RunTimeout < 0 {
		return fmt.Errorf("sync timeouts cannot be negative")
	}

	if c.Marketplace.Amazon.Enabled && (c.Marketplace.Amazon.AccessToken == "" || c.Marketplace.Amazon.SellerID == "") {
		return fmt.Errorf("amazon.access_token and amazon.seller_id are required when amazon.enabled is true")
	}
	if c.Marketplace.Etsy.Enabled && (c.Marketplace.Etsy.APIKey == "" || c.Marketplace.Etsy.AccessToken == "" || c.Marketplace.Etsy.ShopID == "") {
		return fmt.Errorf("etsy.api_key, etsy.access_token and etsy.shop_id are required when etsy.enabled is true")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilerAddress == "" {
		return fmt.Errorf("telemetry.profiler_address is required when telemetry.profiling_enabled is true")
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
