package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Webhook   WebhookConfig
	Sync      SyncConfig
	Printing  PrintingConfig
	Platforms PlatformsConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
}

// WebhookConfig holds inbound event processing configuration
type WebhookConfig struct {
	// LedgerRetention is how long processed event ids are remembered. It
	// must cover the longest redelivery window of any configured platform.
	LedgerRetention time.Duration
	// PurgeInterval is how often expired ledger entries are swept when the
	// ledger lives in the database.
	PurgeInterval time.Duration
	// MaxBodySize limits webhook payload size separately from the general
	// HTTP body cap.
	MaxBodySize int64
}

// SyncConfig holds outbound synchronization tuning
type SyncConfig struct {
	// RetryBaseInterval is the first backoff delay between retries of a
	// failed platform call.
	RetryBaseInterval time.Duration
	// TokenExpirySkew refreshes app tokens this long before their reported
	// expiry.
	TokenExpirySkew time.Duration
}

// PrintingConfig holds print bridge settings
type PrintingConfig struct {
	// BridgeEndpoint is the store print bridge URL. Empty falls back to
	// logging receipts.
	BridgeEndpoint string
	Timeout        time.Duration
}

// PlatformConfig holds one delivery platform's credentials and endpoints
type PlatformConfig struct {
	Enabled       bool
	APIBaseURL    string
	TokenURL      string
	ClientID      string
	ClientSecret  string
	SigningSecret string
	Scopes        []string
}

// PlatformsConfig groups the configured delivery platforms
type PlatformsConfig struct {
	UberEats  PlatformConfig
	Foodpanda PlatformConfig
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with ORDER_ prefix (e.g., ORDER_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ORDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
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
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Webhook: WebhookConfig{
			LedgerRetention: v.GetDuration("webhook.ledger_retention"),
			PurgeInterval:   v.GetDuration("webhook.purge_interval"),
			MaxBodySize:     v.GetInt64("webhook.max_body_size"),
		},
		Sync: SyncConfig{
			RetryBaseInterval: v.GetDuration("sync.retry_base_interval"),
			TokenExpirySkew:   v.GetDuration("sync.token_expiry_skew"),
		},
		Printing: PrintingConfig{
			BridgeEndpoint: v.GetString("printing.bridge_endpoint"),
			Timeout:        v.GetDuration("printing.timeout"),
		},
		Platforms: PlatformsConfig{
			UberEats:  loadPlatform(v, "platforms.ubereats"),
			Foodpanda: loadPlatform(v, "platforms.foodpanda"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadPlatform(v *viper.Viper, key string) PlatformConfig {
	return PlatformConfig{
		Enabled:       v.GetBool(key + ".enabled"),
		APIBaseURL:    v.GetString(key + ".api_base_url"),
		TokenURL:      v.GetString(key + ".token_url"),
		ClientID:      v.GetString(key + ".client_id"),
		ClientSecret:  v.GetString(key + ".client_secret"),
		SigningSecret: v.GetString(key + ".signing_secret"),
		Scopes:        v.GetStringSlice(key + ".scopes"),
	}
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "order-integration"
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
		cfg.Database.DBName = "orders"
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
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 10 << 20 // 10MB
	}
	if cfg.Webhook.LedgerRetention == 0 {
		cfg.Webhook.LedgerRetention = 72 * time.Hour
	}
	if cfg.Webhook.PurgeInterval == 0 {
		cfg.Webhook.PurgeInterval = time.Hour
	}
	if cfg.Webhook.MaxBodySize == 0 {
		cfg.Webhook.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.Sync.RetryBaseInterval == 0 {
		cfg.Sync.RetryBaseInterval = time.Second
	}
	if cfg.Sync.TokenExpirySkew == 0 {
		cfg.Sync.TokenExpirySkew = 5 * time.Minute
	}
	if cfg.Printing.Timeout == 0 {
		cfg.Printing.Timeout = 10 * time.Second
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

	for name, platform := range map[string]PlatformConfig{
		"platforms.ubereats":  c.Platforms.UberEats,
		"platforms.foodpanda": c.Platforms.Foodpanda,
	} {
		if !platform.Enabled {
			continue
		}
		if platform.ClientID == "" || platform.ClientSecret == "" {
			return fmt.Errorf("%s: client_id and client_secret are required when enabled", name)
		}
		if platform.SigningSecret == "" {
			return fmt.Errorf("%s: signing_secret is required when enabled", name)
		}
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
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
