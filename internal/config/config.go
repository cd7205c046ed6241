package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Cron   CronConfig   `mapstructure:"cron"`

	Betslips  BetslipsConfig  `mapstructure:"betslips"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type AuthConfig struct {
	// JWTSecret verifies the HS256 tokens the identity provider issues.
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	// Disabled skips auth entirely for local development.
	Disabled bool `mapstructure:"disabled"`
}

type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend  string        `mapstructure:"backend"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type CronConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	SubscriptionSweep string `mapstructure:"subscription_sweep"`
	AnalyticsRefresh  string `mapstructure:"analytics_refresh"`
}

type BetslipsConfig struct {
	// FeedLimit caps the rows one dashboard fetch pulls into memory.
	FeedLimit int `mapstructure:"feed_limit"`
}

type AnalyticsConfig struct {
	// Window bounds how far back the aggregations reach.
	WindowDays int `mapstructure:"window_days"`
	MaxRows    int `mapstructure:"max_rows"`
	Weeks      int `mapstructure:"weeks"`
	Months     int `mapstructure:"months"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.disabled", false)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.subscription_sweep", "0 */10 * * * *")
	v.SetDefault("cron.analytics_refresh", "0 0 * * * *")
	v.SetDefault("betslips.feed_limit", 200)
	v.SetDefault("analytics.window_days", 90)
	v.SetDefault("analytics.max_rows", 500)
	v.SetDefault("analytics.weeks", 12)
	v.SetDefault("analytics.months", 6)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
