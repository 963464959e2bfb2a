package config

import "time"

// Config is the root configuration of the pricing service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Limits   LimitsConfig   `yaml:"limits"`
	Usage    UsageConfig    `yaml:"usage"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	TrustProxy      bool          `yaml:"trust_proxy"`  // read the client address from ProxyHeader
	ProxyHeader     string        `yaml:"proxy_header"` // e.g. X-Forwarded-For
}

// UpstreamConfig holds economy API settings.
type UpstreamConfig struct {
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"` // sent as the API-Key header
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryBackoff      time.Duration `yaml:"retry_backoff"`
	RateLimit         float64       `yaml:"rate_limit"` // requests per second, 0 = unpaced
	Burst             int           `yaml:"burst"`
	PaginationTimeout time.Duration `yaml:"pagination_timeout"`
}

// ScheduleConfig holds refresh intervals.
type ScheduleConfig struct {
	Auction      time.Duration `yaml:"auction"`
	Bazaar       time.Duration `yaml:"bazaar"`
	NPC          time.Duration `yaml:"npc"`
	Election     time.Duration `yaml:"election"`
	LimiterSweep time.Duration `yaml:"limiter_sweep"`
	JobTimeout   time.Duration `yaml:"job_timeout"`
}

// LimitsConfig holds the per-endpoint rate limits.
type LimitsConfig struct {
	Pricing RuleConfig `yaml:"pricing"`
	Usage   RuleConfig `yaml:"usage"`
	Perks   RuleConfig `yaml:"perks"`
}

// RuleConfig admits at most Max requests per client within Window.
type RuleConfig struct {
	Window time.Duration `yaml:"window"`
	Max    int           `yaml:"max"`
}

// UsageConfig holds usage reporting settings.
type UsageConfig struct {
	ResetInterval time.Duration `yaml:"reset_interval"`
	Mirror        bool          `yaml:"mirror"` // copy counters to Redis
}

// RedisConfig holds the optional Redis connection used by the usage mirror.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	Prefix    string        `yaml:"prefix"`
	Retention time.Duration `yaml:"retention"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}
