package config

import (
	"os"
	"time"
)

// APIKeyEnv is read when upstream.api_key is not set.
const APIKeyEnv = "HYPIXEL_API_KEY"

// Default values for optional configuration fields.
const (
	DefaultAddr              = ":8080"
	DefaultReadTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 10 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultProxyHeader       = "X-Forwarded-For"
	DefaultBaseURL           = "https://api.hypixel.net"
	DefaultUpstreamTimeout   = 30 * time.Second
	DefaultRetryBackoff      = 1 * time.Second
	DefaultBurst             = 1
	DefaultPaginationTimeout = 3 * time.Minute
	DefaultAuctionInterval   = 4 * time.Minute
	DefaultBazaarInterval    = 2 * time.Minute
	DefaultNPCInterval       = 30 * time.Minute
	DefaultElectionInterval  = 1 * time.Hour
	DefaultLimiterSweep      = 1 * time.Minute
	DefaultJobTimeout        = 3 * time.Minute
	DefaultPricingWindow     = 30 * time.Second
	DefaultUsageWindow       = 1 * time.Second
	DefaultPerksWindow       = 1 * time.Second
	DefaultLimitMax          = 1
	DefaultUsageReset        = 1 * time.Hour
	DefaultRedisPrefix       = "pricing:usage"
	DefaultRedisRetention    = 7 * 24 * time.Hour
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Server.ProxyHeader == "" {
		c.Server.ProxyHeader = DefaultProxyHeader
	}

	// Upstream defaults
	if c.Upstream.BaseURL == "" {
		c.Upstream.BaseURL = DefaultBaseURL
	}
	if c.Upstream.APIKey == "" {
		c.Upstream.APIKey = os.Getenv(APIKeyEnv)
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = DefaultUpstreamTimeout
	}
	if c.Upstream.RetryBackoff == 0 {
		c.Upstream.RetryBackoff = DefaultRetryBackoff
	}
	if c.Upstream.Burst == 0 {
		c.Upstream.Burst = DefaultBurst
	}
	if c.Upstream.PaginationTimeout == 0 {
		c.Upstream.PaginationTimeout = DefaultPaginationTimeout
	}

	// Schedule defaults
	if c.Schedule.Auction == 0 {
		c.Schedule.Auction = DefaultAuctionInterval
	}
	if c.Schedule.Bazaar == 0 {
		c.Schedule.Bazaar = DefaultBazaarInterval
	}
	if c.Schedule.NPC == 0 {
		c.Schedule.NPC = DefaultNPCInterval
	}
	if c.Schedule.Election == 0 {
		c.Schedule.Election = DefaultElectionInterval
	}
	if c.Schedule.LimiterSweep == 0 {
		c.Schedule.LimiterSweep = DefaultLimiterSweep
	}
	if c.Schedule.JobTimeout == 0 {
		c.Schedule.JobTimeout = DefaultJobTimeout
	}

	// Limits defaults
	applyRuleDefaults(&c.Limits.Pricing, DefaultPricingWindow)
	applyRuleDefaults(&c.Limits.Usage, DefaultUsageWindow)
	applyRuleDefaults(&c.Limits.Perks, DefaultPerksWindow)

	// Usage defaults
	if c.Usage.ResetInterval == 0 {
		c.Usage.ResetInterval = DefaultUsageReset
	}

	// Redis defaults
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = DefaultRedisPrefix
	}
	if c.Redis.Retention == 0 {
		c.Redis.Retention = DefaultRedisRetention
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

func applyRuleDefaults(r *RuleConfig, window time.Duration) {
	if r.Window == 0 {
		r.Window = window
	}
	if r.Max == 0 {
		r.Max = DefaultLimitMax
	}
}
