package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	if c.Upstream.APIKey == "" {
		return fmt.Errorf("upstream.api_key is required (or set %s)", APIKeyEnv)
	}
	u, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream.base_url must be an absolute URL, got %q", c.Upstream.BaseURL)
	}
	if c.Upstream.MaxRetries < 0 {
		return errors.New("upstream.max_retries must be >= 0")
	}
	if c.Upstream.RateLimit < 0 {
		return errors.New("upstream.rate_limit must be >= 0")
	}

	intervals := []struct {
		name string
		d    time.Duration
	}{
		{"schedule.auction", c.Schedule.Auction},
		{"schedule.bazaar", c.Schedule.Bazaar},
		{"schedule.npc", c.Schedule.NPC},
		{"schedule.election", c.Schedule.Election},
		{"schedule.limiter_sweep", c.Schedule.LimiterSweep},
		{"usage.reset_interval", c.Usage.ResetInterval},
	}
	for _, iv := range intervals {
		if iv.d <= 0 {
			return fmt.Errorf("%s must be positive, got %v", iv.name, iv.d)
		}
	}

	if err := c.Limits.Pricing.validate("limits.pricing"); err != nil {
		return err
	}
	if err := c.Limits.Usage.validate("limits.usage"); err != nil {
		return err
	}
	if err := c.Limits.Perks.validate("limits.perks"); err != nil {
		return err
	}

	if c.Usage.Mirror && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when usage.mirror is enabled")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (r *RuleConfig) validate(prefix string) error {
	if r.Window <= 0 {
		return fmt.Errorf("%s.window must be positive", prefix)
	}
	if r.Max < 1 {
		return fmt.Errorf("%s.max must be >= 1", prefix)
	}
	return nil
}
