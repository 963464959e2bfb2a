// Package app wires the service together. Every store is constructed once
// here and handed to its users explicitly.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/economy-pricing/internal/api"
	"github.com/rickgao/economy-pricing/internal/cache"
	"github.com/rickgao/economy-pricing/internal/config"
	"github.com/rickgao/economy-pricing/internal/item"
	"github.com/rickgao/economy-pricing/internal/poller"
	"github.com/rickgao/economy-pricing/internal/pricing"
	"github.com/rickgao/economy-pricing/internal/ratelimit"
	"github.com/rickgao/economy-pricing/internal/server"
	"github.com/rickgao/economy-pricing/internal/usage"
)

// Job names.
const (
	JobAuction      = "auction"
	JobBazaar       = "bazaar"
	JobNPC          = "npc"
	JobElection     = "election"
	JobLimiterSweep = "limiter-sweep"
	JobUsageReset   = "usage-reset"
)

// App is the application context.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	Client     *api.Client
	Cache      *cache.Cache
	Limiter    *ratelimit.Limiter
	Usage      *usage.Tracker
	Refresher  *pricing.Refresher
	Supervisor *poller.Supervisor
	HTTP       *http.Server

	redis *redis.Client
}

// New builds the application from a validated config. source overrides the
// upstream client when non-nil.
func New(cfg *config.Config, source pricing.Source, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		cfg:     cfg,
		logger:  logger,
		Cache:   cache.New(),
		Limiter: ratelimit.New(),
	}

	a.Client = api.NewClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.APIKey,
		api.WithLogger(logger.With("component", "api")),
		api.WithTimeout(cfg.Upstream.Timeout),
		api.WithRetries(cfg.Upstream.MaxRetries, cfg.Upstream.RetryBackoff),
		api.WithRateLimit(cfg.Upstream.RateLimit, cfg.Upstream.Burst),
		api.WithPaginationTimeout(cfg.Upstream.PaginationTimeout),
	)
	if source == nil {
		source = a.Client
	}

	usageOpts := []usage.Option{usage.WithLogger(logger.With("component", "usage"))}
	if cfg.Usage.Mirror {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		mirror := usage.NewRedisMirror(a.redis,
			usage.WithPrefix(cfg.Redis.Prefix),
			usage.WithRetention(cfg.Redis.Retention),
		)
		usageOpts = append(usageOpts, usage.WithMirror(mirror))
	}
	a.Usage = usage.NewTracker([]string{usage.RoutePricing}, usageOpts...)

	engine := pricing.NewEngine(item.NewResolver(), logger.With("component", "engine"))
	a.Refresher = pricing.NewRefresher(source, engine, a.Cache, logger.With("component", "refresher"))

	a.Supervisor = poller.New(logger.With("component", "supervisor"))
	if err := a.addJobs(); err != nil {
		return nil, err
	}

	srv := server.New(server.Config{
		TrustProxy:  cfg.Server.TrustProxy,
		ProxyHeader: cfg.Server.ProxyHeader,
		Pricing:     rule(cfg.Limits.Pricing),
		Usage:       rule(cfg.Limits.Usage),
		Perks:       rule(cfg.Limits.Perks),
	}, a.Cache, a.Limiter, a.Usage, a.Supervisor, logger.With("component", "server"))

	a.HTTP = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

func rule(r config.RuleConfig) ratelimit.Rule {
	return ratelimit.Rule{Window: r.Window, Max: r.Max}
}

func (a *App) addJobs() error {
	s := a.cfg.Schedule
	jobs := []poller.Job{
		{Name: JobBazaar, Interval: s.Bazaar, Timeout: s.JobTimeout, Run: a.Refresher.RefreshBazaar},
		{Name: JobAuction, Interval: s.Auction, Timeout: s.JobTimeout, Run: a.Refresher.RefreshAuctions},
		{Name: JobNPC, Interval: s.NPC, Timeout: s.JobTimeout, Run: a.Refresher.RefreshNPC},
		{Name: JobElection, Interval: s.Election, Timeout: s.JobTimeout, Run: a.Refresher.RefreshPerks},
		{Name: JobLimiterSweep, Interval: s.LimiterSweep, Run: a.sweepLimiter},
		{Name: JobUsageReset, Interval: a.cfg.Usage.ResetInterval, Run: a.Usage.Reset},
	}
	for _, j := range jobs {
		if err := a.Supervisor.Add(j); err != nil {
			return fmt.Errorf("add job: %w", err)
		}
	}
	return nil
}

func (a *App) sweepLimiter(ctx context.Context) error {
	removed := a.Limiter.Sweep()
	a.logger.Debug("limiter swept", "removed", removed, "keys", a.Limiter.Len())
	return nil
}

// Run serves HTTP and runs the jobs until ctx is cancelled, then shuts both
// down within the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.logger.Warn("redis unreachable, usage mirror will retry per request", "addr", a.cfg.Redis.Addr, "err", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if err := a.Supervisor.Start(gctx); err != nil {
		return fmt.Errorf("start supervisor: %w", err)
	}

	g.Go(func() error {
		a.logger.Info("http server listening", "addr", a.HTTP.Addr)
		if err := a.HTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := a.HTTP.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
		if err := a.Supervisor.Stop(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("supervisor stop: %w", err))
		}
		if a.redis != nil {
			if err := a.redis.Close(); err != nil {
				errs = append(errs, fmt.Errorf("redis close: %w", err))
			}
		}
		return errors.Join(errs...)
	})

	return g.Wait()
}
