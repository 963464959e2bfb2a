package pricing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/economy-pricing/internal/api"
	"github.com/rickgao/economy-pricing/internal/cache"
)

// Source is the upstream data the refresher pulls from.
type Source interface {
	GetAllListings(ctx context.Context) ([]api.Listing, error)
	GetBazaar(ctx context.Context) (*api.BazaarResponse, error)
	GetItems(ctx context.Context) ([]api.ItemInfo, error)
	GetElection(ctx context.Context) (*api.Mayor, error)
}

// Refresher runs one fetch-aggregate-store cycle per category. A failed or
// empty cycle leaves the cached entry as it was.
type Refresher struct {
	source Source
	engine *Engine
	cache  *cache.Cache
	logger *slog.Logger
}

// NewRefresher creates a Refresher.
func NewRefresher(source Source, engine *Engine, c *cache.Cache, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		source: source,
		engine: engine,
		cache:  c,
		logger: logger,
	}
}

// RefreshAuctions rebuilds the auction and attribute records.
func (r *Refresher) RefreshAuctions(ctx context.Context) error {
	logger, start := r.begin(cache.Auction)

	listings, err := r.source.GetAllListings(ctx)
	if err != nil {
		return fmt.Errorf("refresh auctions: %w", err)
	}
	if len(listings) == 0 {
		logger.Warn("no listings returned, keeping cached entry")
		return nil
	}

	res := r.engine.Auctions(listings)
	if len(res.Auctions) == 0 {
		logger.Warn("no fixed-price listings resolved, keeping cached entries",
			"listings", res.Stats.Listings,
			"skipped", res.Stats.Skipped,
		)
		return nil
	}

	// The attribute table is derived from the same listings and is replaced
	// with the auction table even when empty.
	if err := r.cache.Set(cache.Auction, res.Auctions); err != nil {
		return fmt.Errorf("store %s: %w", cache.Auction, err)
	}
	if err := r.cache.Set(cache.Attribute, res.Attributes); err != nil {
		return fmt.Errorf("store %s: %w", cache.Attribute, err)
	}

	logger.Info("auctions refreshed",
		"listings", res.Stats.Listings,
		"fixed_price", res.Stats.Fixed,
		"skipped", res.Stats.Skipped,
		"items", len(res.Auctions),
		"attributes", len(res.Attributes),
		"duration", time.Since(start),
	)
	return nil
}

// RefreshBazaar rebuilds the bazaar record.
func (r *Refresher) RefreshBazaar(ctx context.Context) error {
	logger, start := r.begin(cache.Bazaar)

	resp, err := r.source.GetBazaar(ctx)
	if err != nil {
		return fmt.Errorf("refresh bazaar: %w", err)
	}

	rec := r.engine.Bazaar(resp.Products)
	if err := r.store(logger, cache.Bazaar, rec); err != nil {
		return err
	}

	logger.Info("bazaar refreshed", "products", len(rec), "duration", time.Since(start))
	return nil
}

// RefreshNPC rebuilds the npc record.
func (r *Refresher) RefreshNPC(ctx context.Context) error {
	logger, start := r.begin(cache.NPC)

	items, err := r.source.GetItems(ctx)
	if err != nil {
		return fmt.Errorf("refresh npc: %w", err)
	}

	rec := r.engine.NPC(items)
	if err := r.store(logger, cache.NPC, rec); err != nil {
		return err
	}

	logger.Info("npc prices refreshed", "items", len(rec), "duration", time.Since(start))
	return nil
}

// RefreshPerks rebuilds the active perk set.
func (r *Refresher) RefreshPerks(ctx context.Context) error {
	logger, start := r.begin("perks")

	mayor, err := r.source.GetElection(ctx)
	if err != nil {
		return fmt.Errorf("refresh perks: %w", err)
	}

	perks := r.engine.Perks(mayor)
	if len(perks) == 0 {
		logger.Warn("empty result, keeping cached entry")
		return nil
	}
	r.cache.SetPerks(perks)

	logger.Info("perks refreshed", "perks", len(perks), "duration", time.Since(start))
	return nil
}

func (r *Refresher) begin(cat cache.Category) (*slog.Logger, time.Time) {
	return r.logger.With("category", string(cat), "cycle_id", uuid.NewString()), time.Now()
}

// store swaps a record in unless it is empty.
func (r *Refresher) store(logger *slog.Logger, cat cache.Category, rec cache.Record) error {
	if rec.Len() == 0 {
		logger.Warn("empty result, keeping cached entry", "target", string(cat))
		return nil
	}
	if err := r.cache.Set(cat, rec); err != nil {
		return fmt.Errorf("store %s: %w", cat, err)
	}
	return nil
}
