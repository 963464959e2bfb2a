package pricing

import (
	"fmt"
	"log/slog"

	"github.com/rickgao/economy-pricing/internal/api"
	"github.com/rickgao/economy-pricing/internal/cache"
	"github.com/rickgao/economy-pricing/internal/item"
)

// Resolver maps an item blob to its identity.
type Resolver interface {
	Resolve(blob string) (item.Identity, error)
}

// AuctionStats summarizes one auction fold.
type AuctionStats struct {
	Listings int // listings seen
	Fixed    int // fixed-price listings
	Skipped  int // fixed-price listings whose blob failed to decode
}

// AuctionResult is the output of one auction fold. Both records come from
// the same listing set and are replaced together.
type AuctionResult struct {
	Auctions   cache.AuctionRecord
	Attributes cache.AttributeRecord
	Stats      AuctionStats
}

// Engine folds raw upstream data into price records. It holds no state
// between calls.
type Engine struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(resolver Resolver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		resolver: resolver,
		logger:   logger,
	}
}

// Auctions keeps the lowest fixed-price listing per canonical item id. Bid
// listings are ignored. A listing whose blob cannot be decoded is skipped
// and counted; it never aborts the fold.
func (e *Engine) Auctions(listings []api.Listing) AuctionResult {
	res := AuctionResult{
		Auctions:   cache.AuctionRecord{},
		Attributes: cache.AttributeRecord{},
		Stats:      AuctionStats{Listings: len(listings)},
	}

	for _, l := range listings {
		if !l.Bin {
			continue
		}
		res.Stats.Fixed++

		ident, err := e.resolver.Resolve(l.ItemBytes)
		if err != nil {
			res.Stats.Skipped++
			e.logger.Debug("skipping undecodable listing", "uuid", l.UUID, "err", err)
			continue
		}

		if ident.AttributeErr != nil {
			e.logger.Debug("ignoring malformed attributes", "uuid", l.UUID, "id", ident.ID, "err", ident.AttributeErr)
		}

		price := l.StartingBid
		setMin(res.Auctions, ident.ID, price)

		for _, key := range attributeKeys(ident.Attributes) {
			byItem, ok := res.Attributes[key]
			if !ok {
				byItem = make(map[string]float64)
				res.Attributes[key] = byItem
			}
			setMin(byItem, ident.ID, price)
		}
	}

	return res
}

func setMin(m map[string]float64, key string, price float64) {
	if cur, ok := m[key]; !ok || price < cur {
		m[key] = price
	}
}

// attributeKeys returns {name}{level} per attribute, plus "{first} {second}"
// when the item carries exactly two.
func attributeKeys(attrs []item.Attribute) []string {
	if len(attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attrs)+1)
	for _, a := range attrs {
		keys = append(keys, fmt.Sprintf("%s%d", a.Name, a.Level))
	}
	if len(attrs) == 2 {
		keys = append(keys, attrs[0].Name+" "+attrs[1].Name)
	}
	return keys
}

// Bazaar takes the first price level of each order book side. A side with no
// orders is 0.
func (e *Engine) Bazaar(products map[string]api.BazaarProduct) cache.BazaarRecord {
	rec := make(cache.BazaarRecord, len(products))
	for id, p := range products {
		var q cache.BazaarQuote
		if len(p.BuySummary) > 0 {
			q.Buy = p.BuySummary[0].PricePerUnit
		}
		if len(p.SellSummary) > 0 {
			q.Sell = p.SellSummary[0].PricePerUnit
		}
		rec[id] = q
	}
	return rec
}

// NPC records the shop sell prices of each item. Items with neither price
// are omitted.
func (e *Engine) NPC(items []api.ItemInfo) cache.NPCRecord {
	rec := make(cache.NPCRecord)
	for _, it := range items {
		if it.NPCSellPrice == nil && it.MotesSellPrice == nil {
			continue
		}
		rec[it.ID] = cache.NPCPrice{
			Coin: it.NPCSellPrice,
			Mote: it.MotesSellPrice,
		}
	}
	return rec
}

// Perks collects the mayor's perk names followed by the minister's perk.
// Each name appears once, at its first position.
func (e *Engine) Perks(m *api.Mayor) cache.PerkSet {
	if m == nil {
		return nil
	}
	perks := make(cache.PerkSet, 0, len(m.Perks)+1)
	seen := make(map[string]struct{}, len(m.Perks)+1)
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		perks = append(perks, name)
	}

	for _, p := range m.Perks {
		add(p.Name)
	}
	if m.Minister != nil && m.Minister.Perk != nil {
		add(m.Minister.Perk.Name)
	}
	return perks
}
