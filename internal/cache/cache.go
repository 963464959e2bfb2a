// Package cache holds the latest price table per category.
//
// Entries are replaced wholesale. Readers receive the stored record itself,
// so a record is never mutated once set; refresh builds a new one outside the
// lock and swaps it in.
package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrRecordMismatch  = errors.New("record type does not match category")
)

// Entry is a cached record with the time it was stored. UpdatedAt is zero for
// a category that has never been populated.
type Entry struct {
	Record    Record
	UpdatedAt time.Time
}

// Cache is the in-process price store. Safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[Category]Entry

	perks PerkSet

	now func() time.Time
}

// New creates a cache with an empty record for every category.
func New() *Cache {
	c := &Cache{
		entries: make(map[Category]Entry, len(Categories())),
		now:     time.Now,
	}
	for _, cat := range Categories() {
		c.entries[cat] = Entry{Record: emptyRecord(cat)}
	}
	return c
}

// Get returns the current record for a category, or an empty record if it
// has not been populated yet. Unknown categories return nil.
func (c *Cache) Get(cat Category) Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[cat]
	if !ok {
		return nil
	}
	return e.Record
}

// Entry returns the current entry for a category.
func (c *Cache) Entry(cat Category) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[cat]
	return e, ok
}

// Set replaces the record of a category.
func (c *Cache) Set(cat Category, r Record) error {
	if emptyRecord(cat) == nil {
		return fmt.Errorf("set %q: %w", cat, ErrUnknownCategory)
	}
	if r == nil || !matches(cat, r) {
		return fmt.Errorf("set %q with %T: %w", cat, r, ErrRecordMismatch)
	}

	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cat] = Entry{Record: r, UpdatedAt: now}
	return nil
}

// GetAll returns every category's record. The map is a fresh copy; the
// records are shared.
func (c *Cache) GetAll() map[Category]Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[Category]Record, len(c.entries))
	for cat, e := range c.entries {
		out[cat] = e.Record
	}
	return out
}

// Auctions returns the auction record.
func (c *Cache) Auctions() AuctionRecord {
	return c.Get(Auction).(AuctionRecord)
}

// Attributes returns the attribute record.
func (c *Cache) Attributes() AttributeRecord {
	return c.Get(Attribute).(AttributeRecord)
}

// Bazaar returns the bazaar record.
func (c *Cache) Bazaar() BazaarRecord {
	return c.Get(Bazaar).(BazaarRecord)
}

// NPC returns the npc record.
func (c *Cache) NPC() NPCRecord {
	return c.Get(NPC).(NPCRecord)
}

// Perks returns the active perk set.
func (c *Cache) Perks() PerkSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.perks
}

// SetPerks replaces the active perk set.
func (c *Cache) SetPerks(p PerkSet) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.perks = p
}
