package cache

// Category names one independently refreshed price table.
type Category string

// Fixed category set. Every category is present in GetAll from startup.
const (
	Auction   Category = "auction"
	Attribute Category = "attribute"
	Bazaar    Category = "bazaar"
	NPC       Category = "npc"
)

// Categories returns the fixed category set in serving order.
func Categories() []Category {
	return []Category{Auction, Bazaar, Attribute, NPC}
}

// Record is a complete price table for one category. A record handed to Set
// is owned by the cache afterwards and must not be mutated.
type Record interface {
	Len() int
}

// AuctionRecord maps a canonical item id to its lowest fixed-price listing.
type AuctionRecord map[string]float64

func (r AuctionRecord) Len() int { return len(r) }

// AttributeRecord maps an attribute key to the lowest fixed-price listing per
// canonical item id carrying it.
type AttributeRecord map[string]map[string]float64

func (r AttributeRecord) Len() int { return len(r) }

// BazaarQuote is the top of one product's order book. A side with no orders
// is 0.
type BazaarQuote struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

// BazaarRecord maps a product id to its quote.
type BazaarRecord map[string]BazaarQuote

func (r BazaarRecord) Len() int { return len(r) }

// NPCPrice holds the fixed shop sell prices of one item. At least one field
// is set.
type NPCPrice struct {
	Coin *float64 `json:"coin,omitempty"`
	Mote *float64 `json:"mote,omitempty"`
}

// NPCRecord maps an item id to its shop sell prices.
type NPCRecord map[string]NPCPrice

func (r NPCRecord) Len() int { return len(r) }

// PerkSet is the active set of election perk names.
type PerkSet []string

func (p PerkSet) Len() int { return len(p) }

func emptyRecord(c Category) Record {
	switch c {
	case Auction:
		return AuctionRecord{}
	case Attribute:
		return AttributeRecord{}
	case Bazaar:
		return BazaarRecord{}
	case NPC:
		return NPCRecord{}
	default:
		return nil
	}
}

func matches(c Category, r Record) bool {
	switch r.(type) {
	case AuctionRecord:
		return c == Auction
	case AttributeRecord:
		return c == Attribute
	case BazaarRecord:
		return c == Bazaar
	case NPCRecord:
		return c == NPC
	default:
		return false
	}
}
