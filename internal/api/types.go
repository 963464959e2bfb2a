package api

import "errors"

// AuctionsResponse from GET /v2/skyblock/auctions
type AuctionsResponse struct {
	Success       bool      `json:"success"`
	Page          int       `json:"page"`
	TotalPages    *int      `json:"totalPages"`
	TotalAuctions int       `json:"totalAuctions"`
	LastUpdated   int64     `json:"lastUpdated"`
	Auctions      []Listing `json:"auctions"`
}

func (r *AuctionsResponse) validate() error {
	if r.TotalPages == nil {
		return errors.New("missing totalPages")
	}
	return nil
}

// Listing is one auction house entry. Only fixed-price (BIN) listings carry
// a usable price.
type Listing struct {
	UUID        string  `json:"uuid"`
	ItemName    string  `json:"item_name"`
	Tier        string  `json:"tier"`
	Bin         bool    `json:"bin"`
	StartingBid float64 `json:"starting_bid"`
	ItemBytes   string  `json:"item_bytes"`
}

// BazaarResponse from GET /v2/skyblock/bazaar
type BazaarResponse struct {
	Success     bool                     `json:"success"`
	LastUpdated int64                    `json:"lastUpdated"`
	Products    map[string]BazaarProduct `json:"products"`
}

func (r *BazaarResponse) validate() error {
	if r.Products == nil {
		return errors.New("missing products")
	}
	return nil
}

// BazaarProduct is the order book of one product.
type BazaarProduct struct {
	ProductID   string         `json:"product_id"`
	BuySummary  []BazaarOrder  `json:"buy_summary"`
	SellSummary []BazaarOrder  `json:"sell_summary"`
	QuickStatus map[string]any `json:"quick_status,omitempty"`
}

// BazaarOrder is one aggregated price level of an order book side.
type BazaarOrder struct {
	Amount       int64   `json:"amount"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Orders       int     `json:"orders"`
}

// ItemsResponse from GET /v2/resources/skyblock/items
type ItemsResponse struct {
	Success     bool       `json:"success"`
	LastUpdated int64      `json:"lastUpdated"`
	Items       []ItemInfo `json:"items"`
}

func (r *ItemsResponse) validate() error {
	if r.Items == nil {
		return errors.New("missing items")
	}
	return nil
}

// ItemInfo is one entry of the static item list. Sell prices are optional.
type ItemInfo struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	NPCSellPrice   *float64 `json:"npc_sell_price"`
	MotesSellPrice *float64 `json:"motes_sell_price"`
}

// ElectionResponse from GET /v2/resources/skyblock/election
type ElectionResponse struct {
	Success     bool   `json:"success"`
	LastUpdated int64  `json:"lastUpdated"`
	Mayor       *Mayor `json:"mayor"`
}

func (r *ElectionResponse) validate() error {
	if r.Mayor == nil {
		return errors.New("missing mayor")
	}
	return nil
}

// Mayor is the currently elected mayor.
type Mayor struct {
	Key      string    `json:"key"`
	Name     string    `json:"name"`
	Perks    []Perk    `json:"perks"`
	Minister *Minister `json:"minister,omitempty"`
}

// Minister is the mayor's minister, present in recent elections.
type Minister struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Perk *Perk  `json:"perk,omitempty"`
}

// Perk is a single election perk.
type Perk struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
