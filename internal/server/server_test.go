package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rickgao/economy-pricing/internal/api"
	"github.com/rickgao/economy-pricing/internal/cache"
	"github.com/rickgao/economy-pricing/internal/item"
	nt "github.com/rickgao/economy-pricing/internal/nbt/nbttest"
	"github.com/rickgao/economy-pricing/internal/poller"
	"github.com/rickgao/economy-pricing/internal/pricing"
	"github.com/rickgao/economy-pricing/internal/ratelimit"
	"github.com/rickgao/economy-pricing/internal/usage"
)

type testEnv struct {
	cache   *cache.Cache
	usage   *usage.Tracker
	limiter *ratelimit.Limiter
	handler http.Handler
	now     time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		cache: cache.New(),
		usage: usage.NewTracker([]string{usage.RoutePricing}),
		now:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	env.limiter = ratelimit.New(ratelimit.WithClock(func() time.Time { return env.now }))

	cfg := Config{
		ProxyHeader: "X-Forwarded-For",
		Pricing:     ratelimit.Rule{Window: 30 * time.Second, Max: 1},
		Usage:       ratelimit.Rule{Window: time.Second, Max: 1},
		Perks:       ratelimit.Rule{Window: time.Second, Max: 1},
	}
	env.handler = New(cfg, env.cache, env.limiter, env.usage, nil, nil).Handler()
	return env
}

func (e *testEnv) get(path, remote string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.RemoteAddr = remote
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func f(v float64) *float64 { return &v }

func TestPricingV2(t *testing.T) {
	env := newTestEnv(t)
	env.cache.Set(cache.Auction, cache.AuctionRecord{"HYPERION": 7})
	env.cache.Set(cache.Bazaar, cache.BazaarRecord{"COAL": {Buy: 2.5, Sell: 0}})
	env.cache.Set(cache.NPC, cache.NPCRecord{"STONE": {Coin: f(1)}})

	w := env.get("/v2/economy/get-item-pricing/", "192.0.2.1:1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Auction   map[string]float64                    `json:"auction"`
		Bazaar    map[string]struct{ Buy, Sell float64 } `json:"bazaar"`
		Attribute map[string]map[string]float64         `json:"attribute"`
		NPC       map[string]map[string]float64         `json:"npc"`
	}
	decode(t, w, &body)

	if body.Auction["HYPERION"] != 7 {
		t.Errorf("auction = %v", body.Auction)
	}
	if q := body.Bazaar["COAL"]; q.Buy != 2.5 || q.Sell != 0 {
		t.Errorf("bazaar = %v", body.Bazaar)
	}
	if body.Attribute == nil || len(body.Attribute) != 0 {
		t.Errorf("attribute = %v, want empty object", body.Attribute)
	}
	if npc := body.NPC["STONE"]; npc["coin"] != 1 {
		t.Errorf("npc = %v", body.NPC)
	}
	if _, ok := body.NPC["STONE"]["mote"]; ok {
		t.Error("absent mote price should be omitted")
	}

	if got := env.usage.Snapshot()[usage.RoutePricing]; got != 1 {
		t.Errorf("pricing usage = %d, want 1", got)
	}
}

func TestPricingRateLimit(t *testing.T) {
	env := newTestEnv(t)

	if w := env.get("/v2/economy/get-item-pricing/", "192.0.2.1:1"); w.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", w.Code)
	}

	env.now = env.now.Add(5 * time.Second)
	w := env.get("/v2/economy/get-item-pricing/", "192.0.2.1:2")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", w.Body.String())
	}

	// v1 shares the budget.
	if w := env.get("/v1/economy/get-item-pricing/", "192.0.2.1:3"); w.Code != http.StatusTooManyRequests {
		t.Errorf("v1 status = %d, want 429", w.Code)
	}

	// Rejected requests are not counted.
	if got := env.usage.Snapshot()[usage.RoutePricing]; got != 1 {
		t.Errorf("pricing usage = %d, want 1", got)
	}

	env.now = env.now.Add(26 * time.Second)
	if w := env.get("/v2/economy/get-item-pricing/", "192.0.2.1:4"); w.Code != http.StatusOK {
		t.Errorf("status after window = %d, want 200", w.Code)
	}
}

func TestPricingV1Legacy(t *testing.T) {
	env := newTestEnv(t)
	env.cache.Set(cache.Auction, cache.AuctionRecord{"X": 7})
	env.cache.Set(cache.Bazaar, cache.BazaarRecord{"COAL": {Buy: 3, Sell: 2}})
	env.cache.Set(cache.Attribute, cache.AttributeRecord{"veteran1": {"X": 7}})

	w := env.get("/v1/economy/get-item-pricing", "192.0.2.1:1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body map[string]string
	decode(t, w, &body)

	if len(body) != 4 {
		t.Fatalf("keys = %v, want 4", body)
	}
	if body["attribute"] != "{}" {
		t.Errorf("attribute = %q, want {}", body["attribute"])
	}
	if body["npc"] != "{}" {
		t.Errorf("npc = %q, want {}", body["npc"])
	}

	var auction map[string]float64
	if err := json.Unmarshal([]byte(body["auction"]), &auction); err != nil || auction["X"] != 7 {
		t.Errorf("auction = %q (%v)", body["auction"], err)
	}

	var bazaar map[string][]float64
	if err := json.Unmarshal([]byte(body["bazaar"]), &bazaar); err != nil {
		t.Fatalf("bazaar = %q: %v", body["bazaar"], err)
	}
	if got := bazaar["COAL"]; len(got) != 2 || got[0] != 3 || got[1] != 2 {
		t.Errorf("bazaar COAL = %v, want [3 2]", got)
	}
}

func TestUsageEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.get("/v2/economy/get-item-pricing/", "192.0.2.1:1")
	env.get("/v2/economy/get-item-pricing/", "192.0.2.2:1")

	w := env.get("/v1/misc/get-api-usage/", "192.0.2.1:1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]int64
	decode(t, w, &body)
	if body["pricing"] != 2 {
		t.Errorf("pricing = %d, want 2", body["pricing"])
	}

	if w := env.get("/v1/misc/get-api-usage/", "192.0.2.1:1"); w.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", w.Code)
	}
	env.now = env.now.Add(time.Second)
	if w := env.get("/v1/misc/get-api-usage/", "192.0.2.1:1"); w.Code != http.StatusOK {
		t.Errorf("status after 1s = %d, want 200", w.Code)
	}
}

func TestPerksEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.get("/v1/misc/get-perks/", "192.0.2.1:1")
	var empty struct{ Perks []string }
	decode(t, w, &empty)
	if empty.Perks == nil || len(empty.Perks) != 0 {
		t.Errorf("perks = %v, want empty list", empty.Perks)
	}

	env.cache.SetPerks(cache.PerkSet{"Mining Fiesta"})
	env.now = env.now.Add(time.Second)
	w = env.get("/v1/misc/get-perks/", "192.0.2.1:1")
	var body struct{ Perks []string }
	decode(t, w, &body)
	if len(body.Perks) != 1 || body.Perks[0] != "Mining Fiesta" {
		t.Errorf("perks = %v", body.Perks)
	}
}

func TestRoutes(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown path", http.MethodGet, "/v3/economy/get-item-pricing/", http.StatusNotFound},
		{"subpath not served", http.MethodGet, "/v2/economy/get-item-pricing/extra", http.StatusNotFound},
		{"post not allowed", http.MethodPost, "/v1/misc/get-api-usage/", http.StatusMethodNotAllowed},
		{"health without slash", http.MethodGet, "/health", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			env.handler.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

type fakeJobs []poller.Status

func (f fakeJobs) Statuses() []poller.Status { return f }

func TestHealth(t *testing.T) {
	c := cache.New()
	jobs := fakeJobs{{Name: "auction", Runs: 2}}
	h := New(Config{}, c, ratelimit.New(), usage.NewTracker(nil), jobs, nil).Handler()

	get := func() healthResponse {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var resp healthResponse
		decode(t, w, &resp)
		return resp
	}

	resp := get()
	if resp.Status != "starting" {
		t.Errorf("Status = %q, want starting", resp.Status)
	}
	if len(resp.Categories) != 4 {
		t.Errorf("Categories = %v, want 4 entries", resp.Categories)
	}
	if len(resp.Jobs) != 1 || resp.Jobs[0].Runs != 2 {
		t.Errorf("Jobs = %+v", resp.Jobs)
	}

	c.Set(cache.Auction, cache.AuctionRecord{"A": 1, "B": 2})
	c.Set(cache.Attribute, cache.AttributeRecord{"x1": {"A": 1}})
	c.Set(cache.Bazaar, cache.BazaarRecord{"C": {}})
	c.Set(cache.NPC, cache.NPCRecord{"D": {Coin: f(1)}})

	resp = get()
	if resp.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", resp.Status)
	}
	if resp.Categories["auction"].Entries != 2 || resp.Categories["auction"].UpdatedAt == nil {
		t.Errorf("auction = %+v", resp.Categories["auction"])
	}
}

type plainSource struct{}

func (plainSource) GetAllListings(ctx context.Context) ([]api.Listing, error) {
	blob := nt.ItemBlob(nt.F("id", nt.String("ASPECT_OF_THE_END")))
	return []api.Listing{{Bin: true, StartingBid: 120, ItemBytes: blob}}, nil
}

func (plainSource) GetBazaar(ctx context.Context) (*api.BazaarResponse, error) {
	return &api.BazaarResponse{Products: map[string]api.BazaarProduct{
		"ENCHANTED_COAL": {BuySummary: []api.BazaarOrder{{PricePerUnit: 160}}},
	}}, nil
}

func (plainSource) GetItems(ctx context.Context) ([]api.ItemInfo, error) {
	return []api.ItemInfo{{ID: "COBBLESTONE", NPCSellPrice: f(1)}}, nil
}

func (plainSource) GetElection(ctx context.Context) (*api.Mayor, error) {
	return &api.Mayor{Perks: []api.Perk{{Name: "Pelt-pocalypse"}}}, nil
}

func TestHealthWithoutAttributedListings(t *testing.T) {
	c := cache.New()
	r := pricing.NewRefresher(plainSource{}, pricing.NewEngine(item.NewResolver(), nil), c, nil)

	ctx := context.Background()
	for name, refresh := range map[string]func(context.Context) error{
		"auctions": r.RefreshAuctions,
		"bazaar":   r.RefreshBazaar,
		"npc":      r.RefreshNPC,
		"perks":    r.RefreshPerks,
	} {
		if err := refresh(ctx); err != nil {
			t.Fatalf("refresh %s: %v", name, err)
		}
	}

	h := New(Config{}, c, ratelimit.New(), usage.NewTracker(nil), nil, nil).Handler()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp healthResponse
	decode(t, w, &resp)
	if resp.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", resp.Status)
	}
	attr := resp.Categories["attribute"]
	if attr.Entries != 0 || attr.UpdatedAt == nil {
		t.Errorf("attribute = %+v, want empty with updated_at", attr)
	}
}
