package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rickgao/economy-pricing/internal/cache"
	"github.com/rickgao/economy-pricing/internal/poller"
	"github.com/rickgao/economy-pricing/internal/usage"
	"github.com/rickgao/economy-pricing/internal/version"
)

func (s *Server) handlePricingV2(w http.ResponseWriter, r *http.Request) {
	all := s.cache.GetAll()

	resp := make(map[string]cache.Record, len(all))
	for cat, rec := range all {
		resp[string(cat)] = rec
	}

	s.usage.Add(r.Context(), usage.RoutePricing)
	s.writeJSON(w, http.StatusOK, resp)
}

// handlePricingV1 serves the legacy shape: every category is a JSON document
// embedded as a string, bazaar quotes are [buy, sell] pairs and the attribute
// table is always empty.
func (s *Server) handlePricingV1(w http.ResponseWriter, r *http.Request) {
	bazaar := s.cache.Bazaar()
	pairs := make(map[string][2]float64, len(bazaar))
	for id, q := range bazaar {
		pairs[id] = [2]float64{q.Buy, q.Sell}
	}

	resp := make(map[string]string, 4)
	for key, v := range map[string]any{
		string(cache.Auction):   s.cache.Auctions(),
		string(cache.Bazaar):    pairs,
		string(cache.Attribute): struct{}{},
		string(cache.NPC):       s.cache.NPC(),
	} {
		b, err := json.Marshal(v)
		if err != nil {
			s.logger.Error("failed to encode legacy category", "category", key, "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		resp[key] = string(b)
	}

	s.usage.Add(r.Context(), usage.RoutePricing)
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.usage.Snapshot())
}

func (s *Server) handlePerks(w http.ResponseWriter, r *http.Request) {
	perks := s.cache.Perks()
	if perks == nil {
		perks = cache.PerkSet{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"perks": perks})
}

type categoryHealth struct {
	Entries   int        `json:"entries"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type healthResponse struct {
	Status     string                    `json:"status"`
	Build      version.Info              `json:"build"`
	Categories map[string]categoryHealth `json:"categories"`
	Perks      int                       `json:"perks"`
	Jobs       []poller.Status           `json:"jobs,omitempty"`
}

// handleHealth reports "starting" until every category has been populated
// at least once, then "healthy".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:     "healthy",
		Build:      version.Current(),
		Categories: make(map[string]categoryHealth, len(cache.Categories())),
		Perks:      s.cache.Perks().Len(),
	}

	for _, cat := range cache.Categories() {
		e, _ := s.cache.Entry(cat)
		ch := categoryHealth{Entries: e.Record.Len()}
		if e.UpdatedAt.IsZero() {
			resp.Status = "starting"
		} else {
			updated := e.UpdatedAt
			ch.UpdatedAt = &updated
		}
		resp.Categories[string(cat)] = ch
	}

	if s.jobs != nil {
		resp.Jobs = s.jobs.Statuses()
	}

	s.writeJSON(w, http.StatusOK, resp)
}
