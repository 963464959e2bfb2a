// Package server exposes the cached prices over HTTP.
//
// Routes (trailing slash optional):
//
//	GET /v2/economy/get-item-pricing/  all categories as objects
//	GET /v1/economy/get-item-pricing/  legacy shape, each category a JSON string
//	GET /v1/misc/get-api-usage/        usage counters for the current period
//	GET /v1/misc/get-perks/            active election perks
//	GET /health                        entry counts and job status
//
// Every route but /health is rate limited per client; a rejection is a 429
// with an empty body.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rickgao/economy-pricing/internal/cache"
	"github.com/rickgao/economy-pricing/internal/poller"
	"github.com/rickgao/economy-pricing/internal/ratelimit"
	"github.com/rickgao/economy-pricing/internal/usage"
)

// Route paths.
const (
	PathPricingV2 = "/v2/economy/get-item-pricing"
	PathPricingV1 = "/v1/economy/get-item-pricing"
	PathUsage     = "/v1/misc/get-api-usage"
	PathPerks     = "/v1/misc/get-perks"
	PathHealth    = "/health"
)

// Limiter endpoint names. Both pricing versions share one budget.
const (
	EndpointPricing = "get-item-pricing"
	EndpointUsage   = "get-api-usage"
	EndpointPerks   = "get-perks"
)

// Config holds routing settings.
type Config struct {
	TrustProxy  bool
	ProxyHeader string

	Pricing ratelimit.Rule
	Usage   ratelimit.Rule
	Perks   ratelimit.Rule
}

// JobStatuses reports scheduler state for /health.
type JobStatuses interface {
	Statuses() []poller.Status
}

// Server holds the HTTP handlers.
type Server struct {
	cfg     Config
	cache   *cache.Cache
	limiter *ratelimit.Limiter
	usage   *usage.Tracker
	jobs    JobStatuses
	logger  *slog.Logger
}

// New creates a Server. jobs may be nil.
func New(cfg Config, c *cache.Cache, limiter *ratelimit.Limiter, tracker *usage.Tracker, jobs JobStatuses, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Pricing.Endpoint = EndpointPricing
	cfg.Usage.Endpoint = EndpointUsage
	cfg.Perks.Endpoint = EndpointPerks

	return &Server{
		cfg:     cfg,
		cache:   c,
		limiter: limiter,
		usage:   tracker,
		jobs:    jobs,
		logger:  logger,
	}
}

// Handler returns the routing mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, PathPricingV2, s.limited(s.cfg.Pricing, s.handlePricingV2))
	s.handle(mux, PathPricingV1, s.limited(s.cfg.Pricing, s.handlePricingV1))
	s.handle(mux, PathUsage, s.limited(s.cfg.Usage, s.handleUsage))
	s.handle(mux, PathPerks, s.limited(s.cfg.Perks, s.handlePerks))
	s.handle(mux, PathHealth, http.HandlerFunc(s.handleHealth))

	return mux
}

// handle registers h for path with and without a trailing slash.
func (s *Server) handle(mux *http.ServeMux, path string, h http.Handler) {
	path = strings.TrimSuffix(path, "/")
	mux.Handle("GET "+path, h)
	mux.Handle("GET "+path+"/{$}", h)
}

func (s *Server) limited(rule ratelimit.Rule, h http.HandlerFunc) http.Handler {
	return ratelimit.Middleware(s.limiter, rule, s.clientAddress)(h)
}

func (s *Server) clientAddress(r *http.Request) string {
	return ratelimit.ClientAddress(r, s.cfg.TrustProxy, s.cfg.ProxyHeader)
}

// writeJSON encodes v as the response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode response", "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
