// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okian/bonus/internal/adapters/ratelimit"
	service "github.com/okian/bonus/internal/app"
	"github.com/okian/bonus/internal/domain/tier"
	"github.com/okian/bonus/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	// QuoteInput sanitizes raw input and evaluates it.
	QuoteInput(ctx context.Context, input string) service.Quote

	// Read operations expose the loaded table and shortcut amounts.
	Tiers(ctx context.Context) []tier.Tier
	Presets(ctx context.Context) []service.Preset

	// Ready reports whether the table has been loaded.
	Ready() bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	quoteHandler  *QuoteHandler
	tiersHandler  *TiersHandler
	limiter       *ratelimit.Store
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithRateLimiter throttles the /api routes per client.
func WithRateLimiter(s *ratelimit.Store) ServerOption {
	return func(srv *Server) {
		srv.limiter = s
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(deps),
		statsHandler:  NewStatsHandler(deps),
		quoteHandler:  NewQuoteHandler(deps),
		tiersHandler:  NewTiersHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/tiers.json", MetricsMiddleware(s.tiersHandler.HandleTiersDocument, "tiers_json"))

	r.Route("/api", func(r chi.Router) {
		r.Use(ratelimit.Middleware(ratelimit.Options{
			Store:      s.limiter,
			RetryAfter: time.Second,
			OnReject:   rejectRateLimited,
		}))
		r.Get("/quote", MetricsMiddleware(s.quoteHandler.HandleQuote, "quote"))
		r.Get("/tiers", MetricsMiddleware(s.tiersHandler.HandleTiers, "tiers"))
		r.Get("/presets", MetricsMiddleware(s.tiersHandler.HandlePresets, "presets"))
	})
}

func rejectRateLimited(w http.ResponseWriter, r *http.Request) {
	metrics.RecordRateLimited(r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind("api.rate_limit", ErrRateLimited))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
