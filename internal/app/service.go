// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/bonus/internal/adapters/tiersource"
	"github.com/okian/bonus/internal/domain/bonus"
	"github.com/okian/bonus/internal/domain/tier"
	"github.com/okian/bonus/pkg/logger"
	"github.com/okian/bonus/pkg/metrics"
)

const defaultLoadTimeout = 5 * time.Second

// originStatic marks a table given with WithTable.
const originStatic tiersource.Origin = "static"

// TableLoader produces the rule table once at startup.
type TableLoader interface {
	Load(ctx context.Context) (tier.Table, tiersource.Origin)
}

// Quote is a single bonus evaluation as returned to clients.
type Quote struct {
	ID string `json:"quote_id"`
	bonus.Result
	Hint string `json:"hint,omitempty"`
}

// Preset is a shortcut amount with its display label.
type Preset struct {
	Amount int64  `json:"amount"`
	Label  string `json:"label"`
}

// Service owns the immutable rule table and evaluates quotes against it.
type Service struct {
	mu sync.RWMutex

	loader      TableLoader
	loadTimeout time.Duration
	formatter   bonus.Formatter
	rounding    bonus.Rounding
	presets     []int64

	// Set by Start, read-only afterwards.
	resolver *bonus.Resolver
	origin   tiersource.Origin
	loadedAt time.Time
	started  bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLoader sets where the rule table comes from.
func WithLoader(l TableLoader) Option {
	return func(s *Service) {
		s.loader = l
	}
}

// WithTable fixes the rule table. A loader, if any, still replaces it on Start.
func WithTable(t tier.Table) Option {
	return func(s *Service) {
		s.resolver = bonus.NewResolver(t)
	}
}

// WithLoadTimeout bounds the startup load.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// WithFormatter sets how amounts are rendered.
func WithFormatter(f bonus.Formatter) Option {
	return func(s *Service) {
		s.formatter = f
	}
}

// WithRounding sets the bonus rounding policy.
func WithRounding(r bonus.Rounding) Option {
	return func(s *Service) {
		s.rounding = r
	}
}

// WithPresets sets the shortcut amounts. Non-positive values are dropped.
func WithPresets(presets []int64) Option {
	return func(s *Service) {
		out := make([]int64, 0, len(presets))
		for _, p := range presets {
			if p > 0 {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			s.presets = out
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Until Start runs it quotes against an empty table
// unless WithTable was given.
func New(opts ...Option) *Service {
	s := &Service{
		loadTimeout: defaultLoadTimeout,
		formatter:   bonus.NewFormatter(),
		rounding:    bonus.RoundFloor,
		presets:     append([]int64(nil), bonus.DefaultPresets...),
		origin:      tiersource.OriginEmpty,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	table := tier.Table{}
	if s.resolver != nil {
		table = s.resolver.Table()
		s.origin = originStatic
	}
	s.resolver = s.newResolver(table)
	return s
}

func (s *Service) newResolver(t tier.Table) *bonus.Resolver {
	return bonus.NewResolver(t, bonus.WithFormatter(s.formatter), bonus.WithRounding(s.rounding))
}

// Start loads the rule table once. Load failures are absorbed by the loader,
// so the returned error is always nil. A second call is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting bonus service...")

	if s.loader != nil {
		lctx, cancel := context.WithTimeout(ctx, s.loadTimeout)
		table, origin := s.loader.Load(lctx)
		cancel()
		s.resolver = s.newResolver(table)
		s.origin = origin
	}
	s.loadedAt = time.Now()
	s.started = true

	s.logger.Info(ctx, "bonus service started",
		logger.Int("tiers", s.resolver.Table().Len()),
		logger.String("origin", string(s.origin)),
		logger.String("rounding", s.rounding.String()),
	)
	return nil
}

// Stop marks the service as not ready.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "bonus service stopped")
}

// Ready reports whether Start has completed.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

func (s *Service) current() *bonus.Resolver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolver
}

// Quote evaluates amount against the loaded table.
func (s *Service) Quote(ctx context.Context, amount float64) Quote {
	res := s.current().Compute(amount)

	outcome, label := metrics.QuoteBonus, ""
	switch {
	case res.Tier != nil:
		label = res.Tier.Label
	case res.Message == bonus.MsgInvalidAmount:
		outcome = metrics.QuoteInvalid
	default:
		outcome = metrics.QuoteNoBonus
	}
	metrics.RecordQuote(outcome, label, res.Bonus)

	q := Quote{
		ID:     uuid.NewString(),
		Result: res,
		Hint:   bonus.Hint(res.Amount),
	}
	s.logger.Debug(ctx, "quote computed",
		logger.String("quote_id", q.ID),
		logger.Float64("amount", res.Amount),
		logger.Int64("bonus", res.Bonus),
		logger.String("outcome", outcome),
	)
	return q
}

// QuoteInput sanitizes raw user input (digits only) and quotes it.
func (s *Service) QuoteInput(ctx context.Context, input string) Quote {
	return s.Quote(ctx, bonus.ParseAmount(input))
}

// Tiers returns a copy of the loaded tiers.
func (s *Service) Tiers(_ context.Context) []tier.Tier {
	return s.current().Table().Tiers()
}

// Presets returns the shortcut amounts with formatted labels.
func (s *Service) Presets(_ context.Context) []Preset {
	out := make([]Preset, len(s.presets))
	for i, p := range s.presets {
		out[i] = Preset{Amount: p, Label: s.formatter.Format(float64(p))}
	}
	return out
}

// GetStats returns service statistics for the /stats endpoint.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":  s.started,
		"tiers":    s.resolver.Table().Len(),
		"origin":   string(s.origin),
		"rounding": s.rounding.String(),
		"presets":  len(s.presets),
	}
	if !s.loadedAt.IsZero() {
		stats["loadedAt"] = s.loadedAt.UTC().Format(time.RFC3339)
	}
	return stats
}
