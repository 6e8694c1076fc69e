package tiersource

import (
	"context"
	"time"

	"github.com/okian/bonus/internal/domain/tier"
	"github.com/okian/bonus/pkg/logger"
	"github.com/okian/bonus/pkg/metrics"
)

// Origin tells where a loaded table came from.
type Origin string

// Load origins.
const (
	OriginNetwork Origin = metrics.LoadNetwork
	OriginCache   Origin = metrics.LoadCache
	OriginEmpty   Origin = metrics.LoadEmpty
)

// Loader fetches the rule table network-first with a cache fallback.
type Loader struct {
	source Source
	cache  Cache
	logger logger.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache sets the fallback cache. Without it a failed fetch yields an
// empty table.
func WithCache(c Cache) Option {
	return func(l *Loader) {
		l.cache = c
	}
}

// WithLogger sets the logger used for load warnings.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// NewLoader creates a loader over source.
func NewLoader(source Source, opts ...Option) *Loader {
	l := &Loader{
		source: source,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the current table and where it came from. It never fails:
// origin errors fall back to the cache, and cache errors to an empty table.
func (l *Loader) Load(ctx context.Context) (tier.Table, Origin) {
	start := time.Now()
	table, origin := l.load(ctx)
	metrics.RecordTierLoad(string(origin), table.Len(), float64(time.Since(start).Milliseconds()))
	return table, origin
}

func (l *Loader) load(ctx context.Context) (tier.Table, Origin) {
	tiers, err := l.source.Fetch(ctx)
	if err == nil {
		l.store(ctx, tiers)
		l.logger.Info(ctx, "tiers loaded",
			logger.String("location", l.source.String()),
			logger.Int("count", len(tiers)))
		return tier.NewTable(tiers), OriginNetwork
	}
	l.logger.Warn(ctx, "could not load tiers",
		logger.String("location", l.source.String()),
		logger.Error(err))

	if l.cache == nil {
		return tier.Table{}, OriginEmpty
	}
	cached, cerr := l.cache.Get(ctx)
	if cerr != nil {
		l.logger.Warn(ctx, "no cached tiers; continuing with an empty table", logger.Error(cerr))
		return tier.Table{}, OriginEmpty
	}
	l.logger.Info(ctx, "tiers loaded from cache", logger.Int("count", len(cached)))
	return tier.NewTable(cached), OriginCache
}

func (l *Loader) store(ctx context.Context, tiers []tier.Tier) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Put(ctx, tiers); err != nil {
		l.logger.Warn(ctx, "could not cache tiers", logger.Error(err))
	}
}
