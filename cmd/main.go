package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/okian/bonus/internal/adapters/http/api"
	"github.com/okian/bonus/internal/adapters/http/site"
	"github.com/okian/bonus/internal/adapters/http/swagger"
	"github.com/okian/bonus/internal/adapters/ratelimit"
	"github.com/okian/bonus/internal/adapters/tiersource"
	app "github.com/okian/bonus/internal/app"
	"github.com/okian/bonus/internal/config"
	"github.com/okian/bonus/internal/domain/bonus"
	"github.com/okian/bonus/pkg/logger"
	"github.com/okian/bonus/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	redisPingTimeout          = 2 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// ErrUnknownCacheBackend is returned for a cache_backend other than none, file or redis.
var ErrUnknownCacheBackend = errors.New("unknown cache backend")

func main() {
	if err := run(); err != nil {
		// The logger may not be available yet.
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	cache, closeCache, err := newCache(ctx, cfg, loggerInstance)
	if err != nil {
		return err
	}
	defer closeCache()

	svc, err := newService(cfg, loggerInstance, newLoader(cfg, cache, loggerInstance))
	if err != nil {
		return err
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)

	router, err := newRouter(ctx, cfg, svc, newLimiter(ctx, cfg))
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for a shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	}
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
	return nil
}

// newCache builds the last-good table cache. The returned func releases it.
func newCache(ctx context.Context, cfg *config.Config, lg logger.Logger) (tiersource.Cache, func(), error) {
	switch strings.ToLower(cfg.CacheBackend) {
	case "", "none":
		return nil, func() {}, nil
	case "file":
		return tiersource.NewFileCache(cfg.CachePath), func() {}, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// The loader treats cache failures as misses, so keep going.
			lg.Warn(ctx, "redis unreachable; tier cache degraded", logger.String("redis_addr", cfg.RedisAddr), logger.Error(err))
		}
		cache := tiersource.NewRedisCache(rdb,
			tiersource.WithRedisKey(cfg.RedisKey),
			tiersource.WithRedisTTL(time.Duration(cfg.RedisTTLS)*time.Second),
		)
		return cache, func() { _ = rdb.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownCacheBackend, cfg.CacheBackend)
	}
}

func newLoader(cfg *config.Config, cache tiersource.Cache, lg logger.Logger) *tiersource.Loader {
	src := tiersource.NewSource(cfg.TiersSource, cfg.TiersVersion, time.Duration(cfg.FetchTimeoutMS)*time.Millisecond)
	opts := []tiersource.Option{tiersource.WithLogger(lg.Named("tiersource"))}
	if cache != nil {
		opts = append(opts, tiersource.WithCache(cache))
	}
	return tiersource.NewLoader(src, opts...)
}

func newService(cfg *config.Config, lg logger.Logger, loader app.TableLoader) (*app.Service, error) {
	tag, err := bonus.ParseLocale(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", cfg.Locale, err)
	}
	rounding, err := bonus.ParseRounding(cfg.Rounding)
	if err != nil {
		return nil, err
	}
	return app.New(
		app.WithLogger(lg.Named("service")),
		app.WithLoader(loader),
		app.WithLoadTimeout(time.Duration(cfg.LoadTimeoutMS)*time.Millisecond),
		app.WithFormatter(bonus.NewFormatter(bonus.WithLocale(tag), bonus.WithCurrencySymbol(cfg.CurrencySymbol))),
		app.WithRounding(rounding),
		app.WithPresets(cfg.Presets),
	), nil
}

// newLimiter returns nil when rate_limit_rps is zero.
func newLimiter(ctx context.Context, cfg *config.Config) *ratelimit.Store {
	if cfg.RateLimitRPS <= 0 {
		return nil
	}
	limiter := ratelimit.NewStore(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartJanitor(ctx)
	return limiter
}

func newRouter(ctx context.Context, cfg *config.Config, svc *app.Service, limiter *ratelimit.Store) (chi.Router, error) {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	var opts []api.ServerOption
	if limiter != nil {
		opts = append(opts, api.WithRateLimiter(limiter))
	}
	api.NewServer(svc, opts...).Register(ctx, r)
	swagger.Register(ctx, r)
	if err := site.Register(ctx, r, site.WithCacheVersion(cfg.CacheVersion)); err != nil {
		return nil, err
	}
	return r, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordGCPause(avgPauseMs)
	}
}
