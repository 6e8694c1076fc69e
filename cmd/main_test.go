package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/bonus/internal/adapters/ratelimit"
	"github.com/okian/bonus/internal/adapters/tiersource"
	"github.com/okian/bonus/internal/config"
	"github.com/okian/bonus/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

const tiersDoc = `[
  {"min": 0, "max": 1000, "rate": 0.05, "label": "Starter"},
  {"min": 1000, "rate": 0.10, "cap": 2000, "label": "Plus"}
]`

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func writeTiers(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiers.json")
	if err := os.WriteFile(path, []byte(tiersDoc), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			t.Setenv("BONUS_ADDR", ":8080")
			t.Setenv("BONUS_CACHE_VERSION", "v4")

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.CacheVersion, convey.ShouldEqual, "v4")
			})
		})

		convey.Convey("When testing invalid configuration", func() {
			t.Setenv("BONUS_ADDR", "")

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestNewCache(t *testing.T) {
	convey.Convey("Given cache backends", t, func() {
		ctx := context.Background()
		cfg := config.New()

		convey.Convey("Then file builds a cache that outlives the process", func() {
			cfg.CacheBackend = "File"
			cfg.CachePath = filepath.Join(t.TempDir(), "tiers.cache.json")
			cache, closeFn, err := newCache(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cache, convey.ShouldHaveSameTypeAs, tiersource.NewFileCache(""))
			closeFn()
		})

		convey.Convey("And the default is no cache", func() {
			cache, closeFn, err := newCache(ctx, config.New(), logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cache, convey.ShouldBeNil)
			closeFn()
		})

		convey.Convey("And memory is no longer a backend", func() {
			cfg.CacheBackend = "memory"
			_, _, err := newCache(ctx, cfg, logger.Nop())
			convey.So(errors.Is(err, ErrUnknownCacheBackend), convey.ShouldBeTrue)
		})

		convey.Convey("And none disables the cache", func() {
			cfg.CacheBackend = "none"
			cache, closeFn, err := newCache(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cache, convey.ShouldBeNil)
			closeFn()
		})

		convey.Convey("And an unknown backend is rejected", func() {
			cfg.CacheBackend = "memcached"
			_, _, err := newCache(ctx, cfg, logger.Nop())
			convey.So(errors.Is(err, ErrUnknownCacheBackend), convey.ShouldBeTrue)
		})
	})
}

func TestNewService(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		cfg := config.New()

		convey.Convey("When the locale is invalid", func() {
			cfg.Locale = "not a locale!"
			_, err := newService(cfg, logger.Nop(), nil)

			convey.Convey("Then the service is not built", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the rounding is unknown", func() {
			cfg.Rounding = "ceiling"
			_, err := newService(cfg, logger.Nop(), nil)

			convey.Convey("Then the service is not built", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a service loaded from a tier file", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New()
		cfg.TiersSource = writeTiers(t)
		cfg.CacheVersion = "v5"

		svc, err := newService(cfg, logger.Nop(), newLoader(cfg, tiersource.NewFileCache(filepath.Join(t.TempDir(), "tiers.cache.json")), logger.Nop()))
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		router, err := newRouter(ctx, cfg, svc, ratelimit.NewStore(cfg.RateLimitRPS, cfg.RateLimitBurst))
		convey.So(err, convey.ShouldBeNil)

		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
			return w
		}

		convey.Convey("Then quotes use the loaded table", func() {
			w := get("/api/quote?amount=500")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			var q struct {
				Bonus   int64  `json:"bonus"`
				Message string `json:"message"`
			}
			convey.So(json.Unmarshal(w.Body.Bytes(), &q), convey.ShouldBeNil)
			convey.So(q.Bonus, convey.ShouldEqual, int64(25))
			convey.So(q.Message, convey.ShouldEqual, "Deposit: ₹500 | Bonus: ₹25 (5%) | Total credit: ₹525")
		})

		convey.Convey("And every surface is mounted", func() {
			convey.So(get("/readyz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/sw.js").Body.String(), convey.ShouldContainSubstring, "bonus-cache-v5")
			convey.So(get("/tiers.json").Header().Get("Cache-Control"), convey.ShouldEqual, "no-store")
		})

		convey.Convey("And stats report the origin", func() {
			convey.So(svc.GetStats()["origin"], convey.ShouldEqual, "network")
		})
	})

	convey.Convey("Given a tier source that does not exist", t, func() {
		cfg := config.New()
		cfg.TiersSource = filepath.Join(t.TempDir(), "missing.json")

		svc, err := newService(cfg, logger.Nop(), newLoader(cfg, nil, logger.Nop()))
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then the service still starts with an empty table", func() {
			convey.So(svc.Ready(), convey.ShouldBeTrue)
			convey.So(svc.Quote(context.Background(), 5000).Message, convey.ShouldEqual, "No bonus.")
		})
	})
}

func TestNewLimiter(t *testing.T) {
	convey.Convey("Given a served tier file", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg := config.New()
		cfg.TiersSource = writeTiers(t)
		cfg.RateLimitBurst = 2

		svc, err := newService(cfg, logger.Nop(), newLoader(cfg, nil, logger.Nop()))
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		hammer := func(limiter *ratelimit.Store) int {
			router, err := newRouter(ctx, cfg, svc, limiter)
			convey.So(err, convey.ShouldBeNil)
			rejected := 0
			for i := 0; i < 10; i++ {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quote?amount=500", http.NoBody))
				if w.Code == http.StatusTooManyRequests {
					rejected++
				}
			}
			return rejected
		}

		convey.Convey("When rate_limit_rps is zero", func() {
			cfg.RateLimitRPS = 0
			limiter := newLimiter(ctx, cfg)

			convey.Convey("Then no limiter is built and nothing is throttled", func() {
				convey.So(limiter, convey.ShouldBeNil)
				convey.So(hammer(limiter), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a rate is configured", func() {
			cfg.RateLimitRPS = 0.001
			limiter := newLimiter(ctx, cfg)

			convey.Convey("Then requests past the burst are rejected", func() {
				convey.So(limiter, convey.ShouldNotBeNil)
				convey.So(hammer(limiter), convey.ShouldEqual, 8)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing system metrics updater", func() {
			convey.Convey("Then it should return once the context ends", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing system metrics update", func() {
			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})
	})
}
