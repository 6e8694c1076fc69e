// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers defaults, an optional YAML file and env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// TiersSource is an http(s) URL or a local .json/.yaml path.
	TiersSource string `koanf:"tiers_source"`

	// TiersVersion is appended as ?v= to bust intermediate caches.
	TiersVersion string `koanf:"tiers_version"`

	// FetchTimeoutMS bounds a single tier document request.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// LoadTimeoutMS bounds the whole startup load including cache fallback.
	LoadTimeoutMS int `koanf:"load_timeout_ms"`

	// CacheBackend keeps the last good tier table across restarts: none,
	// file or redis.
	CacheBackend string `koanf:"cache_backend"`

	// CachePath is the table file used when CacheBackend is "file".
	CachePath string `koanf:"cache_path"`

	// Redis settings, used when CacheBackend is "redis".
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisKey      string `koanf:"redis_key"`
	RedisTTLS     int    `koanf:"redis_ttl_s"`

	// Locale and CurrencySymbol drive amount formatting.
	Locale         string `koanf:"locale"`
	CurrencySymbol string `koanf:"currency_symbol"`

	// Rounding is the bonus rounding policy: floor or round.
	Rounding string `koanf:"rounding"`

	// Presets are the shortcut amounts offered by the page.
	Presets []int64 `koanf:"presets"`

	// CacheVersion names the offline asset cache. Bump it whenever shell
	// assets change.
	CacheVersion string `koanf:"cache_version"`

	// RateLimitRPS and RateLimitBurst configure the per-client limiter.
	// Zero RPS disables it.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":9080",
		TiersSource:    "tiers.json",
		FetchTimeoutMS: 3000,
		LoadTimeoutMS:  5000,
		CacheBackend:   "none",
		CachePath:      "tiers.cache.json",
		RedisAddr:      "localhost:6379",
		RedisKey:       "bonus:tiers",
		RedisTTLS:      7 * 24 * 60 * 60,
		Locale:         "en-IN",
		CurrencySymbol: "₹",
		Rounding:       "floor",
		Presets:        []int64{500, 1000, 5000, 10000, 25000, 50000},
		CacheVersion:   "v3",
		RateLimitRPS:   20,
		RateLimitBurst: 40,
	}
}
