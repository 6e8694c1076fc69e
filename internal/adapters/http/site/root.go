// Package site serves the embedded calculator shell and its service worker.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"text/template"

	"github.com/go-chi/chi/v5"
)

// Error constants.
var (
	ErrRender = errors.New("service worker render failed")
)

const (
	defaultCacheVersion = "v3"
	cachePrefix         = "bonus-cache-"
	tiersDocument       = "tiers.json"
)

// Shell lists the assets precached for offline use. The tier document is
// never part of it; the worker fetches it network-first.
var Shell = []string{
	"./",
	"./index.html",
	"./app.js",
	"./manifest.webmanifest",
	"./icons/icon.svg",
}

type config struct {
	cacheVersion string
}

// Option configures the site routes.
type Option func(*config)

// WithCacheVersion sets the version suffix of the offline cache name. Bumping
// it makes clients drop the previous cache.
func WithCacheVersion(v string) Option {
	return func(c *config) {
		if v = strings.TrimSpace(v); v != "" {
			c.cacheVersion = v
		}
	}
}

// CacheName returns the offline cache key for version.
func CacheName(version string) string {
	return cachePrefix + version
}

// RenderServiceWorker renders sw.js for the given cache version.
func RenderServiceWorker(version string) ([]byte, error) {
	tmpl, err := template.New("sw.js").Parse(serviceWorkerTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	var buf bytes.Buffer
	err = tmpl.Execute(&buf, struct {
		CacheName string
		Shell     []string
		Document  string
	}{CacheName(version), Shell, tiersDocument})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}

// Register attaches the calculator shell to r. The tier document itself is
// served by the API package.
func Register(_ context.Context, r chi.Router, opts ...Option) error {
	if r == nil {
		panic("router is nil")
	}
	cfg := config{cacheVersion: defaultCacheVersion}
	for _, opt := range opts {
		opt(&cfg)
	}

	sw, err := RenderServiceWorker(cfg.cacheVersion)
	if err != nil {
		return err
	}

	r.Get("/sw.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(sw)
	})
	r.Get("/manifest.webmanifest", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/manifest+json")
		http.FileServer(FS()).ServeHTTP(w, req)
	})
	r.Handle("/*", http.FileServer(FS()))
	return nil
}
