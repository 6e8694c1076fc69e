package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"
)

func serve(r http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegister(t *testing.T) {
	Convey("Given the site registered with a cache version", t, func() {
		r := chi.NewRouter()
		So(Register(context.Background(), r, WithCacheVersion("v7")), ShouldBeNil)

		Convey("Then the shell is served at the root", func() {
			w := serve(r, "/")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
			So(w.Body.String(), ShouldContainSubstring, `id="amount"`)
			So(w.Body.String(), ShouldContainSubstring, `id="copyBtn"`)
		})

		Convey("And every precached asset exists", func() {
			for _, p := range Shell {
				path := strings.TrimPrefix(p, ".")
				// The file server redirects /index.html to the directory.
				So(serve(r, path).Code, ShouldBeIn, []int{http.StatusOK, http.StatusMovedPermanently})
			}
			So(serve(r, "/app.js").Code, ShouldEqual, http.StatusOK)
			So(serve(r, "/icons/icon.svg").Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the manifest has its media type", func() {
			w := serve(r, "/manifest.webmanifest")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/manifest+json")
		})

		Convey("And the service worker carries the cache version", func() {
			w := serve(r, "/sw.js")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/javascript")
			So(w.Header().Get("Cache-Control"), ShouldEqual, "no-cache")
			So(w.Body.String(), ShouldContainSubstring, `"bonus-cache-v7"`)
		})

		Convey("And unknown assets are not found", func() {
			So(serve(r, "/missing.css").Code, ShouldEqual, http.StatusNotFound)
		})
	})

	Convey("Given the default cache version", t, func() {
		r := chi.NewRouter()
		So(Register(context.Background(), r, WithCacheVersion("  ")), ShouldBeNil)
		So(serve(r, "/sw.js").Body.String(), ShouldContainSubstring, `"bonus-cache-v3"`)
	})

	Convey("Given a nil router", t, func() {
		So(func() { _ = Register(context.Background(), nil) }, ShouldPanic)
	})
}

func TestRenderServiceWorker(t *testing.T) {
	Convey("Given a rendered service worker", t, func() {
		sw, err := RenderServiceWorker("v9")
		So(err, ShouldBeNil)
		body := string(sw)

		Convey("Then it precaches the shell", func() {
			for _, p := range Shell {
				So(body, ShouldContainSubstring, `"`+p+`"`)
			}
		})

		Convey("And it never precaches the tier document", func() {
			start := strings.Index(body, "const SHELL")
			end := strings.Index(body[start:], "];")
			So(body[start:start+end], ShouldNotContainSubstring, "tiers.json")
		})

		Convey("And it fetches the tier document network first", func() {
			So(body, ShouldContainSubstring, `url.pathname.endsWith("/tiers.json")`)
			So(body, ShouldContainSubstring, ".catch(() => caches.match(e.request))")
		})

		Convey("And the cache name follows the version", func() {
			So(CacheName("v9"), ShouldEqual, "bonus-cache-v9")
			So(body, ShouldContainSubstring, `const STATIC_CACHE = "bonus-cache-v9";`)
		})
	})
}
