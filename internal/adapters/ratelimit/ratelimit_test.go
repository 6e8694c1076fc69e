package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	Convey("Given a store with a burst of two and a negligible refill", t, func() {
		s := NewStore(0.0001, 2)

		Convey("Then each key gets its own bucket", func() {
			So(s.Allow("a"), ShouldBeTrue)
			So(s.Allow("a"), ShouldBeTrue)
			So(s.Allow("a"), ShouldBeFalse)
			So(s.Allow("b"), ShouldBeTrue)
			So(s.Len(), ShouldEqual, 2)
			So(s.RPS(), ShouldEqual, 0.0001)
			So(s.Burst(), ShouldEqual, 2)
		})
	})

	Convey("Given a store with a controllable clock", t, func() {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		s := NewStore(1, 1, WithIdleTTL(time.Minute))
		s.now = func() time.Time { return now }

		s.Allow("old")
		now = now.Add(2 * time.Minute)
		s.Allow("fresh")

		Convey("When cleaning up", func() {
			s.Cleanup()

			Convey("Then only idle keys are dropped", func() {
				So(s.Len(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a janitor on a cancelled context", t, func() {
		s := NewStore(1, 1, WithCleanupEvery(time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		So(func() { s.StartJanitor(ctx) }, ShouldNotPanic)
	})
}

func TestMiddleware(t *testing.T) {
	Convey("Given a limited handler", t, func() {
		ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		h := Middleware(Options{Store: NewStore(0.0001, 1), RetryAfter: 3 * time.Second})(ok)

		call := func(remote string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/api/quote", http.NoBody)
			req.RemoteAddr = remote
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			return w
		}

		Convey("Then the first request passes and the second is rejected", func() {
			So(call("10.0.0.1:5000").Code, ShouldEqual, http.StatusNoContent)
			w := call("10.0.0.1:5001")
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(w.Header().Get("Retry-After"), ShouldEqual, "3")
		})

		Convey("And other clients are unaffected", func() {
			So(call("10.0.0.1:5000").Code, ShouldEqual, http.StatusNoContent)
			So(call("10.0.0.2:5000").Code, ShouldEqual, http.StatusNoContent)
		})
	})

	Convey("Given a custom rejection writer", t, func() {
		var rejected bool
		h := Middleware(Options{
			Store:    NewStore(0.0001, 1),
			KeyFn:    func(*http.Request) string { return "same" },
			OnReject: func(w http.ResponseWriter, _ *http.Request) { rejected = true; w.WriteHeader(http.StatusTooManyRequests) },
		})(http.NotFoundHandler())

		for i := 0; i < 2; i++ {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		}
		So(rejected, ShouldBeTrue)
	})

	Convey("Given no store", t, func() {
		h := Middleware(Options{})(http.NotFoundHandler())
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		So(w.Code, ShouldEqual, http.StatusNotFound)
	})

	Convey("Given remote addresses", t, func() {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.RemoteAddr = "192.0.2.1:1234"
		So(ClientIP(req), ShouldEqual, "192.0.2.1")
		req.RemoteAddr = "192.0.2.9"
		So(ClientIP(req), ShouldEqual, "192.0.2.9")
		req.RemoteAddr = ""
		So(ClientIP(req), ShouldEqual, "unknown")
	})
}
