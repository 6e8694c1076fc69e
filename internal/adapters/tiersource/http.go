package tiersource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/bonus/internal/domain/tier"
)

// HTTP source defaults.
const (
	defaultFetchTimeout = 3 * time.Second
	defaultMaxBodyBytes = 1 << 20
	versionParam        = "v"
)

// HTTPSource fetches a JSON tier document with caching disabled.
type HTTPSource struct {
	url      string
	version  string
	client   *http.Client
	maxBytes int64
}

// HTTPOption configures an HTTPSource.
type HTTPOption func(*HTTPSource)

// WithVersion adds ?v=<version> to every request. Empty disables it.
func WithVersion(version string) HTTPOption {
	return func(s *HTTPSource) {
		s.version = version
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) HTTPOption {
	return func(s *HTTPSource) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the client. Its timeout is kept as is.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPSource) {
		if c != nil {
			s.client = c
		}
	}
}

// WithMaxBodyBytes caps how much of the response is read.
func WithMaxBodyBytes(n int64) HTTPOption {
	return func(s *HTTPSource) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// NewHTTPSource creates a source for rawURL.
func NewHTTPSource(rawURL string, opts ...HTTPOption) *HTTPSource {
	s := &HTTPSource{
		url:      rawURL,
		client:   &http.Client{Timeout: defaultFetchTimeout},
		maxBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *HTTPSource) String() string { return s.url }

// Fetch performs a GET that bypasses intermediate caches.
func (s *HTTPSource) Fetch(ctx context.Context) ([]tier.Tier, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("parse tiers url: %w", err)
	}
	if s.version != "" {
		q := u.Query()
		q.Set(versionParam, s.version)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build tiers request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tiers: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, s.maxBytes))
		return nil, fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, s.url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read tiers body: %w", err)
	}
	return Decode(body, FormatJSON)
}
