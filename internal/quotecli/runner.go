package quotecli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/bonus/internal/adapters/tiersource"
	service "github.com/okian/bonus/internal/app"
	"github.com/okian/bonus/internal/domain/bonus"
	"github.com/okian/bonus/pkg/logger"
)

// Quoter evaluates one raw amount.
type Quoter interface {
	QuoteInput(ctx context.Context, input string) (service.Quote, error)
}

// Run evaluates every amount and writes one line per amount to out.
func Run(ctx context.Context, cfg *Config, amounts []string, out io.Writer) error {
	if err := cfg.Validate(amounts); err != nil {
		return err
	}

	q, err := newQuoter(ctx, cfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	for _, a := range amounts {
		quote, err := q.QuoteInput(ctx, a)
		if err != nil {
			return err
		}
		if cfg.JSON {
			if err := enc.Encode(quote); err != nil {
				return fmt.Errorf("failed to write quote: %w", err)
			}
			continue
		}
		if _, err := fmt.Fprintln(out, quote.Message); err != nil {
			return fmt.Errorf("failed to write quote: %w", err)
		}
	}
	return nil
}

func newQuoter(ctx context.Context, cfg *Config) (Quoter, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if cfg.Server != "" {
		return &remoteQuoter{
			base:   strings.TrimRight(cfg.Server, "/"),
			client: &http.Client{Timeout: timeout},
		}, nil
	}

	locale := cfg.Locale
	if locale == "" {
		locale = DefaultLocale
	}
	tag, err := bonus.ParseLocale(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	symbol := cfg.Symbol
	if symbol == "" {
		symbol = DefaultSymbol
	}
	rounding, err := bonus.ParseRounding(cfg.Rounding)
	if err != nil {
		return nil, err
	}

	lg := logger.Get().Named("quote")
	loader := tiersource.NewLoader(
		tiersource.NewSource(cfg.Tiers, cfg.Version, timeout),
		tiersource.WithLogger(lg),
	)
	svc := service.New(
		service.WithLoader(loader),
		service.WithLoadTimeout(timeout),
		service.WithFormatter(bonus.NewFormatter(bonus.WithLocale(tag), bonus.WithCurrencySymbol(symbol))),
		service.WithRounding(rounding),
		service.WithLogger(lg),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return localQuoter{svc: svc}, nil
}

type localQuoter struct {
	svc *service.Service
}

func (l localQuoter) QuoteInput(ctx context.Context, input string) (service.Quote, error) {
	return l.svc.QuoteInput(ctx, input), nil
}

type remoteQuoter struct {
	base   string
	client *http.Client
}

func (r *remoteQuoter) QuoteInput(ctx context.Context, input string) (service.Quote, error) {
	var q service.Quote
	u := r.base + "/api/quote?amount=" + url.QueryEscape(input)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return q, fmt.Errorf("%w: %w", ErrRemoteQuote, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return q, fmt.Errorf("%w: %w", ErrRemoteQuote, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return q, fmt.Errorf("%w: %s: %s", ErrRemoteQuote, resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return q, fmt.Errorf("%w: decode: %w", ErrRemoteQuote, err)
	}
	return q, nil
}
