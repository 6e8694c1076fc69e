package api

import (
	"context"
	"net/http"
	"strings"

	service "github.com/okian/bonus/internal/app"
)

// QuoteDependencies defines the interface for quote operations.
type QuoteDependencies interface {
	QuoteInput(ctx context.Context, input string) service.Quote
}

// QuoteHandler handles quote requests.
type QuoteHandler struct {
	deps QuoteDependencies
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(deps QuoteDependencies) *QuoteHandler {
	return &QuoteHandler{deps: deps}
}

// HandleQuote handles GET /api/quote?amount=N requests. The amount is
// sanitized to digits; text without digits quotes as an invalid amount.
func (h *QuoteHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_quote"
	raw := r.URL.Query().Get("amount")
	if strings.TrimSpace(raw) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, ErrMissingAmount))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.QuoteInput(r.Context(), raw))
}
