package api

import (
	"context"
	"net/http"

	service "github.com/okian/bonus/internal/app"
	"github.com/okian/bonus/internal/domain/tier"
)

// TiersDependencies defines the interface for table reads.
type TiersDependencies interface {
	Tiers(ctx context.Context) []tier.Tier
	Presets(ctx context.Context) []service.Preset
}

// TiersHandler serves the loaded table and the preset amounts.
type TiersHandler struct {
	deps TiersDependencies
}

// NewTiersHandler creates a new tiers handler.
func NewTiersHandler(deps TiersDependencies) *TiersHandler {
	return &TiersHandler{deps: deps}
}

type tiersResponse struct {
	Tiers []tier.Tier `json:"tiers"`
	Count int         `json:"count"`
}

// HandleTiers handles GET /api/tiers requests.
func (h *TiersHandler) HandleTiers(w http.ResponseWriter, r *http.Request) {
	tiers := nonNil(h.deps.Tiers(r.Context()))
	writeJSON(w, http.StatusOK, tiersResponse{Tiers: tiers, Count: len(tiers)})
}

// HandleTiersDocument handles GET /tiers.json. The document is never cached
// so clients always see the table the server loaded.
func (h *TiersHandler) HandleTiersDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, nonNil(h.deps.Tiers(r.Context())))
}

// HandlePresets handles GET /api/presets requests.
func (h *TiersHandler) HandlePresets(w http.ResponseWriter, r *http.Request) {
	presets := h.deps.Presets(r.Context())
	if presets == nil {
		presets = []service.Preset{}
	}
	writeJSON(w, http.StatusOK, presets)
}

func nonNil(tiers []tier.Tier) []tier.Tier {
	if tiers == nil {
		return []tier.Tier{}
	}
	return tiers
}
