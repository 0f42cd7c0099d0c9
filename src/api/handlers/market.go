package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetAllAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.MarketService.ListAssets(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respond(w, r, assets, http.StatusOK)
}

func (h *Handler) GetAssetByTicker(w http.ResponseWriter, r *http.Request) {
	asset, err := h.MarketService.GetAsset(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respond(w, r, asset, http.StatusOK)
}

// RefreshPrices triggers an on-demand refresh of every catalog asset.
// Per-ticker failures are reported in the result, not as request errors.
func (h *Handler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	result, err := h.MarketService.RefreshAll(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}
