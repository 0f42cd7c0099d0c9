package handlers

import (
	"net/http"
)

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromURL(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	snapshot, err := h.PortfolioService.GetPortfolio(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respond(w, r, snapshot, http.StatusOK)
}
