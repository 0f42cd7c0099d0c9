package handlers

import (
	"net/http"

	"tradesim/src/schemas"
)

func (h *Handler) CreateTrade(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromURL(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req schemas.TradeRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	receipt, err := h.TradeService.ExecuteTrade(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respond(w, r, receipt, http.StatusCreated)
}

func (h *Handler) GetOperations(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromURL(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	operations, err := h.TradeService.GetOperations(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respond(w, r, operations, http.StatusOK)
}
