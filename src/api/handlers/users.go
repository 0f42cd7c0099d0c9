package handlers

import (
	"net/http"

	"tradesim/src/schemas"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req schemas.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := h.UserService.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respond(w, r, user, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req schemas.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := h.UserService.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respond(w, r, user, http.StatusOK)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromURL(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := h.UserService.GetUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.respond(w, r, user, http.StatusOK)
}
