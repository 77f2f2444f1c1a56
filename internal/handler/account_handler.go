package handler

import (
	"net/http"

	"phonestore/internal/model"
	"phonestore/internal/service"

	"github.com/rs/zerolog"
)

// AccountHandler handles the caller's profile and invoice history.
type AccountHandler struct {
	service service.AccountService
	logger  zerolog.Logger
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(service service.AccountService, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger.With().Str("handler", "account").Logger(),
	}
}

// GetProfile handles GET /api/profile.
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// SaveProfile handles PUT /api/profile.
func (h *AccountHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	profile, err := h.service.SaveProfile(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Invoices handles GET /api/invoices.
func (h *AccountHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	req, err := pageRequest(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	page, err := h.service.Invoices(r.Context(), userID, req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
