package handler

import (
	"net/http"

	"phonestore/internal/service"

	"github.com/rs/zerolog"
)

// CatalogHandler handles phone catalogue requests.
type CatalogHandler struct {
	service service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(service service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With().Str("handler", "catalog").Logger(),
	}
}

// List handles GET /api/phones.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	page, err := h.service.List(r.Context(), req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Get handles GET /api/phones/{id}.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	phone, err := h.service.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, phone)
}

// Kardex handles GET /api/phones/{id}/kardex.
func (h *CatalogHandler) Kardex(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	page, err := h.service.Kardex(r.Context(), pathID(r), req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
