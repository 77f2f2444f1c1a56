package handler

import (
	"net/http"

	"phonestore/internal/model"
	"phonestore/internal/service"

	"github.com/rs/zerolog"
)

// PurchaseOrderHandler handles back-office purchase order requests.
type PurchaseOrderHandler struct {
	service service.PurchaseOrderService
	logger  zerolog.Logger
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(service service.PurchaseOrderService, logger zerolog.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "purchase_order").Logger(),
	}
}

// Create handles POST /api/purchase-orders.
func (h *PurchaseOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	var req model.CreatePurchaseOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err, h.logger)
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// Confirm handles POST /api/purchase-orders/{id}/confirm.
func (h *PurchaseOrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Confirm(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// Cancel handles POST /api/purchase-orders/{id}/cancel.
func (h *PurchaseOrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.Cancel(r.Context(), pathID(r))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// ListPending handles GET /api/purchase-orders/pending.
func (h *PurchaseOrderHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListPending)
}

// ListRegistered handles GET /api/purchase-orders/registered.
func (h *PurchaseOrderHandler) ListRegistered(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListRegistered)
}

func (h *PurchaseOrderHandler) list(w http.ResponseWriter, r *http.Request, fetch listFunc[model.PurchaseOrder]) {
	req, err := pageRequest(r)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	page, err := fetch(r.Context(), req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
