package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"phonestore/internal/model"
	"phonestore/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// purchaseOrderService implements PurchaseOrderService.
type purchaseOrderService struct {
	orders    repository.PurchaseOrderRepository
	suppliers repository.SupplierRepository
	now       func() time.Time
	logger    zerolog.Logger
}

// NewPurchaseOrderService creates a new purchase order service.
func NewPurchaseOrderService(
	orders repository.PurchaseOrderRepository,
	suppliers repository.SupplierRepository,
	logger zerolog.Logger,
) PurchaseOrderService {
	return &purchaseOrderService{
		orders:    orders,
		suppliers: suppliers,
		now:       time.Now,
		logger:    logger.With().Str("service", "purchase_order").Logger(),
	}
}

// CreateOrder issues a purchase order. Line subtotals and the total are
// always derived from quantity and unit cost.
func (s *purchaseOrderService) CreateOrder(ctx context.Context, userID string, req *model.CreatePurchaseOrderRequest) (*model.PurchaseOrder, error) {
	issuedAt, err := s.validateOrderRequest(req)
	if err != nil {
		return nil, err
	}

	supplier, err := s.suppliers.GetByID(ctx, req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	if supplier == nil {
		return nil, model.ErrSupplierNotFound
	}

	order := &model.PurchaseOrder{
		SupplierID: req.SupplierID,
		UserID:     userID,
		IssuedAt:   issuedAt,
		State:      model.OrderIssued,
		Lines:      make([]model.PurchaseOrderLine, 0, len(req.Lines)),
	}

	total := decimal.Zero
	for _, in := range req.Lines {
		amount := model.LineAmount(in.UnitCost, in.Quantity)
		total = total.Add(amount)
		order.Lines = append(order.Lines, model.PurchaseOrderLine{
			PhoneID:  in.PhoneID,
			Quantity: in.Quantity,
			UnitCost: in.UnitCost,
			Subtotal: model.RoundMoney(amount),
		})
	}
	order.Total = model.RoundMoney(total)

	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error().Err(err).Str("supplier_id", req.SupplierID).Msg("failed to create purchase order")
		return nil, fmt.Errorf("failed to create purchase order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("supplier_id", supplier.ID).
		Int("line_count", len(order.Lines)).
		Str("total", order.Total.StringFixed(2)).
		Msg("purchase order issued")

	return order, nil
}

// Confirm receives an ISSUED order; the store credits stock for its lines.
func (s *purchaseOrderService) Confirm(ctx context.Context, orderID string) (*model.PurchaseOrder, error) {
	if err := s.checkTransition(ctx, orderID, model.OrderReceived); err != nil {
		return nil, err
	}

	order, err := s.orders.Confirm(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm purchase order: %w", err)
	}

	s.logger.Info().Str("order_id", orderID).Msg("purchase order received")
	return order, nil
}

// Cancel annuls an ISSUED order. Stock is not touched.
func (s *purchaseOrderService) Cancel(ctx context.Context, orderID string) (*model.PurchaseOrder, error) {
	if err := s.checkTransition(ctx, orderID, model.OrderAnnulled); err != nil {
		return nil, err
	}

	order, err := s.orders.Cancel(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel purchase order: %w", err)
	}

	s.logger.Info().Str("order_id", orderID).Msg("purchase order annulled")
	return order, nil
}

// ListPending returns one page of ISSUED orders.
func (s *purchaseOrderService) ListPending(ctx context.Context, req model.PageRequest) (*model.Page[model.PurchaseOrder], error) {
	req = req.Normalise(defaultPageLimit, maxPageLimit)

	page, err := s.orders.ListByState(ctx, model.OrderIssued, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending purchase orders: %w", err)
	}
	return page, nil
}

// ListRegistered fetches the RECEIVED and ANNULLED pages concurrently and
// merges them newest first. TotalPages is the larger of the two page
// counts, which is an approximation of the merged listing.
func (s *purchaseOrderService) ListRegistered(ctx context.Context, req model.PageRequest) (*model.Page[model.PurchaseOrder], error) {
	req = req.Normalise(defaultPageLimit, maxPageLimit)

	var received, annulled *model.Page[model.PurchaseOrder]
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.orders.ListByState(gctx, model.OrderReceived, req)
		received = p
		return err
	})
	g.Go(func() error {
		p, err := s.orders.ListByState(gctx, model.OrderAnnulled, req)
		annulled = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list registered purchase orders: %w", err)
	}

	merged := make([]model.PurchaseOrder, 0, len(received.Items)+len(annulled.Items))
	merged = append(merged, received.Items...)
	merged = append(merged, annulled.Items...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].IssuedAt.After(merged[j].IssuedAt)
	})
	if len(merged) > req.Limit {
		merged = merged[:req.Limit]
	}

	return &model.Page[model.PurchaseOrder]{
		Items: merged,
		Meta: model.PageMeta{
			TotalItems:   received.Meta.TotalItems + annulled.Meta.TotalItems,
			ItemCount:    len(merged),
			ItemsPerPage: req.Limit,
			TotalPages:   max(received.Meta.TotalPages, annulled.Meta.TotalPages, 1),
			CurrentPage:  req.Page,
		},
	}, nil
}

func (s *purchaseOrderService) checkTransition(ctx context.Context, orderID string, next model.PurchaseOrderState) error {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to get purchase order: %w", err)
	}
	if order == nil {
		return model.ErrOrderNotFound
	}
	if !order.State.CanTransition(next) {
		s.logger.Warn().
			Str("order_id", orderID).
			Str("state", string(order.State)).
			Str("next", string(next)).
			Msg("rejected purchase order transition")
		return model.ErrInvalidTransition
	}
	return nil
}

// validateOrderRequest checks the request and returns the issue date.
func (s *purchaseOrderService) validateOrderRequest(req *model.CreatePurchaseOrderRequest) (time.Time, error) {
	if req == nil {
		return time.Time{}, model.NewValidationError("purchase order request is required")
	}
	req.SupplierID = strings.TrimSpace(req.SupplierID)
	if req.SupplierID == "" {
		return time.Time{}, model.NewValidationError("supplier is required")
	}
	if len(req.Lines) == 0 {
		return time.Time{}, model.NewValidationError("purchase order must contain at least one line")
	}

	for i, l := range req.Lines {
		if strings.TrimSpace(l.PhoneID) == "" {
			return time.Time{}, model.NewValidationError(fmt.Sprintf("line %d: phone is required", i+1))
		}
		if l.Quantity <= 0 {
			return time.Time{}, model.NewValidationError(fmt.Sprintf("line %d: quantity must be greater than zero", i+1))
		}
		if !l.UnitCost.IsPositive() {
			return time.Time{}, model.NewValidationError(fmt.Sprintf("line %d: unit cost must be greater than zero", i+1))
		}
	}

	if req.IssueDate == "" {
		now := s.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	issuedAt, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		return time.Time{}, model.NewValidationError("issue date must be formatted as YYYY-MM-DD")
	}
	return issuedAt, nil
}
