package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"phonestore/internal/model"
	"phonestore/internal/repository"
	"phonestore/internal/saga"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Page sizes of the views refreshed after a checkout.
const (
	reloadCatalogLimit  = 12
	reloadInvoicesLimit = 10
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	store    *repository.Store
	runner   *saga.Runner
	taxRate  decimal.Decimal
	now      func() time.Time
	inFlight sync.Map
	logger   zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(store *repository.Store, runner *saga.Runner, taxRate decimal.Decimal, logger zerolog.Logger) CheckoutService {
	return &checkoutService{
		store:   store,
		runner:  runner,
		taxRate: taxRate,
		now:     time.Now,
		logger:  logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout invoices the caller's open cart, debits stock and closes the cart.
func (s *checkoutService) Checkout(ctx context.Context, userID, paymentMethod string) (*model.CheckoutResult, error) {
	method, err := model.ParsePaymentMethod(paymentMethod)
	if err != nil {
		return nil, err
	}

	profile, err := requireProfile(ctx, s.store.Profiles, userID)
	if err != nil {
		return nil, err
	}

	cart, err := findOpenCart(ctx, s.store.Carts, profile.ID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, model.ErrNoOpenCart
	}

	if _, busy := s.inFlight.LoadOrStore(cart.ID, struct{}{}); busy {
		return nil, model.ErrCheckoutInProgress
	}
	defer s.inFlight.Delete(cart.ID)

	lines, err := s.store.CartLines.ListByCart(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, model.ErrCartEmpty
	}

	totals := model.ComputeTotals(lines, s.taxRate)
	issuedAt := s.now()
	invoice := &model.Invoice{
		Number:            model.InvoiceNumber(issuedAt),
		IssuedAt:          issuedAt,
		CustomerProfileID: profile.ID,
		UserID:            userID,
		PaymentMethod:     method,
		Subtotal:          totals.Subtotal,
		Tax:               totals.Tax,
		Total:             totals.Total,
	}
	invoiceLines := make([]model.InvoiceLine, len(lines))

	sagaID := uuid.NewString()
	log := s.logger.With().Str("saga_id", sagaID).Str("cart_id", cart.ID).Logger()
	log.Info().Int("lines", len(lines)).Str("total", totals.Total.StringFixed(2)).Msg("checkout started")

	steps := s.steps(cart, lines, invoice, invoiceLines)
	if err := s.runner.Run(ctx, sagaID, steps); err != nil {
		pErr := &model.PartialCheckoutError{SagaID: sagaID, Err: err}
		if sErr, ok := saga.AsError(err); ok {
			pErr.FailedStep = sErr.Step
			pErr.Compensated = sErr.Compensated
			pErr.Err = sErr.Err
		}
		log.Error().Err(pErr.Err).Str("step", pErr.FailedStep).Bool("compensated", pErr.Compensated).Msg("checkout failed")
		return nil, pErr
	}

	log.Info().Str("invoice_id", invoice.ID).Str("invoice_number", invoice.Number).Msg("checkout completed")

	return &model.CheckoutResult{
		Invoice: *invoice,
		Lines:   invoiceLines,
		View:    s.reload(ctx, profile),
	}, nil
}

// steps builds the checkout saga. Later steps read the IDs assigned by
// earlier ones through the shared invoice and invoiceLines.
func (s *checkoutService) steps(cart *model.Cart, lines []model.CartLine, invoice *model.Invoice, invoiceLines []model.InvoiceLine) []saga.Step {
	steps := []saga.Step{{
		Name: "create_invoice",
		Do: func(ctx context.Context) error {
			return s.store.Invoices.Create(ctx, invoice)
		},
		Undo: func(ctx context.Context) error {
			return s.store.Invoices.Delete(ctx, invoice.ID)
		},
	}}

	for i, line := range lines {
		var debited *model.StockMovement

		steps = append(steps,
			saga.Step{
				Name: "create_invoice_line:" + line.PhoneID,
				Do: func(ctx context.Context) error {
					invoiceLines[i] = model.InvoiceLine{
						InvoiceID: invoice.ID,
						PhoneID:   line.PhoneID,
						Quantity:  line.Quantity,
						UnitPrice: line.UnitPrice,
						Subtotal:  line.Subtotal(),
					}
					return s.store.Invoices.CreateLine(ctx, &invoiceLines[i])
				},
				Undo: func(ctx context.Context) error {
					return s.store.Invoices.DeleteLine(ctx, invoiceLines[i].ID)
				},
			},
			saga.Step{
				Name: "debit_stock:" + line.PhoneID,
				Do: func(ctx context.Context) error {
					m, err := s.store.Phones.AdjustStock(ctx, model.StockAdjustment{
						PhoneID:    line.PhoneID,
						Delta:      -line.Quantity,
						Origin:     model.OriginSale,
						DocumentID: invoice.ID,
						UnitCost:   line.UnitPrice,
					})
					if err != nil {
						return err
					}
					debited = m
					return nil
				},
				// Only the stock actually removed is credited back.
				Undo: func(ctx context.Context) error {
					if debited == nil || debited.Applied() == 0 {
						return nil
					}
					_, err := s.store.Phones.AdjustStock(ctx, model.StockAdjustment{
						PhoneID:    line.PhoneID,
						Delta:      -debited.Applied(),
						Origin:     model.OriginSaleReversal,
						DocumentID: invoice.ID,
						UnitCost:   line.UnitPrice,
					})
					return err
				},
			},
		)
	}

	for _, line := range lines {
		steps = append(steps, saga.Step{
			Name: "remove_cart_line:" + line.ID,
			Do: func(ctx context.Context) error {
				return s.store.CartLines.Delete(ctx, line.ID)
			},
			Undo: func(ctx context.Context) error {
				restored := line
				restored.ID = ""
				return s.store.CartLines.Create(ctx, &restored)
			},
		})
	}

	steps = append(steps, saga.Step{
		Name: "close_cart",
		Do: func(ctx context.Context) error {
			return s.store.Carts.UpdateState(ctx, cart.ID, model.CartPurchased)
		},
		Undo: func(ctx context.Context) error {
			return s.store.Carts.UpdateState(ctx, cart.ID, model.CartOpen)
		},
	})

	return steps
}

// reload refreshes the caller's views after a checkout. Failures are logged
// and leave the affected part of the view empty.
func (s *checkoutService) reload(ctx context.Context, profile *model.CustomerProfile) *model.AccountView {
	view := &model.AccountView{Profile: profile}

	var g errgroup.Group
	g.Go(func() error {
		cart, err := findOpenCart(ctx, s.store.Carts, profile.ID)
		if err != nil || cart == nil {
			return err
		}
		cv, err := buildCartView(ctx, s.store, cart, s.taxRate)
		if err != nil {
			return err
		}
		view.Cart = cv
		return nil
	})
	g.Go(func() error {
		page, err := s.store.Phones.List(ctx, model.PageRequest{Page: 1, Limit: reloadCatalogLimit})
		if err != nil {
			return fmt.Errorf("failed to reload catalogue: %w", err)
		}
		view.Catalog = page
		return nil
	})
	g.Go(func() error {
		page, err := s.store.Invoices.ListByCustomer(ctx, profile.ID, model.PageRequest{Page: 1, Limit: reloadInvoicesLimit})
		if err != nil {
			return fmt.Errorf("failed to reload invoices: %w", err)
		}
		view.Invoices = page
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn().Err(err).Str("profile_id", profile.ID).Msg("failed to reload views after checkout")
	}
	return view
}
