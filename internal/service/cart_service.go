package service

import (
	"context"
	"fmt"

	"phonestore/internal/model"
	"phonestore/internal/repository"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// cartService implements CartService.
type cartService struct {
	store   *repository.Store
	taxRate decimal.Decimal
	logger  zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(store *repository.Store, taxRate decimal.Decimal, logger zerolog.Logger) CartService {
	return &cartService{
		store:   store,
		taxRate: taxRate,
		logger:  logger.With().Str("service", "cart").Logger(),
	}
}

// EnsureOpenCart returns the caller's open cart, creating one when none exists.
func (s *cartService) EnsureOpenCart(ctx context.Context, userID string) (*model.Cart, error) {
	profile, err := requireProfile(ctx, s.store.Profiles, userID)
	if err != nil {
		return nil, err
	}

	cart, err := findOpenCart(ctx, s.store.Carts, profile.ID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	cart, err = s.store.Carts.Create(ctx, &model.Cart{CustomerProfileID: profile.ID, State: model.CartOpen})
	if err != nil {
		s.logger.Error().Err(err).Str("profile_id", profile.ID).Msg("failed to create cart")
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}

	s.logger.Info().Str("cart_id", cart.ID).Str("profile_id", profile.ID).Msg("cart opened")
	return cart, nil
}

// AddOrIncrement adds a phone to the open cart or raises an existing line.
func (s *cartService) AddOrIncrement(ctx context.Context, userID, phoneID string, quantity int) (*model.CartLine, error) {
	if phoneID == "" {
		return nil, model.NewValidationError("phone is required")
	}
	if quantity <= 0 {
		return nil, model.NewValidationError("quantity must be greater than zero")
	}

	phone, err := s.store.Phones.GetByID(ctx, phoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to get phone: %w", err)
	}
	if phone == nil {
		return nil, model.ErrPhoneNotFound
	}
	if !phone.SalePrice.IsPositive() {
		return nil, model.NewValidationError("phone has no valid sale price")
	}

	cart, err := s.EnsureOpenCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines, err := s.store.CartLines.ListByCart(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}

	for _, l := range lines {
		if l.PhoneID != phoneID {
			continue
		}
		line := l
		line.Quantity += quantity
		line.UnitPrice = phone.SalePrice
		if err := s.store.CartLines.Update(ctx, &line); err != nil {
			return nil, fmt.Errorf("failed to update cart line: %w", err)
		}
		s.logger.Debug().Str("cart_id", cart.ID).Str("line_id", line.ID).Int("quantity", line.Quantity).Msg("cart line incremented")
		return &line, nil
	}

	line := &model.CartLine{
		CartID:    cart.ID,
		PhoneID:   phoneID,
		Quantity:  quantity,
		UnitPrice: phone.SalePrice,
	}
	if err := s.store.CartLines.Create(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to add cart line: %w", err)
	}

	s.logger.Debug().Str("cart_id", cart.ID).Str("line_id", line.ID).Msg("cart line added")
	return line, nil
}

// SetQuantity replaces the quantity of a line, keeping its captured price.
func (s *cartService) SetQuantity(ctx context.Context, userID, lineID string, quantity int) (*model.CartLine, error) {
	if quantity <= 0 {
		return nil, model.ErrConfirmationRequired
	}

	line, err := s.ownedLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}

	line.Quantity = quantity
	if err := s.store.CartLines.Update(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to update cart line: %w", err)
	}
	return line, nil
}

// RemoveLine deletes a line of the caller's open cart.
func (s *cartService) RemoveLine(ctx context.Context, userID, lineID string) error {
	line, err := s.ownedLine(ctx, userID, lineID)
	if err != nil {
		return err
	}

	if err := s.store.CartLines.Delete(ctx, line.ID); err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}

	s.logger.Debug().Str("cart_id", line.CartID).Str("line_id", line.ID).Msg("cart line removed")
	return nil
}

// View returns the open cart, opening one if needed.
func (s *cartService) View(ctx context.Context, userID string) (*model.CartView, error) {
	cart, err := s.EnsureOpenCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return buildCartView(ctx, s.store, cart, s.taxRate)
}

// ownedLine finds lineID among the lines of the caller's open cart.
func (s *cartService) ownedLine(ctx context.Context, userID, lineID string) (*model.CartLine, error) {
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

	lines, err := s.store.CartLines.ListByCart(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}
	for _, l := range lines {
		if l.ID == lineID {
			line := l
			return &line, nil
		}
	}
	return nil, model.ErrCartLineNotFound
}

// requireProfile returns the caller's profile or ErrProfileIncomplete.
func requireProfile(ctx context.Context, profiles repository.ProfileRepository, userID string) (*model.CustomerProfile, error) {
	profile, err := profiles.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if profile == nil {
		return nil, model.ErrProfileIncomplete
	}
	return profile, nil
}

// findOpenCart returns the newest OPEN cart of a profile, or nil.
func findOpenCart(ctx context.Context, carts repository.CartRepository, profileID string) (*model.Cart, error) {
	list, err := carts.ListByCustomer(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list carts: %w", err)
	}
	for _, c := range list {
		if c.State == model.CartOpen {
			cart := c
			return &cart, nil
		}
	}
	return nil, nil
}

// buildCartView loads the lines of cart, names them after their phones and
// computes the totals.
func buildCartView(ctx context.Context, store *repository.Store, cart *model.Cart, taxRate decimal.Decimal) (*model.CartView, error) {
	lines, err := store.CartLines.ListByCart(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart lines: %w", err)
	}

	views := make([]model.CartLineView, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, l := range lines {
		views[i] = model.CartLineView{CartLine: l, Subtotal: l.Subtotal()}
		g.Go(func() error {
			phone, err := store.Phones.GetByID(gctx, l.PhoneID)
			if err != nil {
				return fmt.Errorf("failed to get phone %s: %w", l.PhoneID, err)
			}
			if phone != nil {
				views[i].PhoneName = phone.DisplayName()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.CartView{
		Cart:    cart,
		Lines:   views,
		TaxRate: taxRate,
		Totals:  model.ComputeTotals(lines, taxRate),
	}, nil
}
