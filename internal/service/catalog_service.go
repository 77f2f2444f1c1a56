package service

import (
	"context"
	"fmt"

	"phonestore/internal/model"
	"phonestore/internal/repository"

	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	phones repository.PhoneRepository
	kardex repository.KardexRepository
	logger zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(phones repository.PhoneRepository, kardex repository.KardexRepository, logger zerolog.Logger) CatalogService {
	return &catalogService{
		phones: phones,
		kardex: kardex,
		logger: logger.With().Str("service", "catalog").Logger(),
	}
}

// List retrieves a page of phones.
func (s *catalogService) List(ctx context.Context, req model.PageRequest) (*model.Page[model.Phone], error) {
	req = req.Normalise(defaultPageLimit, maxPageLimit)

	page, err := s.phones.List(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Int("page", req.Page).Msg("failed to list phones")
		return nil, fmt.Errorf("failed to list phones: %w", err)
	}
	return page, nil
}

// Get retrieves a single phone.
func (s *catalogService) Get(ctx context.Context, id string) (*model.Phone, error) {
	phone, err := s.phones.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get phone: %w", err)
	}
	if phone == nil {
		return nil, model.ErrPhoneNotFound
	}
	return phone, nil
}

// Kardex retrieves the stock movements of a phone.
func (s *catalogService) Kardex(ctx context.Context, phoneID string, req model.PageRequest) (*model.Page[model.StockMovement], error) {
	if _, err := s.Get(ctx, phoneID); err != nil {
		return nil, err
	}

	req = req.Normalise(defaultPageLimit*2, maxPageLimit)
	page, err := s.kardex.ListByPhone(ctx, phoneID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	return page, nil
}
