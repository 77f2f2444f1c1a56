package service

import (
	"context"
	"fmt"
	"strings"

	"phonestore/internal/model"
	"phonestore/internal/repository"

	"github.com/rs/zerolog"
)

// accountService implements AccountService.
type accountService struct {
	profiles repository.ProfileRepository
	invoices repository.InvoiceRepository
	logger   zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(profiles repository.ProfileRepository, invoices repository.InvoiceRepository, logger zerolog.Logger) AccountService {
	return &accountService{
		profiles: profiles,
		invoices: invoices,
		logger:   logger.With().Str("service", "account").Logger(),
	}
}

// GetProfile returns the caller's profile or ErrProfileIncomplete.
func (s *accountService) GetProfile(ctx context.Context, userID string) (*model.CustomerProfile, error) {
	return requireProfile(ctx, s.profiles, userID)
}

// SaveProfile creates the caller's profile or updates the existing one.
func (s *accountService) SaveProfile(ctx context.Context, userID string, req *model.ProfileRequest) (*model.CustomerProfile, error) {
	if req == nil {
		return nil, model.NewValidationError("profile is required")
	}
	nationalID := strings.TrimSpace(req.NationalID)
	phone := strings.TrimSpace(req.Phone)
	address := strings.TrimSpace(req.Address)
	if nationalID == "" || phone == "" || address == "" {
		return nil, model.NewValidationError("national id, phone and address are required")
	}

	profile, err := s.profiles.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	if profile == nil {
		profile = &model.CustomerProfile{OwnerUserID: userID, NationalID: nationalID, Phone: phone, Address: address}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		s.logger.Info().Str("profile_id", profile.ID).Str("user_id", userID).Msg("profile created")
		return profile, nil
	}

	profile.NationalID = nationalID
	profile.Phone = phone
	profile.Address = address
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// Invoices returns the caller's invoices, newest first.
func (s *accountService) Invoices(ctx context.Context, userID string, req model.PageRequest) (*model.Page[model.InvoiceWithLines], error) {
	profile, err := requireProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}

	req = req.Normalise(defaultPageLimit, maxPageLimit)
	page, err := s.invoices.ListByCustomer(ctx, profile.ID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return page, nil
}
