package repository

import (
	"context"
	"errors"
	"fmt"

	"phonestore/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

type profileRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProfileRepository {
	return &profileRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "profile").Logger(),
	}
}

const profileColumns = `id, owner_user_id, national_id, phone, address`

func (r *profileRepository) get(ctx context.Context, where string, arg string) (*model.CustomerProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM customer_profiles WHERE ` + where + ` = $1`

	var p model.CustomerProfile
	err := r.pool.QueryRow(ctx, query, arg).Scan(&p.ID, &p.OwnerUserID, &p.NationalID, &p.Phone, &p.Address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str(where, arg).Msg("failed to query profile")
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}
	return &p, nil
}

// FindByOwner returns the profile owned by userID.
func (r *profileRepository) FindByOwner(ctx context.Context, userID string) (*model.CustomerProfile, error) {
	return r.get(ctx, "owner_user_id", userID)
}

// GetByID returns the profile with the given ID.
func (r *profileRepository) GetByID(ctx context.Context, id string) (*model.CustomerProfile, error) {
	return r.get(ctx, "id", id)
}

// Create stores a new profile.
func (r *profileRepository) Create(ctx context.Context, p *model.CustomerProfile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO customer_profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := r.pool.Exec(ctx, query, p.ID, p.OwnerUserID, p.NationalID, p.Phone, p.Address); err != nil {
		r.logger.Error().Err(err).Str("owner_user_id", p.OwnerUserID).Msg("failed to create profile")
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Update overwrites the editable fields of a profile.
func (r *profileRepository) Update(ctx context.Context, p *model.CustomerProfile) error {
	query := `
		UPDATE customer_profiles
		SET national_id = $2, phone = $3, address = $4, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, p.ID, p.NationalID, p.Phone, p.Address)
	if err != nil {
		r.logger.Error().Err(err).Str("profile_id", p.ID).Msg("failed to update profile")
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProfileIncomplete
	}
	return nil
}

type supplierRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSupplierRepository creates a new PostgreSQL-backed supplier repository.
func NewSupplierRepository(pool *pgxpool.Pool, logger zerolog.Logger) SupplierRepository {
	return &supplierRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "supplier").Logger(),
	}
}

// GetByID returns the supplier with the given ID.
func (r *supplierRepository) GetByID(ctx context.Context, id string) (*model.Supplier, error) {
	query := `
		SELECT id, name, tax_id, phone, email, address, contact
		FROM suppliers
		WHERE id = $1`

	var s model.Supplier
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.TaxID, &s.Phone, &s.Email, &s.Address, &s.Contact)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("supplier_id", id).Msg("supplier not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("supplier_id", id).Msg("failed to query supplier")
		return nil, fmt.Errorf("failed to query supplier: %w", err)
	}
	return &s, nil
}
