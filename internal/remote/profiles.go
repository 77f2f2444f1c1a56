package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"phonestore/internal/model"
)

// profileScanLimit is the page size used when scanning profiles by owner.
const profileScanLimit = 100

type profileRepository struct {
	c *Client
}

// FindByOwner scans the profile listing page by page, since the backend has
// no lookup by user account.
func (r *profileRepository) FindByOwner(ctx context.Context, userID string) (*model.CustomerProfile, error) {
	for page := 1; ; page++ {
		var res pageDTO[profileDTO]
		if err := r.c.get(ctx, "/perfilClientes", pageQuery(page, profileScanLimit), &res); err != nil {
			return nil, fmt.Errorf("failed to list profiles: %w", err)
		}

		for _, d := range res.Items {
			if string(d.UserID) == userID {
				p := d.toModel()
				return &p, nil
			}
		}

		if len(res.Items) == 0 || page >= int(res.Meta.TotalPages) {
			return nil, nil
		}
	}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*model.CustomerProfile, error) {
	var d profileDTO
	if err := r.c.get(ctx, "/perfilClientes/"+url.PathEscape(id), nil, &d); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	p := d.toModel()
	return &p, nil
}

type profileWrite struct {
	UserID     string `json:"id_usuario,omitempty"`
	NationalID string `json:"cedula"`
	Phone      string `json:"telefono"`
	Address    string `json:"direccion"`
}

func (r *profileRepository) Create(ctx context.Context, p *model.CustomerProfile) error {
	body := profileWrite{UserID: p.OwnerUserID, NationalID: p.NationalID, Phone: p.Phone, Address: p.Address}

	var d profileDTO
	if err := r.c.do(ctx, http.MethodPost, "/perfilClientes", nil, body, &d); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	p.ID = string(d.ID)
	return nil
}

func (r *profileRepository) Update(ctx context.Context, p *model.CustomerProfile) error {
	body := profileWrite{NationalID: p.NationalID, Phone: p.Phone, Address: p.Address}

	if err := r.c.do(ctx, http.MethodPut, "/perfilClientes/"+url.PathEscape(p.ID), nil, body, nil); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

type supplierRepository struct {
	c *Client
}

// GetByID reads a supplier. This endpoint answers without an envelope.
func (r *supplierRepository) GetByID(ctx context.Context, id string) (*model.Supplier, error) {
	var d supplierDTO
	if err := r.c.get(ctx, "/proveedores/"+url.PathEscape(id), nil, &d); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}
	if d.ID == "" {
		return nil, nil
	}
	s := d.toModel()
	return &s, nil
}
