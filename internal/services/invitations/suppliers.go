package invitations

import (
	"context"

	"github.com/google/uuid"

	"carbonledger/internal/domain"
)

// SupplierInput is the staff-facing supplier create/update payload.
type SupplierInput struct {
	Name         string   `json:"name"`
	Email        *string  `json:"email,omitempty"`
	ContactName  *string  `json:"contact_name,omitempty"`
	ContactEmail *string  `json:"contact_email,omitempty"`
	Phone        *string  `json:"phone,omitempty"`
	Country      string   `json:"country,omitempty"`
	BusinessID   *string  `json:"business_id,omitempty"`
	Sector       *string  `json:"sector,omitempty"`
	Address      *string  `json:"address,omitempty"`
	City         *string  `json:"city,omitempty"`
	PostalCode   *string  `json:"postal_code,omitempty"`
	Categories   []string `json:"categories,omitempty"`
	AnnualSpend  *float64 `json:"annual_spend,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

// CreateSupplier registers a vendor for the organization. New suppliers start
// pending with no data quality.
func (s *Service) CreateSupplier(ctx context.Context, orgID string, in SupplierInput) (domain.Supplier, error) {
	now := s.now()

	country := in.Country
	if country == "" {
		country = "FR"
	}
	currency := in.Currency
	if currency == "" {
		currency = "EUR"
	}

	contactEmail := in.ContactEmail
	if contactEmail == nil {
		contactEmail = in.Email
	}

	supplier := domain.Supplier{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           in.Name,
		Email:          in.Email,
		ContactName:    in.ContactName,
		ContactEmail:   contactEmail,
		Phone:          in.Phone,
		Country:        country,
		BusinessID:     in.BusinessID,
		Sector:         in.Sector,
		Address:        in.Address,
		City:           in.City,
		PostalCode:     in.PostalCode,
		Categories:     in.Categories,
		AnnualSpend:    in.AnnualSpend,
		Currency:       currency,
		Status:         domain.SupplierPending,
		DataQuality:    domain.QualityNone,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return s.store.CreateSupplier(ctx, supplier)
}

// UpdateSupplier applies the non-empty input fields to an existing supplier.
func (s *Service) UpdateSupplier(ctx context.Context, id string, in SupplierInput) (domain.Supplier, error) {
	supplier, err := s.store.GetSupplier(ctx, id)
	if err != nil {
		return domain.Supplier{}, err
	}

	if in.Name != "" {
		supplier.Name = in.Name
	}
	if in.Email != nil {
		supplier.Email = in.Email
	}
	if in.ContactName != nil {
		supplier.ContactName = in.ContactName
	}
	if in.ContactEmail != nil {
		supplier.ContactEmail = in.ContactEmail
	}
	if in.Phone != nil {
		supplier.Phone = in.Phone
	}
	if in.Country != "" {
		supplier.Country = in.Country
	}
	if in.BusinessID != nil {
		supplier.BusinessID = in.BusinessID
	}
	if in.Sector != nil {
		supplier.Sector = in.Sector
	}
	if in.Address != nil {
		supplier.Address = in.Address
	}
	if in.City != nil {
		supplier.City = in.City
	}
	if in.PostalCode != nil {
		supplier.PostalCode = in.PostalCode
	}
	if in.Categories != nil {
		supplier.Categories = in.Categories
	}
	if in.AnnualSpend != nil {
		supplier.AnnualSpend = in.AnnualSpend
	}
	if in.Currency != "" {
		supplier.Currency = in.Currency
	}
	if in.Notes != nil {
		supplier.Notes = in.Notes
	}
	supplier.UpdatedAt = s.now()

	return s.store.UpdateSupplier(ctx, supplier)
}

// ListSuppliers returns the organization's suppliers.
func (s *Service) ListSuppliers(ctx context.Context, orgID string) ([]domain.Supplier, error) {
	return s.store.ListSuppliers(ctx, orgID)
}

// GetSupplier fetches one supplier.
func (s *Service) GetSupplier(ctx context.Context, id string) (domain.Supplier, error) {
	return s.store.GetSupplier(ctx, id)
}

// RemoveSupplier soft-deletes a supplier; rows are never hard-deleted.
func (s *Service) RemoveSupplier(ctx context.Context, id string) error {
	return s.store.SoftDeleteSupplier(ctx, id)
}
