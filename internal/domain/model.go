package domain

import "time"

// Core domain models. Repositories return these as value snapshots; state
// changes go through explicit command operations that return the new snapshot.

type SupplierStatus string

const (
	SupplierPending  SupplierStatus = "pending"
	SupplierInvited  SupplierStatus = "invited"
	SupplierActive   SupplierStatus = "active"
	SupplierInactive SupplierStatus = "inactive"
)

// DataQuality ranks how trustworthy a supplier's emissions figure is.
type DataQuality string

const (
	QualityNone             DataQuality = "none"
	QualityEstimated        DataQuality = "estimated"
	QualitySupplierSpecific DataQuality = "supplier_specific"
	QualityVerified         DataQuality = "verified"
)

// Method is the allocation method used for a supplier's footprint.
// Hybrid and AverageData exist in the data model; the selector only ever
// resolves to SupplierSpecific or SpendBased.
type Method string

const (
	MethodSpendBased       Method = "spend_based"
	MethodSupplierSpecific Method = "supplier_specific"
	MethodHybrid           Method = "hybrid"
	MethodAverageData      Method = "average_data"
)

type Supplier struct {
	ID             string
	OrganizationID string
	Name           string
	Email          *string
	ContactName    *string
	ContactEmail   *string
	Phone          *string
	Country        string  // ISO 3166-1 alpha-2
	BusinessID     *string // SIRET, VAT number, etc.
	Sector         *string // NACE section letter
	Address        *string
	City           *string
	PostalCode     *string
	Categories     []string
	AnnualSpend    *float64
	Currency       string
	Status         SupplierStatus
	DataQuality    DataQuality
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// ContactAddress is where invitations go, preferring the named contact.
func (s Supplier) ContactAddress() string {
	if s.ContactEmail != nil && *s.ContactEmail != "" {
		return *s.ContactEmail
	}
	if s.Email != nil && *s.Email != "" {
		return *s.Email
	}
	return ""
}

// Spend returns the annual spend, zero when unknown.
func (s Supplier) Spend() float64 {
	if s.AnnualSpend == nil {
		return 0
	}
	return *s.AnnualSpend
}

// SectorOrUnknown is the sector used for rollups.
func (s Supplier) SectorOrUnknown() string {
	if s.Sector == nil || *s.Sector == "" {
		return "unknown"
	}
	return *s.Sector
}
