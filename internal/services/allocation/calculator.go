// Package allocation converts one supplier's data into an emissions figure
// for Scope 3 Category 1, choosing between supplier-specific and spend-based
// calculation.
package allocation

import (
	"context"

	"carbonledger/internal/domain"
	"carbonledger/internal/ports"
)

// Result is the outcome of one per-supplier calculation.
type Result struct {
	Emissions   float64            `json:"emissions"`
	Method      domain.Method      `json:"method"`
	DataQuality domain.DataQuality `json:"data_quality"`
	RecordID    *string            `json:"record_id,omitempty"`
}

type Calculator struct {
	emissions ports.EmissionRepository
	factors   ports.IntensityLookup
}

func New(emissions ports.EmissionRepository, factors ports.IntensityLookup) *Calculator {
	return &Calculator{emissions: emissions, factors: factors}
}

// CalculateForSupplier picks the calculation method for one supplier and
// year. Supplier-specific data wins when the stored record has a valid
// allocation basis; otherwise the spend-based estimate applies. The preferred
// method is advisory only: hybrid and average-data resolve to the same two
// observed behaviors.
func (c *Calculator) CalculateForSupplier(ctx context.Context, s domain.Supplier, year int, preferred domain.Method) (Result, error) {
	rec, found, err := c.emissions.GetEmissionForYear(ctx, s.ID, year)
	if err != nil {
		return Result{}, err
	}

	if found && hasAllocationBasis(rec) {
		return Result{
			Emissions:   c.supplierSpecific(s, rec),
			Method:      domain.MethodSupplierSpecific,
			DataQuality: recordQuality(rec),
			RecordID:    &rec.ID,
		}, nil
	}

	return Result{
		Emissions:   c.spendBased(s),
		Method:      domain.MethodSpendBased,
		DataQuality: domain.QualityEstimated,
	}, nil
}

// hasAllocationBasis requires reported scope 1 or 2 figures plus something to
// allocate them by (a precomputed intensity or revenue).
func hasAllocationBasis(rec domain.EmissionRecord) bool {
	hasEmissions := (rec.Scope1Total != nil && *rec.Scope1Total > 0) ||
		(rec.Scope2Market != nil && *rec.Scope2Market > 0) ||
		(rec.Scope2Location != nil && *rec.Scope2Location > 0)

	hasBasis := rec.EmissionIntensity != nil ||
		(rec.Revenue != nil && *rec.Revenue > 0)

	return hasEmissions && hasBasis
}

// supplierSpecific allocates the supplier's own footprint by our share of its
// revenue. Zero spend means zero allocation, whatever the record says.
func (c *Calculator) supplierSpecific(s domain.Supplier, rec domain.EmissionRecord) float64 {
	spend := s.Spend()
	if spend <= 0 {
		return 0
	}

	if rec.EmissionIntensity != nil && *rec.EmissionIntensity > 0 {
		return spend * *rec.EmissionIntensity
	}

	if rec.Revenue != nil && *rec.Revenue > 0 {
		return spend * (rec.TotalScope12() / *rec.Revenue)
	}

	return c.spendBased(s)
}

// spendBased estimates from annual spend and the sector's published factor.
func (c *Calculator) spendBased(s domain.Supplier) float64 {
	spend := s.Spend()
	if spend <= 0 {
		return 0
	}
	sector := ""
	if s.Sector != nil {
		sector = *s.Sector
	}
	return spend * c.factors.DefaultIntensity(sector)
}

func recordQuality(rec domain.EmissionRecord) domain.DataQuality {
	if rec.Verified() {
		return domain.QualityVerified
	}
	if rec.DataSource == domain.SourceSupplierReported {
		return domain.QualitySupplierSpecific
	}
	return domain.QualityEstimated
}
