package validation

import "carbonledger/internal/domain"

// Payload is a supplier emissions submission. Every field is optional; the
// validator decides what is missing or out of range.
type Payload struct {
	Scope1Total          *float64           `json:"scope1_total,omitempty"`
	Scope1Breakdown      map[string]float64 `json:"scope1_breakdown,omitempty"`
	Scope2Location       *float64           `json:"scope2_location,omitempty"`
	Scope2Market         *float64           `json:"scope2_market,omitempty"`
	Scope2Breakdown      map[string]float64 `json:"scope2_breakdown,omitempty"`
	Scope3Total          *float64           `json:"scope3_total,omitempty"`
	Scope3Breakdown      map[string]float64 `json:"scope3_breakdown,omitempty"`
	Revenue              *float64           `json:"revenue,omitempty"`
	RevenueCurrency      string             `json:"revenue_currency,omitempty"`
	Employees            *int               `json:"employees,omitempty"`
	VerificationStandard *string            `json:"verification_standard,omitempty"`
	VerifierName         *string            `json:"verifier_name,omitempty"`
	VerificationDate     *string            `json:"verification_date,omitempty"` // YYYY-MM-DD
	UncertaintyPercent   *float64           `json:"uncertainty_percent,omitempty"`
	Methodology          *domain.Methodology `json:"methodology,omitempty"`
	Notes                *string            `json:"notes,omitempty"`
}

// Fields a payload can carry, by wire name.
const (
	FieldScope1Total          = "scope1_total"
	FieldScope1Breakdown      = "scope1_breakdown"
	FieldScope2Location       = "scope2_location"
	FieldScope2Market         = "scope2_market"
	FieldScope2Breakdown      = "scope2_breakdown"
	FieldScope3Total          = "scope3_total"
	FieldScope3Breakdown      = "scope3_breakdown"
	FieldRevenue              = "revenue"
	FieldRevenueCurrency      = "revenue_currency"
	FieldEmployees            = "employees"
	FieldVerificationStandard = "verification_standard"
	FieldVerifierName         = "verifier_name"
	FieldVerificationDate     = "verification_date"
	FieldUncertaintyPercent   = "uncertainty_percent"
	FieldMethodology          = "methodology"
	FieldNotes                = "notes"
)

// Has reports whether the payload carries a value for the named field.
func (p Payload) Has(field string) bool {
	switch field {
	case FieldScope1Total:
		return p.Scope1Total != nil
	case FieldScope1Breakdown:
		return len(p.Scope1Breakdown) > 0
	case FieldScope2Location:
		return p.Scope2Location != nil
	case FieldScope2Market:
		return p.Scope2Market != nil
	case FieldScope2Breakdown:
		return len(p.Scope2Breakdown) > 0
	case FieldScope3Total:
		return p.Scope3Total != nil
	case FieldScope3Breakdown:
		return len(p.Scope3Breakdown) > 0
	case FieldRevenue:
		return p.Revenue != nil
	case FieldRevenueCurrency:
		return p.RevenueCurrency != ""
	case FieldEmployees:
		return p.Employees != nil
	case FieldVerificationStandard:
		return p.VerificationStandard != nil && *p.VerificationStandard != ""
	case FieldVerifierName:
		return p.VerifierName != nil && *p.VerifierName != ""
	case FieldVerificationDate:
		return p.VerificationDate != nil && *p.VerificationDate != ""
	case FieldUncertaintyPercent:
		return p.UncertaintyPercent != nil
	case FieldMethodology:
		return p.Methodology != nil
	case FieldNotes:
		return p.Notes != nil && *p.Notes != ""
	}
	return false
}

// numeric returns the payload's value for a range-checked field.
func (p Payload) numeric(field string) (float64, bool) {
	switch field {
	case FieldScope1Total:
		if p.Scope1Total != nil {
			return *p.Scope1Total, true
		}
	case FieldScope2Location:
		if p.Scope2Location != nil {
			return *p.Scope2Location, true
		}
	case FieldScope2Market:
		if p.Scope2Market != nil {
			return *p.Scope2Market, true
		}
	case FieldScope3Total:
		if p.Scope3Total != nil {
			return *p.Scope3Total, true
		}
	case FieldRevenue:
		if p.Revenue != nil {
			return *p.Revenue, true
		}
	case FieldEmployees:
		if p.Employees != nil {
			return float64(*p.Employees), true
		}
	}
	return 0, false
}

// scope2Reported prefers market-based over location-based scope 2.
func (p Payload) scope2Reported() float64 {
	if p.Scope2Market != nil {
		return *p.Scope2Market
	}
	if p.Scope2Location != nil {
		return *p.Scope2Location
	}
	return 0
}
