package domain

import "time"

// DataSource tags where an emission record's figures came from.
type DataSource string

const (
	SourceEstimated        DataSource = "estimated"
	SourceSupplierReported DataSource = "supplier_reported"
	SourceVerified         DataSource = "verified"
	SourceThirdParty       DataSource = "third_party"
)

// Methodology describes how the supplier computed its figures.
type Methodology struct {
	CalculationApproach string   `json:"calculation_approach,omitempty"`
	DataSources         []string `json:"data_sources,omitempty"`
	Assumptions         string   `json:"assumptions,omitempty"`
}

// EmissionRecord is one supplier's reported emissions for one year, unique
// per (supplier, year). EmissionIntensity is derived, never submitted.
type EmissionRecord struct {
	ID                   string
	SupplierID           string
	OrganizationID       string
	InvitationID         *string
	Year                 int
	Scope1Total          *float64
	Scope1Breakdown      map[string]float64
	Scope2Location       *float64
	Scope2Market         *float64
	Scope2Breakdown      map[string]float64
	Scope3Total          *float64
	Scope3Breakdown      map[string]float64
	EmissionIntensity    *float64 // tCO2e per revenue unit
	Revenue              *float64
	RevenueCurrency      string
	Employees            *int
	DataSource           DataSource
	VerificationStandard *string
	VerifierName         *string
	VerificationDate     *time.Time
	UncertaintyPercent   *float64
	Methodology          *Methodology
	Notes                *string
	Warnings             map[string]string // advisory validator findings kept for review
	SubmittedAt          *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TotalScope12 is scope 1 plus scope 2, preferring market-based scope 2.
func (r EmissionRecord) TotalScope12() float64 {
	total := 0.0
	if r.Scope1Total != nil {
		total += *r.Scope1Total
	}
	switch {
	case r.Scope2Market != nil:
		total += *r.Scope2Market
	case r.Scope2Location != nil:
		total += *r.Scope2Location
	}
	return total
}

// TotalEmissions is all reported scopes combined.
func (r EmissionRecord) TotalEmissions() float64 {
	total := r.TotalScope12()
	if r.Scope3Total != nil {
		total += *r.Scope3Total
	}
	return total
}

// CalculateIntensity derives emissions per revenue unit, nil when revenue or
// emissions are missing.
func (r EmissionRecord) CalculateIntensity() *float64 {
	if r.Revenue == nil || *r.Revenue <= 0 {
		return nil
	}
	total := r.TotalScope12()
	if total <= 0 {
		return nil
	}
	intensity := total / *r.Revenue
	return &intensity
}

// Verified reports whether the record carries third-party verification.
func (r EmissionRecord) Verified() bool {
	return r.DataSource == SourceVerified &&
		r.VerificationStandard != nil && *r.VerificationStandard != "" &&
		r.VerifierName != nil && *r.VerifierName != ""
}

// QualityScore grades the record 0-100 on source, completeness and
// verification.
func (r EmissionRecord) QualityScore() int {
	score := 0

	switch r.DataSource {
	case SourceVerified:
		score += 40
	case SourceThirdParty:
		score += 30
	case SourceSupplierReported:
		score += 20
	default:
		score += 10
	}

	if r.Scope1Total != nil {
		score += 10
	}
	if r.Scope2Market != nil || r.Scope2Location != nil {
		score += 10
	}
	if r.Scope2Market != nil && r.Scope2Location != nil {
		score += 5
	}
	if r.Revenue != nil {
		score += 10
	}
	if r.EmissionIntensity != nil {
		score += 5
	}
	if r.VerificationStandard != nil && *r.VerificationStandard != "" {
		score += 10
	}
	if r.SubmittedAt != nil {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}
