// Package validation checks untrusted supplier emission submissions.
// Business-rule violations are values, never errors: blocking findings land
// in Result.Errors, advisory ones in Result.Warnings.
package validation

import (
	"fmt"
	"math"
)

// Thresholds are the tunable validation bounds. All figures in tCO2e unless
// noted.
type Thresholds struct {
	ScopeMax           float64 // scope1_total, scope2_location, scope2_market
	Scope3Max          float64
	RevenueMax         float64
	EmployeesMin       int
	EmployeesMax       int
	BreakdownTolerance float64 // relative deviation allowed between a breakdown sum and its total
	MarketOverLocation float64 // market-based above location-based by this ratio draws a warning
	RevenuePerHeadMin  float64
	RevenuePerHeadMax  float64
	IntensityHigh      float64 // tCO2e per revenue unit
	IntensityLow       float64
}

// DefaultThresholds returns the published bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ScopeMax:           1_000_000_000,
		Scope3Max:          10_000_000_000,
		RevenueMax:         1_000_000_000_000,
		EmployeesMin:       1,
		EmployeesMax:       10_000_000,
		BreakdownTolerance: 0.05,
		MarketOverLocation: 1.5,
		RevenuePerHeadMin:  10_000,
		RevenuePerHeadMax:  10_000_000,
		IntensityHigh:      1,
		IntensityLow:       0.00001,
	}
}

// Result is the outcome of validating one submission.
type Result struct {
	Valid    bool              `json:"valid"`
	Errors   map[string]string `json:"errors"`
	Warnings map[string]string `json:"warnings"`
}

type Validator struct {
	t Thresholds
}

func New(t Thresholds) *Validator { return &Validator{t: t} }

// requiredFields are the submission minimum: at least one must be present.
var requiredFields = map[string]string{
	FieldScope1Total:    "Scope 1 emissions",
	FieldScope2Location: "Scope 2 (location-based) emissions",
	FieldScope2Market:   "Scope 2 (market-based) emissions",
}

type rangeRule struct {
	field string
	min   float64
	max   float64
}

func (v *Validator) rangeRules() []rangeRule {
	return []rangeRule{
		{FieldScope1Total, 0, v.t.ScopeMax},
		{FieldScope2Location, 0, v.t.ScopeMax},
		{FieldScope2Market, 0, v.t.ScopeMax},
		{FieldScope3Total, 0, v.t.Scope3Max},
		{FieldRevenue, 0, v.t.RevenueMax},
		{FieldEmployees, float64(v.t.EmployeesMin), float64(v.t.EmployeesMax)},
	}
}

// Validate checks required fields, numeric ranges, cross-field consistency
// and data-quality heuristics for one submission.
func (v *Validator) Validate(p Payload, requested []string) Result {
	errors := map[string]string{}
	warnings := map[string]string{}

	// At least one scope figure must be present; when none is, every
	// requested scope field is flagged.
	if !p.Has(FieldScope1Total) && !p.Has(FieldScope2Location) && !p.Has(FieldScope2Market) {
		for _, field := range requested {
			if label, required := requiredFields[field]; required {
				errors[field] = fmt.Sprintf("%s is required.", label)
			}
		}
	}

	for _, rule := range v.rangeRules() {
		value, ok := p.numeric(rule.field)
		if !ok {
			continue
		}
		if value < rule.min {
			errors[rule.field] = fmt.Sprintf("Value must be at least %g", rule.min)
		}
		if value > rule.max {
			errors[rule.field] = fmt.Sprintf("Value exceeds maximum allowed (%g)", rule.max)
		}
	}

	v.checkCrossFields(p, warnings)
	v.checkDataQuality(p, warnings)

	return Result{Valid: len(errors) == 0, Errors: errors, Warnings: warnings}
}

func (v *Validator) checkCrossFields(p Payload, warnings map[string]string) {
	// Breakdown maps should sum to their totals within tolerance.
	if p.Scope1Total != nil && len(p.Scope1Breakdown) > 0 {
		sum := sumValues(p.Scope1Breakdown)
		total := *p.Scope1Total
		if sum > 0 && math.Abs(sum-total)/math.Max(total, 1) > v.t.BreakdownTolerance {
			warnings[FieldScope1Breakdown] = fmt.Sprintf("Scope 1 breakdown (%g) doesn't match total (%g).", sum, total)
		}
	}

	scope2 := p.scope2Reported()
	if scope2 > 0 && len(p.Scope2Breakdown) > 0 {
		sum := sumValues(p.Scope2Breakdown)
		if sum > 0 && math.Abs(sum-scope2)/math.Max(scope2, 1) > v.t.BreakdownTolerance {
			warnings[FieldScope2Breakdown] = fmt.Sprintf("Scope 2 breakdown (%g) doesn't match total (%g).", sum, scope2)
		}
	}

	// Market-based far above location-based hints at an unverified green
	// energy over-claim.
	if p.Scope2Location != nil && p.Scope2Market != nil {
		if *p.Scope2Market > *p.Scope2Location*v.t.MarketOverLocation {
			warnings[FieldScope2Market] = "Market-based emissions are significantly higher than location-based. Please verify."
		}
	}

	if p.Revenue != nil && p.Employees != nil && *p.Employees > 0 {
		perHead := *p.Revenue / float64(*p.Employees)
		if perHead < v.t.RevenuePerHeadMin {
			warnings[FieldRevenue] = "Revenue per employee seems very low. Please verify figures."
		}
		if perHead > v.t.RevenuePerHeadMax {
			warnings[FieldRevenue] = "Revenue per employee seems very high. Please verify figures."
		}
	}
}

func (v *Validator) checkDataQuality(p Payload, warnings map[string]string) {
	if p.Revenue != nil && *p.Revenue > 0 {
		total := p.scope2Reported()
		if p.Scope1Total != nil {
			total += *p.Scope1Total
		}
		if total > 0 {
			intensity := total / *p.Revenue
			if intensity > v.t.IntensityHigh {
				warnings["intensity"] = "Emission intensity is very high. Please verify emission and revenue figures."
			}
			if intensity < v.t.IntensityLow {
				warnings["intensity"] = "Emission intensity is very low. Please verify emission and revenue figures."
			}
		}
	}

	hasScope1 := p.Scope1Total != nil
	hasScope2 := p.Scope2Location != nil || p.Scope2Market != nil
	switch {
	case !hasScope1 && !hasScope2:
		warnings["completeness"] = "No emission data provided. At least Scope 1 or Scope 2 data is recommended."
	case !hasScope1:
		warnings["scope1"] = "Consider providing Scope 1 data for a complete emission profile."
	case !hasScope2:
		warnings["scope2"] = "Consider providing Scope 2 data for a complete emission profile."
	}

	if p.Has(FieldVerificationStandard) && !p.Has(FieldVerifierName) {
		warnings["verification"] = "Verification standard provided but verifier name is missing."
	}
}

// CompletenessScore is the share of requested fields the payload fills,
// 0-100 rounded.
func (v *Validator) CompletenessScore(p Payload, requested []string) int {
	if len(requested) == 0 {
		return 0
	}
	filled := 0
	for _, field := range requested {
		if p.Has(field) {
			filled++
		}
	}
	return int(math.Round(float64(filled) / float64(len(requested)) * 100))
}

// Summary condenses a payload for downstream reporting.
type Summary struct {
	Scope1Total       float64  `json:"scope1_total"`
	Scope2Total       float64  `json:"scope2_total"`
	Scope3Total       float64  `json:"scope3_total"`
	TotalEmissions    float64  `json:"total_emissions"`
	EmissionIntensity *float64 `json:"emission_intensity"`
	HasVerification   bool     `json:"has_verification"`
	HasBreakdown      bool     `json:"has_breakdown"`
}

func (v *Validator) Summary(p Payload) Summary {
	scope1 := 0.0
	if p.Scope1Total != nil {
		scope1 = *p.Scope1Total
	}
	scope2 := p.scope2Reported()
	scope3 := 0.0
	if p.Scope3Total != nil {
		scope3 = *p.Scope3Total
	}

	var intensity *float64
	if p.Revenue != nil && *p.Revenue > 0 {
		i := (scope1 + scope2) / *p.Revenue
		intensity = &i
	}

	return Summary{
		Scope1Total:       scope1,
		Scope2Total:       scope2,
		Scope3Total:       scope3,
		TotalEmissions:    scope1 + scope2 + scope3,
		EmissionIntensity: intensity,
		HasVerification:   p.Has(FieldVerificationStandard),
		HasBreakdown:      len(p.Scope1Breakdown) > 0 || len(p.Scope2Breakdown) > 0,
	}
}

func sumValues(m map[string]float64) float64 {
	sum := 0.0
	for _, v := range m {
		sum += v
	}
	return sum
}
