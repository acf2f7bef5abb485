package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }
func s(v string) *string   { return &v }

func requested(fields ...string) []string { return fields }

func TestValidateRequiresAtLeastOneScopeField(t *testing.T) {
	v := New(DefaultThresholds())

	res := v.Validate(Payload{}, requested(FieldScope1Total, FieldScope2Location, FieldRevenue))
	assert.False(t, res.Valid)
	assert.Contains(t, res.Errors, FieldScope1Total)
	assert.Contains(t, res.Errors, FieldScope2Location)
	// revenue is never a blocking requirement
	assert.NotContains(t, res.Errors, FieldRevenue)
}

func TestValidateAcceptsMinimalSubmission(t *testing.T) {
	v := New(DefaultThresholds())

	res := v.Validate(Payload{Scope1Total: f(1200)}, requested(FieldScope1Total))
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateOneScopeFieldSatisfiesTheRequirement(t *testing.T) {
	v := New(DefaultThresholds())

	// all three scope fields requested, only market-based provided
	res := v.Validate(Payload{Scope2Market: f(250)},
		requested(FieldScope1Total, FieldScope2Location, FieldScope2Market))
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateRangeBounds(t *testing.T) {
	v := New(DefaultThresholds())

	tests := []struct {
		name    string
		payload Payload
		field   string
	}{
		{"negative scope1", Payload{Scope1Total: f(-5)}, FieldScope1Total},
		{"scope1 above max", Payload{Scope1Total: f(2e9)}, FieldScope1Total},
		{"scope3 above max", Payload{Scope1Total: f(10), Scope3Total: f(2e10)}, FieldScope3Total},
		{"revenue above max", Payload{Scope1Total: f(10), Revenue: f(2e12)}, FieldRevenue},
		{"zero employees", Payload{Scope1Total: f(10), Employees: i(0)}, FieldEmployees},
		{"too many employees", Payload{Scope1Total: f(10), Employees: i(20_000_000)}, FieldEmployees},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := v.Validate(tc.payload, requested(FieldScope1Total))
			assert.False(t, res.Valid)
			assert.Contains(t, res.Errors, tc.field)
		})
	}
}

func TestValidateBreakdownMismatchWarns(t *testing.T) {
	v := New(DefaultThresholds())

	// breakdown sums to 1200 against a total of 1000, a 20% deviation
	res := v.Validate(Payload{
		Scope1Total:     f(1000),
		Scope1Breakdown: map[string]float64{"stationary": 700, "mobile": 500},
	}, requested(FieldScope1Total))

	require.True(t, res.Valid, "a mismatched breakdown is advisory, not blocking")
	assert.Contains(t, res.Warnings, FieldScope1Breakdown)
}

func TestValidateBreakdownWithinToleranceIsClean(t *testing.T) {
	v := New(DefaultThresholds())

	// 1040 vs 1000 is 4%, inside the 5% tolerance
	res := v.Validate(Payload{
		Scope1Total:     f(1000),
		Scope1Breakdown: map[string]float64{"stationary": 640, "mobile": 400},
	}, requested(FieldScope1Total))

	assert.True(t, res.Valid)
	assert.NotContains(t, res.Warnings, FieldScope1Breakdown)
}

func TestValidateScope2BreakdownUsesMarketFigure(t *testing.T) {
	v := New(DefaultThresholds())

	res := v.Validate(Payload{
		Scope2Location:  f(900),
		Scope2Market:    f(500),
		Scope2Breakdown: map[string]float64{"electricity": 500},
	}, requested(FieldScope2Location))

	assert.NotContains(t, res.Warnings, FieldScope2Breakdown)
}

func TestValidateMarketFarAboveLocationWarns(t *testing.T) {
	v := New(DefaultThresholds())

	res := v.Validate(Payload{
		Scope2Location: f(100),
		Scope2Market:   f(200),
	}, requested(FieldScope2Location))

	assert.Contains(t, res.Warnings, FieldScope2Market)

	res = v.Validate(Payload{
		Scope2Location: f(100),
		Scope2Market:   f(140),
	}, requested(FieldScope2Location))

	assert.NotContains(t, res.Warnings, FieldScope2Market)
}

func TestValidateRevenuePerEmployee(t *testing.T) {
	v := New(DefaultThresholds())

	res := v.Validate(Payload{
		Scope1Total: f(10),
		Revenue:     f(50_000),
		Employees:   i(100), // 500 per head
	}, requested(FieldScope1Total))
	assert.Contains(t, res.Warnings, FieldRevenue)

	res = v.Validate(Payload{
		Scope1Total: f(10),
		Revenue:     f(500_000_000),
		Employees:   i(10), // 50M per head
	}, requested(FieldScope1Total))
	assert.Contains(t, res.Warnings, FieldRevenue)

	res = v.Validate(Payload{
		Scope1Total: f(10),
		Revenue:     f(10_000_000),
		Employees:   i(100), // 100k per head
	}, requested(FieldScope1Total))
	assert.NotContains(t, res.Warnings, FieldRevenue)
}

func TestValidateIntensityHeuristics(t *testing.T) {
	v := New(DefaultThresholds())

	// 5000 tCO2e on 1000 revenue is an intensity of 5
	res := v.Validate(Payload{
		Scope1Total: f(5000),
		Revenue:     f(1000),
	}, requested(FieldScope1Total))
	assert.Contains(t, res.Warnings, "intensity")

	// 1 tCO2e on 1e9 revenue is an intensity of 1e-9
	res = v.Validate(Payload{
		Scope1Total: f(1),
		Revenue:     f(1_000_000_000),
	}, requested(FieldScope1Total))
	assert.Contains(t, res.Warnings, "intensity")
}

func TestValidateScopeCompletenessHints(t *testing.T) {
	v := New(DefaultThresholds())

	res := v.Validate(Payload{Revenue: f(1000)}, nil)
	assert.Contains(t, res.Warnings, "completeness")

	res = v.Validate(Payload{Scope2Location: f(100)}, nil)
	assert.Contains(t, res.Warnings, "scope1")
	assert.NotContains(t, res.Warnings, "scope2")

	res = v.Validate(Payload{Scope1Total: f(100)}, nil)
	assert.Contains(t, res.Warnings, "scope2")
}

func TestValidateVerificationStandardWithoutVerifier(t *testing.T) {
	v := New(DefaultThresholds())

	res := v.Validate(Payload{
		Scope1Total:          f(100),
		VerificationStandard: s("ISO 14064-3"),
	}, requested(FieldScope1Total))
	assert.Contains(t, res.Warnings, "verification")

	res = v.Validate(Payload{
		Scope1Total:          f(100),
		VerificationStandard: s("ISO 14064-3"),
		VerifierName:         s("Bureau Veritas"),
	}, requested(FieldScope1Total))
	assert.NotContains(t, res.Warnings, "verification")
}

func TestCompletenessScore(t *testing.T) {
	v := New(DefaultThresholds())

	fields := requested(FieldScope1Total, FieldScope2Location, FieldScope3Total, FieldRevenue)

	assert.Equal(t, 0, v.CompletenessScore(Payload{}, fields))
	assert.Equal(t, 50, v.CompletenessScore(Payload{
		Scope1Total:    f(100),
		Scope2Location: f(50),
	}, fields))
	assert.Equal(t, 100, v.CompletenessScore(Payload{
		Scope1Total:    f(100),
		Scope2Location: f(50),
		Scope3Total:    f(800),
		Revenue:        f(1_000_000),
	}, fields))

	// a third of three fields rounds to 33
	assert.Equal(t, 33, v.CompletenessScore(Payload{Scope1Total: f(1)},
		requested(FieldScope1Total, FieldScope2Location, FieldScope3Total)))

	assert.Equal(t, 0, v.CompletenessScore(Payload{Scope1Total: f(1)}, nil))
}

func TestSummary(t *testing.T) {
	v := New(DefaultThresholds())

	sum := v.Summary(Payload{
		Scope1Total:          f(100),
		Scope2Location:       f(80),
		Scope2Market:         f(60),
		Scope3Total:          f(500),
		Revenue:              f(1_000_000),
		VerificationStandard: s("ISAE 3410"),
		Scope1Breakdown:      map[string]float64{"mobile": 100},
	})

	assert.Equal(t, 100.0, sum.Scope1Total)
	assert.Equal(t, 60.0, sum.Scope2Total, "market-based wins when both scope 2 figures exist")
	assert.Equal(t, 660.0, sum.TotalEmissions)
	require.NotNil(t, sum.EmissionIntensity)
	assert.InDelta(t, 0.00016, *sum.EmissionIntensity, 1e-9)
	assert.True(t, sum.HasVerification)
	assert.True(t, sum.HasBreakdown)
}
