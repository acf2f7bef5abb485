// Package factors provides published spend-based emission factors used when a
// supplier has no usable self-reported data.
package factors

// Spend-based factors by NACE section, kgCO2e per EUR of spend.
var sectorFactors = map[string]float64{
	"A": 0.85, // Agriculture
	"B": 0.95, // Mining
	"C": 0.45, // Manufacturing
	"D": 0.65, // Electricity/Gas
	"E": 0.35, // Water/Waste
	"F": 0.38, // Construction
	"G": 0.22, // Wholesale/Retail
	"H": 0.55, // Transport
	"I": 0.32, // Accommodation/Food
	"J": 0.18, // Information/Communication
	"K": 0.09, // Finance/Insurance
	"L": 0.12, // Real Estate
	"M": 0.14, // Professional Services
	"N": 0.16, // Administrative Services
	"O": 0.15, // Public Administration
	"P": 0.12, // Education
	"Q": 0.14, // Health/Social
	"R": 0.20, // Arts/Entertainment
	"S": 0.18, // Other Services
}

// defaultFactor is the cross-sector average, used for unknown sectors.
const defaultFactor = 0.28

// Table is the static sector factor lookup.
type Table struct{}

func NewTable() Table { return Table{} }

func (Table) DefaultIntensity(sector string) float64 {
	if f, ok := sectorFactors[sector]; ok {
		return f
	}
	return defaultFactor
}
