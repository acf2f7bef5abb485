// Package portfolio composes per-supplier allocation results into
// organization-level Scope 3 Category 1 metrics. It is a pure read-side
// composition: source records are never mutated here.
package portfolio

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"carbonledger/internal/domain"
	"carbonledger/internal/ports"
	"carbonledger/internal/services/allocation"
)

// SupplierLine is one supplier's contribution to the portfolio.
type SupplierLine struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Emissions   float64            `json:"emissions"`
	Method      domain.Method      `json:"method"`
	DataQuality domain.DataQuality `json:"data_quality"`
	AnnualSpend float64            `json:"annual_spend"`
}

// Coverage tracks how much of the portfolio rests on supplier-specific data.
type Coverage struct {
	SuppliersWithData       int     `json:"suppliers_with_data"`
	SuppliersTotal          int     `json:"suppliers_total"`
	SpendWithData           float64 `json:"spend_with_data"`
	SpendTotal              float64 `json:"spend_total"`
	SupplierCoveragePercent float64 `json:"supplier_coverage_percent"`
	SpendCoveragePercent    float64 `json:"spend_coverage_percent"`
}

// Result is a full portfolio calculation for one organization and year.
type Result struct {
	TotalEmissions float64                    `json:"total_emissions"`
	ByMethod       map[domain.Method]float64  `json:"by_method"`
	BySupplier     []SupplierLine             `json:"by_supplier"`
	DataQuality    map[domain.DataQuality]int `json:"data_quality"`
	Coverage       Coverage                   `json:"coverage"`
	Methodology    domain.Method              `json:"methodology"`

	// Degraded is set when one or more per-supplier calculations failed;
	// those suppliers contribute zero and the caller should alert.
	Degraded bool `json:"degraded,omitempty"`
}

// ResultCache memoizes portfolio calculations. Source records are never
// mutated by the aggregator, so staleness is bounded by the cache TTL alone.
type ResultCache interface {
	Get(ctx context.Context, orgID string, year int, method domain.Method) (Result, bool)
	Set(ctx context.Context, orgID string, year int, method domain.Method, res Result)
}

type Aggregator struct {
	suppliers ports.SupplierRepository
	calc      *allocation.Calculator
	cache     ResultCache
	log       *zap.Logger
}

func New(suppliers ports.SupplierRepository, calc *allocation.Calculator, log *zap.Logger) *Aggregator {
	return &Aggregator{suppliers: suppliers, calc: calc, log: log}
}

// WithCache enables read-side caching of CalculatePortfolio results.
func (a *Aggregator) WithCache(c ResultCache) *Aggregator {
	a.cache = c
	return a
}

// CalculatePortfolio iterates the organization's suppliers and accumulates
// totals, method split, quality distribution and coverage. A per-supplier
// fault never aborts the pass: it is logged, counted as zero and flagged.
func (a *Aggregator) CalculatePortfolio(ctx context.Context, orgID string, year int, method domain.Method) (Result, error) {
	if a.cache != nil {
		if res, ok := a.cache.Get(ctx, orgID, year, method); ok {
			return res, nil
		}
	}

	suppliers, err := a.suppliers.ListSuppliers(ctx, orgID)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		ByMethod: map[domain.Method]float64{
			domain.MethodSupplierSpecific: 0,
			domain.MethodSpendBased:       0,
		},
		BySupplier: make([]SupplierLine, 0, len(suppliers)),
		DataQuality: map[domain.DataQuality]int{
			domain.QualityVerified:         0,
			domain.QualitySupplierSpecific: 0,
			domain.QualityEstimated:        0,
		},
		Coverage:    Coverage{SuppliersTotal: len(suppliers)},
		Methodology: method,
	}

	for _, s := range suppliers {
		line := a.lineFor(ctx, s, year, method, &res.Degraded)

		res.TotalEmissions += line.Emissions
		res.ByMethod[line.Method] += line.Emissions
		res.BySupplier = append(res.BySupplier, line)
		res.DataQuality[line.DataQuality]++

		res.Coverage.SpendTotal += s.Spend()
		if line.Method == domain.MethodSupplierSpecific {
			res.Coverage.SuppliersWithData++
			res.Coverage.SpendWithData += s.Spend()
		}
	}

	res.Coverage.SupplierCoveragePercent = percent(float64(res.Coverage.SuppliersWithData), float64(res.Coverage.SuppliersTotal))
	res.Coverage.SpendCoveragePercent = percent(res.Coverage.SpendWithData, res.Coverage.SpendTotal)

	sort.SliceStable(res.BySupplier, func(i, j int) bool {
		return res.BySupplier[i].Emissions > res.BySupplier[j].Emissions
	})

	// A degraded pass counted faulted suppliers as zero. Caching it would
	// serve the undercount for the full TTL, so only clean results go in.
	if a.cache != nil && !res.Degraded {
		a.cache.Set(ctx, orgID, year, method, res)
	}
	return res, nil
}

// lineFor runs one allocation, degrading to a zero contribution on fault.
func (a *Aggregator) lineFor(ctx context.Context, s domain.Supplier, year int, method domain.Method, degraded *bool) SupplierLine {
	result, err := a.calc.CalculateForSupplier(ctx, s, year, method)
	if err != nil {
		a.log.Error("supplier allocation failed, counting zero",
			zap.String("supplier_id", s.ID),
			zap.Int("year", year),
			zap.Error(err))
		*degraded = true
		result = allocation.Result{
			Method:      domain.MethodSpendBased,
			DataQuality: domain.QualityEstimated,
		}
	}
	return SupplierLine{
		ID:          s.ID,
		Name:        s.Name,
		Emissions:   result.Emissions,
		Method:      result.Method,
		DataQuality: result.DataQuality,
		AnnualSpend: s.Spend(),
	}
}

// percent is num/den as a percentage rounded to one decimal, 0 on empty
// denominators.
func percent(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return round1(num / den * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
