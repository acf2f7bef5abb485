package portfolio

import (
	"context"
	"sort"

	"carbonledger/internal/domain"
)

// SectorRollup aggregates one sector's suppliers.
type SectorRollup struct {
	Sector            string  `json:"sector"`
	SupplierCount     int     `json:"supplier_count"`
	TotalEmissions    float64 `json:"total_emissions"`
	TotalSpend        float64 `json:"total_spend"`
	WithSpecificData  int     `json:"with_specific_data"`
	DataCoverage      float64 `json:"data_coverage"`
	EmissionIntensity float64 `json:"emission_intensity"`
}

// AggregateBySector groups per-supplier results by sector ("unknown" when
// absent), sorted descending by total emissions.
func (a *Aggregator) AggregateBySector(ctx context.Context, orgID string, year int) ([]SectorRollup, error) {
	suppliers, err := a.suppliers.ListSuppliers(ctx, orgID)
	if err != nil {
		return nil, err
	}

	bySector := map[string]*SectorRollup{}
	order := []string{}
	degraded := false

	for _, s := range suppliers {
		sector := s.SectorOrUnknown()
		line := a.lineFor(ctx, s, year, domain.MethodHybrid, &degraded)

		rollup, ok := bySector[sector]
		if !ok {
			rollup = &SectorRollup{Sector: sector}
			bySector[sector] = rollup
			order = append(order, sector)
		}
		rollup.SupplierCount++
		rollup.TotalEmissions += line.Emissions
		rollup.TotalSpend += s.Spend()
		if line.Method == domain.MethodSupplierSpecific {
			rollup.WithSpecificData++
		}
	}

	rollups := make([]SectorRollup, 0, len(order))
	for _, sector := range order {
		r := bySector[sector]
		r.DataCoverage = percent(float64(r.WithSpecificData), float64(r.SupplierCount))
		if r.TotalSpend > 0 {
			r.EmissionIntensity = r.TotalEmissions / r.TotalSpend
		}
		rollups = append(rollups, *r)
	}

	sort.SliceStable(rollups, func(i, j int) bool {
		return rollups[i].TotalEmissions > rollups[j].TotalEmissions
	})
	return rollups, nil
}

const defaultTopEmitters = 10

// TopEmitter is one supplier ranked by emissions.
type TopEmitter struct {
	SupplierLine
	EmissionShare float64 `json:"emission_share"`
}

// TopEmitters returns the limit highest-emitting suppliers with their share
// of the portfolio total. A non-positive limit means 10.
func (a *Aggregator) TopEmitters(ctx context.Context, orgID string, year int, limit int) ([]TopEmitter, error) {
	if limit <= 0 {
		limit = defaultTopEmitters
	}

	res, err := a.CalculatePortfolio(ctx, orgID, year, domain.MethodHybrid)
	if err != nil {
		return nil, err
	}

	top := make([]TopEmitter, 0, limit)
	for _, line := range res.BySupplier {
		if len(top) == limit {
			break
		}
		share := 0.0
		if res.TotalEmissions > 0 {
			share = round1(line.Emissions / res.TotalEmissions * 100)
		}
		top = append(top, TopEmitter{SupplierLine: line, EmissionShare: share})
	}
	return top, nil
}

// Opportunity thresholds.
const (
	highSpendThreshold    = 100_000
	highEmissionSharePct  = 5.0
	upgradeEmissionsShare = 3.0
	opportunityListMax    = 10
)

// Opportunity is one supplier worth engaging for better data.
type Opportunity struct {
	SupplierID     string             `json:"supplier_id"`
	SupplierName   string             `json:"supplier_name"`
	AnnualSpend    float64            `json:"annual_spend,omitempty"`
	Emissions      float64            `json:"emissions"`
	EmissionShare  float64            `json:"emission_share"`
	CurrentQuality domain.DataQuality `json:"current_quality,omitempty"`
}

// Opportunities buckets suppliers where data-collection effort pays off most.
// Each list holds at most ten entries in spend-descending order.
type Opportunities struct {
	HighSpendNoData        []Opportunity `json:"high_spend_no_data"`
	HighEmissionsEstimated []Opportunity `json:"high_emissions_estimated"`
	DataQualityUpgrade     []Opportunity `json:"data_quality_upgrade"`
}

// ImprovementOpportunities computes each supplier's share of total emissions
// and buckets candidates: big spend on estimates, big emitters on estimates,
// and supplier-reported figures worth upgrading to verified.
func (a *Aggregator) ImprovementOpportunities(ctx context.Context, orgID string, year int) (Opportunities, error) {
	suppliers, err := a.suppliers.ListSuppliers(ctx, orgID)
	if err != nil {
		return Opportunities{}, err
	}

	// Highest spend first, as staff will work the list top down.
	sort.SliceStable(suppliers, func(i, j int) bool {
		return suppliers[i].Spend() > suppliers[j].Spend()
	})

	type item struct {
		supplier domain.Supplier
		line     SupplierLine
	}
	items := make([]item, 0, len(suppliers))
	total := 0.0
	degraded := false

	for _, s := range suppliers {
		line := a.lineFor(ctx, s, year, domain.MethodHybrid, &degraded)
		total += line.Emissions
		items = append(items, item{supplier: s, line: line})
	}

	opps := Opportunities{
		HighSpendNoData:        []Opportunity{},
		HighEmissionsEstimated: []Opportunity{},
		DataQualityUpgrade:     []Opportunity{},
	}

	for _, it := range items {
		share := 0.0
		if total > 0 {
			share = round1(it.line.Emissions / total * 100)
		}

		if it.supplier.Spend() > highSpendThreshold && it.line.Method == domain.MethodSpendBased {
			opps.HighSpendNoData = capAppend(opps.HighSpendNoData, Opportunity{
				SupplierID:    it.supplier.ID,
				SupplierName:  it.supplier.Name,
				AnnualSpend:   it.supplier.Spend(),
				Emissions:     it.line.Emissions,
				EmissionShare: share,
			})
		}

		if share > highEmissionSharePct && it.line.DataQuality == domain.QualityEstimated {
			opps.HighEmissionsEstimated = capAppend(opps.HighEmissionsEstimated, Opportunity{
				SupplierID:    it.supplier.ID,
				SupplierName:  it.supplier.Name,
				Emissions:     it.line.Emissions,
				EmissionShare: share,
			})
		}

		if it.line.DataQuality == domain.QualitySupplierSpecific && share > upgradeEmissionsShare {
			opps.DataQualityUpgrade = capAppend(opps.DataQualityUpgrade, Opportunity{
				SupplierID:     it.supplier.ID,
				SupplierName:   it.supplier.Name,
				Emissions:      it.line.Emissions,
				EmissionShare:  share,
				CurrentQuality: it.line.DataQuality,
			})
		}
	}

	return opps, nil
}

func capAppend(list []Opportunity, o Opportunity) []Opportunity {
	if len(list) >= opportunityListMax {
		return list
	}
	return append(list, o)
}

// YearSnapshot is one side of a year-over-year comparison.
type YearSnapshot struct {
	Year           int      `json:"year"`
	TotalEmissions float64  `json:"total_emissions"`
	Coverage       Coverage `json:"coverage"`
}

// Comparison is the year-over-year delta in emissions and coverage.
type Comparison struct {
	Year1               YearSnapshot `json:"year1"`
	Year2               YearSnapshot `json:"year2"`
	ChangeAbsolute      float64      `json:"change_absolute"`
	ChangePercent       float64      `json:"change_percent"`
	CoverageImprovement float64      `json:"coverage_improvement"`
}

// CompareYears runs the portfolio for both years and reports the deltas.
func (a *Aggregator) CompareYears(ctx context.Context, orgID string, year1, year2 int) (Comparison, error) {
	res1, err := a.CalculatePortfolio(ctx, orgID, year1, domain.MethodHybrid)
	if err != nil {
		return Comparison{}, err
	}
	res2, err := a.CalculatePortfolio(ctx, orgID, year2, domain.MethodHybrid)
	if err != nil {
		return Comparison{}, err
	}

	change := 0.0
	if res1.TotalEmissions > 0 {
		change = round1((res2.TotalEmissions - res1.TotalEmissions) / res1.TotalEmissions * 100)
	}

	return Comparison{
		Year1:               YearSnapshot{Year: year1, TotalEmissions: res1.TotalEmissions, Coverage: res1.Coverage},
		Year2:               YearSnapshot{Year: year2, TotalEmissions: res2.TotalEmissions, Coverage: res2.Coverage},
		ChangeAbsolute:      res2.TotalEmissions - res1.TotalEmissions,
		ChangePercent:       change,
		CoverageImprovement: res2.Coverage.SupplierCoveragePercent - res1.Coverage.SupplierCoveragePercent,
	}, nil
}
