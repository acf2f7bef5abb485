package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carbonledger/internal/domain"
	"carbonledger/internal/services/portfolio"
)

func TestPortfolioWorkbook(t *testing.T) {
	res := portfolio.Result{
		TotalEmissions: 6000,
		ByMethod: map[domain.Method]float64{
			domain.MethodSupplierSpecific: 1500,
			domain.MethodSpendBased:       4500,
		},
		BySupplier: []portfolio.SupplierLine{
			{ID: "sup-2", Name: "Estimated Co", Emissions: 4500, Method: domain.MethodSpendBased, DataQuality: domain.QualityEstimated, AnnualSpend: 10_000},
			{ID: "sup-1", Name: "Reported Co", Emissions: 1500, Method: domain.MethodSupplierSpecific, DataQuality: domain.QualitySupplierSpecific, AnnualSpend: 10_000},
		},
		DataQuality: map[domain.DataQuality]int{
			domain.QualitySupplierSpecific: 1,
			domain.QualityEstimated:        1,
		},
		Coverage:    portfolio.Coverage{SuppliersTotal: 2, SuppliersWithData: 1, SupplierCoveragePercent: 50, SpendCoveragePercent: 50},
		Methodology: domain.MethodHybrid,
	}

	book, err := PortfolioWorkbook(res, "Carbonledger SA", 2025)
	require.NoError(t, err)
	defer book.Close()

	assert.ElementsMatch(t, []string{"Summary", "Suppliers"}, book.GetSheetList())

	org, err := book.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Carbonledger SA", org)

	total, err := book.GetCellValue("Summary", "B5")
	require.NoError(t, err)
	assert.Equal(t, "6000", total)

	name, err := book.GetCellValue("Suppliers", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Estimated Co", name)

	method, err := book.GetCellValue("Suppliers", "C3")
	require.NoError(t, err)
	assert.Equal(t, "supplier_specific", method)
}
