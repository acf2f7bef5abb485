// Package export renders portfolio results as downloadable workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"carbonledger/internal/services/portfolio"
)

// PortfolioWorkbook builds an XLSX report with a summary sheet and the
// per-supplier detail, highest emitters first.
func PortfolioWorkbook(res portfolio.Result, orgName string, year int) (*excelize.File, error) {
	f := excelize.NewFile()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}

	rows := [][]any{
		{"Organization", orgName},
		{"Reporting year", year},
		{"Methodology", string(res.Methodology)},
		{},
		{"Total emissions (tCO2e)", res.TotalEmissions},
		{"Supplier-specific (tCO2e)", res.ByMethod["supplier_specific"]},
		{"Spend-based (tCO2e)", res.ByMethod["spend_based"]},
		{},
		{"Suppliers total", res.Coverage.SuppliersTotal},
		{"Suppliers with data", res.Coverage.SuppliersWithData},
		{"Supplier coverage (%)", res.Coverage.SupplierCoveragePercent},
		{"Spend coverage (%)", res.Coverage.SpendCoveragePercent},
		{},
		{"Verified", res.DataQuality["verified"]},
		{"Supplier specific", res.DataQuality["supplier_specific"]},
		{"Estimated", res.DataQuality["estimated"]},
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, err
		}
	}

	const detail = "Suppliers"
	if _, err := f.NewSheet(detail); err != nil {
		return nil, err
	}
	header := []any{"Supplier", "Emissions (tCO2e)", "Method", "Data quality", "Annual spend"}
	if err := f.SetSheetRow(detail, "A1", &header); err != nil {
		return nil, err
	}
	for i, line := range res.BySupplier {
		row := []any{line.Name, line.Emissions, string(line.Method), string(line.DataQuality), line.AnnualSpend}
		if err := f.SetSheetRow(detail, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	return f, nil
}
