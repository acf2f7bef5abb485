package invitations

import (
	"context"
	"math"

	"carbonledger/internal/domain"
)

// Stats counts an organization's invitations for one year. Pending lumps
// pending and sent together: both are "waiting on the supplier".
type Stats struct {
	Total        int     `json:"total"`
	Pending      int     `json:"pending"`
	Opened       int     `json:"opened"`
	Completed    int     `json:"completed"`
	Expired      int     `json:"expired"`
	ResponseRate float64 `json:"response_rate"`
}

// Statistics tallies invitation statuses and the completion rate.
func (s *Service) Statistics(ctx context.Context, orgID string, year int) (Stats, error) {
	invs, err := s.store.ListInvitations(ctx, orgID, year)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Total: len(invs)}
	for _, inv := range invs {
		switch inv.Status {
		case domain.InvitationPending, domain.InvitationSent:
			stats.Pending++
		case domain.InvitationOpened:
			stats.Opened++
		case domain.InvitationCompleted:
			stats.Completed++
		case domain.InvitationExpired:
			stats.Expired++
		}
	}
	if stats.Total > 0 {
		stats.ResponseRate = math.Round(float64(stats.Completed)/float64(stats.Total)*1000) / 10
	}
	return stats, nil
}

// SuppliersSummary describes the supplier base and its data coverage.
type SuppliersSummary struct {
	TotalSuppliers   int                           `json:"total_suppliers"`
	WithData         int                           `json:"with_data"`
	WithoutData      int                           `json:"without_data"`
	DataCoverage     float64                       `json:"data_coverage"`
	TotalAnnualSpend float64                       `json:"total_annual_spend"`
	ByStatus         map[domain.SupplierStatus]int `json:"by_status"`
	ByDataQuality    map[domain.DataQuality]int    `json:"by_data_quality"`
}

// SuppliersSummary counts suppliers by status and quality and reports how
// many have an emission record for the year.
func (s *Service) SuppliersSummary(ctx context.Context, orgID string, year int) (SuppliersSummary, error) {
	suppliers, err := s.store.ListSuppliers(ctx, orgID)
	if err != nil {
		return SuppliersSummary{}, err
	}

	summary := SuppliersSummary{
		TotalSuppliers: len(suppliers),
		ByStatus: map[domain.SupplierStatus]int{
			domain.SupplierPending:  0,
			domain.SupplierInvited:  0,
			domain.SupplierActive:   0,
			domain.SupplierInactive: 0,
		},
		ByDataQuality: map[domain.DataQuality]int{
			domain.QualityNone:             0,
			domain.QualityEstimated:        0,
			domain.QualitySupplierSpecific: 0,
			domain.QualityVerified:         0,
		},
	}

	for _, supplier := range suppliers {
		summary.TotalAnnualSpend += supplier.Spend()
		summary.ByStatus[supplier.Status]++
		summary.ByDataQuality[supplier.DataQuality]++

		_, found, err := s.store.GetEmissionForYear(ctx, supplier.ID, year)
		if err != nil {
			return SuppliersSummary{}, err
		}
		if found {
			summary.WithData++
		}
	}

	summary.WithoutData = summary.TotalSuppliers - summary.WithData
	if summary.TotalSuppliers > 0 {
		summary.DataCoverage = math.Round(float64(summary.WithData)/float64(summary.TotalSuppliers)*1000) / 10
	}
	return summary, nil
}
