package httpadapter

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"carbonledger/internal/domain"
	"carbonledger/internal/export"
)

func (s *Server) portfolioScope(w http.ResponseWriter, r *http.Request) (string, int, bool) {
	org := orgID(r)
	if !require(w, org, "organization") {
		return "", 0, false
	}
	year := yearParam(r, "year")
	if year == 0 {
		badRequest(w, "year is required")
		return "", 0, false
	}
	return org, year, true
}

func methodParam(r *http.Request) domain.Method {
	switch r.URL.Query().Get("method") {
	case string(domain.MethodSpendBased):
		return domain.MethodSpendBased
	case string(domain.MethodSupplierSpecific):
		return domain.MethodSupplierSpecific
	default:
		return domain.MethodHybrid
	}
}

func (s *Server) portfolioTotals(w http.ResponseWriter, r *http.Request) {
	org, year, ok := s.portfolioScope(w, r)
	if !ok {
		return
	}
	res, err := s.aggregator.CalculatePortfolio(r.Context(), org, year, methodParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) portfolioSectors(w http.ResponseWriter, r *http.Request) {
	org, year, ok := s.portfolioScope(w, r)
	if !ok {
		return
	}
	rollups, err := s.aggregator.AggregateBySector(r.Context(), org, year)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sectors": rollups})
}

func (s *Server) topEmitters(w http.ResponseWriter, r *http.Request) {
	org, year, ok := s.portfolioScope(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	emitters, err := s.aggregator.TopEmitters(r.Context(), org, year, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"top_emitters": emitters})
}

func (s *Server) opportunities(w http.ResponseWriter, r *http.Request) {
	org, year, ok := s.portfolioScope(w, r)
	if !ok {
		return
	}
	opps, err := s.aggregator.ImprovementOpportunities(r.Context(), org, year)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opps)
}

func (s *Server) compareYears(w http.ResponseWriter, r *http.Request) {
	org := orgID(r)
	if !require(w, org, "organization") {
		return
	}
	year1 := yearParam(r, "year1")
	year2 := yearParam(r, "year2")
	if year1 == 0 || year2 == 0 {
		badRequest(w, "year1 and year2 are required")
		return
	}
	cmp, err := s.aggregator.CompareYears(r.Context(), org, year1, year2)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) exportPortfolio(w http.ResponseWriter, r *http.Request) {
	org, year, ok := s.portfolioScope(w, r)
	if !ok {
		return
	}
	res, err := s.aggregator.CalculatePortfolio(r.Context(), org, year, methodParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}

	orgName := org
	if info, err := s.directory.GetOrganization(r.Context(), org); err == nil && info.Name != "" {
		orgName = info.Name
	}

	book, err := export.PortfolioWorkbook(res, orgName, year)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=portfolio-%d.xlsx", year))
	if err := book.Write(w); err != nil {
		s.log.Error("workbook write failed", zap.Error(err))
	}
}
