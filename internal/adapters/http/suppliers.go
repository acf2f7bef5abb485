package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"carbonledger/internal/services/invitations"
)

func (s *Server) createSupplier(w http.ResponseWriter, r *http.Request) {
	org := orgID(r)
	if !require(w, org, "organization") {
		return
	}
	var in invitations.SupplierInput
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if in.Name == "" {
		badRequest(w, "name is required")
		return
	}
	supplier, err := s.invitations.CreateSupplier(r.Context(), org, in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, supplier)
}

func (s *Server) listSuppliers(w http.ResponseWriter, r *http.Request) {
	org := orgID(r)
	if !require(w, org, "organization") {
		return
	}
	suppliers, err := s.invitations.ListSuppliers(r.Context(), org)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suppliers": suppliers, "count": len(suppliers)})
}

func (s *Server) updateSupplier(w http.ResponseWriter, r *http.Request) {
	var in invitations.SupplierInput
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	supplier, err := s.invitations.UpdateSupplier(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, supplier)
}

func (s *Server) removeSupplier(w http.ResponseWriter, r *http.Request) {
	if err := s.invitations.RemoveSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) suppliersSummary(w http.ResponseWriter, r *http.Request) {
	org := orgID(r)
	if !require(w, org, "organization") {
		return
	}
	year := yearParam(r, "year")
	if year == 0 {
		badRequest(w, "year is required")
		return
	}
	summary, err := s.invitations.SuppliersSummary(r.Context(), org, year)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
