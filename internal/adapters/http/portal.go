package httpadapter

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"carbonledger/internal/domain"
	"carbonledger/internal/services/validation"
)

// portalView is the invitation as the supplier's contact sees it. The raw
// token and internal identifiers stay out of the response body.
type portalView struct {
	SupplierName    string     `json:"supplier_name"`
	Year            int        `json:"year"`
	Status          string     `json:"status"`
	RequestedFields []string   `json:"requested_fields"`
	ExpiresAt       time.Time  `json:"expires_at"`
	Expired         bool       `json:"expired"`
	Message         *string    `json:"message,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

func (s *Server) portalViewOf(r *http.Request, inv domain.Invitation) portalView {
	view := portalView{
		Year:            inv.Year,
		Status:          string(inv.Status),
		RequestedFields: inv.RequestedFields,
		ExpiresAt:       inv.ExpiresAt,
		Expired:         inv.Expired(time.Now()),
		Message:         inv.Message,
		CompletedAt:     inv.CompletedAt,
	}
	if supplier, err := s.invitations.GetSupplier(r.Context(), inv.SupplierID); err == nil {
		view.SupplierName = supplier.Name
	}
	return view
}

// portalShow resolves the token and records the first open.
func (s *Server) portalShow(w http.ResponseWriter, r *http.Request) {
	inv, err := s.invitations.AccessPortal(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.portalViewOf(r, inv))
}

// portalStatus is a read-only peek that never mutates the invitation.
func (s *Server) portalStatus(w http.ResponseWriter, r *http.Request) {
	inv, err := s.invitations.FindByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.portalViewOf(r, inv))
}

// portalTemplate returns the submission form shape: one descriptor per
// requested field so the portal frontend can render without hardcoding.
func (s *Server) portalTemplate(w http.ResponseWriter, r *http.Request) {
	inv, err := s.invitations.FindByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	fields := make([]map[string]any, 0, len(inv.RequestedFields))
	for _, name := range inv.RequestedFields {
		fields = append(fields, fieldDescriptor(name))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"year":   inv.Year,
		"fields": fields,
	})
}

func fieldDescriptor(name string) map[string]any {
	desc := map[string]any{"name": name, "type": "number", "unit": "tCO2e"}
	switch name {
	case validation.FieldRevenue:
		desc["unit"] = "currency"
	case validation.FieldUncertaintyPercent:
		desc["unit"] = "percent"
	case validation.FieldEmployees:
		desc["type"] = "integer"
		delete(desc, "unit")
	case validation.FieldScope1Breakdown, validation.FieldScope2Breakdown,
		validation.FieldScope3Breakdown, validation.FieldMethodology:
		desc["type"] = "object"
		delete(desc, "unit")
	case validation.FieldVerificationStandard, validation.FieldVerifierName,
		validation.FieldRevenueCurrency, validation.FieldNotes:
		desc["type"] = "string"
		delete(desc, "unit")
	case validation.FieldVerificationDate:
		desc["type"] = "date"
		delete(desc, "unit")
	}
	return desc
}

func (s *Server) portalSubmit(w http.ResponseWriter, r *http.Request) {
	var payload validation.Payload
	if err := decode(r, &payload); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	record, result, err := s.invitations.Submit(r.Context(), chi.URLParam(r, "token"), payload)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors":   result.Errors,
			"warnings": result.Warnings,
		})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"record":        record,
		"warnings":      result.Warnings,
		"summary":       s.invitations.ValidationSummary(payload),
		"quality_score": record.QualityScore(),
	})
}

type extendRequest struct {
	Days int `json:"days"`
}

func (s *Server) portalExtend(w http.ResponseWriter, r *http.Request) {
	var req extendRequest
	// an empty body means "use the default extension"
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid JSON body")
		return
	}
	inv, err := s.invitations.Extend(r.Context(), chi.URLParam(r, "token"), req.Days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.portalViewOf(r, inv))
}
