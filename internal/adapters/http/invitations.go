package httpadapter

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"carbonledger/internal/services/invitations"
)

type inviteRequest struct {
	Year            int      `json:"year"`
	InvitedBy       string   `json:"invited_by"`
	Email           string   `json:"email,omitempty"`
	RequestedFields []string `json:"requested_fields,omitempty"`
	ExpiresAt       *string  `json:"expires_at,omitempty"`
	Message         string   `json:"message,omitempty"`
	SkipSend        bool     `json:"skip_send,omitempty"`
}

func (req inviteRequest) options() (invitations.InviteOptions, error) {
	opts := invitations.InviteOptions{
		Email:           req.Email,
		RequestedFields: req.RequestedFields,
		Message:         req.Message,
		SkipSend:        req.SkipSend,
	}
	if req.ExpiresAt != nil {
		at, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			return opts, err
		}
		opts.ExpiresAt = &at
	}
	return opts, nil
}

func (s *Server) invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Year == 0 {
		badRequest(w, "year is required")
		return
	}
	opts, err := req.options()
	if err != nil {
		badRequest(w, "expires_at must be RFC 3339")
		return
	}
	inv, err := s.invitations.Invite(r.Context(), chi.URLParam(r, "id"), req.InvitedBy, req.Year, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

type bulkInviteRequest struct {
	SupplierIDs []string `json:"supplier_ids"`
	Year        int      `json:"year"`
	InvitedBy   string   `json:"invited_by"`
	Message     string   `json:"message,omitempty"`
	SkipSend    bool     `json:"skip_send,omitempty"`
}

func (s *Server) bulkInvite(w http.ResponseWriter, r *http.Request) {
	org := orgID(r)
	if !require(w, org, "organization") {
		return
	}
	var req bulkInviteRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Year == 0 {
		badRequest(w, "year is required")
		return
	}
	if len(req.SupplierIDs) == 0 {
		badRequest(w, "supplier_ids is required")
		return
	}
	opts := invitations.InviteOptions{Message: req.Message, SkipSend: req.SkipSend}
	results := s.invitations.BulkInvite(r.Context(), org, req.SupplierIDs, req.InvitedBy, req.Year, opts)

	sent := 0
	for _, res := range results {
		if res.Error == "" {
			sent++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"invited": sent,
		"failed":  len(results) - sent,
	})
}

func (s *Server) sendInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := s.invitations.Send(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) remindInvitation(w http.ResponseWriter, r *http.Request) {
	inv, err := s.invitations.SendReminder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) invitationStats(w http.ResponseWriter, r *http.Request) {
	org := orgID(r)
	if !require(w, org, "organization") {
		return
	}
	year := yearParam(r, "year")
	if year == 0 {
		badRequest(w, "year is required")
		return
	}
	stats, err := s.invitations.Statistics(r.Context(), org, year)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
