// Package httpadapter exposes the engine over HTTP: a staff API scoped by
// organization and the public, token-bound supplier portal. Authentication
// is an outer concern; the gateway injects the organization id.
package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"carbonledger/internal/ports"
	"carbonledger/internal/services/invitations"
	"carbonledger/internal/services/portfolio"
)

type Server struct {
	invitations *invitations.Service
	aggregator  *portfolio.Aggregator
	directory   ports.Directory
	log         *zap.Logger
}

func New(inv *invitations.Service, agg *portfolio.Aggregator, dir ports.Directory, log *zap.Logger) *Server {
	return &Server{invitations: inv, aggregator: agg, directory: dir, log: log}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/suppliers", s.createSupplier)
		r.Get("/suppliers", s.listSuppliers)
		r.Get("/suppliers/summary", s.suppliersSummary)
		r.Patch("/suppliers/{id}", s.updateSupplier)
		r.Delete("/suppliers/{id}", s.removeSupplier)
		r.Post("/suppliers/{id}/invite", s.invite)

		r.Post("/invitations/bulk", s.bulkInvite)
		r.Get("/invitations/stats", s.invitationStats)
		r.Post("/invitations/{id}/send", s.sendInvitation)
		r.Post("/invitations/{id}/remind", s.remindInvitation)

		r.Get("/portfolio", s.portfolioTotals)
		r.Get("/portfolio/sectors", s.portfolioSectors)
		r.Get("/portfolio/top-emitters", s.topEmitters)
		r.Get("/portfolio/opportunities", s.opportunities)
		r.Get("/portfolio/compare", s.compareYears)
		r.Get("/portfolio/export", s.exportPortfolio)
	})

	r.Route("/portal/{token}", func(r chi.Router) {
		r.Get("/", s.portalShow)
		r.Get("/status", s.portalStatus)
		r.Get("/template", s.portalTemplate)
		r.Post("/submit", s.portalSubmit)
		r.Post("/extend", s.portalExtend)
	})

	return r
}

// request scoping helpers

func orgID(r *http.Request) string {
	if org := r.Header.Get("X-Organization-ID"); org != "" {
		return org
	}
	return r.URL.Query().Get("org")
}

func yearParam(r *http.Request, name string) int {
	year, _ := strconv.Atoi(r.URL.Query().Get(name))
	return year
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, invitations.ErrNoContact):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, invitations.ErrNotActive), errors.Is(err, invitations.ErrExpired):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		s.log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// require returns false and answers 400 when a scoping parameter is missing.
func require(w http.ResponseWriter, value, name string) bool {
	if value == "" {
		badRequest(w, name+" is required")
		return false
	}
	return true
}
