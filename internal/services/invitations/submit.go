package invitations

import (
	"context"
	"time"

	"github.com/google/uuid"

	"carbonledger/internal/domain"
	"carbonledger/internal/services/validation"
)

// Submit validates a portal submission and, when it passes, stores the
// emission record, completes the invitation and activates the supplier in a
// single transaction. On validation failure nothing changes and the result
// carries the errors for the caller to surface.
func (s *Service) Submit(ctx context.Context, token string, payload validation.Payload) (domain.EmissionRecord, validation.Result, error) {
	inv, err := s.store.FindInvitationByToken(ctx, token)
	if err != nil {
		return domain.EmissionRecord{}, validation.Result{}, err
	}

	now := s.now()
	if inv.Expired(now) {
		return domain.EmissionRecord{}, validation.Result{}, ErrExpired
	}
	if !inv.Status.Active() {
		return domain.EmissionRecord{}, validation.Result{}, ErrNotActive
	}

	result := s.validator.Validate(payload, inv.RequestedFields)
	if !result.Valid {
		return domain.EmissionRecord{}, result, nil
	}

	rec := recordFromPayload(inv, payload, now)
	rec.Warnings = result.Warnings

	rec, err = s.store.CompleteSubmission(ctx, inv, rec, now)
	if err != nil {
		return domain.EmissionRecord{}, result, err
	}
	return rec, result, nil
}

// recordFromPayload maps the validated submission onto a record snapshot,
// deriving the emission intensity when revenue allows.
func recordFromPayload(inv domain.Invitation, p validation.Payload, now time.Time) domain.EmissionRecord {
	currency := p.RevenueCurrency
	if currency == "" {
		currency = "EUR"
	}

	rec := domain.EmissionRecord{
		ID:                   uuid.NewString(),
		SupplierID:           inv.SupplierID,
		OrganizationID:       inv.OrganizationID,
		InvitationID:         &inv.ID,
		Year:                 inv.Year,
		Scope1Total:          p.Scope1Total,
		Scope1Breakdown:      p.Scope1Breakdown,
		Scope2Location:       p.Scope2Location,
		Scope2Market:         p.Scope2Market,
		Scope2Breakdown:      p.Scope2Breakdown,
		Scope3Total:          p.Scope3Total,
		Scope3Breakdown:      p.Scope3Breakdown,
		Revenue:              p.Revenue,
		RevenueCurrency:      currency,
		Employees:            p.Employees,
		DataSource:           domain.SourceSupplierReported,
		VerificationStandard: p.VerificationStandard,
		VerifierName:         p.VerifierName,
		UncertaintyPercent:   p.UncertaintyPercent,
		Methodology:          p.Methodology,
		Notes:                p.Notes,
		SubmittedAt:          &now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	if p.VerificationDate != nil {
		if d, err := time.Parse("2006-01-02", *p.VerificationDate); err == nil {
			rec.VerificationDate = &d
		}
	}

	rec.EmissionIntensity = rec.CalculateIntensity()
	return rec
}

// ValidationSummary condenses a payload for confirmation screens.
func (s *Service) ValidationSummary(payload validation.Payload) validation.Summary {
	return s.validator.Summary(payload)
}

// BulkResult is the per-supplier outcome of a bulk invitation run.
type BulkResult struct {
	SupplierID   string `json:"supplier_id"`
	Success      bool   `json:"success"`
	InvitationID string `json:"invitation_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// BulkInvite attempts an invitation per supplier. A failure for one supplier
// is recorded in its result and never aborts the batch.
func (s *Service) BulkInvite(ctx context.Context, orgID string, supplierIDs []string, invitedBy string, year int, opts InviteOptions) []BulkResult {
	results := make([]BulkResult, 0, len(supplierIDs))

	for _, id := range supplierIDs {
		supplier, err := s.store.GetSupplier(ctx, id)
		if err != nil || supplier.OrganizationID != orgID {
			results = append(results, BulkResult{SupplierID: id, Error: "supplier not found"})
			continue
		}
		if opts.Email == "" && supplier.ContactAddress() == "" {
			results = append(results, BulkResult{SupplierID: id, Error: "no email address"})
			continue
		}

		inv, err := s.Invite(ctx, id, invitedBy, year, opts)
		if err != nil {
			results = append(results, BulkResult{SupplierID: id, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{SupplierID: id, Success: true, InvitationID: inv.ID})
	}
	return results
}
