package ports

import (
	"context"
	"time"

	"carbonledger/internal/domain"
)

// ErrNotFound is returned by repositories when a referenced row is missing.
var ErrNotFound = errString("not found")

type errString string

func (e errString) Error() string { return string(e) }

// SupplierRepository stores an organization's suppliers. Suppliers are never
// hard-deleted.
type SupplierRepository interface {
	GetSupplier(ctx context.Context, id string) (domain.Supplier, error)
	ListSuppliers(ctx context.Context, orgID string) ([]domain.Supplier, error)
	CreateSupplier(ctx context.Context, s domain.Supplier) (domain.Supplier, error)
	UpdateSupplier(ctx context.Context, s domain.Supplier) (domain.Supplier, error)
	SoftDeleteSupplier(ctx context.Context, id string) error
}

// InvitationRepository manages data-collection invitations. The storage layer
// enforces the one-active-invitation-per-(supplier, year) invariant.
type InvitationRepository interface {
	GetInvitation(ctx context.Context, id string) (domain.Invitation, error)
	FindInvitationByToken(ctx context.Context, token string) (domain.Invitation, error)

	// CreateInvitationSuperseding cancels any active invitation for the same
	// (supplier, year), creates inv and marks the supplier invited, all in
	// one transaction.
	CreateInvitationSuperseding(ctx context.Context, inv domain.Invitation) (domain.Invitation, error)

	UpdateInvitation(ctx context.Context, inv domain.Invitation) (domain.Invitation, error)
	ListInvitations(ctx context.Context, orgID string, year int) ([]domain.Invitation, error)

	// ListInvitationsNeedingReminder returns active, unexpired invitations
	// with fewer than maxReminders reminders and none since lastBefore.
	ListInvitationsNeedingReminder(ctx context.Context, now time.Time, lastBefore time.Time, maxReminders int) ([]domain.Invitation, error)

	// ExpireOverdueInvitations flips every active invitation with
	// expiry <= now to expired and reports how many changed.
	ExpireOverdueInvitations(ctx context.Context, now time.Time) (int, error)
}

// EmissionRepository stores supplier emission records, unique per
// (supplier, year).
type EmissionRepository interface {
	GetEmissionForYear(ctx context.Context, supplierID string, year int) (domain.EmissionRecord, bool, error)

	// CompleteSubmission upserts rec for (supplier, year), links it to the
	// invitation, marks the invitation completed and flips the supplier to
	// active with supplier-specific data quality, all in one transaction.
	// A failure anywhere rolls the whole unit back.
	CompleteSubmission(ctx context.Context, inv domain.Invitation, rec domain.EmissionRecord, completedAt time.Time) (domain.EmissionRecord, error)
}

// Store is the full persistence surface the engine needs.
type Store interface {
	SupplierRepository
	InvitationRepository
	EmissionRepository
}
