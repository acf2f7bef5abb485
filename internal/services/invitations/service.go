// Package invitations owns the lifecycle of supplier data-collection
// requests: create, send, remind, portal access, submission and expiry.
package invitations

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"carbonledger/internal/domain"
	"carbonledger/internal/ports"
	"carbonledger/internal/services/validation"
)

var (
	ErrNoContact = errString("supplier has no contact address")
	ErrNotActive = errString("invitation is no longer active")
	ErrExpired   = errString("invitation has expired")
)

type errString string

func (e errString) Error() string { return string(e) }

// Config holds the lifecycle knobs, injected rather than read ambiently.
type Config struct {
	DefaultExpiry    time.Duration // how long a new invitation stays open
	RequestedFields  []string      // default data request
	ReminderInterval time.Duration // minimum gap between reminders
	MaxReminders     int
	ExtensionDays    int // portal-requested deadline extension
}

func DefaultConfig() Config {
	return Config{
		DefaultExpiry:    30 * 24 * time.Hour,
		RequestedFields:  domain.DefaultRequestedFields,
		ReminderInterval: 7 * 24 * time.Hour,
		MaxReminders:     3,
		ExtensionDays:    14,
	}
}

type Service struct {
	store     ports.Store
	validator *validation.Validator
	notifier  ports.Notifier
	directory ports.Directory
	cfg       Config
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

// WithClock fixes the time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store ports.Store, validator *validation.Validator, notifier ports.Notifier, directory ports.Directory, cfg Config, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:     store,
		validator: validator,
		notifier:  notifier,
		directory: directory,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InviteOptions tweak a single invitation.
type InviteOptions struct {
	Email           string // overrides the supplier contact address
	RequestedFields []string
	ExpiresAt       *time.Time
	Message         string
	SkipSend        bool // create without dispatching the notification
}

// Invite creates a data-collection invitation for one supplier and year.
// Any active invitation for the same (supplier, year) is cancelled in the
// same transaction. The supplier moves to invited.
func (s *Service) Invite(ctx context.Context, supplierID, invitedBy string, year int, opts InviteOptions) (domain.Invitation, error) {
	supplier, err := s.store.GetSupplier(ctx, supplierID)
	if err != nil {
		return domain.Invitation{}, err
	}

	address := opts.Email
	if address == "" {
		address = supplier.ContactAddress()
	}
	if address == "" {
		return domain.Invitation{}, ErrNoContact
	}

	now := s.now()
	expires := now.Add(s.cfg.DefaultExpiry)
	if opts.ExpiresAt != nil {
		expires = *opts.ExpiresAt
	}
	fields := opts.RequestedFields
	if len(fields) == 0 {
		fields = s.cfg.RequestedFields
	}

	inv := domain.Invitation{
		ID:              uuid.NewString(),
		SupplierID:      supplier.ID,
		OrganizationID:  supplier.OrganizationID,
		InvitedBy:       invitedBy,
		Token:           newToken(),
		Email:           address,
		Status:          domain.InvitationPending,
		Year:            year,
		RequestedFields: fields,
		ExpiresAt:       expires,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if opts.Message != "" {
		inv.Message = &opts.Message
	}

	inv, err = s.store.CreateInvitationSuperseding(ctx, inv)
	if err != nil {
		return domain.Invitation{}, err
	}

	if !opts.SkipSend {
		inv, err = s.Send(ctx, inv.ID)
		if err != nil {
			return domain.Invitation{}, err
		}
	}
	return inv, nil
}

// Send dispatches the invitation notification and timestamps the send.
// Idempotent once sent. A notification failure is logged, never rolled back:
// delivery is the relay's problem.
func (s *Service) Send(ctx context.Context, invitationID string) (domain.Invitation, error) {
	inv, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return domain.Invitation{}, err
	}
	if inv.SentAt != nil {
		return inv, nil
	}

	s.dispatch(ctx, inv, ports.NotifyInvitation)

	now := s.now()
	inv.SentAt = &now
	if inv.Status == domain.InvitationPending {
		inv.Status = domain.InvitationSent
	}
	inv.UpdatedAt = now
	return s.store.UpdateInvitation(ctx, inv)
}

// SendReminder nudges the supplier. No-op for invitations that are no longer
// active.
func (s *Service) SendReminder(ctx context.Context, invitationID string) (domain.Invitation, error) {
	inv, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		return domain.Invitation{}, err
	}
	if !inv.Status.Active() {
		return inv, nil
	}

	s.dispatch(ctx, inv, ports.NotifyReminder)

	now := s.now()
	inv.ReminderCount++
	inv.LastReminderAt = &now
	inv.UpdatedAt = now
	return s.store.UpdateInvitation(ctx, inv)
}

// AccessPortal records the supplier's first visit, moving pending/sent to
// opened. Idempotent thereafter.
func (s *Service) AccessPortal(ctx context.Context, token string) (domain.Invitation, error) {
	inv, err := s.store.FindInvitationByToken(ctx, token)
	if err != nil {
		return domain.Invitation{}, err
	}
	if inv.Status != domain.InvitationPending && inv.Status != domain.InvitationSent {
		return inv, nil
	}

	now := s.now()
	inv.Status = domain.InvitationOpened
	inv.OpenedAt = &now
	inv.UpdatedAt = now
	return s.store.UpdateInvitation(ctx, inv)
}

// FindByToken resolves a portal token. The token is the only externally
// usable handle on an invitation.
func (s *Service) FindByToken(ctx context.Context, token string) (domain.Invitation, error) {
	return s.store.FindInvitationByToken(ctx, token)
}

// Extend pushes the deadline out. Zero or negative days means the configured
// extension. An expired invitation comes back as sent.
func (s *Service) Extend(ctx context.Context, token string, days int) (domain.Invitation, error) {
	inv, err := s.store.FindInvitationByToken(ctx, token)
	if err != nil {
		return domain.Invitation{}, err
	}
	if days <= 0 {
		days = s.cfg.ExtensionDays
	}

	now := s.now()
	inv.ExpiresAt = now.Add(time.Duration(days) * 24 * time.Hour)
	if inv.Status == domain.InvitationExpired {
		inv.Status = domain.InvitationSent
	}
	inv.UpdatedAt = now
	return s.store.UpdateInvitation(ctx, inv)
}

// ExpireOverdue sweeps every active invitation past its expiry to expired.
func (s *Service) ExpireOverdue(ctx context.Context) (int, error) {
	return s.store.ExpireOverdueInvitations(ctx, s.now())
}

// NeedingReminders lists active invitations due another nudge.
func (s *Service) NeedingReminders(ctx context.Context) ([]domain.Invitation, error) {
	now := s.now()
	return s.store.ListInvitationsNeedingReminder(ctx, now, now.Add(-s.cfg.ReminderInterval), s.cfg.MaxReminders)
}

// dispatch hands the notice to the notification collaborator, logging any
// failure and moving on.
func (s *Service) dispatch(ctx context.Context, inv domain.Invitation, kind ports.NotificationKind) {
	notice := ports.InvitationNotice{
		InvitationID:  inv.ID,
		PortalToken:   inv.Token,
		Year:          inv.Year,
		ExpiresAt:     inv.ExpiresAt,
		ReminderCount: inv.ReminderCount,
	}
	if inv.Message != nil {
		notice.Message = *inv.Message
	}
	if supplier, err := s.store.GetSupplier(ctx, inv.SupplierID); err == nil {
		notice.SupplierName = supplier.Name
	}
	if org, err := s.directory.GetOrganization(ctx, inv.OrganizationID); err == nil {
		notice.OrganizationName = org.Name
	}

	if err := s.notifier.Send(ctx, inv.Email, kind, notice); err != nil {
		s.log.Warn("notification dispatch failed",
			zap.String("invitation_id", inv.ID),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}

// newToken mints the opaque 64-character portal token.
func newToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}
