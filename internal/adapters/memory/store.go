// Package memory is an in-process implementation of ports.Store, used by
// tests and when the service runs without a database. Composite command
// operations hold the write lock for their whole unit, mirroring the
// transactional guarantees of the Postgres adapter.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"carbonledger/internal/domain"
	"carbonledger/internal/ports"
)

type Store struct {
	mu          sync.RWMutex
	suppliers   map[string]domain.Supplier
	invitations map[string]domain.Invitation
	emissions   map[string]domain.EmissionRecord // keyed by record id

	submitErr error // injected failure for the next CompleteSubmission
}

func NewStore() *Store {
	return &Store{
		suppliers:   map[string]domain.Supplier{},
		invitations: map[string]domain.Invitation{},
		emissions:   map[string]domain.EmissionRecord{},
	}
}

// FailNextSubmission makes the next CompleteSubmission fail with err before
// touching any state. Test hook.
func (s *Store) FailNextSubmission(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitErr = err
}

// SupplierRepository

func (s *Store) GetSupplier(_ context.Context, id string) (domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	supplier, ok := s.suppliers[id]
	if !ok || supplier.DeletedAt != nil {
		return domain.Supplier{}, ports.ErrNotFound
	}
	return supplier, nil
}

func (s *Store) ListSuppliers(_ context.Context, orgID string) ([]domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Supplier, 0)
	for _, supplier := range s.suppliers {
		if supplier.OrganizationID == orgID && supplier.DeletedAt == nil {
			out = append(out, supplier)
		}
	}
	// Map iteration is unstable; callers rely on a repeatable order.
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) CreateSupplier(_ context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if supplier.ID == "" {
		supplier.ID = uuid.NewString()
	}
	s.suppliers[supplier.ID] = supplier
	return supplier, nil
}

func (s *Store) UpdateSupplier(_ context.Context, supplier domain.Supplier) (domain.Supplier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.suppliers[supplier.ID]; !ok {
		return domain.Supplier{}, ports.ErrNotFound
	}
	s.suppliers[supplier.ID] = supplier
	return supplier, nil
}

func (s *Store) SoftDeleteSupplier(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	supplier, ok := s.suppliers[id]
	if !ok || supplier.DeletedAt != nil {
		return ports.ErrNotFound
	}
	now := time.Now()
	supplier.DeletedAt = &now
	s.suppliers[id] = supplier
	return nil
}

// InvitationRepository

func (s *Store) GetInvitation(_ context.Context, id string) (domain.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invitations[id]
	if !ok {
		return domain.Invitation{}, ports.ErrNotFound
	}
	return inv, nil
}

func (s *Store) FindInvitationByToken(_ context.Context, token string) (domain.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invitations {
		if inv.Token == token {
			return inv, nil
		}
	}
	return domain.Invitation{}, ports.ErrNotFound
}

func (s *Store) CreateInvitationSuperseding(_ context.Context, inv domain.Invitation) (domain.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, existing := range s.invitations {
		if existing.SupplierID == inv.SupplierID && existing.Year == inv.Year && existing.Status.Active() {
			existing.Status = domain.InvitationCancelled
			existing.UpdatedAt = inv.CreatedAt
			s.invitations[id] = existing
		}
	}

	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	s.invitations[inv.ID] = inv

	if supplier, ok := s.suppliers[inv.SupplierID]; ok {
		supplier.Status = domain.SupplierInvited
		supplier.UpdatedAt = inv.CreatedAt
		s.suppliers[supplier.ID] = supplier
	}
	return inv, nil
}

func (s *Store) UpdateInvitation(_ context.Context, inv domain.Invitation) (domain.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invitations[inv.ID]; !ok {
		return domain.Invitation{}, ports.ErrNotFound
	}
	s.invitations[inv.ID] = inv
	return inv, nil
}

func (s *Store) ListInvitations(_ context.Context, orgID string, year int) ([]domain.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Invitation, 0)
	for _, inv := range s.invitations {
		if inv.OrganizationID == orgID && inv.Year == year {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) ListInvitationsNeedingReminder(_ context.Context, now time.Time, lastBefore time.Time, maxReminders int) ([]domain.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Invitation, 0)
	for _, inv := range s.invitations {
		if !inv.Usable(now) || inv.ReminderCount >= maxReminders {
			continue
		}
		// the nudge clock starts at the last reminder, or the send before any
		last := inv.LastReminderAt
		if last == nil {
			last = inv.SentAt
		}
		if last == nil || last.After(lastBefore) {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ExpireOverdueInvitations(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	for id, inv := range s.invitations {
		if inv.Status.Active() && !inv.ExpiresAt.After(now) {
			inv.Status = domain.InvitationExpired
			inv.UpdatedAt = now
			s.invitations[id] = inv
			expired++
		}
	}
	return expired, nil
}

// EmissionRepository

func (s *Store) GetEmissionForYear(_ context.Context, supplierID string, year int) (domain.EmissionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.findEmission(supplierID, year)
	return rec, ok, nil
}

func (s *Store) findEmission(supplierID string, year int) (domain.EmissionRecord, bool) {
	for _, rec := range s.emissions {
		if rec.SupplierID == supplierID && rec.Year == year {
			return rec, true
		}
	}
	return domain.EmissionRecord{}, false
}

// PutEmission seeds a record directly, bypassing the submission flow.
// Test helper; enforces the (supplier, year) uniqueness like the schema does.
func (s *Store) PutEmission(rec domain.EmissionRecord) domain.EmissionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.findEmission(rec.SupplierID, rec.Year); ok {
		rec.ID = existing.ID
	} else if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	s.emissions[rec.ID] = rec
	return rec
}

func (s *Store) CompleteSubmission(_ context.Context, inv domain.Invitation, rec domain.EmissionRecord, completedAt time.Time) (domain.EmissionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitErr != nil {
		err := s.submitErr
		s.submitErr = nil
		return domain.EmissionRecord{}, err
	}

	// Upsert on (supplier, year), keeping the existing row's identity.
	if existing, ok := s.findEmission(rec.SupplierID, rec.Year); ok {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.InvitationID = &inv.ID
	s.emissions[rec.ID] = rec

	inv.Status = domain.InvitationCompleted
	inv.CompletedAt = &completedAt
	inv.UpdatedAt = completedAt
	s.invitations[inv.ID] = inv

	if supplier, ok := s.suppliers[inv.SupplierID]; ok {
		supplier.Status = domain.SupplierActive
		supplier.DataQuality = domain.QualitySupplierSpecific
		supplier.UpdatedAt = completedAt
		s.suppliers[supplier.ID] = supplier
	}
	return rec, nil
}
