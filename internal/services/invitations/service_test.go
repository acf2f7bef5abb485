package invitations

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carbonledger/internal/adapters/directory"
	"carbonledger/internal/adapters/memory"
	"carbonledger/internal/domain"
	"carbonledger/internal/ports"
	"carbonledger/internal/services/validation"
)

var baseTime = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// captureNotifier records every dispatch for assertions.
type captureNotifier struct {
	mu    sync.Mutex
	sends []capturedSend
	err   error
}

type capturedSend struct {
	Address string
	Kind    ports.NotificationKind
	Notice  ports.InvitationNotice
}

func (c *captureNotifier) Send(_ context.Context, address string, kind ports.NotificationKind, notice ports.InvitationNotice) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends = append(c.sends, capturedSend{Address: address, Kind: kind, Notice: notice})
	return c.err
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sends)
}

type fixture struct {
	store    *memory.Store
	notifier *captureNotifier
	svc      *Service
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    memory.NewStore(),
		notifier: &captureNotifier{},
		now:      baseTime,
	}
	dir := directory.Static{
		Orgs: map[string]ports.OrgInfo{"org-1": {ID: "org-1", Name: "Carbonledger SA"}},
	}
	f.svc = New(f.store, validation.New(validation.DefaultThresholds()), f.notifier, dir,
		DefaultConfig(), zap.NewNop(), WithClock(func() time.Time { return f.now }))
	return f
}

func (f *fixture) addSupplier(t *testing.T, id, email string) domain.Supplier {
	t.Helper()
	sup := domain.Supplier{
		ID:             id,
		OrganizationID: "org-1",
		Name:           "Supplier " + id,
		Status:         domain.SupplierPending,
		DataQuality:    domain.QualityNone,
	}
	if email != "" {
		sup.ContactEmail = &email
	}
	created, err := f.store.CreateSupplier(context.Background(), sup)
	require.NoError(t, err)
	return created
}

func TestInviteCreatesAndSends(t *testing.T) {
	f := newFixture(t)
	f.addSupplier(t, "sup-1", "contact@acme.example")

	inv, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.InvitationSent, inv.Status)
	assert.Equal(t, "contact@acme.example", inv.Email)
	assert.Len(t, inv.Token, 64)
	assert.Equal(t, domain.DefaultRequestedFields, inv.RequestedFields)
	assert.Equal(t, baseTime.Add(30*24*time.Hour), inv.ExpiresAt)
	require.NotNil(t, inv.SentAt)

	require.Equal(t, 1, f.notifier.count())
	sent := f.notifier.sends[0]
	assert.Equal(t, "contact@acme.example", sent.Address)
	assert.Equal(t, ports.NotifyInvitation, sent.Kind)
	assert.Equal(t, inv.Token, sent.Notice.PortalToken)
	assert.Equal(t, "Supplier sup-1", sent.Notice.SupplierName)
	assert.Equal(t, "Carbonledger SA", sent.Notice.OrganizationName)

	sup, err := f.store.GetSupplier(context.Background(), "sup-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SupplierInvited, sup.Status)
}

func TestInviteWithoutContactFails(t *testing.T) {
	f := newFixture(t)
	f.addSupplier(t, "sup-1", "")

	_, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	assert.ErrorIs(t, err, ErrNoContact)
}

func TestInviteEmailOverride(t *testing.T) {
	f := newFixture(t)
	f.addSupplier(t, "sup-1", "")

	inv, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{
		Email:    "finance@acme.example",
		SkipSend: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "finance@acme.example", inv.Email)
	assert.Equal(t, domain.InvitationPending, inv.Status)
	assert.Zero(t, f.notifier.count())
}

func TestInviteSupersedesActiveInvitation(t *testing.T) {
	f := newFixture(t)
	f.addSupplier(t, "sup-1", "contact@acme.example")

	first, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)

	second, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.Token, second.Token)

	stale, err := f.store.GetInvitation(context.Background(), first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationCancelled, stale.Status)

	// a different year does not supersede
	other, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2024, InviteOptions{})
	require.NoError(t, err)

	current, err := f.store.GetInvitation(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationSent, current.Status)
	assert.Equal(t, domain.InvitationSent, other.Status)
}

func TestSendIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.addSupplier(t, "sup-1", "contact@acme.example")

	inv, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{SkipSend: true})
	require.NoError(t, err)

	sent, err := f.svc.Send(context.Background(), inv.ID)
	require.NoError(t, err)
	firstSentAt := sent.SentAt

	f.now = f.now.Add(time.Hour)
	again, err := f.svc.Send(context.Background(), inv.ID)
	require.NoError(t, err)

	assert.Equal(t, firstSentAt, again.SentAt)
	assert.Equal(t, 1, f.notifier.count())
}

func TestSendSurvivesNotifierFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = context.DeadlineExceeded
	f.addSupplier(t, "sup-1", "contact@acme.example")

	inv, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationSent, inv.Status)
	require.NotNil(t, inv.SentAt)
}

func TestAccessPortalMarksOpenedOnce(t *testing.T) {
	f := newFixture(t)
	f.addSupplier(t, "sup-1", "contact@acme.example")

	inv, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)

	opened, err := f.svc.AccessPortal(context.Background(), inv.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationOpened, opened.Status)
	require.NotNil(t, opened.OpenedAt)
	firstOpen := *opened.OpenedAt

	f.now = f.now.Add(2 * time.Hour)
	again, err := f.svc.AccessPortal(context.Background(), inv.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationOpened, again.Status)
	assert.Equal(t, firstOpen, *again.OpenedAt)
}

func TestSendReminder(t *testing.T) {
	f := newFixture(t)
	f.addSupplier(t, "sup-1", "contact@acme.example")

	inv, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)

	f.now = f.now.Add(8 * 24 * time.Hour)
	reminded, err := f.svc.SendReminder(context.Background(), inv.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, reminded.ReminderCount)
	require.NotNil(t, reminded.LastReminderAt)
	assert.Equal(t, 2, f.notifier.count())
	assert.Equal(t, ports.NotifyReminder, f.notifier.sends[1].Kind)
}

func TestSendReminderSkipsInactiveInvitation(t *testing.T) {
	f := newFixture(t)
	f.addSupplier(t, "sup-1", "contact@acme.example")

	inv, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)

	inv.Status = domain.InvitationCancelled
	_, err = f.store.UpdateInvitation(context.Background(), inv)
	require.NoError(t, err)

	before := f.notifier.count()
	got, err := f.svc.SendReminder(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Zero(t, got.ReminderCount)
	assert.Equal(t, before, f.notifier.count())
}

func TestNeedingRemindersRespectsIntervalAndCap(t *testing.T) {
	f := newFixture(t)
	f.addSupplier(t, "sup-1", "a@acme.example")
	f.addSupplier(t, "sup-2", "b@acme.example")
	f.addSupplier(t, "sup-3", "c@acme.example")

	stale, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)
	capped, err := f.svc.Invite(context.Background(), "sup-2", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)

	// the third is sent well inside the reminder interval
	f.now = f.now.Add(6 * 24 * time.Hour)
	_, err = f.svc.Invite(context.Background(), "sup-3", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)

	// exhaust the second invitation's reminder budget
	capped.ReminderCount = 3
	_, err = f.store.UpdateInvitation(context.Background(), capped)
	require.NoError(t, err)

	f.now = f.now.Add(2 * 24 * time.Hour)
	due, err := f.svc.NeedingReminders(context.Background())
	require.NoError(t, err)

	require.Len(t, due, 1)
	assert.Equal(t, stale.ID, due[0].ID)
}

func TestExpireOverdueLeavesTerminalStatesAlone(t *testing.T) {
	f := newFixture(t)
	f.addSupplier(t, "sup-1", "a@acme.example")
	f.addSupplier(t, "sup-2", "b@acme.example")

	overdue, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)
	_, err = f.svc.AccessPortal(context.Background(), overdue.Token)
	require.NoError(t, err)
	completed, err := f.svc.Invite(context.Background(), "sup-2", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)

	scope1 := 1200.0
	_, _, err = f.svc.Submit(context.Background(), completed.Token, validation.Payload{Scope1Total: &scope1})
	require.NoError(t, err)

	f.now = f.now.Add(31 * 24 * time.Hour)
	count, err := f.svc.ExpireOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := f.store.GetInvitation(context.Background(), overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationExpired, got.Status)

	done, err := f.store.GetInvitation(context.Background(), completed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitationCompleted, done.Status)
}

func TestExtendRevivesExpiredInvitation(t *testing.T) {
	f := newFixture(t)
	f.addSupplier(t, "sup-1", "a@acme.example")

	inv, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)

	f.now = f.now.Add(31 * 24 * time.Hour)
	_, err = f.svc.ExpireOverdue(context.Background())
	require.NoError(t, err)

	extended, err := f.svc.Extend(context.Background(), inv.Token, 0)
	require.NoError(t, err)

	assert.Equal(t, domain.InvitationSent, extended.Status)
	assert.Equal(t, f.now.Add(14*24*time.Hour), extended.ExpiresAt)

	// explicit day count wins over the configured default
	extended, err = f.svc.Extend(context.Background(), inv.Token, 3)
	require.NoError(t, err)
	assert.Equal(t, f.now.Add(3*24*time.Hour), extended.ExpiresAt)
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"sup-1", "sup-2", "sup-3", "sup-4"} {
		f.addSupplier(t, id, id+"@acme.example")
	}

	_, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)
	opened, err := f.svc.Invite(context.Background(), "sup-2", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)
	done, err := f.svc.Invite(context.Background(), "sup-3", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)
	_, err = f.svc.Invite(context.Background(), "sup-4", "user-1", 2024, InviteOptions{})
	require.NoError(t, err)

	_, err = f.svc.AccessPortal(context.Background(), opened.Token)
	require.NoError(t, err)

	scope1 := 800.0
	_, _, err = f.svc.Submit(context.Background(), done.Token, validation.Payload{Scope1Total: &scope1})
	require.NoError(t, err)

	stats, err := f.svc.Statistics(context.Background(), "org-1", 2025)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Opened)
	assert.Equal(t, 1, stats.Completed)
	assert.InDelta(t, 33.3, stats.ResponseRate, 1e-9)
}

func TestSuppliersSummary(t *testing.T) {
	f := newFixture(t)
	spend := 40_000.0
	sup := f.addSupplier(t, "sup-1", "a@acme.example")
	sup.AnnualSpend = &spend
	_, err := f.store.UpdateSupplier(context.Background(), sup)
	require.NoError(t, err)
	f.addSupplier(t, "sup-2", "b@acme.example")

	inv, err := f.svc.Invite(context.Background(), "sup-1", "user-1", 2025, InviteOptions{})
	require.NoError(t, err)
	scope1 := 500.0
	_, _, err = f.svc.Submit(context.Background(), inv.Token, validation.Payload{Scope1Total: &scope1})
	require.NoError(t, err)

	summary, err := f.svc.SuppliersSummary(context.Background(), "org-1", 2025)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalSuppliers)
	assert.Equal(t, 1, summary.WithData)
	assert.Equal(t, 1, summary.WithoutData)
	assert.InDelta(t, 50.0, summary.DataCoverage, 1e-9)
	assert.InDelta(t, 40_000.0, summary.TotalAnnualSpend, 1e-9)
	assert.Equal(t, 1, summary.ByStatus[domain.SupplierActive])
	assert.Equal(t, 1, summary.ByStatus[domain.SupplierPending])
	assert.Equal(t, 1, summary.ByDataQuality[domain.QualitySupplierSpecific])
}
