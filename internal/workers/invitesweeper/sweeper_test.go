package invitesweeper

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
	"carbonledger/internal/services/invitations"
	"carbonledger/internal/services/validation"
)

type countingNotifier struct {
	mu        sync.Mutex
	reminders int
}

func (c *countingNotifier) Send(_ context.Context, _ string, kind ports.NotificationKind, _ ports.InvitationNotice) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == ports.NotifyReminder {
		c.reminders++
	}
	return nil
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reminders
}

func TestSweepExpiresAndReminds(t *testing.T) {
	store := memory.NewStore()
	notifier := &countingNotifier{}

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc := invitations.New(store, validation.New(validation.DefaultThresholds()), notifier,
		directory.Static{}, invitations.DefaultConfig(), zap.NewNop(),
		invitations.WithClock(func() time.Time { return now }))

	email := "a@acme.example"
	for _, id := range []string{"sup-1", "sup-2"} {
		_, err := store.CreateSupplier(context.Background(), domain.Supplier{
			ID: id, OrganizationID: "org-1", Name: id, ContactEmail: &email,
		})
		require.NoError(t, err)
	}

	// expires before the sweep
	expiry := now.Add(24 * time.Hour)
	overdue, err := svc.Invite(context.Background(), "sup-1", "user-1", 2025, invitations.InviteOptions{ExpiresAt: &expiry})
	require.NoError(t, err)

	// still open, sent long enough ago to be due a nudge
	due, err := svc.Invite(context.Background(), "sup-2", "user-1", 2025, invitations.InviteOptions{})
	require.NoError(t, err)

	now = now.Add(8 * 24 * time.Hour)

	sweeper := New(svc, time.Minute, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	// the first sweep runs immediately on start
	assert.Eventually(t, func() bool {
		inv, err := store.GetInvitation(context.Background(), overdue.ID)
		return err == nil && inv.Status == domain.InvitationExpired && notifier.count() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	reminded, err := store.GetInvitation(context.Background(), due.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reminded.ReminderCount)
	require.NotNil(t, reminded.LastReminderAt)
}
