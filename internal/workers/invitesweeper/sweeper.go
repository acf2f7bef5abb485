// Package invitesweeper runs the periodic invitation housekeeping: marking
// overdue invitations expired and dispatching reminders for ones going stale.
package invitesweeper

import (
	"context"
	"time"

	"go.uber.org/zap"

	"carbonledger/internal/services/invitations"
)

type Sweeper struct {
	svc      *invitations.Service
	interval time.Duration
	log      *zap.Logger
}

func New(svc *invitations.Service, interval time.Duration, log *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{svc: svc, interval: interval, log: log}
}

// Run loops until ctx is cancelled. The first sweep happens immediately so a
// restart never delays expiry by a full interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	expired, err := s.svc.ExpireOverdue(ctx)
	if err != nil {
		s.log.Error("expiry sweep failed", zap.Error(err))
	} else if expired > 0 {
		s.log.Info("invitations expired", zap.Int("count", expired))
	}

	due, err := s.svc.NeedingReminders(ctx)
	if err != nil {
		s.log.Error("reminder query failed", zap.Error(err))
		return
	}
	sent := 0
	for _, inv := range due {
		if _, err := s.svc.SendReminder(ctx, inv.ID); err != nil {
			s.log.Warn("reminder failed",
				zap.String("invitation_id", inv.ID),
				zap.Error(err))
			continue
		}
		sent++
	}
	if sent > 0 {
		s.log.Info("reminders sent", zap.Int("count", sent))
	}
}
