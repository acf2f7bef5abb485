// Package notify delivers supplier-facing notifications through the
// transactional mail relay. Delivery retries live in the relay; callers only
// log failures.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"carbonledger/internal/ports"
)

type MailRelay struct {
	client *resty.Client
	log    *zap.Logger
}

func NewMailRelay(baseURL string, log *zap.Logger) *MailRelay {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &MailRelay{client: client, log: log}
}

type message struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Context  map[string]any `json:"context"`
}

func (m *MailRelay) Send(ctx context.Context, address string, kind ports.NotificationKind, notice ports.InvitationNotice) error {
	msg := message{
		To:       address,
		Template: string(kind),
		Context: map[string]any{
			"invitation_id":     notice.InvitationID,
			"supplier_name":     notice.SupplierName,
			"organization_name": notice.OrganizationName,
			"portal_token":      notice.PortalToken,
			"year":              notice.Year,
			"expires_at":        notice.ExpiresAt.Format(time.RFC3339),
			"reminder_count":    notice.ReminderCount,
			"message":           notice.Message,
		},
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(msg).
		Post("/v1/messages")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("mail relay: %s", resp.Status())
	}
	return nil
}

// Discard drops notifications, for environments without a relay.
type Discard struct {
	Log *zap.Logger
}

func (d Discard) Send(_ context.Context, address string, kind ports.NotificationKind, notice ports.InvitationNotice) error {
	d.Log.Debug("notification discarded",
		zap.String("to", address),
		zap.String("kind", string(kind)),
		zap.String("invitation_id", notice.InvitationID))
	return nil
}
