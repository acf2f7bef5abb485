package ports

import (
	"context"
	"time"
)

// NotificationKind selects the template rendered by the mail relay.
type NotificationKind string

const (
	NotifyInvitation NotificationKind = "supplier_invitation"
	NotifyReminder   NotificationKind = "supplier_reminder"
)

// InvitationNotice is the context handed to the notification collaborator.
type InvitationNotice struct {
	InvitationID     string
	SupplierName     string
	OrganizationName string
	PortalToken      string
	Year             int
	ExpiresAt        time.Time
	ReminderCount    int
	Message          string
}

// Notifier delivers portal invitations and reminders. Fire-and-forget:
// delivery retries are the relay's concern, callers only log failures.
type Notifier interface {
	Send(ctx context.Context, address string, kind NotificationKind, notice InvitationNotice) error
}

// IntensityLookup resolves a sector's default spend-based emission factor
// (tCO2e per currency unit) for the spend-based fallback.
type IntensityLookup interface {
	DefaultIntensity(sector string) float64
}

type OrgInfo struct {
	ID   string
	Name string
}

type UserInfo struct {
	ID    string
	Name  string
	Email string
}

// Directory is the read-only organization/user lookup.
type Directory interface {
	GetOrganization(ctx context.Context, id string) (OrgInfo, error)
	GetUser(ctx context.Context, id string) (UserInfo, error)
}
