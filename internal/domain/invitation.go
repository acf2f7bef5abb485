package domain

import "time"

type InvitationStatus string

const (
	InvitationPending   InvitationStatus = "pending"
	InvitationSent      InvitationStatus = "sent"
	InvitationOpened    InvitationStatus = "opened"
	InvitationCompleted InvitationStatus = "completed"
	InvitationExpired   InvitationStatus = "expired"
	InvitationCancelled InvitationStatus = "cancelled"
)

// Active reports whether the invitation can still progress. Completed,
// expired and cancelled are terminal.
func (st InvitationStatus) Active() bool {
	return st == InvitationPending || st == InvitationSent || st == InvitationOpened
}

// DefaultRequestedFields is the standard data request sent to suppliers.
var DefaultRequestedFields = []string{
	"scope1_total",
	"scope2_location",
	"scope2_market",
	"scope3_total",
	"revenue",
	"employees",
	"verification_standard",
	"verifier_name",
	"verification_date",
}

// Invitation is one data-collection request to a supplier for one reporting
// year. At most one active invitation exists per (supplier, year); creating a
// new one cancels the prior active ones.
type Invitation struct {
	ID              string
	SupplierID      string
	OrganizationID  string
	InvitedBy       string
	Token           string // opaque portal token
	Email           string
	Status          InvitationStatus
	Year            int
	RequestedFields []string
	SentAt          *time.Time
	OpenedAt        *time.Time
	CompletedAt     *time.Time
	ExpiresAt       time.Time
	ReminderCount   int
	LastReminderAt  *time.Time
	Message         *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (inv Invitation) Expired(now time.Time) bool {
	return !inv.ExpiresAt.After(now)
}

// Usable reports whether the portal may accept a submission.
func (inv Invitation) Usable(now time.Time) bool {
	return inv.Status.Active() && !inv.Expired(now)
}
