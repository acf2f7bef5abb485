package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"carbonledger/internal/domain"
	"carbonledger/internal/ports"
)

const invitationColumns = `
	id, supplier_id, organization_id, invited_by, token, email, status, year,
	requested_fields, sent_at, opened_at, completed_at, expires_at,
	reminder_count, last_reminder_at, message, created_at, updated_at`

func scanInvitation(row pgx.Row) (domain.Invitation, error) {
	var inv domain.Invitation
	var fields []byte
	err := row.Scan(
		&inv.ID, &inv.SupplierID, &inv.OrganizationID, &inv.InvitedBy, &inv.Token,
		&inv.Email, &inv.Status, &inv.Year,
		&fields, &inv.SentAt, &inv.OpenedAt, &inv.CompletedAt, &inv.ExpiresAt,
		&inv.ReminderCount, &inv.LastReminderAt, &inv.Message, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, err
	}
	unmarshalInto(fields, &inv.RequestedFields)
	return inv, nil
}

func (db *DB) GetInvitation(ctx context.Context, id string) (domain.Invitation, error) {
	inv, err := scanInvitation(db.Pool.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM supplier_invitations WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Invitation{}, ports.ErrNotFound
	}
	return inv, err
}

func (db *DB) FindInvitationByToken(ctx context.Context, token string) (domain.Invitation, error) {
	inv, err := scanInvitation(db.Pool.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM supplier_invitations WHERE token = $1
	`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Invitation{}, ports.ErrNotFound
	}
	return inv, err
}

// CreateInvitationSuperseding cancels active invitations for the same
// (supplier, year), inserts the new one and marks the supplier invited.
// One transaction: a partial failure rolls everything back.
func (db *DB) CreateInvitationSuperseding(ctx context.Context, inv domain.Invitation) (domain.Invitation, error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Invitation{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `
		UPDATE supplier_invitations
		SET status = 'cancelled', updated_at = $3
		WHERE supplier_id = $1 AND year = $2 AND status IN ('pending','sent','opened')
	`, inv.SupplierID, inv.Year, inv.CreatedAt); err != nil {
		return domain.Invitation{}, err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO supplier_invitations (
			id, supplier_id, organization_id, invited_by, token, email, status, year,
			requested_fields, expires_at, reminder_count, message, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,0,$11,$12,$13)
	`,
		inv.ID, inv.SupplierID, inv.OrganizationID, inv.InvitedBy, inv.Token, inv.Email,
		inv.Status, inv.Year, jsonbOrNil(inv.RequestedFields), inv.ExpiresAt,
		inv.Message, inv.CreatedAt, inv.UpdatedAt,
	); err != nil {
		return domain.Invitation{}, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE suppliers SET status = 'invited', updated_at = $2 WHERE id = $1
	`, inv.SupplierID, inv.CreatedAt); err != nil {
		return domain.Invitation{}, err
	}

	return inv, nil
}

func (db *DB) UpdateInvitation(ctx context.Context, inv domain.Invitation) (domain.Invitation, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE supplier_invitations SET
			status=$2, sent_at=$3, opened_at=$4, completed_at=$5, expires_at=$6,
			reminder_count=$7, last_reminder_at=$8, updated_at=$9
		WHERE id = $1
	`,
		inv.ID, inv.Status, inv.SentAt, inv.OpenedAt, inv.CompletedAt, inv.ExpiresAt,
		inv.ReminderCount, inv.LastReminderAt, inv.UpdatedAt,
	)
	if err != nil {
		return domain.Invitation{}, err
	}
	if tag.RowsAffected() == 0 {
		return domain.Invitation{}, ports.ErrNotFound
	}
	return inv, nil
}

func (db *DB) ListInvitations(ctx context.Context, orgID string, year int) ([]domain.Invitation, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+invitationColumns+`
		FROM supplier_invitations
		WHERE organization_id = $1 AND year = $2
		ORDER BY created_at, id
	`, orgID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (db *DB) ListInvitationsNeedingReminder(ctx context.Context, now time.Time, lastBefore time.Time, maxReminders int) ([]domain.Invitation, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+invitationColumns+`
		FROM supplier_invitations
		WHERE status IN ('pending','sent','opened')
		  AND expires_at > $1
		  AND reminder_count < $3
		  AND COALESCE(last_reminder_at, sent_at) <= $2
		ORDER BY created_at, id
	`, now, lastBefore, maxReminders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (db *DB) ExpireOverdueInvitations(ctx context.Context, now time.Time) (int, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE supplier_invitations
		SET status = 'expired', updated_at = $1
		WHERE status IN ('pending','sent','opened') AND expires_at <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
