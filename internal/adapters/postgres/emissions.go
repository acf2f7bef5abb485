package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"carbonledger/internal/domain"
)

const emissionColumns = `
	id, supplier_id, organization_id, invitation_id, year,
	scope1_total, scope1_breakdown, scope2_location, scope2_market, scope2_breakdown,
	scope3_total, scope3_breakdown, emission_intensity, revenue, revenue_currency,
	employees, data_source, verification_standard, verifier_name, verification_date,
	uncertainty_percent, methodology, notes, warnings, submitted_at, created_at, updated_at`

func scanEmission(row pgx.Row) (domain.EmissionRecord, error) {
	var r domain.EmissionRecord
	var s1b, s2b, s3b, methodology, warnings []byte
	err := row.Scan(
		&r.ID, &r.SupplierID, &r.OrganizationID, &r.InvitationID, &r.Year,
		&r.Scope1Total, &s1b, &r.Scope2Location, &r.Scope2Market, &s2b,
		&r.Scope3Total, &s3b, &r.EmissionIntensity, &r.Revenue, &r.RevenueCurrency,
		&r.Employees, &r.DataSource, &r.VerificationStandard, &r.VerifierName, &r.VerificationDate,
		&r.UncertaintyPercent, &methodology, &r.Notes, &warnings, &r.SubmittedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return domain.EmissionRecord{}, err
	}
	unmarshalInto(s1b, &r.Scope1Breakdown)
	unmarshalInto(s2b, &r.Scope2Breakdown)
	unmarshalInto(s3b, &r.Scope3Breakdown)
	unmarshalInto(methodology, &r.Methodology)
	unmarshalInto(warnings, &r.Warnings)
	return r, nil
}

func (db *DB) GetEmissionForYear(ctx context.Context, supplierID string, year int) (domain.EmissionRecord, bool, error) {
	rec, err := scanEmission(db.Pool.QueryRow(ctx, `
		SELECT `+emissionColumns+`
		FROM supplier_emissions
		WHERE supplier_id = $1 AND year = $2
	`, supplierID, year))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.EmissionRecord{}, false, nil
	}
	if err != nil {
		return domain.EmissionRecord{}, false, err
	}
	return rec, true, nil
}

// CompleteSubmission is the submit transaction: upsert the record on
// (supplier_id, year), complete the invitation and activate the supplier.
// Any failure rolls the whole unit back, so an invitation can never sit
// completed without its record or the other way round.
func (db *DB) CompleteSubmission(ctx context.Context, inv domain.Invitation, rec domain.EmissionRecord, completedAt time.Time) (domain.EmissionRecord, error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.EmissionRecord{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO supplier_emissions (
			id, supplier_id, organization_id, invitation_id, year,
			scope1_total, scope1_breakdown, scope2_location, scope2_market, scope2_breakdown,
			scope3_total, scope3_breakdown, emission_intensity, revenue, revenue_currency,
			employees, data_source, verification_standard, verifier_name, verification_date,
			uncertainty_percent, methodology, notes, warnings, submitted_at, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
			$21,$22,$23,$24,$25,$26,$27
		)
		ON CONFLICT (supplier_id, year) DO UPDATE SET
			invitation_id=EXCLUDED.invitation_id,
			scope1_total=EXCLUDED.scope1_total, scope1_breakdown=EXCLUDED.scope1_breakdown,
			scope2_location=EXCLUDED.scope2_location, scope2_market=EXCLUDED.scope2_market,
			scope2_breakdown=EXCLUDED.scope2_breakdown,
			scope3_total=EXCLUDED.scope3_total, scope3_breakdown=EXCLUDED.scope3_breakdown,
			emission_intensity=EXCLUDED.emission_intensity,
			revenue=EXCLUDED.revenue, revenue_currency=EXCLUDED.revenue_currency,
			employees=EXCLUDED.employees, data_source=EXCLUDED.data_source,
			verification_standard=EXCLUDED.verification_standard,
			verifier_name=EXCLUDED.verifier_name, verification_date=EXCLUDED.verification_date,
			uncertainty_percent=EXCLUDED.uncertainty_percent,
			methodology=EXCLUDED.methodology, notes=EXCLUDED.notes,
			warnings=EXCLUDED.warnings, submitted_at=EXCLUDED.submitted_at,
			updated_at=EXCLUDED.updated_at
		RETURNING id
	`,
		rec.ID, rec.SupplierID, rec.OrganizationID, inv.ID, rec.Year,
		rec.Scope1Total, jsonbOrNil(rec.Scope1Breakdown), rec.Scope2Location, rec.Scope2Market, jsonbOrNil(rec.Scope2Breakdown),
		rec.Scope3Total, jsonbOrNil(rec.Scope3Breakdown), rec.EmissionIntensity, rec.Revenue, rec.RevenueCurrency,
		rec.Employees, rec.DataSource, rec.VerificationStandard, rec.VerifierName, rec.VerificationDate,
		rec.UncertaintyPercent, jsonbOrNil(rec.Methodology), rec.Notes, jsonbOrNil(rec.Warnings), rec.SubmittedAt, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return domain.EmissionRecord{}, err
	}
	rec.InvitationID = &inv.ID

	if _, err = tx.Exec(ctx, `
		UPDATE supplier_invitations
		SET status = 'completed', completed_at = $2, updated_at = $2
		WHERE id = $1
	`, inv.ID, completedAt); err != nil {
		return domain.EmissionRecord{}, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE suppliers
		SET status = 'active', data_quality = 'supplier_specific', updated_at = $2
		WHERE id = $1
	`, inv.SupplierID, completedAt); err != nil {
		return domain.EmissionRecord{}, err
	}

	return rec, nil
}
